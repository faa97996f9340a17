package pages

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/Jirawatp058/random-buddy/internal/web/templates/layout"
)

// ParticipantTag is a registered name shown on the home page
type ParticipantTag struct {
	Name string
}

// HomeData holds data for the home page
type HomeData struct {
	layout.PageData
	Open          bool
	Participants  []ParticipantTag
	StandardSizes []string
	Name          string // prefilled after a failed submission
}

// Home renders the registration form while open and the reveal form once matched
func Home(data HomeData) templ.Component {
	return layout.Base(data.PageData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := layout.NewHTML(w)
		if data.Open {
			registerForm(h, data)
		} else {
			checkForm(h, data)
		}
		return h.Err()
	}))
}

func registerForm(h *layout.HTML, data HomeData) {
	h.Raw(`<h1>📝 ลงทะเบียน Buddy</h1>`)
	h.Raw(`<form method="post" action="/register" id="register-form">`)
	h.Raw(`<input type="text" name="name" placeholder="ชื่อเล่น" required value="`).Attr(data.Name).Raw(`">`)
	h.Raw(`<input type="password" name="password" placeholder="ตั้งรหัสผ่าน (ไว้ใช้ดูผล)" required>`)

	h.Raw(`<div style="text-align:left;margin:5px 0;font-size:14px;color:#555">`)
	h.Raw(`<label><input type="radio" name="size_type" value="std" checked> ไซส์มาตรฐาน</label> `)
	h.Raw(`<label><input type="radio" name="size_type" value="inch"> ระบุรอบอก (นิ้ว)</label></div>`)

	h.Raw(`<select name="size_std">`)
	for _, size := range data.StandardSizes {
		h.Raw(`<option value="`).Attr(size).Raw(`">`).Text(size).Raw(`</option>`)
	}
	h.Raw(`</select>`)
	h.Raw(`<input type="number" name="size_inch" min="1" step="0.5" placeholder="รอบอก (นิ้ว) เช่น 38, 40">`)
	h.Raw(`<button type="submit">ลงทะเบียน</button></form>`)

	h.Raw(`<div id="participants"><p>ลงทะเบียนแล้ว `).Text(strconv.Itoa(len(data.Participants))).Raw(` คน</p>`)
	for _, p := range data.Participants {
		h.Raw(`<span class="tag" data-name="`).Attr(p.Name).Raw(`">`).Text(p.Name).Raw(`</span>`)
	}
	h.Raw(`</div>`)
}

func checkForm(h *layout.HTML, data HomeData) {
	h.Raw(`<h1>🎁 จับคู่เสร็จสิ้นแล้ว!</h1>`)
	h.Raw(`<p>ใส่ชื่อและรหัสผ่านเพื่อดูว่าคุณได้ใคร</p>`)
	h.Raw(`<form method="post" action="/check" id="check-form">`)
	h.Raw(`<input type="text" name="name" placeholder="ชื่อเล่น" required value="`).Attr(data.Name).Raw(`">`)
	h.Raw(`<input type="password" name="password" placeholder="รหัสผ่าน" required>`)
	h.Raw(`<button type="submit">ดูผล</button></form>`)
}
