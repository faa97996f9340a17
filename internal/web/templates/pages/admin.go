package pages

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/Jirawatp058/random-buddy/internal/web/templates/layout"
)

// AdminLogin renders the admin password form
func AdminLogin(data layout.PageData) templ.Component {
	return layout.Base(data, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := layout.NewHTML(w)
		h.Raw(`<h1>🔒 Admin Only</h1>`)
		h.Raw(`<form method="post" action="/admin/login" id="login-form">`)
		h.Raw(`<input type="password" name="password" placeholder="รหัสผ่านผู้ดูแล" required>`)
		h.Raw(`<button type="submit">เข้าสู่ระบบ</button></form>`)
		return h.Err()
	}))
}

// DashboardParticipant is one roster row on the dashboard
type DashboardParticipant struct {
	Name    string
	Size    string
	Matched bool
	Viewed  bool
}

// DashboardExclusion is one exclusion row on the dashboard
type DashboardExclusion struct {
	A string
	B string
}

// DashboardData holds data for the admin dashboard
type DashboardData struct {
	layout.PageData
	Open         bool
	MatchedAt    *time.Time
	Participants []DashboardParticipant
	Exclusions   []DashboardExclusion
	Feasible     bool
	ResetPolicy  string
}

// Dashboard renders the admin control panel
func Dashboard(data DashboardData) templ.Component {
	return layout.Base(data.PageData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := layout.NewHTML(w)
		h.Raw(`<h1>🛠️ จัดการระบบ</h1>`)

		h.Raw(`<p id="state">สถานะ: `)
		if data.Open {
			h.Raw(`<strong data-state="open">เปิดรับลงทะเบียน</strong>`)
		} else {
			h.Raw(`<strong data-state="closed">จับคู่แล้ว</strong>`)
			if data.MatchedAt != nil {
				h.Raw(` <time datetime="`).Attr(data.MatchedAt.Format(time.RFC3339)).Raw(`">`)
				h.Text(data.MatchedAt.Format("2006-01-02 15:04")).Raw(`</time>`)
			}
		}
		h.Raw(`</p>`)

		participantTable(h, data)
		if data.Open {
			exclusionSection(h, data)
		}
		controls(h, data)
		return h.Err()
	}))
}

func participantTable(h *layout.HTML, data DashboardData) {
	h.Raw(`<h3>ผู้ลงทะเบียน (`).Text(strconv.Itoa(len(data.Participants))).Raw(`)</h3>`)
	h.Raw(`<table id="participants"><tbody>`)
	for _, p := range data.Participants {
		h.Raw(`<tr data-name="`).Attr(p.Name).Raw(`"><td>`).Text(p.Name).Raw(` (`).Text(p.Size).Raw(`)</td><td>`)
		if p.Viewed {
			h.Raw(`<span class="viewed">✅ ดูผลแล้ว</span>`)
		} else if p.Matched {
			h.Raw(`<span class="not-viewed">⏳ ยังไม่ดู</span>`)
		}
		h.Raw(`</td><td>`)
		if data.Open {
			h.Raw(`<form method="post" action="/admin/participants/remove">`)
			h.Raw(`<input type="hidden" name="name" value="`).Attr(p.Name).Raw(`">`)
			h.Raw(`<button type="submit" class="danger small">ลบ</button></form>`)
		}
		h.Raw(`</td></tr>`)
	}
	h.Raw(`</tbody></table>`)
}

func exclusionSection(h *layout.HTML, data DashboardData) {
	h.Raw(`<h3>ห้ามจับคู่กัน</h3>`)
	h.Raw(`<ul id="exclusions">`)
	for _, e := range data.Exclusions {
		h.Raw(`<li class="exclusion">`).Text(e.A).Raw(` ❌ `).Text(e.B)
		h.Raw(`<form method="post" action="/admin/exclusions/remove" style="display:inline">`)
		h.Raw(`<input type="hidden" name="a" value="`).Attr(e.A).Raw(`">`)
		h.Raw(`<input type="hidden" name="b" value="`).Attr(e.B).Raw(`">`)
		h.Raw(`<button type="submit" class="danger small">ลบ</button></form></li>`)
	}
	h.Raw(`</ul>`)

	h.Raw(`<form method="post" action="/admin/exclusions" id="exclusion-form">`)
	for _, field := range []string{"a", "b"} {
		h.Raw(`<select name="`).Raw(field).Raw(`">`)
		for _, p := range data.Participants {
			h.Raw(`<option value="`).Attr(p.Name).Raw(`">`).Text(p.Name).Raw(`</option>`)
		}
		h.Raw(`</select>`)
	}
	h.Raw(`<button type="submit">เพิ่มคู่ห้าม</button></form>`)

	if !data.Feasible && len(data.Participants) >= 2 {
		h.Raw(`<p class="alert" id="infeasible">⚠️ เงื่อนไขห้ามจับคู่ตอนนี้ทำให้จับคู่ไม่ได้</p>`)
	}
}

func controls(h *layout.HTML, data DashboardData) {
	h.Raw(`<hr>`)
	if data.Open {
		h.Raw(`<form method="post" action="/admin/match" id="match-form">`)
		h.Raw(`<button type="submit" class="danger" style="font-size:18px">🚀 Random Matching!</button></form>`)
	}
	h.Raw(`<form method="post" action="/admin/reset" id="reset-form" onsubmit="return confirm('ล้างข้อมูลทั้งหมด?')">`)
	h.Raw(`<button type="submit" class="danger small">รีเซ็ต (`).Text(data.ResetPolicy).Raw(`)</button></form>`)
}
