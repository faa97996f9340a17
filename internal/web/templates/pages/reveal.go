package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/Jirawatp058/random-buddy/internal/web/templates/layout"
)

// RevealData holds data for the reveal result page
type RevealData struct {
	layout.PageData
	Giver         string
	Recipient     string
	RecipientSize string
}

// Reveal renders a participant's own assignment
func Reveal(data RevealData) templ.Component {
	return layout.Base(data.PageData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := layout.NewHTML(w)
		h.Raw(`<h1>🎉 ผลการจับคู่</h1>`)
		h.Raw(`<p>สวัสดี <strong class="giver">`).Text(data.Giver).Raw(`</strong> บัดดี้ของคุณคือ</p>`)
		h.Raw(`<h2 class="recipient" style="color:#2e7d32;font-size:45px;margin:20px 0">`).Text(data.Recipient).Raw(`</h2>`)
		h.Raw(`<div style="background:#f8f9fa;padding:15px;border-radius:10px">`)
		h.Raw(`<span style="font-size:14px;color:#666;display:block">สิ่งที่บัดดี้อยากได้ (ไซส์เสื้อ)</span>`)
		size := data.RecipientSize
		if size == "" {
			size = "ไม่ระบุ"
		}
		h.Raw(`<div class="recipient-size" style="font-size:24px;font-weight:bold">`).Text(size).Raw(`</div></div>`)
		h.Raw(`<p style="color:#666;font-size:14px">🤫 เงียบไว้นะ ห้ามบอกใคร!</p>`)
		h.Raw(`<a href="/">กลับหน้าแรก</a>`)
		return h.Err()
	}))
}
