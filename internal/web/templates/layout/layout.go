package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// FlashMessage is a one-shot notice carried across a redirect
type FlashMessage struct {
	Type    string // success, error, info
	Message string
}

// PageData holds the fields every page shares
type PageData struct {
	Title string
	Admin bool // show admin navigation
	Flash *FlashMessage
}

const style = `body{font-family:-apple-system,"Sarabun",sans-serif;background:#f0f2f5;display:flex;justify-content:center;padding:20px;margin:0}
.container{background:#fff;padding:30px;border-radius:15px;box-shadow:0 4px 12px rgba(0,0,0,.1);width:100%;max-width:460px;text-align:center}
nav{display:flex;justify-content:space-between;margin-bottom:16px;font-size:14px}
input:not([type="radio"]),select,button{width:100%;padding:12px;margin:8px 0;border:1px solid #ddd;border-radius:8px;box-sizing:border-box;font-size:16px}
button{background:#28a745;color:#fff;border:none;cursor:pointer;font-weight:bold}
button.danger{background:#dc3545}
button.small{width:auto;padding:2px 8px;font-size:12px;margin:0}
.tag{display:inline-block;background:#eee;padding:2px 8px;border-radius:4px;font-size:12px;margin:2px}
.flash{padding:10px;border-radius:8px;margin-bottom:12px}
.flash-success{background:#d4edda;color:#155724}
.flash-error{background:#f8d7da;color:#721c24}
.flash-info{background:#d1ecf1;color:#0c5460}
.alert{color:#dc3545;font-size:14px}
table{width:100%;border-collapse:collapse;text-align:left}
td,th{padding:4px;border-bottom:1px solid #eee}`

// Base renders the page shell around body
func Base(data PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(w)
		h.Raw(`<!DOCTYPE html><html lang="th"><head><meta charset="utf-8">`)
		h.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.Raw(`<title>`).Text(title(data.Title)).Raw(`</title><style>`).Raw(style).Raw(`</style></head>`)
		h.Raw(`<body><div class="container"><nav><a href="/">Random Buddy</a>`)
		if data.Admin {
			h.Raw(`<a href="/admin/dashboard">Dashboard</a>`)
			h.Raw(`<form method="post" action="/admin/logout"><button type="submit" class="small">ออกจากระบบ</button></form>`)
		} else {
			h.Raw(`<a href="/admin">Admin</a>`)
		}
		h.Raw(`</nav>`)
		if data.Flash != nil {
			h.Raw(`<div class="flash flash-`).Attr(data.Flash.Type).Raw(`" role="alert">`)
			h.Text(data.Flash.Message).Raw(`</div>`)
		}
		h.Raw(`<main>`)
		if h.Err() != nil {
			return h.Err()
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.Raw(`</main></div></body></html>`)
		return h.Err()
	})
}

func title(s string) string {
	if s == "" {
		return "Random Buddy"
	}
	return s + " | Random Buddy"
}
