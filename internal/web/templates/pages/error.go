package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/Jirawatp058/random-buddy/internal/web/templates/layout"
)

// ErrorData holds data for the error page
type ErrorData struct {
	layout.PageData
	Message string
}

// Error renders a generic failure page
func Error(data ErrorData) templ.Component {
	return layout.Base(data.PageData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := layout.NewHTML(w)
		h.Raw(`<h1>เกิดข้อผิดพลาด</h1><p class="alert">`).Text(data.Message).Raw(`</p>`)
		h.Raw(`<a href="/">กลับหน้าแรก</a>`)
		return h.Err()
	}))
}
