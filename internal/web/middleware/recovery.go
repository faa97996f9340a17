package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Jirawatp058/random-buddy/internal/middleware"
	"github.com/Jirawatp058/random-buddy/internal/web/templates/layout"
	"github.com/Jirawatp058/random-buddy/internal/web/templates/pages"
)

// Recovery shows the standard error page when a handler panics.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, _ any) {
		page := pages.Error(pages.ErrorData{
			PageData: layout.PageData{Title: "เกิดข้อผิดพลาด"},
			Message:  "ระบบขัดข้อง ลองใหม่อีกครั้ง",
		})
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_ = page.Render(r.Context(), w)
	})
}
