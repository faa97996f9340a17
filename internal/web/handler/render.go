package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/Jirawatp058/random-buddy/internal/web/templates/layout"
	"github.com/Jirawatp058/random-buddy/internal/web/templates/pages"
)

// render buffers the component so a template failure can still produce a 500
func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		logger.Error("failed to render page",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	data := pages.ErrorData{
		PageData: layout.PageData{Title: "เกิดข้อผิดพลาด"},
		Message:  userMessage(err),
	}
	render(w, r, logger, http.StatusInternalServerError, pages.Error(data))
}
