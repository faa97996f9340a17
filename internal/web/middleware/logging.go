package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Jirawatp058/random-buddy/internal/middleware"
)

// Logging logs every page request with its request ID
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("surface", "web")))
}
