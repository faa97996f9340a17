package middleware

import (
	"log/slog"
	"net/http"

	"github.com/Jirawatp058/random-buddy/internal/api/apierr"
	"github.com/Jirawatp058/random-buddy/internal/middleware"
)

// Logging logs every API request under the "api" surface
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("surface", "api")))
}

// Recovery answers a panicking handler with the JSON internal error body
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
