package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Jirawatp058/random-buddy/internal/api/apierr"
	"github.com/Jirawatp058/random-buddy/internal/services/auth"
)

type sessionKey struct{}

// AdminAuth admits requests carrying a live admin session as a bearer
// token. The session is stored on the request context for GetSession.
func AdminAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="buddy-admin"`)
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateSession(token)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="buddy-admin", error="invalid_token"`)
				apierr.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, session)))
		})
	}
}

// bearerToken pulls the token out of an Authorization header value. The
// scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetSession returns the admin session attached by AdminAuth
func GetSession(ctx context.Context) *auth.Session {
	s, _ := ctx.Value(sessionKey{}).(*auth.Session)
	return s
}
