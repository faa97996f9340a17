package middleware

import (
	"net/http"

	"github.com/Jirawatp058/random-buddy/internal/services/auth"
)

// AdminCookieName holds the admin session token. It is scoped to /admin
// and carries no expiry; the session store decides when it is stale.
const AdminCookieName = "admin_session"

const adminCookiePath = "/admin"

// AdminAuth sends requests without a live admin session back to the login
// page, dropping whatever stale cookie they carried.
func AdminAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SessionFromCookie(r, authService) == nil {
				ClearAdminCookie(w)
				http.Redirect(w, r, "/admin", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromCookie returns the admin session named by r's cookie, or nil
// when there is no cookie or the session has expired.
func SessionFromCookie(r *http.Request, authService *auth.Service) *auth.Session {
	c, err := r.Cookie(AdminCookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	if s, err := authService.ValidateSession(c.Value); err == nil {
		return s
	}
	return nil
}

func SetAdminCookie(w http.ResponseWriter, session *auth.Session) {
	setCookie(w, AdminCookieName, session.Token, adminCookiePath, 0)
}

func ClearAdminCookie(w http.ResponseWriter) {
	setCookie(w, AdminCookieName, "", adminCookiePath, -1)
}
