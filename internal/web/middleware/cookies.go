package middleware

import (
	"net/http"
	"time"
)

// setCookie writes an HttpOnly, SameSite=Lax cookie. maxAge 0 leaves it a
// browser-session cookie; a negative maxAge deletes it.
func setCookie(w http.ResponseWriter, name, value, path string, maxAge int) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		c.Value = ""
		c.Expires = time.Unix(0, 0)
	}
	http.SetCookie(w, c)
}
