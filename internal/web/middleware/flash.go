package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/Jirawatp058/random-buddy/internal/web/templates/layout"
)

const (
	flashCookie = "flash"
	flashTTL    = 60 // seconds
)

type flashKey struct{}

// SetFlash queues a one-shot message for the next page the browser loads.
func SetFlash(w http.ResponseWriter, kind, message string) {
	setCookie(w, flashCookie, encodeFlash(kind, message), "/", flashTTL)
}

// GetFlash returns the message Flash picked up for this request, if any.
func GetFlash(ctx context.Context) *layout.FlashMessage {
	f, _ := ctx.Value(flashKey{}).(*layout.FlashMessage)
	return f
}

// Flash moves a queued message from its cookie into the request context
// and deletes the cookie so it shows once.
func Flash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(flashCookie)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			setCookie(w, flashCookie, "", "/", -1)
			ctx := context.WithValue(r.Context(), flashKey{}, decodeFlash(c.Value))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Cookie values cannot hold Thai text or spaces as-is.
func encodeFlash(kind, message string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(kind + ":" + message))
}

func decodeFlash(value string) *layout.FlashMessage {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(string(raw), ":")
	if !ok {
		return &layout.FlashMessage{Type: "info", Message: kind}
	}
	return &layout.FlashMessage{Type: kind, Message: message}
}
