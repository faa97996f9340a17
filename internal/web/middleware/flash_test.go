package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jirawatp058/random-buddy/internal/web/templates/layout"
)

func TestFlashRoundTrip(t *testing.T) {
	set := httptest.NewRecorder()
	SetFlash(set, "success", "ลงทะเบียน Alice เรียบร้อย")
	cookies := set.Result().Cookies()
	require.Len(t, cookies, 1)

	var got *layout.FlashMessage
	h := Flash()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetFlash(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.NotNil(t, got)
	assert.Equal(t, "success", got.Type)
	assert.Equal(t, "ลงทะเบียน Alice เรียบร้อย", got.Message)

	cleared := rr.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Negative(t, cleared[0].MaxAge)
}

func TestDecodeFlash(t *testing.T) {
	assert.Nil(t, decodeFlash("not base64!"))
	assert.Equal(t, &layout.FlashMessage{Type: "info", Message: "plain"}, decodeFlash("cGxhaW4"))
	assert.Equal(t, &layout.FlashMessage{Type: "error", Message: "a:b"}, decodeFlash(encodeFlash("error", "a:b")))
}

func TestFlashWithoutCookie(t *testing.T) {
	var got *layout.FlashMessage
	h := Flash()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetFlash(r.Context())
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Nil(t, got)
	assert.Empty(t, rr.Result().Cookies())
}
