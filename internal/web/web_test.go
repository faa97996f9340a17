package web_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jirawatp058/random-buddy/internal/factory"
	"github.com/Jirawatp058/random-buddy/internal/testutil"
	"github.com/Jirawatp058/random-buddy/internal/web"
	"github.com/Jirawatp058/random-buddy/internal/web/middleware"
)

// httptest.NewRequest targets this host; the jar scopes cookies to it.
var siteURL = &url.URL{Scheme: "http", Host: "example.com", Path: "/"}

// webTestServer drives the web router in-process like a browser would,
// carrying cookies from one request to the next.
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	jar     *cookiejar.Jar
	logs    *testutil.LogBuffer
}

func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()
	return newWebTestServerWithApp(t, factory.NewTestApp())
}

func newWebTestServerWithApp(t *testing.T, app *factory.TestApp) *webTestServer {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	logger, logs := testutil.CaptureLogger()
	return &webTestServer{
		t: t,
		handler: web.NewRouter(web.RouterConfig{
			Logger:             logger,
			AuthService:        app.AuthService,
			ExchangeController: app.ExchangeController,
		}),
		app:  app,
		jar:  jar,
		logs: logs,
	}
}

func (ts *webTestServer) request(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	target := siteURL.ResolveReference(req.URL)
	for _, c := range ts.jar.Cookies(target) {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	ts.jar.SetCookies(target, rr.Result().Cookies())
	return rr
}

func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.request(http.MethodGet, path, nil)
}

func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return ts.request(http.MethodPost, path, form)
}

func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "response is not a redirect")
	return ts.get(location)
}

// adminToken returns the admin session cookie the browser would send to
// /admin pages, or "" when there is none.
func (ts *webTestServer) adminToken() string {
	for _, c := range ts.jar.Cookies(siteURL.ResolveReference(&url.URL{Path: "/admin/dashboard"})) {
		if c.Name == middleware.AdminCookieName {
			return c.Value
		}
	}
	return ""
}

func (ts *webTestServer) hasAdminSession() bool {
	return ts.adminToken() != ""
}

// dropFlash discards a pending flash so it does not show on the next page.
func (ts *webTestServer) dropFlash() {
	ts.jar.SetCookies(siteURL, []*http.Cookie{{Name: "flash", Path: "/", MaxAge: -1}})
}

func (ts *webTestServer) register(name, password, size string) *httptest.ResponseRecorder {
	ts.t.Helper()
	return ts.post("/register", url.Values{
		"name":      {name},
		"password":  {password},
		"size_type": {"std"},
		"size_std":  {size},
	})
}

// registerAll registers each name with password "pw-<name>" and size M.
func (ts *webTestServer) registerAll(names ...string) {
	ts.t.Helper()
	for _, name := range names {
		rr := ts.register(name, "pw-"+name, "M")
		require.Equal(ts.t, http.StatusSeeOther, rr.Code)
		require.Equal(ts.t, "/", rr.Header().Get("Location"), "registering %s", name)
	}
	ts.dropFlash()
}

func (ts *webTestServer) loginAdmin() {
	ts.t.Helper()
	rr := ts.post("/admin/login", url.Values{"password": {factory.TestAdminPassword}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code)
	require.Equal(ts.t, "/admin/dashboard", rr.Header().Get("Location"))
	require.True(ts.t, ts.hasAdminSession())
}

func parseHTML(r io.Reader) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		panic(err)
	}
	return doc
}

func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	assert.Positive(t, doc.Find(selector).Length(), "no element matches %q", selector)
}

func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	assert.Zero(t, doc.Find(selector).Length(), "unexpected element matching %q", selector)
}

func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	sel := doc.Find(selector)
	if assert.Positive(t, sel.Length(), "no element matches %q", selector) {
		assert.Contains(t, sel.Text(), text, "text of %q", selector)
	}
}
