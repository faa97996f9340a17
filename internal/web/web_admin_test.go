package web_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jirawatp058/random-buddy/internal/factory"
	"github.com/Jirawatp058/random-buddy/internal/model"
	"github.com/Jirawatp058/random-buddy/internal/services/exchange"
)

func TestAdminPagesRequireLogin(t *testing.T) {
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/admin/dashboard"},
		{http.MethodPost, "/admin/match"},
		{http.MethodPost, "/admin/reset"},
		{http.MethodPost, "/admin/exclusions"},
		{http.MethodPost, "/admin/participants/remove"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			ts := newWebTestServer(t)
			ts.registerAll("Alice", "Bob")

			rr := ts.request(p.method, p.path, url.Values{"name": {"Alice"}})
			assert.Equal(t, http.StatusSeeOther, rr.Code)
			assert.Equal(t, "/admin", rr.Header().Get("Location"))

			ex, err := ts.app.ExchangeController.Status(t.Context())
			require.NoError(t, err)
			assert.True(t, ex.IsOpen())
			participants, err := ts.app.ExchangeController.ListParticipants(t.Context())
			require.NoError(t, err)
			assert.Len(t, participants, 2)
		})
	}
}

func TestAdminLogin(t *testing.T) {
	ts := newWebTestServer(t)

	doc := parseHTML(ts.get("/admin").Body)
	assertContainsElement(t, doc, "form[action='/admin/login']")

	ts.loginAdmin()

	rr := ts.get("/admin/dashboard")
	require.Equal(t, http.StatusOK, rr.Code)
	doc = parseHTML(rr.Body)
	assertContainsElement(t, doc, "[data-state='open']")
	assertContainsElement(t, doc, "form[action='/admin/logout']")

	// An active session skips the login form.
	rr = ts.get("/admin")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/dashboard", rr.Header().Get("Location"))
}

func TestAdminLoginWrongPassword(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.post("/admin/login", url.Values{"password": {"guess"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin", rr.Header().Get("Location"))
	assert.False(t, ts.hasAdminSession())
	assert.Contains(t, ts.logs.String(), "admin login failed")

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsElement(t, doc, ".flash-error")
}

func TestAdminLogout(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAdmin()
	token := ts.adminToken()

	rr := ts.post("/admin/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.False(t, ts.hasAdminSession())

	_, err := ts.app.AuthService.ValidateSession(token)
	assert.Error(t, err)

	rr = ts.get("/admin/dashboard")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
}

func TestExpiredAdminSessionRedirects(t *testing.T) {
	ts := newWebTestServer(t)
	ts.loginAdmin()

	ts.app.MockClock.Advance(13 * time.Hour)

	rr := ts.get("/admin/dashboard")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin", rr.Header().Get("Location"))
	assert.False(t, ts.hasAdminSession())
}

func TestDashboardExclusions(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerAll("Alice", "Bob")
	ts.loginAdmin()

	doc := parseHTML(ts.get("/admin/dashboard").Body)
	assert.Equal(t, 2, doc.Find("#participants tr").Length())
	assert.Equal(t, 0, doc.Find("li.exclusion").Length())
	assertNotContainsElement(t, doc, "#infeasible")

	rr := ts.post("/admin/exclusions", url.Values{"a": {"Bob"}, "b": {"Alice"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc = parseHTML(ts.followRedirect(rr).Body)
	assertContainsElement(t, doc, ".flash-success")
	assert.Equal(t, 1, doc.Find("li.exclusion").Length())
	assertContainsText(t, doc, "li.exclusion", "Alice")
	assertContainsElement(t, doc, "#infeasible")

	rr = ts.post("/admin/exclusions/remove", url.Values{"a": {"Alice"}, "b": {"Bob"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc = parseHTML(ts.followRedirect(rr).Body)
	assert.Equal(t, 0, doc.Find("li.exclusion").Length())
	assertNotContainsElement(t, doc, "#infeasible")
}

func TestDashboardRejectsSelfExclusion(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerAll("Alice", "Bob")
	ts.loginAdmin()

	rr := ts.post("/admin/exclusions", url.Values{"a": {"Alice"}, "b": {"Alice"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsElement(t, doc, ".flash-error")
	assert.Equal(t, 0, doc.Find("li.exclusion").Length())
}

func TestDashboardUnknownParticipantExclusion(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerAll("Alice", "Bob")
	ts.loginAdmin()

	rr := ts.post("/admin/exclusions", url.Values{"a": {"Alice"}, "b": {"Zed"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-error", "ไม่พบผู้ลงทะเบียน")
}

func TestDashboardRemoveParticipant(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerAll("Alice", "Bob", "Carol")
	ts.loginAdmin()
	ts.post("/admin/exclusions", url.Values{"a": {"Alice"}, "b": {"Carol"}})

	rr := ts.post("/admin/participants/remove", url.Values{"name": {"Carol"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-success", "Carol")
	assert.Equal(t, 2, doc.Find("#participants tr").Length())
	assertNotContainsElement(t, doc, "tr[data-name='Carol']")
	assert.Equal(t, 0, doc.Find("li.exclusion").Length())
}

func TestMatchFromDashboard(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerAll("Alice", "Bob", "Carol")
	ts.loginAdmin()

	rr := ts.post("/admin/match", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash-success", "3")
	assertContainsElement(t, doc, "[data-state='closed']")
	assertContainsElement(t, doc, "#state time")
	assertNotContainsElement(t, doc, "form[action='/admin/match']")
	assertNotContainsElement(t, doc, "form[action='/admin/participants/remove']")
	assert.Equal(t, 3, doc.Find("#participants .not-viewed").Length())

	// The dashboard never shows who drew whom.
	assert.NotContains(t, doc.Find("#participants").Text(), "→")

	// A participant's reveal flips their viewed marker.
	ts.post("/check", url.Values{"name": {"Alice"}, "password": {"pw-Alice"}})
	doc = parseHTML(ts.get("/admin/dashboard").Body)
	assertContainsElement(t, doc, "tr[data-name='Alice'] .viewed")
	assertContainsElement(t, doc, "tr[data-name='Bob'] .not-viewed")
}

func TestMatchErrorsAreFlashed(t *testing.T) {
	t.Run("insufficient participants", func(t *testing.T) {
		ts := newWebTestServer(t)
		ts.registerAll("Alice")
		ts.loginAdmin()

		doc := parseHTML(ts.followRedirect(ts.post("/admin/match", nil)).Body)
		assertContainsText(t, doc, ".flash-error", "2")
		assertContainsElement(t, doc, "[data-state='open']")
	})

	t.Run("infeasible exclusions", func(t *testing.T) {
		ts := newWebTestServer(t)
		ts.registerAll("Alice", "Bob")
		ts.loginAdmin()
		ts.post("/admin/exclusions", url.Values{"a": {"Alice"}, "b": {"Bob"}})

		doc := parseHTML(ts.followRedirect(ts.post("/admin/match", nil)).Body)
		assertContainsText(t, doc, ".flash-error", "เงื่อนไข")
		assertContainsElement(t, doc, "[data-state='open']")
	})

	t.Run("already matched", func(t *testing.T) {
		ts := newWebTestServer(t)
		ts.registerAll("Alice", "Bob")
		ts.loginAdmin()
		ts.post("/admin/match", nil)

		doc := parseHTML(ts.followRedirect(ts.post("/admin/match", nil)).Body)
		assertContainsText(t, doc, ".flash-error", "จับคู่ไปแล้ว")
	})
}

func TestResetClearsRoster(t *testing.T) {
	ts := newWebTestServer(t)
	ts.registerAll("Alice", "Bob")
	ts.loginAdmin()
	ts.post("/admin/match", nil)

	rr := ts.post("/admin/reset", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsElement(t, doc, ".flash-success")
	assertContainsElement(t, doc, "[data-state='open']")
	assert.Equal(t, 0, doc.Find("#participants tr").Length())

	doc = parseHTML(ts.get("/").Body)
	assertContainsElement(t, doc, "form[action='/register']")
	assert.Equal(t, 0, doc.Find("span.tag").Length())
}

func TestResetKeepRoster(t *testing.T) {
	app := factory.NewTestAppWithConfig(exchange.Config{ResetPolicy: model.ResetPolicyKeepRoster})
	ts := newWebTestServerWithApp(t, app)
	ts.registerAll("Alice", "Bob")
	ts.loginAdmin()
	ts.post("/admin/match", nil)
	ts.post("/admin/reset", nil)

	participants, err := app.ExchangeController.ListParticipants(t.Context())
	require.NoError(t, err)
	require.Len(t, participants, 2)
	for _, p := range participants {
		assert.Empty(t, p.Recipient)
		assert.False(t, p.Viewed)
	}

	doc := parseHTML(ts.get("/admin/dashboard").Body)
	assertContainsElement(t, doc, "[data-state='open']")
	assertContainsText(t, doc, "#reset-form", string(model.ResetPolicyKeepRoster))
}
