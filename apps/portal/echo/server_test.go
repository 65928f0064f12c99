package echoportal_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoportal "github.com/tusthegr8/campus-companion/apps/portal/echo"
	"github.com/tusthegr8/campus-companion/apps/portal/views"
	appfs "github.com/tusthegr8/campus-companion/assets"
	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/portal"
	"github.com/tusthegr8/campus-companion/core/user"
	inmemdb "github.com/tusthegr8/campus-companion/storage/inmem"
	"github.com/tusthegr8/campus-companion/tests"
)

func newTestConfig(csrf bool) *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Campus Companion",
		SecretKey: "test-secret",
		Server:    core.ServerConfig{CSRF: csrf, DisableReqLogs: true},
		Session: core.SessionConfig{
			CookieName: "portal_session",
			TokenTTL:   time.Hour,
			Timeout:    30 * time.Minute,
		},
		UI: core.UIConfig{NotificationTTL: time.Minute},
	}
}

type testServer struct {
	*echoportal.Server
	conf     *core.Config
	sessions *inmemdb.SessionRegistry
	logger   *testutil.LoggerMock
}

func newTestServer(t *testing.T, csrf bool) *testServer {
	t.Helper()
	conf := newTestConfig(csrf)
	logger := new(testutil.LoggerMock)
	validator := testutil.NewFieldValidator()
	sessions := inmemdb.NewSessionRegistry(func() *portal.App {
		return portal.NewApp(portal.OptionsFromConfig(conf), portal.Deps{
			Auth:      user.NewSimulatedAuthenticator(0),
			Validator: validator,
			Mailer:    new(testutil.MailerMock),
			Logger:    logger,
		})
	})
	renderer, err := views.NewRenderer(appfs.FS, appfs.PortalTemplatesDir)
	require.NoError(t, err)

	srv := echoportal.NewServer(conf, logger, sessions, renderer)
	return &testServer{Server: srv, conf: conf, sessions: sessions, logger: logger}
}

// browser keeps the session cookie between requests.
type browser struct {
	t       *testing.T
	srv     *testServer
	cookies map[string]*http.Cookie
}

func (ts *testServer) browser(t *testing.T) *browser {
	return &browser{t: t, srv: ts, cookies: make(map[string]*http.Cookie)}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.srv.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) session() map[string]interface{} {
	b.t.Helper()
	rec := b.get("/session")
	require.Equal(b.t, http.StatusOK, rec.Code)
	var state map[string]interface{}
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &state))
	return state
}

func (b *browser) login(email, role string) {
	b.t.Helper()
	rec := b.post("/login", url.Values{"email": {email}, "password": {"12345678"}, "userType": {role}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code, rec.Body.String())
}

func TestServer_Show(t *testing.T) {
	ts := newTestServer(t, false)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"home", "/", http.StatusOK, "Welcome to Campus Companion"},
		{"login", "/login", http.StatusOK, `action="/login"`},
		{"anonymous profile", "/profile", http.StatusOK, "Campus Companion"},
		{"unknown section", "/library", http.StatusNotFound, "Campus Companion"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.browser(t).get(tc.path)
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantBody)
		})
	}
}

func TestServer_SessionCookie(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.browser(t)

	b.get("/")
	cookie, ok := b.cookies[ts.conf.Session.CookieName]
	require.True(t, ok)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 1, ts.sessions.Len())

	// same browser, same session
	b.get("/features")
	assert.Equal(t, 1, ts.sessions.Len())

	// a tampered cookie starts a new session
	b.cookies[ts.conf.Session.CookieName].Value += "x"
	b.get("/")
	assert.Equal(t, 2, ts.sessions.Len())
}

func TestServer_Login(t *testing.T) {
	ts := newTestServer(t, false)

	t.Run("valid", func(t *testing.T) {
		b := ts.browser(t)
		b.login("a@b.com", "student")

		rec := b.get("/dashboard")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Welcome, Carl Kitusa")
		assert.Equal(t, true, b.session()["loggedIn"])
	})

	t.Run("invalid", func(t *testing.T) {
		b := ts.browser(t)
		b.get("/login")
		rec := b.post("/login", url.Values{"email": {"not-an-email"}, "password": {"123"}, "userType": {"student"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Please enter a valid email address")
		assert.Contains(t, rec.Body.String(), "Password must be at least 8 characters long")
		assert.Equal(t, false, b.session()["loggedIn"])
	})
}

func TestServer_Register(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.browser(t)

	rec := b.post("/register", url.Values{
		"name":     {"Jane Doe"},
		"email":    {"jane@campus.edu"},
		"password": {"12345678"},
		"userType": {"student"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	assert.Contains(t, b.get("/dashboard").Body.String(), "Welcome, Jane Doe")
}

func TestServer_AdminOnly(t *testing.T) {
	ts := newTestServer(t, false)
	form := url.Values{"title": {"T"}, "content": {"C"}, "priority": {"urgent"}}

	anon := ts.browser(t)
	assert.Equal(t, http.StatusUnauthorized, anon.post("/announcements", form).Code)

	student := ts.browser(t)
	student.login("a@b.com", "student")
	assert.Equal(t, http.StatusForbidden, student.post("/announcements", form).Code)
}

func TestServer_AddAnnouncement(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.browser(t)
	b.login("admin@campus.edu", "admin")

	rec := b.post("/announcements", url.Values{
		"title":    {"Exam week"},
		"content":  {"Bring your **student card**."},
		"priority": {"urgent"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	body := b.get("/dashboard").Body.String()
	assert.Contains(t, body, "Exam week")
	assert.Contains(t, body, "<strong>student card</strong>")
	assert.Contains(t, body, "Announcement added successfully!")

	// invalid priority is a field error
	rec = b.post("/announcements", url.Values{"title": {"T"}, "content": {"C"}, "priority": {"critical"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Delete(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.browser(t)
	b.login("admin@campus.edu", "admin")

	tests := []struct {
		name     string
		path     string
		wantCode int
	}{
		{"unknown list", "/books/1/delete", http.StatusNotFound},
		{"bad id", "/events/abc/delete", http.StatusNotFound},
		{"missing record", "/events/42/delete", http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantCode, b.post(tc.path, nil).Code)
		})
	}

	require.Equal(t, http.StatusSeeOther, b.post("/announcements", url.Values{
		"title": {"Gone soon"}, "content": {"C"}, "priority": {"normal"},
	}).Code)

	var id int64
	ts.sessions.Range(func(_ string, app *portal.App) bool {
		if vm := app.View(time.Now()); vm.IsAdmin() {
			require.NoError(t, app.Show(portal.SectionDashboard))
			id = app.View(time.Now()).Dashboard.Admin.Announcements[0].ID
			return false
		}
		return true
	})
	require.NotZero(t, id)

	path := "/announcements/" + strconv.FormatInt(id, 10) + "/delete"
	require.Equal(t, http.StatusSeeOther, b.post(path, nil).Code)
	assert.Equal(t, "delete", b.session()["prompt"])

	require.Equal(t, http.StatusSeeOther, b.post("/prompt/confirm", nil).Code)
	body := b.get("/dashboard").Body.String()
	assert.NotContains(t, body, "Gone soon")
	assert.Contains(t, body, "Announcement deleted successfully!")
}

func TestServer_Logout(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.browser(t)

	assert.Equal(t, http.StatusUnauthorized, b.post("/logout", nil).Code)
	assert.Equal(t, http.StatusConflict, b.post("/prompt/confirm", nil).Code)

	b.login("a@b.com", "student")

	// dismissing keeps the session
	require.Equal(t, http.StatusSeeOther, b.post("/logout", nil).Code)
	assert.Equal(t, "logout", b.session()["prompt"])
	require.Equal(t, http.StatusSeeOther, b.post("/prompt/dismiss", nil).Code)
	assert.Equal(t, true, b.session()["loggedIn"])

	require.Equal(t, http.StatusSeeOther, b.post("/logout", nil).Code)
	rec := b.post("/prompt/confirm", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	state := b.session()
	assert.Equal(t, false, state["loggedIn"])
	assert.Nil(t, state["prompt"])
}

func TestServer_Profile(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.browser(t)

	assert.Equal(t, http.StatusUnauthorized, b.get("/profile/edit").Code)

	b.login("a@b.com", "student")
	rec := b.get("/profile/edit")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/profile"`)

	rec = b.post("/profile", url.Values{"name": {""}, "email": {"carl@campus.edu"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required")

	rec = b.post("/profile", url.Values{"name": {"Carl K."}, "email": {"carl@campus.edu"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))
	assert.Contains(t, b.get("/profile").Body.String(), "Carl K.")
}

func TestServer_Activity(t *testing.T) {
	ts := newTestServer(t, false)
	b := ts.browser(t)
	assert.Equal(t, http.StatusNoContent, b.post("/activity", nil).Code)
}

func TestServer_CSRF(t *testing.T) {
	ts := newTestServer(t, true)
	b := ts.browser(t)

	rec := b.get("/login")
	require.Equal(t, http.StatusOK, rec.Code)
	_, ok := b.cookies["_csrf"]
	require.True(t, ok)

	form := url.Values{"email": {"a@b.com"}, "password": {"12345678"}, "userType": {"student"}, "_csrf": {"forged"}}
	assert.Equal(t, http.StatusForbidden, b.post("/login", form).Code)

	form.Set("_csrf", b.cookies["_csrf"].Value)
	assert.Equal(t, http.StatusSeeOther, b.post("/login", form).Code)
}
