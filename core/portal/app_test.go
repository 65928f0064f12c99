package portal_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/portal"
	"github.com/tusthegr8/campus-companion/core/user"
	"github.com/tusthegr8/campus-companion/tests"
)

var (
	studentLogin = core.Fields{"email": "a@b.com", "password": "12345678", "userType": "student"}
	adminLogin   = core.Fields{"email": "admin@campus.edu", "password": "12345678", "userType": "admin"}
)

type testApp struct {
	*portal.App
	clock  *testutil.Clock
	mailer *testutil.MailerMock
}

func newTestApp(t *testing.T, auth ...user.Authenticator) *testApp {
	t.Helper()
	var authn user.Authenticator = user.NewSimulatedAuthenticator(0)
	if len(auth) > 0 {
		authn = auth[0]
	}
	clock := testutil.NewClock(testutil.Today)
	mailer := new(testutil.MailerMock)
	app := portal.NewApp(
		portal.Options{
			AppName:         "Campus Companion",
			SessionTimeout:  30 * time.Minute,
			RedirectDelay:   time.Second,
			NotificationTTL: 3 * time.Second,
		},
		portal.Deps{
			Auth:      authn,
			Validator: testutil.NewFieldValidator(),
			Mailer:    mailer,
			Now:       clock.Now,
		},
	)
	return &testApp{App: app, clock: clock, mailer: mailer}
}

func (ta *testApp) login(t *testing.T, fields core.Fields) {
	t.Helper()
	require.NoError(t, ta.Login(context.Background(), fields))
}

func (ta *testApp) view() portal.ViewModel { return ta.View(ta.clock.Now()) }

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError, got %T: %v", err, err)
	return vErr.FieldMap()
}

func TestApp_LoginScenario(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.Show(portal.SectionLogin))

	app.login(t, studentLogin)

	usr, ok := app.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, user.User{Name: "Carl Kitusa", Email: "a@b.com", Role: user.RoleStudent}, usr)
	assert.Equal(t, portal.SectionDashboard, app.Section())

	// the login page shows the notification until the redirect delay elapses
	vm := app.view()
	assert.Equal(t, portal.SectionLogin, vm.Section)
	require.NotNil(t, vm.Redirect)
	assert.Equal(t, portal.Redirect{Section: portal.SectionDashboard, After: time.Second}, *vm.Redirect)
	require.NotNil(t, vm.Notification)
	assert.Equal(t, portal.NotificationSuccess, vm.Notification.Kind)
	assert.Equal(t, "Login successful!", vm.Notification.Message)
	assert.Empty(t, vm.Form("login").Values)

	app.clock.Advance(time.Second)
	vm = app.view()
	assert.Equal(t, portal.SectionDashboard, vm.Section)
	assert.Nil(t, vm.Redirect)
	require.NotNil(t, vm.Dashboard)
	assert.Equal(t, user.RoleStudent, vm.Dashboard.Role)
	assert.NotNil(t, vm.Dashboard.Student)
	assert.Nil(t, vm.Dashboard.Admin)
}

func TestApp_LoginValidation(t *testing.T) {
	tests := []struct {
		name       string
		fields     core.Fields
		wantErrors map[string]string
	}{
		{
			name:   "all blank",
			fields: core.Fields{"email": " ", "password": "", "userType": ""},
			wantErrors: map[string]string{
				"email":    "This field is required",
				"password": "This field is required",
				"userType": "This field is required",
			},
		},
		{
			name:       "bad email",
			fields:     core.Fields{"email": "a@b", "password": "12345678", "userType": "student"},
			wantErrors: map[string]string{"email": "Please enter a valid email address"},
		},
		{
			name:       "short password",
			fields:     core.Fields{"email": "a@b.com", "password": "1234567", "userType": "student"},
			wantErrors: map[string]string{"password": "Password must be at least 8 characters long"},
		},
		{
			name:   "unknown user type & bad email",
			fields: core.Fields{"email": "nope", "password": "12345678", "userType": "teacher"},
			wantErrors: map[string]string{
				"email":    "Please enter a valid email address",
				"userType": "Please select a valid user type",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &user.AuthenticatorMock{User: user.User{Name: "X", Role: user.RoleStudent}}
			app := newTestApp(t, auth)

			err := app.Login(context.Background(), tt.fields)
			assert.Equal(t, tt.wantErrors, fieldErrors(t, err))
			assert.Zero(t, auth.Calls, "authenticator must not be called")

			_, ok := app.CurrentUser()
			assert.False(t, ok)

			form := app.view().Form("login")
			assert.Equal(t, tt.wantErrors, form.Errors)
			assert.Equal(t, tt.fields["email"], form.Value("email"), "values are kept")
		})
	}
}

func TestApp_LoginFailure(t *testing.T) {
	t.Run("rejected credentials", func(t *testing.T) {
		app := newTestApp(t, &user.AuthenticatorMock{Err: user.ErrAuthenticationFailed})

		err := app.Login(context.Background(), studentLogin)
		assert.True(t, core.IsRuleError(err))

		_, ok := app.CurrentUser()
		assert.False(t, ok)
		assert.Equal(t, portal.SectionHome, app.Section())

		vm := app.view()
		require.NotNil(t, vm.Notification)
		assert.Equal(t, portal.NotificationError, vm.Notification.Kind)
		assert.Equal(t, "Invalid email or password.", vm.Notification.Message)
	})

	t.Run("cancelled", func(t *testing.T) {
		app := newTestApp(t, user.NewSimulatedAuthenticator(time.Hour))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := app.Login(ctx, studentLogin)
		assert.Equal(t, context.Canceled, errors.Cause(err))
		assert.False(t, core.IsRuleError(err))

		_, ok := app.CurrentUser()
		assert.False(t, ok)
	})
}

func TestApp_RegisterPasswordTooLong(t *testing.T) {
	app := newTestApp(t, user.NewDirectoryAuthenticator(0))

	err := app.Register(context.Background(), core.Fields{
		"name": "Jane Doe", "email": "jane@campus.edu", "password": strings.Repeat("p", 73), "userType": "student",
	})
	assert.True(t, core.IsRuleError(err))

	_, ok := app.CurrentUser()
	assert.False(t, ok)
	vm := app.view()
	require.NotNil(t, vm.Notification)
	assert.Equal(t, "Password must be at most 72 bytes long.", vm.Notification.Message)
	assert.Empty(t, app.mailer.Sent())
}

func TestApp_Register(t *testing.T) {
	app := newTestApp(t)

	err := app.Register(context.Background(), core.Fields{
		"name": "Jane Doe", "email": "jane@campus.edu", "password": "s3cretpass", "userType": "admin",
	})
	require.NoError(t, err)

	usr, ok := app.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, user.User{Name: "Jane Doe", Email: "jane@campus.edu", Role: user.RoleAdmin}, usr)
	assert.Equal(t, "Registration successful!", app.view().Notification.Message)

	sent := app.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "jane@campus.edu", sent[0].To[0].Address)
	assert.Equal(t, "welcome", sent[0].TemplateName)
	assert.Equal(t, "Welcome to Campus Companion", sent[0].Subject)

	t.Run("validation", func(t *testing.T) {
		app := newTestApp(t)
		err := app.Register(context.Background(), core.Fields{"name": "", "email": "jane@campus.edu", "password": "short", "userType": "student"})
		assert.Equal(t, map[string]string{
			"name":     "This field is required",
			"password": "Password must be at least 8 characters long",
		}, fieldErrors(t, err))
		assert.Empty(t, app.mailer.Sent())
	})
}

func TestApp_LogoutClearsEverything(t *testing.T) {
	app := newTestApp(t)
	app.login(t, adminLogin)

	// leave some state behind in a couple of forms
	_ = app.AddAnnouncement(core.Fields{"title": "half typed"})
	require.NoError(t, app.EditProfile())

	require.NoError(t, app.RequestLogout())
	kind, ok := app.PendingPrompt()
	require.True(t, ok)
	assert.Equal(t, portal.PromptLogout, kind)

	// declining is a no-op
	app.DismissPrompt()
	_, ok = app.CurrentUser()
	assert.True(t, ok)

	require.NoError(t, app.RequestLogout())
	require.NoError(t, app.ConfirmPrompt())

	_, ok = app.CurrentUser()
	assert.False(t, ok)
	assert.Equal(t, portal.SectionHome, app.Section())

	vm := app.view()
	for _, name := range portal.FormNames {
		f := vm.Form(string(name))
		assert.Empty(t, f.Values, "form %s values", name)
		assert.Empty(t, f.Errors, "form %s errors", name)
	}
	assert.Nil(t, vm.Prompt)
}

func TestApp_PromptDroppedOnUserChange(t *testing.T) {
	t.Run("delete raised by an admin", func(t *testing.T) {
		app := newTestApp(t)
		app.login(t, adminLogin)
		require.NoError(t, app.AddAnnouncement(core.Fields{"title": "T", "content": "C", "priority": "urgent"}))
		id := app.view().Dashboard.Admin.Announcements[0].ID
		require.NoError(t, app.RequestDelete(portal.ListAnnouncements, id))

		app.login(t, studentLogin)
		_, ok := app.PendingPrompt()
		assert.False(t, ok)
		assert.Equal(t, portal.ErrNoPendingPrompt, app.ConfirmPrompt())

		require.NoError(t, app.Show(portal.SectionDashboard))
		assert.Len(t, app.view().Dashboard.Student.Announcements, 1)
	})

	t.Run("timeout raised for the previous user", func(t *testing.T) {
		app := newTestApp(t)
		app.login(t, adminLogin)
		app.clock.Advance(31 * time.Minute)
		require.True(t, app.CheckTimeout(app.clock.Now()))

		app.login(t, studentLogin)
		assert.Equal(t, portal.ErrNoPendingPrompt, app.ConfirmPrompt())
		usr, ok := app.CurrentUser()
		require.True(t, ok)
		assert.Equal(t, user.RoleStudent, usr.Role)
	})
}

func TestApp_RequestLogoutAnonymous(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, portal.ErrNotAuthenticated, app.RequestLogout())
}

func TestApp_ConfirmWithoutPrompt(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, portal.ErrNoPendingPrompt, app.ConfirmPrompt())
	app.DismissPrompt() // never fails
}

func TestApp_Notifications(t *testing.T) {
	app := newTestApp(t)
	app.login(t, studentLogin)

	assert.NotNil(t, app.View(testutil.Today.Add(2999*time.Millisecond)).Notification)
	assert.Nil(t, app.View(testutil.Today.Add(3*time.Second)).Notification)
}
