package portal_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/portal"
	"github.com/tusthegr8/campus-companion/core/user"
)

func TestParseSection(t *testing.T) {
	for _, s := range portal.Sections {
		got, err := portal.ParseSection(string(s))
		assert.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := portal.ParseSection("")
	assert.NoError(t, err)
	assert.Equal(t, portal.SectionHome, got)

	_, err = portal.ParseSection("grades")
	assert.Equal(t, portal.ErrUnknownSection, errors.Cause(err))
}

func TestApp_Show(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, portal.SectionHome, app.Section())

	require.NoError(t, app.Show(portal.SectionFeatures))
	assert.Equal(t, portal.SectionFeatures, app.Section())

	err := app.Show(portal.Section("grades"))
	assert.Equal(t, portal.ErrUnknownSection, errors.Cause(err))
	assert.Equal(t, portal.SectionFeatures, app.Section(), "unchanged")
}

func TestApp_ShowProtectedWhileAnonymous(t *testing.T) {
	app := newTestApp(t)

	for _, s := range []portal.Section{portal.SectionProfile, portal.SectionDashboard} {
		require.NotPanics(t, func() { assert.NoError(t, app.Show(s)) })
		vm := app.view()
		assert.Equal(t, s, vm.Section)
		assert.Nil(t, vm.Profile)
		assert.Nil(t, vm.Dashboard)
	}
}

func TestApp_Nav(t *testing.T) {
	visible := func(vm portal.ViewModel) map[portal.Section]bool {
		out := make(map[portal.Section]bool)
		for _, item := range vm.Nav {
			out[item.Section] = item.Visible
		}
		return out
	}
	active := func(vm portal.ViewModel) []portal.Section {
		var out []portal.Section
		for _, item := range vm.Nav {
			if item.Active {
				out = append(out, item.Section)
			}
		}
		return out
	}

	app := newTestApp(t)
	require.NoError(t, app.Show(portal.SectionFeatures))
	vm := app.view()
	assert.Equal(t, []portal.Section{portal.SectionFeatures}, active(vm))
	assert.Equal(t, map[portal.Section]bool{
		portal.SectionHome: true, portal.SectionFeatures: true, portal.SectionLogin: true,
		portal.SectionRegister: true, portal.SectionDashboard: false, portal.SectionProfile: false,
	}, visible(vm))

	app.login(t, studentLogin)
	app.clock.Advance(time.Second)
	vm = app.view()
	assert.Equal(t, []portal.Section{portal.SectionDashboard}, active(vm))
	assert.Equal(t, map[portal.Section]bool{
		portal.SectionHome: true, portal.SectionFeatures: true, portal.SectionLogin: false,
		portal.SectionRegister: false, portal.SectionDashboard: true, portal.SectionProfile: true,
	}, visible(vm))
}

func TestApp_Profile(t *testing.T) {
	app := newTestApp(t)
	assert.Equal(t, portal.ErrNotAuthenticated, app.EditProfile())

	app.login(t, studentLogin)
	require.NoError(t, app.Show(portal.SectionProfile))

	vm := app.view()
	require.NotNil(t, vm.Profile)
	assert.False(t, vm.Profile.Editing())
	assert.Equal(t, user.RoleStudent, vm.Profile.Role)
	assert.Equal(t, "Carl Kitusa", vm.Profile.Record.Name)

	// edit mode is pre-filled from the record
	require.NoError(t, app.EditProfile())
	vm = app.view()
	assert.True(t, vm.Profile.Editing())
	assert.Equal(t, vm.Profile.Record.Email, vm.Form("profile").Value("email"))
	assert.Equal(t, vm.Profile.Record.Department, vm.Form("profile").Value("department"))

	// invalid update keeps edit mode & the record
	err := app.UpdateProfile(core.Fields{"name": "", "email": "carl@"})
	assert.Equal(t, map[string]string{
		"name":  "This field is required",
		"email": "Please enter a valid email address",
	}, fieldErrors(t, err))
	vm = app.view()
	assert.True(t, vm.Profile.Editing())
	assert.Equal(t, "Carl Kitusa", vm.Profile.Record.Name)

	// cancel drops the edits
	app.CancelProfileEdit()
	vm = app.view()
	assert.False(t, vm.Profile.Editing())
	assert.Empty(t, vm.Form("profile").Errors)

	require.NoError(t, app.EditProfile())
	require.NoError(t, app.UpdateProfile(core.Fields{
		"name": "Carl K.", "email": "carl@campus.edu", "phone": "123", "department": "Physics", "address": "Hall C",
	}))
	vm = app.view()
	assert.False(t, vm.Profile.Editing())
	assert.Equal(t, user.Profile{
		Name: "Carl K.", Email: "carl@campus.edu", Phone: "123", Department: "Physics", Address: "Hall C",
	}, vm.Profile.Record)
	assert.Equal(t, "Profile updated successfully!", vm.Notification.Message)

	// showing the profile again resets the mode
	require.NoError(t, app.EditProfile())
	require.NoError(t, app.Show(portal.SectionProfile))
	assert.False(t, app.view().Profile.Editing())
}

func TestApp_ProfileFollowsRole(t *testing.T) {
	app := newTestApp(t)
	app.login(t, adminLogin)
	require.NoError(t, app.Show(portal.SectionProfile))

	vm := app.view()
	require.NotNil(t, vm.Profile)
	assert.Equal(t, user.RoleAdmin, vm.Profile.Role)
	assert.Equal(t, "Admin User", vm.Profile.Record.Name)
}
