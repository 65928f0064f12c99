package portal

import (
	"time"

	"github.com/tusthegr8/campus-companion/core/board"
	"github.com/tusthegr8/campus-companion/core/user"
)

// NotificationKind styles a Notification.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationInfo    NotificationKind = "info"
)

// Notification is a transient message: it is part of the view only while it is younger than the notification TTL.
type Notification struct {
	Kind    NotificationKind
	Message string
	At      time.Time
}

type (
	// ViewModel is the immutable projection of an App that renderers consume.
	ViewModel struct {
		AppName      string
		Section      Section
		Nav          []NavItem
		User         *user.User
		Notification *Notification
		Prompt       *PromptView
		Redirect     *Redirect
		Forms        map[FormName]FormView
		Dashboard    *DashboardView // nil unless a user is logged in & the dashboard is shown
		Profile      *ProfileView   // nil unless a user is logged in & the profile is shown
	}

	NavItem struct {
		Section Section
		Title   string
		Active  bool
		Visible bool
	}

	PromptView struct {
		Kind    PromptKind
		Message string
	}

	// Redirect asks the front-end to navigate to Section once After has elapsed.
	Redirect struct {
		Section Section
		After   time.Duration
	}

	FormView struct {
		Values map[string]string
		Errors map[string]string
	}

	// DashboardView holds exactly one of Student or Admin, matching Role.
	DashboardView struct {
		Role    user.Role
		Student *StudentDashboard
		Admin   *AdminDashboard
	}

	StudentDashboard struct {
		Announcements []board.Announcement
		Events        []board.Event
		Schedules     []board.Schedule
	}

	AdminDashboard struct {
		Announcements []board.Announcement
		Events        []board.Event
		Schedules     []board.Schedule
		Users         []user.Account
	}

	ProfileView struct {
		Mode   ProfileMode
		Role   user.Role
		Record user.Profile
	}
)

// Form returns the state of form `name`. Missing forms come back empty.
func (vm ViewModel) Form(name string) FormView {
	if f, ok := vm.Forms[FormName(name)]; ok {
		return f
	}
	return FormView{Values: map[string]string{}, Errors: map[string]string{}}
}

func (vm ViewModel) LoggedIn() bool { return vm.User != nil }

func (vm ViewModel) IsAdmin() bool { return vm.User != nil && vm.User.IsAdmin() }

func (f FormView) Value(field string) string { return f.Values[field] }

func (f FormView) Error(field string) string { return f.Errors[field] }

func (f FormView) HasErrors() bool { return len(f.Errors) > 0 }

func (p ProfileView) Editing() bool { return p.Mode == ProfileEdit }

// View projects the App state at `now`.
func (a *App) View(now time.Time) ViewModel {
	a.mu.Lock()
	defer a.mu.Unlock()

	vm := ViewModel{
		AppName: a.opts.AppName,
		Section: a.section,
		Forms:   make(map[FormName]FormView, len(a.forms)),
	}

	if t := a.transition; t != nil && now.Before(t.until) {
		vm.Section = t.from
		vm.Redirect = &Redirect{Section: t.to, After: t.until.Sub(now)}
	}

	usr, loggedIn := a.store.CurrentUser()
	if loggedIn {
		vm.User = &usr
	}

	vm.Nav = make([]NavItem, 0, len(Sections))
	for _, s := range Sections {
		vm.Nav = append(vm.Nav, NavItem{
			Section: s,
			Title:   s.Title(),
			Active:  s == vm.Section,
			Visible: s.visibleTo(loggedIn),
		})
	}

	if n := a.notification; n != nil && now.Sub(n.At) < a.opts.NotificationTTL {
		ntf := *n
		vm.Notification = &ntf
	}
	if p := a.prompt; p != nil {
		vm.Prompt = &PromptView{Kind: p.kind, Message: p.message}
	}

	for name, f := range a.forms {
		vm.Forms[name] = FormView{Values: copyMap(f.Values), Errors: copyMap(f.Errors)}
	}

	if loggedIn {
		switch vm.Section {
		case SectionDashboard:
			vm.Dashboard = a.dashboard(usr)
		case SectionProfile:
			prof, _ := a.store.Profile(usr.Role)
			vm.Profile = &ProfileView{Mode: a.profileMode, Role: usr.Role, Record: prof}
		}
	}
	return vm
}

func (a *App) dashboard(usr user.User) *DashboardView {
	dash := &DashboardView{Role: usr.Role}
	switch usr.Role {
	case user.RoleStudent:
		dash.Student = &StudentDashboard{
			Announcements: a.store.Announcements.All(),
			Events:        a.store.Events.All(),
			Schedules:     a.store.Schedules.All(),
		}
	case user.RoleAdmin:
		dash.Admin = &AdminDashboard{
			Announcements: a.store.Announcements.All(),
			Events:        a.store.Events.All(),
			Schedules:     a.store.Schedules.All(),
			Users:         a.store.Users.All(),
		}
	}
	return dash
}

func copyMap[M ~map[string]string](m M) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
