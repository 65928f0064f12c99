// Package portal is the campus portal controller. An App owns the whole state of one portal
// (store, current section, form state, prompt, notification & session activity) and every mutation goes
// through its methods. Front-ends render the ViewModel returned by App.View.
package portal

import (
	"net/mail"
	"sync"
	"time"

	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/store"
	"github.com/tusthegr8/campus-companion/core/user"
)

type (
	Options struct {
		AppName         string
		SessionTimeout  time.Duration
		RedirectDelay   time.Duration
		NotificationTTL time.Duration
		SeedData        bool
	}

	Deps struct {
		Auth      user.Authenticator
		Validator *core.FieldValidator
		Mailer    core.EmailService
		Logger    core.Logger
		Now       func() time.Time // defaults to time.Now
	}

	// App is safe for concurrent use: its mutex serializes every operation like a single event queue would.
	App struct {
		opts Options
		deps Deps

		mu           sync.Mutex
		store        *store.Store
		section      Section
		forms        formSet
		profileMode  ProfileMode
		prompt       *prompt
		notification *Notification
		transition   *transition
		lastActivity time.Time
	}

	// transition is a navigation the front-end performs after a short delay, eg: login -> dashboard.
	transition struct {
		from  Section
		to    Section
		until time.Time
	}
)

// OptionsFromConfig maps the portal settings of `conf`.
func OptionsFromConfig(conf *core.Config) Options {
	return Options{
		AppName:         conf.AppName,
		SessionTimeout:  conf.Session.Timeout,
		RedirectDelay:   conf.UI.RedirectDelay,
		NotificationTTL: conf.UI.NotificationTTL,
		SeedData:        conf.Portal.SeedData,
	}
}

func NewApp(opts Options, deps Deps) *App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	a := &App{
		opts:    opts,
		deps:    deps,
		store:   store.New(),
		section: SectionHome,
		forms:   newFormSet(),
	}
	now := a.now()
	a.lastActivity = now
	if opts.SeedData {
		a.store.Seed(now)
	}
	return a
}

func (a *App) now() time.Time { return a.deps.Now() }

// CurrentUser returns the logged in user, if any.
func (a *App) CurrentUser() (user.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store.CurrentUser()
}

func (a *App) notify(kind NotificationKind, msg string) {
	a.notification = &Notification{Kind: kind, Message: msg, At: a.now()}
}

// requireAdmin guards the admin-only operations.
func (a *App) requireAdmin() (user.User, error) {
	usr, ok := a.store.CurrentUser()
	if !ok {
		a.notify(NotificationError, "Please log in to continue.")
		return user.User{}, ErrNotAuthenticated
	}
	switch usr.Role {
	case user.RoleAdmin:
		return usr, nil
	case user.RoleStudent:
		a.notify(NotificationError, "Only administrators can do this.")
		return user.User{}, ErrForbidden
	default:
		return user.User{}, ErrForbidden
	}
}

func (a *App) sendWelcomeEmail(usr user.User) {
	if a.deps.Mailer == nil {
		return
	}
	a.deps.Mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + a.opts.AppName,
		TemplateName: "welcome",
		TemplateData: map[string]interface{}{
			"Name":  usr.Name,
			"Email": usr.Email,
			"Role":  usr.Role.Label(),
		},
	})
}

func (a *App) debug(msg string, args ...interface{}) {
	if a.deps.Logger != nil {
		a.deps.Logger.Debug(msg, args...)
	}
}
