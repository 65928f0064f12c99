package portal

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/user"
)

// PromptKind is the destructive action waiting for a confirmation.
type PromptKind string

const (
	PromptDelete  PromptKind = "delete"
	PromptLogout  PromptKind = "logout"
	PromptTimeout PromptKind = "timeout"
)

// prompt belongs to the user who raised it: it is dropped whenever the current user changes.
type prompt struct {
	kind    PromptKind
	message string
	owner   user.User
	action  func() // runs with the App locked
}

// List names one of the four collections.
type List string

const (
	ListAnnouncements List = "announcements"
	ListEvents        List = "events"
	ListSchedules     List = "schedules"
	ListUsers         List = "users"
)

var Lists = []List{ListAnnouncements, ListEvents, ListSchedules, ListUsers}

func ParseList(s string) (List, error) {
	l := List(core.CleanString(s, true /* lower */))
	switch l {
	case ListAnnouncements, ListEvents, ListSchedules, ListUsers:
		return l, nil
	default:
		return "", errors.Wrapf(ErrUnknownList, "%q", s)
	}
}

// noun is the singular, capitalized record name of the List.
func (l List) noun() string {
	switch l {
	case ListAnnouncements:
		return "Announcement"
	case ListEvents:
		return "Event"
	case ListSchedules:
		return "Schedule"
	case ListUsers:
		return "User"
	default:
		return "Record"
	}
}

func (a *App) remover(l List) (func(id int64) bool, error) {
	switch l {
	case ListAnnouncements:
		return a.store.Announcements.RemoveByID, nil
	case ListEvents:
		return a.store.Events.RemoveByID, nil
	case ListSchedules:
		return a.store.Schedules.RemoveByID, nil
	case ListUsers:
		return a.store.Users.RemoveByID, nil
	default:
		return nil, errors.Wrapf(ErrUnknownList, "%q", l)
	}
}

func (a *App) exists(l List, id int64) bool {
	var ok bool
	switch l {
	case ListAnnouncements:
		_, ok = a.store.Announcements.Get(id)
	case ListEvents:
		_, ok = a.store.Events.Get(id)
	case ListSchedules:
		_, ok = a.store.Schedules.Get(id)
	case ListUsers:
		_, ok = a.store.Users.Get(id)
	}
	return ok
}

// RequestDelete asks for a confirmation before removing record `id` from list `l`.
func (a *App) RequestDelete(l List, id int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	usr, err := a.requireAdmin()
	if err != nil {
		return err
	}
	remove, err := a.remover(l)
	if err != nil {
		return err
	}
	a.touch()
	if !a.exists(l, id) {
		return errors.Wrapf(ErrNotFound, "%s %d", l, id)
	}

	noun := l.noun()
	a.prompt = &prompt{
		kind:    PromptDelete,
		message: "Are you sure you want to delete this " + strings.ToLower(noun) + "?",
		owner:   usr,
		action: func() {
			if remove(id) {
				a.notify(NotificationSuccess, noun+" deleted successfully!")
			}
		},
	}
	return nil
}

// RequestLogout asks for a confirmation before logging out.
func (a *App) RequestLogout() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.touch()
	usr, ok := a.store.CurrentUser()
	if !ok {
		return ErrNotAuthenticated
	}
	a.prompt = &prompt{
		kind:    PromptLogout,
		message: "Are you sure you want to logout?",
		owner:   usr,
		action:  a.logout,
	}
	return nil
}

// ConfirmPrompt runs the pending action. A prompt raised by another user than the current one is dropped
// without running.
func (a *App) ConfirmPrompt() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.touch()
	p := a.prompt
	if p == nil {
		return ErrNoPendingPrompt
	}
	a.prompt = nil
	if usr, ok := a.store.CurrentUser(); !ok || usr != p.owner {
		return ErrNoPendingPrompt
	}
	p.action()
	return nil
}

// DismissPrompt drops the pending action, if any. Declining is never an error.
func (a *App) DismissPrompt() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.touch()
	a.prompt = nil
}

// PendingPrompt returns the kind of the pending prompt, if any.
func (a *App) PendingPrompt() (PromptKind, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.prompt == nil {
		return "", false
	}
	return a.prompt.kind, true
}
