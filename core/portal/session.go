package portal

import "time"

// Touch records user activity (pointer, key, scroll or pointer-move signals).
func (a *App) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touch()
}

func (a *App) touch() { a.lastActivity = a.now() }

// LastActivity is when the user last interacted with the portal.
func (a *App) LastActivity() time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastActivity
}

// CheckTimeout raises the timeout prompt when a user is logged in and has been idle for longer than the
// session timeout. It reports whether the prompt is pending afterwards.
// Confirming the prompt logs the user out; dismissing it keeps the session.
func (a *App) CheckTimeout(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	usr, ok := a.store.CurrentUser()
	if !ok {
		return false
	}
	if a.prompt != nil && a.prompt.kind == PromptTimeout {
		return true
	}
	if now.Sub(a.lastActivity) <= a.opts.SessionTimeout {
		return false
	}
	a.prompt = &prompt{
		kind:    PromptTimeout,
		message: "Your session has expired. Please log in again.",
		owner:   usr,
		action:  a.logout,
	}
	return true
}
