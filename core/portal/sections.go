package portal

import (
	"github.com/pkg/errors"

	"github.com/tusthegr8/campus-companion/core"
)

// Section is one of the mutually exclusive top-level views.
type Section string

const (
	SectionHome      Section = "home"
	SectionLogin     Section = "login"
	SectionRegister  Section = "register"
	SectionDashboard Section = "dashboard"
	SectionProfile   Section = "profile"
	SectionFeatures  Section = "features"
)

var Sections = []Section{SectionHome, SectionFeatures, SectionLogin, SectionRegister, SectionDashboard, SectionProfile}

func ParseSection(s string) (Section, error) {
	sec := Section(core.CleanString(s, true /* lower */))
	if sec == "" {
		return SectionHome, nil
	}
	if !sec.Valid() {
		return "", errors.Wrapf(ErrUnknownSection, "%q", s)
	}
	return sec, nil
}

func (s Section) Valid() bool {
	switch s {
	case SectionHome, SectionLogin, SectionRegister, SectionDashboard, SectionProfile, SectionFeatures:
		return true
	default:
		return false
	}
}

func (s Section) Title() string {
	switch s {
	case SectionHome:
		return "Home"
	case SectionLogin:
		return "Login"
	case SectionRegister:
		return "Register"
	case SectionDashboard:
		return "Dashboard"
	case SectionProfile:
		return "Profile"
	case SectionFeatures:
		return "Features"
	default:
		return string(s)
	}
}

// visibleTo reports whether the navigation entry for `s` is shown to a visitor.
func (s Section) visibleTo(loggedIn bool) bool {
	switch s {
	case SectionLogin, SectionRegister:
		return !loggedIn
	case SectionDashboard, SectionProfile:
		return loggedIn
	default:
		return true
	}
}

// Show makes `section` the current one and runs its setup:
// the profile goes back to display mode and any pending post-login redirect is dropped.
// Showing the dashboard or the profile while anonymous is allowed; their content is simply not projected.
func (a *App) Show(section Section) error {
	if !section.Valid() {
		return errors.Wrapf(ErrUnknownSection, "%q", section)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.touch()
	a.transition = nil
	a.section = section

	if section == SectionProfile {
		a.profileMode = ProfileDisplay
		a.forms.reset(FormProfile)
	}
	return nil
}

// Section returns the current section.
func (a *App) Section() Section {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.section
}
