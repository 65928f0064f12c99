package portal

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tusthegr8/campus-companion/core"
	"github.com/tusthegr8/campus-companion/core/board"
	"github.com/tusthegr8/campus-companion/core/user"
)

// FormName identifies one of the portal forms.
type FormName string

const (
	FormLogin        FormName = "login"
	FormRegister     FormName = "register"
	FormAnnouncement FormName = "announcement"
	FormEvent        FormName = "event"
	FormSchedule     FormName = "schedule"
	FormUser         FormName = "user"
	FormProfile      FormName = "profile"
)

var FormNames = []FormName{FormLogin, FormRegister, FormAnnouncement, FormEvent, FormSchedule, FormUser, FormProfile}

// form field names
const (
	FieldName        = "name"
	FieldEmail       = core.FieldEmail
	FieldPassword    = core.FieldPassword
	FieldUserType    = "userType"
	FieldTitle       = "title"
	FieldContent     = "content"
	FieldPriority    = "priority"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldTime        = "time"
	FieldLocation    = "location"
	FieldCourse      = "course"
	FieldRoom        = "room"
	FieldInstructor  = "instructor"
	FieldPhone       = "phone"
	FieldDepartment  = "department"
	FieldAddress     = "address"
)

// field error texts not covered by the validator
const (
	invalidUserTypeText = "Please select a valid user type"
	invalidPriorityText = "Please select a valid priority"
	invalidDateText     = "Please enter a valid date"
	invalidTimeText     = "Please enter a valid time"
	pastEventText       = "Event date cannot be in the past"
)

// FormState is what a form shows: the submitted values & one error per field.
type FormState struct {
	Values core.Fields
	Errors map[string]string
}

func (f *FormState) clearErrors() { f.Errors = make(map[string]string) }

func (f *FormState) reset() {
	f.Values = make(core.Fields)
	f.clearErrors()
}

type formSet map[FormName]*FormState

func newFormSet() formSet {
	fs := make(formSet, len(FormNames))
	for _, name := range FormNames {
		fs[name] = &FormState{}
		fs[name].reset()
	}
	return fs
}

func (fs formSet) reset(name FormName) { fs[name].reset() }

func (fs formSet) resetAll() {
	for _, f := range fs {
		f.reset()
	}
}

// begin clears prior errors of form `name`, keeps a copy of the submitted values & runs the field checks.
// Failed checks are left in the form's Errors.
func (a *App) begin(name FormName, fields core.Fields, required ...string) *FormState {
	a.touch()

	form := a.forms[name]
	form.clearErrors()
	form.Values = make(core.Fields, len(fields))
	for k, v := range fields {
		form.Values[k] = v
	}

	res := a.deps.Validator.Check(fields, required...)
	for fld, msg := range res.Errors {
		form.Errors[fld] = msg
	}
	return form
}

// fail returns the errors of `form` as a *core.ValidationError.
func (a *App) fail(form *FormState) error {
	flds := make([]core.FieldError, 0, len(form.Errors))
	for fld, msg := range form.Errors {
		flds = append(flds, core.FieldError{Field: fld, Error: msg})
	}
	return core.NewValidationError(nil, flds...)
}

func parseRoleField(form *FormState, fields core.Fields) user.Role {
	if _, failed := form.Errors[FieldUserType]; failed {
		return 0
	}
	role, err := user.ParseRole(fields.Get(FieldUserType))
	if err != nil {
		form.Errors[FieldUserType] = invalidUserTypeText
		return 0
	}
	return role
}

func checkDateTime(form *FormState, fields core.Fields, now time.Time) {
	if _, failed := form.Errors[FieldDate]; !failed {
		if _, err := board.ParseDate(fields.Get(FieldDate), now.Location()); err != nil {
			form.Errors[FieldDate] = invalidDateText
		}
	}
	if _, failed := form.Errors[FieldTime]; !failed {
		if _, err := time.Parse(board.TimeLayout, fields.Get(FieldTime)); err != nil {
			form.Errors[FieldTime] = invalidTimeText
		}
	}
}

// Authentication

// authMessages are the notification texts of the authenticator failures users can act on.
var authMessages = map[error]string{
	user.ErrAuthenticationFailed: "Invalid email or password.",
	user.ErrRoleMismatch:         "This account cannot sign in with the selected user type.",
	user.ErrEmailExists:          "An account with this email already exists.",
	user.ErrInvalidRole:          "Please select a valid user type.",
	user.ErrPasswordTooLong:      "Password must be at most 72 bytes long.",
}

// Login signs a user in through the Authenticator. The App is not locked while the Authenticator runs.
func (a *App) Login(ctx context.Context, fields core.Fields) error {
	a.mu.Lock()
	form := a.begin(FormLogin, fields, FieldEmail, FieldPassword, FieldUserType)
	role := parseRoleField(form, fields)
	if len(form.Errors) > 0 {
		defer a.mu.Unlock()
		return a.fail(form)
	}
	a.mu.Unlock()

	usr, err := a.deps.Auth.Login(ctx, user.Credentials{
		Email:    fields.Get(FieldEmail),
		Password: fields[FieldPassword],
		Role:     role,
	})

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		return a.authFailed(err, "Login failed. Please try again.")
	}
	a.signIn(usr, FormLogin, "Login successful!")
	a.debug("portal: login", usr)
	return nil
}

// Register creates an account through the Authenticator, signs it in & sends a welcome email.
func (a *App) Register(ctx context.Context, fields core.Fields) error {
	a.mu.Lock()
	form := a.begin(FormRegister, fields, FieldName, FieldEmail, FieldPassword, FieldUserType)
	role := parseRoleField(form, fields)
	if len(form.Errors) > 0 {
		defer a.mu.Unlock()
		return a.fail(form)
	}
	a.mu.Unlock()

	usr, err := a.deps.Auth.Register(ctx, user.Registration{
		Name:     fields.Get(FieldName),
		Email:    fields.Get(FieldEmail),
		Password: fields[FieldPassword],
		Role:     role,
	})

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		return a.authFailed(err, "Registration failed. Please try again.")
	}
	a.signIn(usr, FormRegister, "Registration successful!")
	a.sendWelcomeEmail(usr)
	a.debug("portal: registration", usr)
	return nil
}

func (a *App) authFailed(err error, fallback string) error {
	if msg, ok := authMessages[errors.Cause(err)]; ok {
		a.notify(NotificationError, msg)
		return core.NewRuleError(msg)
	}
	a.notify(NotificationError, fallback)
	return errors.Wrap(err, "authenticating")
}

func (a *App) signIn(usr user.User, form FormName, msg string) {
	now := a.now()
	a.store.SetCurrentUser(usr)
	a.prompt = nil
	a.forms.reset(form)
	a.notify(NotificationSuccess, msg)
	a.lastActivity = now
	a.transition = &transition{from: a.section, to: SectionDashboard, until: now.Add(a.opts.RedirectDelay)}
	a.section = SectionDashboard
}

// logout clears the current user, any pending prompt & every form and goes back home.
// It is what a confirmed logout or timeout prompt runs.
func (a *App) logout() {
	usr, _ := a.store.CurrentUser()
	a.store.ClearCurrentUser()
	a.prompt = nil
	a.forms.resetAll()
	a.profileMode = ProfileDisplay
	a.transition = nil
	a.section = SectionHome
	a.notify(NotificationInfo, "You have been logged out.")
	a.debug("portal: logout", usr)
}

// Admin forms

func (a *App) AddAnnouncement(fields core.Fields) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	usr, err := a.requireAdmin()
	if err != nil {
		return err
	}
	form := a.begin(FormAnnouncement, fields, FieldTitle, FieldContent, FieldPriority)
	var priority board.Priority
	if _, failed := form.Errors[FieldPriority]; !failed {
		if priority, err = board.ParsePriority(fields.Get(FieldPriority)); err != nil {
			form.Errors[FieldPriority] = invalidPriorityText
		}
	}
	if len(form.Errors) > 0 {
		return a.fail(form)
	}

	now := a.now()
	a.store.Announcements.InsertFront(board.Announcement{
		ID:       a.store.NextID(now),
		Title:    fields.Get(FieldTitle),
		Content:  fields.Get(FieldContent),
		Priority: priority,
		Date:     now,
		Author:   usr.Name,
	})
	a.forms.reset(FormAnnouncement)
	a.notify(NotificationSuccess, "Announcement added successfully!")
	return nil
}

func (a *App) AddEvent(fields core.Fields) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	usr, err := a.requireAdmin()
	if err != nil {
		return err
	}
	form := a.begin(FormEvent, fields, FieldTitle, FieldDescription, FieldDate, FieldTime, FieldLocation)
	now := a.now()
	checkDateTime(form, fields, now)
	if len(form.Errors) > 0 {
		return a.fail(form)
	}

	date := fields.Get(FieldDate)
	past, err := board.IsPastDate(date, now)
	if err != nil {
		return errors.Wrap(err, "checking event date")
	}
	if past {
		a.notify(NotificationError, pastEventText)
		return core.NewRuleError(pastEventText)
	}

	a.store.Events.InsertFront(board.Event{
		ID:          a.store.NextID(now),
		Title:       fields.Get(FieldTitle),
		Description: fields.Get(FieldDescription),
		Date:        date,
		Time:        fields.Get(FieldTime),
		Location:    fields.Get(FieldLocation),
		Organizer:   usr.Name,
	})
	a.forms.reset(FormEvent)
	a.notify(NotificationSuccess, "Event added successfully!")
	return nil
}

func (a *App) AddSchedule(fields core.Fields) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	form := a.begin(FormSchedule, fields, FieldCourse, FieldDate, FieldTime, FieldRoom, FieldInstructor)
	now := a.now()
	checkDateTime(form, fields, now)
	if len(form.Errors) > 0 {
		return a.fail(form)
	}

	a.store.Schedules.InsertFront(board.Schedule{
		ID:         a.store.NextID(now),
		Course:     fields.Get(FieldCourse),
		Date:       fields.Get(FieldDate),
		Time:       fields.Get(FieldTime),
		Room:       fields.Get(FieldRoom),
		Instructor: fields.Get(FieldInstructor),
	})
	a.forms.reset(FormSchedule)
	a.notify(NotificationSuccess, "Schedule added successfully!")
	return nil
}

// AddAccount adds a portal user record. It does not create a login.
func (a *App) AddAccount(fields core.Fields) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	form := a.begin(FormUser, fields, FieldName, FieldEmail, FieldUserType)
	role := parseRoleField(form, fields)
	if len(form.Errors) > 0 {
		return a.fail(form)
	}

	now := a.now()
	a.store.Users.InsertFront(user.Account{
		ID:    a.store.NextID(now),
		Name:  fields.Get(FieldName),
		Email: core.CleanString(fields[FieldEmail], true /* lower */),
		Role:  role,
	})
	a.forms.reset(FormUser)
	a.notify(NotificationSuccess, "User added successfully!")
	return nil
}

// Profile form

// ProfileMode selects how the profile is rendered.
type ProfileMode uint8

const (
	ProfileDisplay ProfileMode = iota
	ProfileEdit
)

// EditProfile switches the profile to edit mode with its inputs pre-filled from the current record.
func (a *App) EditProfile() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.touch()
	usr, ok := a.store.CurrentUser()
	if !ok {
		return ErrNotAuthenticated
	}
	prof, _ := a.store.Profile(usr.Role)

	form := a.forms[FormProfile]
	form.reset()
	form.Values[FieldName] = prof.Name
	form.Values[FieldEmail] = prof.Email
	form.Values[FieldPhone] = prof.Phone
	form.Values[FieldDepartment] = prof.Department
	form.Values[FieldAddress] = prof.Address

	a.profileMode = ProfileEdit
	a.section = SectionProfile
	a.transition = nil
	return nil
}

// UpdateProfile saves the profile record of the current user's role.
func (a *App) UpdateProfile(fields core.Fields) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	usr, ok := a.store.CurrentUser()
	if !ok {
		a.touch()
		return ErrNotAuthenticated
	}
	if form := a.begin(FormProfile, fields, FieldName, FieldEmail); len(form.Errors) > 0 {
		a.profileMode = ProfileEdit
		return a.fail(form)
	}

	a.store.SetProfile(usr.Role, user.Profile{
		Name:       fields.Get(FieldName),
		Email:      fields.Get(FieldEmail),
		Phone:      fields.Get(FieldPhone),
		Department: fields.Get(FieldDepartment),
		Address:    fields.Get(FieldAddress),
	})
	a.forms.reset(FormProfile)
	a.profileMode = ProfileDisplay
	a.notify(NotificationSuccess, "Profile updated successfully!")
	return nil
}

// CancelProfileEdit drops the edits & goes back to display mode.
func (a *App) CancelProfileEdit() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.touch()
	a.forms.reset(FormProfile)
	a.profileMode = ProfileDisplay
}
