package user

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/tusthegr8/campus-companion/core"
)

var (
	// errors
	ErrAuthenticationFailed = errors.New("invalid email or password")
	ErrEmailExists          = errors.New("a user with this email already exists")
	ErrRoleMismatch         = errors.New("this account cannot sign in with the selected user type")
	ErrPasswordTooLong      = errors.New("password must be at most 72 bytes long")

	// simulated identities
	simulatedStudentName = "Carl Kitusa"
	simulatedAdminName   = "Admin User"
)

// Authenticator is the async boundary behind the login & register forms.
// Implementations must honour ctx cancellation.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (User, error)
	Register(ctx context.Context, reg Registration) (User, error)
}

// wait blocks for `d` or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SimulatedAuthenticator accepts any credentials after `latency`, mimicking a network round trip.
// It is a placeholder for a real backend.
type SimulatedAuthenticator struct {
	latency time.Duration
}

var _ Authenticator = (*SimulatedAuthenticator)(nil)

func NewSimulatedAuthenticator(latency time.Duration) *SimulatedAuthenticator {
	return &SimulatedAuthenticator{latency: latency}
}

func (a *SimulatedAuthenticator) Login(ctx context.Context, creds Credentials) (User, error) {
	if err := wait(ctx, a.latency); err != nil {
		return User{}, errors.Wrap(err, "simulating login")
	}

	var name string
	switch creds.Role {
	case RoleStudent:
		name = simulatedStudentName
	case RoleAdmin:
		name = simulatedAdminName
	default:
		return User{}, ErrInvalidRole
	}
	return User{Name: name, Email: core.CleanString(creds.Email, true /* lower */), Role: creds.Role}, nil
}

func (a *SimulatedAuthenticator) Register(ctx context.Context, reg Registration) (User, error) {
	if err := wait(ctx, a.latency); err != nil {
		return User{}, errors.Wrap(err, "simulating registration")
	}
	if !reg.Role.Valid() {
		return User{}, ErrInvalidRole
	}
	return User{
		Name:  core.CleanString(reg.Name),
		Email: core.CleanString(reg.Email, true /* lower */),
		Role:  reg.Role,
	}, nil
}

// DirectoryAuthenticator keeps registered accounts in memory and verifies their bcrypt-hashed passwords.
type DirectoryAuthenticator struct {
	latency time.Duration
	entries map[string]*directoryEntry // by email
	mutex   sync.RWMutex
}

var _ Authenticator = (*DirectoryAuthenticator)(nil)

func NewDirectoryAuthenticator(latency time.Duration) *DirectoryAuthenticator {
	return &DirectoryAuthenticator{
		latency: latency,
		entries: make(map[string]*directoryEntry),
	}
}

func (a *DirectoryAuthenticator) Login(ctx context.Context, creds Credentials) (User, error) {
	if err := wait(ctx, a.latency); err != nil {
		return User{}, errors.Wrap(err, "authenticating")
	}

	a.mutex.RLock()
	entry, ok := a.entries[core.CleanString(creds.Email, true /* lower */)]
	a.mutex.RUnlock()

	if !ok {
		return User{}, ErrAuthenticationFailed
	}
	if err := entry.CheckPassword(creds.Password); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	if entry.Role != creds.Role {
		return User{}, ErrRoleMismatch
	}
	return entry.User, nil
}

func (a *DirectoryAuthenticator) Register(ctx context.Context, reg Registration) (User, error) {
	if err := wait(ctx, a.latency); err != nil {
		return User{}, errors.Wrap(err, "registering")
	}
	if !reg.Role.Valid() {
		return User{}, ErrInvalidRole
	}

	entry := &directoryEntry{
		User: User{
			Name:  core.CleanString(reg.Name),
			Email: core.CleanString(reg.Email, true /* lower */),
			Role:  reg.Role,
		},
	}
	if err := entry.SetPassword(reg.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if _, exists := a.entries[entry.Email]; exists {
		return User{}, ErrEmailExists
	}
	a.entries[entry.Email] = entry
	return entry.User, nil
}
