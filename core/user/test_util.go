package user

import "context"

// AuthenticatorMock returns canned results without any latency.
type AuthenticatorMock struct {
	User  User
	Err   error
	Calls int
}

var _ Authenticator = (*AuthenticatorMock)(nil)

func (m *AuthenticatorMock) Login(ctx context.Context, _ Credentials) (User, error) {
	m.Calls++
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	return m.User, m.Err
}

func (m *AuthenticatorMock) Register(ctx context.Context, _ Registration) (User, error) {
	m.Calls++
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	return m.User, m.Err
}
