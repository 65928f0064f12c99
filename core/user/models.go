package user

import (
	"golang.org/x/crypto/bcrypt"
)

// User is the session user: "who is logged in". It is fabricated at login/register and never verified
// unless a DirectoryAuthenticator is in use.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"type"`
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// Account is a portal user record managed by admins. It is distinct from the session User.
type Account struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"type"`
}

func (a Account) RecordID() int64 { return a.ID }

// Credentials is what the login form submits.
type Credentials struct {
	Email    string
	Password string
	Role     Role
}

// Registration is what the register form submits.
type Registration struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// directoryEntry is a registered account known to the DirectoryAuthenticator.
type directoryEntry struct {
	User
	PasswordHash []byte
}

// bcrypt only hashes the first 72 bytes of a password
const maxPasswordBytes = 72

func (e *directoryEntry) SetPassword(pwd string) error {
	if len(pwd) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	e.PasswordHash = hash
	return nil
}

func (e *directoryEntry) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(e.PasswordHash, []byte(pwd))
}
