package store

import (
	"time"

	"github.com/tusthegr8/campus-companion/core/board"
	"github.com/tusthegr8/campus-companion/core/user"
)

// Store is the state of one portal.
type Store struct {
	Announcements *Collection[board.Announcement]
	Events        *Collection[board.Event]
	Schedules     *Collection[board.Schedule]
	Users         *Collection[user.Account]

	profiles    user.Profiles
	currentUser *user.User
	lastID      int64
}

func New() *Store {
	return &Store{
		Announcements: NewCollection[board.Announcement](),
		Events:        NewCollection[board.Event](),
		Schedules:     NewCollection[board.Schedule](),
		Users:         NewCollection[user.Account](),
		profiles:      user.DefaultProfiles(),
	}
}

// NextID returns a creation-timestamp id (unix millis). Ids are strictly increasing:
// when `now` does not move past the last id, the last id is bumped by one.
func (s *Store) NextID(now time.Time) int64 {
	id := now.UnixNano() / int64(time.Millisecond)
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// CurrentUser returns the logged in user, if any.
func (s *Store) CurrentUser() (user.User, bool) {
	if s.currentUser == nil {
		return user.User{}, false
	}
	return *s.currentUser, true
}

func (s *Store) SetCurrentUser(usr user.User) { s.currentUser = &usr }

func (s *Store) ClearCurrentUser() { s.currentUser = nil }

// Profile returns the profile record for `role`.
func (s *Store) Profile(role user.Role) (user.Profile, bool) {
	return s.profiles.Get(role)
}

func (s *Store) SetProfile(role user.Role, prof user.Profile) {
	s.profiles[role] = prof
}
