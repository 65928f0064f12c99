package store

import (
	"time"

	"github.com/tusthegr8/campus-companion/core/board"
	"github.com/tusthegr8/campus-companion/core/user"
)

// Seed fills an empty portal with sample records. Event dates are relative to `now` so they are never in the past.
func (s *Store) Seed(now time.Time) {
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(board.DateLayout) }

	// inserted oldest first so the lists end up newest first
	s.Users.InsertFront(user.Account{ID: s.NextID(now), Name: "Admin User", Email: "admin@campus.edu", Role: user.RoleAdmin})
	s.Users.InsertFront(user.Account{ID: s.NextID(now), Name: "Carl Kitusa", Email: "carl.kitusa@student.campus.edu", Role: user.RoleStudent})

	s.Schedules.InsertFront(board.Schedule{
		ID: s.NextID(now), Course: "CS101 Introduction to Programming", Date: day(1), Time: "09:00",
		Room: "Science Hall 204", Instructor: "Dr. Amina Wanjiru",
	})
	s.Schedules.InsertFront(board.Schedule{
		ID: s.NextID(now), Course: "MATH201 Linear Algebra", Date: day(2), Time: "11:00",
		Room: "Main Building 12", Instructor: "Prof. David Otieno",
	})

	s.Events.InsertFront(board.Event{
		ID: s.NextID(now), Title: "Career Fair", Description: "Meet recruiters from over 40 companies.",
		Date: day(7), Time: "10:00", Location: "Student Center", Organizer: "Admin User",
	})
	s.Events.InsertFront(board.Event{
		ID: s.NextID(now), Title: "Hackathon Kickoff", Description: "48 hours of building. Teams of up to four.",
		Date: day(14), Time: "18:00", Location: "Engineering Atrium", Organizer: "Admin User",
	})

	s.Announcements.InsertFront(board.Announcement{
		ID: s.NextID(now), Title: "Welcome back!", Priority: board.PriorityNormal, Date: now, Author: "Admin User",
		Content: "Classes resume on **Monday**. Check your schedule on the dashboard.",
	})
	s.Announcements.InsertFront(board.Announcement{
		ID: s.NextID(now), Title: "Library hours extended", Priority: board.PriorityImportant, Date: now, Author: "Admin User",
		Content: "The library is open until midnight during exam week.",
	})
}
