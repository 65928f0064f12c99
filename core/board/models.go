// Package board holds the records published on the campus board: announcements, events & class schedules.
package board

import (
	"time"

	"github.com/pkg/errors"

	"github.com/tusthegr8/campus-companion/core"
)

// layouts
const (
	DateLayout        = "2006-01-02" // event & schedule dates, as submitted by the forms
	TimeLayout        = "15:04"
	DisplayDateLayout = "1/2/2006"
)

// Priority defines how prominently an announcement is displayed.
type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityImportant Priority = "important"
	PriorityUrgent    Priority = "urgent"
)

var (
	Priorities = []Priority{PriorityNormal, PriorityImportant, PriorityUrgent}

	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidDate     = errors.New("invalid date")
)

// ParsePriority parses `s` ignoring case & surrounding spaces.
func ParsePriority(s string) (Priority, error) {
	p := Priority(core.CleanString(s, true /* lower */))
	if !p.Valid() {
		return "", errors.Wrapf(ErrInvalidPriority, "%q", s)
	}
	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityImportant, PriorityUrgent:
		return true
	default:
		return false
	}
}

// Label is the capitalized form shown on badges.
func (p Priority) Label() string {
	switch p {
	case PriorityNormal:
		return "Normal"
	case PriorityImportant:
		return "Important"
	case PriorityUrgent:
		return "Urgent"
	default:
		return string(p)
	}
}

// Announcement is a notice posted by an admin. Content is markdown.
type Announcement struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Priority Priority  `json:"priority"`
	Date     time.Time `json:"date"` // creation day
	Author   string    `json:"author"`
}

func (a Announcement) RecordID() int64 { return a.ID }

// DisplayDate formats the creation day as M/D/YYYY.
func (a Announcement) DisplayDate() string { return a.Date.Format(DisplayDateLayout) }

// Event is a dated campus event. Date & Time are kept as submitted (YYYY-MM-DD, HH:MM).
type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Organizer   string `json:"organizer"`
}

func (e Event) RecordID() int64 { return e.ID }

// Schedule is a class session. Its date has no constraint.
type Schedule struct {
	ID         int64  `json:"id"`
	Course     string `json:"course"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Room       string `json:"room"`
	Instructor string `json:"instructor"`
}

func (s Schedule) RecordID() int64 { return s.ID }

// ParseDate parses a YYYY-MM-DD date in `loc`.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, core.CleanString(s), loc)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidDate, "%q", s)
	}
	return d, nil
}

// Day truncates `t` to midnight in its own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsPastDate reports whether the YYYY-MM-DD `date` is strictly before the day of `now`.
// Today is not in the past.
func IsPastDate(date string, now time.Time) (bool, error) {
	d, err := ParseDate(date, now.Location())
	if err != nil {
		return false, err
	}
	return d.Before(Day(now)), nil
}
