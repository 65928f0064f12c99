// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tusthegr8/campus-companion/core"
)

// Today is the fixed "now" the tests run at.
var Today = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

// NewFieldValidator returns a FieldValidator with the portal rules registered.
func NewFieldValidator() *core.FieldValidator {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	return core.NewFieldValidator(validate, translator)
}

// Clock is a manually advanced clock.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{t: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

// MailerMock records the messages it is asked to send.
type MailerMock struct {
	mu   sync.Mutex
	sent []core.EmailMessage
}

var _ core.EmailService = (*MailerMock)(nil)

func (m *MailerMock) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		m.sent = append(m.sent, *msg)
	}
}

func (m *MailerMock) Sent() []core.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.EmailMessage(nil), m.sent...)
}

// LoggerMock records the logged messages.
type LoggerMock struct {
	mu      sync.Mutex
	entries []LogEntry
}

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

var _ core.Logger = (*LoggerMock)(nil)

func (l *LoggerMock) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *LoggerMock) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *LoggerMock) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *LoggerMock) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *LoggerMock) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *LoggerMock) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

// Entries returns the entries logged at `level`, or all of them when `level` is empty.
func (l *LoggerMock) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
