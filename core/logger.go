package core

// Logger is any service that can log messages.
// expected args: error, map[string]interface{}, user.User (the session user, if any)
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// SessionID tags a log entry with the browser session it was written for.
type SessionID string
