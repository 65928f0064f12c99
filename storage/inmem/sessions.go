// Package inmemdb keeps the live portal sessions in memory.
package inmemdb

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/tusthegr8/campus-companion/core/portal"
)

var ErrSessionNotFound = errors.New("session not found")

// AppFactory builds the App of a new session.
type AppFactory func() *portal.App

// SessionRegistry maps session ids to their portal.App.
type SessionRegistry struct {
	newApp AppFactory
	table  map[string]*portal.App
	mutex  sync.RWMutex
}

func NewSessionRegistry(newApp AppFactory) *SessionRegistry {
	return &SessionRegistry{
		newApp: newApp,
		table:  make(map[string]*portal.App),
	}
}

// Create starts a new session and returns its id.
func (reg *SessionRegistry) Create() (string, *portal.App) {
	id := uuid.New().String()
	app := reg.newApp()

	reg.mutex.Lock()
	reg.table[id] = app
	reg.mutex.Unlock()
	return id, app
}

func (reg *SessionRegistry) Get(id string) (*portal.App, error) {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()

	if app, ok := reg.table[id]; ok {
		return app, nil
	}
	return nil, ErrSessionNotFound
}

// GetOrCreate returns the session `id`, or a new session when `id` is unknown.
// The returned id is the one to hand back to the client.
func (reg *SessionRegistry) GetOrCreate(id string) (string, *portal.App) {
	if id != "" {
		if app, err := reg.Get(id); err == nil {
			return id, app
		}
	}
	return reg.Create()
}

func (reg *SessionRegistry) Delete(id string) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()
	delete(reg.table, id)
}

// Range calls `fn` for every session until it returns false. Sessions can be deleted from `fn`.
func (reg *SessionRegistry) Range(fn func(id string, app *portal.App) bool) {
	reg.mutex.RLock()
	snapshot := make(map[string]*portal.App, len(reg.table))
	for id, app := range reg.table {
		snapshot[id] = app
	}
	reg.mutex.RUnlock()

	for id, app := range snapshot {
		if !fn(id, app) {
			return
		}
	}
}

// Evict deletes the sessions idle since before `now - idle` and returns how many were deleted.
func (reg *SessionRegistry) Evict(now time.Time, idle time.Duration) int {
	var n int
	reg.Range(func(id string, app *portal.App) bool {
		if now.Sub(app.LastActivity()) > idle {
			reg.Delete(id)
			n++
		}
		return true
	})
	return n
}

func (reg *SessionRegistry) Len() int {
	reg.mutex.RLock()
	defer reg.mutex.RUnlock()
	return len(reg.table)
}
