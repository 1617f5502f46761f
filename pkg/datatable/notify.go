package datatable

import (
	"context"
	"log/slog"
	"sync"
)

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient top-level message shown to the operator
type Notification struct {
	Level   Level
	Message string
}

// Notifier receives notifications emitted by the table, form and delete
// controllers
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(n Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Recorder collects notifications in memory
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify records n
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Notifications returns a copy of everything recorded so far
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Reset forgets recorded notifications
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// LogNotifier writes notifications to a slog.Logger
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs n at info level for successes and error level otherwise
func (l LogNotifier) Notify(n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if n.Level == LevelError {
		level = slog.LevelError
	}
	logger.Log(context.Background(), level, n.Message, slog.String("notification", string(n.Level)))
}

func notifierOrDiscard(n Notifier) Notifier {
	if n == nil {
		return NotifierFunc(func(Notification) {})
	}
	return n
}
