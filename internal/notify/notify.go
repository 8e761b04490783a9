package notify

import (
	"errors"
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationTypeAttack NotificationType = "attack"
	NotificationTypeCrash  NotificationType = "crash"
	NotificationTypeQuest  NotificationType = "quest"
	NotificationTypeHero   NotificationType = "hero"
	NotificationTypeInfo   NotificationType = "info"
)

// Notification represents a notification to be sent
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Timestamp time.Time
	Data      map[string]interface{} // Optional metadata
}

// Notifier is the interface for notification backends
type Notifier interface {
	// Notify sends a notification
	Notify(notification Notification) error
	// Close cleans up resources
	Close() error
}

// Manager manages multiple notification backends
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new notification manager
func NewManager(notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
	}
}

// Len returns the number of registered backends
func (m *Manager) Len() int {
	return len(m.notifiers)
}

// Notify sends a notification to all registered backends. Every backend is
// tried; the returned error joins the failures.
func (m *Manager) Notify(notification Notification) error {
	if notification.Timestamp.IsZero() {
		notification.Timestamp = time.Now()
	}

	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(notification); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes all notifiers
func (m *Manager) Close() error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
