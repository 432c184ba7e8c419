package services

import (
	"sync"
	"time"
)

// ServiceManager wires the engine and the scheduler to one store. Both share
// a lock so a reminder scan never interleaves with a command.
type ServiceManager struct {
	Progress     *ProgressService
	Notification *NotificationService
	store        DocumentStore
	mu           *sync.Mutex
	now          func() time.Time
}

func NewServiceManager(store DocumentStore) *ServiceManager {
	mu := &sync.Mutex{}
	return &ServiceManager{
		Progress: NewProgressService(store, mu),
		store:    store,
		mu:       mu,
		now:      time.Now,
	}
}

func (sm *ServiceManager) SetNotificationSender(sender NotificationSender, destination int64) {
	sm.Notification = NewNotificationService(sender, destination, sm.store, sm.mu)
	sm.Notification.SetClock(sm.now)
}

func (sm *ServiceManager) SetClock(now func() time.Time) {
	sm.now = now
	sm.Progress.SetClock(now)
	if sm.Notification != nil {
		sm.Notification.SetClock(now)
	}
}
