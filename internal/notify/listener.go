package notify

import "github.com/hariomahlawat/ProjectManagement-sub006/internal/model"

// Listener receives the store snapshot after every change. Each call gets
// its own copy of the records, sorted newest first.
//
// Update is called synchronously while the store serializes delivery, so
// implementations must not call back into mutating Store methods from
// inside Update; hand the work to another goroutine instead.
type Listener interface {
	Update(notifications []model.Notification, unread int)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(notifications []model.Notification, unread int)

// Update calls f.
func (f ListenerFunc) Update(notifications []model.Notification, unread int) {
	f(notifications, unread)
}
