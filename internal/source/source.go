package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
)

// AuthError indicates that authentication has failed or expired.
// It is returned by clients when a 401 response is received.
type AuthError struct {
	Endpoint string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Endpoint, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// NotFoundError is returned for a 404. Mutations treat it as success: the
// record may already be gone server-side.
type NotFoundError struct {
	Method string
	Path   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found (404) on %s %s", e.Method, e.Path)
}

// IsNotFound reports whether err (or any error in its chain) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Source is the contract of the project-management server as seen by the
// notification store.
type Source interface {
	// ListNotifications returns up to limit recent payloads, newest first.
	ListNotifications(ctx context.Context, limit int) ([]model.RawNotification, error)

	// UnreadCount returns the authoritative unread total.
	UnreadCount(ctx context.Context) (int, error)

	// MarkRead and MarkUnread set or clear the read stamp of one notification.
	MarkRead(ctx context.Context, id int64) error
	MarkUnread(ctx context.Context, id int64) error

	// SetProjectMuted mutes or unmutes notifications for a project.
	SetProjectMuted(ctx context.Context, projectID int64, muted bool) error
}
