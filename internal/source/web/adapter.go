package web

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
	"github.com/hariomahlawat/ProjectManagement-sub006/internal/source"
)

// Adapter implements source.Source against the project server's
// notification REST endpoints.
type Adapter struct {
	client    *Client
	apiBase   string
	unreadURL string
}

var _ source.Source = (*Adapter)(nil)

// NewAdapter creates an adapter. apiBase is the notifications root
// (GET {apiBase}?limit=N); unreadURL serves {"count": n}.
func NewAdapter(client *Client, apiBase, unreadURL string) *Adapter {
	apiBase = strings.TrimRight(apiBase, "/")
	if unreadURL == "" {
		unreadURL = apiBase + "/unread-count"
	}
	return &Adapter{
		client:    client,
		apiBase:   apiBase,
		unreadURL: unreadURL,
	}
}

// ListNotifications fetches the most recent notifications.
func (a *Adapter) ListNotifications(
	ctx context.Context,
	limit int,
) ([]model.RawNotification, error) {
	u := a.apiBase
	if limit > 0 {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		u += "?" + q.Encode()
	}

	var list []model.RawNotification
	if err := a.client.Get(ctx, u, &list); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return list, nil
}

// UnreadCount fetches the authoritative unread total.
func (a *Adapter) UnreadCount(ctx context.Context) (int, error) {
	var resp UnreadCountResponse
	if err := a.client.Get(ctx, a.unreadURL, &resp); err != nil {
		return 0, fmt.Errorf("fetching unread count: %w", err)
	}
	if resp.Count < 0 {
		return 0, nil
	}
	return resp.Count, nil
}

// MarkRead issues POST {apiBase}/{id}/read.
func (a *Adapter) MarkRead(ctx context.Context, id int64) error {
	if err := a.client.Post(ctx, a.readURL(id), nil, nil); err != nil {
		return fmt.Errorf("marking notification %d read: %w", id, err)
	}
	return nil
}

// MarkUnread issues DELETE {apiBase}/{id}/read.
func (a *Adapter) MarkUnread(ctx context.Context, id int64) error {
	if err := a.client.Delete(ctx, a.readURL(id), nil); err != nil {
		return fmt.Errorf("marking notification %d unread: %w", id, err)
	}
	return nil
}

// SetProjectMuted issues POST (mute) or DELETE (unmute) on
// {apiBase}/projects/{projectId}/mute.
func (a *Adapter) SetProjectMuted(
	ctx context.Context,
	projectID int64,
	muted bool,
) error {
	u := fmt.Sprintf("%s/projects/%d/mute", a.apiBase, projectID)

	var err error
	if muted {
		err = a.client.Post(ctx, u, nil, nil)
	} else {
		err = a.client.Delete(ctx, u, nil)
	}
	if err != nil {
		return fmt.Errorf("setting project %d muted=%t: %w", projectID, muted, err)
	}
	return nil
}

func (a *Adapter) readURL(id int64) string {
	return fmt.Sprintf("%s/%d/read", a.apiBase, id)
}
