package model

import (
	"sort"
	"time"
)

// Notification is the canonical record for an alert produced by the
// project-management server. Every transport and view works with this
// shape; raw server payloads never travel past the Normalizer.
type Notification struct {
	// ID is the stable identity key used for dedupe and mutation calls.
	ID int64 `json:"id"`

	// Module, EventType, ScopeType and ScopeID classify the producing
	// subsystem. They are passed through unmodified.
	Module    string `json:"module"`
	EventType string `json:"eventType"`
	ScopeType string `json:"scopeType"`
	ScopeID   string `json:"scopeId"`

	// ProjectID associates the notification with a project for mute and
	// filter purposes. Nil when the notification is not project scoped.
	ProjectID   *int64 `json:"projectId,omitempty"`
	ProjectName string `json:"projectName,omitempty"`

	// ActorUserID identifies the user whose action produced the notification.
	ActorUserID string `json:"actorUserId,omitempty"`

	// Route is the URL to open when the notification is activated.
	Route string `json:"route"`

	Title   string `json:"title"`
	Summary string `json:"summary"`

	// CreatedUTC is the ISO-8601 creation time as sent by the server and
	// CreatedAt its parsed instant. Ordering always uses CreatedAt.
	CreatedUTC string    `json:"createdUtc"`
	CreatedAt  time.Time `json:"-"`

	// ReadUTC is nil while the notification is unread. Its presence is the
	// only definition of "read"; IsRead mirrors it.
	ReadUTC *string    `json:"readUtc"`
	ReadAt  *time.Time `json:"-"`
	IsRead  bool       `json:"isRead"`

	// IsProjectMuted mirrors the current mute preference for ProjectID.
	IsProjectMuted bool `json:"isProjectMuted"`
}

// HasProject reports whether the notification is scoped to a project.
func (n Notification) HasProject() bool {
	return n.ProjectID != nil && *n.ProjectID > 0
}

// InProject reports whether the notification belongs to projectID.
func (n Notification) InProject(projectID int64) bool {
	return n.ProjectID != nil && *n.ProjectID == projectID
}

// MarkRead stamps the notification as read at the given instant,
// updating ReadUTC, ReadAt and IsRead together.
func (n *Notification) MarkRead(at time.Time) {
	at = at.UTC()
	s := at.Format(time.RFC3339Nano)
	n.ReadUTC = &s
	n.ReadAt = &at
	n.IsRead = true
}

// MarkUnread clears the read stamp.
func (n *Notification) MarkUnread() {
	n.ReadUTC = nil
	n.ReadAt = nil
	n.IsRead = false
}

// Clone returns a deep copy so callers can hand records out without
// sharing pointer fields.
func (n Notification) Clone() Notification {
	out := n
	if n.ProjectID != nil {
		id := *n.ProjectID
		out.ProjectID = &id
	}
	if n.ReadUTC != nil {
		s := *n.ReadUTC
		out.ReadUTC = &s
	}
	if n.ReadAt != nil {
		t := *n.ReadAt
		out.ReadAt = &t
	}
	return out
}

// SortNewestFirst orders notifications by CreatedAt descending. Equal
// timestamps fall back to the higher ID first.
func SortNewestFirst(list []Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
}

// Dedupe collapses records sharing an ID, keeping the one with the latest
// CreatedAt. When timestamps are equal the later element in the input
// wins, so a refreshed copy replaces an older one. The result is sorted
// newest first.
func Dedupe(list []Notification) []Notification {
	byID := make(map[int64]int, len(list))
	out := make([]Notification, 0, len(list))

	for _, n := range list {
		idx, seen := byID[n.ID]
		if !seen {
			byID[n.ID] = len(out)
			out = append(out, n)
			continue
		}
		if !n.CreatedAt.Before(out[idx].CreatedAt) {
			out[idx] = n
		}
	}

	SortNewestFirst(out)
	return out
}

// Raw converts the record back into payload form, so a stored copy can be
// fed through the Normalizer again like any server payload.
func (n Notification) Raw() RawNotification {
	raw := RawNotification{
		"id":             n.ID,
		"module":         n.Module,
		"eventType":      n.EventType,
		"scopeType":      n.ScopeType,
		"scopeId":        n.ScopeID,
		"projectName":    n.ProjectName,
		"actorUserId":    n.ActorUserID,
		"route":          n.Route,
		"title":          n.Title,
		"summary":        n.Summary,
		"createdUtc":     n.CreatedUTC,
		"isProjectMuted": n.IsProjectMuted,
	}
	if n.ProjectID != nil {
		raw["projectId"] = *n.ProjectID
	}
	if n.ReadUTC != nil {
		raw["readUtc"] = *n.ReadUTC
	}
	return raw
}
