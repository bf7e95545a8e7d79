package model

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// RawNotification is a notification payload as decoded from JSON. Field
// names may arrive in any casing and values may be loosely typed.
type RawNotification map[string]any

// DefaultTitle is used when a payload carries no title.
const DefaultTitle = "Notification"

// lookup returns the value stored under key, matching case-insensitively.
func (r RawNotification) lookup(key string) (any, bool) {
	if v, ok := r[key]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func (r RawNotification) str(key string) string {
	v, ok := r.lookup(key)
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Normalizer converts raw payloads into canonical Notification records.
// It has no side effects; Now is injectable so tests get stable defaults.
type Normalizer struct {
	// DefaultRoute is used when a payload has no route, normally the
	// notification-center URL.
	DefaultRoute string

	// DefaultTitle replaces a missing title. Empty means DefaultTitle.
	DefaultTitle string

	// Now supplies the creation time for payloads without one.
	Now func() time.Time
}

func (n Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now().UTC()
	}
	return time.Now().UTC()
}

// Normalize converts a single raw payload. The second return value is
// false when the payload has no usable id; callers must drop it.
func (n Normalizer) Normalize(raw RawNotification) (Notification, bool) {
	if raw == nil {
		return Notification{}, false
	}

	idVal, ok := raw.lookup("id")
	if !ok {
		return Notification{}, false
	}
	id, ok := toID(idVal)
	if !ok {
		return Notification{}, false
	}

	out := Notification{
		ID:          id,
		Module:      raw.str("module"),
		EventType:   raw.str("eventType"),
		ScopeType:   raw.str("scopeType"),
		ScopeID:     raw.str("scopeId"),
		ProjectName: raw.str("projectName"),
		ActorUserID: raw.str("actorUserId"),
		Route:       raw.str("route"),
		Title:       raw.str("title"),
		Summary:     raw.str("summary"),
	}

	if v, ok := raw.lookup("projectId"); ok {
		if pid, ok := toID(v); ok {
			out.ProjectID = &pid
		}
	}

	if out.Route == "" {
		out.Route = n.DefaultRoute
	}
	if out.Title == "" {
		out.Title = n.DefaultTitle
		if out.Title == "" {
			out.Title = DefaultTitle
		}
	}

	created, createdStr, ok := parseInstant(raw.str("createdUtc"))
	if !ok {
		created = n.now()
		createdStr = created.Format(time.RFC3339Nano)
	}
	out.CreatedAt = created
	out.CreatedUTC = createdStr

	if readAt, readStr, ok := parseInstant(raw.str("readUtc")); ok {
		out.ReadAt = &readAt
		out.ReadUTC = &readStr
		out.IsRead = true
	}

	if v, ok := raw.lookup("isProjectMuted"); ok && v != nil {
		out.IsProjectMuted = cast.ToBool(v)
	}

	return out, true
}

// NormalizeAll normalizes every payload and drops those without a valid id.
func (n Normalizer) NormalizeAll(raws []RawNotification) []Notification {
	out := make([]Notification, 0, len(raws))
	for _, raw := range raws {
		if rec, ok := n.Normalize(raw); ok {
			out = append(out, rec)
		}
	}
	return out
}

// NormalizeAndDedupe normalizes a batch and collapses duplicate ids,
// keeping the latest CreatedAt. The result is sorted newest first.
func (n Normalizer) NormalizeAndDedupe(raws []RawNotification) []Notification {
	return Dedupe(n.NormalizeAll(raws))
}

// toID coerces a loosely typed id. NaN, infinities, fractional values and
// anything that does not parse as a positive integer are rejected.
func toID(v any) (int64, bool) {
	switch f := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
	case float32:
		g := float64(f)
		if math.IsNaN(g) || math.IsInf(g, 0) || g != math.Trunc(g) {
			return 0, false
		}
	case bool:
		return 0, false
	}

	id, err := cast.ToInt64E(v)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseInstant parses an ISO-8601 timestamp. Timestamps without a zone
// are taken as UTC. It returns the trimmed original string alongside the
// instant so display keeps the server's formatting.
func parseInstant(s string) (time.Time, string, bool) {
	if s == "" {
		return time.Time{}, "", false
	}
	t, err := cast.ToTimeInDefaultLocationE(s, time.UTC)
	if err != nil || t.IsZero() {
		return time.Time{}, "", false
	}
	return t.UTC(), s, true
}
