package center

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
)

// Status narrows the table by read state.
type Status int

const (
	StatusAll Status = iota
	StatusUnread
	StatusRead
)

func (s Status) String() string {
	switch s {
	case StatusUnread:
		return "unread"
	case StatusRead:
		return "read"
	default:
		return "all"
	}
}

// ParseStatus maps a status label back to its value.
func ParseStatus(label string) (Status, bool) {
	for s := StatusAll; s <= StatusRead; s++ {
		if s.String() == label {
			return s, true
		}
	}
	return StatusAll, false
}

// Next cycles all → unread → read.
func (s Status) Next() Status {
	return (s + 1) % 3
}

// SortMode orders the table.
type SortMode int

const (
	SortNewest SortMode = iota
	SortOldest
	SortTitle
	SortProject
)

var sortLabels = []string{"newest", "oldest", "title", "project"}

func (m SortMode) String() string {
	if int(m) < len(sortLabels) {
		return sortLabels[m]
	}
	return sortLabels[0]
}

// ParseSortMode maps a sort label back to its value.
func ParseSortMode(label string) (SortMode, bool) {
	for i, l := range sortLabels {
		if l == label {
			return SortMode(i), true
		}
	}
	return SortNewest, false
}

// Next cycles through the sort modes.
func (m SortMode) Next() SortMode {
	return (m + 1) % SortMode(len(sortLabels))
}

// Filter holds the client-side filters. The zero value matches everything.
type Filter struct {
	Query   string
	Status  Status
	Project *int64
}

// IsZero reports whether no filter is active.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" && f.Status == StatusAll && f.Project == nil
}

// Match reports whether n passes every active filter. The query matches
// case-insensitively against title, summary, project name and module.
func (f Filter) Match(n model.Notification) bool {
	switch f.Status {
	case StatusUnread:
		if n.IsRead {
			return false
		}
	case StatusRead:
		if !n.IsRead {
			return false
		}
	}

	if f.Project != nil && !n.InProject(*f.Project) {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{n.Title, n.Summary, n.ProjectName, n.Module} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Apply returns the records that pass f, ordered by mode. The input is
// not modified.
func Apply(items []model.Notification, f Filter, mode SortMode) []model.Notification {
	out := make([]model.Notification, 0, len(items))
	for _, n := range items {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	sortItems(out, mode)
	return out
}

// sortItems orders list in place. Ties fall back to newest first, then id.
func sortItems(list []model.Notification, mode SortMode) {
	newest := func(a, b model.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	}

	slices.SortStableFunc(list, func(a, b model.Notification) int {
		switch mode {
		case SortOldest:
			return -newest(a, b)
		case SortTitle:
			if c := cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
				return c
			}
		case SortProject:
			// Project-less records sort last.
			if a.HasProject() != b.HasProject() {
				if a.HasProject() {
					return -1
				}
				return 1
			}
			if c := cmp.Compare(strings.ToLower(a.ProjectName), strings.ToLower(b.ProjectName)); c != 0 {
				return c
			}
		}
		return newest(a, b)
	})
}

// Project is one entry of the project filter cycle.
type Project struct {
	ID   int64
	Name string
}

// Projects lists the distinct projects present in items, ordered by name
// then id.
func Projects(items []model.Notification) []Project {
	seen := make(map[int64]bool)
	var out []Project
	for _, n := range items {
		if !n.HasProject() || seen[*n.ProjectID] {
			continue
		}
		seen[*n.ProjectID] = true
		out = append(out, Project{ID: *n.ProjectID, Name: n.ProjectName})
	}
	slices.SortFunc(out, func(a, b Project) int {
		if c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// NextProject advances the project filter: none → first → ... → last →
// none. A current id that is no longer present restarts the cycle.
func NextProject(projects []Project, current *int64) *int64 {
	if len(projects) == 0 {
		return nil
	}
	if current == nil {
		id := projects[0].ID
		return &id
	}
	for i, p := range projects {
		if p.ID != *current {
			continue
		}
		if i+1 < len(projects) {
			id := projects[i+1].ID
			return &id
		}
		return nil
	}
	id := projects[0].ID
	return &id
}

// ProjectIDs returns the distinct project ids of items in ascending order.
func ProjectIDs(items []model.Notification) []int64 {
	var ids []int64
	for _, n := range items {
		if n.HasProject() && !slices.Contains(ids, *n.ProjectID) {
			ids = append(ids, *n.ProjectID)
		}
	}
	slices.Sort(ids)
	return ids
}
