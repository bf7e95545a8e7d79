package notify

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidProject is returned by MuteProject for a non-positive id.
var ErrInvalidProject = errors.New("invalid project id")

// BatchError reports a per-id mutation batch in which some requests
// failed. Requests listed in Succeeded already took effect server-side
// and were applied locally.
type BatchError struct {
	Op        string
	Succeeded []int64
	Failed    map[int64]error
}

func (e *BatchError) Error() string {
	ids := e.FailedIDs()
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d: %v", id, e.Failed[id]))
	}
	return fmt.Sprintf(
		"%s: %d of %d requests failed (%s)",
		e.Op, len(ids), len(ids)+len(e.Succeeded), strings.Join(parts, "; "),
	)
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	out := make([]error, 0, len(e.Failed))
	for _, id := range e.FailedIDs() {
		out = append(out, e.Failed[id])
	}
	return out
}

// FailedIDs returns the failed ids in ascending order.
func (e *BatchError) FailedIDs() []int64 {
	ids := make([]int64, 0, len(e.Failed))
	for id := range e.Failed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
