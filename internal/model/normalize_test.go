package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func testNormalizer() Normalizer {
	return Normalizer{
		DefaultRoute: "/notifications",
		Now:          func() time.Time { return testNow },
	}
}

func TestNormalize_FullPayload(t *testing.T) {
	t.Parallel()

	n, ok := testNormalizer().Normalize(RawNotification{
		"id":             float64(12),
		"module":         "Projects",
		"eventType":      "StageChanged",
		"scopeType":      "project",
		"scopeId":        "42",
		"projectId":      "42",
		"projectName":    "Bridge",
		"actorUserId":    "u-1",
		"route":          "/projects/42",
		"title":          "Stage moved",
		"summary":        "Design to Build",
		"createdUtc":     "2024-02-10T08:00:00Z",
		"readUtc":        "2024-02-11T08:00:00Z",
		"isProjectMuted": true,
	})
	require.True(t, ok)

	assert.Equal(t, int64(12), n.ID)
	assert.Equal(t, "Projects", n.Module)
	assert.Equal(t, "StageChanged", n.EventType)
	require.NotNil(t, n.ProjectID)
	assert.Equal(t, int64(42), *n.ProjectID)
	assert.True(t, n.HasProject())
	assert.True(t, n.InProject(42))
	assert.Equal(t, "/projects/42", n.Route)
	assert.Equal(t, time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC), n.CreatedAt)
	assert.Equal(t, "2024-02-10T08:00:00Z", n.CreatedUTC)
	assert.True(t, n.IsRead)
	require.NotNil(t, n.ReadUTC)
	require.NotNil(t, n.ReadAt)
	assert.True(t, n.IsProjectMuted)
}

func TestNormalize_MixedCaseKeys(t *testing.T) {
	t.Parallel()

	n, ok := testNormalizer().Normalize(RawNotification{
		"Id":         7,
		"Title":      "Hello",
		"CreatedUtc": "2024-02-10T08:00:00Z",
		"ProjectID":  3,
	})
	require.True(t, ok)
	assert.Equal(t, int64(7), n.ID)
	assert.Equal(t, "Hello", n.Title)
	assert.Equal(t, 10, n.CreatedAt.Day())
	assert.True(t, n.InProject(3))
}

func TestNormalize_Defaults(t *testing.T) {
	t.Parallel()

	n, ok := testNormalizer().Normalize(RawNotification{"id": 1})
	require.True(t, ok)

	assert.Equal(t, DefaultTitle, n.Title)
	assert.Equal(t, "/notifications", n.Route)
	assert.Equal(t, testNow, n.CreatedAt)
	assert.Equal(t, testNow.Format(time.RFC3339Nano), n.CreatedUTC)
	assert.False(t, n.IsRead)
	assert.Nil(t, n.ReadUTC)
	assert.Nil(t, n.ProjectID)
	assert.False(t, n.HasProject())
}

func TestNormalize_UnparseableCreatedDefaultsToNow(t *testing.T) {
	t.Parallel()

	n, ok := testNormalizer().Normalize(RawNotification{"id": 1, "createdUtc": "yesterday-ish"})
	require.True(t, ok)
	assert.Equal(t, testNow, n.CreatedAt)
}

func TestNormalize_RejectsInvalidIDs(t *testing.T) {
	t.Parallel()

	cases := map[string]RawNotification{
		"missing":    {"title": "x"},
		"nil":        {"id": nil},
		"nan":        {"id": math.NaN()},
		"inf":        {"id": math.Inf(1)},
		"fractional": {"id": 2.5},
		"zero":       {"id": 0},
		"negative":   {"id": -3},
		"text":       {"id": "abc"},
		"bool":       {"id": true},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := testNormalizer().Normalize(raw)
			assert.False(t, ok)
		})
	}

	_, ok := testNormalizer().Normalize(nil)
	assert.False(t, ok)
}

func TestNormalize_EmptyReadUTCIsUnread(t *testing.T) {
	t.Parallel()

	n, ok := testNormalizer().Normalize(RawNotification{"id": 1, "readUtc": ""})
	require.True(t, ok)
	assert.False(t, n.IsRead)
	assert.Nil(t, n.ReadUTC)
}

func TestNormalizeAndDedupe_KeepsLatest(t *testing.T) {
	t.Parallel()

	raws := []RawNotification{
		{"id": 1, "createdUtc": "2024-01-01T00:00:00Z", "title": "old"},
		{"id": 2, "createdUtc": "2024-01-03T00:00:00Z"},
		{"id": 1, "createdUtc": "2024-01-05T00:00:00Z", "title": "newest"},
		{"id": 1, "createdUtc": "2024-01-02T00:00:00Z", "title": "middle"},
		{"id": "bogus"},
		{"id": 3, "createdUtc": "2024-01-04T00:00:00Z"},
	}

	out := testNormalizer().NormalizeAndDedupe(raws)
	require.Len(t, out, 3)

	seen := map[int64]int{}
	for _, n := range out {
		seen[n.ID]++
	}
	assert.Equal(t, map[int64]int{1: 1, 2: 1, 3: 1}, seen)

	assert.Equal(t, int64(1), out[0].ID)
	assert.Equal(t, "newest", out[0].Title)
	assert.Equal(t, int64(3), out[1].ID)
	assert.Equal(t, int64(2), out[2].ID)
}

func TestDedupe_TieLaterWins(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := Dedupe([]Notification{
		{ID: 1, CreatedAt: ts, Title: "first"},
		{ID: 1, CreatedAt: ts, Title: "second"},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "second", out[0].Title)
}

func TestSortNewestFirst_TiesByID(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	list := []Notification{
		{ID: 2, CreatedAt: ts},
		{ID: 9, CreatedAt: ts.Add(-time.Hour)},
		{ID: 7, CreatedAt: ts},
		{ID: 1, CreatedAt: ts.Add(time.Hour)},
	}
	SortNewestFirst(list)

	var ids []int64
	for _, n := range list {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []int64{1, 7, 2, 9}, ids)
}

func TestNotification_MarkReadUnread(t *testing.T) {
	t.Parallel()

	var n Notification
	stamp := time.Date(2024, 5, 5, 10, 0, 0, 0, time.FixedZone("X", 3600))
	n.MarkRead(stamp)

	assert.True(t, n.IsRead)
	require.NotNil(t, n.ReadUTC)
	require.NotNil(t, n.ReadAt)
	assert.Equal(t, "2024-05-05T09:00:00Z", *n.ReadUTC)

	n.MarkUnread()
	assert.False(t, n.IsRead)
	assert.Nil(t, n.ReadUTC)
	assert.Nil(t, n.ReadAt)
}

func TestNotification_RawRoundTrip(t *testing.T) {
	t.Parallel()

	orig, ok := testNormalizer().Normalize(RawNotification{
		"id":         5,
		"projectId":  8,
		"title":      "T",
		"createdUtc": "2024-02-10T08:00:00Z",
		"readUtc":    "2024-02-11T08:00:00Z",
	})
	require.True(t, ok)

	again, ok := testNormalizer().Normalize(orig.Raw())
	require.True(t, ok)
	assert.Equal(t, orig, again)
}
