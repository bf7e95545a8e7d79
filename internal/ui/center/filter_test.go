package center

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hariomahlawat/ProjectManagement-sub006/internal/model"
)

func pid(v int64) *int64 { return &v }

func fixture() []model.Notification {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	read := model.Notification{ID: 2, Title: "Budget approved", ProjectID: pid(7), ProjectName: "Bridge", Module: "Projects", CreatedAt: day(2)}
	read.MarkRead(day(3))

	return []model.Notification{
		{ID: 4, Title: "alpha review", Summary: "Stage gate passed", ProjectID: pid(9), ProjectName: "Airport", Module: "Projects", CreatedAt: day(4)},
		{ID: 3, Title: "Document uploaded", Module: "Documents", CreatedAt: day(3)},
		read,
		{ID: 1, Title: "Zeta task", ProjectID: pid(7), ProjectName: "Bridge", Module: "Tasks", CreatedAt: day(1)},
	}
}

func ids(list []model.Notification) []int64 {
	out := make([]int64, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func TestApply_ZeroFilterKeepsEverything(t *testing.T) {
	t.Parallel()

	items := fixture()
	got := Apply(items, Filter{}, SortNewest)
	assert.Equal(t, []int64{4, 3, 2, 1}, ids(got))
	assert.True(t, Filter{}.IsZero())

	// Input order untouched.
	assert.Equal(t, []int64{4, 3, 2, 1}, ids(items))
}

func TestApply_Status(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int64{4, 3, 1}, ids(Apply(fixture(), Filter{Status: StatusUnread}, SortNewest)))
	assert.Equal(t, []int64{2}, ids(Apply(fixture(), Filter{Status: StatusRead}, SortNewest)))
}

func TestApply_Project(t *testing.T) {
	t.Parallel()

	got := Apply(fixture(), Filter{Project: pid(7)}, SortNewest)
	assert.Equal(t, []int64{2, 1}, ids(got))
}

func TestApply_QueryMatchesSeveralFields(t *testing.T) {
	t.Parallel()

	cases := map[string][]int64{
		"BUDGET":    {2},
		"stage":     {4},
		"bridge":    {2, 1},
		"documents": {3},
		"  ":        {4, 3, 2, 1},
		"missing":   {},
	}
	for q, want := range cases {
		got := Apply(fixture(), Filter{Query: q}, SortNewest)
		assert.Equal(t, want, ids(got), q)
	}
}

func TestApply_CombinedFilters(t *testing.T) {
	t.Parallel()

	f := Filter{Query: "a", Status: StatusUnread, Project: pid(7)}
	assert.Equal(t, []int64{1}, ids(Apply(fixture(), f, SortNewest)))
	assert.False(t, f.IsZero())
}

func TestApply_SortModes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int64{1, 2, 3, 4}, ids(Apply(fixture(), Filter{}, SortOldest)))
	assert.Equal(t, []int64{4, 2, 3, 1}, ids(Apply(fixture(), Filter{}, SortTitle)))
	// Airport, then Bridge newest first, then the project-less record.
	assert.Equal(t, []int64{4, 2, 1, 3}, ids(Apply(fixture(), Filter{}, SortProject)))
}

func TestSortMode_Cycle(t *testing.T) {
	t.Parallel()

	m := SortNewest
	var seen []string
	for range 5 {
		seen = append(seen, m.String())
		m = m.Next()
	}
	assert.Equal(t, []string{"newest", "oldest", "title", "project", "newest"}, seen)
}

func TestStatus_Cycle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StatusUnread, StatusAll.Next())
	assert.Equal(t, StatusRead, StatusUnread.Next())
	assert.Equal(t, StatusAll, StatusRead.Next())
	assert.Equal(t, "unread", StatusUnread.String())
}

func TestProjects_AndCycle(t *testing.T) {
	t.Parallel()

	projects := Projects(fixture())
	assert.Equal(t, []Project{{ID: 9, Name: "Airport"}, {ID: 7, Name: "Bridge"}}, projects)

	cur := NextProject(projects, nil)
	assert.Equal(t, int64(9), *cur)
	cur = NextProject(projects, cur)
	assert.Equal(t, int64(7), *cur)
	assert.Nil(t, NextProject(projects, cur))

	// A vanished project restarts the cycle.
	assert.Equal(t, int64(9), *NextProject(projects, pid(42)))
	assert.Nil(t, NextProject(nil, pid(9)))
}

func TestProjectIDs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int64{7, 9}, ProjectIDs(fixture()))
	assert.Empty(t, ProjectIDs([]model.Notification{{ID: 1}}))
}
