package prospects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(records []Prospect) []string {
	out := make([]string, 0, len(records))
	for _, p := range records {
		out = append(out, p.ID)
	}
	return out
}

func rowIDs(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func samplePipeline() []Prospect {
	return []Prospect{
		{ID: "1", Name: "alice Brown", Email: "alice@example.com", Phone: "555-0101", Status: StatusClient, Priority: PriorityLow, LastContact: "2024-01-10", NextAction: "2024-01-20"},
		{ID: "2", Name: "Bob Stone", Email: "bob@example.com", Phone: "555-0102", Status: StatusCold, Priority: PriorityHigh, LastContact: "", NextAction: ""},
		{ID: "3", Name: "Carla Diaz", Email: "CARLA@Example.com", Phone: "555-0103", Status: StatusClient, Priority: PriorityMedium, LastContact: "2024-01-14", NextAction: "2024-01-12"},
		{ID: "4", Name: "dan Ortiz", Email: "", Phone: "555-9999", Status: StatusWarm, Priority: PriorityHigh, LastContact: "2024-01-01", NextAction: "2024-01-15"},
	}
}

func TestFilter_ClientStatusOnly(t *testing.T) {
	got := Filter(samplePipeline(), Query{Status: "client", Priority: FilterAll, Search: ""})
	assert.Equal(t, []string{"1", "3"}, ids(got))

	Sort(got, SortName, SortAsc)
	assert.Equal(t, []string{"1", "3"}, ids(got))
}

func TestFilter_Conjunctive(t *testing.T) {
	records := samplePipeline()

	assert.Equal(t, []string{"2", "4"}, ids(Filter(records, Query{Status: FilterAll, Priority: "high"})))
	assert.Equal(t, []string{"4"}, ids(Filter(records, Query{Status: "warm", Priority: "high"})))
	assert.Empty(t, Filter(records, Query{Status: "client", Priority: "high"}))
}

func TestFilter_SearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	records := samplePipeline()

	assert.Equal(t, []string{"3"}, ids(Filter(records, Query{Search: "carla@example"})))
	assert.Equal(t, []string{"1"}, ids(Filter(records, Query{Search: "ALICE"})))
	assert.Equal(t, []string{"4"}, ids(Filter(records, Query{Search: "9999"})))
	assert.Len(t, Filter(records, Query{Search: "example.com"}), 3)
	assert.Len(t, Filter(records, Query{Search: "   "}), 4)
}

func TestSort_NextActionMissingSortsLast(t *testing.T) {
	records := samplePipeline()
	Sort(records, SortNextAction, SortAsc)
	assert.Equal(t, []string{"3", "4", "1", "2"}, ids(records))

	records = samplePipeline()
	Sort(records, SortNextAction, SortDesc)
	assert.Equal(t, []string{"1", "4", "3", "2"}, ids(records))
}

func TestSort_LastContactMissingSortsFirst(t *testing.T) {
	records := samplePipeline()
	Sort(records, SortLastContact, SortAsc)
	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(records))

	records = samplePipeline()
	Sort(records, SortLastContact, SortDesc)
	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(records))
}

func TestSort_NameIgnoresCase(t *testing.T) {
	records := samplePipeline()
	Sort(records, SortName, SortAsc)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(records))

	Sort(records, SortName, SortDesc)
	assert.Equal(t, []string{"4", "3", "2", "1"}, ids(records))
}

func TestSort_PriorityRankIsStable(t *testing.T) {
	records := samplePipeline()
	Sort(records, SortPriority, SortAsc)
	assert.Equal(t, []string{"2", "4", "3", "1"}, ids(records))

	records = samplePipeline()
	Sort(records, SortPriority, SortDesc)
	assert.Equal(t, []string{"1", "3", "2", "4"}, ids(records), "equal ranks keep input order")
}

func TestIsOverdue(t *testing.T) {
	assert.True(t, IsOverdue("2024-01-14", testToday))
	assert.False(t, IsOverdue("2024-01-15", testToday))
	assert.False(t, IsOverdue("2024-01-16", testToday))
	assert.False(t, IsOverdue("", testToday))
}

func TestDerive(t *testing.T) {
	row := Derive(Prospect{ID: "x", LastContact: "2024-01-10", NextAction: "2024-01-15"}, testToday)
	assert.False(t, row.IsOverdue)
	assert.True(t, row.IsToday)
	require.NotNil(t, row.DaysSinceContact)
	assert.Equal(t, 5, *row.DaysSinceContact)

	row = Derive(Prospect{ID: "y"}, testToday)
	assert.False(t, row.IsOverdue)
	assert.False(t, row.IsToday)
	assert.Nil(t, row.DaysSinceContact)

	row = Derive(Prospect{ID: "z", LastContact: "2023-12-31", NextAction: "2024-01-01"}, testToday)
	assert.True(t, row.IsOverdue)
	assert.Equal(t, 15, *row.DaysSinceContact)
}

func TestTally(t *testing.T) {
	stats := Tally(samplePipeline(), testToday)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[StatusClient])
	assert.Equal(t, 1, stats.ByStatus[StatusCold])
	assert.Equal(t, 1, stats.ByStatus[StatusWarm])
	assert.Equal(t, 0, stats.ByStatus[StatusCoach])
	assert.Equal(t, 0, stats.ByStatus[StatusHAScheduled])
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.DueToday)
}

func TestBuildView_StatsCoverUnfilteredRecords(t *testing.T) {
	records := samplePipeline()
	before := samplePipeline()

	view := BuildView(records, Query{Status: "client", Sort: SortNextAction, Dir: SortAsc}, testNow)
	assert.Equal(t, []string{"3", "1"}, rowIDs(view.Rows))
	assert.True(t, view.Rows[0].IsOverdue)
	assert.Equal(t, 4, view.Stats.Total)
	assert.Equal(t, before, records, "BuildView must not reorder or mutate its input")
}

func TestBuildView_InvalidQueryFallsBackToDefaults(t *testing.T) {
	view := BuildView(samplePipeline(), Query{Status: "bogus", Sort: "colour"}, testNow)
	assert.Len(t, view.Rows, 4)
	assert.Equal(t, SortNextAction, view.Query.Sort)
	assert.Equal(t, FilterAll, view.Query.Status)
}

func TestQueryNormalize(t *testing.T) {
	q, err := Query{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Query{Status: FilterAll, Priority: FilterAll, Sort: SortNextAction, Dir: SortAsc}, q)

	_, err = Query{Status: "hot"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = Query{Priority: "urgent"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidPriority)
	_, err = Query{Dir: "sideways"}.Normalize()
	assert.ErrorIs(t, err, ErrInvalidSort)
}
