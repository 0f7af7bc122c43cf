package prospects

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// FilterAll disables the status or priority filter.
const FilterAll = "all"

// SortKey selects the column a view is ordered by.
type SortKey string

const (
	SortNextAction  SortKey = "nextAction"
	SortLastContact SortKey = "lastContact"
	SortName        SortKey = "name"
	SortPriority    SortKey = "priority"
)

// Valid reports whether k is a supported sort key.
func (k SortKey) Valid() bool {
	switch k {
	case SortNextAction, SortLastContact, SortName, SortPriority:
		return true
	}
	return false
}

// SortDir is ascending or descending.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Query describes one view over the pipeline. Empty fields fall back to
// "all", "all", no search, nextAction ascending.
type Query struct {
	Status   string  `json:"status"`
	Priority string  `json:"priority"`
	Search   string  `json:"search"`
	Sort     SortKey `json:"sort"`
	Dir      SortDir `json:"dir"`
}

// Normalize fills defaults and validates the filter values.
func (q Query) Normalize() (Query, error) {
	if q.Status == "" {
		q.Status = FilterAll
	}
	if q.Priority == "" {
		q.Priority = FilterAll
	}
	if q.Sort == "" {
		q.Sort = SortNextAction
	}
	if q.Dir == "" {
		q.Dir = SortAsc
	}
	q.Search = strings.TrimSpace(q.Search)

	if q.Status != FilterAll && !Status(q.Status).Valid() {
		return q, ErrInvalidStatus
	}
	if q.Priority != FilterAll && !Priority(q.Priority).Valid() {
		return q, ErrInvalidPriority
	}
	if !q.Sort.Valid() {
		return q, ErrInvalidSort
	}
	if q.Dir != SortAsc && q.Dir != SortDesc {
		return q, ErrInvalidSort
	}
	return q, nil
}

// WithDefaults fills the empty status, priority, sort and dir of q from d.
func (q Query) WithDefaults(d Query) Query {
	if q.Status == "" {
		q.Status = d.Status
	}
	if q.Priority == "" {
		q.Priority = d.Priority
	}
	if q.Sort == "" {
		q.Sort = d.Sort
	}
	if q.Dir == "" {
		q.Dir = d.Dir
	}
	return q
}

// Row is a prospect plus the fields derived from it and the current date.
type Row struct {
	Prospect
	IsOverdue        bool `json:"isOverdue"`
	IsToday          bool `json:"isToday"`
	DaysSinceContact *int `json:"daysSinceContact"`
}

// Stats are single-pass tallies over the unfiltered pipeline.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"byStatus"`
	Overdue  int            `json:"overdue"`
	DueToday int            `json:"dueToday"`
}

// View is the result of BuildView.
type View struct {
	Rows  []Row `json:"rows"`
	Stats Stats `json:"stats"`
	Query Query `json:"query"`
}

// BuildView filters, sorts and derives rows from records without touching them.
// Stats always cover the full record set. An invalid query is treated as its defaults.
func BuildView(records []Prospect, q Query, now time.Time) View {
	q, err := q.Normalize()
	if err != nil {
		q, _ = Query{Search: q.Search}.Normalize()
	}
	today := DateOf(now)

	filtered := Filter(records, q)
	Sort(filtered, q.Sort, q.Dir)

	rows := make([]Row, 0, len(filtered))
	for _, p := range filtered {
		rows = append(rows, Derive(p, today))
	}
	return View{
		Rows:  rows,
		Stats: Tally(records, today),
		Query: q,
	}
}

// Filter keeps prospects matching the status, priority and search predicates.
// The search is a case-insensitive substring match on name, email or phone.
func Filter(records []Prospect, q Query) []Prospect {
	folder := cases.Fold()
	needle := folder.String(strings.TrimSpace(q.Search))

	out := make([]Prospect, 0, len(records))
	for _, p := range records {
		if q.Status != "" && q.Status != FilterAll && string(p.Status) != q.Status {
			continue
		}
		if q.Priority != "" && q.Priority != FilterAll && string(p.Priority) != q.Priority {
			continue
		}
		if needle != "" &&
			!strings.Contains(folder.String(p.Name), needle) &&
			!strings.Contains(folder.String(p.Email), needle) &&
			!strings.Contains(folder.String(p.Phone), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort orders records in place, stably. A missing nextAction always sorts
// last and a missing lastContact always sorts first, whatever the direction.
func Sort(records []Prospect, key SortKey, dir SortDir) {
	folder := cases.Fold()
	slices.SortStableFunc(records, func(a, b Prospect) int {
		c, pinned := compareBy(a, b, key, folder)
		if !pinned && dir == SortDesc {
			return -c
		}
		return c
	})
}

// compareBy returns the ascending comparison of a and b. pinned is true when
// the result comes from a missing date and must not be reversed.
func compareBy(a, b Prospect, key SortKey, folder cases.Caser) (c int, pinned bool) {
	switch key {
	case SortLastContact:
		return compareDates(a.LastContact, b.LastContact, -1)
	case SortName:
		return strings.Compare(folder.String(a.Name), folder.String(b.Name)), false
	case SortPriority:
		return a.Priority.Rank() - b.Priority.Rank(), false
	default:
		return compareDates(a.NextAction, b.NextAction, 1)
	}
}

// compareDates compares two dates where a missing one sorts at missing (-1 first, 1 last).
func compareDates(a, b Date, missing int) (int, bool) {
	switch {
	case a.IsZero() && b.IsZero():
		return 0, true
	case a.IsZero():
		return missing, true
	case b.IsZero():
		return -missing, true
	default:
		return strings.Compare(string(a), string(b)), false
	}
}

// Derive computes the per-row scheduling fields for p as of today.
func Derive(p Prospect, today Date) Row {
	row := Row{
		Prospect:  p,
		IsOverdue: IsOverdue(p.NextAction, today),
		IsToday:   !p.NextAction.IsZero() && p.NextAction == today,
	}
	if !p.LastContact.IsZero() {
		if days, err := p.LastContact.DaysUntil(today); err == nil {
			row.DaysSinceContact = &days
		}
	}
	return row
}

// IsOverdue reports whether nextAction is set and strictly before today.
func IsOverdue(nextAction, today Date) bool {
	return !nextAction.IsZero() && nextAction.Before(today)
}

// Tally counts the whole pipeline by status plus overdue and due-today records.
func Tally(records []Prospect, today Date) Stats {
	stats := Stats{
		Total:    len(records),
		ByStatus: make(map[Status]int, len(AllStatuses)),
	}
	for _, s := range AllStatuses {
		stats.ByStatus[s] = 0
	}
	for _, p := range records {
		stats.ByStatus[p.Status]++
		if IsOverdue(p.NextAction, today) {
			stats.Overdue++
		}
		if !p.NextAction.IsZero() && p.NextAction == today {
			stats.DueToday++
		}
	}
	return stats
}
