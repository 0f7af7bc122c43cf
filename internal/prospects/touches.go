package prospects

import (
	"context"
	"fmt"
	"sort"
)

// DefaultTouchGoal is the "Rule of 100": one hundred prospect touches a day.
const DefaultTouchGoal = 100

// DefaultTouchHistoryDays is how many previous days Touches reports.
const DefaultTouchHistoryDays = 14

// TouchReport summarizes logged contacts for one day.
type TouchReport struct {
	Date       Date                 `json:"date"`
	Touches    int                  `json:"touches"`
	Goal       int                  `json:"goal"`
	Streak     int                  `json:"streak"`
	ByType     map[ContactType]int  `json:"byType"`
	ByProspect []TouchProspectCount `json:"byProspect"`
	History    []TouchDayHistory    `json:"history"`
}

type TouchProspectCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type TouchDayHistory struct {
	Date    Date `json:"date"`
	Touches int  `json:"touches"`
}

// Touches reports the touches logged on day, the previous historyDays days
// (most recent first) and the streak of consecutive previous days that met goal.
func (s *Store) Touches(ctx context.Context, day Date, goal, historyDays int) (*TouchReport, error) {
	if goal <= 0 {
		goal = DefaultTouchGoal
	}
	if historyDays <= 0 {
		historyDays = DefaultTouchHistoryDays
	}
	loc := s.clock.Now().Location()
	if day.IsZero() {
		day = s.Today()
	}
	start, err := day.Time(loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, day)
	}
	from := start.AddDate(0, 0, -historyDays)
	to := start.AddDate(0, 0, 1)

	events, err := s.events.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("prospects: touches: %w", err)
	}

	names := map[string]string{}
	if records, err := s.repo.List(ctx); err == nil {
		for _, p := range records {
			names[p.ID] = p.Name
		}
	}

	report := &TouchReport{
		Date:       day,
		Goal:       goal,
		ByType:     map[ContactType]int{},
		ByProspect: []TouchProspectCount{},
	}
	perDay := map[Date]int{}
	perProspect := map[string]int{}
	for _, e := range events {
		if !e.IsTouch() {
			continue
		}
		d := DateOf(e.Date.In(loc))
		perDay[d]++
		if d != day {
			continue
		}
		report.Touches++
		report.ByType[ContactType(e.Type)]++
		perProspect[e.ProspectID]++
	}

	for id, count := range perProspect {
		name := names[id]
		if name == "" {
			name = id
		}
		report.ByProspect = append(report.ByProspect, TouchProspectCount{ID: id, Name: name, Count: count})
	}
	sort.Slice(report.ByProspect, func(i, j int) bool {
		a, b := report.ByProspect[i], report.ByProspect[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.ID < b.ID
	})

	streakOpen := true
	for i := 1; i <= historyDays; i++ {
		d := DateOf(start.AddDate(0, 0, -i))
		n := perDay[d]
		report.History = append(report.History, TouchDayHistory{Date: d, Touches: n})
		if streakOpen && n >= goal {
			report.Streak++
		} else {
			streakOpen = false
		}
	}
	return report, nil
}
