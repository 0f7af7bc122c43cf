package prospects

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTouches_CountsTodayAndStreak(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ann := mustAdd(t, s, Draft{Name: "Ann"})
	ben := mustAdd(t, s, Draft{Name: "Ben"})

	events := NewInMemoryEventLog()
	s.WithEventLog(events)

	day := func(offset int) time.Time { return testNow.AddDate(0, 0, offset) }
	add := func(id string, typ string, at time.Time) {
		require.NoError(t, events.Append(ctx, &Event{ProspectID: id, Type: typ, Date: at}))
	}

	// today: 2 for Ben, 1 for Ann, plus a status change that is not a touch
	add(ben.ID, "call", day(0))
	add(ben.ID, "text", day(0))
	add(ann.ID, "call", day(0))
	add(ann.ID, EventStatusAdvanced, day(0))
	// yesterday and the day before meet a goal of 2, three days ago does not
	add(ann.ID, "dm", day(-1))
	add(ann.ID, "dm", day(-1))
	add(ben.ID, "email", day(-2))
	add(ben.ID, "email", day(-2))
	add(ben.ID, "email", day(-3))
	add(ben.ID, "email", day(-4))
	add(ben.ID, "email", day(-4))
	// tomorrow is out of range
	add(ann.ID, "call", day(1))

	report, err := s.Touches(ctx, "", 2, 5)
	require.NoError(t, err)

	assert.Equal(t, testToday, report.Date)
	assert.Equal(t, 3, report.Touches)
	assert.Equal(t, 2, report.ByType[ContactCall])
	assert.Equal(t, 1, report.ByType[ContactText])
	assert.Equal(t, []TouchProspectCount{
		{ID: ben.ID, Name: "Ben", Count: 2},
		{ID: ann.ID, Name: "Ann", Count: 1},
	}, report.ByProspect)
	assert.Equal(t, 2, report.Streak)

	require.Len(t, report.History, 5)
	assert.Equal(t, TouchDayHistory{Date: "2024-01-14", Touches: 2}, report.History[0])
	assert.Equal(t, TouchDayHistory{Date: "2024-01-12", Touches: 1}, report.History[2])
	assert.Equal(t, TouchDayHistory{Date: "2024-01-10", Touches: 0}, report.History[4])
}

func TestTouches_Defaults(t *testing.T) {
	s := newTestStore(t)

	report, err := s.Touches(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTouchGoal, report.Goal)
	assert.Len(t, report.History, DefaultTouchHistoryDays)
	assert.Zero(t, report.Touches)
	assert.Zero(t, report.Streak)
	assert.Empty(t, report.ByProspect)
}

func TestTouches_PastDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := mustAdd(t, s, Draft{Name: "Ann"})
	_, err := s.LogContact(ctx, p.ID, ContactRequest{Type: ContactVoicemail})
	require.NoError(t, err)

	report, err := s.Touches(ctx, "2024-01-14", 1, 1)
	require.NoError(t, err)
	assert.Zero(t, report.Touches)

	report, err = s.Touches(ctx, testToday, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Touches)
	assert.Equal(t, 1, report.ByType[ContactVoicemail])
}
