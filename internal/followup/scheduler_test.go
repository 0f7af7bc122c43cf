package followup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

func TestNewScheduler_RejectsBadSpec(t *testing.T) {
	_, err := NewScheduler("every morning", time.UTC, func(context.Context) error { return nil }, nil)
	assert.Error(t, err)
}

func TestScheduler_NextUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	s, err := NewScheduler("", loc, func(context.Context) error { return nil }, logging.New("error"))
	require.NoError(t, err)

	next := s.Next().In(loc)
	assert.Equal(t, 7, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(time.Now()))
}

func TestScheduler_TickRunsJob(t *testing.T) {
	calls := 0
	s, err := NewScheduler("*/5 * * * *", time.UTC, func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return errors.New("logged, not returned")
	}, logging.New("error"))
	require.NoError(t, err)

	s.tick()
	assert.Equal(t, 1, calls)
}

func TestScheduler_StopsWithContext(t *testing.T) {
	s, err := NewScheduler("", time.UTC, func(context.Context) error { return nil }, logging.New("error"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestDigestJob(t *testing.T) {
	store := newStore(t)
	job := DigestJob(NewDigest(store, nil, "", logging.New("error")))
	assert.NoError(t, job(context.Background()), "empty pipeline sends nothing and succeeds")
}
