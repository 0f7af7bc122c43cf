package tenancy

import (
	"context"
	"testing"
)

func TestWithCoachIDAndCoachIDFromContext(t *testing.T) {
	ctx := WithCoachID(context.Background(), "coach-7")

	got, ok := CoachIDFromContext(ctx)
	if !ok {
		t.Fatalf("expected coach id to be present")
	}
	if got != "coach-7" {
		t.Fatalf("expected coach-7, got %s", got)
	}
	if CoachIDOrDefault(ctx) != "coach-7" {
		t.Fatalf("expected CoachIDOrDefault to return the stored id")
	}
}

func TestCoachIDFromContext_EmptyOrMissing(t *testing.T) {
	ctx := context.Background()
	if _, ok := CoachIDFromContext(ctx); ok {
		t.Fatalf("expected missing coach id to return false")
	}
	if got := CoachIDOrDefault(ctx); got != DefaultCoachID {
		t.Fatalf("expected %s, got %s", DefaultCoachID, got)
	}

	ctx = context.WithValue(ctx, coachKey, 42)
	if _, ok := CoachIDFromContext(ctx); ok {
		t.Fatalf("expected non-string coach id to return false")
	}

	ctx = WithCoachID(context.Background(), "")
	if _, ok := CoachIDFromContext(ctx); ok {
		t.Fatalf("expected empty coach id to return false")
	}
}
