package tenancy

import "context"

type ctxKey string

const coachKey ctxKey = "pipeline.coach_id"

// DefaultCoachID owns preferences when a request carries no authenticated coach.
const DefaultCoachID = "default"

// WithCoachID stores the authenticated coach id in context.
func WithCoachID(ctx context.Context, coachID string) context.Context {
	return context.WithValue(ctx, coachKey, coachID)
}

// CoachIDFromContext extracts the coach id if present.
func CoachIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(coachKey)
	if val == nil {
		return "", false
	}
	coachID, ok := val.(string)
	return coachID, ok && coachID != ""
}

// CoachIDOrDefault returns the coach id in ctx, falling back to DefaultCoachID.
func CoachIDOrDefault(ctx context.Context) string {
	if id, ok := CoachIDFromContext(ctx); ok {
		return id
	}
	return DefaultCoachID
}
