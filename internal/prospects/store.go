package prospects

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/prospect-pipeline/internal/observability/metrics"
	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

var storeTracer = otel.Tracer("pipeline.internal.prospects")

// Store owns the prospect records and applies every mutation to them.
type Store struct {
	mu      sync.Mutex
	repo    Repository
	events  EventLog
	clock   Clock
	logger  *logging.Logger
	metrics *metrics.PipelineMetrics
	newID   func() string
}

// NewStore creates a store over repo with an in-memory timeline and the system clock.
func NewStore(repo Repository, logger *logging.Logger) *Store {
	if repo == nil {
		panic("prospects: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		repo:   repo,
		events: NewInMemoryEventLog(),
		clock:  SystemClock{},
		logger: logger,
		newID:  uuid.NewString,
	}
}

func (s *Store) WithClock(clock Clock) *Store {
	if clock != nil {
		s.clock = clock
	}
	return s
}

func (s *Store) WithEventLog(events EventLog) *Store {
	if events != nil {
		s.events = events
	}
	return s
}

func (s *Store) WithMetrics(m *metrics.PipelineMetrics) *Store {
	s.metrics = m
	return s
}

// WithIDGenerator overrides uuid ids; tests use it for deterministic ids.
func (s *Store) WithIDGenerator(gen func() string) *Store {
	if gen != nil {
		s.newID = gen
	}
	return s
}

// Today returns the current calendar day according to the store's clock.
func (s *Store) Today() Date {
	return DateOf(s.clock.Now())
}

// Clock exposes the store's clock to view and digest callers.
func (s *Store) Clock() Clock {
	return s.clock
}

// Add creates a prospect from draft. createdAt and lastContact are today and
// every milestone starts unset.
func (s *Store) Add(ctx context.Context, draft Draft) (p Prospect, err error) {
	ctx, span := storeTracer.Start(ctx, "prospects.Add")
	defer func() { s.finish(span, "add", err) }()

	if err := draft.Validate(); err != nil {
		return Prospect{}, err
	}
	if _, err := ParseDate(string(draft.NextAction)); err != nil {
		return Prospect{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.Today()
	p = Prospect{
		ID:             s.newID(),
		Name:           draft.Name,
		Phone:          draft.Phone,
		Email:          draft.Email,
		Relationship:   draft.Relationship,
		Source:         draft.Source,
		Status:         draft.Status,
		Priority:       draft.Priority,
		CreatedAt:      today,
		LastContact:    today,
		NextAction:     draft.NextAction,
		NextActionType: draft.NextActionType,
		Notes:          draft.Notes,
	}
	span.SetAttributes(attribute.String("prospect.id", p.ID))

	if err := s.repo.Create(ctx, p); err != nil {
		return Prospect{}, fmt.Errorf("prospects: add: %w", err)
	}
	s.logger.Info("prospect added", "id", p.ID, "status", p.Status, "priority", p.Priority)
	return p, nil
}

// Get returns one prospect.
func (s *Store) Get(ctx context.Context, id string) (Prospect, error) {
	return s.repo.Get(ctx, id)
}

// List returns all prospects in creation order.
func (s *Store) List(ctx context.Context) ([]Prospect, error) {
	return s.repo.List(ctx)
}

// Update replaces the record with id by the caller's full record. The id and
// createdAt always come from the stored record. Status jumps made here do not
// stamp milestones.
func (s *Store) Update(ctx context.Context, id string, record Prospect) (p Prospect, err error) {
	ctx, span := storeTracer.Start(ctx, "prospects.Update", trace.WithAttributes(attribute.String("prospect.id", id)))
	defer func() { s.finish(span, "update", err) }()

	if err := record.Validate(); err != nil {
		return Prospect{}, err
	}
	for _, d := range []Date{record.LastContact, record.NextAction, record.HAScheduled, record.HACompleted, record.ClientStartDate} {
		if _, err := ParseDate(string(d)); err != nil {
			return Prospect{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Prospect{}, err
	}
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, record); err != nil {
		return Prospect{}, fmt.Errorf("prospects: update: %w", err)
	}
	if existing.Status != record.Status {
		s.metrics.ObserveTransition(string(existing.Status), string(record.Status))
		s.logger.Info("prospect status edited", "id", id, "from", existing.Status, "to", record.Status)
	}
	return record, nil
}

// Delete removes a prospect once the user has confirmed it.
func (s *Store) Delete(ctx context.Context, id string, confirmed bool) (err error) {
	ctx, span := storeTracer.Start(ctx, "prospects.Delete", trace.WithAttributes(attribute.String("prospect.id", id)))
	defer func() { s.finish(span, "delete", err) }()

	if !confirmed {
		return ErrDeleteNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.events.DeleteByProspect(ctx, id); err != nil {
		s.logger.Warn("failed to delete prospect timeline", "id", id, "error", err)
	}
	s.logger.Info("prospect deleted", "id", id)
	return nil
}

// LogContact appends a "[date] type: note" line to the notes, sets lastContact
// to today and overwrites the next action. Status is left alone.
func (s *Store) LogContact(ctx context.Context, id string, req ContactRequest) (p Prospect, err error) {
	ctx, span := storeTracer.Start(ctx, "prospects.LogContact", trace.WithAttributes(
		attribute.String("prospect.id", id),
		attribute.String("contact.type", string(req.Type)),
	))
	defer func() { s.finish(span, "log_contact", err) }()

	if !req.Type.Valid() {
		return Prospect{}, ErrInvalidContactType
	}
	if !req.NextActionType.Valid() {
		return Prospect{}, ErrInvalidActionType
	}
	if _, err := ParseDate(string(req.NextAction)); err != nil {
		return Prospect{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err = s.repo.Get(ctx, id)
	if err != nil {
		return Prospect{}, err
	}

	now := s.clock.Now()
	today := DateOf(now)
	line := fmt.Sprintf("[%s] %s: %s", today, req.Type, req.Note)
	if p.Notes != "" {
		p.Notes += "\n\n" + line
	} else {
		p.Notes = line
	}
	p.LastContact = today
	p.NextAction = req.NextAction
	p.NextActionType = req.NextActionType

	if err := s.repo.Update(ctx, p); err != nil {
		return Prospect{}, fmt.Errorf("prospects: log contact: %w", err)
	}
	s.record(ctx, &Event{ProspectID: id, Type: string(req.Type), Date: now, Note: req.Note})
	s.metrics.ObserveContact(string(req.Type))
	return p, nil
}

// AdvanceStatus moves a prospect one step along the advance sequence and
// stamps the milestone for the new status if it is not already set.
// Prospects at coach or not-interested are left unchanged and ErrTerminalStatus is returned.
func (s *Store) AdvanceStatus(ctx context.Context, id string) (p Prospect, err error) {
	ctx, span := storeTracer.Start(ctx, "prospects.AdvanceStatus", trace.WithAttributes(attribute.String("prospect.id", id)))
	defer func() { s.finish(span, "advance", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	p, err = s.repo.Get(ctx, id)
	if err != nil {
		return Prospect{}, err
	}

	from := p.Status
	next, ok := from.Next()
	if !ok {
		return p, fmt.Errorf("%w: %s", ErrTerminalStatus, from)
	}

	now := s.clock.Now()
	p.Status = next
	if field := p.milestone(next.Milestone()); field != nil && field.IsZero() {
		*field = DateOf(now)
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return Prospect{}, fmt.Errorf("prospects: advance: %w", err)
	}
	s.record(ctx, &Event{
		ProspectID: id,
		Type:       EventStatusAdvanced,
		Date:       now,
		Note:       fmt.Sprintf("%s -> %s", from, next),
	})
	s.metrics.ObserveTransition(string(from), string(next))
	s.logger.Info("prospect advanced", "id", id, "from", from, "to", next)
	return p, nil
}

// Timeline returns the events recorded for a prospect.
func (s *Store) Timeline(ctx context.Context, id string) ([]Event, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.events.ListByProspect(ctx, id)
}

// View lists every prospect and builds the filtered, sorted view for q.
func (s *Store) View(ctx context.Context, q Query) (View, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return View{}, err
	}
	return BuildView(records, q, s.clock.Now()), nil
}

func (s *Store) record(ctx context.Context, e *Event) {
	if err := s.events.Append(ctx, e); err != nil {
		s.logger.Warn("failed to record timeline event", "id", e.ProspectID, "type", e.Type, "error", err)
	}
}

func (s *Store) finish(span trace.Span, op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrProspectNotFound):
		result = "not_found"
	case isValidationError(err):
		result = "invalid"
	case errors.Is(err, ErrTerminalStatus):
		result = "terminal"
	case errors.Is(err, ErrDeleteNotConfirmed):
		result = "unconfirmed"
	default:
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("prospect operation failed", "op", op, "error", err)
	}
	s.metrics.ObserveMutation(op, result)
	span.End()
}

// isValidationError reports whether err came from checking caller input.
func isValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidName, ErrInvalidStatus, ErrInvalidPriority,
		ErrInvalidContactType, ErrInvalidActionType, ErrInvalidDate, ErrInvalidSort,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
