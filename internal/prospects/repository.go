package prospects

import (
	"context"
	"sync"
)

// Repository is the persistence collaborator behind the Store.
type Repository interface {
	List(ctx context.Context) ([]Prospect, error)
	Get(ctx context.Context, id string) (Prospect, error)
	Create(ctx context.Context, p Prospect) error
	Update(ctx context.Context, p Prospect) error
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository keeps prospects in process memory, in creation order.
type InMemoryRepository struct {
	mu        sync.RWMutex
	order     []string
	prospects map[string]Prospect
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		prospects: make(map[string]Prospect),
	}
}

// List returns every prospect in creation order.
func (r *InMemoryRepository) List(ctx context.Context) ([]Prospect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Prospect, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.prospects[id])
	}
	return out, nil
}

// Get returns the prospect with the given id.
func (r *InMemoryRepository) Get(ctx context.Context, id string) (Prospect, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prospects[id]
	if !ok {
		return Prospect{}, ErrProspectNotFound
	}
	return p, nil
}

// Create stores a new prospect. Ids are never reused, so a duplicate is rejected.
func (r *InMemoryRepository) Create(ctx context.Context, p Prospect) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.prospects[p.ID]; exists {
		return errDuplicateID
	}
	r.prospects[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Update replaces the stored prospect with the same id.
func (r *InMemoryRepository) Update(ctx context.Context, p Prospect) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.prospects[p.ID]; !ok {
		return ErrProspectNotFound
	}
	r.prospects[p.ID] = p
	return nil
}

// Delete removes the prospect with the given id.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.prospects[id]; !ok {
		return ErrProspectNotFound
	}
	delete(r.prospects, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
