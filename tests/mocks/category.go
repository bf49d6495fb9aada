package mocks

import (
	"context"
	"sort"
	"sync"

	categoryDomain "github.com/mroldan/taskdeck/internal/category/domain"
	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
	"github.com/google/uuid"
)

// InMemoryCategoryRepo simula CategoryRepository con outbox incluido.
type InMemoryCategoryRepo struct {
	Categories map[uuid.UUID]*categoryDomain.Category
	Outbox     []sharedDomain.OutboxEvent
	mu         sync.Mutex
}

var _ categoryDomain.CategoryRepository = (*InMemoryCategoryRepo)(nil)

func NewInMemoryCategoryRepo() *InMemoryCategoryRepo {
	return &InMemoryCategoryRepo{
		Categories: make(map[uuid.UUID]*categoryDomain.Category),
		Outbox:     []sharedDomain.OutboxEvent{},
	}
}

func (r *InMemoryCategoryRepo) Create(ctx context.Context, c *categoryDomain.Category, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Categories[c.ID]; ok {
		return categoryDomain.ErrCategoryExists
	}
	r.Categories[c.ID] = c
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCategoryRepo) Update(ctx context.Context, c *categoryDomain.Category, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Categories[c.ID]; !ok {
		return categoryDomain.ErrCategoryNotFound
	}
	r.Categories[c.ID] = c
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*categoryDomain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Categories[id]
	if !ok {
		return nil, categoryDomain.ErrCategoryNotFound
	}
	return c, nil
}

func (r *InMemoryCategoryRepo) GetByName(ctx context.Context, name string) (*categoryDomain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, categoryDomain.ErrCategoryNotFound
}

func (r *InMemoryCategoryRepo) List(ctx context.Context) ([]*categoryDomain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]*categoryDomain.Category, 0, len(r.Categories))
	for _, c := range r.Categories {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (r *InMemoryCategoryRepo) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Categories[id]; !ok {
		return categoryDomain.ErrCategoryNotFound
	}
	delete(r.Categories, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCategoryRepo) SaveOutboxEvent(ctx context.Context, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outbox = append(r.Outbox, evt)
	return nil
}
