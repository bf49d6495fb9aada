// en internal/category/application/category_service.go
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	// --- Importaciones del dominio y compartidas ---
	categoryDomain "github.com/mroldan/taskdeck/internal/category/domain"
	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
	sharedEvents "github.com/mroldan/taskdeck/internal/shared/domain/events"
	sharedCache "github.com/mroldan/taskdeck/internal/shared/infra/platform/cache"
	sharedQuery "github.com/mroldan/taskdeck/internal/shared/infra/platform/query"
	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService define los casos de uso relacionados con Category.
// Necesita también el repositorio de tareas: la regla "no borrar una categoría
// en uso" y la cascada de renombrado cruzan los dos contextos.
type CategoryService struct {
	repo  categoryDomain.CategoryRepository
	tasks taskDomain.TaskRepository
	cache sharedCache.Cache
	log   *zap.Logger
}

// NewCategoryService es el constructor para el servicio de categorías.
func NewCategoryService(repo categoryDomain.CategoryRepository, tasks taskDomain.TaskRepository, cache sharedCache.Cache, log *zap.Logger) *CategoryService {
	return &CategoryService{
		repo:  repo,
		tasks: tasks,
		cache: cache,
		log:   log,
	}
}

// CreateCategory crea una categoría nueva tras comprobar que el nombre es único.
func (s *CategoryService) CreateCategory(ctx context.Context, name, color string) (*categoryDomain.Category, error) {
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("%w: %q", categoryDomain.ErrCategoryExists, name)
	} else if !errors.Is(err, categoryDomain.ErrCategoryNotFound) {
		return nil, err
	}

	category, err := categoryDomain.NewCategory(name, color)
	if err != nil {
		return nil, err
	}

	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "category",
		AggregateID:   category.ID.String(),
		EventType:     categoryDomain.CategoryCreated,
		Payload:       category,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, category, evt); err != nil {
		s.log.Error("Failed to create category", zap.Error(err))
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, categoryDomain.CategoryCacheKeyByID(category.ID), category, 60, s.log)

	return category, nil
}

// GetCategoryByID obtiene una categoría con el patrón cache-aside.
func (s *CategoryService) GetCategoryByID(ctx context.Context, id uuid.UUID) (*categoryDomain.Category, error) {
	if s.cache != nil {
		var c categoryDomain.Category
		if hit, _ := s.cache.Get(ctx, categoryDomain.CategoryCacheKeyByID(id), &c); hit {
			return &c, nil
		}
	}

	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, categoryDomain.ErrCategoryNotFound) {
			s.log.Warn("Category not found", zap.String("category_id", id.String()))
		} else {
			s.log.Error("Failed to fetch category", zap.String("category_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, categoryDomain.CategoryCacheKeyByID(id), category, 120, s.log)

	return category, nil
}

// ListCategories devuelve todas las categorías.
func (s *CategoryService) ListCategories(ctx context.Context) ([]*categoryDomain.Category, error) {
	return s.repo.List(ctx)
}

// UpdateCategory aplica cambios de nombre y/o color. Si el nombre cambia,
// arrastra en cascada todas las tareas que referenciaban el nombre antiguo y
// devuelve cuántas se movieron. La cascada es deliberadamente no atómica
// respecto a la actualización de la categoría: primero se renombra la
// categoría y después se reasignan las tareas, igual que hacía el cliente
// original, pero en una sola operación de almacén en vez de N updates.
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, newName, newColor *string) (*categoryDomain.Category, int, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	oldName := category.Name
	renaming := newName != nil && *newName != oldName

	if renaming {
		if _, err := s.repo.GetByName(ctx, *newName); err == nil {
			return nil, 0, fmt.Errorf("%w: %q", categoryDomain.ErrCategoryExists, *newName)
		} else if !errors.Is(err, categoryDomain.ErrCategoryNotFound) {
			return nil, 0, err
		}
		if err := category.Rename(*newName); err != nil {
			return nil, 0, err
		}
	}
	if newColor != nil {
		if err := category.Recolor(*newColor); err != nil {
			return nil, 0, err
		}
	}

	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "category",
		AggregateID:   category.ID.String(),
		EventType:     categoryDomain.CategoryUpdated,
		Payload:       category,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Update(ctx, category, evt); err != nil {
		return nil, 0, err
	}

	moved := 0
	if renaming {
		moved, err = s.tasks.ReassignCategory(ctx, oldName, category.Name)
		if err != nil {
			// La categoría ya quedó renombrada; el llamador decide si reintenta la cascada.
			s.log.Error("Category renamed but task cascade failed",
				zap.String("old_name", oldName),
				zap.String("new_name", category.Name),
				zap.Error(err),
			)
			return category, 0, err
		}

		renameEvt := sharedDomain.OutboxEvent{
			ID:            uuid.New(),
			AggregateType: "category",
			AggregateID:   category.ID.String(),
			EventType:     categoryDomain.CategoryRenamed,
			Payload: sharedEvents.CategoryRenamed{
				ID:         category.ID,
				OldName:    oldName,
				NewName:    category.Name,
				TasksMoved: moved,
			},
			CreatedAt: time.Now().UTC(),
		}
		if err := s.repo.SaveOutboxEvent(ctx, renameEvt); err != nil {
			s.log.Warn("⚠️ Failed to record rename event", zap.Error(err))
		}

		s.log.Info("Category renamed",
			zap.String("old_name", oldName),
			zap.String("new_name", category.Name),
			zap.Int("tasks_moved", moved),
		)
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, categoryDomain.CategoryCacheKeyByID(id), category, 60, s.log)

	return category, moved, nil
}

// DeleteCategory elimina una categoría solo si ninguna tarea la referencia.
// El contador de tareas se recalcula en vivo contra el repositorio de tareas,
// nunca se confía en un contador almacenado.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.tasks.CountByCategory(ctx, category.Name)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d task(s) still use %q", categoryDomain.ErrCategoryInUse, count, category.Name)
	}

	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "category",
		AggregateID:   id.String(),
		EventType:     categoryDomain.CategoryDeleted,
		Payload:       category,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		return err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, categoryDomain.CategoryCacheKeyByID(id), s.log)

	return nil
}

// Stats recalcula las estadísticas de completitud de todas las categorías a
// partir de un snapshot de la colección de tareas.
func (s *CategoryService) Stats(ctx context.Context) ([]categoryDomain.CategoryStats, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByCriteria(ctx, sharedDomain.And(), nil, sharedQuery.Sort{})
	if err != nil {
		return nil, err
	}

	stats := make([]categoryDomain.CategoryStats, 0, len(categories))
	for _, c := range categories {
		stats = append(stats, categoryDomain.AggregateCategory(tasks, c.Name))
	}
	return stats, nil
}
