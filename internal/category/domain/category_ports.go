package domain

import (
	"context"
	"errors"
	"fmt"

	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category name already exists")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidColor     = errors.New("invalid category color")

	// ErrCategoryInUse se devuelve al intentar borrar una categoría que
	// todavía tiene tareas asociadas.
	ErrCategoryInUse = errors.New("category has tasks assigned")
)

// --- Repositorio de Categories ---
type CategoryRepository interface {
	Create(ctx context.Context, c *Category, evt sharedDomain.OutboxEvent) error
	Update(ctx context.Context, c *Category, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error

	// SaveOutboxEvent guarda un evento suelto, fuera de una operación CRUD
	// (ej. el resumen de una cascada de renombrado).
	SaveOutboxEvent(ctx context.Context, evt sharedDomain.OutboxEvent) error
}

// ---------- Helpers comunes (cache keys, etc.) ----------

func CategoryCacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("category:id:%s", id.String())
}
