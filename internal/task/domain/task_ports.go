package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
	sharedQuery "github.com/mroldan/taskdeck/internal/shared/infra/platform/query"
	"github.com/google/uuid"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskAlreadyExists  = errors.New("task already exists")
	ErrInvalidTask        = errors.New("invalid task")
	ErrInvalidStatus      = errors.New("invalid task status")
	ErrInvalidPriority    = errors.New("invalid task priority")
	ErrInvalidFilterValue = errors.New("invalid filter value")
)

// --- Repositorio de Tasks ---
type TaskRepository interface {
	Create(ctx context.Context, t *Task, evt sharedDomain.OutboxEvent) error
	Update(ctx context.Context, t *Task, evt sharedDomain.OutboxEvent) error
	GetByID(ctx context.Context, id uuid.UUID) (*Task, error)
	ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sort sharedQuery.Sort) ([]*Task, error)
	DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error

	// CountByCategory cuenta cuántas tareas referencian una categoría por nombre.
	CountByCategory(ctx context.Context, category string) (int, error)

	// ReassignCategory mueve en cascada todas las tareas de 'oldName' a 'newName'
	// y devuelve cuántas se actualizaron. Hace explícita la naturaleza
	// multi-escritura del renombrado de categorías.
	ReassignCategory(ctx context.Context, oldName, newName string) (int, error)
}

// DTO para transportar los resultados de la consulta de tendencia.
type DailyTaskTrend struct {
	Day            time.Time
	CreatedCount   int
	CompletedCount int
}

// TaskAnalyticsRepository es el puerto del almacén analítico (ClickHouse).
type TaskAnalyticsRepository interface {
	LogBatch(ctx context.Context, tasks []*Task) error
	GetAverageCompletionTime(ctx context.Context, start, end time.Time) (time.Duration, error)
	GetDailyTrend(ctx context.Context, start, end time.Time) ([]DailyTaskTrend, error)
}

// ---------- Helpers comunes (cache keys, etc.) ----------

func TaskCacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("task:id:%s", id.String())
}
