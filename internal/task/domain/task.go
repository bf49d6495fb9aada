package domain

import (
	"strings"
	"time"

	sharedBus "github.com/mroldan/taskdeck/internal/shared/infra/platform/bus"
	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// ParseStatus valida un estado recibido desde fuera del dominio (HTTP, fixtures, eventos).
func ParseStatus(s string) (TaskStatus, error) {
	switch TaskStatus(strings.ToLower(s)) {
	case TaskPending, TaskCompleted:
		return TaskStatus(strings.ToLower(s)), nil
	default:
		return "", ErrInvalidStatus
	}
}

// ParsePriority valida una prioridad recibida desde fuera del dominio.
func ParsePriority(s string) (TaskPriority, error) {
	switch TaskPriority(strings.ToLower(s)) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return TaskPriority(strings.ToLower(s)), nil
	default:
		return "", ErrInvalidPriority
	}
}

// Task es el agregado central: una tarea con fecha límite, prioridad,
// categoría (referencia débil por nombre) y estado de completitud.
// Invariante: Status == completed ⇔ CompletedAt != nil.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"dueDate"`
	Category    string       `json:"category"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	CompletedAt *time.Time   `json:"completedAt"`
}

// NewTask construye una tarea nueva con los valores por defecto del sistema:
// pendiente, sin fecha de completado, creada ahora.
func NewTask(title, description, category string, priority TaskPriority, dueDate time.Time) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrInvalidTask
	}
	if dueDate.IsZero() {
		return nil, ErrInvalidTask
	}
	if _, err := ParsePriority(string(priority)); err != nil {
		return nil, err
	}

	return &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Category:    category,
		Priority:    priority,
		Status:      TaskPending,
		CreatedAt:   time.Now().UTC(),
		CompletedAt: nil,
	}, nil
}

func (t *Task) PartitionKey() string {
	return t.ID.String()
}

// --- Métodos de dominio ---

// Complete marca la tarea como completada y fija CompletedAt.
func (t *Task) Complete() {
	if t.Status == TaskCompleted {
		return
	}
	now := time.Now().UTC()
	t.Status = TaskCompleted
	t.CompletedAt = &now
}

// Reopen devuelve la tarea a pendiente y limpia CompletedAt.
func (t *Task) Reopen() {
	t.Status = TaskPending
	t.CompletedAt = nil
}

// ToggleStatus alterna pending ⇄ completed manteniendo el invariante de CompletedAt.
func (t *Task) ToggleStatus() {
	if t.Status == TaskCompleted {
		t.Reopen()
	} else {
		t.Complete()
	}
}

// IsOverdue indica si la tarea está vencida: su día de vencimiento es anterior
// al día de 'now' y sigue pendiente. Una tarea completada nunca está vencida.
func (t *Task) IsOverdue(now time.Time) bool {
	return CalendarDate(t.DueDate.In(now.Location())).Before(CalendarDate(now)) && t.Status == TaskPending
}

// IsDueOn indica si la tarea vence el día de calendario de 'day' (ignora la hora).
func (t *Task) IsDueOn(day time.Time) bool {
	return CalendarDate(t.DueDate.In(day.Location())).Equal(CalendarDate(day))
}

// Verificación estática para asegurar que Task implementa la interfaz
var _ sharedBus.Keyer = (*Task)(nil)
