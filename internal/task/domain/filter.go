package domain

import (
	"fmt"
	"time"
)

// ---------------- FilterSpec ----------------

// FilterAll es el valor neutro de cada dimensión: "sin restricción".
const FilterAll = "all"

// Valores válidos de la dimensión de rango de fechas.
const (
	DateRangeToday    = "today"
	DateRangeOverdue  = "overdue"
	DateRangeUpcoming = "upcoming"
)

// FilterSpec agrupa las cuatro dimensiones de filtrado de la vista de tareas.
// Cada dimensión es independiente y se aplica en conjunción (AND) con las demás.
// Se construye siempre con NewFilterSpec, que rechaza valores fuera de las
// enumeraciones cerradas en lugar de degradarlos silenciosamente a "all".
type FilterSpec struct {
	Status    string
	Category  string
	Priority  string
	DateRange string
}

// NewFilterSpec valida cada dimensión. Una cadena vacía equivale a "all".
func NewFilterSpec(status, category, priority, dateRange string) (FilterSpec, error) {
	f := FilterSpec{
		Status:    defaultAll(status),
		Category:  defaultAll(category),
		Priority:  defaultAll(priority),
		DateRange: defaultAll(dateRange),
	}

	// Se guarda siempre la forma canónica en minúsculas: aceptar "Completed"
	// pero compararlo tal cual contra los valores canónicos de Task haría que
	// el filtro no coincidiera con nada en silencio.
	if f.Status != FilterAll {
		parsed, err := ParseStatus(f.Status)
		if err != nil {
			return FilterSpec{}, fmt.Errorf("%w: status %q", ErrInvalidFilterValue, status)
		}
		f.Status = string(parsed)
	}
	if f.Priority != FilterAll {
		parsed, err := ParsePriority(f.Priority)
		if err != nil {
			return FilterSpec{}, fmt.Errorf("%w: priority %q", ErrInvalidFilterValue, priority)
		}
		f.Priority = string(parsed)
	}
	switch f.DateRange {
	case FilterAll, DateRangeToday, DateRangeOverdue, DateRangeUpcoming:
	default:
		return FilterSpec{}, fmt.Errorf("%w: dateRange %q", ErrInvalidFilterValue, dateRange)
	}
	// La categoría es un nombre libre: cualquier string es un filtro válido
	// (una categoría inexistente simplemente no coincide con ninguna tarea).

	return f, nil
}

func defaultAll(v string) string {
	if v == "" {
		return FilterAll
	}
	return v
}

// IsZero indica si el filtro no restringe nada (todas las dimensiones en "all").
func (f FilterSpec) IsZero() bool {
	return f.Status == FilterAll && f.Category == FilterAll &&
		f.Priority == FilterAll && f.DateRange == FilterAll
}

// ---------------- Filtrado puro ----------------

// CalendarDate trunca un instante a su día de calendario (medianoche, misma zona).
func CalendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FilterTasks devuelve las tareas que satisfacen todas las dimensiones del
// filtro. Es una función pura y estable: no muta la entrada y conserva el
// orden relativo. 'now' se inyecta para que "today"/"overdue"/"upcoming"
// sean deterministas en tests.
func FilterTasks(tasks []*Task, f FilterSpec, now time.Time) []*Task {
	out := make([]*Task, 0, len(tasks))
	for _, t := range tasks {
		if f.matches(t, now) {
			out = append(out, t)
		}
	}
	return out
}

func (f FilterSpec) matches(t *Task, now time.Time) bool {
	if f.Status != FilterAll && string(t.Status) != f.Status {
		return false
	}
	if f.Category != FilterAll && t.Category != f.Category {
		return false
	}
	if f.Priority != FilterAll && string(t.Priority) != f.Priority {
		return false
	}
	if f.DateRange != FilterAll {
		// El día de vencimiento se evalúa en la zona horaria de 'now',
		// igual que lo haría un usuario mirando su calendario.
		today := CalendarDate(now)
		taskDate := CalendarDate(t.DueDate.In(now.Location()))

		switch f.DateRange {
		case DateRangeToday:
			return taskDate.Equal(today)
		case DateRangeOverdue:
			// Una tarea completada nunca cuenta como vencida.
			return taskDate.Before(today) && t.Status == TaskPending
		case DateRangeUpcoming:
			return taskDate.After(today)
		}
	}
	return true
}
