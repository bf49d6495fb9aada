// en internal/task/domain/criteria.go
package domain

import (
	"time"

	// Importamos el "sistema" de Criterios genérico y le damos un alias
	shared "github.com/mroldan/taskdeck/internal/shared/domain"
)

// --- Criterios Específicos para el Dominio Task ---

// StatusCriteria busca tareas por su estado (pending, completed).
type StatusCriteria struct {
	Status TaskStatus
}

// ToConditions implementa la interfaz shared.Criteria.
func (c StatusCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{
		{Field: "status", Op: shared.OpEq, Value: c.Status},
	}
}

// -----------------------------------------------------------

// CategoryCriteria busca tareas etiquetadas con una categoría concreta.
type CategoryCriteria struct {
	Name string
}

// ToConditions implementa la interfaz shared.Criteria.
func (c CategoryCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{
		{Field: "category", Op: shared.OpEq, Value: c.Name},
	}
}

// -----------------------------------------------------------

// PriorityCriteria busca tareas por prioridad (low, medium, high).
type PriorityCriteria struct {
	Priority TaskPriority
}

// ToConditions implementa la interfaz shared.Criteria.
func (c PriorityCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{
		{Field: "priority", Op: shared.OpEq, Value: c.Priority},
	}
}

// -----------------------------------------------------------

// TitleLikeCriteria busca tareas cuyo título contenga un texto.
type TitleLikeCriteria struct {
	Title string
}

// ToConditions implementa la interfaz shared.Criteria.
func (c TitleLikeCriteria) ToConditions() []shared.Criterion {
	return []shared.Criterion{
		// Usamos ILIKE para búsquedas insensibles a mayúsculas/minúsculas
		{Field: "title", Op: shared.OpILike, Value: "%" + c.Title + "%"},
	}
}

// -----------------------------------------------------------

// DueDateRangeCriteria busca tareas que vencen en un rango de fechas.
// Usamos punteros para que los límites sean opcionales.
type DueDateRangeCriteria struct {
	Start *time.Time
	End   *time.Time
}

// ToConditions implementa la interfaz shared.Criteria.
func (c DueDateRangeCriteria) ToConditions() []shared.Criterion {
	var conds []shared.Criterion
	if c.Start != nil {
		conds = append(conds, shared.Criterion{Field: "due_date", Op: shared.OpGte, Value: *c.Start})
	}
	if c.End != nil {
		conds = append(conds, shared.Criterion{Field: "due_date", Op: shared.OpLte, Value: *c.End})
	}
	return conds
}
