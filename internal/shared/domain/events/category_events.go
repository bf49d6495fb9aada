package events

import (
	"github.com/google/uuid"
)

type CategoryCreated struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

// CategoryRenamed incluye cuántas tareas arrastró la cascada de renombrado,
// para que los consumidores puedan reconciliar sus proyecciones.
type CategoryRenamed struct {
	ID         uuid.UUID `json:"id"`
	OldName    string    `json:"oldName"`
	NewName    string    `json:"newName"`
	TasksMoved int       `json:"tasksMoved"`
}
