package domain

import (
	"regexp"
	"strings"

	sharedBus "github.com/mroldan/taskdeck/internal/shared/infra/platform/bus"
	"github.com/google/uuid"
)

// Formato de color aceptado: hex de 6 dígitos con almohadilla, ej. "#5b21b6".
var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Category es una etiqueta con nombre y color que agrupa tareas.
// El nombre es único entre categorías y actúa como clave foránea débil
// desde Task.Category.
type Category struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

// NewCategory valida nombre y color y construye la categoría.
func NewCategory(name, color string) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidCategory
	}
	if !hexColorRe.MatchString(color) {
		return nil, ErrInvalidColor
	}

	return &Category{
		ID:    uuid.New(),
		Name:  name,
		Color: color,
	}, nil
}

func (c *Category) PartitionKey() string {
	return c.ID.String()
}

// --- Métodos de dominio ---

// Rename cambia el nombre de la categoría. La cascada sobre las tareas que
// referencian el nombre antiguo es responsabilidad del servicio de aplicación.
func (c *Category) Rename(newName string) error {
	if strings.TrimSpace(newName) == "" {
		return ErrInvalidCategory
	}
	c.Name = newName
	return nil
}

// Recolor cambia el color visual. No hay invariante semántico sobre el color
// más allá del formato.
func (c *Category) Recolor(color string) error {
	if !hexColorRe.MatchString(color) {
		return ErrInvalidColor
	}
	c.Color = color
	return nil
}

// Verificación estática para asegurar que Category implementa la interfaz
var _ sharedBus.Keyer = (*Category)(nil)
