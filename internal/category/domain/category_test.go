package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCategory(t *testing.T) {
	c, err := NewCategory("Work", "#3b82f6")
	assert.NoError(t, err)
	assert.Equal(t, "Work", c.Name)
	assert.Equal(t, "#3b82f6", c.Color)
	assert.NotEqual(t, "", c.ID.String())
}

func TestNewCategory_Validation(t *testing.T) {
	_, err := NewCategory("", "#3b82f6")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = NewCategory("   ", "#3b82f6")
	assert.ErrorIs(t, err, ErrInvalidCategory)

	_, err = NewCategory("Work", "blue")
	assert.ErrorIs(t, err, ErrInvalidColor)

	_, err = NewCategory("Work", "#fff")
	assert.ErrorIs(t, err, ErrInvalidColor, "El hex corto de 3 dígitos no se acepta")

	_, err = NewCategory("Work", "3b82f6")
	assert.ErrorIs(t, err, ErrInvalidColor, "Sin almohadilla no es válido")
}

func TestCategory_Rename(t *testing.T) {
	c, _ := NewCategory("Work", "#3b82f6")

	assert.NoError(t, c.Rename("Job"))
	assert.Equal(t, "Job", c.Name)

	assert.ErrorIs(t, c.Rename(""), ErrInvalidCategory)
	assert.Equal(t, "Job", c.Name, "Un rename inválido no debería tocar el nombre")
}

func TestCategory_Recolor(t *testing.T) {
	c, _ := NewCategory("Work", "#3b82f6")

	assert.NoError(t, c.Recolor("#FF8800"))
	assert.Equal(t, "#FF8800", c.Color)

	assert.ErrorIs(t, c.Recolor("red"), ErrInvalidColor)
	assert.Equal(t, "#FF8800", c.Color)
}
