package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestNewTask_Defaults valida los valores por defecto de una tarea nueva.
func TestNewTask_Defaults(t *testing.T) {
	// Arrange
	dueDate := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

	// Act
	task, err := NewTask("Comprar pan", "en la panadería de la esquina", "Personal", PriorityMedium, dueDate)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, TaskPending, task.Status, "Una tarea nueva debería estar pendiente")
	assert.Nil(t, task.CompletedAt, "Una tarea pendiente no debería tener CompletedAt")
	assert.NotEqual(t, task.ID.String(), "", "El ID debería generarse")
	assert.False(t, task.CreatedAt.IsZero())
}

func TestNewTask_Validation(t *testing.T) {
	dueDate := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

	_, err := NewTask("", "", "", PriorityLow, dueDate)
	assert.ErrorIs(t, err, ErrInvalidTask, "Un título vacío debería rechazarse")

	_, err = NewTask("   ", "", "", PriorityLow, dueDate)
	assert.ErrorIs(t, err, ErrInvalidTask, "Un título en blanco debería rechazarse")

	_, err = NewTask("Título", "", "", PriorityLow, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidTask, "Una fecha cero debería rechazarse")

	_, err = NewTask("Título", "", "", TaskPriority("urgent"), dueDate)
	assert.ErrorIs(t, err, ErrInvalidPriority, "Una prioridad desconocida debería rechazarse")
}

// TestTask_Complete valida el invariante Status ⇔ CompletedAt al completar.
func TestTask_Complete(t *testing.T) {
	// Arrange
	task, _ := NewTask("Tarea", "", "", PriorityLow, time.Now().UTC())

	// Act
	task.Complete()

	// Assert
	assert.Equal(t, TaskCompleted, task.Status, "El estado debería ser 'completed'")
	assert.NotNil(t, task.CompletedAt, "CompletedAt debería fijarse al completar")

	// Completar dos veces no debe mover la marca de tiempo.
	first := *task.CompletedAt
	task.Complete()
	assert.Equal(t, first, *task.CompletedAt)
}

// TestTask_Reopen valida el invariante al reabrir.
func TestTask_Reopen(t *testing.T) {
	task, _ := NewTask("Tarea", "", "", PriorityLow, time.Now().UTC())
	task.Complete()

	task.Reopen()

	assert.Equal(t, TaskPending, task.Status)
	assert.Nil(t, task.CompletedAt, "CompletedAt debería limpiarse al reabrir")
}

func TestTask_ToggleStatus(t *testing.T) {
	task, _ := NewTask("Tarea", "", "", PriorityLow, time.Now().UTC())

	task.ToggleStatus()
	assert.Equal(t, TaskCompleted, task.Status)
	assert.NotNil(t, task.CompletedAt)

	task.ToggleStatus()
	assert.Equal(t, TaskPending, task.Status)
	assert.Nil(t, task.CompletedAt)
}

// TestTask_IsOverdue valida la comparación por día de calendario, no por instante.
func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	// Vencía ayer a última hora: vencida aunque hayan pasado menos de 24h.
	task := &Task{Status: TaskPending, DueDate: time.Date(2024, 6, 14, 23, 59, 0, 0, time.UTC)}
	assert.True(t, task.IsOverdue(now))

	// Vence hoy más tarde: no vencida.
	task.DueDate = time.Date(2024, 6, 15, 23, 0, 0, 0, time.UTC)
	assert.False(t, task.IsOverdue(now))

	// Vencía ayer pero está completada: nunca vencida.
	completed := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	task = &Task{Status: TaskCompleted, CompletedAt: &completed, DueDate: time.Date(2024, 6, 14, 8, 0, 0, 0, time.UTC)}
	assert.False(t, task.IsOverdue(now))
}

func TestTask_IsDueOn(t *testing.T) {
	task := &Task{DueDate: time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)}

	assert.True(t, task.IsDueOn(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, task.IsDueOn(time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)), "La hora del día consultado no debería importar")
	assert.False(t, task.IsDueOn(time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)))
}

func TestParseStatusAndPriority(t *testing.T) {
	status, err := ParseStatus("Completed")
	assert.NoError(t, err)
	assert.Equal(t, TaskCompleted, status)

	_, err = ParseStatus("done")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	priority, err := ParsePriority("HIGH")
	assert.NoError(t, err)
	assert.Equal(t, PriorityHigh, priority)

	_, err = ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrInvalidPriority)
}
