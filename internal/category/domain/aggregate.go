package domain

import (
	"math"

	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"
)

// ---------------- Agregación por categoría ----------------

// CategoryStats es el resultado de agregar una colección de tareas para una
// categoría: total, completadas y porcentaje de completitud (entero, 0-100).
type CategoryStats struct {
	Name                 string `json:"name"`
	TaskCount            int    `json:"taskCount"`
	CompletedCount       int    `json:"completedCount"`
	CompletionPercentage int    `json:"completionPercentage"`
}

// AggregateCategory recalcula las estadísticas de una categoría a partir de
// un snapshot de la colección de tareas. Es una función pura, sin estado ni
// cachés incrementales: se recalcula en cada invocación.
//
// El porcentaje se redondea con round-half-up: 0.5 siempre sube.
func AggregateCategory(tasks []*taskDomain.Task, name string) CategoryStats {
	stats := CategoryStats{Name: name}
	for _, t := range tasks {
		if t.Category != name {
			continue
		}
		stats.TaskCount++
		if t.Status == taskDomain.TaskCompleted {
			stats.CompletedCount++
		}
	}

	if stats.TaskCount > 0 {
		ratio := float64(stats.CompletedCount) / float64(stats.TaskCount) * 100
		stats.CompletionPercentage = int(math.Floor(ratio + 0.5))
	}

	return stats
}

// Deletable indica si una categoría puede borrarse: solo cuando ninguna tarea
// la referencia. El llamador es quien comunica el rechazo (con el contador)
// al usuario.
func Deletable(tasks []*taskDomain.Task, name string) bool {
	return AggregateCategory(tasks, name).TaskCount == 0
}
