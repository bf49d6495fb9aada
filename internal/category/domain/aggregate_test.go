package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"
)

func catTask(category string, completed bool) *taskDomain.Task {
	task := &taskDomain.Task{
		Category: category,
		DueDate:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Status:   taskDomain.TaskPending,
	}
	if completed {
		ts := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
		task.Status = taskDomain.TaskCompleted
		task.CompletedAt = &ts
	}
	return task
}

func TestAggregateCategory(t *testing.T) {
	tasks := []*taskDomain.Task{
		catTask("Work", true),
		catTask("Work", false),
		catTask("Personal", false),
	}

	stats := AggregateCategory(tasks, "Work")

	assert.Equal(t, "Work", stats.Name)
	assert.Equal(t, 2, stats.TaskCount)
	assert.Equal(t, 1, stats.CompletedCount)
	assert.Equal(t, 50, stats.CompletionPercentage)
}

func TestAggregateCategory_Empty(t *testing.T) {
	stats := AggregateCategory(nil, "Work")

	assert.Equal(t, 0, stats.TaskCount)
	assert.Equal(t, 0, stats.CompletedCount)
	assert.Equal(t, 0, stats.CompletionPercentage, "Sin tareas el porcentaje es 0, nunca una división por cero")
}

// Round-half-up: los límites .5 siempre suben.
func TestAggregateCategory_Rounding(t *testing.T) {
	cases := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{"un tercio", 1, 3, 33},
		{"dos tercios", 2, 3, 67},
		{"un octavo (12.5)", 1, 8, 13},
		{"tres octavos (37.5)", 3, 8, 38},
		{"un sexto (16.66)", 1, 6, 17},
		{"todo completado", 4, 4, 100},
		{"nada completado", 0, 4, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var tasks []*taskDomain.Task
			for i := 0; i < tc.total; i++ {
				tasks = append(tasks, catTask("X", i < tc.completed))
			}
			stats := AggregateCategory(tasks, "X")
			assert.Equal(t, tc.want, stats.CompletionPercentage)
		})
	}
}

func TestAggregateCategory_Bounds(t *testing.T) {
	tasks := []*taskDomain.Task{catTask("Work", true), catTask("Work", true)}
	stats := AggregateCategory(tasks, "Work")

	assert.GreaterOrEqual(t, stats.CompletionPercentage, 0)
	assert.LessOrEqual(t, stats.CompletionPercentage, 100)
	assert.LessOrEqual(t, stats.CompletedCount, stats.TaskCount)
}

func TestDeletable(t *testing.T) {
	tasks := []*taskDomain.Task{catTask("Work", false)}

	assert.False(t, Deletable(tasks, "Work"))
	assert.True(t, Deletable(tasks, "Personal"))
	assert.True(t, Deletable(nil, "Work"))
}
