// en internal/category/application/category_service_test.go
package application

import (
	"context"
	"testing"
	"time"

	categoryDomain "github.com/mroldan/taskdeck/internal/category/domain"
	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"
	"github.com/mroldan/taskdeck/tests/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCategoryService(repo *mocks.InMemoryCategoryRepo, tasks *mocks.InMemoryTaskRepo) *CategoryService {
	return NewCategoryService(repo, tasks, nil, zap.NewNop())
}

func seedCategoryTask(t *testing.T, repo *mocks.InMemoryTaskRepo, title, category string, completed bool) *taskDomain.Task {
	t.Helper()
	task := &taskDomain.Task{
		ID:       uuid.New(),
		Title:    title,
		Category: category,
		Priority: taskDomain.PriorityLow,
		DueDate:  time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Status:   taskDomain.TaskPending,
	}
	if completed {
		ts := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)
		task.Status = taskDomain.TaskCompleted
		task.CompletedAt = &ts
	}
	require.NoError(t, repo.Create(context.Background(), task, sharedDomain.OutboxEvent{ID: uuid.New()}))
	return task
}

func TestCreateCategory_Success(t *testing.T) {
	repo := mocks.NewInMemoryCategoryRepo()
	service := newCategoryService(repo, mocks.NewInMemoryTaskRepo())

	category, err := service.CreateCategory(context.Background(), "Work", "#3b82f6")

	require.NoError(t, err)
	assert.Equal(t, "Work", category.Name)

	require.Len(t, repo.Outbox, 1)
	assert.Equal(t, "category.created", repo.Outbox[0].EventType)
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	repo := mocks.NewInMemoryCategoryRepo()
	service := newCategoryService(repo, mocks.NewInMemoryTaskRepo())

	_, err := service.CreateCategory(context.Background(), "Work", "#3b82f6")
	require.NoError(t, err)

	_, err = service.CreateCategory(context.Background(), "Work", "#ff0000")

	assert.ErrorIs(t, err, categoryDomain.ErrCategoryExists)
}

func TestCreateCategory_InvalidColor(t *testing.T) {
	repo := mocks.NewInMemoryCategoryRepo()
	service := newCategoryService(repo, mocks.NewInMemoryTaskRepo())

	_, err := service.CreateCategory(context.Background(), "Work", "blue")

	assert.ErrorIs(t, err, categoryDomain.ErrInvalidColor)
	assert.Empty(t, repo.Outbox)
}

// ----------------- Rename en cascada -----------------

func TestUpdateCategory_RenameCascadesTasks(t *testing.T) {
	repo := mocks.NewInMemoryCategoryRepo()
	tasks := mocks.NewInMemoryTaskRepo()
	service := newCategoryService(repo, tasks)

	category, err := service.CreateCategory(context.Background(), "Work", "#3b82f6")
	require.NoError(t, err)

	seedCategoryTask(t, tasks, "a", "Work", false)
	seedCategoryTask(t, tasks, "b", "Work", true)
	seedCategoryTask(t, tasks, "c", "Personal", false)

	newName := "Job"
	updated, moved, err := service.UpdateCategory(context.Background(), category.ID, &newName, nil)

	require.NoError(t, err)
	assert.Equal(t, "Job", updated.Name)
	assert.Equal(t, 2, moved, "Solo las tareas de la categoría renombrada se mueven")

	// Todas las tareas de "Work" apuntan ahora a "Job".
	count, _ := tasks.CountByCategory(context.Background(), "Work")
	assert.Equal(t, 0, count)
	count, _ = tasks.CountByCategory(context.Background(), "Job")
	assert.Equal(t, 2, count)
	count, _ = tasks.CountByCategory(context.Background(), "Personal")
	assert.Equal(t, 1, count, "Las demás categorías no se tocan")

	// Evento de resumen del renombrado, además del created y el updated.
	require.Len(t, repo.Outbox, 3)
	assert.Equal(t, "category.renamed", repo.Outbox[2].EventType)
}

func TestUpdateCategory_RenameToExistingName(t *testing.T) {
	repo := mocks.NewInMemoryCategoryRepo()
	service := newCategoryService(repo, mocks.NewInMemoryTaskRepo())

	category, _ := service.CreateCategory(context.Background(), "Work", "#3b82f6")
	_, err := service.CreateCategory(context.Background(), "Personal", "#22c55e")
	require.NoError(t, err)

	newName := "Personal"
	_, _, err = service.UpdateCategory(context.Background(), category.ID, &newName, nil)

	assert.ErrorIs(t, err, categoryDomain.ErrCategoryExists)
}

func TestUpdateCategory_RecolorOnly(t *testing.T) {
	repo := mocks.NewInMemoryCategoryRepo()
	tasks := mocks.NewInMemoryTaskRepo()
	service := newCategoryService(repo, tasks)

	category, _ := service.CreateCategory(context.Background(), "Work", "#3b82f6")
	seedCategoryTask(t, tasks, "a", "Work", false)

	newColor := "#ff8800"
	updated, moved, err := service.UpdateCategory(context.Background(), category.ID, nil, &newColor)

	require.NoError(t, err)
	assert.Equal(t, "#ff8800", updated.Color)
	assert.Equal(t, 0, moved, "Cambiar el color no mueve tareas")
}

func TestUpdateCategory_NotFound(t *testing.T) {
	repo := mocks.NewInMemoryCategoryRepo()
	service := newCategoryService(repo, mocks.NewInMemoryTaskRepo())

	name := "X"
	_, _, err := service.UpdateCategory(context.Background(), uuid.New(), &name, nil)

	assert.ErrorIs(t, err, categoryDomain.ErrCategoryNotFound)
}

// ----------------- Borrado con guarda -----------------

func TestDeleteCategory_InUse(t *testing.T) {
	repo := mocks.NewInMemoryCategoryRepo()
	tasks := mocks.NewInMemoryTaskRepo()
	service := newCategoryService(repo, tasks)

	category, _ := service.CreateCategory(context.Background(), "Work", "#3b82f6")
	seedCategoryTask(t, tasks, "a", "Work", false)

	err := service.DeleteCategory(context.Background(), category.ID)

	assert.ErrorIs(t, err, categoryDomain.ErrCategoryInUse)
	assert.Contains(t, err.Error(), "1 task(s)", "El error comunica cuántas tareas bloquean el borrado")

	// La categoría sigue existiendo.
	_, err = repo.GetByID(context.Background(), category.ID)
	assert.NoError(t, err)
}

func TestDeleteCategory_CompletedTasksStillBlock(t *testing.T) {
	repo := mocks.NewInMemoryCategoryRepo()
	tasks := mocks.NewInMemoryTaskRepo()
	service := newCategoryService(repo, tasks)

	category, _ := service.CreateCategory(context.Background(), "Work", "#3b82f6")
	seedCategoryTask(t, tasks, "a", "Work", true)

	err := service.DeleteCategory(context.Background(), category.ID)

	assert.ErrorIs(t, err, categoryDomain.ErrCategoryInUse, "Una tarea completada también cuenta como uso")
}

func TestDeleteCategory_Unused(t *testing.T) {
	repo := mocks.NewInMemoryCategoryRepo()
	tasks := mocks.NewInMemoryTaskRepo()
	service := newCategoryService(repo, tasks)

	category, _ := service.CreateCategory(context.Background(), "Work", "#3b82f6")
	seedCategoryTask(t, tasks, "a", "Personal", false)

	err := service.DeleteCategory(context.Background(), category.ID)

	require.NoError(t, err)
	_, err = repo.GetByID(context.Background(), category.ID)
	assert.ErrorIs(t, err, categoryDomain.ErrCategoryNotFound)

	assert.Equal(t, "category.deleted", repo.Outbox[len(repo.Outbox)-1].EventType)
}

// ----------------- Stats -----------------

func TestStats(t *testing.T) {
	repo := mocks.NewInMemoryCategoryRepo()
	tasks := mocks.NewInMemoryTaskRepo()
	service := newCategoryService(repo, tasks)

	_, err := service.CreateCategory(context.Background(), "Work", "#3b82f6")
	require.NoError(t, err)
	_, err = service.CreateCategory(context.Background(), "Personal", "#22c55e")
	require.NoError(t, err)

	seedCategoryTask(t, tasks, "a", "Work", true)
	seedCategoryTask(t, tasks, "b", "Work", false)
	seedCategoryTask(t, tasks, "c", "Personal", false)

	stats, err := service.Stats(context.Background())

	require.NoError(t, err)
	require.Len(t, stats, 2)

	byName := map[string]categoryDomain.CategoryStats{}
	for _, s := range stats {
		byName[s.Name] = s
	}

	assert.Equal(t, 2, byName["Work"].TaskCount)
	assert.Equal(t, 1, byName["Work"].CompletedCount)
	assert.Equal(t, 50, byName["Work"].CompletionPercentage)

	assert.Equal(t, 1, byName["Personal"].TaskCount)
	assert.Equal(t, 0, byName["Personal"].CompletionPercentage)
}
