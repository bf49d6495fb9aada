// en internal/shared/infra/fixtures/seeder.go
package fixtures

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	categoryApp "github.com/mroldan/taskdeck/internal/category/application"
	categoryDomain "github.com/mroldan/taskdeck/internal/category/domain"
	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
	sharedQuery "github.com/mroldan/taskdeck/internal/shared/infra/platform/query"
	taskApp "github.com/mroldan/taskdeck/internal/task/application"
	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"
)

// Formato de los ficheros de fixtures. Las fechas de vencimiento son relativas
// a "hoy" (en días) para que las vistas de vencidas/hoy/próximas tengan datos
// sea cual sea el día en que se arranque con seeding.
type taskFixture struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	DueInDays   int    `json:"dueInDays"`
	Completed   bool   `json:"completed"`
}

type categoryFixture struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Seeder carga datos de ejemplo en un almacén vacío. Pasa por los servicios de
// aplicación, no por los repositorios, para que el seeding produzca los mismos
// eventos de outbox que el uso normal.
type Seeder struct {
	tasks      *taskApp.TaskService
	categories *categoryApp.CategoryService
	log        *zap.Logger
}

func NewSeeder(tasks *taskApp.TaskService, categories *categoryApp.CategoryService, log *zap.Logger) *Seeder {
	return &Seeder{tasks: tasks, categories: categories, log: log}
}

// Seed puebla tareas y categorías desde 'dir' solo si el almacén está vacío.
func (s *Seeder) Seed(ctx context.Context, dir string) error {
	existing, err := s.tasks.ListTasks(ctx, sharedDomain.And(), nil, sharedQuery.Sort{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.log.Info("Store not empty, skipping seed", zap.Int("tasks", len(existing)))
		return nil
	}

	if err := s.seedCategories(ctx, filepath.Join(dir, "categories.json")); err != nil {
		return err
	}
	return s.seedTasks(ctx, filepath.Join(dir, "tasks.json"))
}

func (s *Seeder) seedCategories(ctx context.Context, path string) error {
	var fixtures []categoryFixture
	if err := loadJSON(path, &fixtures); err != nil {
		return err
	}

	for _, f := range fixtures {
		if _, err := s.categories.CreateCategory(ctx, f.Name, f.Color); err != nil {
			// Una categoría ya sembrada no es un fallo del seeding completo.
			if errors.Is(err, categoryDomain.ErrCategoryExists) {
				continue
			}
			return err
		}
	}

	s.log.Info("Seeded categories", zap.Int("count", len(fixtures)), zap.String("file", path))
	return nil
}

func (s *Seeder) seedTasks(ctx context.Context, path string) error {
	var fixtures []taskFixture
	if err := loadJSON(path, &fixtures); err != nil {
		return err
	}

	today := time.Now().UTC()
	for _, f := range fixtures {
		priority, err := taskDomain.ParsePriority(f.Priority)
		if err != nil {
			s.log.Warn("Skipping fixture with invalid priority",
				zap.String("title", f.Title),
				zap.String("priority", f.Priority),
			)
			continue
		}

		dueDate := today.AddDate(0, 0, f.DueInDays)
		task, err := s.tasks.CreateTask(ctx, f.Title, f.Description, f.Category, priority, dueDate)
		if err != nil {
			return err
		}

		if f.Completed {
			if _, err := s.tasks.ToggleTaskStatus(ctx, task.ID); err != nil {
				return err
			}
		}
	}

	s.log.Info("Seeded tasks", zap.Int("count", len(fixtures)), zap.String("file", path))
	return nil
}

// loadJSON lee un fichero de fixtures; un fichero inexistente o vacío
// simplemente no siembra nada.
func loadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
