// en internal/task/application/task_service.go
package application

import (
	"context"
	"errors"
	"sort"
	"time"

	// --- Importaciones del dominio y compartidas ---
	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
	sharedCache "github.com/mroldan/taskdeck/internal/shared/infra/platform/cache"
	sharedQuery "github.com/mroldan/taskdeck/internal/shared/infra/platform/query"
	sharedUtils "github.com/mroldan/taskdeck/internal/shared/infra/utils"
	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAnalyticsDisabled se devuelve cuando se pide una consulta analítica y no
// hay almacén analítico configurado.
var ErrAnalyticsDisabled = errors.New("analytics repository not configured")

// TaskService define los casos de uso relacionados con Task.
// Incorpora repositorio, almacén analítico opcional, caché y logger.
type TaskService struct {
	repo      taskDomain.TaskRepository
	analytics taskDomain.TaskAnalyticsRepository
	cache     sharedCache.Cache
	log       *zap.Logger
	now       func() time.Time
}

// NewTaskService es el constructor para el servicio de tareas.
func NewTaskService(repo taskDomain.TaskRepository, analytics taskDomain.TaskAnalyticsRepository, cache sharedCache.Cache, log *zap.Logger) *TaskService {
	return &TaskService{
		repo:      repo,
		analytics: analytics,
		cache:     cache,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sustituye el reloj del servicio; pensado para tests.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// CreateTask crea una nueva tarea, su evento de outbox y actualiza la caché.
func (s *TaskService) CreateTask(ctx context.Context, title, description, category string, priority taskDomain.TaskPriority, dueDate time.Time) (*taskDomain.Task, error) {
	task, err := taskDomain.NewTask(title, description, category, priority, dueDate)
	if err != nil {
		return nil, err
	}

	outboxEvent := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "task",
		AggregateID:   task.ID.String(),
		EventType:     taskDomain.TaskCreated,
		Payload:       task, // El payload es la entidad completa
		CreatedAt:     s.now(),
	}

	if err := s.repo.Create(ctx, task, outboxEvent); err != nil {
		s.log.Error("Failed to create task", zap.Error(err))
		return nil, err
	}

	// Actualizar caché en segundo plano
	sharedCache.AsyncCacheSet(ctx, s.cache, taskDomain.TaskCacheKeyByID(task.ID), task, 60, s.log)

	return task, nil
}

// UpdateTask actualiza una tarea, crea un evento y actualiza la caché.
func (s *TaskService) UpdateTask(ctx context.Context, t *taskDomain.Task) error {
	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "task",
		AggregateID:   t.ID.String(),
		EventType:     taskDomain.TaskUpdated,
		Payload:       t,
		CreatedAt:     s.now(),
	}

	if err := s.repo.Update(ctx, t, evt); err != nil {
		return err
	}

	// Actualizar caché en segundo plano
	sharedCache.AsyncCacheSet(ctx, s.cache, taskDomain.TaskCacheKeyByID(t.ID), t, 60, s.log)

	return nil
}

// ToggleTaskStatus alterna pending ⇄ completed manteniendo el invariante de
// CompletedAt, y registra la tarea en el almacén analítico cuando se completa.
func (s *TaskService) ToggleTaskStatus(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	task, err := s.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	task.ToggleStatus()

	if err := s.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	if task.Status == taskDomain.TaskCompleted && s.analytics != nil {
		// El log analítico es best-effort: no debe bloquear ni fallar el caso de uso.
		go func(t *taskDomain.Task) {
			logCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.analytics.LogBatch(logCtx, []*taskDomain.Task{t}); err != nil {
				s.log.Warn("⚠️ Failed to log completed task to analytics",
					zap.String("task_id", t.ID.String()),
					zap.Error(err),
				)
			}
		}(task)
	}

	return task, nil
}

// DeleteTask elimina una tarea, crea un evento y limpia la caché.
func (s *TaskService) DeleteTask(ctx context.Context, id uuid.UUID) error {
	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "task",
		AggregateID:   id.String(),
		EventType:     taskDomain.TaskDeleted,
		Payload:       map[string]interface{}{"id": id.String()},
		CreatedAt:     s.now(),
	}

	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		return err
	}

	// Eliminar de la caché en segundo plano
	sharedCache.AsyncCacheDelete(ctx, s.cache, taskDomain.TaskCacheKeyByID(id), s.log)

	return nil
}

// GetTaskByID obtiene una tarea, usando el patrón cache-aside con reintentos.
func (s *TaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	// 1. Intentar obtener de la caché
	if s.cache != nil {
		var t taskDomain.Task
		if hit, _ := s.cache.Get(ctx, taskDomain.TaskCacheKeyByID(id), &t); hit {
			return &t, nil
		}
	}

	// 2. Si es 'miss', ir al repositorio con reintentos
	var task *taskDomain.Task
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		task, errRetry = s.repo.GetByID(ctx, id)
		return errRetry
	})

	if err != nil {
		if errors.Is(err, taskDomain.ErrTaskNotFound) {
			s.log.Warn("Task not found", zap.String("task_id", id.String()))
		} else {
			s.log.Error("Failed to fetch task", zap.String("task_id", id.String()), zap.Error(err))
		}
		return nil, err
	}

	// 3. Actualizar caché en segundo plano para la próxima vez
	sharedCache.AsyncCacheSet(ctx, s.cache, taskDomain.TaskCacheKeyByID(task.ID), task, 120, s.log)

	return task, nil
}

// ListTasks es un pass-through al repositorio para listados genéricos.
func (s *TaskService) ListTasks(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sorts sharedQuery.Sort) ([]*taskDomain.Task, error) {
	return s.repo.ListByCriteria(ctx, criteria, pagination, sorts)
}

// ---------------- Vistas derivadas ----------------

// FilteredTasks aplica el FilterSpec de cuatro dimensiones sobre un snapshot
// completo de la colección. El filtrado es conjuntivo, estable y puro; la
// semántica de fechas se evalúa contra el reloj del servicio.
func (s *TaskService) FilteredTasks(ctx context.Context, spec taskDomain.FilterSpec) ([]*taskDomain.Task, error) {
	tasks, err := s.repo.ListByCriteria(ctx, sharedDomain.And(), nil, sharedQuery.Sort{Field: "due_date"})
	if err != nil {
		return nil, err
	}
	return taskDomain.FilterTasks(tasks, spec, s.now()), nil
}

// CalendarView es la vista mensual: rango visible más el resumen de cada celda.
type CalendarView struct {
	Range taskDomain.VisibleRange `json:"range"`
	Days  []taskDomain.DaySummary `json:"days"`
}

// MonthView construye la rejilla del mes: recupera las tareas que vencen en el
// rango visible y las indexa por día, truncando cada celda para presentación.
func (s *TaskService) MonthView(ctx context.Context, year int, month time.Month) (CalendarView, error) {
	rng := taskDomain.MonthRange(year, month, time.UTC)

	// El límite superior cubre el último día completo de la rejilla.
	start := rng.Start
	end := rng.End.AddDate(0, 0, 1).Add(-time.Nanosecond)
	criteria := taskDomain.DueDateRangeCriteria{Start: &start, End: &end}

	tasks, err := s.repo.ListByCriteria(ctx, criteria, nil, sharedQuery.Sort{Field: "due_date"})
	if err != nil {
		return CalendarView{}, err
	}

	buckets := taskDomain.BucketTasksByDay(tasks, rng)

	view := CalendarView{Range: rng}
	for _, day := range rng.Days() {
		view.Days = append(view.Days, taskDomain.SummarizeDay(day, buckets[day]))
	}
	return view, nil
}

// TaskStats son los contadores rápidos de la cabecera: tareas de hoy y vencidas.
type TaskStats struct {
	TodayCount   int `json:"todayCount"`
	OverdueCount int `json:"overdueCount"`
}

// QuickStats calcula los contadores de hoy/vencidas con el motor de filtrado.
func (s *TaskService) QuickStats(ctx context.Context) (TaskStats, error) {
	tasks, err := s.repo.ListByCriteria(ctx, sharedDomain.And(), nil, sharedQuery.Sort{})
	if err != nil {
		return TaskStats{}, err
	}

	now := s.now()
	today, _ := taskDomain.NewFilterSpec("", "", "", taskDomain.DateRangeToday)
	overdue, _ := taskDomain.NewFilterSpec("", "", "", taskDomain.DateRangeOverdue)

	return TaskStats{
		TodayCount:   len(taskDomain.FilterTasks(tasks, today, now)),
		OverdueCount: len(taskDomain.FilterTasks(tasks, overdue, now)),
	}, nil
}

// TaskFacets alimenta la barra lateral de filtros: contadores por estado y la
// lista ordenada de categorías en uso.
type TaskFacets struct {
	Total      int      `json:"total"`
	Pending    int      `json:"pending"`
	Completed  int      `json:"completed"`
	Categories []string `json:"categories"`
}

// Facets recalcula los contadores de la barra lateral sobre un snapshot.
func (s *TaskService) Facets(ctx context.Context) (TaskFacets, error) {
	tasks, err := s.repo.ListByCriteria(ctx, sharedDomain.And(), nil, sharedQuery.Sort{})
	if err != nil {
		return TaskFacets{}, err
	}

	facets := TaskFacets{Total: len(tasks)}
	seen := make(map[string]struct{})
	for _, t := range tasks {
		switch t.Status {
		case taskDomain.TaskPending:
			facets.Pending++
		case taskDomain.TaskCompleted:
			facets.Completed++
		}
		if t.Category != "" {
			seen[t.Category] = struct{}{}
		}
	}

	for name := range seen {
		facets.Categories = append(facets.Categories, name)
	}
	sort.Strings(facets.Categories)

	return facets, nil
}

// ---------------- Analítica ----------------

// DailyTrend devuelve la tendencia diaria de creación/completado desde ClickHouse.
func (s *TaskService) DailyTrend(ctx context.Context, start, end time.Time) ([]taskDomain.DailyTaskTrend, error) {
	if s.analytics == nil {
		return nil, ErrAnalyticsDisabled
	}
	return s.analytics.GetDailyTrend(ctx, start, end)
}

// AverageCompletionTime devuelve el tiempo medio entre creación y completado.
func (s *TaskService) AverageCompletionTime(ctx context.Context, start, end time.Time) (time.Duration, error) {
	if s.analytics == nil {
		return 0, ErrAnalyticsDisabled
	}
	return s.analytics.GetAverageCompletionTime(ctx, start, end)
}
