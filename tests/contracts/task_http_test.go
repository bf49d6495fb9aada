package contracts

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
	taskApp "github.com/mroldan/taskdeck/internal/task/application"
	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"
	taskHTTP "github.com/mroldan/taskdeck/internal/task/infra/inbound/http"
	"github.com/mroldan/taskdeck/tests/mocks"
)

// Reloj fijo para que los filtros de hoy/vencidas sean deterministas.
var httpNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// taskHTTPResponse define el formato que esperamos en las respuestas JSON.
type taskHTTPResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     time.Time  `json:"dueDate"`
	CompletedAt *time.Time `json:"completedAt"`
}

func newTaskRouter(repo *mocks.InMemoryTaskRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	service := taskApp.NewTaskService(repo, nil, nil, zap.NewNop()).
		WithClock(func() time.Time { return httpNow })

	router := gin.New()
	taskHTTP.RegisterTaskRoutes(router, taskHTTP.NewTaskHandler(service))
	return router
}

func seedHTTPTask(t *testing.T, repo *mocks.InMemoryTaskRepo, title, category string, due time.Time, completed bool) *taskDomain.Task {
	t.Helper()
	task := &taskDomain.Task{
		ID:        uuid.New(),
		Title:     title,
		Category:  category,
		Priority:  taskDomain.PriorityMedium,
		DueDate:   due,
		Status:    taskDomain.TaskPending,
		CreatedAt: httpNow.Add(-24 * time.Hour),
	}
	if completed {
		ts := httpNow.Add(-time.Hour)
		task.Status = taskDomain.TaskCompleted
		task.CompletedAt = &ts
	}
	require.NoError(t, repo.Create(context.Background(), task, sharedDomain.OutboxEvent{ID: uuid.New()}))
	return task
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

func TestTaskHTTP_CreateAndGet(t *testing.T) {
	repo := mocks.NewInMemoryTaskRepo()
	router := newTaskRouter(repo)

	rec := doRequest(router, http.MethodPost, "/tasks/", gin.H{
		"title":   "Comprar pan",
		"dueDate": "2024-06-20",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var created taskHTTPResponse
	decodeData(t, rec, &created)
	assert.Equal(t, "Comprar pan", created.Title)
	assert.Equal(t, "medium", created.Priority, "Sin prioridad explícita se asume medium")
	assert.Equal(t, "pending", created.Status)
	assert.Nil(t, created.CompletedAt)

	// La tarea recién creada se puede recuperar por su ID.
	rec = doRequest(router, http.MethodGet, "/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched taskHTTPResponse
	decodeData(t, rec, &fetched)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestTaskHTTP_Create_Validation(t *testing.T) {
	router := newTaskRouter(mocks.NewInMemoryTaskRepo())

	// Sin título.
	rec := doRequest(router, http.MethodPost, "/tasks/", gin.H{"dueDate": "2024-06-20"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Fecha ilegible.
	rec = doRequest(router, http.MethodPost, "/tasks/", gin.H{"title": "x", "dueDate": "mañana"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Prioridad fuera de la enumeración.
	rec = doRequest(router, http.MethodPost, "/tasks/", gin.H{"title": "x", "dueDate": "2024-06-20", "priority": "urgent"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskHTTP_GetTask_NotFound(t *testing.T) {
	router := newTaskRouter(mocks.NewInMemoryTaskRepo())

	rec := doRequest(router, http.MethodGet, "/tasks/"+uuid.NewString(), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "task not found")
}

func TestTaskHTTP_Toggle(t *testing.T) {
	repo := mocks.NewInMemoryTaskRepo()
	router := newTaskRouter(repo)
	task := seedHTTPTask(t, repo, "Tarea", "Work", httpNow, false)

	rec := doRequest(router, http.MethodPatch, "/tasks/"+task.ID.String()+"/toggle", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var toggled taskHTTPResponse
	decodeData(t, rec, &toggled)
	assert.Equal(t, "completed", toggled.Status)
	assert.NotNil(t, toggled.CompletedAt)

	// El segundo toggle la devuelve a pendiente.
	rec = doRequest(router, http.MethodPatch, "/tasks/"+task.ID.String()+"/toggle", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &toggled)
	assert.Equal(t, "pending", toggled.Status)
	assert.Nil(t, toggled.CompletedAt)
}

func TestTaskHTTP_Delete(t *testing.T) {
	repo := mocks.NewInMemoryTaskRepo()
	router := newTaskRouter(repo)
	task := seedHTTPTask(t, repo, "Tarea", "", httpNow, false)

	rec := doRequest(router, http.MethodDelete, "/tasks/"+task.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(router, http.MethodGet, "/tasks/"+task.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---------------- Filtro de cuatro dimensiones ----------------

func TestTaskHTTP_Filter_InvalidValueIs400(t *testing.T) {
	router := newTaskRouter(mocks.NewInMemoryTaskRepo())

	// Un valor fuera de la enumeración nunca se degrada a "all".
	for _, path := range []string{
		"/tasks/?status=done",
		"/tasks/?priority=urgent",
		"/tasks/?dateRange=yesterday",
	} {
		rec := doRequest(router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestTaskHTTP_Filter_CaseInsensitiveValues(t *testing.T) {
	repo := mocks.NewInMemoryTaskRepo()
	router := newTaskRouter(repo)

	seedHTTPTask(t, repo, "pendiente", "Work", httpNow, false)
	seedHTTPTask(t, repo, "completada", "Work", httpNow, true)

	// Otra capitalización de un valor válido se normaliza, nunca devuelve
	// un 200 con lista vacía.
	rec := doRequest(router, http.MethodGet, "/tasks/?status=Completed", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []taskHTTPResponse
	decodeData(t, rec, &tasks)
	require.Len(t, tasks, 1)
	assert.Equal(t, "completada", tasks[0].Title)
}

func TestTaskHTTP_Filter_Overdue(t *testing.T) {
	repo := mocks.NewInMemoryTaskRepo()
	router := newTaskRouter(repo)

	seedHTTPTask(t, repo, "vencida", "Work", httpNow.AddDate(0, 0, -2), false)
	seedHTTPTask(t, repo, "vencida completada", "Work", httpNow.AddDate(0, 0, -1), true)
	seedHTTPTask(t, repo, "de hoy", "Work", httpNow, false)

	rec := doRequest(router, http.MethodGet, "/tasks/?dateRange=overdue", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []taskHTTPResponse
	decodeData(t, rec, &tasks)
	require.Len(t, tasks, 1, "Las completadas nunca cuentan como vencidas")
	assert.Equal(t, "vencida", tasks[0].Title)
}

func TestTaskHTTP_Search_Pagination(t *testing.T) {
	repo := mocks.NewInMemoryTaskRepo()
	router := newTaskRouter(repo)

	for i := 0; i < 5; i++ {
		seedHTTPTask(t, repo, "tarea", "Work", httpNow.AddDate(0, 0, i), false)
	}

	rec := doRequest(router, http.MethodGet, "/tasks/search?category=Work&limit=2&offset=0", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var tasks []taskHTTPResponse
	decodeData(t, rec, &tasks)
	assert.Len(t, tasks, 2)
}

// ---------------- Vistas derivadas ----------------

func TestTaskHTTP_Calendar(t *testing.T) {
	repo := mocks.NewInMemoryTaskRepo()
	router := newTaskRouter(repo)

	seedHTTPTask(t, repo, "en junio", "Work", time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC), false)

	rec := doRequest(router, http.MethodGet, "/tasks/calendar?year=2024&month=6", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Days []struct {
			Day   time.Time `json:"day"`
			Total int       `json:"total"`
		} `json:"days"`
	}
	decodeData(t, rec, &view)

	assert.Len(t, view.Days, 42, "Junio de 2024 necesita una rejilla de 6 semanas")
	total := 0
	for _, day := range view.Days {
		total += day.Total
	}
	assert.Equal(t, 1, total)
}

func TestTaskHTTP_Calendar_InvalidMonth(t *testing.T) {
	router := newTaskRouter(mocks.NewInMemoryTaskRepo())

	rec := doRequest(router, http.MethodGet, "/tasks/calendar?year=2024&month=13", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskHTTP_Stats(t *testing.T) {
	repo := mocks.NewInMemoryTaskRepo()
	router := newTaskRouter(repo)

	seedHTTPTask(t, repo, "hoy", "", httpNow, false)
	seedHTTPTask(t, repo, "vencida", "", httpNow.AddDate(0, 0, -1), false)

	rec := doRequest(router, http.MethodGet, "/tasks/stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		TodayCount   int `json:"todayCount"`
		OverdueCount int `json:"overdueCount"`
	}
	decodeData(t, rec, &stats)
	assert.Equal(t, 1, stats.TodayCount)
	assert.Equal(t, 1, stats.OverdueCount)
}

// ---------------- Analítica ----------------

func TestTaskHTTP_Analytics_DisabledIs501(t *testing.T) {
	// Servicio sin almacén analítico configurado.
	router := newTaskRouter(mocks.NewInMemoryTaskRepo())

	rec := doRequest(router, http.MethodGet, "/tasks/analytics/trend", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = doRequest(router, http.MethodGet, "/tasks/analytics/completion-time", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
