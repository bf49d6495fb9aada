// en internal/task/infra/inbound/http/task_handler.go
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
	sharedQuery "github.com/mroldan/taskdeck/internal/shared/infra/platform/query"
	"github.com/mroldan/taskdeck/internal/task/application"
	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"
	"github.com/mroldan/taskdeck/pkg/utils"
)

// TaskHandler encapsula los endpoints HTTP relacionados con Task.
type TaskHandler struct {
	service *application.TaskService
}

// NewTaskHandler crea un nuevo TaskHandler.
func NewTaskHandler(service *application.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// parseDueDate acepta fecha suelta (YYYY-MM-DD) o instante RFC3339.
func parseDueDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// ---------------- Handlers CRUD ----------------

// CreateTask endpoint POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Priority    string `json:"priority"`
		DueDate     string `json:"dueDate" binding:"required"` // YYYY-MM-DD o RFC3339
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		utils.SendBadRequest(c, "invalid dueDate, use YYYY-MM-DD or RFC3339")
		return
	}

	priority := taskDomain.PriorityMedium
	if req.Priority != "" {
		priority, err = taskDomain.ParsePriority(req.Priority)
		if err != nil {
			utils.SendBadRequest(c, err.Error())
			return
		}
	}

	task, err := h.service.CreateTask(c.Request.Context(), req.Title, req.Description, req.Category, priority, dueDate)
	if err != nil {
		if errors.Is(err, taskDomain.ErrInvalidTask) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusCreated, task)
}

// GetTask endpoint GET /tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid task id")
		return
	}

	task, err := h.service.GetTaskByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, taskDomain.ErrTaskNotFound) {
			utils.SendNotFound(c, "task not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, task)
}

// UpdateTask endpoint PUT /tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid task id")
		return
	}

	// Punteros para que todos los campos sean opcionales en el JSON.
	var req struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Category    *string `json:"category,omitempty"`
		Priority    *string `json:"priority,omitempty"`
		DueDate     *string `json:"dueDate,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	task, err := h.service.GetTaskByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, taskDomain.ErrTaskNotFound) {
			utils.SendNotFound(c, "task not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			utils.SendBadRequest(c, "title cannot be empty")
			return
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.Priority != nil {
		priority, err := taskDomain.ParsePriority(*req.Priority)
		if err != nil {
			utils.SendBadRequest(c, err.Error())
			return
		}
		task.Priority = priority
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(*req.DueDate)
		if err != nil {
			utils.SendBadRequest(c, "invalid dueDate, use YYYY-MM-DD or RFC3339")
			return
		}
		task.DueDate = dueDate
	}

	if err := h.service.UpdateTask(c.Request.Context(), task); err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, task)
}

// ToggleTask endpoint PATCH /tasks/:id/toggle
func (h *TaskHandler) ToggleTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid task id")
		return
	}

	task, err := h.service.ToggleTaskStatus(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, taskDomain.ErrTaskNotFound) {
			utils.SendNotFound(c, "task not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, task)
}

// DeleteTask endpoint DELETE /tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid task id")
		return
	}

	if err := h.service.DeleteTask(c.Request.Context(), id); err != nil {
		if errors.Is(err, taskDomain.ErrTaskNotFound) {
			utils.SendNotFound(c, "task not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

// ---------------- Listados ----------------

// ListTasks endpoint GET /tasks con el filtro de cuatro dimensiones.
// Un valor fuera de la enumeración de una dimensión devuelve 400, nunca se
// degrada silenciosamente a "all".
func (h *TaskHandler) ListTasks(c *gin.Context) {
	spec, err := taskDomain.NewFilterSpec(
		c.Query("status"),
		c.Query("category"),
		c.Query("priority"),
		c.Query("dateRange"),
	)
	if err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	tasks, err := h.service.FilteredTasks(c.Request.Context(), spec)
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, tasks)
}

// SearchTasks endpoint GET /tasks/search con criterios, paginación y ordenamiento.
// A diferencia de ListTasks, este listado empuja las condiciones al repositorio.
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	var criterias []sharedDomain.Criteria

	if title := c.Query("title"); title != "" {
		criterias = append(criterias, taskDomain.TitleLikeCriteria{Title: title})
	}
	if status := c.Query("status"); status != "" {
		parsed, err := taskDomain.ParseStatus(status)
		if err != nil {
			utils.SendBadRequest(c, err.Error())
			return
		}
		criterias = append(criterias, taskDomain.StatusCriteria{Status: parsed})
	}
	if category := c.Query("category"); category != "" {
		criterias = append(criterias, taskDomain.CategoryCriteria{Name: category})
	}
	if priority := c.Query("priority"); priority != "" {
		parsed, err := taskDomain.ParsePriority(priority)
		if err != nil {
			utils.SendBadRequest(c, err.Error())
			return
		}
		criterias = append(criterias, taskDomain.PriorityCriteria{Priority: parsed})
	}

	var from, to *time.Time
	if raw := c.Query("due_from"); raw != "" {
		if t, err := parseDueDate(raw); err == nil {
			from = &t
		}
	}
	if raw := c.Query("due_to"); raw != "" {
		if t, err := parseDueDate(raw); err == nil {
			to = &t
		}
	}
	if from != nil || to != nil {
		criterias = append(criterias, taskDomain.DueDateRangeCriteria{Start: from, End: to})
	}

	criteria := sharedDomain.And(criterias...)

	// --- Sort ---
	sortParam := sharedQuery.Sort{Field: "created_at", Desc: true}
	if sortField := c.Query("sort_field"); sortField != "" {
		sortParam.Field = sortField
		sortParam.Desc = c.Query("sort_desc") == "true"
	}

	// --- Paginación ---
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	pagination := sharedQuery.OffsetPagination{Limit: limit, Offset: offset}

	tasks, err := h.service.ListTasks(c.Request.Context(), criteria, pagination, sortParam)
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, tasks)
}

// ---------------- Vistas derivadas ----------------

// Calendar endpoint GET /tasks/calendar?year=&month=
// Sin parámetros devuelve el mes en curso.
func (h *TaskHandler) Calendar(c *gin.Context) {
	now := time.Now().UTC()

	year := now.Year()
	if raw := c.Query("year"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			utils.SendBadRequest(c, "invalid year")
			return
		}
		year = v
	}

	month := now.Month()
	if raw := c.Query("month"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 12 {
			utils.SendBadRequest(c, "invalid month, use 1-12")
			return
		}
		month = time.Month(v)
	}

	view, err := h.service.MonthView(c.Request.Context(), year, month)
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, view)
}

// Stats endpoint GET /tasks/stats
func (h *TaskHandler) Stats(c *gin.Context) {
	stats, err := h.service.QuickStats(c.Request.Context())
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, stats)
}

// Facets endpoint GET /tasks/facets
func (h *TaskHandler) Facets(c *gin.Context) {
	facets, err := h.service.Facets(c.Request.Context())
	if err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, facets)
}

// ---------------- Analítica ----------------

// parseAnalyticsWindow lee start/end de la query; por defecto, los últimos 30 días.
func parseAnalyticsWindow(c *gin.Context) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)

	if raw := c.Query("start"); raw != "" {
		t, err := parseDueDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := parseDueDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}
	return start, end, nil
}

// DailyTrend endpoint GET /tasks/analytics/trend
func (h *TaskHandler) DailyTrend(c *gin.Context) {
	start, end, err := parseAnalyticsWindow(c)
	if err != nil {
		utils.SendBadRequest(c, "invalid start/end, use YYYY-MM-DD or RFC3339")
		return
	}

	trend, err := h.service.DailyTrend(c.Request.Context(), start, end)
	if err != nil {
		if errors.Is(err, application.ErrAnalyticsDisabled) {
			utils.SendError(c, http.StatusNotImplemented, err.Error())
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, trend)
}

// AverageCompletionTime endpoint GET /tasks/analytics/completion-time
func (h *TaskHandler) AverageCompletionTime(c *gin.Context) {
	start, end, err := parseAnalyticsWindow(c)
	if err != nil {
		utils.SendBadRequest(c, "invalid start/end, use YYYY-MM-DD or RFC3339")
		return
	}

	avg, err := h.service.AverageCompletionTime(c.Request.Context(), start, end)
	if err != nil {
		if errors.Is(err, application.ErrAnalyticsDisabled) {
			utils.SendError(c, http.StatusNotImplemented, err.Error())
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, gin.H{"averageCompletionSeconds": avg.Seconds()})
}
