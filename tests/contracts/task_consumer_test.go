package contracts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mroldan/taskdeck/internal/shared/domain/events"
	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"
	taskConsumer "github.com/mroldan/taskdeck/internal/task/infra/inbound/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// --- FakeTaskService para pruebas ---
type FakeTaskService struct {
	Created []*taskDomain.Task
	Updated []*taskDomain.Task
	Tasks   map[uuid.UUID]*taskDomain.Task
}

func NewFakeTaskService() *FakeTaskService {
	return &FakeTaskService{
		Created: []*taskDomain.Task{},
		Updated: []*taskDomain.Task{},
		Tasks:   make(map[uuid.UUID]*taskDomain.Task),
	}
}

func (f *FakeTaskService) CreateTask(ctx context.Context, title, description, category string, priority taskDomain.TaskPriority, dueDate time.Time) (*taskDomain.Task, error) {
	task := &taskDomain.Task{
		ID:       uuid.New(),
		Title:    title,
		Category: category,
		Priority: priority,
		DueDate:  dueDate,
		Status:   taskDomain.TaskPending,
	}
	f.Created = append(f.Created, task)
	f.Tasks[task.ID] = task
	return task, nil
}

func (f *FakeTaskService) GetTaskByID(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	task, ok := f.Tasks[id]
	if !ok {
		return nil, taskDomain.ErrTaskNotFound
	}
	return task, nil
}

func (f *FakeTaskService) UpdateTask(ctx context.Context, task *taskDomain.Task) error {
	f.Updated = append(f.Updated, task)
	f.Tasks[task.ID] = task
	return nil
}

// --- Test del TaskConsumer ---
func TestTaskConsumer_HandleMessage(t *testing.T) {
	ctx := context.Background()
	fakeService := NewFakeTaskService()
	consumer := taskConsumer.NewTaskConsumer(fakeService, zap.NewNop())

	// Helper para crear IntegrationEvent con Data
	buildEvent := func(eventType string, data interface{}) []byte {
		raw, _ := json.Marshal(data)
		integration := events.IntegrationEvent{
			Type:      eventType,
			Timestamp: time.Now(),
			Data:      raw,
		}
		payload, _ := json.Marshal(integration)
		return payload
	}

	due := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

	// --- 1. Evento TaskCreated válido ---
	createdEvent := events.TaskCreated{
		ID:       uuid.New(),
		Title:    "Comprar pan",
		Category: "Personal",
		Priority: "high",
		DueDate:  due,
	}
	payload := buildEvent("task.created", createdEvent)
	consumer.HandleMessage(ctx, "task.created", payload)

	assert.Len(t, fakeService.Created, 1)
	assert.Equal(t, "Comprar pan", fakeService.Created[0].Title)
	assert.Equal(t, taskDomain.PriorityHigh, fakeService.Created[0].Priority)

	// --- 2. Evento TaskUpdated que completa la tarea ---
	taskID := fakeService.Created[0].ID
	updatedEvent := events.TaskUpdated{
		ID:       taskID,
		Title:    "Comprar pan integral",
		Category: "Personal",
		Priority: "high",
		Status:   "completed",
		DueDate:  due,
	}
	payload = buildEvent("task.updated", updatedEvent)
	consumer.HandleMessage(ctx, "task.updated", payload)

	assert.Len(t, fakeService.Updated, 1)
	assert.Equal(t, "Comprar pan integral", fakeService.Updated[0].Title)
	assert.Equal(t, taskDomain.TaskCompleted, fakeService.Updated[0].Status)
	assert.NotNil(t, fakeService.Updated[0].CompletedAt, "Completar vía evento mantiene el invariante de CompletedAt")

	// --- 3. Evento TaskUpdated que reabre la tarea ---
	updatedEvent.Status = "pending"
	payload = buildEvent("task.updated", updatedEvent)
	consumer.HandleMessage(ctx, "task.updated", payload)

	assert.Len(t, fakeService.Updated, 2)
	assert.Equal(t, taskDomain.TaskPending, fakeService.Updated[1].Status)
	assert.Nil(t, fakeService.Updated[1].CompletedAt)

	// --- 4. Evento con payload malformado ---
	badPayload := []byte(`{"type": "task.created", "data": "bad json"`)
	consumer.HandleMessage(ctx, "task.created", badPayload)

	// Nada nuevo debe haberse creado
	assert.Len(t, fakeService.Created, 1)

	// --- 5. Evento con tipo desconocido ---
	unknownEvent := struct {
		Type string `json:"type"`
	}{Type: "UnknownType"}
	payload, _ = json.Marshal(unknownEvent)
	consumer.HandleMessage(ctx, "unknown.event", payload)

	assert.Len(t, fakeService.Created, 1)
	assert.Len(t, fakeService.Updated, 2)
}

// --- Test de idempotencia: un TaskCreated duplicado se ignora ---
func TestTaskConsumer_DuplicateCreatedIsIgnored(t *testing.T) {
	ctx := context.Background()
	fakeService := NewFakeTaskService()
	consumer := taskConsumer.NewTaskConsumer(fakeService, zap.NewNop())

	existing, err := fakeService.CreateTask(ctx, "Ya existe", "", "Work", taskDomain.PriorityLow, time.Now())
	assert.NoError(t, err)

	createdEvent := events.TaskCreated{
		ID:       existing.ID,
		Title:    "Ya existe",
		Category: "Work",
		Priority: "low",
		DueDate:  existing.DueDate,
	}
	raw, _ := json.Marshal(createdEvent)
	payload, _ := json.Marshal(events.IntegrationEvent{Type: "task.created", Timestamp: time.Now(), Data: raw})

	consumer.HandleMessage(ctx, "task.created", payload)

	// La búsqueda previa detecta el duplicado y no crea nada nuevo.
	assert.Len(t, fakeService.Created, 1)
}
