package events

import (
	"time"

	"github.com/google/uuid"
)

type TaskCreated struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Priority string    `json:"priority"`
	DueDate  time.Time `json:"dueDate"`
}

type TaskUpdated struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Priority string    `json:"priority"`
	Status   string    `json:"status"`
	DueDate  time.Time `json:"dueDate"`
}
