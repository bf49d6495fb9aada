package domain

import (
	"reflect"

	sharedEvents "github.com/mroldan/taskdeck/internal/shared/domain/events"
)

const (
	CategoryCreated = "category.created"
	CategoryUpdated = "category.updated"
	CategoryRenamed = "category.renamed"
	CategoryDeleted = "category.deleted"
)

const CategoryTopic = "category"

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		CategoryCreated: {
			Type:  reflect.TypeOf(Category{}),
			Topic: CategoryTopic,
		},
		CategoryUpdated: {
			Type:  reflect.TypeOf(Category{}),
			Topic: CategoryTopic,
		},
		CategoryRenamed: {
			Type:  reflect.TypeOf(sharedEvents.CategoryRenamed{}),
			Topic: CategoryTopic,
		},
		CategoryDeleted: {
			Type:  reflect.TypeOf(Category{}),
			Topic: CategoryTopic,
		},
	}
}
