// en internal/category/infra/outbound/db/mongodb/category_repo.go
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	// --- Importaciones del dominio y compartidas ---
	categoryDomain "github.com/mroldan/taskdeck/internal/category/domain"
	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CategoryRepoMongoDB implementa la interfaz CategoryRepository para MongoDB.
type CategoryRepoMongoDB struct {
	client         *mongo.Client
	dbName         string
	categoriesColl *mongo.Collection
	outboxColl     *mongo.Collection
}

// NewCategoryRepoMongoDB es el constructor del repositorio.
func NewCategoryRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*CategoryRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	db := client.Database(dbName)
	return &CategoryRepoMongoDB{
		client:         client,
		dbName:         dbName,
		categoriesColl: db.Collection("categories"),
		outboxColl:     db.Collection("outbox"),
	}, nil
}

var _ categoryDomain.CategoryRepository = (*CategoryRepoMongoDB)(nil)

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoCategory struct {
	ID    uuid.UUID `bson:"_id"`
	Name  string    `bson:"name"`
	Color string    `bson:"color"`
}

type mongoOutboxEvent struct {
	ID            uuid.UUID   `bson:"_id"`
	AggregateType string      `bson:"aggregateType"`
	AggregateID   string      `bson:"aggregateId"`
	EventType     string      `bson:"eventType"`
	Payload       interface{} `bson:"payload"`
	CreatedAt     time.Time   `bson:"createdAt"`
	Processed     bool        `bson:"processed"`
}

// --- CRUD Transaccional ---

func (r *CategoryRepoMongoDB) Create(ctx context.Context, c *categoryDomain.Category, evt sharedDomain.OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	// La transacción asegura que ambas inserciones (categoría y evento) sean atómicas.
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		mc := toMongoCategory(c)
		if _, err := r.categoriesColl.InsertOne(sessCtx, mc); err != nil {
			return nil, err
		}
		mo := toMongoOutboxEvent(evt)
		if _, err := r.outboxColl.InsertOne(sessCtx, mo); err != nil {
			return nil, err
		}
		return nil, nil
	})

	return err
}

func (r *CategoryRepoMongoDB) Update(ctx context.Context, c *categoryDomain.Category, evt sharedDomain.OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		mc := toMongoCategory(c)
		filter := bson.M{"_id": mc.ID}
		update := bson.M{"$set": mc}

		res, err := r.categoriesColl.UpdateOne(sessCtx, filter, update)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, categoryDomain.ErrCategoryNotFound
		}

		mo := toMongoOutboxEvent(evt)
		if _, err := r.outboxColl.InsertOne(sessCtx, mo); err != nil {
			return nil, err
		}

		return nil, nil
	})

	return err
}

func (r *CategoryRepoMongoDB) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	session, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		res, err := r.categoriesColl.DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, categoryDomain.ErrCategoryNotFound
		}

		mo := toMongoOutboxEvent(evt)
		if _, err := r.outboxColl.InsertOne(sessCtx, mo); err != nil {
			return nil, err
		}

		return nil, nil
	})

	return err
}

// --- Lectura ---

func (r *CategoryRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*categoryDomain.Category, error) {
	var mc mongoCategory
	err := r.categoriesColl.FindOne(ctx, bson.M{"_id": id}).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, categoryDomain.ErrCategoryNotFound
		}
		return nil, err
	}
	return fromMongoCategory(&mc), nil
}

func (r *CategoryRepoMongoDB) GetByName(ctx context.Context, name string) (*categoryDomain.Category, error) {
	var mc mongoCategory
	err := r.categoriesColl.FindOne(ctx, bson.M{"name": name}).Decode(&mc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, categoryDomain.ErrCategoryNotFound
		}
		return nil, err
	}
	return fromMongoCategory(&mc), nil
}

func (r *CategoryRepoMongoDB) List(ctx context.Context) ([]*categoryDomain.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.categoriesColl.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []*categoryDomain.Category
	for cursor.Next(ctx) {
		var mc mongoCategory
		if err := cursor.Decode(&mc); err != nil {
			return nil, err
		}
		categories = append(categories, fromMongoCategory(&mc))
	}

	return categories, cursor.Err()
}

// SaveOutboxEvent guarda un evento suelto fuera de una operación CRUD.
func (r *CategoryRepoMongoDB) SaveOutboxEvent(ctx context.Context, evt sharedDomain.OutboxEvent) error {
	_, err := r.outboxColl.InsertOne(ctx, toMongoOutboxEvent(evt))
	return err
}

// --- Helpers de Mapeo y Conversión ---

func toMongoCategory(c *categoryDomain.Category) *mongoCategory {
	return &mongoCategory{ID: c.ID, Name: c.Name, Color: c.Color}
}

func fromMongoCategory(mc *mongoCategory) *categoryDomain.Category {
	return &categoryDomain.Category{ID: mc.ID, Name: mc.Name, Color: mc.Color}
}

func toMongoOutboxEvent(evt sharedDomain.OutboxEvent) *mongoOutboxEvent {
	return &mongoOutboxEvent{
		ID: evt.ID, AggregateType: evt.AggregateType, AggregateID: evt.AggregateID,
		EventType: evt.EventType, Payload: evt.Payload, CreatedAt: evt.CreatedAt, Processed: false,
	}
}
