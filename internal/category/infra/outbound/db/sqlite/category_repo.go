package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"

	"github.com/mroldan/taskdeck/internal/category/domain"
	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
)

type CategoryRepoSQLite struct {
	db *sql.DB
}

func NewCategoryRepoSQLite(db *sql.DB) *CategoryRepoSQLite {
	return &CategoryRepoSQLite{db: db}
}

// Verificación estática de la interfaz.
var _ domain.CategoryRepository = (*CategoryRepoSQLite)(nil)

// ------------------ Helper DRY para insertar en outbox ------------------

func insertOutboxTx(ctx context.Context, tx *sql.Tx, evt sharedDomain.OutboxEvent) error {
	payloadBytes, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox (id,aggregate_type,aggregate_id,event_type,payload,created_at,processed)
		 VALUES (?,?,?,?,?,?,0)`,
		evt.ID.String(), evt.AggregateType, evt.AggregateID, evt.EventType, string(payloadBytes), evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	return nil
}

// ------------------ Métodos ------------------

// Create inserta categoría y evento en transacción
func (r *CategoryRepoSQLite) Create(ctx context.Context, c *domain.Category, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO categories (id,name,color) VALUES (?,?,?)`,
		c.ID.String(), c.Name, c.Color,
	); err != nil {
		return err
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

// Update actualiza categoría y crea evento Outbox en transacción
func (r *CategoryRepoSQLite) Update(ctx context.Context, c *domain.Category, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE categories SET name=?, color=? WHERE id=?`,
		c.Name, c.Color, c.ID.String(),
	)
	if err != nil {
		return err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		err = domain.ErrCategoryNotFound
		return err
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteByID elimina categoría y crea evento Outbox en transacción
func (r *CategoryRepoSQLite) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id=?`, id.String())
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		err = domain.ErrCategoryNotFound
		return err
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID con manejo de errores en uuid.Parse
func (r *CategoryRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, color FROM categories WHERE id = ?`, id.String(),
	)
	return scanCategory(row.Scan)
}

// GetByName busca por nombre exacto; alimenta la comprobación de unicidad.
func (r *CategoryRepoSQLite) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, color FROM categories WHERE name = ?`, name,
	)
	return scanCategory(row.Scan)
}

// List devuelve todas las categorías ordenadas por nombre.
func (r *CategoryRepoSQLite) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows.Scan)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func scanCategory(scan func(dest ...interface{}) error) (*domain.Category, error) {
	var c domain.Category
	var idStr string

	if err := scan(&idStr, &c.Name, &c.Color); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}

	parsedID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in DB: %w", err)
	}
	c.ID = parsedID

	return &c, nil
}

// ---------------- Patrón Outbox en Eventos-----------------

// SaveOutboxEvent guarda un evento suelto fuera de una operación CRUD.
func (r *CategoryRepoSQLite) SaveOutboxEvent(ctx context.Context, evt sharedDomain.OutboxEvent) error {
	payloadBytes, _ := json.Marshal(evt.Payload)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at, processed)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		evt.ID.String(), evt.AggregateType, evt.AggregateID, evt.EventType, string(payloadBytes), evt.CreatedAt,
	)
	return err
}

// ------------------ Inicialización de DB ------------------

// InitSQLite crea la tabla categories si no existe
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS categories (
            id TEXT PRIMARY KEY,
            name TEXT UNIQUE NOT NULL,
            color TEXT NOT NULL
        )
    `)
	return err
}
