package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	_ "modernc.org/sqlite"

	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
	sharedQuery "github.com/mroldan/taskdeck/internal/shared/infra/platform/query"
	"github.com/mroldan/taskdeck/internal/task/domain"
)

type TaskRepoSQLite struct {
	db *sql.DB
}

func NewTaskRepoSQLite(db *sql.DB) *TaskRepoSQLite {
	return &TaskRepoSQLite{db: db}
}

// Verificación estática de la interfaz.
var _ domain.TaskRepository = (*TaskRepoSQLite)(nil)

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

// Create inserta tarea y evento en transacción
func (r *TaskRepoSQLite) Create(ctx context.Context, t *domain.Task, evt sharedDomain.OutboxEvent) error {
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
		`INSERT INTO tasks (id,title,description,due_date,category,priority,status,created_at,completed_at)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		t.ID.String(), t.Title, t.Description, t.DueDate, t.Category, t.Priority, t.Status, t.CreatedAt, nullableTime(t.CompletedAt),
	); err != nil {
		return err
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

// Update actualiza tarea y crea evento Outbox en transacción
func (r *TaskRepoSQLite) Update(ctx context.Context, t *domain.Task, evt sharedDomain.OutboxEvent) error {
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
		`UPDATE tasks SET title=?, description=?, due_date=?, category=?, priority=?, status=?, completed_at=? WHERE id=?`,
		t.Title, t.Description, t.DueDate, t.Category, t.Priority, t.Status, nullableTime(t.CompletedAt), t.ID.String(),
	)
	if err != nil {
		return err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		err = domain.ErrTaskNotFound
		return err
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteByID elimina tarea y crea evento Outbox en transacción
func (r *TaskRepoSQLite) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id.String())
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		err = domain.ErrTaskNotFound
		return err
	}

	if err = insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID con manejo de errores en uuid.Parse
func (r *TaskRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `SELECT id, title, description, due_date, category, priority, status, created_at, completed_at
	          FROM tasks WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id.String())

	task, err := scanTask(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListByCriteria traduce los Criterion neutrales a SQL.
func (r *TaskRepoSQLite) ListByCriteria(
	ctx context.Context,
	criteria sharedDomain.Criteria,
	pagination sharedQuery.Pagination,
	sorts sharedQuery.Sort,
) ([]*domain.Task, error) {
	var args []interface{}
	var conditions []string

	if criteria != nil {
		for _, cond := range criteria.ToConditions() {
			switch cond.Op {
			case sharedDomain.OpILike, sharedDomain.OpLike:
				// El LIKE de SQLite ya es case-insensitive para ASCII.
				conditions = append(conditions, fmt.Sprintf("%s LIKE ?", cond.Field))
			default:
				conditions = append(conditions, fmt.Sprintf("%s %s ?", cond.Field, cond.Op))
			}
			args = append(args, normalizeArg(cond.Value))
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := "created_at DESC"
	if sorts.Field != "" {
		dir := "ASC"
		if sorts.Desc {
			dir = "DESC"
		}
		orderBy = fmt.Sprintf("%s %s", sorts.Field, dir)
	}

	query := fmt.Sprintf(`SELECT id, title, description, due_date, category, priority, status, created_at, completed_at
		FROM tasks %s ORDER BY %s`, where, orderBy)

	// Paginación opcional: sin OffsetPagination se devuelve el snapshot completo.
	if p, ok := pagination.(sharedQuery.OffsetPagination); ok && p.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, p.Limit, p.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// CountByCategory cuenta las tareas que referencian una categoría.
func (r *TaskRepoSQLite) CountByCategory(ctx context.Context, category string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE category = ?`, category,
	).Scan(&count)
	return count, err
}

// ReassignCategory mueve todas las tareas de una categoría a otra en una sola
// sentencia y devuelve cuántas filas cambió.
func (r *TaskRepoSQLite) ReassignCategory(ctx context.Context, oldName, newName string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET category = ? WHERE category = ?`, newName, oldName,
	)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	return int(rows), err
}

// ------------------ Helpers de scan ------------------

func scanTask(scan func(dest ...interface{}) error) (*domain.Task, error) {
	var t domain.Task
	var idStr string
	var completedAt sql.NullTime

	if err := scan(&idStr, &t.Title, &t.Description, &t.DueDate, &t.Category, &t.Priority, &t.Status, &t.CreatedAt, &completedAt); err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in DB: %w", err)
	}
	t.ID = parsedID

	if completedAt.Valid {
		ts := completedAt.Time
		t.CompletedAt = &ts
	}

	return &t, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func normalizeArg(v interface{}) interface{} {
	// Los tipos string del dominio (TaskStatus, TaskPriority) se pasan como string plano.
	switch val := v.(type) {
	case domain.TaskStatus:
		return string(val)
	case domain.TaskPriority:
		return string(val)
	default:
		return v
	}
}

// ------------------ Inicialización de DB ------------------

// InitSQLite crea las tablas tasks y outbox si no existen
func InitSQLite(db *sql.DB) error {
	// Tabla de tareas
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            due_date DATETIME NOT NULL,
            category TEXT NOT NULL DEFAULT '',
            priority TEXT NOT NULL,
            status TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            completed_at DATETIME
        )
    `)
	if err != nil {
		return err
	}

	// Tabla de Outbox
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS outbox (
            id TEXT PRIMARY KEY,
            aggregate_type TEXT NOT NULL,
            aggregate_id TEXT NOT NULL,
            event_type TEXT NOT NULL,
            payload TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            processed BOOLEAN NOT NULL DEFAULT 0
        )
    `)
	return err
}
