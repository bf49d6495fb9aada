package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	// --- Importaciones del dominio y compartidas ---
	sharedDomain "github.com/mroldan/taskdeck/internal/shared/domain"
	sharedQuery "github.com/mroldan/taskdeck/internal/shared/infra/platform/query"
	sharedUtils "github.com/mroldan/taskdeck/internal/shared/infra/utils"
	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL
)

// TaskRepoPostgres implementa la interfaz TaskRepository para PostgreSQL.
type TaskRepoPostgres struct {
	db *sql.DB
}

// NewTaskRepoPostgres es el constructor del repositorio.
func NewTaskRepoPostgres(db *sql.DB) *TaskRepoPostgres {
	return &TaskRepoPostgres{db: db}
}

var _ taskDomain.TaskRepository = (*TaskRepoPostgres)(nil)

// ------------------ CRUD + Outbox ------------------

// Create inserta una tarea y un evento en una transacción.
func (r *TaskRepoPostgres) Create(ctx context.Context, t *taskDomain.Task, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // Se ignora si el Commit() es exitoso

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, due_date, category, priority, status, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ID, t.Title, t.Description, t.DueDate, t.Category, t.Priority, t.Status, t.CreatedAt, t.CompletedAt,
	)
	if err != nil {
		return err
	}

	if err := insertOutboxTx(ctx, tx, evt); err != nil {
		return err
	}

	return tx.Commit()
}

// Update actualiza una tarea y crea un evento en una transacción.
func (r *TaskRepoPostgres) Update(ctx context.Context, t *taskDomain.Task, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE tasks SET title=$1, description=$2, due_date=$3, category=$4, priority=$5, status=$6, completed_at=$7 WHERE id=$8`,
		t.Title, t.Description, t.DueDate, t.Category, t.Priority, t.Status, t.CompletedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return taskDomain.ErrTaskNotFound
	}

	if err := insertOutboxTx(ctx, tx, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

// DeleteByID elimina una tarea y crea un evento en una transacción.
func (r *TaskRepoPostgres) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return taskDomain.ErrTaskNotFound
	}

	if err := insertOutboxTx(ctx, tx, evt); err != nil {
		return fmt.Errorf("failed to insert outbox: %w", err)
	}

	return tx.Commit()
}

// ------------------ Lectura ------------------

// GetByID recupera una tarea de la base de datos por su ID.
func (r *TaskRepoPostgres) GetByID(ctx context.Context, id uuid.UUID) (*taskDomain.Task, error) {
	query := `SELECT id, title, description, due_date, category, priority, status, created_at, completed_at FROM tasks WHERE id=$1`
	row := r.db.QueryRowContext(ctx, query, id)

	var t taskDomain.Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Category, &t.Priority, &t.Status, &t.CreatedAt, &t.CompletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, taskDomain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("db scan error: %w", err)
	}

	return &t, nil
}

// applyCriteria traduce criterios a SQL para Postgres ($1, $2...).
func (r *TaskRepoPostgres) applyCriteria(criteria sharedDomain.Criteria) (string, []interface{}) {
	if criteria == nil {
		return "", nil
	}
	conds := criteria.ToConditions()
	if len(conds) == 0 {
		return "", nil
	}
	var clauses []string
	var args []interface{}
	for i, c := range conds {
		clauses = append(clauses, fmt.Sprintf("%s %s $%d", c.Field, c.Op, i+1))
		args = append(args, c.Value)
	}
	return strings.Join(clauses, " AND "), args
}

// ListByCriteria recupera una lista de tareas aplicando filtros, paginación y ordenamiento.
func (r *TaskRepoPostgres) ListByCriteria(ctx context.Context, criteria sharedDomain.Criteria, pagination sharedQuery.Pagination, sort sharedQuery.Sort) ([]*taskDomain.Task, error) {
	whereSQL, args := r.applyCriteria(criteria)

	query := "SELECT id, title, description, due_date, category, priority, status, created_at, completed_at FROM tasks"
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}

	// Añadir ordenamiento y paginación
	sortField := sharedUtils.Ternary(sort.Field != "", sort.Field, "created_at")
	query += fmt.Sprintf(" ORDER BY %s %s", sortField, sharedUtils.Ternary(sort.Desc, "DESC", "ASC"))

	argOffset := len(args)
	if p, ok := pagination.(sharedQuery.OffsetPagination); ok && p.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argOffset+1, argOffset+2)
		args = append(args, p.Limit, p.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*taskDomain.Task
	for rows.Next() {
		var t taskDomain.Task
		err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Category, &t.Priority, &t.Status, &t.CreatedAt, &t.CompletedAt)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}

	return tasks, rows.Err()
}

// CountByCategory cuenta las tareas que referencian una categoría.
func (r *TaskRepoPostgres) CountByCategory(ctx context.Context, category string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE category=$1`, category,
	).Scan(&count)
	return count, err
}

// ReassignCategory mueve todas las tareas de una categoría a otra y devuelve
// cuántas filas cambió.
func (r *TaskRepoPostgres) ReassignCategory(ctx context.Context, oldName, newName string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET category=$1 WHERE category=$2`, newName, oldName,
	)
	if err != nil {
		return 0, err
	}
	rows, err := res.RowsAffected()
	return int(rows), err
}

// ------------------ Inicialización del Esquema ------------------

// InitPostgresTaskSchema crea la tabla 'tasks' y 'outbox' si no existen.
func InitPostgresTaskSchema(db *sql.DB) error {
	_, err := db.Exec(`
    CREATE TABLE IF NOT EXISTS tasks (
        id UUID PRIMARY KEY,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        due_date TIMESTAMP WITH TIME ZONE NOT NULL,
        category TEXT NOT NULL DEFAULT '',
        priority TEXT NOT NULL,
        status TEXT NOT NULL,
        created_at TIMESTAMP WITH TIME ZONE NOT NULL,
        completed_at TIMESTAMP WITH TIME ZONE
    )`)
	if err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}

	// La tabla Outbox es compartida; la definimos aquí por completitud.
	_, err = db.Exec(`
    CREATE TABLE IF NOT EXISTS outbox (
        id UUID PRIMARY KEY,
        aggregate_type TEXT NOT NULL,
        aggregate_id TEXT NOT NULL,
        event_type TEXT NOT NULL,
        payload JSONB NOT NULL,
        created_at TIMESTAMP WITH TIME ZONE NOT NULL,
        processed BOOLEAN NOT NULL DEFAULT FALSE
    )`)
	return err
}

// ------------------ Helper DRY para insertar en outbox ------------------
func insertOutboxTx(ctx context.Context, tx *sql.Tx, evt sharedDomain.OutboxEvent) error {
	payloadBytes, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at, processed)
		 VALUES ($1, $2, $3, $4, $5, $6, false)`,
		evt.ID, evt.AggregateType, evt.AggregateID, evt.EventType, payloadBytes, evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}
