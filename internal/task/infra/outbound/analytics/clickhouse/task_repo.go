package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	taskDomain "github.com/mroldan/taskdeck/internal/task/domain"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// TaskAnalyticsRepo implementa la interfaz TaskAnalyticsRepository para ClickHouse.
// Cada fila de completions_log es una tarea completada; las consultas de
// tendencia y de tiempo medio se derivan de created_at/completed_at.
type TaskAnalyticsRepo struct {
	db *sql.DB
}

// NewTaskAnalyticsRepo es el constructor.
func NewTaskAnalyticsRepo(addr string, dbName string) (*TaskAnalyticsRepo, error) {
	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: dbName,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	})

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("could not ping clickhouse: %w", err)
	}

	return &TaskAnalyticsRepo{db: conn}, nil
}

// LogBatch inserta un lote de tareas completadas en ClickHouse.
func (r *TaskAnalyticsRepo) LogBatch(ctx context.Context, tasks []*taskDomain.Task) error {
	// ClickHouse funciona mejor con inserciones en lotes.
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO completions_log (id, title, category, priority, due_date, created_at, completed_at, event_time)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	eventTime := time.Now()
	for _, task := range tasks {
		completedAt := eventTime
		if task.CompletedAt != nil {
			completedAt = *task.CompletedAt
		}
		if _, err := stmt.ExecContext(
			ctx,
			task.ID,
			task.Title,
			task.Category,
			string(task.Priority),
			task.DueDate,
			task.CreatedAt,
			completedAt,
			eventTime,
		); err != nil {
			// Si un registro falla, hacemos rollback de todo el lote.
			tx.Rollback()
			return fmt.Errorf("failed to exec statement for task %s: %w", task.ID, err)
		}
	}

	return tx.Commit()
}

// GetDailyTrend agrupa por día cuántas tareas se crearon y se completaron.
func (r *TaskAnalyticsRepo) GetDailyTrend(ctx context.Context, start, end time.Time) ([]taskDomain.DailyTaskTrend, error) {
	query := `
		SELECT
			day,
			countIf(kind = 'created') AS created,
			countIf(kind = 'completed') AS completed
		FROM (
			SELECT toStartOfDay(created_at) AS day, 'created' AS kind FROM completions_log
			UNION ALL
			SELECT toStartOfDay(completed_at) AS day, 'completed' AS kind FROM completions_log
		)
		WHERE day BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []taskDomain.DailyTaskTrend
	for rows.Next() {
		var trend taskDomain.DailyTaskTrend
		if err := rows.Scan(&trend.Day, &trend.CreatedCount, &trend.CompletedCount); err != nil {
			return nil, err
		}
		trends = append(trends, trend)
	}
	return trends, rows.Err()
}

// GetAverageCompletionTime calcula el tiempo medio entre creación y completado
// de las tareas completadas dentro de la ventana.
func (r *TaskAnalyticsRepo) GetAverageCompletionTime(ctx context.Context, start, end time.Time) (time.Duration, error) {
	query := `
		SELECT avg(dateDiff('second', created_at, completed_at)) AS avg_completion_seconds
		FROM completions_log
		WHERE completed_at BETWEEN ? AND ?
	`
	var avgSeconds sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, start, end).Scan(&avgSeconds)
	if err != nil {
		return 0, err
	}
	if !avgSeconds.Valid {
		return 0, nil // No hay datos para calcular
	}

	return time.Duration(avgSeconds.Float64) * time.Second, nil
}

// InitSchema crea la tabla en ClickHouse si no existe.
func (r *TaskAnalyticsRepo) InitSchema() error {
	// Tabla optimizada para analítica: particionada por mes del evento y
	// ordenada por los campos habituales de consulta.
	query := `
		CREATE TABLE IF NOT EXISTS completions_log (
			id           UUID,
			title        String,
			category     String,
			priority     String,
			due_date     DateTime64(3),
			created_at   DateTime64(3),
			completed_at DateTime64(3),
			event_time   DateTime64(3)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(event_time)
		ORDER BY (category, priority, event_time);
	`
	_, err := r.db.Exec(query)
	return err
}

// Verificación estática de la interfaz.
var _ taskDomain.TaskAnalyticsRepository = (*TaskAnalyticsRepo)(nil)
