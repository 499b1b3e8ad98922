package store

import (
	"context"
	"database/sql"
	stderrors "errors"

	"service-automation/internal/common/database"
	"service-automation/internal/common/errors"
	"service-automation/internal/models"
)

// PostgresJobs stores jobs in automation_jobs and their trail in
// automation_job_logs.
type PostgresJobs struct {
	db *sql.DB
}

func NewPostgresJobs(client *database.PostgresClient) *PostgresJobs {
	return &PostgresJobs{db: client.DB}
}

const jobColumns = `id, order_id, type, current_stage, status, attempts, last_error, created_at, updated_at`

func (r *PostgresJobs) Create(ctx context.Context, job *models.Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO automation_jobs (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		job.ID,
		job.OrderID,
		job.Type,
		string(job.CurrentStage),
		string(job.Status),
		job.Attempts,
		job.LastError,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return errors.NewStorageError("create job", err)
	}
	return nil
}

func (r *PostgresJobs) Get(ctx context.Context, id string) (*models.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM automation_jobs WHERE id = $1`, id)
	return r.scanWithLogs(ctx, row)
}

// LatestForOrder breaks created_at ties by insertion order.
func (r *PostgresJobs) LatestForOrder(ctx context.Context, orderID string) (*models.Job, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+jobColumns+` FROM automation_jobs
		WHERE order_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT 1`, orderID)
	return r.scanWithLogs(ctx, row)
}

func (r *PostgresJobs) CountForOrder(ctx context.Context, orderID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM automation_jobs WHERE order_id = $1`, orderID).Scan(&n); err != nil {
		return 0, errors.NewStorageError("count jobs", err)
	}
	return n, nil
}

func (r *PostgresJobs) Update(ctx context.Context, job *models.Job) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE automation_jobs
		SET current_stage = $2, status = $3, last_error = $4, updated_at = $5
		WHERE id = $1 AND status NOT IN ('COMPLETED', 'FAILED')`,
		job.ID,
		string(job.CurrentStage),
		string(job.Status),
		job.LastError,
		job.UpdatedAt,
	)
	if err != nil {
		return errors.NewStorageError("update job", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewStorageError("update job", err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM automation_jobs WHERE id = $1)`, job.ID).Scan(&exists); err != nil {
		return errors.NewStorageError("update job", err)
	}
	if !exists {
		return errors.NewNotFoundError("job", job.ID)
	}
	return errors.NewJobTerminalError(job.ID)
}

func (r *PostgresJobs) AppendLog(ctx context.Context, entry models.JobLogEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO automation_job_logs (job_id, level, message, created_at)
		VALUES ($1, $2, $3, $4)`,
		entry.JobID,
		string(entry.Level),
		entry.Message,
		entry.Timestamp,
	)
	if err != nil {
		return errors.NewStorageError("append job log", err)
	}
	return nil
}

func (r *PostgresJobs) scanWithLogs(ctx context.Context, row *sql.Row) (*models.Job, error) {
	var (
		job       models.Job
		stage     string
		status    string
		lastError sql.NullString
	)
	err := row.Scan(
		&job.ID,
		&job.OrderID,
		&job.Type,
		&stage,
		&status,
		&job.Attempts,
		&lastError,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStorageError("load job", err)
	}
	job.CurrentStage = models.Stage(stage)
	job.Status = models.JobStatus(status)
	if lastError.Valid {
		msg := lastError.String
		job.LastError = &msg
	}

	logs, err := r.logs(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	job.Logs = logs
	return &job, nil
}

func (r *PostgresJobs) logs(ctx context.Context, jobID string) ([]models.JobLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT job_id, level, message, created_at
		FROM automation_job_logs
		WHERE job_id = $1
		ORDER BY id`, jobID)
	if err != nil {
		return nil, errors.NewStorageError("load job logs", err)
	}
	defer rows.Close()

	var out []models.JobLogEntry
	for rows.Next() {
		var (
			e     models.JobLogEntry
			level string
		)
		if err := rows.Scan(&e.JobID, &level, &e.Message, &e.Timestamp); err != nil {
			return nil, errors.NewStorageError("scan job log", err)
		}
		e.Level = models.LogLevel(level)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("load job logs", err)
	}
	return out, nil
}
