package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"service-automation/internal/common/database"
	"service-automation/internal/common/errors"
	"service-automation/internal/models"
)

// PostgresApplications reads the intake service's applications table and
// writes back automation results.
type PostgresApplications struct {
	db *sql.DB
}

func NewPostgresApplications(client *database.PostgresClient) *PostgresApplications {
	return &PostgresApplications{db: client.DB}
}

const selectApplication = `
	SELECT id, submission_id, service_type, plan, status,
	       uploaded_documents, generated_drafts, package_path, details, updated_at
	FROM applications
	WHERE submission_id = $1 OR CAST(id AS TEXT) = $1
	LIMIT 1`

func (r *PostgresApplications) Load(ctx context.Context, ref string) (*models.Application, error) {
	var (
		app          models.Application
		submissionID sql.NullString
		plan         sql.NullString
		packagePath  sql.NullString
		details      []byte
	)
	err := r.db.QueryRowContext(ctx, selectApplication, ref).Scan(
		&app.ID,
		&submissionID,
		&app.ServiceType,
		&plan,
		&app.Status,
		&app.UploadedDocuments,
		&app.GeneratedDrafts,
		&packagePath,
		&details,
		&app.UpdatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStorageError("load application", err)
	}

	app.SubmissionID = submissionID.String
	app.Plan = models.Plan(plan.String)
	if packagePath.Valid {
		p := packagePath.String
		app.PackagePath = &p
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &app.Details); err != nil {
			return nil, errors.NewStorageError("decode application details", err)
		}
	}
	return &app, nil
}

const updateApplication = `
	UPDATE applications
	SET status = $1, generated_drafts = $2, package_path = $3, updated_at = $4
	WHERE submission_id = $5 OR CAST(id AS TEXT) = $5`

func (r *PostgresApplications) Save(ctx context.Context, app *models.Application) error {
	res, err := r.db.ExecContext(ctx, updateApplication,
		app.Status,
		app.GeneratedDrafts,
		app.PackagePath,
		app.UpdatedAt,
		app.Ref(),
	)
	if err != nil {
		return errors.NewStorageError("save application", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewNotFoundError("application", app.Ref())
	}
	return nil
}
