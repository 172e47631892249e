package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rijalprasetyo/converter-file/internal/domain"
	"github.com/rijalprasetyo/converter-file/internal/repository"
)

// ErrJobNotFound se retorna cuando el id no existe
var ErrJobNotFound = errors.New("job not found")

// InterruptedMessage es el mensaje que FailInterrupted deja en cada trabajo
const InterruptedMessage = "interrupted"

// JobRepository implementa repository.JobRepository usando SQLite
type JobRepository struct {
	db *sqlx.DB
}

var _ repository.JobRepository = (*JobRepository)(nil)

// NewJobRepository crea un nuevo repositorio de trabajos
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// jobRow mapea la tabla SQL a struct Go
type jobRow struct {
	ID           int64          `db:"id"`
	BatchID      string         `db:"batch_id"`
	InputPath    string         `db:"input_path"`
	OutputPath   string         `db:"output_path"`
	Category     string         `db:"category"`
	Source       string         `db:"source_format"`
	Target       string         `db:"target_format"`
	TargetSizeKB int            `db:"target_size_kb"`
	Status       string         `db:"status"`
	ErrorKind    sql.NullString `db:"error_kind"`
	ErrorMessage sql.NullString `db:"error_message"`
	Quality      int            `db:"quality"`
	OutputBytes  int64          `db:"output_bytes"`
	CreatedAt    int64          `db:"created_at"`
	CompletedAt  sql.NullInt64  `db:"completed_at"`
}

// Create inserta un nuevo trabajo
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) (int64, error) {
	status := job.Status
	if status == "" {
		status = domain.JobPending
	}

	query := `
		INSERT INTO jobs (batch_id, input_path, output_path, category,
		                  source_format, target_format, target_size_kb, status)
		VALUES (:batch_id, :input_path, :output_path, :category,
		        :source_format, :target_format, :target_size_kb, :status)
	`

	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"batch_id":       job.BatchID,
		"input_path":     job.InputPath,
		"output_path":    job.OutputPath,
		"category":       string(job.Category),
		"source_format":  string(job.Source),
		"target_format":  string(job.Target),
		"target_size_kb": job.TargetSizeKB,
		"status":         string(status),
	})
	if err != nil {
		return 0, fmt.Errorf("insert job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}

	return id, nil
}

// GetByID obtiene un trabajo por ID
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	var row jobRow

	query := `SELECT * FROM jobs WHERE id = ?`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}

	return rowToDomain(&row), nil
}

// GetByBatch obtiene los trabajos de un lote en orden de envío
func (r *JobRepository) GetByBatch(ctx context.Context, batchID string) ([]*domain.Job, error) {
	var rows []jobRow

	query := `SELECT * FROM jobs WHERE batch_id = ? ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &rows, query, batchID); err != nil {
		return nil, fmt.Errorf("get batch jobs: %w", err)
	}

	return rowsToDomain(rows), nil
}

// GetPending obtiene los trabajos pendientes, el más antiguo primero
func (r *JobRepository) GetPending(ctx context.Context) ([]*domain.Job, error) {
	var rows []jobRow

	query := `SELECT * FROM jobs WHERE status = ? ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &rows, query, string(domain.JobPending)); err != nil {
		return nil, fmt.Errorf("get pending jobs: %w", err)
	}

	return rowsToDomain(rows), nil
}

// GetRecent obtiene los trabajos recientes
func (r *JobRepository) GetRecent(ctx context.Context, limit int) ([]*domain.Job, error) {
	var rows []jobRow

	query := `SELECT * FROM jobs ORDER BY id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("get recent jobs: %w", err)
	}

	return rowsToDomain(rows), nil
}

// UpdateStatus actualiza solo el status y mensaje de error
func (r *JobRepository) UpdateStatus(ctx context.Context, id int64, status domain.JobStatus, errMsg string) error {
	var completedAt interface{}
	if status == domain.JobCompleted || status == domain.JobFailed {
		completedAt = time.Now().Unix()
	}

	query := `
		UPDATE jobs
		SET status = ?, error_message = ?, completed_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query, string(status), errMsg, completedAt, id)
	return err
}

// UpdateResult guarda el resultado del motor y cierra el trabajo
func (r *JobRepository) UpdateResult(ctx context.Context, id int64, result domain.ConversionResult) error {
	status := domain.JobCompleted
	if !result.Succeeded {
		status = domain.JobFailed
	}

	var errMsg string
	if result.Err != nil {
		errMsg = result.Err.Error()
	}

	query := `
		UPDATE jobs
		SET status = ?, error_kind = ?, error_message = ?, quality = ?,
		    output_bytes = ?, completed_at = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		string(status), string(result.Kind), errMsg, result.Quality,
		result.OutputBytes, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("update job result: %w", err)
	}
	return nil
}

// CountByStatus cuenta trabajos por status
func (r *JobRepository) CountByStatus(ctx context.Context, status domain.JobStatus) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM jobs WHERE status = ?`
	err := r.db.GetContext(ctx, &count, query, string(status))
	return count, err
}

// CountTotal cuenta todos los trabajos
func (r *JobRepository) CountTotal(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM jobs`
	err := r.db.GetContext(ctx, &count, query)
	return count, err
}

// FailInterrupted cierra los trabajos pending/processing de una ejecución
// anterior. Los lotes no se reanudan.
func (r *JobRepository) FailInterrupted(ctx context.Context) (int64, error) {
	query := `
		UPDATE jobs
		SET status = ?, error_message = ?, completed_at = ?
		WHERE status IN (?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		string(domain.JobFailed), InterruptedMessage, time.Now().Unix(),
		string(domain.JobPending), string(domain.JobProcessing))
	if err != nil {
		return 0, fmt.Errorf("fail interrupted jobs: %w", err)
	}

	return result.RowsAffected()
}

// Helper: conversión row → domain
func rowToDomain(row *jobRow) *domain.Job {
	job := &domain.Job{
		ID:           row.ID,
		BatchID:      row.BatchID,
		InputPath:    row.InputPath,
		OutputPath:   row.OutputPath,
		Category:     domain.Category(row.Category),
		Source:       domain.Format(row.Source),
		Target:       domain.Format(row.Target),
		TargetSizeKB: row.TargetSizeKB,
		Status:       domain.JobStatus(row.Status),
		ErrorKind:    domain.ErrorKind(row.ErrorKind.String),
		ErrorMessage: row.ErrorMessage.String,
		Quality:      row.Quality,
		OutputBytes:  row.OutputBytes,
		CreatedAt:    time.Unix(row.CreatedAt, 0),
	}

	if row.CompletedAt.Valid {
		t := time.Unix(row.CompletedAt.Int64, 0)
		job.CompletedAt = &t
	}

	return job
}

// Helper: conversión múltiples rows → domain
func rowsToDomain(rows []jobRow) []*domain.Job {
	jobs := make([]*domain.Job, 0, len(rows))
	for i := range rows {
		jobs = append(jobs, rowToDomain(&rows[i]))
	}
	return jobs
}
