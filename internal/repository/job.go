package repository

import (
	"context"

	"github.com/rijalprasetyo/converter-file/internal/domain"
)

// JobRepository define las operaciones sobre trabajos de conversión
type JobRepository interface {
	// CRUD básico
	Create(ctx context.Context, job *domain.Job) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Job, error)

	// Queries especializadas
	GetByBatch(ctx context.Context, batchID string) ([]*domain.Job, error)
	GetPending(ctx context.Context) ([]*domain.Job, error)
	GetRecent(ctx context.Context, limit int) ([]*domain.Job, error)

	// Updates parciales
	UpdateStatus(ctx context.Context, id int64, status domain.JobStatus, errMsg string) error
	UpdateResult(ctx context.Context, id int64, result domain.ConversionResult) error

	// Estadísticas
	CountByStatus(ctx context.Context, status domain.JobStatus) (int, error)
	CountTotal(ctx context.Context) (int, error)

	// FailInterrupted marca como fallidos los trabajos que quedaron a medias
	// en una ejecución anterior. Retorna cuántos se marcaron.
	FailInterrupted(ctx context.Context) (int64, error)
}
