package domain

import "time"

// JobStatus representa los estados posibles de un trabajo
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job es la conversión de un archivo encolada en el daemon
type Job struct {
	ID           int64
	BatchID      string
	InputPath    string
	OutputPath   string
	Category     Category
	Source       Format
	Target       Format
	TargetSizeKB int
	Status       JobStatus
	ErrorKind    ErrorKind
	ErrorMessage string
	Quality      int
	OutputBytes  int64
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// Request construye la petición para el motor
func (j *Job) Request() ConversionRequest {
	return ConversionRequest{
		InputPath:    j.InputPath,
		OutputPath:   j.OutputPath,
		Category:     j.Category,
		Source:       j.Source,
		Target:       j.Target,
		TargetSizeKB: j.TargetSizeKB,
	}
}

// IsFinished retorna true si el trabajo terminó (bien o mal)
func (j *Job) IsFinished() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}
