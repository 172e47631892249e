package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/rijalprasetyo/converter-file/internal/batch"
	"github.com/rijalprasetyo/converter-file/internal/catalog"
	"github.com/rijalprasetyo/converter-file/internal/domain"
	"github.com/rijalprasetyo/converter-file/internal/repository"
)

const defaultListLimit = 50

// Handlers maneja las peticiones del servidor
type Handlers struct {
	jobRepo repository.JobRepository
	queue   *QueueManager
	logger  hclog.Logger
}

// NewHandlers crea un nuevo conjunto de handlers
func NewHandlers(jobRepo repository.JobRepository, queue *QueueManager, logger hclog.Logger) *Handlers {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Handlers{
		jobRepo: jobRepo,
		queue:   queue,
		logger:  logger.Named("handlers"),
	}
}

// SubmitPayload es el payload para encolar un lote
type SubmitPayload struct {
	Category     string   `json:"category"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	TargetSizeKB int      `json:"target_size_kb,omitempty"`
	Inputs       []string `json:"inputs"`
	OutputDir    string   `json:"output_dir"`
}

// SubmitResult es la respuesta de submit
type SubmitResult struct {
	BatchID string  `json:"batch_id"`
	JobIDs  []int64 `json:"job_ids"`
}

// JobInfo es la vista de un trabajo en las respuestas
type JobInfo struct {
	ID           int64      `json:"id"`
	BatchID      string     `json:"batch_id"`
	InputPath    string     `json:"input_path"`
	OutputPath   string     `json:"output_path"`
	Category     string     `json:"category"`
	From         string     `json:"from"`
	To           string     `json:"to"`
	TargetSizeKB int        `json:"target_size_kb,omitempty"`
	Status       string     `json:"status"`
	ErrorKind    string     `json:"error_kind,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Quality      int        `json:"quality,omitempty"`
	OutputBytes  int64      `json:"output_bytes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func toJobInfo(j *domain.Job) JobInfo {
	return JobInfo{
		ID:           j.ID,
		BatchID:      j.BatchID,
		InputPath:    j.InputPath,
		OutputPath:   j.OutputPath,
		Category:     string(j.Category),
		From:         string(j.Source),
		To:           string(j.Target),
		TargetSizeKB: j.TargetSizeKB,
		Status:       string(j.Status),
		ErrorKind:    string(j.ErrorKind),
		ErrorMessage: j.ErrorMessage,
		Quality:      j.Quality,
		OutputBytes:  j.OutputBytes,
		CreatedAt:    j.CreatedAt,
		CompletedAt:  j.CompletedAt,
	}
}

func toJobInfos(jobs []*domain.Job) []JobInfo {
	items := make([]JobInfo, 0, len(jobs))
	for _, j := range jobs {
		items = append(items, toJobInfo(j))
	}
	return items
}

func errorResponse(format string, args ...interface{}) Response {
	return Response{Success: false, Error: fmt.Sprintf(format, args...)}
}

func dataResponse(v interface{}) Response {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResponse("encode response: %v", err)
	}
	return Response{Success: true, Data: data}
}

// HandleSubmit valida el lote contra el catálogo y crea un trabajo por archivo
func (h *Handlers) HandleSubmit(ctx context.Context, payload json.RawMessage) Response {
	var req SubmitPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return errorResponse("invalid payload: %v", err)
	}

	category, err := domain.ParseCategory(req.Category)
	if err != nil {
		return errorResponse("%v", err)
	}
	source, err := domain.ParseFormat(req.From)
	if err != nil {
		return errorResponse("%v", err)
	}
	target, err := domain.ParseFormat(req.To)
	if err != nil {
		return errorResponse("%v", err)
	}

	spec := batch.Spec{
		Category:     category,
		Source:       source,
		Target:       target,
		TargetSizeKB: req.TargetSizeKB,
		Inputs:       req.Inputs,
		OutputDir:    req.OutputDir,
	}
	if err := spec.Validate(); err != nil {
		return errorResponse("%v", err)
	}

	batchID := uuid.New().String()
	result := SubmitResult{BatchID: batchID}

	for _, r := range spec.Requests() {
		id, err := h.jobRepo.Create(ctx, &domain.Job{
			BatchID:      batchID,
			InputPath:    r.InputPath,
			OutputPath:   r.OutputPath,
			Category:     r.Category,
			Source:       r.Source,
			Target:       r.Target,
			TargetSizeKB: r.TargetSizeKB,
			Status:       domain.JobPending,
		})
		if err != nil {
			return errorResponse("create job: %v", err)
		}
		result.JobIDs = append(result.JobIDs, id)
	}

	h.logger.Info("batch submitted", "batch", batchID, "jobs", len(result.JobIDs),
		"category", category, "from", source, "to", target)

	return dataResponse(result)
}

// StatusPayload es el payload para consultar un trabajo
type StatusPayload struct {
	ID int64 `json:"id"`
}

// HandleStatus retorna un trabajo
func (h *Handlers) HandleStatus(ctx context.Context, payload json.RawMessage) Response {
	var req StatusPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return errorResponse("invalid payload: %v", err)
	}

	if req.ID == 0 {
		return errorResponse("id is required")
	}

	job, err := h.jobRepo.GetByID(ctx, req.ID)
	if err != nil {
		return errorResponse("get job: %v", err)
	}

	return dataResponse(toJobInfo(job))
}

// BatchPayload es el payload para consultar un lote
type BatchPayload struct {
	BatchID string `json:"batch_id"`
}

// BatchStatus resume un lote
type BatchStatus struct {
	BatchID   string    `json:"batch_id"`
	Jobs      []JobInfo `json:"jobs"`
	Pending   int       `json:"pending"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
}

// HandleBatch retorna los trabajos de un lote con sus conteos
func (h *Handlers) HandleBatch(ctx context.Context, payload json.RawMessage) Response {
	var req BatchPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return errorResponse("invalid payload: %v", err)
	}

	if req.BatchID == "" {
		return errorResponse("batch_id is required")
	}

	jobs, err := h.jobRepo.GetByBatch(ctx, req.BatchID)
	if err != nil {
		return errorResponse("get batch: %v", err)
	}
	if len(jobs) == 0 {
		return errorResponse("batch not found: %s", req.BatchID)
	}

	status := BatchStatus{BatchID: req.BatchID, Jobs: toJobInfos(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case domain.JobCompleted:
			status.Succeeded++
		case domain.JobFailed:
			status.Failed++
		default:
			status.Pending++
		}
	}

	return dataResponse(status)
}

// ListPayload es el payload para listar trabajos
type ListPayload struct {
	Limit int `json:"limit"`
}

// HandleList retorna los trabajos recientes
func (h *Handlers) HandleList(ctx context.Context, payload json.RawMessage) Response {
	var req ListPayload
	if err := json.Unmarshal(payload, &req); err != nil {
		// Sin payload se usa el default
		req.Limit = defaultListLimit
	}

	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}

	jobs, err := h.jobRepo.GetRecent(ctx, req.Limit)
	if err != nil {
		return errorResponse("get jobs: %v", err)
	}

	items := toJobInfos(jobs)
	return dataResponse(map[string]interface{}{
		"jobs":  items,
		"count": len(items),
	})
}

// HandleStats retorna estadísticas de la cola
func (h *Handlers) HandleStats(ctx context.Context) Response {
	stats, err := h.queue.GetStats(ctx)
	if err != nil {
		return errorResponse("get stats: %v", err)
	}
	return dataResponse(stats)
}

// CatalogEntry es un par origen -> destinos de una categoría
type CatalogEntry struct {
	Category           string   `json:"category"`
	From               string   `json:"from"`
	To                 []string `json:"to"`
	RequiresTargetSize bool     `json:"requires_target_size"`
}

// HandleCatalog retorna la tabla de conversiones soportadas
func (h *Handlers) HandleCatalog() Response {
	return dataResponse(CatalogEntries())
}

// CatalogEntries aplana el catálogo en filas
func CatalogEntries() []CatalogEntry {
	var entries []CatalogEntry
	for _, c := range catalog.Categories() {
		for _, src := range catalog.AllowedSourceFormats(c) {
			targets := catalog.AllowedTargetFormats(c, src)
			to := make([]string, 0, len(targets))
			for _, t := range targets {
				to = append(to, string(t))
			}
			entries = append(entries, CatalogEntry{
				Category:           string(c),
				From:               string(src),
				To:                 to,
				RequiresTargetSize: catalog.RequiresTargetSize(c, src),
			})
		}
	}
	return entries
}
