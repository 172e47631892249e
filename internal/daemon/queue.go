package daemon

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/rijalprasetyo/converter-file/internal/converter"
	"github.com/rijalprasetyo/converter-file/internal/domain"
	"github.com/rijalprasetyo/converter-file/internal/repository"
)

// Notifier envía una notificación de escritorio
type Notifier func(title, message string)

// QueueOptions configura el QueueManager
type QueueOptions struct {
	Workers      int
	PollInterval time.Duration
	Logger       hclog.Logger
	// Notify es nil cuando las notificaciones están desactivadas
	Notify Notifier
}

// QueueManager procesa los trabajos pendientes con un pool acotado de workers.
// Con un solo worker (default) las conversiones son estrictamente secuenciales.
type QueueManager struct {
	jobRepo      repository.JobRepository
	converter    converter.Converter
	logger       hclog.Logger
	notify       Notifier
	workers      int
	workerPool   chan struct{}
	wg           sync.WaitGroup
	ctx          context.Context
	cancel       context.CancelFunc
	pollInterval time.Duration
}

// NewQueueManager crea un nuevo gestor de cola
func NewQueueManager(jobRepo repository.JobRepository, conv converter.Converter, opts QueueOptions) *QueueManager {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = hclog.NewNullLogger()
	}

	return &QueueManager{
		jobRepo:      jobRepo,
		converter:    conv,
		logger:       opts.Logger.Named("queue"),
		notify:       opts.Notify,
		workers:      opts.Workers,
		workerPool:   make(chan struct{}, opts.Workers),
		ctx:          ctx,
		cancel:       cancel,
		pollInterval: opts.PollInterval,
	}
}

// Start inicia el queue manager
func (q *QueueManager) Start() {
	q.logger.Info("queue manager started", "workers", q.workers, "poll", q.pollInterval)
	q.wg.Add(1)
	go q.processLoop()
}

// Stop detiene el queue manager y espera a los workers en curso
func (q *QueueManager) Stop() {
	q.logger.Info("queue manager stopping")
	q.cancel()
	q.wg.Wait()
	q.logger.Info("queue manager stopped")
}

// processLoop es el loop principal que busca trabajos pendientes
func (q *QueueManager) processLoop() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.pollInterval)
	defer ticker.Stop()

	// Procesar inmediatamente al inicio
	q.checkPendingJobs()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.checkPendingJobs()
		}
	}
}

// checkPendingJobs reparte los pendientes entre los slots libres
func (q *QueueManager) checkPendingJobs() {
	pending, err := q.jobRepo.GetPending(q.ctx)
	if err != nil {
		q.logger.Error("get pending jobs", "error", err)
		return
	}

	if len(pending) == 0 {
		return
	}

	q.logger.Debug("pending jobs found", "count", len(pending))

	for _, job := range pending {
		select {
		case <-q.ctx.Done():
			return
		case q.workerPool <- struct{}{}:
			// Marcar antes de lanzar para que el próximo tick no lo repita
			if err := q.jobRepo.UpdateStatus(q.ctx, job.ID, domain.JobProcessing, ""); err != nil {
				q.logger.Error("mark job processing", "job", job.ID, "error", err)
				<-q.workerPool
				continue
			}
			q.wg.Add(1)
			go q.processJob(job)
		default:
			// Pool lleno, el resto espera al siguiente tick
			return
		}
	}
}

// processJob ejecuta un trabajo y guarda el resultado
func (q *QueueManager) processJob(job *domain.Job) {
	defer q.wg.Done()
	defer func() { <-q.workerPool }()

	q.logger.Debug("processing job", "job", job.ID, "input", job.InputPath)

	result := q.converter.Convert(q.ctx, job.Request())

	// El resultado se guarda aunque el daemon se esté cerrando
	if err := q.jobRepo.UpdateResult(context.Background(), job.ID, result); err != nil {
		q.logger.Error("store job result", "job", job.ID, "error", err)
		return
	}

	name := filepath.Base(job.InputPath)
	if !result.Succeeded {
		q.logger.Warn("job failed", "job", job.ID, "kind", result.Kind, "error", result.Err)
		q.sendNotification("Conversion Failed", fmt.Sprintf("%s: %s", name, result.Kind))
		return
	}

	q.logger.Info("job completed", "job", job.ID, "output", job.OutputPath, "kind", result.Kind)
	q.sendNotification("Conversion Complete", fmt.Sprintf("Ready: %s", filepath.Base(job.OutputPath)))
}

func (q *QueueManager) sendNotification(title, message string) {
	if q.notify != nil {
		q.notify(title, message)
	}
}

// DesktopNotifier usa notify-send; los errores solo se loguean
func DesktopNotifier(logger hclog.Logger) Notifier {
	return func(title, message string) {
		cmd := exec.Command("notify-send", title, message)
		if err := cmd.Run(); err != nil {
			logger.Debug("notification failed", "error", err)
		}
	}
}

// GetStats retorna estadísticas de la cola
func (q *QueueManager) GetStats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)

	for _, status := range []domain.JobStatus{
		domain.JobPending,
		domain.JobProcessing,
		domain.JobCompleted,
		domain.JobFailed,
	} {
		n, err := q.jobRepo.CountByStatus(ctx, status)
		if err != nil {
			return nil, err
		}
		stats[string(status)] = n
	}

	total, err := q.jobRepo.CountTotal(ctx)
	if err != nil {
		return nil, err
	}
	stats["total"] = total

	stats["workers_total"] = q.workers
	stats["workers_busy"] = len(q.workerPool)

	return stats, nil
}
