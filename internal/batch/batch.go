// Package batch es el driver secuencial: valida el lote contra el catálogo,
// convierte un archivo a la vez y acumula el resultado.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/rijalprasetyo/converter-file/internal/catalog"
	"github.com/rijalprasetyo/converter-file/internal/converter"
	"github.com/rijalprasetyo/converter-file/internal/domain"
)

var (
	ErrNoInputs    = errors.New("no input files")
	ErrNoOutputDir = errors.New("output directory is required")
	// ErrDuplicateOutput indica dos entradas que escribirían el mismo archivo
	ErrDuplicateOutput = errors.New("inputs map to the same output file")
)

// Spec describe un lote
type Spec struct {
	Category     domain.Category
	Source       domain.Format
	Target       domain.Format
	TargetSizeKB int
	Inputs       []string
	OutputDir    string
}

// Validate verifica el lote contra el catálogo antes de tocar archivos
func (s Spec) Validate() error {
	if err := catalog.Validate(s.Category, s.Source, s.Target); err != nil {
		return err
	}
	if err := catalog.ValidateTargetSize(s.Category, s.Source, s.TargetSizeKB); err != nil {
		return err
	}
	if len(s.Inputs) == 0 {
		return ErrNoInputs
	}
	if s.OutputDir == "" {
		return ErrNoOutputDir
	}

	seen := make(map[string]string, len(s.Inputs))
	for _, in := range s.Inputs {
		out := filepath.Clean(catalog.OutputPath(s.OutputDir, in, s.Category, s.Target))
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateOutput, prev, in, out)
		}
		seen[out] = in
	}
	return nil
}

// Requests construye una petición por archivo
func (s Spec) Requests() []domain.ConversionRequest {
	reqs := make([]domain.ConversionRequest, 0, len(s.Inputs))
	for _, in := range s.Inputs {
		size := 0
		if catalog.RequiresTargetSize(s.Category, s.Source) {
			size = s.TargetSizeKB
		}
		reqs = append(reqs, domain.ConversionRequest{
			InputPath:    in,
			OutputPath:   catalog.OutputPath(s.OutputDir, in, s.Category, s.Target),
			Category:     s.Category,
			Source:       s.Source,
			Target:       s.Target,
			TargetSizeKB: size,
		})
	}
	return reqs
}

// FileResult es el resultado de un archivo dentro del lote
type FileResult struct {
	Index      int
	InputPath  string
	OutputPath string
	Result     domain.ConversionResult
}

// Progress se emite después de cada archivo
type Progress struct {
	Done  int
	Total int
	File  FileResult
}

// Summary es el conteo final del lote
type Summary struct {
	Results   []FileResult
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// Runner ejecuta lotes sobre un Converter
type Runner struct {
	converter converter.Converter
	logger    hclog.Logger
}

// NewRunner crea un nuevo runner
func NewRunner(conv converter.Converter, logger hclog.Logger) *Runner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Runner{converter: conv, logger: logger}
}

// Run convierte los archivos en orden. Un fallo no aborta el lote; si el
// contexto se cancela no se inician más conversiones.
func (r *Runner) Run(ctx context.Context, spec Spec, progress func(Progress)) (*Summary, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(spec.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	reqs := spec.Requests()
	summary := &Summary{Results: make([]FileResult, 0, len(reqs))}
	start := time.Now()

	r.logger.Info("batch started",
		"category", spec.Category,
		"from", spec.Source,
		"to", spec.Target,
		"files", len(reqs))

	for i, req := range reqs {
		if ctx.Err() != nil {
			r.logger.Warn("batch cancelled", "done", i, "total", len(reqs))
			break
		}

		fr := FileResult{
			Index:      i,
			InputPath:  req.InputPath,
			OutputPath: req.OutputPath,
			Result:     r.converter.Convert(ctx, req),
		}
		summary.Results = append(summary.Results, fr)

		if fr.Result.Succeeded {
			summary.Succeeded++
		} else {
			summary.Failed++
		}

		if progress != nil {
			progress(Progress{Done: i + 1, Total: len(reqs), File: fr})
		}
	}

	summary.Elapsed = time.Since(start)

	r.logger.Info("batch finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"elapsed", summary.Elapsed)

	return summary, nil
}
