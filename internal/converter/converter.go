package converter

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/rijalprasetyo/converter-file/internal/domain"
)

const (
	// DefaultOfficeBinary es el binario usado para DOCX -> PDF
	DefaultOfficeBinary = "soffice"
	// DefaultWebPQuality es la calidad de WEBP con pérdida
	DefaultWebPQuality = 80
)

// Converter define la interfaz del motor de conversión.
// Convert nunca retorna error: todo fallo queda en el resultado.
type Converter interface {
	Convert(ctx context.Context, req domain.ConversionRequest) domain.ConversionResult
}

// Options configura el motor
type Options struct {
	Logger       hclog.Logger
	OfficeBinary string
	WebPQuality  int
}

// Engine implementa Converter. No tiene estado mutable compartido entre
// llamadas; cada Convert toca solo sus propios paths.
type Engine struct {
	logger       hclog.Logger
	officeBinary string
	webpQuality  int
}

// Compiletime check
var _ Converter = (*Engine)(nil)

// NewEngine crea un nuevo motor de conversión
func NewEngine(opts Options) *Engine {
	e := &Engine{
		logger:       opts.Logger,
		officeBinary: opts.OfficeBinary,
		webpQuality:  opts.WebPQuality,
	}
	if e.logger == nil {
		e.logger = hclog.NewNullLogger()
	}
	if e.officeBinary == "" {
		e.officeBinary = DefaultOfficeBinary
	}
	if e.webpQuality <= 0 || e.webpQuality > 100 {
		e.webpQuality = DefaultWebPQuality
	}
	return e
}

// outcome es el detalle de una conversión exitosa
type outcome struct {
	kind    domain.ErrorKind
	quality int
	bytes   int64
}

// Convert ejecuta una conversión. El par (categoría, origen, destino) debe
// haber sido validado contra el catálogo antes de construir la petición.
func (e *Engine) Convert(ctx context.Context, req domain.ConversionRequest) (res domain.ConversionResult) {
	start := time.Now()
	log := e.logger.With("input", req.InputPath, "category", req.Category, "from", req.Source, "to", req.Target)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: codec panic: %v", ErrEncode, r)
			res = domain.ConversionResult{Kind: classify(err), Err: err}
		}
		res.Duration = time.Since(start)

		if res.Succeeded {
			log.Debug("conversion finished",
				"output", req.OutputPath,
				"kind", res.Kind,
				"quality", res.Quality,
				"bytes", res.OutputBytes,
				"duration", res.Duration)
		} else {
			log.Warn("conversion failed", "kind", res.Kind, "error", res.Err)
		}
	}()

	out, err := e.dispatch(ctx, req)
	if err != nil {
		return domain.ConversionResult{Kind: classify(err), Err: err}
	}

	return domain.ConversionResult{
		Succeeded:   true,
		Kind:        out.kind,
		Quality:     out.quality,
		OutputBytes: out.bytes,
	}
}

// dispatch selecciona la estrategia por categoría
func (e *Engine) dispatch(ctx context.Context, req domain.ConversionRequest) (outcome, error) {
	switch req.Category {
	case domain.CategoryCompression:
		if req.Source == domain.FormatJPG {
			return e.compressJPEG(req)
		}
	case domain.CategoryImage:
		return e.convertImage(req)
	case domain.CategoryDocument:
		return e.convertDocument(ctx, req)
	}
	return outcome{}, fmt.Errorf("%w: no handler for %s %s -> %s", ErrEncode, req.Category, req.Source, req.Target)
}
