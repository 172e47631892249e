// Package catalog contiene la tabla estática de conversiones permitidas.
// Es la única fuente de verdad: CLI, TUI y daemon la consultan en lugar de
// codificar pares de formatos.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rijalprasetyo/converter-file/internal/domain"
)

// CompressedSuffix se agrega al nombre base en la categoría de compresión
const CompressedSuffix = "_compressed"

// MaxTargetSizeKB es el tope del tamaño objetivo (1 GiB)
const MaxTargetSizeKB = 1 << 20

var (
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnsupportedSource  = errors.New("unsupported source format")
	ErrUnsupportedTarget  = errors.New("unsupported target format")
	ErrTargetSizeRequired = errors.New("target size must be a positive number of KB")
	ErrTargetSizeTooLarge = errors.New("target size exceeds the maximum")
)

// FormatSpec describe los formatos de una categoría
type FormatSpec struct {
	Sources []domain.Format
	Outputs map[domain.Format][]domain.Format
}

var categories = []domain.Category{
	domain.CategoryCompression,
	domain.CategoryImage,
	domain.CategoryDocument,
}

var table = map[domain.Category]FormatSpec{
	domain.CategoryCompression: {
		Sources: []domain.Format{domain.FormatJPG},
		Outputs: map[domain.Format][]domain.Format{
			domain.FormatJPG: {domain.FormatJPG},
		},
	},
	domain.CategoryImage: {
		Sources: []domain.Format{domain.FormatHEIC, domain.FormatJPG, domain.FormatPNG, domain.FormatWEBP},
		Outputs: map[domain.Format][]domain.Format{
			domain.FormatHEIC: {domain.FormatJPG, domain.FormatPNG},
			domain.FormatJPG:  {domain.FormatPNG, domain.FormatWEBP, domain.FormatICO},
			domain.FormatPNG:  {domain.FormatJPG, domain.FormatWEBP, domain.FormatICO},
			domain.FormatWEBP: {domain.FormatJPG, domain.FormatPNG},
		},
	},
	domain.CategoryDocument: {
		Sources: []domain.Format{domain.FormatDOCX, domain.FormatXLSX, domain.FormatCSV},
		Outputs: map[domain.Format][]domain.Format{
			domain.FormatDOCX: {domain.FormatPDF},
			domain.FormatXLSX: {domain.FormatCSV},
			domain.FormatCSV:  {domain.FormatXLSX},
		},
	},
}

// Categories retorna las categorías en orden de menú
func Categories() []domain.Category {
	out := make([]domain.Category, len(categories))
	copy(out, categories)
	return out
}

// AllowedSourceFormats retorna los formatos de origen de una categoría,
// o un slice vacío si la categoría no existe
func AllowedSourceFormats(category domain.Category) []domain.Format {
	spec, ok := table[category]
	if !ok {
		return []domain.Format{}
	}
	return clone(spec.Sources)
}

// AllowedTargetFormats retorna los destinos legales de un formato de origen,
// o un slice vacío si el par no está registrado
func AllowedTargetFormats(category domain.Category, source domain.Format) []domain.Format {
	spec, ok := table[category]
	if !ok {
		return []domain.Format{}
	}
	return clone(spec.Outputs[source])
}

// Validate verifica que la conversión esté en la tabla
func Validate(category domain.Category, source, target domain.Format) error {
	spec, ok := table[category]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	targets, ok := spec.Outputs[source]
	if !ok {
		return fmt.Errorf("%w: %s for %s", ErrUnsupportedSource, source, category.Label())
	}
	for _, t := range targets {
		if t == target {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrUnsupportedTarget, source, target)
}

// RequiresTargetSize indica si el par necesita un tamaño objetivo en KB
func RequiresTargetSize(category domain.Category, source domain.Format) bool {
	return category == domain.CategoryCompression && source == domain.FormatJPG
}

// ValidateTargetSize valida el tamaño objetivo cuando el par lo requiere
func ValidateTargetSize(category domain.Category, source domain.Format, sizeKB int) error {
	if RequiresTargetSize(category, source) && sizeKB <= 0 {
		return fmt.Errorf("%w: %d", ErrTargetSizeRequired, sizeKB)
	}
	if sizeKB > MaxTargetSizeKB {
		return fmt.Errorf("%w: %d KB > %d KB", ErrTargetSizeTooLarge, sizeKB, MaxTargetSizeKB)
	}
	return nil
}

// OutputPath calcula el path de salida de un archivo.
// Compresión: <base>_compressed<ext original>. Resto: <base>.<target>.
func OutputPath(outDir, inputPath string, category domain.Category, target domain.Format) string {
	name := filepath.Base(inputPath)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	if category == domain.CategoryCompression {
		return filepath.Join(outDir, base+CompressedSuffix+ext)
	}
	return filepath.Join(outDir, base+target.Ext())
}

func clone(in []domain.Format) []domain.Format {
	out := make([]domain.Format, len(in))
	copy(out, in)
	return out
}
