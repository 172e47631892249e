package converter

import (
	"errors"

	"github.com/rijalprasetyo/converter-file/internal/domain"
)

var (
	// Origen ilegible, corrupto o que no coincide con el formato declarado
	ErrSourceRead = errors.New("source read failed")
	// La normalización no puede mapear los píxeles al modelo requerido
	ErrUnsupportedColorMode = errors.New("unsupported color mode")
	// El codec rechazó la codificación o no se pudo escribir la salida
	ErrEncode = errors.New("encode failed")
	// La conversión externa (office) reportó fallo
	ErrDelegate = errors.New("delegated conversion failed")
)

// classify mapea un error interno a su ErrorKind
func classify(err error) domain.ErrorKind {
	switch {
	case err == nil:
		return domain.KindNone
	case errors.Is(err, ErrSourceRead):
		return domain.KindSourceRead
	case errors.Is(err, ErrUnsupportedColorMode):
		return domain.KindUnsupportedColorMode
	case errors.Is(err, ErrDelegate):
		return domain.KindDelegate
	default:
		return domain.KindEncode
	}
}
