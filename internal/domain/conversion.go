package domain

import "time"

// ErrorKind clasifica el motivo de un resultado de conversión
type ErrorKind string

const (
	KindNone                 ErrorKind = "none"
	KindSourceRead           ErrorKind = "source_read"
	KindUnsupportedColorMode ErrorKind = "unsupported_color_mode"
	KindEncode               ErrorKind = "encode"
	KindDelegate             ErrorKind = "delegate"
	// KindBudgetUnreachable no es un fallo: se escribió el archivo a calidad 1
	KindBudgetUnreachable ErrorKind = "budget_unreachable"
)

// ConversionRequest describe la conversión de un solo archivo.
// Solo se construye después de validar el par contra el catálogo.
type ConversionRequest struct {
	InputPath    string
	OutputPath   string
	Category     Category
	Source       Format
	Target       Format
	TargetSizeKB int // 0 = sin objetivo de tamaño
}

// TargetBytes retorna el presupuesto en bytes
func (r ConversionRequest) TargetBytes() int {
	return r.TargetSizeKB * 1024
}

// ConversionResult es el resultado de Convert. Para el driver solo importa
// Succeeded; el resto es detalle para logs y tests.
type ConversionResult struct {
	Succeeded   bool
	Kind        ErrorKind
	Err         error
	Quality     int // calidad JPEG elegida (solo compresión)
	OutputBytes int64
	Duration    time.Duration
}
