// Package logging construye los loggers hclog de los binarios.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// NewLogger crea un logger hclog con la configuración estándar
func NewLogger(name, level string, jsonFormat bool, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}
	if os.Getenv("FCONV_JSON_LOG") == "1" {
		jsonFormat = true
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// LevelFromEnv retorna FCONV_LOG_LEVEL o el fallback
func LevelFromEnv(fallback string) string {
	if level := os.Getenv("FCONV_LOG_LEVEL"); level != "" {
		return level
	}
	if fallback == "" {
		return "info"
	}
	return fallback
}
