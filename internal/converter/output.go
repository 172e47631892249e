package converter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// countingWriter cuenta los bytes escritos
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// writeFileAtomic escribe en un archivo temporal del mismo directorio y lo
// renombra al destino. Si write falla no queda ningún archivo parcial.
func writeFileAtomic(path string, write func(w io.Writer) error) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("%w: create temp file: %w", ErrEncode, err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	cw := &countingWriter{w: tmp}
	if err := write(cw); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	if err := tmp.Chmod(0644); err != nil {
		return 0, fmt.Errorf("%w: chmod output: %w", ErrEncode, err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("%w: close output: %w", ErrEncode, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, fmt.Errorf("%w: rename output: %w", ErrEncode, err)
	}
	committed = true

	return cw.n, nil
}

// writeBytesAtomic es writeFileAtomic para un buffer ya codificado
func writeBytesAtomic(path string, data []byte) (int64, error) {
	return writeFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
