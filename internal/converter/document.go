package converter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rijalprasetyo/converter-file/internal/domain"
)

// convertDocument delega en office o en la librería de hojas de cálculo
func (e *Engine) convertDocument(ctx context.Context, req domain.ConversionRequest) (outcome, error) {
	var (
		n   int64
		err error
	)

	switch {
	case req.Source == domain.FormatDOCX && req.Target == domain.FormatPDF:
		n, err = e.docxToPDF(ctx, req.InputPath, req.OutputPath)
	case req.Source == domain.FormatXLSX && req.Target == domain.FormatCSV:
		n, err = xlsxToCSV(req.InputPath, req.OutputPath)
	case req.Source == domain.FormatCSV && req.Target == domain.FormatXLSX:
		n, err = csvToXLSX(req.InputPath, req.OutputPath)
	default:
		err = fmt.Errorf("%w: no document handler for %s -> %s", ErrEncode, req.Source, req.Target)
	}
	if err != nil {
		return outcome{}, err
	}

	return outcome{kind: domain.KindNone, bytes: n}, nil
}

// docxToPDF ejecuta office en modo headless dentro de un directorio temporal
// junto al destino y mueve el PDF producido a su lugar
func (e *Engine) docxToPDF(ctx context.Context, inputPath, outputPath string) (int64, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return 0, fmt.Errorf("%w: stat source: %w", ErrSourceRead, err)
	}

	tmpDir, err := os.MkdirTemp(filepath.Dir(outputPath), ".fconv-office-*")
	if err != nil {
		return 0, fmt.Errorf("%w: create temp dir: %w", ErrEncode, err)
	}
	defer os.RemoveAll(tmpDir)

	args := []string{
		"--headless",
		"--convert-to", "pdf",
		"--outdir", tmpDir,
		inputPath,
	}

	cmd := exec.CommandContext(ctx, e.officeBinary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w\nOutput: %s", ErrDelegate, e.officeBinary, err, output)
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	produced := filepath.Join(tmpDir, base+".pdf")

	info, err := os.Stat(produced)
	if err != nil {
		return 0, fmt.Errorf("%w: no pdf produced\nOutput: %s", ErrDelegate, output)
	}

	if err := os.Rename(produced, outputPath); err != nil {
		return 0, fmt.Errorf("%w: move pdf: %w", ErrEncode, err)
	}

	return info.Size(), nil
}

// xlsxToCSV lee la primera hoja completa y la escribe como CSV, sin columna
// de índice. Las filas cortas se completan hasta el ancho máximo.
func xlsxToCSV(inputPath, outputPath string) (int64, error) {
	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return 0, fmt.Errorf("%w: open workbook: %w", ErrSourceRead, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, fmt.Errorf("%w: workbook has no sheets", ErrSourceRead)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("%w: read sheet %q: %w", ErrSourceRead, sheets[0], err)
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	return writeFileAtomic(outputPath, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		for _, row := range rows {
			for len(row) < width {
				row = append(row, "")
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// csvToXLSX lee el CSV completo y lo escribe en Sheet1 desde A1, sin columna
// de índice. Los valores numéricos se guardan como números.
func csvToXLSX(inputPath, outputPath string) (int64, error) {
	in, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("%w: open csv: %w", ErrSourceRead, err)
	}
	defer in.Close()

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("%w: parse csv: %w", ErrSourceRead, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	var kinds []columnKind
	if len(records) > 1 {
		kinds = inferColumns(records[1:])
	}

	sheet := f.GetSheetName(0)
	for i, record := range records {
		cells := make([]interface{}, len(record))
		for j, v := range record {
			// la cabecera siempre queda como texto
			if i == 0 {
				cells[j] = v
				continue
			}
			cells[j] = cellValue(v, kinds[j])
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return 0, fmt.Errorf("%w: cell name for row %d: %w", ErrEncode, i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return 0, fmt.Errorf("%w: write row %d: %w", ErrEncode, i+1, err)
		}
	}

	return writeFileAtomic(outputPath, func(w io.Writer) error {
		return f.Write(w)
	})
}

type columnKind int

const (
	columnText columnKind = iota
	columnInt
	columnFloat
)

// inferColumns decide el tipo de cada columna con todas sus filas: una
// columna es numérica solo si todas sus celdas no vacías lo son
func inferColumns(rows [][]string) []columnKind {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	kinds := make([]columnKind, width)
	for j := range kinds {
		kind, filled := columnInt, false
		for _, row := range rows {
			if j >= len(row) || row[j] == "" {
				continue
			}
			filled = true
			if _, err := strconv.ParseInt(row[j], 10, 64); err == nil {
				continue
			}
			if isFinite(row[j]) {
				kind = columnFloat
				continue
			}
			kind = columnText
			break
		}
		if !filled {
			kind = columnText
		}
		kinds[j] = kind
	}
	return kinds
}

func isFinite(v string) bool {
	fl, err := strconv.ParseFloat(v, 64)
	return err == nil && !math.IsNaN(fl) && !math.IsInf(fl, 0)
}

// cellValue convierte una celda según el tipo de su columna
func cellValue(v string, kind columnKind) interface{} {
	if v == "" {
		return nil
	}
	switch kind {
	case columnInt:
		i, _ := strconv.ParseInt(v, 10, 64)
		return i
	case columnFloat:
		fl, _ := strconv.ParseFloat(v, 64)
		return fl
	}
	return v
}

// CheckOfficeInstalled verifica que el binario de office esté disponible
func CheckOfficeInstalled(binary string) error {
	if binary == "" {
		binary = DefaultOfficeBinary
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("%s not found: %w (install: sudo apt install libreoffice)", binary, err)
	}
	return nil
}
