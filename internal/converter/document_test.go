package converter

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rijalprasetyo/converter-file/internal/domain"
)

func TestTabularRoundTrip(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "sales.xlsx")

	rows := [][]interface{}{
		{"Region", "Units", "Price", "Note"},
		{"North", 42, 3.5, "first, with comma"},
		{"South", 7, 12.25, "plain"},
		{"East", 1000, 0.5, "quoted \"word\""},
	}

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := wb.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("write fixture row: %v", err)
		}
	}
	if err := wb.SaveAs(source); err != nil {
		t.Fatalf("save fixture: %v", err)
	}
	wb.Close()

	engine := NewEngine(Options{})
	csvPath := filepath.Join(dir, "sales.csv")
	res := engine.Convert(context.Background(), domain.ConversionRequest{
		InputPath:  source,
		OutputPath: csvPath,
		Category:   domain.CategoryDocument,
		Source:     domain.FormatXLSX,
		Target:     domain.FormatCSV,
	})
	if !res.Succeeded {
		t.Fatalf("xlsx -> csv failed: kind=%s err=%v", res.Kind, res.Err)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != len(rows) {
		t.Fatalf("csv has %d lines, want %d:\n%s", len(lines), len(rows), data)
	}
	if lines[0] != "Region,Units,Price,Note" {
		t.Errorf("header = %q, index column must not be added", lines[0])
	}

	backPath := filepath.Join(dir, "sales_back.xlsx")
	res = engine.Convert(context.Background(), domain.ConversionRequest{
		InputPath:  csvPath,
		OutputPath: backPath,
		Category:   domain.CategoryDocument,
		Source:     domain.FormatCSV,
		Target:     domain.FormatXLSX,
	})
	if !res.Succeeded {
		t.Fatalf("csv -> xlsx failed: kind=%s err=%v", res.Kind, res.Err)
	}

	orig := readRows(t, source)
	back := readRows(t, backPath)
	if !reflect.DeepEqual(orig, back) {
		t.Errorf("round trip changed the table:\n got  %v\n want %v", back, orig)
	}
}

func TestCSVToXLSX_NumericCells(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "n.csv")
	if err := os.WriteFile(csvPath, []byte("id,score,label\n1,2.5,x\n2,,y\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "n.xlsx")

	res := NewEngine(Options{}).Convert(context.Background(), domain.ConversionRequest{
		InputPath:  csvPath,
		OutputPath: out,
		Category:   domain.CategoryDocument,
		Source:     domain.FormatCSV,
		Target:     domain.FormatXLSX,
	})
	if !res.Succeeded {
		t.Fatalf("Convert() failed: kind=%s err=%v", res.Kind, res.Err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	score, _ := f.GetCellValue("Sheet1", "B2")
	if score != "2.5" {
		t.Errorf("B2 = %q, want 2.5", score)
	}
	empty, _ := f.GetCellValue("Sheet1", "B3")
	if empty != "" {
		t.Errorf("B3 = %q, want empty", empty)
	}

	label, _ := f.GetCellValue("Sheet1", "C3")
	if label != "y" {
		t.Errorf("C3 = %q, want y", label)
	}
}

func TestInferColumns(t *testing.T) {
	rows := [][]string{
		{"007", "1", "2.5", "", "NaN"},
		{"abc", "2", "3", "", "1"},
		{"", "", "4"},
	}
	want := []columnKind{columnText, columnInt, columnFloat, columnText, columnText}

	if got := inferColumns(rows); !reflect.DeepEqual(got, want) {
		t.Errorf("inferColumns() = %v, want %v", got, want)
	}
}

func TestCellValue(t *testing.T) {
	tests := []struct {
		in   string
		kind columnKind
		want interface{}
	}{
		{"", columnInt, nil},
		{"42", columnInt, int64(42)},
		{"-3", columnInt, int64(-3)},
		{"2", columnFloat, 2.0},
		{"2.75", columnFloat, 2.75},
		{"007", columnText, "007"},
		{"hello", columnText, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := cellValue(tt.in, tt.kind); got != tt.want {
				t.Errorf("cellValue(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCSVToXLSX_MixedColumnStaysText(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "codes.csv")
	if err := os.WriteFile(csvPath, []byte("code,qty\n007,10\nabc,20\n"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "codes.xlsx")

	res := NewEngine(Options{}).Convert(context.Background(), domain.ConversionRequest{
		InputPath:  csvPath,
		OutputPath: out,
		Category:   domain.CategoryDocument,
		Source:     domain.FormatCSV,
		Target:     domain.FormatXLSX,
	})
	if !res.Succeeded {
		t.Fatalf("Convert() failed: kind=%s err=%v", res.Kind, res.Err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()

	code, _ := f.GetCellValue("Sheet1", "A2")
	if code != "007" {
		t.Errorf("A2 = %q, want leading zeros kept", code)
	}
	rows, err := f.GetRows("Sheet1", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 || rows[1][1] != "10" || rows[2][1] != "20" {
		t.Errorf("qty column = %v", rows)
	}
}

func TestXLSXToCSV_CorruptWorkbook(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.xlsx")
	if err := os.WriteFile(input, []byte("a,b,c"), 0644); err != nil {
		t.Fatal(err)
	}

	res := NewEngine(Options{}).Convert(context.Background(), domain.ConversionRequest{
		InputPath:  input,
		OutputPath: filepath.Join(dir, "bad.csv"),
		Category:   domain.CategoryDocument,
		Source:     domain.FormatXLSX,
		Target:     domain.FormatCSV,
	})
	if res.Succeeded || res.Kind != domain.KindSourceRead {
		t.Errorf("expected source_read failure, got succeeded=%v kind=%s", res.Succeeded, res.Kind)
	}
	assertOnlyFiles(t, dir, "bad.xlsx")
}

// fakeOffice crea un script que imita a soffice --convert-to pdf --outdir DIR FILE
func fakeOffice(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "soffice")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("write fake office: %v", err)
	}
	return path
}

func TestDocxToPDF(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		wantOK   bool
		wantKind domain.ErrorKind
	}{
		{
			name:   "office writes pdf",
			script: `base=$(basename "$6"); echo "%PDF-1.4" > "$5/${base%.*}.pdf"`,
			wantOK: true,
		},
		{
			name:     "office exits non-zero",
			script:   `echo "conversion error" >&2; exit 1`,
			wantKind: domain.KindDelegate,
		},
		{
			name:     "office produces nothing",
			script:   `exit 0`,
			wantKind: domain.KindDelegate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inDir := t.TempDir()
			input := filepath.Join(inDir, "report.docx")
			if err := os.WriteFile(input, []byte("PK fake docx"), 0644); err != nil {
				t.Fatal(err)
			}
			outDir := t.TempDir()
			output := filepath.Join(outDir, "report.pdf")

			engine := NewEngine(Options{OfficeBinary: fakeOffice(t, tt.script)})
			res := engine.Convert(context.Background(), domain.ConversionRequest{
				InputPath:  input,
				OutputPath: output,
				Category:   domain.CategoryDocument,
				Source:     domain.FormatDOCX,
				Target:     domain.FormatPDF,
			})

			if res.Succeeded != tt.wantOK {
				t.Fatalf("Succeeded = %v, want %v (kind=%s err=%v)", res.Succeeded, tt.wantOK, res.Kind, res.Err)
			}

			if tt.wantOK {
				data, err := os.ReadFile(output)
				if err != nil {
					t.Fatalf("read pdf: %v", err)
				}
				if !strings.HasPrefix(string(data), "%PDF") {
					t.Errorf("unexpected pdf content %q", data)
				}
				assertOnlyFiles(t, outDir, "report.pdf")
				return
			}

			if res.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", res.Kind, tt.wantKind)
			}
			assertOnlyFiles(t, outDir)
		})
	}
}

func TestDocxToPDF_MissingBinary(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.docx")
	if err := os.WriteFile(input, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	engine := NewEngine(Options{OfficeBinary: filepath.Join(dir, "no-office-here")})
	res := engine.Convert(context.Background(), domain.ConversionRequest{
		InputPath:  input,
		OutputPath: filepath.Join(dir, "a.pdf"),
		Category:   domain.CategoryDocument,
		Source:     domain.FormatDOCX,
		Target:     domain.FormatPDF,
	})

	if res.Succeeded || res.Kind != domain.KindDelegate {
		t.Errorf("expected delegate failure, got succeeded=%v kind=%s", res.Succeeded, res.Kind)
	}
	if err := CheckOfficeInstalled(filepath.Join(dir, "no-office-here")); err == nil {
		t.Error("CheckOfficeInstalled() should fail for a missing binary")
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		t.Fatalf("rows %s: %v", path, err)
	}
	return rows
}
