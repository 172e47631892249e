package domain

import (
	"fmt"
	"strings"
)

// Category identifica la familia de conversión
type Category string

const (
	CategoryCompression Category = "compression"
	CategoryImage       Category = "image"
	CategoryDocument    Category = "document"
)

// Label retorna el nombre para mostrar en menús
func (c Category) Label() string {
	switch c {
	case CategoryCompression:
		return "Compression"
	case CategoryImage:
		return "Image"
	case CategoryDocument:
		return "Document"
	}
	return string(c)
}

// ParseCategory acepta cualquier combinación de mayúsculas
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryCompression, CategoryImage, CategoryDocument:
		return c, nil
	}
	return "", fmt.Errorf("unknown category: %q", s)
}

// Format es un formato de archivo declarado por el usuario
type Format string

const (
	FormatJPG  Format = "JPG"
	FormatPNG  Format = "PNG"
	FormatWEBP Format = "WEBP"
	FormatICO  Format = "ICO"
	FormatHEIC Format = "HEIC"
	FormatPDF  Format = "PDF"
	FormatDOCX Format = "DOCX"
	FormatXLSX Format = "XLSX"
	FormatCSV  Format = "CSV"
)

var knownFormats = []Format{
	FormatJPG, FormatPNG, FormatWEBP, FormatICO, FormatHEIC,
	FormatPDF, FormatDOCX, FormatXLSX, FormatCSV,
}

// ParseFormat normaliza el nombre del formato (JPEG es alias de JPG)
func ParseFormat(s string) (Format, error) {
	up := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if up == "JPEG" {
		return FormatJPG, nil
	}
	for _, f := range knownFormats {
		if Format(up) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format: %q", s)
}

// Ext retorna la extensión en minúsculas, con punto
func (f Format) Ext() string {
	return "." + strings.ToLower(string(f))
}

// MatchesExt indica si una extensión de archivo corresponde al formato
func (f Format) MatchesExt(ext string) bool {
	ext = strings.ToLower(ext)
	if f == FormatJPG && ext == ".jpeg" {
		return true
	}
	return ext == f.Ext()
}
