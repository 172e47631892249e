package domain

import "testing"

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"jpg", FormatJPG, false},
		{"JPEG", FormatJPG, false},
		{".png", FormatPNG, false},
		{" Webp ", FormatWEBP, false},
		{"xlsx", FormatXLSX, false},
		{"gif", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory("Compression"); err != nil || c != CategoryCompression {
		t.Errorf("ParseCategory(Compression) = %q, %v", c, err)
	}
	if _, err := ParseCategory("video"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestFormatExt(t *testing.T) {
	if FormatXLSX.Ext() != ".xlsx" {
		t.Errorf("Ext() = %q", FormatXLSX.Ext())
	}
	if !FormatJPG.MatchesExt(".JPEG") || !FormatJPG.MatchesExt(".jpg") {
		t.Error("JPG should match .jpg and .jpeg")
	}
	if FormatPNG.MatchesExt(".jpg") {
		t.Error("PNG should not match .jpg")
	}
}
