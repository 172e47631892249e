package batch

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rijalprasetyo/converter-file/internal/catalog"
	"github.com/rijalprasetyo/converter-file/internal/converter"
	"github.com/rijalprasetyo/converter-file/internal/domain"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 24, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 24; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 128, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestRun_FailureIsolation(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")

	const corrupt = 2
	var inputs []string
	for i := 0; i < 5; i++ {
		p := filepath.Join(inDir, "img"+string(rune('a'+i))+".png")
		if i == corrupt {
			if err := os.WriteFile(p, []byte("not a png"), 0644); err != nil {
				t.Fatal(err)
			}
		} else {
			writePNG(t, p)
		}
		inputs = append(inputs, p)
	}

	var seen []int
	runner := NewRunner(converter.NewEngine(converter.Options{}), nil)
	summary, err := runner.Run(context.Background(), Spec{
		Category:  domain.CategoryImage,
		Source:    domain.FormatPNG,
		Target:    domain.FormatJPG,
		Inputs:    inputs,
		OutputDir: outDir,
	}, func(p Progress) {
		if p.Total != 5 {
			t.Errorf("progress total = %d, want 5", p.Total)
		}
		seen = append(seen, p.Done)
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Succeeded != 4 || summary.Failed != 1 {
		t.Errorf("succeeded=%d failed=%d, want 4/1", summary.Succeeded, summary.Failed)
	}
	if len(summary.Results) != 5 {
		t.Fatalf("got %d results, want 5", len(summary.Results))
	}
	for i, r := range summary.Results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if i == corrupt {
			if r.Result.Succeeded {
				t.Errorf("result %d should have failed", i)
			}
			if r.Result.Kind != domain.KindSourceRead {
				t.Errorf("result %d kind = %s, want source_read", i, r.Result.Kind)
			}
			continue
		}
		if !r.Result.Succeeded {
			t.Errorf("result %d failed: %v", i, r.Result.Err)
		}
		if _, err := os.Stat(r.OutputPath); err != nil {
			t.Errorf("missing output for %d: %v", i, err)
		}
	}
	if len(seen) != 5 || seen[4] != 5 {
		t.Errorf("progress callbacks = %v", seen)
	}
	if summary.Elapsed <= 0 {
		t.Error("elapsed time not recorded")
	}
}

type stubConverter struct {
	calls  []domain.ConversionRequest
	cancel context.CancelFunc
	stopAt int
}

func (s *stubConverter) Convert(ctx context.Context, req domain.ConversionRequest) domain.ConversionResult {
	s.calls = append(s.calls, req)
	if s.cancel != nil && len(s.calls) == s.stopAt {
		s.cancel()
	}
	return domain.ConversionResult{Succeeded: true}
}

func TestRun_ValidatesBeforeConverting(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr error
	}{
		{
			name:    "pair not in catalog",
			spec:    Spec{Category: domain.CategoryImage, Source: domain.FormatHEIC, Target: domain.FormatICO, Inputs: []string{"a.heic"}, OutputDir: "out"},
			wantErr: catalog.ErrUnsupportedTarget,
		},
		{
			name:    "compression without size",
			spec:    Spec{Category: domain.CategoryCompression, Source: domain.FormatJPG, Target: domain.FormatJPG, Inputs: []string{"a.jpg"}, OutputDir: "out"},
			wantErr: catalog.ErrTargetSizeRequired,
		},
		{
			name:    "no inputs",
			spec:    Spec{Category: domain.CategoryDocument, Source: domain.FormatCSV, Target: domain.FormatXLSX, OutputDir: "out"},
			wantErr: ErrNoInputs,
		},
		{
			name:    "no output dir",
			spec:    Spec{Category: domain.CategoryDocument, Source: domain.FormatCSV, Target: domain.FormatXLSX, Inputs: []string{"a.csv"}},
			wantErr: ErrNoOutputDir,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubConverter{}
			_, err := NewRunner(stub, nil).Run(context.Background(), tt.spec, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if len(stub.calls) != 0 {
				t.Errorf("converter called %d times for an invalid batch", len(stub.calls))
			}
		})
	}
}

func TestRun_BuildsRequests(t *testing.T) {
	outDir := t.TempDir()
	stub := &stubConverter{}

	_, err := NewRunner(stub, nil).Run(context.Background(), Spec{
		Category:     domain.CategoryCompression,
		Source:       domain.FormatJPG,
		Target:       domain.FormatJPG,
		TargetSizeKB: 300,
		Inputs:       []string{"/photos/a.jpg", "/photos/b.jpeg"},
		OutputDir:    outDir,
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		filepath.Join(outDir, "a_compressed.jpg"),
		filepath.Join(outDir, "b_compressed.jpeg"),
	}
	for i, req := range stub.calls {
		if req.OutputPath != want[i] {
			t.Errorf("request %d output = %q, want %q", i, req.OutputPath, want[i])
		}
		if req.TargetSizeKB != 300 {
			t.Errorf("request %d target size = %d", i, req.TargetSizeKB)
		}
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stub := &stubConverter{cancel: cancel, stopAt: 2}
	summary, err := NewRunner(stub, nil).Run(ctx, Spec{
		Category:  domain.CategoryDocument,
		Source:    domain.FormatCSV,
		Target:    domain.FormatXLSX,
		Inputs:    []string{"a.csv", "b.csv", "c.csv", "d.csv"},
		OutputDir: t.TempDir(),
	}, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(stub.calls) != 2 {
		t.Errorf("converter called %d times, want 2", len(stub.calls))
	}
	if summary.Succeeded != 2 || len(summary.Results) != 2 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestCollectInputs(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "nested")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "notes.txt"} {
		os.WriteFile(filepath.Join(root, name), []byte("x"), 0644)
	}
	os.WriteFile(filepath.Join(sub, "d.jpg"), []byte("x"), 0644)

	files, errs := CollectInputs([]string{root, filepath.Join(root, "a.jpg")}, domain.FormatJPG, false)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(files) != 2 {
		t.Errorf("non-recursive: got %v, want a.jpg and b.JPEG", files)
	}

	files, _ = CollectInputs([]string{root}, domain.FormatJPG, true)
	if len(files) != 3 {
		t.Errorf("recursive: got %v, want 3 files", files)
	}

	files, _ = CollectInputs([]string{filepath.Join(root, "notes.txt")}, domain.FormatJPG, false)
	if len(files) != 1 {
		t.Errorf("explicit files must be kept as given, got %v", files)
	}

	_, errs = CollectInputs([]string{filepath.Join(root, "missing")}, domain.FormatJPG, false)
	if len(errs) != 1 {
		t.Errorf("expected one error for missing path, got %v", errs)
	}
}

func TestCollectInputs_ReportsUnreadableSubdir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	root := t.TempDir()
	locked := filepath.Join(root, "locked")
	if err := os.MkdirAll(locked, 0755); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(root, "a.jpg"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(locked, "b.jpg"), []byte("x"), 0644)
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	files, errs := CollectInputs([]string{root}, domain.FormatJPG, true)
	if len(files) != 1 {
		t.Errorf("expected the readable file only, got %v", files)
	}
	if len(errs) != 1 {
		t.Fatalf("expected one error for the locked dir, got %v", errs)
	}
	if !errors.Is(errs[0], os.ErrPermission) {
		t.Errorf("error = %v, want permission denied", errs[0])
	}
}

func TestValidate_RejectsCollidingOutputs(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name    string
		spec    Spec
		wantErr error
	}{
		{
			name: "same stem in different dirs",
			spec: Spec{
				Category: domain.CategoryImage, Source: domain.FormatJPG, Target: domain.FormatPNG,
				Inputs:    []string{filepath.Join(root, "a", "photo.jpg"), filepath.Join(root, "b", "photo.jpg")},
				OutputDir: root,
			},
			wantErr: ErrDuplicateOutput,
		},
		{
			name: "jpg and jpeg with same stem",
			spec: Spec{
				Category: domain.CategoryImage, Source: domain.FormatJPG, Target: domain.FormatPNG,
				Inputs:    []string{filepath.Join(root, "photo.jpg"), filepath.Join(root, "photo.jpeg")},
				OutputDir: root,
			},
			wantErr: ErrDuplicateOutput,
		},
		{
			name: "compression keeps the extension",
			spec: Spec{
				Category: domain.CategoryCompression, Source: domain.FormatJPG, Target: domain.FormatJPG, TargetSizeKB: 100,
				Inputs:    []string{filepath.Join(root, "photo.jpg"), filepath.Join(root, "photo.jpeg")},
				OutputDir: root,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRun_RecursiveCollisionWritesNothing(t *testing.T) {
	root := t.TempDir()
	outDir := t.TempDir()
	for _, sub := range []string{"2023", "2024"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0755); err != nil {
			t.Fatal(err)
		}
		writePNG(t, filepath.Join(root, sub, "cover.png"))
	}

	inputs, errs := CollectInputs([]string{root}, domain.FormatPNG, true)
	if len(errs) != 0 || len(inputs) != 2 {
		t.Fatalf("CollectInputs() = %v, %v", inputs, errs)
	}

	_, err := NewRunner(converter.NewEngine(converter.Options{}), nil).Run(context.Background(), Spec{
		Category:  domain.CategoryImage,
		Source:    domain.FormatPNG,
		Target:    domain.FormatJPG,
		Inputs:    inputs,
		OutputDir: outDir,
	}, nil)
	if !errors.Is(err, ErrDuplicateOutput) {
		t.Fatalf("Run() error = %v, want %v", err, ErrDuplicateOutput)
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("output dir should be untouched, has %d entries", len(entries))
	}
}
