package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rijalprasetyo/converter-file/internal/batch"
	"github.com/rijalprasetyo/converter-file/internal/domain"
)

// errBatchFailed hace que el proceso salga con código 1 sin repetir el mensaje
var errBatchFailed = errors.New("some files failed to convert")

type pairFlags struct {
	category  string
	from      string
	to        string
	sizeKB    int
	output    string
	recursive bool
}

func (p *pairFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&p.category, "category", "c", "", "Category: compression, image, document (required)")
	cmd.Flags().StringVarP(&p.from, "from", "f", "", "Source format (required)")
	cmd.Flags().StringVarP(&p.to, "to", "t", "", "Target format (required)")
	cmd.Flags().IntVarP(&p.sizeKB, "size", "s", 0, "Target size in KB (compression only)")
	cmd.Flags().StringVarP(&p.output, "output", "o", "", "Output directory (required)")
	cmd.Flags().BoolVarP(&p.recursive, "recursive", "r", false, "Walk directories recursively")

	for _, name := range []string{"category", "from", "to", "output"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

// spec parsea los flags y junta los archivos de entrada
func (p *pairFlags) spec(paths []string) (batch.Spec, error) {
	category, err := domain.ParseCategory(p.category)
	if err != nil {
		return batch.Spec{}, err
	}
	source, err := domain.ParseFormat(p.from)
	if err != nil {
		return batch.Spec{}, err
	}
	target, err := domain.ParseFormat(p.to)
	if err != nil {
		return batch.Spec{}, err
	}

	inputs, errs := batch.CollectInputs(paths, source, p.recursive)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	output, err := filepath.Abs(p.output)
	if err != nil {
		return batch.Spec{}, fmt.Errorf("resolve output directory: %w", err)
	}

	spec := batch.Spec{
		Category:     category,
		Source:       source,
		Target:       target,
		TargetSizeKB: p.sizeKB,
		Inputs:       inputs,
		OutputDir:    output,
	}
	return spec, spec.Validate()
}

func newConvertCmd() *cobra.Command {
	var flags pairFlags

	cmd := &cobra.Command{
		Use:   "convert <files or directories...>",
		Short: "Convert files locally, one at a time",
		Example: `  fconv convert photos/ -c compression -f jpg -t jpg -s 300 -o out/
  fconv convert logo.png -c image -f png -t ico -o icons/
  fconv convert report.docx -c document -f docx -t pdf -o pdf/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			spec, err := flags.spec(args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Found %d %s file(s)\n\n", len(spec.Inputs), spec.Source)

			runner := batch.NewRunner(newEngine(cfg, logger), logger)
			summary, err := runner.Run(ctx, spec, printProgress)
			if err != nil {
				return err
			}

			printSummary(summary, len(spec.Inputs))
			if summary.Failed > 0 {
				return errBatchFailed
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func printProgress(p batch.Progress) {
	r := p.File.Result
	name := filepath.Base(p.File.InputPath)

	switch {
	case !r.Succeeded:
		fmt.Printf("[%d/%d] ✗ %s (%s): %v\n", p.Done, p.Total, name, r.Kind, r.Err)
	case r.Kind == domain.KindBudgetUnreachable:
		fmt.Printf("[%d/%d] ⚠ %s → %s (target size unreachable, written at quality %d, %d KB)\n",
			p.Done, p.Total, name, filepath.Base(p.File.OutputPath), r.Quality, r.OutputBytes/1024)
	case r.Quality > 0:
		fmt.Printf("[%d/%d] ✓ %s → %s (quality %d, %d KB)\n",
			p.Done, p.Total, name, filepath.Base(p.File.OutputPath), r.Quality, r.OutputBytes/1024)
	default:
		fmt.Printf("[%d/%d] ✓ %s → %s\n", p.Done, p.Total, name, filepath.Base(p.File.OutputPath))
	}
}

func printSummary(s *batch.Summary, total int) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("Conversion Summary:")
	fmt.Printf("  Total files:  %d\n", total)
	fmt.Printf("  Succeeded:    %d\n", s.Succeeded)
	fmt.Printf("  Failed:       %d\n", s.Failed)
	if skipped := total - len(s.Results); skipped > 0 {
		fmt.Printf("  Not attempted: %d (cancelled)\n", skipped)
	}
	fmt.Printf("  Elapsed:      %.2fs\n", s.Elapsed.Seconds())
	fmt.Println(strings.Repeat("=", 50))
}
