package main

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rijalprasetyo/converter-file/internal/logging"
	"github.com/rijalprasetyo/converter-file/internal/tui/picker"
)

func newTUICmd() *cobra.Command {
	var (
		output    string
		recursive bool
	)

	cmd := &cobra.Command{
		Use:   "tui <files or directories...>",
		Short: "Pick the conversion interactively",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out, err := filepath.Abs(output)
			if err != nil {
				return fmt.Errorf("resolve output directory: %w", err)
			}

			// Logs would corrupt the alt screen
			logger := logging.NewLogger("fconv", "off", false, nil)

			model := picker.NewModel(newEngine(cfg, logger), picker.Options{
				Paths:     args,
				OutputDir: out,
				Recursive: recursive,
			})

			final, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("run tui: %w", err)
			}

			if m, ok := final.(picker.Model); ok && m.Summary() != nil {
				printSummary(m.Summary(), len(m.Summary().Results))
				if m.Summary().Failed > 0 {
					return errBatchFailed
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (required)")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Walk directories recursively")
	if err := cmd.MarkFlagRequired("output"); err != nil {
		panic(err)
	}
	return cmd
}
