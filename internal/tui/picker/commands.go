package picker

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rijalprasetyo/converter-file/internal/batch"
	"github.com/rijalprasetyo/converter-file/internal/converter"
	"github.com/rijalprasetyo/converter-file/internal/domain"
)

// Async commands that return tea.Msg

func prepareOutputDir(dir string) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return outputDirReadyMsg{err: fmt.Errorf("create output directory: %w", err)}
		}
		return outputDirReadyMsg{}
	}
}

// convertFile runs one request; the next one is only issued after this
// message arrives, so files are still converted one at a time.
func convertFile(ctx context.Context, conv converter.Converter, index int, req domain.ConversionRequest) tea.Cmd {
	return func() tea.Msg {
		return fileConvertedMsg{result: batch.FileResult{
			Index:      index,
			InputPath:  req.InputPath,
			OutputPath: req.OutputPath,
			Result:     conv.Convert(ctx, req),
		}}
	}
}
