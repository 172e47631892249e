package picker

import "github.com/rijalprasetyo/converter-file/internal/batch"

// Message types for async operations

type fileConvertedMsg struct {
	result batch.FileResult
}

type outputDirReadyMsg struct {
	err error
}
