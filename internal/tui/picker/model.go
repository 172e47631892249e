package picker

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rijalprasetyo/converter-file/internal/batch"
	"github.com/rijalprasetyo/converter-file/internal/catalog"
	"github.com/rijalprasetyo/converter-file/internal/converter"
	"github.com/rijalprasetyo/converter-file/internal/domain"
)

// step is the current screen of the picker
type step int

const (
	stepCategory step = iota
	stepSource
	stepTarget
	stepSize
	stepConfirm
	stepRunning
	stepSummary
)

// Model is the Bubbletea model for the conversion picker
type Model struct {
	// Navigation
	step     step
	cursor   int
	width    int
	quitting bool

	// Dependencies
	converter converter.Converter
	paths     []string
	outputDir string
	recursive bool

	// Selection
	categories []domain.Category
	sources    []domain.Format
	targets    []domain.Format
	category   domain.Category
	source     domain.Format
	target     domain.Format
	sizeKB     int
	inputs     []string

	// Components
	sizeInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model

	// Run state
	ctx      context.Context
	cancel   context.CancelFunc
	requests []domain.ConversionRequest
	results  []batch.FileResult
	started  time.Time
	summary  *batch.Summary

	errorMessage string
}

// Options configures a new picker
type Options struct {
	Paths     []string
	OutputDir string
	Recursive bool
}

// NewModel creates a picker over the given paths
func NewModel(conv converter.Converter, opts Options) Model {
	sizeInput := textinput.New()
	sizeInput.Placeholder = "Target size in KB"
	sizeInput.CharLimit = 9
	sizeInput.Width = 20

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		step:       stepCategory,
		converter:  conv,
		paths:      opts.Paths,
		outputDir:  opts.OutputDir,
		recursive:  opts.Recursive,
		categories: catalog.Categories(),
		sizeInput:  sizeInput,
		spinner:    s,
		progress:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Summary returns the batch summary once the run finished, nil otherwise
func (m Model) Summary() *batch.Summary {
	return m.summary
}

// optionCount is the number of entries on the current menu
func (m Model) optionCount() int {
	switch m.step {
	case stepCategory:
		return len(m.categories)
	case stepSource:
		return len(m.sources)
	case stepTarget:
		return len(m.targets)
	}
	return 0
}

// spec builds the batch for the current selection
func (m Model) spec() batch.Spec {
	return batch.Spec{
		Category:     m.category,
		Source:       m.source,
		Target:       m.target,
		TargetSizeKB: m.sizeKB,
		Inputs:       m.inputs,
		OutputDir:    m.outputDir,
	}
}
