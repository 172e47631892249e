package picker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rijalprasetyo/converter-file/internal/batch"
	"github.com/rijalprasetyo/converter-file/internal/catalog"
)

var (
	keyQuit  = key.NewBinding(key.WithKeys("q", "ctrl+c"))
	keyAbort = key.NewBinding(key.WithKeys("ctrl+c"))
	keyUp    = key.NewBinding(key.WithKeys("up", "k"))
	keyDown  = key.NewBinding(key.WithKeys("down", "j"))
	keyEnter = key.NewBinding(key.WithKeys("enter"))
	keyBack  = key.NewBinding(key.WithKeys("esc"))
	keyYes   = key.NewBinding(key.WithKeys("y"))
	keyNo    = key.NewBinding(key.WithKeys("n"))
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 10 {
			m.progress.Width = min(msg.Width-10, 60)
		}
		return m, nil

	case outputDirReadyMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			m.step = stepConfirm
			return m, nil
		}
		return m, convertFile(m.ctx, m.converter, 0, m.requests[0])

	case fileConvertedMsg:
		m.results = append(m.results, msg.result)
		next := len(m.results)
		if next >= len(m.requests) || m.ctx.Err() != nil {
			m.finish()
			return m, nil
		}
		return m, convertFile(m.ctx, m.converter, next, m.requests[next])

	case spinner.TickMsg:
		if m.step != stepRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keyAbort) {
		return m.quit()
	}

	m.errorMessage = ""

	switch m.step {
	case stepCategory, stepSource, stepTarget:
		return m.handleMenuKeys(msg)
	case stepSize:
		return m.handleSizeKeys(msg)
	case stepConfirm:
		return m.handleConfirmKeys(msg)
	case stepSummary:
		return m.quit()
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.quitting = true
	return m, tea.Quit
}

// handleMenuKeys handles the category, source and target menus
func (m Model) handleMenuKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyQuit):
		return m.quit()

	case key.Matches(msg, keyUp):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keyDown):
		if m.cursor < m.optionCount()-1 {
			m.cursor++
		}

	case key.Matches(msg, keyBack):
		if m.step == stepCategory {
			return m.quit()
		}
		m.step--
		m.cursor = 0

	case key.Matches(msg, keyEnter):
		if m.optionCount() == 0 {
			return m, nil
		}
		m.selectOption()
	}

	return m, nil
}

// selectOption applies the highlighted menu entry and advances
func (m *Model) selectOption() {
	switch m.step {
	case stepCategory:
		m.category = m.categories[m.cursor]
		m.sources = catalog.AllowedSourceFormats(m.category)
		m.step = stepSource

	case stepSource:
		source := m.sources[m.cursor]
		inputs, errs := batch.CollectInputs(m.paths, source, m.recursive)
		if len(inputs) == 0 {
			m.errorMessage = fmt.Sprintf("No %s files found in the given paths", source)
			if len(errs) > 0 {
				m.errorMessage += ": " + errs[0].Error()
			}
			return
		}
		m.source = source
		m.inputs = inputs
		m.targets = catalog.AllowedTargetFormats(m.category, source)
		m.step = stepTarget

	case stepTarget:
		m.target = m.targets[m.cursor]
		if catalog.RequiresTargetSize(m.category, m.source) {
			m.step = stepSize
			m.sizeInput.SetValue("")
			m.sizeInput.Focus()
		} else {
			m.sizeKB = 0
			m.step = stepConfirm
		}
	}
	m.cursor = 0
}

// handleSizeKeys handles the target size input
func (m Model) handleSizeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyBack):
		m.sizeInput.Blur()
		m.step = stepTarget
		return m, nil

	case key.Matches(msg, keyEnter):
		size, err := strconv.Atoi(strings.TrimSpace(m.sizeInput.Value()))
		if err != nil {
			m.errorMessage = "Target size must be a whole number of KB"
			return m, nil
		}
		if err := catalog.ValidateTargetSize(m.category, m.source, size); err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.sizeKB = size
		m.sizeInput.Blur()
		m.step = stepConfirm
		return m, nil
	}

	var cmd tea.Cmd
	m.sizeInput, cmd = m.sizeInput.Update(msg)
	return m, cmd
}

// handleConfirmKeys starts the run or goes back
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyQuit):
		return m.quit()

	case key.Matches(msg, keyBack), key.Matches(msg, keyNo):
		if catalog.RequiresTargetSize(m.category, m.source) {
			m.step = stepSize
			m.sizeInput.Focus()
		} else {
			m.step = stepTarget
		}
		return m, nil

	case key.Matches(msg, keyEnter), key.Matches(msg, keyYes):
		spec := m.spec()
		if err := spec.Validate(); err != nil {
			m.errorMessage = err.Error()
			return m, nil
		}
		m.requests = spec.Requests()
		m.results = make([]batch.FileResult, 0, len(m.requests))
		m.started = time.Now()
		m.step = stepRunning
		return m, tea.Batch(m.spinner.Tick, prepareOutputDir(m.outputDir))
	}

	return m, nil
}

// finish tallies the results and shows the summary
func (m *Model) finish() {
	summary := &batch.Summary{
		Results: m.results,
		Elapsed: time.Since(m.started),
	}
	for _, r := range m.results {
		if r.Result.Succeeded {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	m.summary = summary
	m.step = stepSummary
}
