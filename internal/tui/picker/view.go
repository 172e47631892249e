package picker

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rijalprasetyo/converter-file/internal/domain"
)

// Styles with adaptive colors for light/dark backgrounds
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "63", Dark: "205"}).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "250"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "9"}).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "34", Dark: "10"}).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "136", Dark: "11"})

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "63", Dark: "205"})

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "63", Dark: "205"}).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "63", Dark: "63"}).
			Padding(1, 2)
)

// View renders the current step
func (m Model) View() string {
	if m.quitting && m.step != stepSummary {
		return "Goodbye!\n"
	}

	var content string

	switch m.step {
	case stepCategory:
		labels := make([]string, len(m.categories))
		for i, c := range m.categories {
			labels[i] = c.Label()
		}
		content = m.viewMenu("Choose a category", labels)
	case stepSource:
		content = m.viewMenu(m.category.Label()+": convert from", formatLabels(m.sources))
	case stepTarget:
		content = m.viewMenu(fmt.Sprintf("%s: convert %s to", m.category.Label(), m.source), formatLabels(m.targets))
	case stepSize:
		content = m.viewSize()
	case stepConfirm:
		content = m.viewConfirm()
	case stepRunning:
		content = m.viewRunning()
	case stepSummary:
		content = m.viewSummary()
	}

	if m.errorMessage != "" {
		content += "\n" + errorStyle.Render("Error: "+m.errorMessage)
	}

	return content + "\n"
}

func formatLabels(formats []domain.Format) []string {
	labels := make([]string, len(formats))
	for i, f := range formats {
		labels[i] = string(f)
	}
	return labels
}

// viewMenu renders a cursor menu
func (m Model) viewMenu(title string, options []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n\n")

	for i, opt := range options {
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("  ▸ "+opt) + "\n")
		} else {
			b.WriteString("    " + opt + "\n")
		}
	}

	b.WriteString("\n" + helpStyle.Render("  ↑/k up • ↓/j down • enter select • esc back • q quit"))
	return b.String()
}

func (m Model) viewSize() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Target size") + "\n\n")
	b.WriteString(fmt.Sprintf("  Each %s will be re-encoded at the highest quality that fits.\n\n", m.source))
	b.WriteString("  " + m.sizeInput.View() + " KB\n\n")
	b.WriteString(helpStyle.Render("  enter continue • esc back"))
	return b.String()
}

func (m Model) viewConfirm() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Category:  %s\n", m.category.Label()))
	b.WriteString(fmt.Sprintf("From:      %s\n", m.source))
	b.WriteString(fmt.Sprintf("To:        %s\n", m.target))
	if m.sizeKB > 0 {
		b.WriteString(fmt.Sprintf("Max size:  %d KB\n", m.sizeKB))
	}
	b.WriteString(fmt.Sprintf("Files:     %d\n", len(m.inputs)))
	b.WriteString(fmt.Sprintf("Output:    %s", m.outputDir))

	return titleStyle.Render("Ready to convert") + "\n\n" +
		boxStyle.Render(b.String()) + "\n\n" +
		helpStyle.Render("  enter/y start • esc/n back • q quit")
}

func (m Model) viewRunning() string {
	total := len(m.requests)
	done := len(m.results)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Converting") + "\n\n")

	current := ""
	if done < total {
		current = filepath.Base(m.requests[done].InputPath)
	}
	b.WriteString(fmt.Sprintf("  %s [%d/%d] %s\n\n", m.spinner.View(), done+1, total, current))

	percent := 0.0
	if total > 0 {
		percent = float64(done) / float64(total)
	}
	b.WriteString("  " + m.progress.ViewAs(percent) + "\n\n")

	// Last few results
	start := max(0, done-5)
	for _, r := range m.results[start:] {
		b.WriteString("  " + resultLine(r.InputPath, r.OutputPath, r.Result) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("  ctrl+c cancel"))
	return b.String()
}

func (m Model) viewSummary() string {
	s := m.summary
	if s == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Done") + "\n\n")
	for _, r := range s.Results {
		b.WriteString("  " + resultLine(r.InputPath, r.OutputPath, r.Result) + "\n")
	}
	if skipped := len(m.requests) - len(s.Results); skipped > 0 {
		b.WriteString(warnStyle.Render(fmt.Sprintf("  %d file(s) not attempted (cancelled)", skipped)) + "\n")
	}
	b.WriteString("\n")

	stats := fmt.Sprintf("Succeeded: %d\nFailed:    %d\nElapsed:   %.2fs",
		s.Succeeded, s.Failed, s.Elapsed.Seconds())
	b.WriteString(boxStyle.Render(stats) + "\n\n")
	b.WriteString(helpStyle.Render("  press any key to exit"))
	return b.String()
}

func resultLine(input, output string, r domain.ConversionResult) string {
	name := filepath.Base(input)
	switch {
	case !r.Succeeded:
		return errorStyle.Render("✗ "+name) + helpStyle.Render(fmt.Sprintf(" (%s)", r.Kind))
	case r.Kind == domain.KindBudgetUnreachable:
		return warnStyle.Render("⚠ "+name+" → "+filepath.Base(output)) +
			helpStyle.Render(" (target size unreachable, written at quality 1)")
	default:
		return successStyle.Render("✓ " + name + " → " + filepath.Base(output))
	}
}
