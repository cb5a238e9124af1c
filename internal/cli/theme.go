package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joseph-ayodele/resume-extractor/constants"
	"github.com/joseph-ayodele/resume-extractor/internal/entity"
	"github.com/joseph-ayodele/resume-extractor/internal/pipeline"
)

// Theme holds the color scheme for progress and summary output.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// progressLine renders one orchestrator snapshot. IDLE produces no line.
func (t Theme) progressLine(s pipeline.Snapshot) string {
	switch s.State {
	case constants.StateIdle:
		return ""
	case constants.StateParsingInput:
		return t.statusStyle().Render("Reading input...")
	case constants.StateParsingFile, constants.StateCallingService:
		if s.Progress == nil {
			return ""
		}
		verb := "Extracting text from"
		if s.State == constants.StateCallingService {
			verb = "Querying extraction service for"
		}
		counter := t.hintStyle().Render(fmt.Sprintf("[%d/%d]", s.Progress.Processed+1, s.Progress.Total))
		return fmt.Sprintf("%s %s %s", counter, t.statusStyle().Render(verb), s.Progress.CurrentDocument)
	case constants.StateSuccess:
		return t.completedStyle().Render("Done.")
	case constants.StateError:
		return t.errorStyle().Render("Failed: " + s.Error)
	default:
		return string(s.State)
	}
}

// summary describes a finished batch, listing failures in name order.
func (t Theme) summary(result *entity.BatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d of %d documents extracted\n",
		t.completedStyle().Render("✓"), len(result.Records), result.Attempted)
	if len(result.Failures) == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "%s %d failed:\n", t.errorStyle().Render("✗"), len(result.Failures))
	for _, name := range result.FailedNames() {
		fmt.Fprintf(&b, "  %s %s\n", name, t.hintStyle().Render("- "+result.Failures[name]))
	}
	return b.String()
}
