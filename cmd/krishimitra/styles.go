package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/krishimitra/krishi_mitra/internal/classifier"
	"github.com/krishimitra/krishi_mitra/internal/model/entities"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	badge = lipgloss.NewStyle().Padding(0, 1).Bold(true)

	// same palette as the results page badges
	badgeStyles = map[entities.Status]lipgloss.Style{
		entities.StatusGood:     badge.Foreground(lipgloss.Color("#166534")).Background(lipgloss.Color("#DCFCE7")),
		entities.StatusWarning:  badge.Foreground(lipgloss.Color("#854D0E")).Background(lipgloss.Color("#FEF9C3")),
		entities.StatusCritical: badge.Foreground(lipgloss.Color("#991B1B")).Background(lipgloss.Color("#FEE2E2")),
	}

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

func statusBadge(s entities.Status) string {
	st, ok := badgeStyles[s]
	if !ok {
		st = badge
	}
	return st.Render(strings.ToUpper(string(s)))
}

// renderFindings prints one panel per finding and an overall line.
func renderFindings(w io.Writer, findings []entities.Finding) {
	fmt.Fprintln(w, titleStyle.Render("Krishi Mitra Evaluation Results"))
	for _, f := range findings {
		lines := []string{
			titleStyle.Render(f.Category.Label()) + "  " + statusBadge(f.Status),
			f.Message,
			mutedStyle.Render("Recommendation: ") + f.Recommendation,
		}
		fmt.Fprintln(w, panelStyle.Render(strings.Join(lines, "\n")))
	}
	fmt.Fprintf(w, "Overall: %s\n", statusBadge(classifier.Worst(findings)))
}
