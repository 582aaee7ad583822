package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/csvinsight-cli/internal/model"
)

// Styles holds the lipgloss styles of the terminal rendering.
type Styles struct {
	Title   lipgloss.Style
	Card    lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Hint    lipgloss.Style
	Section lipgloss.Style
	Bar     lipgloss.Style
}

func NewStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		Card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("60")).Padding(0, 1),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Value:   lipgloss.NewStyle().Bold(true),
		Hint:    lipgloss.NewStyle().Faint(true),
		Section: lipgloss.NewStyle().Bold(true).Underline(true),
		Bar:     lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
	}
}

const (
	cardsPerRow = 3
	barWidth    = 30
)

// Terminal renders summary cards and horizontal bar sketches of each chart.
func (r *Report) Terminal() string {
	st := NewStyles()
	var blocks []string

	head := st.Title.Render(safeName(r.Name))
	if r.FilteredRows < r.Rows {
		head += st.Hint.Render(fmt.Sprintf("  %d of %d rows", r.FilteredRows, r.Rows))
	}
	blocks = append(blocks, head)

	var cards []string
	for _, s := range r.Summaries {
		body := st.Label.Render(s.Label) + "\n" + st.Value.Render(s.Value)
		if s.Hint != "" {
			body += "\n" + st.Hint.Render(s.Hint)
		}
		cards = append(cards, st.Card.Render(body))
	}
	for i := 0; i < len(cards); i += cardsPerRow {
		blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:min(i+cardsPerRow, len(cards))]...))
	}

	for _, c := range r.Charts {
		title := c.Title
		if c.Note != "" {
			title += " " + c.Note
		}
		blocks = append(blocks, st.Section.Render(title))
		blocks = append(blocks, sketch(st, c.Data[:min(maxChartPoints, len(c.Data))], c.XKey, c.YKey))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...) + "\n"
}

// sketch draws one bar per point scaled to the largest absolute y value.
func sketch(st Styles, data []model.Record, xKey, yKey string) string {
	width := 0
	peak := 0.0
	for _, p := range data {
		width = max(width, len(formatCell(p[xKey])))
		if v, ok := number(p[yKey]); ok {
			peak = max(peak, abs(v))
		}
	}
	var b strings.Builder
	for _, p := range data {
		label := formatCell(p[xKey])
		v, _ := number(p[yKey])
		n := 0
		if peak > 0 {
			n = int(abs(v) / peak * barWidth)
		}
		b.WriteString(fmt.Sprintf("%-*s ", width, label))
		b.WriteString(st.Bar.Render(strings.Repeat("█", n)))
		b.WriteString(" " + formatCell(p[yKey]) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	}
	return 0, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
