package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmynk/housesplit/internal/calculator"
	"github.com/mmynk/housesplit/internal/models"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	creditStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	debitStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table is a bordered text table. The first column is left-aligned, the rest
// right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders a centered title in a rounded box.
func RenderTitle(title string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(48).
		Align(lipgloss.Center).
		Padding(0, 1)
	return box.Render(titleStyle.Render(title))
}

// RenderTable renders t with box-drawing borders.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	widths := make([]int, cols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < cols && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	rule := func(left, mid, right string) string {
		parts := make([]string, cols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return dimStyle.Render(left+strings.Join(parts, mid)+right) + "\n"
	}
	line := func(cells []string, style lipgloss.Style) string {
		var b strings.Builder
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if i == 0 {
				cell = cell + pad
			} else {
				cell = pad + cell
			}
			b.WriteString(style.Render(" " + cell + " "))
			b.WriteString(dimStyle.Render("│"))
		}
		return b.String() + "\n"
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}
	b.WriteString(rule("╭", "┬", "╮"))
	b.WriteString(line(t.Headers, headerStyle))
	b.WriteString(rule("├", "┼", "┤"))
	for _, row := range t.Rows {
		b.WriteString(line(row, valueStyle))
	}
	b.WriteString(rule("╰", "┴", "╯"))
	return b.String()
}

// RenderReport renders balances, the transfer plan and net balances for r. names maps
// member ids to display names; missing names fall back to the id.
func RenderReport(r calculator.Report, names map[models.MemberID]string) string {
	name := func(id models.MemberID) string {
		if n, ok := names[id]; ok && n != "" {
			return n
		}
		return string(id)
	}

	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("Household balances %s", r.Period)))
	b.WriteString("\n\n")

	balances := Table{Title: "Balances", Headers: []string{"Member", "Paid", "Balance", "Net"}}
	for i, mb := range r.Balances {
		net := mb.Amount
		if i < len(r.Net) {
			net = r.Net[i].Amount
		}
		balances.Rows = append(balances.Rows, []string{
			name(mb.Member),
			FormatMoney(r.TotalPaid[mb.Member], false),
			FormatMoney(mb.Amount, true),
			FormatMoney(net, true),
		})
	}
	b.WriteString(RenderTable(balances))
	b.WriteString("\n")

	if len(r.Transfers) == 0 {
		b.WriteString("  " + mutedStyle.Render("Nothing to settle.") + "\n")
		return b.String()
	}

	transfers := Table{Title: "Transfers", Headers: []string{"From", "To", "Amount", "Status"}}
	for _, t := range r.Transfers {
		transfers.Rows = append(transfers.Rows, []string{
			name(t.From),
			name(t.To),
			FormatMoney(t.Amount, false),
			FormatStatus(t.Status),
		})
	}
	b.WriteString(RenderTable(transfers))
	b.WriteString("\n")

	if r.AllSettled {
		b.WriteString("  " + creditStyle.Render("All settled.") + "\n")
	} else {
		outstanding := 0
		for _, t := range r.Transfers {
			if t.Status != models.StatusConfirmed {
				outstanding++
			}
		}
		b.WriteString("  " + warnStyle.Render(fmt.Sprintf("%d of %d transfers outstanding.", outstanding, len(r.Transfers))) + "\n")
	}
	return b.String()
}

// RenderError renders a one-line error for the terminal.
func RenderError(err error) string {
	return debitStyle.Render("error: ") + err.Error()
}
