package output

import (
	"strings"

	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5B47E0")).
			Padding(0, 2)

	methodStyles = map[string]lipgloss.Style{
		"GET": lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")),
		"POST": lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98C379")),
		"PUT": lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E5C07B")),
		"DELETE": lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#E06C75")),
	}

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ABB2BF")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E06C75")).
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5B47E0"))

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ABB2BF"))
)

func getMethodStyle(method string) lipgloss.Style {
	if style, ok := methodStyles[method]; ok {
		return style
	}
	return cellStyle
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

// RenderOperations lists the supported resource/operation pairs
func RenderOperations(ops []rdm.Operation) string {
	t := newTable("RESOURCE", "OPERATION", "METHOD", "PATH", "PARAMETERS", "DESCRIPTION").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(ops) {
				return getMethodStyle(ops[row].Method).Padding(0, 1)
			}
			return cellStyle
		})

	for _, op := range ops {
		t.Row(
			string(op.Key.Resource),
			string(op.Key.Operation),
			op.Method,
			op.Path,
			strings.Join(op.Parameters, ", "),
			op.Description,
		)
	}

	var out strings.Builder
	out.WriteString(titleStyle.Render(" InvenioRDM operations "))
	out.WriteString("\n")
	out.WriteString(t.String())
	return out.String()
}

// RenderResourceTypes lists the resource type vocabulary
func RenderResourceTypes(options []rdm.Option) string {
	if len(options) == 0 {
		return summaryStyle.Render("No resource types found")
	}

	t := newTable("ID", "NAME").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, opt := range options {
		t.Row(opt.Value, opt.Name)
	}
	return t.String()
}

// RenderItems shows items as a table of their common fields
func RenderItems(items []rdm.OutputItem) string {
	if len(items) == 0 {
		return summaryStyle.Render("No results")
	}

	headers, rows := itemRows(items)
	errorCol := -1
	for i, h := range headers {
		if h == "ERROR" {
			errorCol = i
		}
	}

	t := newTable(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == errorCol:
				return errorStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}
