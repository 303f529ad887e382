package output

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/brendan.keane/rdmctl/internal/errors"
	"github.com/brendan.keane/rdmctl/internal/rdm"
	"github.com/mattn/go-isatty"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Supported formats
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatTable = "table"
)

// Writer renders items to a stream in one format
type Writer struct {
	out    io.Writer
	format string
	color  bool
}

// NewWriter creates a writer. Colour is enabled when out is a terminal.
func NewWriter(out io.Writer, format string) *Writer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd())
	}
	if format == "" {
		format = FormatJSON
	}
	return &Writer{out: out, format: format, color: color}
}

// Write renders all items
func (w *Writer) Write(items []rdm.OutputItem) error {
	var err error
	switch w.format {
	case FormatJSON:
		err = w.writeJSON(items)
	case FormatJSONL:
		err = w.writeJSONL(items)
	case FormatTable:
		_, err = fmt.Fprintln(w.out, RenderItems(items))
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unknown output format %q", w.format).
			WithContext("field", "output")
	}

	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write output")
	}
	return nil
}

// writeJSON emits the item documents as one indented array
func (w *Writer) writeJSON(items []rdm.OutputItem) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item.JSON)
	}
	buf.WriteByte(']')

	doc := pretty.Pretty(buf.Bytes())
	if w.color {
		doc = pretty.Color(doc, nil)
	}
	_, err := w.out.Write(doc)
	return err
}

// writeJSONL emits one compact document per line
func (w *Writer) writeJSONL(items []rdm.OutputItem) error {
	for _, item := range items {
		line := pretty.Ugly(item.JSON)
		if _, err := w.out.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// itemColumns are the fields shown in table output, in order
var itemColumns = []struct {
	header string
	path   string
}{
	{"ID", "id"},
	{"SLUG", "slug"},
	{"TITLE", "metadata.title"},
	{"CREATED", "created"},
	{"STATUS", "status"},
	{"MESSAGE", "message"},
	{"SUCCESS", "success"},
	{"ERROR", "error"},
}

func itemRows(items []rdm.OutputItem) ([]string, [][]string) {
	used := make([]bool, len(itemColumns))
	for _, item := range items {
		for i, col := range itemColumns {
			if gjson.GetBytes(item.JSON, col.path).Exists() {
				used[i] = true
			}
		}
	}

	headers := []string{"ITEM"}
	for i, col := range itemColumns {
		if used[i] {
			headers = append(headers, col.header)
		}
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := []string{fmt.Sprint(item.PairedItem)}
		for i, col := range itemColumns {
			if used[i] {
				row = append(row, truncate(gjson.GetBytes(item.JSON, col.path).String(), 60))
			}
		}
		rows = append(rows, row)
	}

	return headers, rows
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
