package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/biyonik/dml-composer/pkg/database"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Çıktı biçimleri (--output).
const (
	outputTable    = "table"
	outputJSON     = "json"
	outputCSV      = "csv"
	outputMarkdown = "markdown"
)

var outputFormats = []string{outputTable, outputJSON, outputCSV, outputMarkdown}

// renderResult, SELECT sonucunu istenen biçimde yazar.
func renderResult(w io.Writer, result *database.Result, format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result.Maps())
	case outputTable, outputCSV, outputMarkdown, "md", "":
	default:
		return fmt.Errorf("unknown output format %q (expected %s)", format, strings.Join(outputFormats, "|"))
	}

	if result.Len() == 0 && format != outputCSV {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, values := range result.Rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	switch format {
	case outputCSV:
		t.RenderCSV()
		return nil
	case outputMarkdown, "md":
		t.RenderMarkdown()
	default:
		t.Render()
	}
	_, _ = fmt.Fprintf(w, "(%d rows)\n", result.Len())
	return nil
}

func formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
