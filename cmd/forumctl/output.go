package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// render writes v as indented JSON, or through table when the output
// format is table.
func (c *cli) render(v any, table func(w io.Writer)) error {
	switch c.output {
	case "json":
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "table", "":
		tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format %q", c.output)
	}
}

// done prints a one-line confirmation, or {"ok":true} as JSON.
func (c *cli) done(format string, args ...any) error {
	return c.render(map[string]bool{"ok": true}, func(w io.Writer) {
		_, _ = fmt.Fprintf(w, format+"\n", args...)
	})
}

func row(w io.Writer, cols ...any) {
	for i, col := range cols {
		if i > 0 {
			_, _ = io.WriteString(w, "\t")
		}
		_, _ = fmt.Fprint(w, col)
	}
	_, _ = io.WriteString(w, "\n")
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
