package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jackzampolin/worknorm/internal/correct"
)

// Format defines how a report is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatYAML, FormatJSON:
		return Format(s), nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// Write renders data to w in the given format.
// Text rendering is only defined for *Report; other values fall back to YAML.
func Write(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	case FormatText:
		if r, ok := data.(*Report); ok {
			return r.WriteText(w)
		}
		return Write(w, FormatYAML, data)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// WriteText renders the human-readable summary.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Dataset: %s (%d works)\n", r.Dataset, r.Records)
	if r.Policy != "" {
		fmt.Fprintf(&b, "Policy:  %s\n", r.Policy)
	}

	if r.Counts != nil {
		b.WriteString("\nCorrections:\n")
		width := fieldWidth(r.Counts.Fields)
		for _, f := range r.Counts.Fields {
			fmt.Fprintf(&b, "  %-*s  replaced %d  removed %d\n", width, f.Field, f.Replaced, f.Removed)
		}
	}

	if r.Policy != "" {
		fmt.Fprintf(&b, "\nChanged records: %d\n", len(r.Changes))
		for _, c := range r.Changes {
			fmt.Fprintf(&b, "  %s  %s: %s -> %s\n", c.ID, c.Field, compact(c.Before), compact(c.After))
		}
	}

	for _, ft := range r.Top {
		fmt.Fprintf(&b, "\nTop %s:\n", ft.Field)
		if len(ft.Values) == 0 {
			b.WriteString("  (none)\n")
		}
		for i, t := range ft.Values {
			fmt.Fprintf(&b, "  %2d. %s (%d)\n", i+1, t.Value, t.Count)
		}
	}

	switch {
	case r.Written:
		fmt.Fprintf(&b, "\nWrote %s\n", r.Dataset)
	case r.DryRun:
		fmt.Fprintf(&b, "\nDry run: %s not written\n", r.Dataset)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func fieldWidth(fields []correct.FieldStats) int {
	w := 0
	for _, f := range fields {
		w = max(w, len(f.Field))
	}
	return w
}

// compact renders v as single-line JSON, or "(absent)" when nil.
func compact(v any) string {
	if v == nil {
		return "(absent)"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
