package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Output formats command results as tables or JSON.
type Output struct {
	jsonMode bool
	w        io.Writer
}

// NewOutput returns an Output writing to w.
func NewOutput(jsonMode bool, w io.Writer) *Output {
	return &Output{jsonMode: jsonMode, w: w}
}

// Print writes rows under headers, or jsonData in JSON mode.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) error {
	if o.jsonMode {
		return o.JSON(jsonData)
	}

	return o.Table(headers, rows)
}

// Table writes an aligned table with a dashed header rule.
func (o *Output) Table(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// JSON writes v indented.
func (o *Output) JSON(v any) error {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// Text writes a preformatted block, skipped in JSON mode.
func (o *Output) Text(s string) {
	if o.jsonMode || s == "" {
		return
	}
	fmt.Fprintln(o.w)
	fmt.Fprint(o.w, s)
}
