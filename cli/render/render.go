// Package render provides output rendering for the sweep CLI.
//
// Format selection rules:
//   - If output is a TTY, default to table
//   - If output is not a TTY, default to json
//   - --format always overrides defaults
//   - Invalid formats are errors
//
// The msgpack format writes one length-prefixed msgpack record per
// combination, suitable for piping into downstream tooling.
package render

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/justapithecus/sweep/matrix"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTable   Format = "table"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat parses a format string, returning an error for invalid formats.
// The empty string is returned unchanged so the caller can pick a default.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml":
		return FormatYAML, nil
	case "table":
		return FormatTable, nil
	case "msgpack":
		return FormatMsgpack, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, yaml, table, or msgpack)", s)
	}
}

// DefaultFormat returns the format to use when none was requested: table on
// a TTY, json otherwise.
func DefaultFormat(out io.Writer) Format {
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return FormatTable
	}
	return FormatJSON
}

// Styles for table output.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

// Renderer handles output formatting.
type Renderer struct {
	format  Format
	noColor bool
	out     io.Writer
}

// New creates a Renderer. An empty format falls back to DefaultFormat(out).
func New(format Format, noColor bool, out io.Writer) *Renderer {
	if format == "" {
		format = DefaultFormat(out)
	}
	return &Renderer{format: format, noColor: noColor, out: out}
}

// Combinations renders the expanded combinations. Column order follows the
// axis declaration order in names.
func (r *Renderer) Combinations(names []string, combos []matrix.Combination) error {
	switch r.format {
	case FormatJSON:
		return r.renderJSON(names, combos)
	case FormatYAML:
		return r.renderYAML(names, combos)
	case FormatMsgpack:
		return r.renderMsgpack(combos)
	case FormatTable:
		return r.renderTable(names, combos)
	default:
		return fmt.Errorf("invalid format: %q", r.format)
	}
}

func (r *Renderer) renderJSON(names []string, combos []matrix.Combination) error {
	enc := json.NewEncoder(r.out)
	for _, combo := range combos {
		if err := enc.Encode(ordered(names, combo)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderYAML(names []string, combos []matrix.Combination) error {
	docs := make([]map[string]any, len(combos))
	for i, combo := range combos {
		docs[i] = combo
	}
	data, err := yaml.Marshal(docs)
	if err != nil {
		return err
	}
	_, err = r.out.Write(data)
	return err
}

// renderMsgpack writes one frame per combination: a 4-byte big-endian length
// prefix followed by the msgpack payload.
func (r *Renderer) renderMsgpack(combos []matrix.Combination) error {
	for _, combo := range combos {
		payload, err := msgpack.Marshal(map[string]any(combo))
		if err != nil {
			return fmt.Errorf("encode combination: %w", err)
		}
		var prefix [4]byte
		binary.BigEndian.PutUint32(prefix[:], uint32(len(payload)))
		if _, err := r.out.Write(prefix[:]); err != nil {
			return err
		}
		if _, err := r.out.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderTable(names []string, combos []matrix.Combination) error {
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)

	header := strings.Join(names, "\t")
	if !r.noColor {
		header = headerStyle.Render(header)
	}
	fmt.Fprintln(w, header)

	for _, combo := range combos {
		row := make([]string, len(names))
		for i, name := range names {
			row[i] = fmt.Sprintf("%v", combo[name])
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	footer := fmt.Sprintf("%d combinations", len(combos))
	if !r.noColor {
		footer = countStyle.Render(footer)
	}
	_, err := fmt.Fprintln(r.out, footer)
	return err
}

// ordered rebuilds a combination as a key-sorted map restricted to the known
// axis names, so JSON output is deterministic.
func ordered(names []string, combo matrix.Combination) map[string]any {
	keys := append([]string(nil), names...)
	sort.Strings(keys)
	m := make(map[string]any, len(keys))
	for _, k := range keys {
		m[k] = combo[k]
	}
	return m
}
