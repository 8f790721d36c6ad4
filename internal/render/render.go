// Package render prints service data as tables, tab-separated lines or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
)

// Format selects how results are written
type Format string

const (
	FormatTable Format = "table"
	FormatPlain Format = "plain"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatPlain, FormatJSON:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, plain or json)", s)
	}
}

const (
	timeLayout = "2006-01-02 15:04:05"

	// maxCell bounds free-text cells so one long note does not wreck the table.
	maxCell = 60
)

// teal palette for headers, borders and status marks
var (
	colorAccent = lipgloss.Color("#20B9B4")
	colorBorder = lipgloss.Color("#16858E")
	colorOK     = lipgloss.Color("#2CD7C7")
	colorMuted  = lipgloss.Color("#2C4A54")
)

// Printer writes results in one format
type Printer struct {
	w           io.Writer
	format      Format
	interactive bool
	re          *lipgloss.Renderer
}

// New returns a Printer for w. Styling is only applied when w is a terminal.
func New(w io.Writer, format Format) *Printer {
	if format == "" {
		format = FormatTable
	}
	return &Printer{
		w:           w,
		format:      format,
		interactive: isTerminal(w),
		re:          lipgloss.NewRenderer(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Format returns the printer's output format
func (p *Printer) Format() Format {
	return p.format
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.w
}

// JSON writes v as indented JSON
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes rows under headers. In plain format the header is dropped and
// cells are tab-separated.
func (p *Printer) Table(headers []string, rows [][]string) error {
	if p.format == FormatPlain {
		for _, row := range rows {
			if _, err := fmt.Fprintln(p.w, strings.Join(row, "\t")); err != nil {
				return err
			}
		}
		return nil
	}

	headerStyle := p.re.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := p.re.NewStyle().Padding(0, 1)
	if p.interactive {
		headerStyle = headerStyle.Foreground(colorAccent)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.re.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	_, err := fmt.Fprintf(p.w, "%s\n%s\n", t.String(), p.muted(fmt.Sprintf("(%d rows)", len(rows))))
	return err
}

// Line writes text followed by a newline
func (p *Printer) Line(text string) error {
	_, err := fmt.Fprintln(p.w, text)
	return err
}

// Success writes a confirmation line, with a check mark on a terminal
func (p *Printer) Success(text string) error {
	if p.interactive {
		mark := p.re.NewStyle().Foreground(colorOK).Render("✓")
		return p.Line(mark + " " + text)
	}
	return p.Line(text)
}

// Info writes an informational line, muted on a terminal
func (p *Printer) Info(text string) error {
	return p.Line(p.muted(text))
}

// Done reports the outcome of a mutation: the raw response in JSON format,
// the text otherwise
func (p *Printer) Done(resp any, text string) error {
	if p.format == FormatJSON {
		return p.JSON(resp)
	}
	return p.Success(text)
}

func (p *Printer) muted(text string) string {
	if !p.interactive {
		return text
	}
	return p.re.NewStyle().Foreground(colorMuted).Render(text)
}

// truncate flattens s to one line and caps it at max runes
func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
