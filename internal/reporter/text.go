package reporter

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/wharflab/diffscope/internal/diagnostic"
	"github.com/wharflab/diffscope/internal/presenter"
	"github.com/wharflab/diffscope/internal/sourcemap"
)

// Styles for different parts of the output
var (
	// Color detection using termenv (respects NO_COLOR, CLICOLOR_FORCE, terminal detection)
	useColors = termenv.EnvColorProfile() != termenv.Ascii

	// Warning header style
	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")) // Orange/Yellow

	// Rule code style
	ruleCodeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red

	// Linter name style
	linterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")) // Gray

	// URL style
	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // Blue
			Underline(true)

	// Message style
	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")) // White

	// File location style
	fileLocStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")) // Light gray

	// Line number style
	lineNumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dark gray

	// Separator style
	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")) // Darker gray

	// Marker style for affected lines
	markerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red

	severityStyles = map[diagnostic.Severity]lipgloss.Style{
		diagnostic.SeverityError: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		diagnostic.SeverityWarning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")), // Orange
		diagnostic.SeverityInfo: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")), // Blue
		diagnostic.SeverityStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245")), // Gray
	}
)

// TextOptions configures the text reporter output.
type TextOptions struct {
	// Color enables/disables colored output. Default: auto-detect.
	Color *bool

	// SyntaxHighlight enables syntax highlighting in snippets. The lexer is
	// picked from the file name.
	SyntaxHighlight bool

	// ShowSource shows source code snippets. Default: true.
	ShowSource bool

	// ChromaStyle is the Chroma style name for syntax highlighting.
	// Default: "monokai" for dark terminals, "github" for light.
	ChromaStyle string
}

// DefaultTextOptions returns sensible defaults for text output.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		Color:           nil, // auto-detect
		SyntaxHighlight: true,
		ShowSource:      true,
		ChromaStyle:     "", // auto-detect
	}
}

// TextReporter formats rows as styled text output.
type TextReporter struct {
	opts      TextOptions
	formatter chroma.Formatter
	style     *chroma.Style

	mu     sync.Mutex
	lexers map[string]chroma.Lexer
}

// NewTextReporter creates a new text reporter with the given options.
func NewTextReporter(opts TextOptions) *TextReporter {
	r := &TextReporter{opts: opts, lexers: make(map[string]chroma.Lexer)}

	if r.colorEnabled() && opts.SyntaxHighlight {
		// Select style based on terminal background or user preference
		styleName := opts.ChromaStyle
		if styleName == "" {
			if lipgloss.HasDarkBackground() {
				styleName = "monokai"
			} else {
				styleName = "github"
			}
		}
		r.style = styles.Get(styleName)
		if r.style == nil {
			r.style = styles.Fallback
		}

		r.formatter = formatters.Get("terminal256")
		if r.formatter == nil {
			r.formatter = formatters.Fallback
		}
	}

	return r
}

func (r *TextReporter) colorEnabled() bool {
	if r.opts.Color != nil {
		return *r.opts.Color
	}
	return useColors
}

// Print writes rows to the writer in the given order.
func (r *TextReporter) Print(w io.Writer, rows []presenter.Row, sources *sourcemap.Cache) error {
	for _, row := range rows {
		if err := r.printRow(w, row, sources.Get(row.File())); err != nil {
			return err
		}
	}
	return nil
}

// printRow formats a single row.
func (r *TextReporter) printRow(w io.Writer, row presenter.Row, sm *sourcemap.SourceMap) error {
	colorEnabled := r.colorEnabled()

	sevStyle, ok := severityStyles[row.Severity]
	if !ok {
		sevStyle = warningStyle
	}

	// Header line: SEVERITY: RuleCode (linter) - URL
	sevLabel := strings.ToUpper(row.Severity.String())
	var header string
	if colorEnabled {
		header = "\n" + sevStyle.Render(sevLabel+":")
		if row.RuleCode != "" {
			header += " " + ruleCodeStyle.Render(row.RuleCode)
		}
		if row.Linter != "" {
			header += " " + linterStyle.Render("("+row.Linter+")")
		}
		if row.DocURL != "" {
			header += " - " + urlStyle.Render(row.DocURL)
		}
	} else {
		header = "\n" + sevLabel + ":"
		if row.RuleCode != "" {
			header += " " + row.RuleCode
		}
		if row.Linter != "" {
			header += " (" + row.Linter + ")"
		}
		if row.DocURL != "" {
			header += " - " + row.DocURL
		}
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	message := row.Message
	if colorEnabled {
		message = messageStyle.Render(message)
	}
	if _, err := fmt.Fprintln(w, message); err != nil {
		return err
	}

	if r.opts.ShowSource && !row.Location.IsFileLevel() && sm != nil && sm.LineCount() > 0 {
		return r.printSource(w, row, sm, colorEnabled)
	}

	target := row.Target(false)
	if colorEnabled {
		target = fileLocStyle.Render(target)
	}
	_, err := fmt.Fprintln(w, target)
	return err
}

// printSource renders the source code snippet with optional syntax highlighting.
func (r *TextReporter) printSource(w io.Writer, row presenter.Row, sm *sourcemap.SourceMap, colorEnabled bool) error {
	loc := row.Location
	total := sm.LineCount()

	start := loc.Start.Line
	end := loc.End.Line
	if loc.IsPointLocation() || end < start {
		end = start
	}
	// End is exclusive: column 0 on a later line doesn't include that line.
	if end > start && loc.End.Column == 0 {
		end--
	}

	// Bounds check
	if start > total || start < 1 {
		return nil
	}
	end = min(end, total)

	// Calculate padding (2-4 lines of context)
	pad := 2
	if end == start {
		pad = 4
	}

	first, last := start, end
	for p := 0; p < pad; {
		expanded := false
		if first > 1 {
			first--
			p++
			expanded = true
		}
		if last < total {
			last++
			p++
			expanded = true
		}
		if !expanded {
			break
		}
	}

	var b strings.Builder
	b.WriteString("\n")
	if colorEnabled {
		b.WriteString(fileLocStyle.Render(row.Target(false)) + "\n")
		b.WriteString(separatorStyle.Render("────────────────────") + "\n")
	} else {
		b.WriteString(row.Target(false) + "\n")
		b.WriteString("--------------------\n")
	}

	lexer := r.lexerFor(loc.File)
	for i := first; i <= last; i++ {
		var lineNum string
		if colorEnabled {
			lineNum = lineNumStyle.Render(fmt.Sprintf(" %3d │", i))
		} else {
			lineNum = fmt.Sprintf(" %3d |", i)
		}

		marker := "   "
		if lineInRange(i, start, end) {
			marker = ">>>"
			if colorEnabled {
				marker = markerStyle.Render(marker)
			}
		}

		content := sm.Line(i)
		if lexer != nil {
			content = r.highlightLine(lexer, content)
		}

		fmt.Fprintf(&b, "%s %s %s\n", lineNum, marker, content)
	}

	if colorEnabled {
		b.WriteString(separatorStyle.Render("────────────────────") + "\n")
	} else {
		b.WriteString("--------------------\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// lexerFor returns the highlighting lexer for a file, or nil when
// highlighting is off.
func (r *TextReporter) lexerFor(file string) chroma.Lexer {
	if r.style == nil || r.formatter == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.lexers[file]; ok {
		return l
	}
	l := lexers.Match(file)
	if l == nil {
		l = lexers.Fallback
	}
	l = chroma.Coalesce(l)
	r.lexers[file] = l
	return l
}

// highlightLine applies syntax highlighting to a single line.
func (r *TextReporter) highlightLine(lexer chroma.Lexer, line string) string {
	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, r.style, iterator); err != nil {
		return line
	}

	// Trim trailing newline that formatter might add
	return strings.TrimSuffix(buf.String(), "\n")
}

// PrintTextPlain writes rows without any styling (for non-TTY output).
func PrintTextPlain(w io.Writer, rows []presenter.Row, sources *sourcemap.Cache) error {
	noColor := false
	opts := TextOptions{
		Color:           &noColor,
		SyntaxHighlight: false,
		ShowSource:      true,
	}
	return NewTextReporter(opts).Print(w, rows, sources)
}

// lineInRange checks if a 1-based line number is within the range [start, end].
func lineInRange(line, start, end int) bool {
	if end < start {
		end = start
	}
	return line >= start && line <= end
}
