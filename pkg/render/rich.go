// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/leseb/openresponses-cli/pkg/core/schema"
	"github.com/leseb/openresponses-cli/pkg/core/toolcall"
)

const defaultWidth = 100

// Rich renders snapshots with lipgloss styling and glamour markdown,
// live-updating in place: each Render repaints the current turn's region
// by clearing the lines the previous snapshot occupied. On a non-TTY it
// degrades to buffered output flushed on Complete.
type Rich struct {
	out     io.Writer
	errOut  io.Writer
	opts    Options
	md      *glamour.TermRenderer
	width   int
	isTTY   bool
	live    int    // lines the current turn's last paint occupies
	turnID  string // response id of the turn being painted
	pending string // buffered output for the non-TTY path

	styleReasoning lipgloss.Style
	styleTool      lipgloss.Style
	styleToolDone  lipgloss.Style
	styleToolFail  lipgloss.Style
	styleCitation  lipgloss.Style
	styleStatus    lipgloss.Style
	styleError     lipgloss.Style
	styleUsage     lipgloss.Style
}

// NewRich creates the rich terminal renderer.
func NewRich(opts Options) (*Rich, error) {
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))

	width := opts.Width
	if width == 0 {
		width = defaultWidth
		if isTTY {
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
				width = w
			}
		}
	}

	style := opts.Style
	if style == "" {
		style = "auto"
	}
	md, err := glamour.NewTermRenderer(
		glamourOption(style, opts.NoColor),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}

	r := &Rich{
		out:    os.Stdout,
		errOut: os.Stderr,
		opts:   opts,
		md:     md,
		width:  width,
		isTTY:  isTTY,
	}
	r.initStyles()
	return r, nil
}

func glamourOption(style string, noColor bool) glamour.TermRendererOption {
	if noColor {
		return glamour.WithStandardStyle("notty")
	}
	switch style {
	case "dark":
		return glamour.WithStandardStyle("dark")
	case "light":
		return glamour.WithStandardStyle("light")
	default:
		return glamour.WithAutoStyle()
	}
}

func (r *Rich) initStyles() {
	if r.opts.NoColor {
		plain := lipgloss.NewStyle()
		r.styleReasoning = plain
		r.styleTool = plain
		r.styleToolDone = plain
		r.styleToolFail = plain
		r.styleCitation = plain
		r.styleStatus = plain
		r.styleError = plain
		r.styleUsage = plain
		return
	}
	r.styleReasoning = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	r.styleTool = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	r.styleToolDone = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	r.styleToolFail = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	r.styleCitation = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	r.styleStatus = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	r.styleError = lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true)
	r.styleUsage = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
}

func (r *Rich) Render(resp *schema.Response) {
	// A new response id means a new turn: the previous turn's output is
	// final and must not be repainted over. On a non-TTY the finished
	// turn's buffer is written out before it is replaced.
	if resp.ID != r.turnID {
		if !r.isTTY && r.pending != "" {
			fmt.Fprint(r.out, r.pending)
			r.pending = ""
		}
		r.turnID = resp.ID
		r.live = 0
	}

	body := r.format(resp)

	if !r.isTTY {
		r.pending = body
		return
	}

	if r.live > 0 {
		// Move to the top of the previous paint and clear to screen end.
		fmt.Fprintf(r.out, "\x1b[%dA\x1b[J", r.live)
	}
	fmt.Fprint(r.out, body)
	r.live = displayRows(body, r.width)
}

// displayRows counts the terminal rows body occupies: a logical line wider
// than the terminal wraps onto extra rows, which the next repaint must
// clear too. Width is measured per styled line, ANSI sequences excluded.
func displayRows(body string, width int) int {
	lines := strings.Split(body, "\n")
	rows := 0
	// The element after the final newline is the cursor's current row, not
	// a completed one.
	for _, line := range lines[:len(lines)-1] {
		w := lipgloss.Width(line)
		if width > 0 && w > width {
			rows += (w + width - 1) / width
		} else {
			rows++
		}
	}
	return rows
}

func (r *Rich) RenderStatus(text string) {
	r.breakLive()
	fmt.Fprintln(r.errOut, r.styleStatus.Render("• "+text))
}

func (r *Rich) RenderError(text string) {
	r.breakLive()
	fmt.Fprintln(r.errOut, r.styleError.Render("✗ "+text))
}

func (r *Rich) Complete() {
	if !r.isTTY && r.pending != "" {
		fmt.Fprint(r.out, r.pending)
		r.pending = ""
	}
	r.live = 0
	r.turnID = ""
}

// breakLive abandons in-place repainting for the current turn. Interleaved
// status output below the live region would otherwise be overwritten.
func (r *Rich) breakLive() {
	r.live = 0
}

func (r *Rich) format(resp *schema.Response) string {
	var sb strings.Builder

	for _, item := range resp.Output {
		switch item.Type {
		case schema.ItemTypeReasoning:
			r.writeReasoning(&sb, item)
		case schema.ItemTypeMessage:
			r.writeMessage(&sb, item)
		default:
			r.writeTool(&sb, item)
		}
	}

	if citations := citationIndex(resp); len(citations) > 0 {
		sb.WriteString("\n")
		for i, c := range citations {
			sb.WriteString(r.styleCitation.Render(fmt.Sprintf("[%d] %s", i+1, c.Label())))
			sb.WriteString("\n")
		}
	}

	if r.opts.Verbose && resp.Usage != nil {
		sb.WriteString(r.styleUsage.Render(fmt.Sprintf("tokens: %d in / %d out / %d total",
			resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens)))
		sb.WriteString("\n")
	}

	return sb.String()
}

func (r *Rich) writeReasoning(sb *strings.Builder, item schema.ItemField) {
	var text strings.Builder
	for _, part := range item.Summary {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(wrap(text.String(), r.width-2), "\n"), "\n") {
		sb.WriteString(r.styleReasoning.Render("▌ " + line))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func (r *Rich) writeMessage(sb *strings.Builder, item schema.ItemField) {
	var text strings.Builder
	for _, part := range item.Content {
		if part.Text != nil {
			text.WriteString(*part.Text)
		}
		if part.Refusal != nil {
			text.WriteString(*part.Refusal)
		}
	}
	if text.Len() == 0 {
		return
	}
	rendered, err := r.md.Render(text.String())
	if err != nil {
		// Markdown failure must not lose content.
		rendered = text.String() + "\n"
	}
	sb.WriteString(rendered)
}

func (r *Rich) writeTool(sb *strings.Builder, item schema.ItemField) {
	view := toolcall.Classify(item)
	line := toolFragment(view).Line()

	style := r.styleTool
	switch view.Phase {
	case toolcall.PhaseCompleted:
		style = r.styleToolDone
	case toolcall.PhaseFailed:
		style = r.styleToolFail
	}
	sb.WriteString(style.Render("⚙ " + line))
	sb.WriteString("\n")

	// Code interpreter calls show the code itself, fenced through glamour.
	if view.Kind == toolcall.KindCodeInterpreter && view.Code != "" {
		if rendered, err := r.md.Render("```python\n" + view.Code + "\n```"); err == nil {
			sb.WriteString(rendered)
		}
	}
}

// wrap performs a naive word wrap for reasoning blocks; message bodies go
// through glamour which wraps on its own. Operates on runes so multibyte
// text is never split mid-character.
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out strings.Builder
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		for len(runes) > width {
			cut := lastSpace(runes[:width])
			if cut <= 0 {
				cut = width
			}
			out.WriteString(string(runes[:cut]))
			out.WriteString("\n")
			for cut < len(runes) && runes[cut] == ' ' {
				cut++
			}
			runes = runes[cut:]
		}
		out.WriteString(string(runes))
		out.WriteString("\n")
	}
	return out.String()
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
