// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leseb/openresponses-cli/pkg/core/schema"
	"github.com/leseb/openresponses-cli/pkg/core/toolcall"
)

// Plain renders snapshots as unstyled text. Intermediate snapshots of one
// turn replace a buffer; the turn's final state is written when the next
// turn starts (detected by response id change) or on Complete. Status and
// error lines are written immediately since they are not part of any
// snapshot.
type Plain struct {
	out     io.Writer
	errOut  io.Writer
	opts    Options
	buffer  string
	turnID  string
	flushed bool
}

// NewPlain creates a plain-text renderer writing to stdout/stderr.
func NewPlain(opts Options) *Plain {
	return &Plain{out: os.Stdout, errOut: os.Stderr, opts: opts}
}

// NewPlainWriter creates a plain-text renderer with explicit writers.
func NewPlainWriter(out, errOut io.Writer, opts Options) *Plain {
	return &Plain{out: out, errOut: errOut, opts: opts}
}

func (p *Plain) Render(resp *schema.Response) {
	// A new response id starts a new turn: the previous turn's buffer is
	// final and must be written out, not replaced.
	if resp.ID != p.turnID {
		p.flush()
		p.turnID = resp.ID
	}
	p.buffer = p.format(resp)
	p.flushed = false
}

func (p *Plain) RenderStatus(text string) {
	fmt.Fprintf(p.errOut, "* %s\n", text)
}

func (p *Plain) RenderError(text string) {
	fmt.Fprintf(p.errOut, "error: %s\n", text)
}

func (p *Plain) Complete() {
	p.flush()
	p.flushed = true
}

func (p *Plain) flush() {
	if p.flushed || p.buffer == "" {
		return
	}
	fmt.Fprint(p.out, p.buffer)
	p.buffer = ""
}

// format walks the output items in order, dispatching per item kind.
func (p *Plain) format(resp *schema.Response) string {
	var sb strings.Builder

	for _, item := range resp.Output {
		switch item.Type {
		case schema.ItemTypeReasoning:
			for _, part := range item.Summary {
				for _, line := range strings.Split(strings.TrimRight(part.Text, "\n"), "\n") {
					sb.WriteString("> ")
					sb.WriteString(line)
					sb.WriteString("\n")
				}
			}
			sb.WriteString("\n")

		case schema.ItemTypeMessage:
			for _, part := range item.Content {
				if part.Text != nil {
					sb.WriteString(*part.Text)
				}
				if part.Refusal != nil {
					sb.WriteString(*part.Refusal)
				}
			}
			sb.WriteString("\n")

		default:
			sb.WriteString(toolFragment(toolcall.Classify(item)).Line())
			sb.WriteString("\n")
		}
	}

	// Citation list: indices recomputed fresh, contiguous from 1.
	if citations := citationIndex(resp); len(citations) > 0 {
		sb.WriteString("\nSources:\n")
		for i, c := range citations {
			sb.WriteString(fmt.Sprintf("  [%d] %s\n", i+1, c.Label()))
		}
	}

	if p.opts.Verbose && resp.Usage != nil {
		sb.WriteString(fmt.Sprintf("\ntokens: %d in, %d out, %d total\n",
			resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens))
	}

	return sb.String()
}
