// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat owns the interactive session: a conversation of ordered
// turns, slash-command dispatch, and the per-turn stream loop. Exactly one
// session drives a conversation at a time; nothing here is shared across
// goroutines except the interrupt signal channel.
package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"

	"github.com/leseb/openresponses-cli/pkg/core/api"
	"github.com/leseb/openresponses-cli/pkg/core/schema"
	"github.com/leseb/openresponses-cli/pkg/core/state"
	"github.com/leseb/openresponses-cli/pkg/core/stream"
	"github.com/leseb/openresponses-cli/pkg/core/toolcall"
	"github.com/leseb/openresponses-cli/pkg/observability/logging"
	"github.com/leseb/openresponses-cli/pkg/render"
)

// State is the session's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateAwaitingInput
	StateStreaming
	StateCommandExecuting
	StateTerminated
)

// ModelsLister lists available models, for the /models command.
type ModelsLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Options configure a session.
type Options struct {
	Client   api.ResponsesClient
	Models   ModelsLister // optional; /models reports unavailable when nil
	Renderer render.Renderer
	Store    state.ConversationStore
	Logger   *logging.Logger

	Model           string
	Instructions    string
	ReasoningEffort string
	EnableWebSearch bool

	// RenderOpts are reused when /renderer swaps the renderer mid-session.
	RenderOpts render.Options

	Stdin io.Reader // defaults to os.Stdin
	Out   io.Writer // prompt/command output; defaults to os.Stdout
}

// Session manages one conversation's interactive loop.
type Session struct {
	client   api.ResponsesClient
	models   ModelsLister
	renderer render.Renderer
	store    state.ConversationStore
	logger   *logging.Logger

	instructions    string
	reasoningEffort string
	enableWebSearch bool
	renderOpts      render.Options

	conv  *state.Conversation
	state State
	stdin io.Reader
	out   io.Writer
}

// NewSession creates a session with a fresh conversation.
func NewSession(opts Options) *Session {
	s := &Session{
		client:          opts.Client,
		models:          opts.Models,
		renderer:        opts.Renderer,
		store:           opts.Store,
		logger:          opts.Logger,
		instructions:    opts.Instructions,
		reasoningEffort: opts.ReasoningEffort,
		enableWebSearch: opts.EnableWebSearch,
		renderOpts:      opts.RenderOpts,
		stdin:           opts.Stdin,
		out:             opts.Out,
		state:           StateIdle,
	}
	if s.stdin == nil {
		s.stdin = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	s.conv = &state.Conversation{
		ID:    "conv_" + uuid.NewString(),
		Model: opts.Model,
	}
	return s
}

// Conversation returns the session's conversation.
func (s *Session) Conversation() *state.Conversation {
	return s.conv
}

// Resume replaces the session's conversation with a persisted one,
// continuing its turn counter and model setting. Fails if the id is
// unknown or the stored document is malformed.
func (s *Session) Resume(ctx context.Context, id string) error {
	conv, err := s.store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("resume conversation %s: %w", id, err)
	}
	s.conv = conv
	return nil
}

// Run drives the interactive loop until end of input, an exit command, an
// interrupt at the prompt, or an unrecoverable stream failure.
func (s *Session) Run(ctx context.Context) error {
	s.state = StateAwaitingInput
	s.welcome()

	// Chat mode reuses the live display across turns; flush it exactly
	// once on the way out, including the unrecoverable-failure exit. The
	// closure picks up the current renderer in case /renderer swapped it.
	defer func() { s.renderer.Complete() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	lines := readLines(s.stdin)

	for s.state != StateTerminated {
		fmt.Fprint(s.out, "> ")

		select {
		case <-ctx.Done():
			s.state = StateTerminated

		case <-sigCh:
			// Interrupt at the prompt ends the session.
			fmt.Fprintln(s.out)
			s.state = StateTerminated

		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(s.out)
				s.state = StateTerminated
				break
			}
			if err := s.handleLine(ctx, sigCh, line); err != nil {
				s.state = StateTerminated
				return err
			}
		}
	}

	return nil
}

// RunOnce sends a single message outside the interactive loop and returns
// the final response. Used by one-shot invocations.
func (s *Session) RunOnce(ctx context.Context, text string) (*schema.Response, error) {
	s.conv.AppendTurn(state.Turn{Role: state.RoleUser, Text: text})

	events, err := s.client.CreateResponseStream(ctx, s.buildRequest())
	if err != nil {
		return nil, err
	}

	var recOpts []stream.Option
	if s.conv.Debug {
		recOpts = append(recOpts, stream.WithDebug())
	}
	rec := stream.New(s.renderer, s.logger, recOpts...)

	final, err := rec.HandleStream(ctx, events)
	if err != nil {
		return final, err
	}
	if final != nil && final.Status == schema.StatusCompleted {
		s.appendAssistantTurn(final)
	}
	return final, nil
}

func (s *Session) handleLine(ctx context.Context, sigCh chan os.Signal, line string) error {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	in := ParseInput(line)
	if in.IsCommand() {
		s.state = StateCommandExecuting
		exit := s.runCommand(ctx, in)
		if exit {
			s.state = StateTerminated
		} else {
			s.state = StateAwaitingInput
		}
		return nil
	}

	err := s.Send(ctx, sigCh, in.Message)
	if err != nil {
		// Only unrecoverable stream failures propagate; turn-scoped
		// failures were already rendered and the session stays usable.
		return err
	}
	s.state = StateAwaitingInput
	return nil
}

// Send appends a user turn, streams the response, and appends an assistant
// turn derived from the final snapshot, but only on clean completion. On
// interruption or a protocol error the user turn remains ("message sent,
// no reply yet") and nothing partial enters the history.
func (s *Session) Send(ctx context.Context, sigCh chan os.Signal, text string) error {
	s.state = StateStreaming
	s.conv.AppendTurn(state.Turn{Role: state.RoleUser, Text: text})

	req := s.buildRequest()
	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-turnCtx.Done():
			}
		}()
	}

	events, err := s.client.CreateResponseStream(turnCtx, req)
	if err != nil {
		// Transport loss is the unrecoverable case.
		s.renderer.RenderError(err.Error())
		return err
	}

	recOpts := []stream.Option{stream.WithChatMode()}
	if s.conv.Debug {
		recOpts = append(recOpts, stream.WithDebug())
	}
	rec := stream.New(s.renderer, s.logger, recOpts...)

	final, err := rec.HandleStream(turnCtx, events)

	var streamErr *stream.StreamError
	switch {
	case err == nil:
		// A snapshot that terminated as failed/incomplete/cancelled is not
		// a reply; recording it would pollute the history the next request
		// carries.
		if final != nil && final.Status == schema.StatusCompleted {
			s.appendAssistantTurn(final)
		} else if final != nil {
			s.renderer.RenderError(failureMessage(final))
		}
		return nil

	case errors.Is(err, context.Canceled):
		s.renderer.RenderStatus("interrupted — partial response discarded")
		return nil

	case errors.As(err, &streamErr):
		// Already rendered by the reconciler; turn-scoped.
		return nil

	case errors.Is(err, stream.ErrNoData):
		s.renderer.RenderError("stream ended without data")
		return err

	default:
		s.renderer.RenderError(err.Error())
		return nil
	}
}

// failureMessage describes a non-completed terminal snapshot.
func failureMessage(resp *schema.Response) string {
	if resp.Error != nil && resp.Error.Message != "" {
		return resp.Error.Message
	}
	return fmt.Sprintf("response %s ended with status %s", resp.ID, resp.Status)
}

// buildRequest assembles a request carrying the entire turn history so the
// server has full context.
func (s *Session) buildRequest() *schema.ResponseRequest {
	input := make([]schema.InputMessage, 0, len(s.conv.Turns))
	for _, turn := range s.conv.Turns {
		input = append(input, schema.NewInputMessage(turn.Role, turn.Text))
	}

	model := s.conv.Model
	req := &schema.ResponseRequest{
		Model: &model,
		Input: input,
	}
	if s.instructions != "" {
		req.Instructions = &s.instructions
	}
	if s.reasoningEffort != "" {
		effort := s.reasoningEffort
		req.Reasoning = &schema.ReasoningParam{Effort: &effort}
	}
	if s.enableWebSearch {
		req.Tools = append(req.Tools, schema.ResponsesToolParam{Type: "web_search"})
	}
	return req
}

func (s *Session) appendAssistantTurn(resp *schema.Response) {
	turn := state.Turn{
		Role: state.RoleAssistant,
		Text: resp.OutputText(),
	}
	for _, item := range resp.Output {
		if !toolcall.IsToolCall(item) {
			continue
		}
		v := toolcall.Classify(item)
		turn.ToolSummary = append(turn.ToolSummary, fmt.Sprintf("%s [%s]", v.Kind, v.Phase))
	}
	for _, c := range resp.Citations() {
		turn.Citations = append(turn.Citations, c.Label())
	}
	s.conv.AppendTurn(turn)
}

func (s *Session) welcome() {
	s.renderer.RenderStatus(fmt.Sprintf("chatting with %s — /help for commands, /exit to quit", s.conv.Model))
	if len(s.conv.Turns) > 0 {
		s.renderer.RenderStatus(fmt.Sprintf("resumed conversation %s (%d turns)", s.conv.ID, len(s.conv.Turns)))
	}
}

// readLines feeds stdin lines over a channel so the main loop can select
// against signals. The channel closes at end of input.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// runCommand executes a slash command. Returns true when the session
// should terminate.
func (s *Session) runCommand(ctx context.Context, in Input) bool {
	switch in.Command {
	case "exit", "quit":
		return true

	case "help":
		s.printHelp()

	case "save":
		s.commandSave(ctx, in.Args)

	case "resume":
		if in.Args == "" {
			s.renderer.RenderError("usage: /resume <conversation-id>")
			break
		}
		if err := s.Resume(ctx, in.Args); err != nil {
			s.renderer.RenderError(err.Error())
			break
		}
		s.renderer.RenderStatus(fmt.Sprintf("resumed %s (%d turns, model %s)", s.conv.ID, len(s.conv.Turns), s.conv.Model))

	case "model":
		if in.Args == "" {
			s.renderer.RenderStatus("model: " + s.conv.Model)
			break
		}
		s.conv.Model = in.Args
		s.renderer.RenderStatus("model set to " + in.Args)

	case "models":
		s.commandModels(ctx)

	case "history":
		s.printHistory()

	case "clear":
		s.conv = &state.Conversation{
			ID:    "conv_" + uuid.NewString(),
			Model: s.conv.Model,
			Debug: s.conv.Debug,
		}
		s.renderer.RenderStatus("started a new conversation")

	case "renderer":
		s.commandRenderer(in.Args)

	case "debug":
		s.conv.Debug = !s.conv.Debug
		s.renderer.RenderStatus(fmt.Sprintf("debug %v", s.conv.Debug))

	default:
		s.renderer.RenderError(fmt.Sprintf("unknown command /%s — /help lists commands (use //%s to send it as text)", in.Command, in.Command))
	}
	return false
}

func (s *Session) commandSave(ctx context.Context, args string) {
	// "/save out.json" exports a document; bare "/save" persists to the
	// configured store.
	if args != "" && strings.HasSuffix(args, ".json") {
		data, err := json.MarshalIndent(s.conv, "", "  ")
		if err != nil {
			s.renderer.RenderError(fmt.Sprintf("export conversation: %v", err))
			return
		}
		if err := os.WriteFile(args, data, 0o644); err != nil {
			s.renderer.RenderError(fmt.Sprintf("export conversation: %v", err))
			return
		}
		s.renderer.RenderStatus("exported to " + args)
		return
	}

	if err := s.store.Save(ctx, s.conv); err != nil {
		s.renderer.RenderError(fmt.Sprintf("save conversation: %v", err))
		return
	}
	s.renderer.RenderStatus("saved — resume later with: /resume " + s.conv.ID)
}

// commandRenderer swaps the output renderer. The old renderer's display
// is finalized first so its live region is not repainted over.
func (s *Session) commandRenderer(name string) {
	if name == "" {
		s.renderer.RenderError("usage: /renderer <rich|json|plain>")
		return
	}
	next, err := render.New(name, s.renderOpts)
	if err != nil {
		s.renderer.RenderError(err.Error())
		return
	}
	s.renderer.Complete()
	s.renderer = next
	s.renderer.RenderStatus("renderer set to " + name)
}

func (s *Session) commandModels(ctx context.Context) {
	if s.models == nil {
		s.renderer.RenderError("model listing is not available")
		return
	}
	ids, err := s.models.ListModels(ctx)
	if err != nil {
		s.renderer.RenderError(err.Error())
		return
	}
	for _, id := range ids {
		fmt.Fprintln(s.out, id)
	}
}

func (s *Session) printHistory() {
	for i, turn := range s.conv.Turns {
		text := turn.Text
		if len(text) > 80 {
			text = text[:79] + "…"
		}
		fmt.Fprintf(s.out, "%3d %-9s %s\n", i+1, turn.Role, text)
	}
}

func (s *Session) printHelp() {
	fmt.Fprint(s.out, `commands:
  /help            show this help
  /save [file]     persist the conversation (or export to a .json file)
  /resume <id>     load a saved conversation
  /model [name]    show or set the model
  /models          list models the backend serves
  /history         list the turns so far
  /clear           start a new conversation
  /renderer <name> switch output renderer: rich, json, plain
  /debug           toggle event debug logging
  /exit, /quit     leave

lines starting with // are sent literally (e.g. //help sends "/help")
`)
}
