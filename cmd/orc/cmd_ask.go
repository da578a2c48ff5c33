// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leseb/openresponses-cli/pkg/core/api"
	"github.com/leseb/openresponses-cli/pkg/core/schema"
)

var (
	flagBackground   bool
	flagPollInterval time.Duration
	flagSave         bool
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask a one-shot question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&flagBackground, "background", false, "submit without streaming and poll for completion")
	askCmd.Flags().DurationVar(&flagPollInterval, "poll-interval", api.DefaultPollInterval, "poll interval for --background")
	askCmd.Flags().BoolVar(&flagSave, "save", false, "persist the conversation afterward")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.requireModel(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prompt := strings.Join(args, " ")

	if flagBackground {
		return runAskBackground(ctx, a, prompt)
	}

	session := newSession(a)
	if _, err := session.RunOnce(ctx, prompt); err != nil {
		return err
	}

	if flagSave {
		if err := a.store.Save(ctx, session.Conversation()); err != nil {
			return fmt.Errorf("save conversation: %w", err)
		}
		a.renderer.RenderStatus("saved — resume with: orc resume " + session.Conversation().ID)
	}
	return nil
}

// runAskBackground submits a stored, non-streaming request and polls until
// the response reaches a terminal status.
func runAskBackground(ctx context.Context, a *app, prompt string) error {
	model := a.cfg.Defaults.Model
	store := true
	req := &schema.ResponseRequest{
		Model: &model,
		Input: []schema.InputMessage{schema.NewInputMessage("user", prompt)},
		Store: &store,
	}

	resp, err := a.client.CreateResponse(ctx, req)
	if err != nil {
		return err
	}

	if !resp.IsTerminal() {
		a.renderer.RenderStatus(fmt.Sprintf("response %s is %s, polling…", resp.ID, resp.Status))
		resp, err = api.WaitForTerminal(ctx, a.client, resp.ID, flagPollInterval, api.DefaultMaxAttempts)
		if err != nil {
			return err
		}
	}

	a.renderer.Render(resp)
	a.renderer.Complete()
	return nil
}
