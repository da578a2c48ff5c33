// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/leseb/openresponses-cli/pkg/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	RunE:  runChat,
}

var resumeCmd = &cobra.Command{
	Use:   "resume <conversation-id>",
	Short: "Continue a saved conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.requireModel(); err != nil {
		return err
	}
	return newSession(a).Run(cmd.Context())
}

func runResume(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	// The saved conversation carries its own model; no default needed.
	session := newSession(a)
	if err := session.Resume(cmd.Context(), args[0]); err != nil {
		return err
	}
	return session.Run(cmd.Context())
}

func newSession(a *app) *chat.Session {
	return chat.NewSession(chat.Options{
		Client:          a.client,
		Models:          a.models,
		Renderer:        a.renderer,
		Store:           a.store,
		Logger:          a.logger,
		Model:           a.cfg.Defaults.Model,
		Instructions:    a.cfg.Defaults.Instructions,
		ReasoningEffort: a.cfg.Defaults.ReasoningEffort,
		EnableWebSearch: a.cfg.Defaults.EnableWebSearch,
		RenderOpts:      a.renderOpts,
	})
}
