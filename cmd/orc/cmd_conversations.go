// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations",
	Short: "List saved conversations",
	RunE:  runConversations,
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models the backend serves",
	RunE:  runModels,
}

func runConversations(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	convs, err := a.store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(convs) == 0 {
		fmt.Println("no saved conversations")
		return nil
	}
	for _, conv := range convs {
		fmt.Printf("%-42s %-20s %3d turns  %s\n",
			conv.ID, conv.Model, len(conv.Turns), conv.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runModels(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	ids, err := a.models.ListModels(cmd.Context())
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}
