// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ModelsClient lists the models a backend serves, using the official
// OpenAI Go SDK. Works against OpenAI, the gateway, vLLM, Ollama and other
// OpenAI-compatible endpoints.
type ModelsClient struct {
	client openai.Client
}

// NewModelsClient creates a models client. baseURL may be empty for the
// default OpenAI endpoint.
func NewModelsClient(baseURL, apiKey string) *ModelsClient {
	opts := []option.RequestOption{}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		// Local backends ignore the key but the SDK requires one
		opts = append(opts, option.WithAPIKey("dummy"))
	}
	return &ModelsClient{client: openai.NewClient(opts...)}
}

// ListModels returns the IDs of every model the backend advertises.
func (m *ModelsClient) ListModels(ctx context.Context) ([]string, error) {
	page, err := m.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	var ids []string
	for page != nil {
		for _, model := range page.Data {
			ids = append(ids, model.ID)
		}
		page, err = page.GetNextPage()
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
	}
	return ids, nil
}
