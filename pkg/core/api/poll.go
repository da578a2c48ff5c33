// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"time"

	"github.com/leseb/openresponses-cli/pkg/core/schema"
)

// Default polling parameters for background responses.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 150
)

// WaitForTerminal polls a response by id at a fixed interval until it
// reaches a terminal status. Exceeding maxAttempts is a timeout, not an
// indefinite block.
func WaitForTerminal(ctx context.Context, client ResponsesClient, responseID string, interval time.Duration, maxAttempts int) (*schema.Response, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := client.GetResponse(ctx, responseID)
		if err != nil {
			return nil, err
		}
		if resp.IsTerminal() {
			return resp, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return nil, fmt.Errorf("response %s not terminal after %d attempts", responseID, maxAttempts)
}
