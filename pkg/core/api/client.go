// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leseb/openresponses-cli/pkg/core/schema"
	"github.com/leseb/openresponses-cli/pkg/core/stream"
)

// ResponsesClient calls a gateway's /v1/responses endpoint.
type ResponsesClient interface {
	// CreateResponse sends a non-streaming request and returns the full response.
	CreateResponse(ctx context.Context, req *schema.ResponseRequest) (*schema.Response, error)

	// CreateResponseStream sends a streaming request and returns a channel
	// of reconciler events. The channel is closed when the stream ends.
	CreateResponseStream(ctx context.Context, req *schema.ResponseRequest) (<-chan stream.Event, error)

	// GetResponse retrieves a response by id, for polling background jobs.
	GetResponse(ctx context.Context, responseID string) (*schema.Response, error)
}

// Client is the HTTP implementation of ResponsesClient.
type Client struct {
	baseURL    string // e.g. "http://localhost:8080/v1"
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Responses API client. baseURL should include the
// /v1 prefix (e.g. "http://localhost:8080/v1").
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateResponse sends a non-streaming request.
func (c *Client) CreateResponse(ctx context.Context, req *schema.ResponseRequest) (*schema.Response, error) {
	req.Stream = false

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to gateway failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result schema.Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// GetResponse retrieves a response by id.
func (c *Client) GetResponse(ctx context.Context, responseID string) (*schema.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/responses/"+responseID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to gateway failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result schema.Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &result, nil
}

// CreateResponseStream sends a streaming request and converts the SSE feed
// into reconciler events. Event payloads carrying a "response" object are
// decoded into snapshots; a failed decode degrades to a payload-less event
// rather than killing the stream. The [DONE] marker becomes a "done" event
// before the channel closes.
func (c *Client) CreateResponseStream(ctx context.Context, req *schema.ResponseRequest) (<-chan stream.Event, error) {
	req.Stream = true

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request to gateway failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(respBody))
	}

	events := make(chan stream.Event, 10)

	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		// Increase max token size for large SSE payloads
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var eventType string

		for scanner.Scan() {
			line := scanner.Text()

			// Empty line signals end of an event
			if line == "" {
				eventType = ""
				continue
			}

			if strings.HasPrefix(line, "event: ") {
				eventType = strings.TrimPrefix(line, "event: ")
				continue
			}

			if strings.HasPrefix(line, "data: ") {
				data := strings.TrimPrefix(line, "data: ")

				// [DONE] signals end of stream
				if data == "[DONE]" {
					select {
					case events <- stream.Event{Kind: stream.KindDone}:
					case <-ctx.Done():
					}
					return
				}

				select {
				case events <- decodeEvent(eventType, []byte(data)):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return events, nil
}

// decodeEvent turns one SSE payload into a reconciler event. The envelope's
// own type field wins over the SSE event line when both are present.
func decodeEvent(eventType string, data []byte) stream.Event {
	var envelope struct {
		Type     string           `json:"type"`
		Response *schema.Response `json:"response"`
	}
	kind := eventType
	if err := json.Unmarshal(data, &envelope); err == nil {
		if envelope.Type != "" {
			kind = envelope.Type
		}
		if envelope.Type == "error" || eventType == "error" {
			kind = stream.KindError
		}
		return stream.Event{Kind: kind, Response: envelope.Response, Raw: data}
	}
	// Malformed payload: keep the raw bytes for error extraction.
	return stream.Event{Kind: kind, Raw: data}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}
