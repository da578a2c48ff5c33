// Copyright Open Responses CLI Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leseb/openresponses-cli/pkg/core/schema"
	"github.com/leseb/openresponses-cli/pkg/core/stream"
)

func strPtr(s string) *string { return &s }

func testRequest() *schema.ResponseRequest {
	return &schema.ResponseRequest{
		Model: strPtr("test-model"),
		Input: []schema.InputMessage{schema.NewInputMessage("user", "hello")},
	}
}

func TestCreateResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req schema.ResponseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("non-streaming request carried stream=true")
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"resp_1","object":"response","model":"test-model","status":"completed"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "test-key", 5*time.Second)

	resp, err := client.CreateResponse(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("CreateResponse() error: %v", err)
	}
	if resp.ID != "resp_1" {
		t.Errorf("ID = %q, want resp_1", resp.ID)
	}
	if resp.Status != schema.StatusCompleted {
		t.Errorf("Status = %q", resp.Status)
	}
}

func TestCreateResponseHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "", 5*time.Second)

	_, err := client.CreateResponse(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error on 404")
	}
}

func TestGetResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses/resp_42" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"resp_42","object":"response","status":"in_progress"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "", 5*time.Second)

	resp, err := client.GetResponse(context.Background(), "resp_42")
	if err != nil {
		t.Fatalf("GetResponse() error: %v", err)
	}
	if resp.ID != "resp_42" || resp.Status != schema.StatusInProgress {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestCreateResponseStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req schema.ResponseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !req.Stream {
			t.Error("streaming request did not carry stream=true")
		}

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: response.created\n")
		fmt.Fprint(w, `data: {"type":"response.created","response":{"id":"resp_1","status":"in_progress"}}`+"\n\n")
		fmt.Fprint(w, "event: response.completed\n")
		fmt.Fprint(w, `data: {"type":"response.completed","response":{"id":"resp_1","status":"completed"}}`+"\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "", 5*time.Second)

	events, err := client.CreateResponseStream(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("CreateResponseStream() error: %v", err)
	}

	var got []stream.Event
	for ev := range events {
		got = append(got, ev)
	}

	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	if got[0].Kind != "response.created" || got[0].Response == nil || got[0].Response.ID != "resp_1" {
		t.Errorf("event 0 = %+v", got[0])
	}
	if got[1].Kind != "response.completed" || got[1].Response == nil || got[1].Response.Status != schema.StatusCompleted {
		t.Errorf("event 1 = %+v", got[1])
	}
	if got[2].Kind != stream.KindDone {
		t.Errorf("event 2 kind = %q, want done", got[2].Kind)
	}
}

func TestCreateResponseStreamHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "", 5*time.Second)

	_, err := client.CreateResponseStream(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestCreateResponseStreamClosesWithoutDone(t *testing.T) {
	// Stream drops mid-flight: the channel still closes so the consumer
	// can fall back to the last snapshot.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: response.in_progress\n")
		fmt.Fprint(w, `data: {"type":"response.in_progress","response":{"id":"resp_1","status":"in_progress"}}`+"\n\n")
	}))
	defer server.Close()

	client := NewClient(server.URL+"/v1", "", 5*time.Second)

	events, err := client.CreateResponseStream(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}

	var got []stream.Event
	for ev := range events {
		got = append(got, ev)
	}

	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].Kind != "response.in_progress" {
		t.Errorf("event kind = %q", got[0].Kind)
	}
}

func TestDecodeEvent(t *testing.T) {
	t.Run("envelope type wins over SSE line", func(t *testing.T) {
		ev := decodeEvent("response.created", []byte(`{"type":"response.completed","response":{"id":"resp_1"}}`))
		if ev.Kind != "response.completed" {
			t.Errorf("Kind = %q", ev.Kind)
		}
		if ev.Response == nil || ev.Response.ID != "resp_1" {
			t.Errorf("Response = %+v", ev.Response)
		}
	})

	t.Run("error envelope maps to error kind", func(t *testing.T) {
		ev := decodeEvent("", []byte(`{"type":"error","error":{"message":"boom"}}`))
		if ev.Kind != stream.KindError {
			t.Errorf("Kind = %q, want error", ev.Kind)
		}
		if len(ev.Raw) == 0 {
			t.Error("Raw payload not preserved for error extraction")
		}
	})

	t.Run("malformed payload keeps raw bytes", func(t *testing.T) {
		ev := decodeEvent("response.created", []byte(`{"type": truncated`))
		if ev.Kind != "response.created" {
			t.Errorf("Kind = %q", ev.Kind)
		}
		if string(ev.Raw) != `{"type": truncated` {
			t.Errorf("Raw = %q", ev.Raw)
		}
		if ev.Response != nil {
			t.Error("malformed payload should not decode a snapshot")
		}
	})
}
