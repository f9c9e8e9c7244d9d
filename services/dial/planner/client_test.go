// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/AleutianAI/AleutianDial/services/dial/plan"
)

// completionBody wraps assistant content in the chat completions envelope.
func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id": "chatcmpl-test",
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func TestPlan_MapsStructuredResponse(t *testing.T) {
	planJSON := `{
		"intent": "Order a large pepperoni pizza",
		"slots": {"target": "Pizza Palace", "count": "1"},
		"required": ["target", "phone"],
		"ivr": {"autoNavigate": true, "sendDigits": []},
		"safety": {"emergency": false}
	}`

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request decode: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v, want system+user", req.Messages)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody(t, planJSON))
	}))
	defer srv.Close()

	c := NewClientWithConfig("test-key", "gpt-4o-mini", srv.URL)
	got := c.Plan(context.Background(), "Call Pizza Palace and order a large pepperoni")

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if got.Intent != "Order a large pepperoni pizza" {
		t.Errorf("Intent = %q", got.Intent)
	}
	if got.Slot("target") != "Pizza Palace" {
		t.Errorf("target = %q", got.Slot("target"))
	}
	if !reflect.DeepEqual(got.Required, []string{"target", "phone"}) {
		t.Errorf("Required = %v", got.Required)
	}
}

func TestPlan_ProviderErrorFallsBackToDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"type": "overloaded", "message": "try later"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClientWithConfig("test-key", "gpt-4o-mini", srv.URL)
	got := c.Plan(context.Background(), "Call the dentist")

	if !reflect.DeepEqual(got, plan.Default()) {
		t.Errorf("Plan = %+v, want Default()", got)
	}
}

func TestPlan_MalformedPayloadFallsBackToDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(completionBody(t, "Sorry, I can't produce JSON today."))
	}))
	defer srv.Close()

	c := NewClientWithConfig("test-key", "gpt-4o-mini", srv.URL)
	got := c.Plan(context.Background(), "Call somebody")

	if !reflect.DeepEqual(got, plan.Default()) {
		t.Errorf("Plan = %+v, want Default()", got)
	}
}

func TestPlan_UnreachableCollaboratorFallsBackToDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClientWithConfig("test-key", "gpt-4o-mini", srv.URL)
	got := c.Plan(context.Background(), "Call somebody")

	if !reflect.DeepEqual(got, plan.Default()) {
		t.Errorf("Plan = %+v, want Default()", got)
	}
}

func TestPlan_MissingKeyServesDefaultWithoutNetwork(t *testing.T) {
	c := NewClientWithConfig("", "gpt-4o-mini", "http://127.0.0.1:0")
	got := c.Plan(context.Background(), "Call Pizza Palace now, no number yet")

	if !reflect.DeepEqual(got, plan.Default()) {
		t.Errorf("Plan = %+v, want Default()", got)
	}
	if !contains(got.Required, "phone") {
		t.Errorf("default Required = %v, want phone listed", got.Required)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
