// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package planner turns a free-text request into a structured CallPlan via an
// OpenAI-compatible chat completions endpoint.
//
// The adapter never fails outward: any collaborator failure (unreachable,
// non-2xx, malformed payload) degrades to plan.Default() so the caller can
// always proceed to field collection.
package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianDial/services/dial/plan"
)

// =============================================================================
// OpenAI Wire Types
// =============================================================================

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float32         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// systemPrompt constrains the model to the CallPlan shape. The slot keys are
// suggestions, not an exhaustive vocabulary; the model may emit others.
const systemPrompt = `You convert a user's request into a JSON call plan for an outbound phone call.
Respond with ONLY a JSON object, no markdown and no explanation, shaped as:
{
  "intent": "one sentence describing what the call should accomplish",
  "slots": {"key": "value", ...},
  "required": ["slot keys that must be filled before dialing"],
  "ivr": {"autoNavigate": true, "sendDigits": [], "languagePref": null},
  "safety": {"emergency": false, "warn": null}
}
Suggested slot keys (use others when they fit better): target, phone, when, count, account, callback, notes.
Only include slot values the user actually stated. Always list "phone" in required unless the user gave a number.
Set safety.emergency true and add a warn message if the request involves an emergency service.`

// =============================================================================
// Client Implementation
// =============================================================================

// Client submits natural-language requests to the planning collaborator.
//
// Thread Safety: Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewClient creates a Client from environment variables.
//
// Description:
//
//	Reads OPENAI_API_KEY and OPENAI_MODEL, defaulting the model to
//	"gpt-4o-mini". A missing key is not an error at construction time: the
//	client is still usable and every Plan call degrades to the default plan,
//	keeping the rest of the flow functional without planner access.
func NewClient() *Client {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	if apiKey == "" {
		slog.Warn("OPENAI_API_KEY not set, planner will serve default plans only")
	} else {
		slog.Info("Initializing planner client", slog.String("model", model))
	}
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithConfig creates a Client with explicit configuration. Useful for
// testing with mock servers.
func NewClientWithConfig(apiKey, model, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
	}
}

// Plan sends naturalText to the planning collaborator and maps the response
// into a CallPlan.
//
// Description:
//
//	Never returns an error. Every failure path logs, records a fallback
//	metric, and yields plan.Default(); a well-formed response passes through
//	plan.ParseOrDefault, which applies its own defensive defaulting.
//
// Thread Safety: This method is safe for concurrent use.
func (c *Client) Plan(ctx context.Context, naturalText string) plan.CallPlan {
	ctx, span := otel.Tracer("aleutian.dial").Start(ctx, "planner.Plan")
	defer span.End()
	span.SetAttributes(
		attribute.String("model", c.model),
		attribute.Int("request_len", len(naturalText)),
	)

	startTime := time.Now()
	raw, err := c.complete(ctx, naturalText)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "planner fallback")
		slog.Warn("Planner request failed, serving default plan",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(startTime)))
		recordPlanRequest("fallback", time.Since(startTime))
		return plan.Default()
	}

	parsed := plan.ParseOrDefault(raw)
	outcome := "ok"
	if parsed.Intent == plan.DefaultIntent && len(parsed.Slots) == 0 {
		// Model answered but produced nothing usable.
		outcome = "fallback"
	}
	recordPlanRequest(outcome, time.Since(startTime))

	span.SetAttributes(attribute.String("outcome", outcome))
	slog.Debug("Planner produced call plan",
		slog.String("outcome", outcome),
		slog.Int("slots", len(parsed.Slots)),
		slog.Int("required", len(parsed.Required)),
		slog.Duration("duration", time.Since(startTime)))
	return parsed
}

// complete performs one chat completion round trip and returns the raw
// assistant text.
func (c *Client) complete(ctx context.Context, naturalText string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("planner: API key is missing (OPENAI_API_KEY)")
	}

	reqPayload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: naturalText},
		},
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	reqBody, err := json.Marshal(reqPayload)
	if err != nil {
		return "", fmt.Errorf("planner: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("planner: creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("planner: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("planner: reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("planner: API returned status %d", resp.StatusCode)
	}

	var apiResp chatResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("planner: parsing response JSON: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("planner: API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("planner: returned no choices")
	}

	return apiResp.Choices[0].Message.Content, nil
}
