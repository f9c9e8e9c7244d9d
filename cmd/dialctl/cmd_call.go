// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianDial/services/dial"
	"github.com/AleutianAI/AleutianDial/services/dial/plan"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	httpTimeout = 90 * time.Second
)

func newCallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "call [request...]",
		Short: "Plan and place a call from a natural-language request",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCallCommand,
	}
}

func runCallCommand(_ *cobra.Command, args []string) error {
	natural := strings.Join(args, " ")
	client := &http.Client{Timeout: httpTimeout}

	// 1. Obtain a call plan from the server.
	var callPlan plan.CallPlan
	status, err := postJSON(client, "/v1/dial/plan", dial.PlanRequest{Natural: natural}, &callPlan)
	if err != nil {
		return fmt.Errorf("planning request failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("planning request returned status %d", status)
	}
	renderPlan(callPlan)

	if callPlan.Safety.Emergency {
		fmt.Println(warnStyle.Render("⚠  This looks like an emergency. Dial 911 yourself if so."))
		if callPlan.Safety.Warn != "" {
			fmt.Println(warnStyle.Render("   " + callPlan.Safety.Warn))
		}
	}

	// 2. Start a collection session and answer prompts one at a time.
	var session dial.SessionResponse
	status, err = postJSON(client, "/v1/dial/session/start", dial.SessionStartRequest{Plan: callPlan}, &session)
	if err != nil {
		return fmt.Errorf("session start failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("session start returned status %d", status)
	}

	for session.State == "AWAITING_FIELD" && session.Prompt != nil {
		value, err := askField(*session.Prompt)
		if err != nil {
			// Form aborted: cancel the session server-side and stop cleanly.
			var cancelled dial.SessionResponse
			_, _ = postJSON(client, "/v1/dial/session/cancel",
				dial.SessionCancelRequest{SessionID: session.SessionID}, &cancelled)
			fmt.Println(labelStyle.Render("Cancelled. No call was placed."))
			return nil
		}

		var next dial.SessionResponse
		status, err = postJSON(client, "/v1/dial/session/submit", dial.SessionSubmitRequest{
			SessionID: session.SessionID,
			Value:     value,
		}, &next)
		if err != nil {
			return fmt.Errorf("field submission failed: %w", err)
		}
		if status == http.StatusBadRequest {
			// Blank answer; the same field is still pending.
			fmt.Println(warnStyle.Render("A value is required."))
			continue
		}
		if status != http.StatusOK {
			return fmt.Errorf("field submission returned status %d", status)
		}
		next.SessionID = orDefault(next.SessionID, session.SessionID)
		session = next
	}

	// 3. Report the placement outcome.
	renderResult(session.Result)
	return nil
}

// askField shows one input form for a missing field and returns the answer.
func askField(prompt plan.MissingFieldPrompt) (string, error) {
	var value string
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title(prompt.Label).
			Placeholder(prompt.Placeholder).
			Description(prompt.Description).
			Value(&value),
	))
	if err := form.Run(); err != nil {
		return "", err
	}
	return value, nil
}

func renderPlan(p plan.CallPlan) {
	fmt.Println(titleStyle.Render("Call plan"))
	fmt.Printf("  %s %s\n", labelStyle.Render("intent:"), p.Intent)
	for k, v := range p.Slots {
		if strings.TrimSpace(v) == "" {
			continue
		}
		fmt.Printf("  %s %s\n", labelStyle.Render(k+":"), v)
	}
	if len(p.Required) > 0 {
		fmt.Printf("  %s %s\n", labelStyle.Render("required:"), strings.Join(p.Required, ", "))
	}
}

func renderResult(result *plan.CallResult) {
	if result == nil {
		fmt.Println(warnStyle.Render("No call was placed."))
		return
	}
	if result.Error != "" {
		fmt.Println(errStyle.Render("Call failed: " + result.Error))
		return
	}
	fmt.Println(okStyle.Render(fmt.Sprintf("Call placed: %s (%s)", result.Sid, result.Status)))
	if result.To != "" {
		fmt.Printf("  %s %s\n", labelStyle.Render("to:"), result.To)
	}
}

// postJSON posts body to path on the configured server and decodes the
// response into out. Returns the HTTP status code.
func postJSON(client *http.Client, path string, body, out any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshaling request: %w", err)
	}

	resp, err := client.Post(strings.TrimRight(serverURL, "/")+path,
		"application/json", bytes.NewBuffer(payload))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}
	if out != nil && len(respBody) > 0 {
		// Error bodies use a different shape; ignore decode failures for
		// non-2xx so the caller can branch on status alone.
		if err := json.Unmarshal(respBody, out); err != nil && resp.StatusCode < 300 {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
