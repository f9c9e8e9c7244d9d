// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultIntent is the intent used when the planner cannot produce one.
const DefaultIntent = "Make the requested call and achieve the stated outcome."

// Default returns the safe fallback plan used whenever the planning
// collaborator is unreachable or returns something unusable. Defaulting is a
// designed contract, not an exception handler: the caller can always proceed
// to field collection with this plan.
func Default() CallPlan {
	return CallPlan{
		Intent:   DefaultIntent,
		Slots:    map[string]string{},
		Required: []string{"target", PhoneSlot},
		IVR: IVRSettings{
			AutoNavigate: true,
			SendDigits:   []string{},
		},
		Safety: SafetyFlags{Emergency: false},
	}
}

// ParseOrDefault extracts a CallPlan from a raw model response.
//
// Description:
//
//	Models wrap JSON in markdown fences and prose, so the payload is located
//	by stripping fences and slicing from the first "{" to the last "}". Any
//	failure (no JSON, unparsable JSON) yields Default() rather than an error.
//	Parsed plans get defensive defaulting: nil slots/required become empty
//	collections and a blank intent becomes DefaultIntent, so downstream
//	components never see a structurally incomplete plan.
func ParseOrDefault(raw string) CallPlan {
	jsonStr, err := extractJSON(raw)
	if err != nil {
		return Default()
	}

	var parsed CallPlan
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return Default()
	}

	if parsed.Slots == nil {
		parsed.Slots = map[string]string{}
	}
	if parsed.Required == nil {
		parsed.Required = []string{}
	}
	if parsed.IVR.SendDigits == nil {
		parsed.IVR.SendDigits = []string{}
	}
	if strings.TrimSpace(parsed.Intent) == "" {
		parsed.Intent = DefaultIntent
	}
	return parsed
}

// extractJSON locates a JSON object inside a model response.
func extractJSON(response string) (string, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return "", fmt.Errorf("empty response from model")
	}

	// Clean up markdown code blocks
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return response[startIdx : endIdx+1], nil
}
