// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dial

import "github.com/AleutianAI/AleutianDial/services/dial/plan"

// ErrorResponse is the uniform error body for all dial endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// PlanRequest is the body of POST /v1/dial/plan.
type PlanRequest struct {
	Natural string `json:"natural"`
}

// CallRequest is the body of POST /v1/dial/call.
type CallRequest struct {
	To         string `json:"to"`
	From       string `json:"from,omitempty"`
	URL        string `json:"url,omitempty"`
	SendDigits string `json:"send_digits,omitempty"`
}

// SessionStartRequest is the body of POST /v1/dial/session/start.
type SessionStartRequest struct {
	Plan plan.CallPlan `json:"plan"`
}

// SessionSubmitRequest is the body of POST /v1/dial/session/submit.
type SessionSubmitRequest struct {
	SessionID string `json:"session_id"`
	Value     string `json:"value"`
}

// SessionCancelRequest is the body of POST /v1/dial/session/cancel.
type SessionCancelRequest struct {
	SessionID string `json:"session_id"`
}

// SessionResponse describes a collection session after a transition. A
// terminal transition (placement or cancellation) omits the session id; the
// session no longer exists.
type SessionResponse struct {
	SessionID string                   `json:"session_id,omitempty"`
	State     string                   `json:"state"`
	Prompt    *plan.MissingFieldPrompt `json:"prompt,omitempty"`
	Result    *plan.CallResult         `json:"result,omitempty"`
	Plan      *plan.CallPlan           `json:"plan,omitempty"`
	Cancelled bool                     `json:"cancelled,omitempty"`
}

// HealthResponse is the body of GET /v1/dial/health and /ready.
type HealthResponse struct {
	Status    string `json:"status"`
	Telephony string `json:"telephony"`
}
