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

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianDial/services/dial/collect"
	"github.com/AleutianAI/AleutianDial/services/dial/plan"
	"github.com/AleutianAI/AleutianDial/services/dial/telephony"
)

// Handlers holds the HTTP handlers for the dial service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates the handlers for svc.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// getOrCreateRequestID returns the inbound X-Request-ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// HandlePlan handles POST /v1/dial/plan.
//
// Description:
//
//	Maps free text to a CallPlan. Always responds 200 with a plan-shaped
//	body: planner failures and even an unreadable request body degrade to the
//	default plan rather than a non-2xx, so the caller can always proceed to
//	field collection.
//
// Thread Safety: This method is safe for concurrent use.
func (h *Handlers) HandlePlan(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandlePlan")

	var req PlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Unreadable plan request, serving default plan",
			slog.String("error", err.Error()))
		c.JSON(http.StatusOK, plan.Default())
		return
	}

	result := h.svc.Plan(c.Request.Context(), req.Natural)
	logger.Debug("Plan produced",
		slog.Int("slots", len(result.Slots)),
		slog.Int("required", len(result.Required)))
	c.JSON(http.StatusOK, result)
}

// HandleCall handles POST /v1/dial/call.
//
// Description:
//
//	Places a call to a caller-supplied destination. Status mapping follows
//	the placement error taxonomy: 500 for missing-credentials, 400 for
//	missing-destination / missing-source / invalid-request, the provider's
//	own status for provider failures, 200 on acceptance.
//
// Thread Safety: This method is safe for concurrent use.
func (h *Handlers) HandleCall(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCall")

	var req CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "request body must be JSON with a \"to\" field",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result := h.svc.PlaceCall(c.Request.Context(), req.To, telephony.PlaceOptions{
		From:       req.From,
		URL:        req.URL,
		SendDigits: req.SendDigits,
	})

	if result.Error != "" {
		logger.Warn("Placement rejected",
			slog.String("error", result.Error),
			slog.Int("status", result.HTTPStatus))
	}
	c.JSON(statusFor(result), result)
}

// HandleSessionStart handles POST /v1/dial/session/start.
func (h *Handlers) HandleSessionStart(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSessionStart")

	var req SessionStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "request body must be JSON with a \"plan\" field",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	id, step, err := h.svc.StartSession(c.Request.Context(), req.Plan)
	if err != nil {
		// Start has no rejectable inputs; treat any failure as internal.
		logger.Error("Session start failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "SESSION_START_FAILED",
		})
		return
	}

	logger.Debug("Session started",
		slog.String("session_id", id),
		slog.String("state", string(step.State)))
	c.JSON(http.StatusOK, sessionResponse(id, step))
}

// HandleSessionSubmit handles POST /v1/dial/session/submit.
//
// Responses:
//
//	200 OK: next prompt or placement outcome
//	400 Bad Request: blank value (no transition; same field stays pending)
//	404 Not Found: unknown session
//	409 Conflict: session is not awaiting a field
func (h *Handlers) HandleSessionSubmit(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSessionSubmit")

	var req SessionSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "request body must be JSON with \"session_id\" and \"value\"",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	step, err := h.svc.SubmitField(c.Request.Context(), req.SessionID, req.Value)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "no active session with that id",
			Code:  "SESSION_NOT_FOUND",
		})
		return
	case errors.Is(err, collect.ErrEmptyValue):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "field value must not be empty",
			Code:  "EMPTY_FIELD_VALUE",
		})
		return
	case errors.Is(err, collect.ErrNotCollecting):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: "session is not awaiting a field",
			Code:  "NOT_COLLECTING",
		})
		return
	case err != nil:
		logger.Error("Field submission failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "SUBMIT_FAILED",
		})
		return
	}

	id := req.SessionID
	if step.State != collect.StateAwaitingField {
		id = "" // session is gone
	}
	c.JSON(http.StatusOK, sessionResponse(id, step))
}

// HandleSessionCancel handles POST /v1/dial/session/cancel.
func (h *Handlers) HandleSessionCancel(c *gin.Context) {
	var req SessionCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "request body must be JSON with \"session_id\"",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	step, err := h.svc.CancelSession(req.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "no active session with that id",
			Code:  "SESSION_NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, sessionResponse("", step))
}

// HandleSessionState handles GET /v1/dial/session/:id.
func (h *Handlers) HandleSessionState(c *gin.Context) {
	id := c.Param("id")
	state, prompt, err := h.svc.SessionState(id)
	if errors.Is(err, ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "no active session with that id",
			Code:  "SESSION_NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{
		SessionID: id,
		State:     string(state),
		Prompt:    prompt,
	})
}

// HandleHealth handles GET /v1/dial/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthBody(h.svc))
}

// HandleReady handles GET /v1/dial/ready. The service has no warm-up phase;
// readiness mirrors health.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, healthBody(h.svc))
}

func healthBody(svc *Service) HealthResponse {
	telephonyStatus := "configured"
	if !svc.TelephonyConfigured() {
		telephonyStatus = "unconfigured"
	}
	return HealthResponse{Status: "ok", Telephony: telephonyStatus}
}

// statusFor maps a placement result to the HTTP status to surface.
func statusFor(result *plan.CallResult) int {
	if result.HTTPStatus != 0 {
		return result.HTTPStatus
	}
	if result.Error != "" {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

func sessionResponse(id string, step *collect.StepResult) SessionResponse {
	return SessionResponse{
		SessionID: id,
		State:     string(step.State),
		Prompt:    step.Prompt,
		Result:    step.Result,
		Plan:      step.Plan,
		Cancelled: step.Cancelled,
	}
}
