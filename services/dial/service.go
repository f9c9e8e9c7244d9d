// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dial exposes the call planning and placement flow over HTTP: plan a
// call from natural language, collect missing required fields one at a time,
// and place the call through the telephony provider.
package dial

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianDial/services/dial/collect"
	"github.com/AleutianAI/AleutianDial/services/dial/plan"
	"github.com/AleutianAI/AleutianDial/services/dial/telephony"
)

// ErrSessionNotFound reports an unknown or already-terminated session id.
var ErrSessionNotFound = errors.New("dial: session not found")

// Planner produces a CallPlan from natural language. It never fails; failures
// degrade to the default plan inside the adapter.
type Planner interface {
	Plan(ctx context.Context, naturalText string) plan.CallPlan
}

// CallPlacer places an outbound call and maps every outcome to a CallResult.
type CallPlacer interface {
	PlaceCall(ctx context.Context, to string, opts telephony.PlaceOptions) *plan.CallResult
}

// Service owns the planner, the call placer, and the in-memory registry of
// active collection sessions. Sessions are transient: uuid-keyed machines
// that disappear on completion or cancellation. There is no persistence and
// no cross-session shared state beyond the registry map itself.
//
// Thread Safety: Service is safe for concurrent use.
type Service struct {
	planner Planner
	placer  CallPlacer

	mu       sync.RWMutex
	sessions map[string]*collect.Machine
}

// NewService creates a Service wired to the given collaborator adapters.
func NewService(planner Planner, placer CallPlacer) *Service {
	return &Service{
		planner:  planner,
		placer:   placer,
		sessions: make(map[string]*collect.Machine),
	}
}

// Plan maps natural language to a CallPlan via the planning adapter.
func (s *Service) Plan(ctx context.Context, naturalText string) plan.CallPlan {
	return s.planner.Plan(ctx, naturalText)
}

// PlaceCall places a call directly, bypassing collection. Used by the /call
// endpoint where the caller supplies a ready destination.
func (s *Service) PlaceCall(ctx context.Context, to string, opts telephony.PlaceOptions) *plan.CallResult {
	return s.placer.PlaceCall(ctx, to, opts)
}

// StartSession begins a collection session for p.
//
// Description:
//
//	When the plan has no unmet required fields the call is placed immediately
//	and no session is registered; the returned id is empty. Otherwise a new
//	machine is registered under a fresh uuid and the first prompt returned.
func (s *Service) StartSession(ctx context.Context, p plan.CallPlan) (string, *collect.StepResult, error) {
	machine := collect.NewMachine(s.sessionPlacer())

	step, err := machine.Start(ctx, p)
	if err != nil {
		return "", nil, err
	}
	if step.State != collect.StateAwaitingField {
		// Placed (or failed) immediately; nothing to keep.
		return "", step, nil
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = machine
	s.mu.Unlock()
	return id, step, nil
}

// SubmitField records a field value for the session. A terminal transition
// (placement attempted) removes the session from the registry.
func (s *Service) SubmitField(ctx context.Context, sessionID, value string) (*collect.StepResult, error) {
	machine, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	step, err := machine.SubmitField(ctx, value)
	if err != nil {
		return nil, err
	}
	if step.State != collect.StateAwaitingField {
		s.dropSession(sessionID)
	}
	return step, nil
}

// CancelSession discards the session without placing a call.
func (s *Service) CancelSession(sessionID string) (*collect.StepResult, error) {
	machine, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	step := machine.Cancel()
	s.dropSession(sessionID)
	return step, nil
}

// SessionState returns the current state and prompt for an active session.
func (s *Service) SessionState(sessionID string) (collect.State, *plan.MissingFieldPrompt, error) {
	machine, err := s.session(sessionID)
	if err != nil {
		return "", nil, err
	}
	return machine.State(), machine.CurrentPrompt(), nil
}

// TelephonyConfigured reports whether call placement has provider credentials.
func (s *Service) TelephonyConfigured() bool {
	type configured interface{ Configured() bool }
	if c, ok := s.placer.(configured); ok {
		return c.Configured()
	}
	return true
}

func (s *Service) session(id string) (*collect.Machine, error) {
	s.mu.RLock()
	machine, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return machine, nil
}

func (s *Service) dropSession(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// sessionPlacer adapts the CallPlacer to the collection machine, carrying the
// plan's IVR digit sequence into the provider request.
func (s *Service) sessionPlacer() collect.Placer {
	return collect.PlacerFunc(func(ctx context.Context, to string, p plan.CallPlan) *plan.CallResult {
		opts := telephony.PlaceOptions{}
		if p.IVR.AutoNavigate && len(p.IVR.SendDigits) > 0 {
			opts.SendDigits = strings.Join(p.IVR.SendDigits, "")
		}
		return s.placer.PlaceCall(ctx, to, opts)
	})
}
