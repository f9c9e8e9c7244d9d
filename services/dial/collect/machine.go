// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package collect implements the missing-field collection state machine.
//
// Given a call plan with unmet required slots, the machine prompts for each
// missing slot in Required order, one at a time, records answers, supports
// cancellation, and on completion triggers call placement with the collected
// values merged over the plan.
package collect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/AleutianAI/AleutianDial/services/dial/plan"
)

// State identifies where the machine is in its collection lifecycle.
type State string

const (
	// StateIdle means no active session.
	StateIdle State = "IDLE"

	// StateAwaitingField means the machine is prompting for one missing slot.
	StateAwaitingField State = "AWAITING_FIELD"

	// StateSubmitting is the transient sub-state while placement is in flight.
	StateSubmitting State = "SUBMITTING"
)

var (
	// ErrEmptyValue rejects a field submission that is blank after trimming.
	// The machine stays on the same prompt.
	ErrEmptyValue = errors.New("collect: field value must not be empty")

	// ErrNotCollecting rejects SubmitField outside of AWAITING_FIELD.
	ErrNotCollecting = errors.New("collect: no field is being collected")
)

// Placer places the outbound call once every required slot is filled. The
// destination is the effective phone slot, already merged and normalized; the
// plan is the fully merged plan, handed over for call metadata (IVR digits,
// callback hints).
type Placer interface {
	PlaceCall(ctx context.Context, to string, p plan.CallPlan) *plan.CallResult
}

// PlacerFunc adapts a function to the Placer interface.
type PlacerFunc func(ctx context.Context, to string, p plan.CallPlan) *plan.CallResult

// PlaceCall implements Placer.
func (f PlacerFunc) PlaceCall(ctx context.Context, to string, p plan.CallPlan) *plan.CallResult {
	return f(ctx, to, p)
}

// StepResult is the outcome of one machine transition.
type StepResult struct {
	// State is the machine state after the transition.
	State State `json:"state"`

	// Prompt asks for the next missing field. Set only in AWAITING_FIELD.
	Prompt *plan.MissingFieldPrompt `json:"prompt,omitempty"`

	// Result is the placement outcome. Set only when the transition triggered
	// placement.
	Result *plan.CallResult `json:"result,omitempty"`

	// Plan is the effective merged plan at the time of the transition. On a
	// failed placement it carries all collected values so nothing the user
	// entered is lost.
	Plan *plan.CallPlan `json:"plan,omitempty"`

	// Cancelled is true when the transition was an explicit cancellation.
	Cancelled bool `json:"cancelled,omitempty"`
}

// session is the machine-owned collection state: the plan being completed,
// the fields still pending in first-missing-first order, and the answers
// collected so far. Destroyed on successful placement or cancellation.
type session struct {
	plan      plan.CallPlan
	pending   []string
	collected map[string]string
}

// Machine walks a user through supplying missing required slot values.
//
// One Machine serves one UI session; there is no shared state across
// sessions. All methods are safe for concurrent use, though the intended
// usage is one outstanding user action at a time.
type Machine struct {
	placer Placer

	mu   sync.Mutex
	st   State
	sess *session
}

// NewMachine creates an idle machine that places calls through placer.
func NewMachine(placer Placer) *Machine {
	return &Machine{placer: placer, st: StateIdle}
}

// State returns the current machine state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.st
}

// CurrentPrompt returns the prompt for the field currently being collected,
// or nil when the machine is not awaiting a field.
func (m *Machine) CurrentPrompt() *plan.MissingFieldPrompt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st != StateAwaitingField || m.sess == nil || len(m.sess.pending) == 0 {
		return nil
	}
	p := plan.PromptFor(m.sess.pending[0])
	return &p
}

// Start begins a collection session for p.
//
// Description:
//
//	Computes the missing required fields via the merge engine. A plan with
//	every required field present never shows a prompt: the machine goes
//	straight to placement and returns to idle. Otherwise it enters
//	AWAITING_FIELD for the first missing slot with an empty collected set.
//
//	Malformed plans (nil slots or required) are treated as having nothing to
//	collect, never as an error.
func (m *Machine) Start(ctx context.Context, p plan.CallPlan) (*StepResult, error) {
	m.mu.Lock()

	merged := plan.Merge(p, nil)
	if len(merged.Missing) == 0 {
		m.sess = &session{plan: merged.Plan, collected: map[string]string{}}
		return m.placeLocked(ctx)
	}

	m.sess = &session{
		plan:      merged.Plan,
		pending:   merged.Missing,
		collected: map[string]string{},
	}
	m.st = StateAwaitingField
	prompt := plan.PromptFor(m.sess.pending[0])
	m.mu.Unlock()

	return &StepResult{State: StateAwaitingField, Prompt: &prompt}, nil
}

// SubmitField records the answer for the field currently being prompted.
//
// Description:
//
//	Valid only in AWAITING_FIELD. A value that is blank after trimming is
//	rejected with ErrEmptyValue and the machine does not transition. On
//	acceptance the trimmed value is recorded, the pending list is recomputed
//	as the original missing set minus everything collected so far, and the
//	machine either advances to the next prompt or, when nothing remains,
//	triggers placement and returns to idle. An answered field is never
//	re-prompted for the lifetime of the session.
func (m *Machine) SubmitField(ctx context.Context, value string) (*StepResult, error) {
	m.mu.Lock()

	if m.st != StateAwaitingField || m.sess == nil || len(m.sess.pending) == 0 {
		m.mu.Unlock()
		return nil, ErrNotCollecting
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		field := m.sess.pending[0]
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrEmptyValue, field)
	}

	m.sess.collected[m.sess.pending[0]] = trimmed

	remaining := make([]string, 0, len(m.sess.pending))
	for _, f := range m.sess.pending {
		if _, answered := m.sess.collected[f]; !answered {
			remaining = append(remaining, f)
		}
	}
	m.sess.pending = remaining

	if len(remaining) > 0 {
		prompt := plan.PromptFor(remaining[0])
		m.mu.Unlock()
		return &StepResult{State: StateAwaitingField, Prompt: &prompt}, nil
	}

	return m.placeLocked(ctx)
}

// Cancel discards the active session without placing a call.
//
// Valid in any state; cancelling an idle machine is a no-op. It cannot cancel
// an external call already placed.
func (m *Machine) Cancel() *StepResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sess = nil
	m.st = StateIdle
	return &StepResult{State: StateIdle, Cancelled: true}
}

// placeLocked merges collected answers into the plan, dials the effective
// phone slot, and returns the machine to idle. Called with m.mu held; releases
// the lock itself so the external call runs outside the critical section.
func (m *Machine) placeLocked(ctx context.Context) (*StepResult, error) {
	sess := m.sess
	m.st = StateSubmitting
	m.mu.Unlock()

	merged := plan.Merge(sess.plan, sess.collected)
	// Normalization is mandatory before dialing; the merge engine has already
	// canonicalized the phone slot where possible.
	to := merged.Plan.Slot(plan.PhoneSlot)
	result := m.placer.PlaceCall(ctx, to, merged.Plan)

	m.mu.Lock()
	m.st = StateIdle
	m.sess = nil
	m.mu.Unlock()

	// On a failed placement the returned plan carries every collected value,
	// so the caller can restart a session without re-entering anything.
	effective := merged.Plan
	return &StepResult{State: StateIdle, Result: result, Plan: &effective}, nil
}
