// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package collect

import (
	"context"
	"errors"
	"testing"

	"github.com/AleutianAI/AleutianDial/services/dial/plan"
)

// recordingPlacer captures placement calls for assertions.
type recordingPlacer struct {
	calls  []string
	result *plan.CallResult
}

func (r *recordingPlacer) PlaceCall(_ context.Context, to string, _ plan.CallPlan) *plan.CallResult {
	r.calls = append(r.calls, to)
	if r.result != nil {
		return r.result
	}
	return &plan.CallResult{Sid: "CA123", Status: "queued", To: to}
}

func twoFieldPlan() plan.CallPlan {
	return plan.CallPlan{
		Intent:   "Order a pizza",
		Slots:    map[string]string{},
		Required: []string{"target", "phone"},
	}
}

func TestMachine_StartPromptsFirstMissing(t *testing.T) {
	placer := &recordingPlacer{}
	m := NewMachine(placer)

	step, err := m.Start(context.Background(), twoFieldPlan())
	if err != nil {
		t.Fatalf("Start error = %v", err)
	}

	if step.State != StateAwaitingField {
		t.Fatalf("State = %s, want AWAITING_FIELD", step.State)
	}
	if step.Prompt == nil || step.Prompt.Field != "target" {
		t.Fatalf("Prompt = %+v, want prompt for target", step.Prompt)
	}
	if len(placer.calls) != 0 {
		t.Errorf("placement attempted with fields still missing")
	}
}

func TestMachine_CompletePlanSkipsCollection(t *testing.T) {
	placer := &recordingPlacer{}
	m := NewMachine(placer)

	p := plan.CallPlan{
		Slots:    map[string]string{"target": "Pizza Palace", "phone": "5551234567"},
		Required: []string{"target", "phone"},
	}

	step, err := m.Start(context.Background(), p)
	if err != nil {
		t.Fatalf("Start error = %v", err)
	}

	if step.State != StateIdle {
		t.Errorf("State = %s, want IDLE after immediate placement", step.State)
	}
	if step.Prompt != nil {
		t.Error("complete plan produced a prompt")
	}
	if len(placer.calls) != 1 || placer.calls[0] != "+15551234567" {
		t.Errorf("placement calls = %v, want one normalized dial", placer.calls)
	}
	if step.Result == nil || step.Result.Sid != "CA123" {
		t.Errorf("Result = %+v, want provider acceptance", step.Result)
	}
}

func TestMachine_ProgressionThroughFields(t *testing.T) {
	placer := &recordingPlacer{}
	m := NewMachine(placer)
	ctx := context.Background()

	if _, err := m.Start(ctx, twoFieldPlan()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	step, err := m.SubmitField(ctx, "Pizza Palace")
	if err != nil {
		t.Fatalf("SubmitField(target) error = %v", err)
	}
	if step.State != StateAwaitingField || step.Prompt == nil || step.Prompt.Field != "phone" {
		t.Fatalf("after target: %+v, want prompt for phone", step)
	}

	step, err = m.SubmitField(ctx, "+15551234567")
	if err != nil {
		t.Fatalf("SubmitField(phone) error = %v", err)
	}
	if step.State != StateIdle {
		t.Errorf("State = %s, want IDLE after final field", step.State)
	}
	if len(placer.calls) != 1 || placer.calls[0] != "+15551234567" {
		t.Errorf("placement calls = %v", placer.calls)
	}
	if m.State() != StateIdle {
		t.Errorf("machine state = %s, want IDLE", m.State())
	}
}

func TestMachine_SubmitNormalizesCollectedPhone(t *testing.T) {
	placer := &recordingPlacer{}
	m := NewMachine(placer)
	ctx := context.Background()

	p := plan.CallPlan{
		Slots:    map[string]string{"target": "Pizza Palace"},
		Required: []string{"phone"},
	}
	if _, err := m.Start(ctx, p); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	if _, err := m.SubmitField(ctx, "555-123-4567"); err != nil {
		t.Fatalf("SubmitField error = %v", err)
	}

	if len(placer.calls) != 1 || placer.calls[0] != "+15551234567" {
		t.Errorf("dialed %v, want normalized number", placer.calls)
	}
}

func TestMachine_EmptySubmissionRejected(t *testing.T) {
	m := NewMachine(&recordingPlacer{})
	ctx := context.Background()

	if _, err := m.Start(ctx, twoFieldPlan()); err != nil {
		t.Fatalf("Start error = %v", err)
	}

	_, err := m.SubmitField(ctx, "   ")
	if !errors.Is(err, ErrEmptyValue) {
		t.Fatalf("error = %v, want ErrEmptyValue", err)
	}

	// No transition: still prompting for the same field.
	if prompt := m.CurrentPrompt(); prompt == nil || prompt.Field != "target" {
		t.Errorf("CurrentPrompt = %+v, want target still pending", prompt)
	}
}

func TestMachine_SubmitWhileIdleRejected(t *testing.T) {
	m := NewMachine(&recordingPlacer{})

	_, err := m.SubmitField(context.Background(), "anything")
	if !errors.Is(err, ErrNotCollecting) {
		t.Errorf("error = %v, want ErrNotCollecting", err)
	}
}

func TestMachine_CancelDiscardsSession(t *testing.T) {
	placer := &recordingPlacer{}
	m := NewMachine(placer)
	ctx := context.Background()

	if _, err := m.Start(ctx, twoFieldPlan()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	if _, err := m.SubmitField(ctx, "Pizza Palace"); err != nil {
		t.Fatalf("SubmitField error = %v", err)
	}

	step := m.Cancel()

	if step.State != StateIdle || !step.Cancelled {
		t.Errorf("Cancel = %+v, want cancelled idle", step)
	}
	if len(placer.calls) != 0 {
		t.Errorf("cancel placed a call: %v", placer.calls)
	}
	if m.CurrentPrompt() != nil {
		t.Error("prompt survived cancellation")
	}

	// Cancelling an idle machine is a no-op, not an error.
	again := m.Cancel()
	if again.State != StateIdle {
		t.Errorf("second Cancel state = %s", again.State)
	}
}

func TestMachine_MalformedPlanDefaultsToNothingToCollect(t *testing.T) {
	placer := &recordingPlacer{result: &plan.CallResult{Error: "missing-destination", Status: "failed"}}
	m := NewMachine(placer)

	// Nil slots and nil required must not crash; there is nothing to collect,
	// so the machine proceeds straight to (failing) placement.
	step, err := m.Start(context.Background(), plan.CallPlan{})
	if err != nil {
		t.Fatalf("Start error = %v", err)
	}
	if step.State != StateIdle {
		t.Errorf("State = %s, want IDLE", step.State)
	}
	if step.Result == nil || step.Result.Error != "missing-destination" {
		t.Errorf("Result = %+v, want missing-destination surfaced", step.Result)
	}
}

func TestMachine_FailedPlacementKeepsCollectedValues(t *testing.T) {
	placer := &recordingPlacer{result: &plan.CallResult{Error: "twilio is down", Status: "failed", HTTPStatus: 502}}
	m := NewMachine(placer)
	ctx := context.Background()

	if _, err := m.Start(ctx, twoFieldPlan()); err != nil {
		t.Fatalf("Start error = %v", err)
	}
	if _, err := m.SubmitField(ctx, "Pizza Palace"); err != nil {
		t.Fatalf("SubmitField error = %v", err)
	}
	step, err := m.SubmitField(ctx, "5551234567")
	if err != nil {
		t.Fatalf("SubmitField error = %v", err)
	}

	if step.Result == nil || step.Result.Error == "" {
		t.Fatalf("Result = %+v, want failure surfaced", step.Result)
	}
	if step.Plan == nil {
		t.Fatal("Plan missing from failed placement step")
	}
	if step.Plan.Slot("target") != "Pizza Palace" || step.Plan.Slot("phone") != "+15551234567" {
		t.Errorf("collected values lost: %v", step.Plan.Slots)
	}
}
