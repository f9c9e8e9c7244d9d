// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package plan defines the call plan data model and the slot merge engine.
//
// A CallPlan is the structured output of the planning adapter: an intent, an
// open slot mapping, and the ordered list of slot keys that must be filled
// before a call may be placed. Plans are transient; they live in one
// UI-session for the duration of a single planning+calling interaction.
package plan

import "strings"

// CallPlan describes an intended outbound call.
//
// Slots is an open mapping: the planner may emit keys beyond the suggested
// vocabulary, and consumers treat absent keys as unset, never as an error.
// Required lists slot keys that must be non-empty (after trimming) before
// placement is attempted; Slots may contain keys not listed in Required.
type CallPlan struct {
	Intent   string            `json:"intent"`
	Slots    map[string]string `json:"slots"`
	Required []string          `json:"required"`
	IVR      IVRSettings       `json:"ivr"`
	Safety   SafetyFlags       `json:"safety"`
}

// IVRSettings carries phone-tree handling hints for the placed call.
type IVRSettings struct {
	AutoNavigate bool     `json:"autoNavigate"`
	SendDigits   []string `json:"sendDigits"`
	LanguagePref string   `json:"languagePref,omitempty"`
}

// SafetyFlags carries planner-emitted safety signals.
type SafetyFlags struct {
	Emergency bool   `json:"emergency"`
	Warn      string `json:"warn,omitempty"`
}

// MissingFieldPrompt is a human-readable ask for one missing slot. Derived on
// demand, never stored.
type MissingFieldPrompt struct {
	Field       string `json:"field"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Description string `json:"description"`
}

// CallResult is the normalized outcome of a placement attempt. A non-empty
// Sid means the provider accepted the request; a non-empty Error means
// rejection or failure at any layer (validation, provider, transport).
type CallResult struct {
	Sid    string `json:"sid,omitempty"`
	Status string `json:"status"`
	To     string `json:"to,omitempty"`
	From   string `json:"from,omitempty"`
	Error  string `json:"error,omitempty"`

	// HTTPStatus is the HTTP code the serving layer should surface for this
	// result. Not part of the wire shape.
	HTTPStatus int `json:"-"`
}

// Present reports whether a slot value counts as filled. Applied uniformly by
// the merge engine and the collection state machine so the two never diverge
// on what "missing" means.
func Present(v string) bool {
	return strings.TrimSpace(v) != ""
}

// Slot returns the value for key, or "" when absent. Absent and empty are
// deliberately indistinguishable to callers.
func (p *CallPlan) Slot(key string) string {
	if p.Slots == nil {
		return ""
	}
	return p.Slots[key]
}

// Clone returns a deep copy. Merging and collection mutate slot maps; callers
// hand out copies so a planner-produced plan is never aliased.
func (p *CallPlan) Clone() CallPlan {
	out := *p
	if p.Slots != nil {
		out.Slots = make(map[string]string, len(p.Slots))
		for k, v := range p.Slots {
			out.Slots[k] = v
		}
	}
	if p.Required != nil {
		out.Required = append([]string(nil), p.Required...)
	}
	if p.IVR.SendDigits != nil {
		out.IVR.SendDigits = append([]string(nil), p.IVR.SendDigits...)
	}
	return out
}
