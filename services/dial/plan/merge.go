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
	"log/slog"

	"github.com/AleutianAI/AleutianDial/services/dial/phone"
)

// PhoneSlot is the slot key holding the destination number. The merge engine
// canonicalizes it and placement always dials it.
const PhoneSlot = "phone"

// MergeResult is the outcome of reconciling a planner plan with user edits.
type MergeResult struct {
	// Plan is the effective plan: planner slots with overrides applied on top
	// and the phone slot canonicalized where possible.
	Plan CallPlan

	// Missing lists every required slot key whose effective value is absent or
	// blank, in Required order.
	Missing []string
}

// Merge combines a planner-produced plan with user-entered overrides.
//
// Description:
//
//	Overrides win on key collision. If the effective phone slot is present it
//	is passed through the normalizer; on success the canonical form replaces
//	the slot value, on failure the raw value stays untouched so user input is
//	never silently dropped. Missing keys follow Required order, stable across
//	repeated merges, so re-merging with no new overrides is a no-op.
//
//	Safe to call repeatedly as the user edits fields. Pure aside from the
//	normalizer call.
func Merge(p CallPlan, overrides map[string]string) MergeResult {
	effective := p.Clone()
	if effective.Slots == nil {
		effective.Slots = make(map[string]string, len(overrides))
	}
	for k, v := range overrides {
		effective.Slots[k] = v
	}

	if raw := effective.Slots[PhoneSlot]; Present(raw) {
		if canonical, err := phone.Normalize(raw); err == nil {
			effective.Slots[PhoneSlot] = canonical
		} else {
			slog.Debug("Phone slot left raw, normalization failed",
				slog.String("error", err.Error()))
		}
	}

	missing := make([]string, 0, len(effective.Required))
	for _, key := range effective.Required {
		if !Present(effective.Slots[key]) {
			missing = append(missing, key)
		}
	}

	return MergeResult{Plan: effective, Missing: missing}
}
