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
	"fmt"
	"strings"
)

// fieldPrompts holds the bespoke prompt text for well-known slot keys. Any
// other key falls back to a generic templated prompt built from its name.
var fieldPrompts = map[string]MissingFieldPrompt{
	"phone": {
		Field:       "phone",
		Label:       "Phone number",
		Placeholder: "(555) 123-4567",
		Description: "The number to dial. US numbers can omit the country code.",
	},
	"target": {
		Field:       "target",
		Label:       "Who to call",
		Placeholder: "Pizza Palace",
		Description: "The business or person this call should reach.",
	},
	"when": {
		Field:       "when",
		Label:       "When",
		Placeholder: "now",
		Description: "When the call outcome applies, e.g. a reservation time.",
	},
	"account": {
		Field:       "account",
		Label:       "Account number",
		Placeholder: "XXXX-1234",
		Description: "The account the call is about, if the callee will ask for one.",
	},
	"callback": {
		Field:       "callback",
		Label:       "Callback number",
		Placeholder: "(555) 987-6543",
		Description: "A number the callee can use to reach you back.",
	},
}

// PromptFor derives the human-readable ask for one missing slot key.
//
// Well-known keys (phone, target, when, account, callback) get bespoke
// prompts; anything else gets a generic prompt templated from the key name.
func PromptFor(field string) MissingFieldPrompt {
	if p, ok := fieldPrompts[field]; ok {
		return p
	}
	label := humanizeField(field)
	return MissingFieldPrompt{
		Field:       field,
		Label:       label,
		Placeholder: label,
		Description: fmt.Sprintf("Please provide a value for %q to complete the call.", field),
	}
}

// humanizeField turns a slot key like "confirmation_code" into "Confirmation code".
func humanizeField(field string) string {
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(field))
	if cleaned == "" {
		return field
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}
