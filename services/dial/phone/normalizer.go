// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package phone normalizes user-entered phone numbers into a dialable form.
package phone

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCannotNormalize indicates the input cannot be turned into a dialable
// number (empty, or too few digits to disambiguate).
var ErrCannotNormalize = errors.New("phone: cannot normalize")

// emergencyNumber passes through untouched; it is dialable as-is and is not
// subject to digit-count rules.
const emergencyNumber = "911"

// Normalize maps a raw user-entered string to a canonical dialable string.
//
// Description:
//
//	Pure and deterministic. Rules, in order:
//	  - Trim whitespace; empty input fails.
//	  - "911" passes through unchanged.
//	  - Strip all non-digit characters; fewer than 10 digits fails.
//	  - Input that started with "+" keeps its digits behind "+" (caller
//	    supplied full international form).
//	  - Exactly 11 digits starting with "1" is US with country code: "+" added.
//	  - Exactly 10 digits is US domestic: "+1" added.
//	  - Anything longer is treated as best-effort international: "+" added.
//
// Outputs:
//   - string: The canonical dialable number.
//   - error: ErrCannotNormalize (wrapped) when the input cannot be dialed.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty input", ErrCannotNormalize)
	}
	if trimmed == emergencyNumber {
		return emergencyNumber, nil
	}

	digits := stripNonDigits(trimmed)
	if len(digits) < 10 {
		return "", fmt.Errorf("%w: %d digits is too few", ErrCannotNormalize, len(digits))
	}

	switch {
	case strings.HasPrefix(trimmed, "+"):
		return "+" + digits, nil
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits, nil
	case len(digits) == 10:
		return "+1" + digits, nil
	default:
		// 11+ digits without "+" or a leading 1: assume international.
		return "+" + digits, nil
	}
}

func stripNonDigits(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
