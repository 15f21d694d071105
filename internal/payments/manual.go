package payments

import (
	"regexp"
	"strings"
)

// Manual code grammars. These intentionally operate on a bare candidate
// string with no message context, so a user can hand-correct a misdetected
// code and still get a format check.
var (
	manualEmolaExact = regexp.MustCompile(`^(?:PP|CI)\d{6}\.\d{4}\.[A-Z]\d{5}$`)
	manualEmolaLoose = regexp.MustCompile(`^(?:PP|CI)[A-Z0-9.]{6,}$`)
	manualMpesa      = regexp.MustCompile(`^[A-Z0-9]{10,12}$`)
)

// ManualCodeResult is the verdict over a manually-typed transaction code.
type ManualCodeResult struct {
	Valid  bool   `json:"valid"`
	Method Method `json:"method,omitempty"`
}

// ValidateManualCode checks a typed code against the provider grammars,
// first match wins: exact eMola, loose eMola, then the M-Pesa shape. Codes
// shorter than ten characters that match no eMola grammar are invalid.
func ValidateManualCode(code string) ManualCodeResult {
	candidate := strings.ToUpper(strings.TrimSpace(code))

	switch {
	case manualEmolaExact.MatchString(candidate):
		return ManualCodeResult{Valid: true, Method: MethodEmola}
	case manualEmolaLoose.MatchString(candidate):
		return ManualCodeResult{Valid: true, Method: MethodEmola}
	case len(candidate) >= 10 && manualMpesa.MatchString(candidate) && mpesaCandidate(candidate):
		return ManualCodeResult{Valid: true, Method: MethodMPesa}
	default:
		return ManualCodeResult{Valid: false}
	}
}
