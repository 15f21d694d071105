package payments

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/agendamoz/barber-platform/internal/phone"
)

// Confidence reflects how a transaction code was obtained: the provider's
// exact grammar scores high, the generic pattern fallbacks medium, and a
// hand-typed code accepted without any message context scores low.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ExtractedCode is a transaction code pulled out of confirmation text.
type ExtractedCode struct {
	Code       string
	Method     Method
	Confidence Confidence
}

// ExtractedPaymentData is the full result of one extraction pass. It is a
// fresh value on every call; nil/empty fields mean the message did not carry
// that piece of information.
type ExtractedPaymentData struct {
	Code   *ExtractedCode
	Amount *decimal.Decimal
	Phone  string
	Method Method
}

// codePattern is one tier of the priority-ordered code grammar. Tiers are
// tried in order and the first accepted candidate wins, so the tie-break
// order is auditable in one place.
type codePattern struct {
	re         *regexp.Regexp
	method     Method
	confidence Confidence
	group      int
	accept     func(token string) bool
}

var (
	emolaExactPP   = regexp.MustCompile(`\bPP\d{6}\.\d{4}\.[A-Z]\d{5}\b`)
	emolaExactCI   = regexp.MustCompile(`\bCI\d{6}\.\d{4}\.[A-Z]\d{5}\b`)
	mpesaConfirmed = regexp.MustCompile(`(?i:confirmado)\s+([A-Z0-9]{10,12})\b`)
	emolaLoose     = regexp.MustCompile(`\b(?:PP|CI)[A-Z0-9.]{6,}`)
	mpesaGeneric   = regexp.MustCompile(`\b[A-Z0-9]{10,12}\b`)

	amountRe = regexp.MustCompile(`(?i)(?:(?:transferiste|recebeste|enviaste|valor|montante)\s*:?\s*)?(\d+(?:[.,]\d{1,2})?)\s*MT\b`)
	phoneRe  = regexp.MustCompile(`(?i)(?:para|p/|destino)\s*:?\s*\+?(258\d{9}|\d{9})\b`)
)

// codePatterns is evaluated top to bottom. The exact provider grammars come
// first, the Confirmado-anchored M-Pesa token next, then the loose fallbacks.
var codePatterns = []codePattern{
	{re: emolaExactPP, method: MethodEmola, confidence: ConfidenceHigh},
	{re: emolaExactCI, method: MethodEmola, confidence: ConfidenceHigh},
	{re: mpesaConfirmed, method: MethodMPesa, confidence: ConfidenceHigh, group: 1},
	{re: emolaLoose, method: MethodEmola, confidence: ConfidenceMedium},
	{re: mpesaGeneric, method: MethodMPesa, confidence: ConfidenceMedium, accept: mpesaCandidate},
}

// mpesaCandidate filters generic alphanumeric runs down to plausible M-Pesa
// codes: at least one letter, at least one digit, and not an eMola prefix.
func mpesaCandidate(token string) bool {
	if strings.HasPrefix(token, "PP") || strings.HasPrefix(token, "CI") {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range token {
		switch {
		case r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// Extract parses a pasted confirmation message into its payment facts. It is
// a pure function of its inputs: identical text always yields an identical
// result, and no state survives between calls. preferred is only consulted
// when neither the message keywords nor the code shape identify a provider.
func Extract(message string, preferred Method) ExtractedPaymentData {
	data := ExtractedPaymentData{
		Code:   ExtractTransactionCode(message),
		Amount: ExtractAmount(message),
		Phone:  ExtractRecipientPhone(message),
	}

	data.Method = DetectMethod(message)
	if !data.Method.Known() {
		switch {
		case data.Code != nil:
			data.Method = data.Code.Method
		case preferred.Known():
			data.Method = preferred
		default:
			data.Method = MethodUnknown
		}
	}
	return data
}

// ExtractTransactionCode runs the pattern tiers in priority order and returns
// the first accepted code, or nil when no tier matches. When the message text
// names a provider that keyword wins over the pattern-implied one.
func ExtractTransactionCode(message string) *ExtractedCode {
	detected := DetectMethod(message)
	for _, p := range codePatterns {
		for _, m := range p.re.FindAllStringSubmatch(message, -1) {
			token := m[p.group]
			if p.accept != nil && !p.accept(token) {
				continue
			}
			method := p.method
			if detected.Known() {
				method = detected
			}
			return &ExtractedCode{
				Code:       strings.ToUpper(token),
				Method:     method,
				Confidence: p.confidence,
			}
		}
	}
	return nil
}

// ExtractAmount finds the first positive amount followed by the MT currency
// marker. Comma decimal separators are normalized to a period before parsing.
func ExtractAmount(message string) *decimal.Decimal {
	for _, m := range amountRe.FindAllStringSubmatch(message, -1) {
		raw := strings.ReplaceAll(m[1], ",", ".")
		amount, err := decimal.NewFromString(raw)
		if err != nil || !amount.IsPositive() {
			continue
		}
		return &amount
	}
	return nil
}

// ExtractRecipientPhone finds the first phone-like token after the words
// para, p/ or destino and returns it in the canonical 258-prefixed form, or
// "" when none is found. The result always satisfies the strict phone
// invariant.
func ExtractRecipientPhone(message string) string {
	for _, m := range phoneRe.FindAllStringSubmatch(message, -1) {
		if normalized, ok := phone.Normalize(m[1]); ok {
			return normalized
		}
	}
	return ""
}
