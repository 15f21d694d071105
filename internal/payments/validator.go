package payments

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/agendamoz/barber-platform/internal/phone"
)

// amountTolerance is the absolute allowance for rounding noise between the
// parsed amount and the service price, strictly less-than.
var amountTolerance = decimal.RequireFromString("0.50")

// User-facing messages, surfaced one at a time in a fixed priority order.
const (
	msgCodeMissing       = "Código da transação não detetado. Cole a mensagem de confirmação completa."
	msgAmountMissing     = "Valor da transferência não detetado na mensagem."
	msgRecipientMissing  = "Número de destino não detetado na mensagem."
	msgRecipientMismatch = "O número de destino não corresponde ao número da barbearia."
)

// ValidationResult is the structured verdict over one extraction. IsReady is
// derived from the five sub-checks and never set independently.
type ValidationResult struct {
	IsReady          bool   `json:"is_ready"`
	HasCode          bool   `json:"has_code"`
	HasAmount        bool   `json:"has_amount"`
	HasRecipient     bool   `json:"has_recipient"`
	AmountMatches    bool   `json:"amount_matches"`
	RecipientMatches bool   `json:"recipient_matches"`
	ErrorMessage     string `json:"error_message,omitempty"`
}

// Validate checks extracted payment data against what the barbershop expects
// for the chosen service. It is total: every input produces a structured
// result and none ever raises an error.
//
// The recipient comparison is exact string equality after strict
// normalization; an expected number that cannot be normalized can never
// match, which keeps a malformed shop configuration from producing a false
// positive.
func Validate(extracted ExtractedPaymentData, expectedAmount decimal.Decimal, expectedRecipient string) ValidationResult {
	normalizedRecipient, recipientOK := phone.Normalize(expectedRecipient)

	result := ValidationResult{
		HasCode:      extracted.Code != nil,
		HasAmount:    extracted.Amount != nil,
		HasRecipient: extracted.Phone != "",
	}
	if result.HasAmount {
		diff := extracted.Amount.Sub(expectedAmount).Abs()
		result.AmountMatches = diff.LessThan(amountTolerance)
	}
	if result.HasRecipient && recipientOK {
		result.RecipientMatches = extracted.Phone == normalizedRecipient
	}

	result.IsReady = result.HasCode && result.HasAmount && result.HasRecipient &&
		result.AmountMatches && result.RecipientMatches
	result.ErrorMessage = firstFailure(result, extracted, expectedAmount)
	return result
}

// firstFailure picks the single message to surface. The priority order is a
// contract: missing code, missing amount, missing recipient, amount
// mismatch, recipient mismatch.
func firstFailure(r ValidationResult, extracted ExtractedPaymentData, expectedAmount decimal.Decimal) string {
	switch {
	case !r.HasCode:
		return msgCodeMissing
	case !r.HasAmount:
		return msgAmountMissing
	case !r.HasRecipient:
		return msgRecipientMissing
	case !r.AmountMatches:
		return fmt.Sprintf("O valor transferido (%s MT) não corresponde ao preço do serviço (%s MT).",
			extracted.Amount.StringFixed(2), expectedAmount.StringFixed(2))
	case !r.RecipientMatches:
		return msgRecipientMismatch
	default:
		return ""
	}
}
