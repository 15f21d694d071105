package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mpesaMessage = "Confirmado DAT2IVYA7R0. Transferiste 50.00MT para 258841234567 aos 16/01/26 as 14:32. Novo saldo M-Pesa 120.00MT."

const emolaMessage = "Transaccao PP260116.2026.W22156 concluida. Enviaste 150,00MT para 867654321. Obrigado."

func TestExtractMpesaConfirmedMessage(t *testing.T) {
	data := Extract(mpesaMessage, MethodUnknown)

	require.NotNil(t, data.Code)
	assert.Equal(t, "DAT2IVYA7R0", data.Code.Code)
	assert.Equal(t, MethodMPesa, data.Code.Method)
	assert.Equal(t, ConfidenceHigh, data.Code.Confidence)

	require.NotNil(t, data.Amount)
	assert.True(t, data.Amount.Equal(decimal.RequireFromString("50.00")))

	assert.Equal(t, "258841234567", data.Phone)
	assert.Equal(t, MethodMPesa, data.Method)
}

func TestExtractEmolaExactPatternWithoutKeyword(t *testing.T) {
	// No "emola" anywhere in the text: the code shape alone implies the method.
	data := Extract(emolaMessage, MethodUnknown)

	require.NotNil(t, data.Code)
	assert.Equal(t, "PP260116.2026.W22156", data.Code.Code)
	assert.Equal(t, MethodEmola, data.Code.Method)
	assert.Equal(t, ConfidenceHigh, data.Code.Confidence)

	require.NotNil(t, data.Amount)
	assert.True(t, data.Amount.Equal(decimal.RequireFromString("150.00")))

	assert.Equal(t, "258867654321", data.Phone)
	assert.Equal(t, MethodEmola, data.Method)
}

func TestExtractTransactionCode(t *testing.T) {
	tests := []struct {
		name           string
		message        string
		wantCode       string
		wantMethod     Method
		wantConfidence Confidence
		wantNil        bool
	}{
		{
			name: "emola CI exact", message: "Pagamento CI260116.2026.W22156 efectuado",
			wantCode: "CI260116.2026.W22156", wantMethod: MethodEmola, wantConfidence: ConfidenceHigh,
		},
		{
			name: "emola loose fallback", message: "ref PP12AB34CD",
			wantCode: "PP12AB34CD", wantMethod: MethodEmola, wantConfidence: ConfidenceMedium,
		},
		{
			name: "generic mpesa fallback", message: "o teu codigo e 9XK4M2P7Q1 obrigado",
			wantCode: "9XK4M2P7Q1", wantMethod: MethodMPesa, wantConfidence: ConfidenceMedium,
		},
		{
			name:    "generic run of only letters rejected",
			message: "OBRIGADOPEL atencao", wantNil: true,
		},
		{
			name:    "generic run of only digits rejected",
			message: "ref 1234567890", wantNil: true,
		},
		{
			name: "PP prefix never misread as mpesa", message: "ref PP12345678",
			wantCode: "PP12345678", wantMethod: MethodEmola, wantConfidence: ConfidenceMedium,
		},
		{
			name: "keyword method overrides pattern hint",
			// eMola-shaped code inside a message that names M-Pesa.
			message:  "M-Pesa ref PP260116.2026.W22156",
			wantCode: "PP260116.2026.W22156", wantMethod: MethodMPesa, wantConfidence: ConfidenceHigh,
		},
		{
			name:    "nothing code-like",
			message: "ola, queria marcar um corte para amanha", wantNil: true,
		},
		{name: "empty message", message: "", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := ExtractTransactionCode(tt.message)
			if tt.wantNil {
				assert.Nil(t, code)
				return
			}
			require.NotNil(t, code)
			assert.Equal(t, tt.wantCode, code.Code)
			assert.Equal(t, tt.wantMethod, code.Method)
			assert.Equal(t, tt.wantConfidence, code.Confidence)
		})
	}
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
		wantNil bool
	}{
		{name: "period separator", message: "Transferiste 50.00MT", want: "50.00"},
		{name: "comma separator", message: "Enviaste 150,50MT", want: "150.50"},
		{name: "no space before MT", message: "valor 75MT", want: "75"},
		{name: "space before MT", message: "montante: 300.00 MT", want: "300.00"},
		{name: "first of several wins", message: "Recebeste 50.00MT, saldo 1000.00MT", want: "50.00"},
		{name: "zero rejected, later value wins", message: "taxa 0.00MT, valor 25.00MT", want: "25.00"},
		{name: "no currency marker", message: "transferiste 50.00", wantNil: true},
		{name: "MT without number", message: "pagamento em MT", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := ExtractAmount(tt.message)
			if tt.wantNil {
				assert.Nil(t, amount)
				return
			}
			require.NotNil(t, amount)
			assert.True(t, amount.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", amount, tt.want)
		})
	}
}

func TestExtractRecipientPhone(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "para with full number", message: "para 258841234567", want: "258841234567"},
		{name: "para with local number", message: "para 841234567", want: "258841234567"},
		{name: "destino keyword", message: "destino: 867654321", want: "258867654321"},
		{name: "p/ shorthand", message: "p/ 258841234567", want: "258841234567"},
		{name: "plus prefix", message: "para +258841234567", want: "258841234567"},
		{name: "no keyword anchor", message: "o numero 841234567 pagou", want: ""},
		{name: "wrong length", message: "para 84123", want: ""},
		{name: "thirteen digits", message: "para 2588412345678", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRecipientPhone(tt.message))
		})
	}
}

func TestExtractIsPure(t *testing.T) {
	for _, msg := range []string{mpesaMessage, emolaMessage, "", "nada aqui"} {
		first := Extract(msg, MethodUnknown)
		second := Extract(msg, MethodUnknown)
		assert.Equal(t, first, second)
	}
}

func TestExtractPreferredMethodFallback(t *testing.T) {
	// No keyword, no code: the caller's preferred method fills the gap.
	data := Extract("transferi 50MT para 841234567", MethodEmola)
	assert.Nil(t, data.Code)
	assert.Equal(t, MethodEmola, data.Method)

	data = Extract("transferi 50MT para 841234567", MethodUnknown)
	assert.Equal(t, MethodUnknown, data.Method)
}

func TestDetectMethod(t *testing.T) {
	assert.Equal(t, MethodMPesa, DetectMethod("Confirmado pelo M-Pesa"))
	assert.Equal(t, MethodMPesa, DetectMethod("novo saldo mpesa"))
	assert.Equal(t, MethodEmola, DetectMethod("pagamento e-Mola efectuado"))
	assert.Equal(t, MethodEmola, DetectMethod("via EMOLA"))
	assert.Equal(t, MethodUnknown, DetectMethod("transferencia bancaria"))
}
