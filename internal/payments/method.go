package payments

import "strings"

// Method identifies a Mozambican mobile-money provider.
type Method string

const (
	MethodMPesa   Method = "mpesa"
	MethodEmola   Method = "emola"
	MethodUnknown Method = "unknown"
)

// Known reports whether the method names a real provider.
func (m Method) Known() bool {
	return m == MethodMPesa || m == MethodEmola
}

// ParseMethod maps a wire value onto a Method, defaulting to unknown.
func ParseMethod(s string) Method {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mpesa", "m-pesa":
		return MethodMPesa
	case "emola", "e-mola":
		return MethodEmola
	default:
		return MethodUnknown
	}
}

// DetectMethod infers the provider from the confirmation text itself. This is
// a keyword match over the message body, independent of the shape of any
// transaction code in it.
func DetectMethod(message string) Method {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "m-pesa") || strings.Contains(lower, "mpesa"):
		return MethodMPesa
	case strings.Contains(lower, "e-mola") || strings.Contains(lower, "emola"):
		return MethodEmola
	default:
		return MethodUnknown
	}
}
