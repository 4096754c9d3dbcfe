package util

import "strings"

// MaskEmail obscures an email address for logging, keeping the first and last
// character of the local part and the full domain.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return mask(email)
	}
	return mask(email[:at]) + email[at:]
}

// MaskCode obscures a one-time code for logging.
func MaskCode(code string) string {
	return mask(code)
}

func mask(s string) string {
	switch {
	case len(s) > 4:
		return s[:1] + "..." + s[len(s)-1:]
	case len(s) > 0:
		return s[:1] + "..."
	default:
		return s
	}
}

// NormalizeEmail lower-cases and trims an email address the way every
// ownership comparison in the system expects it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmailShape reports whether an address looks like an email. This is the
// boundary check for code requests; real validation is delegated to delivery.
func ValidEmailShape(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\n")
}
