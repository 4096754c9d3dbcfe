package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Session claim names. Both session kinds run through the same codec; callers
// distinguish them by requiring the scope claim, never by token shape.
const (
	ClaimEmail = "email"
	ClaimHash  = "hash"
	ClaimScope = "scope"

	// ScopeCustomer tags customer portal sessions. Admin sessions carry no
	// scope claim and embed the live password hash instead.
	ScopeCustomer = "customer"
)

// SignSession serializes the claims as JSON, appends a hex HMAC-SHA256 over
// the serialization and base64-encodes the pair. The dot separator is safe to
// split on from the right: the MAC's hex alphabet cannot contain a dot, so the
// last dot in the decoded token is always the payload/MAC boundary even though
// the JSON payload may contain dots of its own.
func SignSession(secret string, claims map[string]string) (string, error) {
	data, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	signature := hex.EncodeToString(mac.Sum(nil))
	return base64.StdEncoding.EncodeToString([]byte(string(data) + "." + signature)), nil
}

// VerifySession validates a token produced by SignSession and returns its
// claims. Malformed input of any kind returns ok=false, never an error.
//
// The MAC lengths are compared before the constant-time comparison runs; a
// length mismatch must short-circuit to invalid instead of reaching a
// comparator that could fail differently on mismatched sizes.
func VerifySession(secret, token string) (map[string]string, bool) {
	decoded, errDecode := base64.StdEncoding.DecodeString(token)
	if errDecode != nil {
		return nil, false
	}
	raw := string(decoded)
	lastDot := strings.LastIndex(raw, ".")
	if lastDot < 0 {
		return nil, false
	}
	data := raw[:lastDot]
	signature := raw[lastDot+1:]
	if data == "" || signature == "" {
		return nil, false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	expected := hex.EncodeToString(mac.Sum(nil))
	if len(expected) != len(signature) {
		return nil, false
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return nil, false
	}

	var claims map[string]string
	if errUnmarshal := json.Unmarshal([]byte(data), &claims); errUnmarshal != nil {
		return nil, false
	}
	return claims, true
}
