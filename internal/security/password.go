package security

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Credential record parameters. The iteration count and salt travel inside the
// record so existing hashes keep verifying after the defaults are raised.
const (
	pbkdf2Iterations = 120_000
	pbkdf2KeyLength  = 64
	saltBytes        = 16
)

// HashPassword derives a PBKDF2-SHA512 credential record for a plaintext
// password. The record is "iterations:salt:key" with salt and key hex-encoded.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	key := pbkdf2.Key([]byte(password), []byte(saltHex), pbkdf2Iterations, pbkdf2KeyLength, sha512.New)
	return fmt.Sprintf("%d:%s:%s", pbkdf2Iterations, saltHex, hex.EncodeToString(key)), nil
}

// CheckPassword reports whether a plaintext password matches a credential
// record. Malformed records verify false rather than erroring, so placeholder
// credentials (random strings that are not records) can never authenticate.
func CheckPassword(record, password string) bool {
	parts := strings.Split(record, ":")
	if len(parts) != 3 {
		return false
	}
	iterations, errParse := strconv.Atoi(parts[0])
	if errParse != nil || iterations <= 0 {
		return false
	}
	salt := parts[1]
	stored, errDecode := hex.DecodeString(parts[2])
	if errDecode != nil || len(stored) == 0 {
		return false
	}
	derived := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(stored), sha512.New)
	return subtle.ConstantTimeCompare(stored, derived) == 1
}
