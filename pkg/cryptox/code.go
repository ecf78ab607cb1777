package cryptox

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// CodeHashCost is the bcrypt cost used for one-time passcodes.
const CodeHashCost = 10

// secretSize is the HOTP key length in bytes (160 bits, as RFC 4226 suggests).
const secretSize = 20

// GenerateNumericCode returns a 6-digit code. Each call derives the code from
// a fresh crypto/rand key fed through TOTP at the current time step, so the
// result is unpredictable and never reproducible by a client.
func GenerateNumericCode() (string, error) {
	key := make([]byte, secretSize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("cryptox: generate code secret: %w", err)
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(key)

	code, err := totp.GenerateCodeCustom(secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", fmt.Errorf("cryptox: generate code: %w", err)
	}
	return code, nil
}

// HashCode bcrypt-hashes a one-time code for storage.
func HashCode(code string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(code), CodeHashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareCode reports whether code matches the stored bcrypt hash.
func CompareCode(code, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
