package db

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const PasswordPolicy = "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, and one digit."

// ValidatePassword reports whether password is at least 8 ASCII letters or
// digits and mixes lowercase, uppercase and digits.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		default:
			return false
		}
	}
	return lower && upper && digit
}

// ValidateUsername rejects names the credential file cannot hold.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if strings.ContainsAny(username, ",\r\n") {
		return fmt.Errorf("%w: username must not contain commas or line breaks", ErrValidation)
	}
	return nil
}

// bcrypt only looks at the first 72 bytes, so the password is digested first.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword(prehash(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func checkPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), prehash(password)) == nil
}
