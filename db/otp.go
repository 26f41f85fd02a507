package db

import (
	"fmt"

	"github.com/pquerna/otp/totp"
)

const Issuer = "HealthViz"

func newTOTPSecret(username string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      Issuer,
		AccountName: username,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP secret: %w", err)
	}
	return key.Secret(), nil
}

// VerifyOTP checks code against the user's TOTP secret. Users registered
// without a secret never pass.
func VerifyOTP(code, secret string) bool {
	if secret == "" {
		return false
	}
	return totp.Validate(code, secret)
}
