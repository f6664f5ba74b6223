package utils

import (
	"crypto/rand"
	"encoding/hex"

	userTypes "github.com/Tolpa-999/PerfumBackend/pkg/user-management/types"
)

const resetTokenEntropyBytes = 32

// GenerateResetToken returns a new password reset token: 32 bytes of
// entropy, hex encoded, carrying the fixed reset prefix that marks the
// stored value as a reset token.
func GenerateResetToken() (string, error) {
	token := make([]byte, resetTokenEntropyBytes)
	if _, err := rand.Read(token); err != nil {
		return "", err
	}
	return userTypes.RESET_TOKEN_PREFIX + hex.EncodeToString(token), nil
}
