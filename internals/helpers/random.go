package helper

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	alnumAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	digitAlphabet = "0123456789"

	ExternalURLTokenLength = 24
	ExternalPINLength      = 6
)

func randomFrom(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("crypto/rand: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// NewExternalURLToken returns an unguessable [A-Za-z0-9] token for public check-in links.
func NewExternalURLToken() (string, error) {
	return randomFrom(alnumAlphabet, ExternalURLTokenLength)
}

// NewExternalPIN returns a 6 digit numeric PIN (leading zeros allowed).
func NewExternalPIN() (string, error) {
	return randomFrom(digitAlphabet, ExternalPINLength)
}

func IsNumericPIN(pin string) bool {
	if len(pin) != ExternalPINLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}
