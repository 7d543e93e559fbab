// Package generate produces random values for tokens and fixtures.
package generate

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"math/big"
)

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandomBytes returns n bytes read from the system's secure source.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)

	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	return b, nil
}

// RandomString returns an alphanumeric string of length n.
func RandomString(n int) string {
	var (
		b   = make([]byte, n)
		max = big.NewInt(int64(len(alphabet)))
	)

	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}

		b[i] = alphabet[idx.Int64()]
	}

	return string(b)
}

// RandomStringSafe returns a url safe base64 encoded string of n random bytes.
func RandomStringSafe(n int) (string, error) {
	b, err := RandomBytes(n)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RandomToken returns a hex encoded token of n random bytes.
func RandomToken(n int) (string, error) {
	b, err := RandomBytes(n)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
