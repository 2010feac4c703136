package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	temporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
	temporaryPasswordSymbols  = "!@#$%*?"
	minTemporaryPasswordLen   = 10
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString returns a cryptographically secure, unbiased string of the requested length.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	value := make([]byte, length)
	for index := range value {
		char, err := randomByte(alphabet)
		if err != nil {
			return "", err
		}
		value[index] = char
	}
	return string(value), nil
}

// TemporaryPassword builds a one-time password that satisfies the account
// password policy: it always carries an upper, a lower, a digit and a symbol.
func TemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLen {
		length = minTemporaryPasswordLen
	}

	body, err := RandomString(length-4, temporaryPasswordAlphabet)
	if err != nil {
		return "", err
	}

	required := make([]byte, 0, 4)
	for _, class := range []string{"ABCDEFGHJKLMNPQRSTUVWXYZ", "abcdefghijkmnopqrstuvwxyz", "23456789", temporaryPasswordSymbols} {
		char, err := randomByte(class)
		if err != nil {
			return "", err
		}
		required = append(required, char)
	}

	password := append([]byte(body), required...)
	for index := len(password) - 1; index > 0; index-- {
		swap, err := rand.Int(rand.Reader, big.NewInt(int64(index+1)))
		if err != nil {
			return "", err
		}
		password[index], password[swap.Int64()] = password[swap.Int64()], password[index]
	}
	return string(password), nil
}

func randomByte(alphabet string) (byte, error) {
	position, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[position.Int64()], nil
}
