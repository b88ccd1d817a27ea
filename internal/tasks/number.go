package tasks

import (
	"crypto/rand"
	"math/big"
)

const (
	numberLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numberDigits  = "0123456789"
)

// generateTaskNumber produces a number of two capital letters, three
// digits, then two capital letters, e.g. "TH482KV".
func generateTaskNumber() (string, error) {
	buf := make([]byte, 7)
	pick := func(alphabet string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return 0, err
		}
		return alphabet[n.Int64()], nil
	}

	var err error
	for i := 0; i < 2; i++ {
		if buf[i], err = pick(numberLetters); err != nil {
			return "", err
		}
	}
	for i := 2; i < 5; i++ {
		if buf[i], err = pick(numberDigits); err != nil {
			return "", err
		}
	}
	for i := 5; i < 7; i++ {
		if buf[i], err = pick(numberLetters); err != nil {
			return "", err
		}
	}
	return string(buf), nil
}
