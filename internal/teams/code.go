package teams

import (
	"crypto/rand"
	"math/big"
)

const (
	codeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeDigits  = "0123456789"
)

// generateTeamCode produces a code of three capital letters followed by
// three digits, e.g. "KQT482".
func generateTeamCode() (string, error) {
	buf := make([]byte, 6)
	for i := 0; i < 3; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeLetters))))
		if err != nil {
			return "", err
		}
		buf[i] = codeLetters[n.Int64()]
	}
	for i := 3; i < 6; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeDigits))))
		if err != nil {
			return "", err
		}
		buf[i] = codeDigits[n.Int64()]
	}
	return string(buf), nil
}
