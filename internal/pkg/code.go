package pkg

import (
	cryptoRand "crypto/rand"
	"math/big"
	"strings"
)

const sequenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// RandSequence returns n random letters and digits.
func RandSequence(n int) (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(sequenceAlphabet)))
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(sequenceAlphabet[x.Int64()])
	}
	return b.String(), nil
}
