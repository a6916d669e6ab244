package pkg

import "math/rand"

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandString builds a join code of n characters. The alphabet skips the
// easily-confused characters.
func RandString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}
