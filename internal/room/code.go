package room

import "math/rand"

// Code alphabet. Letters drop I/O (confusable with 1/0) and can't spell
// anything offensive in the letter-digit-letter-digit shape; digits drop
// 0 and 1 for the same legibility reason.
const (
	codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	codeDigits  = "23456789"

	// CodeLength is the length of every room code.
	CodeLength = 4

	// maxCodeAttempts bounds generation retries; the code space holds
	// 24*8*24*8 = 36,864 combinations, so collisions this deep mean the
	// registry is effectively full.
	maxCodeAttempts = 10000
)

// randomCode produces one candidate code in letter-digit-letter-digit form.
func randomCode(r *rand.Rand) string {
	b := make([]byte, CodeLength)
	for i := range b {
		if i%2 == 0 {
			b[i] = codeLetters[r.Intn(len(codeLetters))]
		} else {
			b[i] = codeDigits[r.Intn(len(codeDigits))]
		}
	}
	return string(b)
}
