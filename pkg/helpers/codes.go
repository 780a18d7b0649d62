package helpers

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// KeyVerificationCode is the Redis key holding the pending email
// verification code of an account.
func KeyVerificationCode(email string) string {
	return "verify:code:" + email
}

// GenVerificationCode returns a random 6-digit code as a zero-padded
// string, from crypto/rand.
func GenVerificationCode() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", binary.BigEndian.Uint32(b[:])%1000000), nil
}
