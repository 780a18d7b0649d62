package helpers

import "golang.org/x/crypto/bcrypt"

// HashPin hashes a plain text PIN using bcrypt
func HashPin(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ComparePin compares a bcrypt hash with a plain PIN
func ComparePin(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
