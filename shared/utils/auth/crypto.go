package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password for storage
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPasswordHash compares a plaintext password with a stored hash
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateNumericCode generates a fixed-width numeric verification code
// (leading digit never zero, so the width is stable)
func GenerateNumericCode(length int) (int, error) {
	if length < 1 {
		return 0, fmt.Errorf("invalid code length: %d", length)
	}

	min := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	max := new(big.Int).Mul(min, big.NewInt(9))

	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0, err
	}

	return int(new(big.Int).Add(n, min).Int64()), nil
}
