package auth

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptMaxInput is the longest password prefix bcrypt considers.
const bcryptMaxInput = 72

// HashPassword returns the bcrypt hash of password. Input beyond 72 bytes
// is ignored.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncate(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. A malformed hash
// never matches.
func CheckPassword(hash, password string) bool {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), truncate(password)) == nil
}

func truncate(password string) []byte {
	pwd := []byte(password)
	if len(pwd) > bcryptMaxInput {
		pwd = pwd[:bcryptMaxInput]
	}
	return pwd
}
