package utils

import "golang.org/x/crypto/bcrypt"

// VerifyPassword safely compares a bcrypt hash against a plain password.
// The admin password hash comes from the environment; the service never
// stores passwords of its own.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
