package auth

import (
	"sync"

	"github.com/hugh/hr-manager/pkg/crypto"
	"golang.org/x/crypto/bcrypt"
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RandomPasswordHash returns the hash of a password nobody knows. New
// accounts start with one until the owner goes through the reset flow.
func RandomPasswordHash() (string, error) {
	secret, err := crypto.GenerateHexToken(24)
	if err != nil {
		return "", err
	}
	return HashPassword(secret)
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same bcrypt work as a real comparison so a
// login for an unknown email takes as long as one with a wrong password.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = HashPassword("not-a-real-account")
	})
	_ = CheckPassword(password, dummyHash)
}
