package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/newstech/newstech/internal/model"
)

// BcryptCost is fixed so stored hashes stay comparable across deployments.
const BcryptCost = 10

func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyPassword fails closed: a missing hash or the federated sentinel never matches.
func VerifyPassword(hash *string, password string) bool {
	if hash == nil || *hash == "" || *hash == model.PasswordSentinel {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password)) == nil
}
