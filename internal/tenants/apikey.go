package tenants

import (
	"fmt"

	"github.com/sentrasec/sentra/internal/common"
	"github.com/sentrasec/sentra/params"
	"golang.org/x/crypto/bcrypt"
)

// generateAPIKey returns a URL-safe random key for a tenant. The clear key is
// handed to the caller exactly once; only the bcrypt hash is persisted.
func generateAPIKey() string {
	key, err := common.GenerateSecret(params.ClientAPIKeyLength)
	if err != nil {
		panic(fmt.Errorf("failed to generate api key: %w", err))
	}
	return key
}

func hashAPIKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyAPIKey checks a presented key against the stored hash.
func VerifyAPIKey(hash, key string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return ErrAPIKeyMismatch
	}
	return nil
}
