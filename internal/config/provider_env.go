package config

import (
	"context"
	"os"
)

// EnvVarProvider implements SecretProvider by resolving each reference as
// another environment variable. It lets local setups point
// DATABASE_URL_SECRET_REF at a differently named variable.
type EnvVarProvider struct{}

// NewEnvVarProvider creates a new EnvVarProvider.
func NewEnvVarProvider() *EnvVarProvider {
	return &EnvVarProvider{}
}

// GetSecrets looks each key up with os.LookupEnv. Missing keys are omitted.
func (p *EnvVarProvider) GetSecrets(_ context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if val, ok := os.LookupEnv(key); ok {
			result[key] = val
		}
	}
	return result, nil
}
