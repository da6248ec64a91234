package config

import "context"

// SecretProvider resolves secret references to plaintext values. Keys are
// provider-specific references (an env var name, a file name). Only resolved
// keys appear in the returned map.
type SecretProvider interface {
	GetSecrets(ctx context.Context, keys []string) (map[string]string, error)
}
