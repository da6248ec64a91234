package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ConfigError is returned by LoadConfig to aid debugging.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// secretRefSuffix marks an indirection: DATABASE_URL_SECRET_REF=db-url asks
// the SecretProvider for "db-url" and stores the result in DATABASE_URL.
const secretRefSuffix = "_SECRET_REF"

const localEnv = "local"

const secretResolveTimeout = 10 * time.Second

// loaderDeps holds the process hooks the loader touches so tests can run
// without mutating global state.
type loaderDeps struct {
	lookupEnv  func(key string) (string, bool)
	setEnv     func(key, value string) error
	environ    func() []string
	loadDotenv func() error
}

func defaultDeps() loaderDeps {
	return loaderDeps{
		lookupEnv: os.LookupEnv,
		setEnv:    os.Setenv,
		environ:   os.Environ,
		loadDotenv: func() error {
			return godotenv.Load()
		},
	}
}

// LoadConfig loads and validates the configuration:
//  1. Sets the process timezone to UTC.
//  2. Loads a .env file if present (existing variables win).
//  3. Resolves *_SECRET_REF indirections through provider.
//  4. Processes envconfig tags and fills Build from ldflags.
//  5. Validates the struct.
//
// provider may be nil when no references are present, and always in local
// mode, where references fall back to EnvVarProvider.
func LoadConfig(provider SecretProvider) (*Config, error) {
	return loadConfigWithDeps(provider, defaultDeps())
}

func loadConfigWithDeps(provider SecretProvider, deps loaderDeps) (*Config, error) {
	time.Local = time.UTC

	// A missing .env is normal outside local development.
	_ = deps.loadDotenv()

	appEnv, ok := deps.lookupEnv("APP_ENV")
	if !ok || appEnv == "" {
		return nil, &ConfigError{Type: ErrMissingEnv, Message: "APP_ENV is not set"}
	}

	if provider == nil && appEnv == localEnv {
		provider = NewEnvVarProvider()
	}
	if err := resolveSecretRefs(provider, deps); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}
	cfg.Build = NewBuildInfo()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}
	if cfg.Database.MinConns > cfg.Database.MaxConns {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: fmt.Sprintf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", cfg.Database.MinConns, cfg.Database.MaxConns),
		}
	}

	return &cfg, nil
}

// ResolveSecrets runs only the *_SECRET_REF step, for entry points that read a
// handful of variables directly.
func ResolveSecrets(provider SecretProvider) error {
	deps := defaultDeps()
	if appEnv, _ := deps.lookupEnv("APP_ENV"); provider == nil && appEnv == localEnv {
		provider = NewEnvVarProvider()
	}
	return resolveSecretRefs(provider, deps)
}

// resolveSecretRefs scans the environment for X_SECRET_REF=<key> entries,
// resolves every key in one provider call, and sets X. A target that is
// already set is left alone.
func resolveSecretRefs(provider SecretProvider, deps loaderDeps) error {
	// key -> target variables; two targets may share one secret.
	targets := make(map[string][]string)
	for _, entry := range deps.environ() {
		name, ref, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasSuffix(name, secretRefSuffix) || ref == "" {
			continue
		}
		target := strings.TrimSuffix(name, secretRefSuffix)
		if target == "" {
			continue
		}
		if _, exists := deps.lookupEnv(target); exists {
			continue
		}
		targets[ref] = append(targets[ref], target)
	}
	if len(targets) == 0 {
		return nil
	}

	keys := make([]string, 0, len(targets))
	for k := range targets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if provider == nil {
		return &ConfigError{
			Type:    ErrSecretResolution,
			Message: fmt.Sprintf("a SecretProvider is required to resolve %s", strings.Join(keys, ", ")),
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), secretResolveTimeout)
	defer cancel()

	resolved, err := provider.GetSecrets(ctx, keys)
	if err != nil {
		return &ConfigError{
			Type:    ErrSecretResolution,
			Message: fmt.Sprintf("failed to resolve %d secret reference(s)", len(keys)),
			Err:     err,
		}
	}

	var missing []string
	for _, key := range keys {
		value, ok := resolved[key]
		if !ok {
			missing = append(missing, targets[key]...)
			continue
		}
		for _, target := range targets[key] {
			if err := deps.setEnv(target, value); err != nil {
				return &ConfigError{
					Type:    ErrSecretResolution,
					Message: "failed to set " + target,
					Err:     err,
				}
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &ConfigError{
			Type:    ErrSecretResolution,
			Message: "secret references not found for: " + strings.Join(missing, ", "),
		}
	}
	return nil
}
