package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider resolves secret references as files under a directory, the
// layout used by mounted container secrets (/run/secrets/<name>). Trailing
// newlines are trimmed.
type FileProvider struct {
	dir string
}

// NewFileProvider creates a FileProvider rooted at dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{dir: dir}
}

// GetSecrets reads one file per key. Missing files are omitted; any other
// read failure aborts the batch. Keys must be plain file names.
func (p *FileProvider) GetSecrets(ctx context.Context, keys []string) (map[string]string, error) {
	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
			return nil, fmt.Errorf("secret reference %q is not a plain file name", key)
		}

		data, err := os.ReadFile(filepath.Join(p.dir, key))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading secret %q: %w", key, err)
		}
		result[key] = strings.TrimRight(string(data), "\r\n")
	}
	return result, nil
}
