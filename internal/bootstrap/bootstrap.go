// Package bootstrap prepares the stream home directory on first run.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/neoclaw-ai/stream/internal/config"
	"github.com/neoclaw-ai/stream/internal/store"
)

// Initialize creates the home directory and a default config.toml if missing,
// reporting whether the config file was written. Existing files are left
// untouched.
func Initialize(cfg *config.Config) (bool, error) {
	if err := os.MkdirAll(cfg.HomeDir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %q: %w", cfg.HomeDir, err)
	}

	body, err := config.DefaultUserConfigTOML()
	if err != nil {
		return false, err
	}
	return store.WriteFileIfMissing(cfg.ConfigPath(), []byte(body))
}
