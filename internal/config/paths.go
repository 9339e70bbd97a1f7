package config

import "path/filepath"

const (
	// Layout under STREAM_HOME.
	ConfigFilePath  = "config.toml"
	EnvFilePath     = ".env"
	HistoryFilePath = "history"
)

func homeConfigPath(home string) string {
	return filepath.Join(home, ConfigFilePath)
}

func homeEnvPath(home string) string {
	return filepath.Join(home, EnvFilePath)
}

func defaultHomePath(home string) string {
	return filepath.Join(home, ".stream")
}

func (c *Config) ConfigPath() string {
	return homeConfigPath(c.HomeDir)
}

func (c *Config) EnvPath() string {
	return homeEnvPath(c.HomeDir)
}

// HistoryPath resolves the REPL history file, or "" when history is disabled.
func (c *Config) HistoryPath() string {
	p := c.REPL.HistoryFile
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.HomeDir, p)
}
