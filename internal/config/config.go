// Package config loads the optional dali.toml settings file. The file is
// searched upward from the working directory; if none is found there the
// user's home directory is tried, and finally built-in defaults apply.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	REPL REPLConfig `toml:"repl"`
}

type REPLConfig struct {
	Prompt      string `toml:"prompt"`
	ContPrompt  string `toml:"cont_prompt"`
	HistoryFile string `toml:"history_file"`
	Color       bool   `toml:"color"`
}

func DefaultConfig() *Config {
	return &Config{
		REPL: REPLConfig{
			Prompt:      ">>> ",
			ContPrompt:  "... ",
			HistoryFile: ".dali_history",
			Color:       true,
		},
	}
}

// FindAndLoad searches for dali.toml starting at startDir and walking up,
// then in the home directory. Missing file is not an error; defaults are
// returned with an empty path.
func FindAndLoad(startDir string) (*Config, string, error) {
	configPath := findConfigFile(startDir)
	if configPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			p := filepath.Join(home, "dali.toml")
			if _, err := os.Stat(p); err == nil {
				configPath = p
			}
		}
	}
	if configPath == "" {
		return DefaultConfig(), "", nil
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, configPath, err
	}
	return cfg, configPath, nil
}

func findConfigFile(startDir string) string {
	dir := startDir
	for {
		p := filepath.Join(dir, "dali.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads one settings file, filling absent fields with defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.REPL.Prompt == "" {
		cfg.REPL.Prompt = ">>> "
	}
	if cfg.REPL.ContPrompt == "" {
		cfg.REPL.ContPrompt = "... "
	}
	if cfg.REPL.HistoryFile == "" {
		cfg.REPL.HistoryFile = ".dali_history"
	}
	return cfg, nil
}
