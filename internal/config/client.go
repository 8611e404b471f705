package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ClientOptions holds the configuration of the terminal client.
type ClientOptions struct {
	// BaseURL is the notes server root, e.g. https://localhost:8080.
	BaseURL string `yaml:"url"`
	// CAFile optionally pins the CA that signed the server certificate.
	CAFile string `yaml:"ca"`
	// StateFile stores the session token between runs.
	StateFile string `yaml:"state"`
	// Debounce is the editor write-back quiescence window.
	Debounce time.Duration `yaml:"-"`
	// LogLevel is the zap level name for client diagnostics.
	LogLevel string `yaml:"log_level"`

	DebounceRaw string `yaml:"debounce"`
}

// DefaultDebounce is the editor quiescence window used when none is configured.
const DefaultDebounce = 500 * time.Millisecond

// DefaultClientConfigPath returns ~/.gophnotes/config.yaml.
func DefaultClientConfigPath() string {
	return filepath.Join(clientHome(), "config.yaml")
}

func clientHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gophnotes"
	}
	return filepath.Join(home, ".gophnotes")
}

// LoadClient reads the YAML file at path (a missing file is not an error)
// and applies GOPHNOTES_* environment overrides on top of it.
func LoadClient(path string) (*ClientOptions, error) {
	opts := &ClientOptions{
		BaseURL:   "https://localhost:8080",
		StateFile: filepath.Join(clientHome(), "session.json"),
		Debounce:  DefaultDebounce,
		LogLevel:  "warn",
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			var fo ClientOptions
			if err := readFile(path, &fo); err != nil {
				return nil, err
			}
			if fo.BaseURL != "" {
				opts.BaseURL = fo.BaseURL
			}
			if fo.CAFile != "" {
				opts.CAFile = fo.CAFile
			}
			if fo.StateFile != "" {
				opts.StateFile = fo.StateFile
			}
			if fo.LogLevel != "" {
				opts.LogLevel = fo.LogLevel
			}
			if fo.DebounceRaw != "" {
				d, err := time.ParseDuration(fo.DebounceRaw)
				if err != nil {
					return nil, fmt.Errorf("debounce: %w", err)
				}
				opts.Debounce = d
			}
		}
	}

	if v := os.Getenv("GOPHNOTES_URL"); v != "" {
		opts.BaseURL = v
	}
	if v := os.Getenv("GOPHNOTES_CA"); v != "" {
		opts.CAFile = v
	}
	if v := os.Getenv("GOPHNOTES_STATE"); v != "" {
		opts.StateFile = v
	}
	if v := os.Getenv("GOPHNOTES_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("GOPHNOTES_DEBOUNCE: %w", err)
		}
		opts.Debounce = d
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return opts, nil
}
