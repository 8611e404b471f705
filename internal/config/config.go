// Package config provides functionality for managing configuration options
// for the server and the client using command-line flags, configuration
// files (JSON or YAML) and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string

	// Config is the path to the Config file.
	Config string

	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string

	// GeminiAPIKey enables the summarization endpoint.
	GeminiAPIKey string
	// GeminiModel is the model used for summaries and chat replies.
	GeminiModel string

	// SessionTTL is the lifetime of issued session tokens.
	SessionTTL time.Duration

	// LogLevel is the zap level name.
	LogLevel string
}

// fileOptions mirrors Options in a config file. Empty values leave the
// corresponding option untouched.
type fileOptions struct {
	Address      string `json:"address" yaml:"address"`
	DatabaseDSN  string `json:"database_dsn" yaml:"database_dsn"`
	TLSCert      string `json:"tls_cert" yaml:"tls_cert"`
	TLSKey       string `json:"tls_key" yaml:"tls_key"`
	GeminiAPIKey string `json:"gemini_api_key" yaml:"gemini_api_key"`
	GeminiModel  string `json:"gemini_model" yaml:"gemini_model"`
	SessionTTL   string `json:"session_ttl" yaml:"session_ttl"`
	LogLevel     string `json:"log_level" yaml:"log_level"`
}

const (
	defaultModel      = "gemini-2.5-flash"
	defaultSessionTTL = 30 * 24 * time.Hour
)

// Parse parses the process command line and environment. It exits the
// process on malformed input.
func Parse() *Options {
	opts, err := ParseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("error while parsing configuration: %v", err)
	}
	return opts
}

// ParseArgs builds Options from args, then the config file, then the
// environment. Flags given explicitly on the command line win over the file.
func ParseArgs(args []string) (*Options, error) {
	options := &Options{}
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", "config.json", "path to config file")
	fs.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	fs.StringVar(&options.TLSCert, "tls-cert", "", "path to TLS certificate")
	fs.StringVar(&options.TLSKey, "tls-key", "", "path to TLS private key")
	fs.StringVar(&options.GeminiModel, "model", defaultModel, "Gemini model for summaries")
	fs.DurationVar(&options.SessionTTL, "session-ttl", defaultSessionTTL, "session token lifetime")
	fs.StringVar(&options.LogLevel, "log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			var fo fileOptions
			if err := readFile(options.Config, &fo); err != nil {
				return nil, err
			}
			if err := options.merge(fo, explicit); err != nil {
				return nil, err
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		options.GeminiAPIKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		options.GeminiModel = model
	}
	if cert := os.Getenv("TLS_CERT"); cert != "" {
		options.TLSCert = cert
	}
	if key := os.Getenv("TLS_KEY"); key != "" {
		options.TLSKey = key
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("SESSION_TTL: %w", err)
		}
		options.SessionTTL = d
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		options.LogLevel = lvl
	}

	return options, nil
}

// TLSEnabled reports whether both certificate and key are configured.
func (o *Options) TLSEnabled() bool {
	return o.TLSCert != "" && o.TLSKey != ""
}

func (o *Options) merge(fo fileOptions, explicit map[string]bool) error {
	set := func(flagName string, dst *string, v string) {
		if v != "" && !explicit[flagName] {
			*dst = v
		}
	}
	set("a", &o.Port, fo.Address)
	set("d", &o.DatabaseDSN, fo.DatabaseDSN)
	set("tls-cert", &o.TLSCert, fo.TLSCert)
	set("tls-key", &o.TLSKey, fo.TLSKey)
	set("model", &o.GeminiModel, fo.GeminiModel)
	set("log-level", &o.LogLevel, fo.LogLevel)
	if fo.GeminiAPIKey != "" {
		o.GeminiAPIKey = fo.GeminiAPIKey
	}
	if fo.SessionTTL != "" && !explicit["session-ttl"] {
		d, err := time.ParseDuration(fo.SessionTTL)
		if err != nil {
			return fmt.Errorf("session_ttl: %w", err)
		}
		o.SessionTTL = d
	}
	return nil
}

// readFile decodes a JSON or YAML file (chosen by extension) into v.
func readFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}
