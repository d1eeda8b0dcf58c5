package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"vsh/internal/vfs"
)

// Config represents the main configuration for vsh.
type Config struct {
	SessionID  string           `toml:"session_id"`
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	LogLevel   string           `toml:"log_level"` // debug, info, warn or error
	Shell      ShellConfig      `toml:"shell"`
	Database   DatabaseConfig   `toml:"database"`
	Vaults     []VaultConfig    `toml:"vaults"`
	Encryption EncryptionConfig `toml:"encryption"`
	Fetch      FetchConfig      `toml:"fetch"`
}

// ShellConfig holds the settings of the interactive shell.
type ShellConfig struct {
	Separator    string `toml:"separator"`
	Prompt       string `toml:"prompt"`
	HistoryLimit int    `toml:"history_limit"` // 0 keeps every line
}

// DatabaseConfig represents configuration for the snapshot store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// VaultConfig represents configuration for a vault that holds exported
// snapshots. The Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"` // S3-compatible servers such as MinIO

	// Static credentials; when empty the default AWS credential chain is used.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for exports.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// FetchConfig controls the HTTP client behind curl.
type FetchConfig struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryCount     int    `toml:"retry_count"`
	UserAgent      string `toml:"user_agent"`
	MaxBytes       int64  `toml:"max_bytes"`
}

// Defaults applied by ApplyDefaults to unset fields.
const (
	DefaultLogLevel       = "info"
	DefaultSeparator      = "/"
	DefaultPrompt         = "/#: "
	DefaultTimeoutSeconds = 30
	DefaultUserAgent      = "vsh"
	DefaultMaxBytes       = 10 << 20
)

// NewConfig creates the config written by "vsh config init": a sqlite store
// and a filesystem vault under baseDir, and age keys in baseDir/keys.
func NewConfig(sessionID, baseDir string) *Config {
	cfg := &Config{
		SessionID: sessionID,
		BaseDir:   baseDir,
		LogDir:    filepath.Join(baseDir, "log"),
		Database:  DatabaseConfig{Type: "sqlite", DataDir: filepath.Join(baseDir, "db")},
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: filepath.Join(baseDir, "vault")},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "vsh.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "vsh.key"),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// Builtin is the config used when no config file exists. Snapshots and
// exports only live for the lifetime of the process.
func Builtin(sessionID, baseDir string) *Config {
	cfg := NewConfig(sessionID, baseDir)
	cfg.Database = DatabaseConfig{Type: "memory"}
	cfg.Vaults = []VaultConfig{{Type: "memory", Name: "memory"}}
	return cfg
}

// ApplyDefaults fills in every unset optional field.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogDir == "" && c.BaseDir != "" {
		c.LogDir = filepath.Join(c.BaseDir, "log")
	}
	if c.Shell.Separator == "" {
		c.Shell.Separator = DefaultSeparator
	}
	if c.Shell.Prompt == "" {
		c.Shell.Prompt = DefaultPrompt
	}
	if c.Database.Type == "" {
		c.Database.Type = "memory"
	}
	if c.Encryption.Type == "" {
		c.Encryption.Type = "age"
	}
	if c.Fetch.TimeoutSeconds == 0 {
		c.Fetch.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = DefaultUserAgent
	}
	if c.Fetch.MaxBytes == 0 {
		c.Fetch.MaxBytes = DefaultMaxBytes
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if !vfs.ValidSeparator(c.Shell.Separator) || strings.ContainsAny(c.Shell.Separator, " \"") {
		return fmt.Errorf("invalid shell.separator %q", c.Shell.Separator)
	}
	if c.Shell.HistoryLimit < 0 {
		return fmt.Errorf("shell.history_limit must not be negative")
	}
	if c.Fetch.TimeoutSeconds < 0 || c.Fetch.RetryCount < 0 || c.Fetch.MaxBytes < 0 {
		return fmt.Errorf("fetch settings must not be negative")
	}
	seen := make(map[string]bool, len(c.Vaults))
	for _, v := range c.Vaults {
		if v.Name == "" {
			return fmt.Errorf("vault of type %q has no name", v.Type)
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate vault name %q", v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from path and applies defaults.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. An existing file is never overwritten.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
