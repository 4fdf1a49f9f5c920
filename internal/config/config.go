package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/Tiliavir/stt/internal/storage"
)

// Config is the root configuration for stt, stored in ~/.stt/config.json.
// The file supports single-line // comments for documentation purposes.
// Every key can be overridden by an STT_ environment variable, e.g.
// STT_DATA_FILE or STT_BACKUP_RETENTION.
type Config struct {
	// DataFile is the activities file. Empty = ~/.stt/activities.
	DataFile string        `koanf:"data_file"`
	LogLevel string        `koanf:"log_level"`
	Backup   BackupConfig  `koanf:"backup"`
	Outlook  OutlookConfig `koanf:"outlook"`
}

// BackupConfig controls dated copies of the activities file.
type BackupConfig struct {
	Dir string `koanf:"dir"`
	// IntervalDays between backups; 0 disables them.
	IntervalDays int `koanf:"interval_days"`
	// Retention is the number of backups kept; 0 keeps all.
	Retention int `koanf:"retention"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar sync settings.
type OutlookConfig struct {
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `koanf:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `koanf:"client_id"`
	// Prefix is prepended to the subject of imported Outlook events.
	Prefix string `koanf:"prefix"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `koanf:"timezone"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration. Replace with your own registered app ID for
	// organisational or production deployments.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultPrefix marks imported calendar events.
	DefaultPrefix = "Meeting: "
	// DefaultBackupDir receives backups unless configured otherwise.
	DefaultBackupDir = "~/.stt/backups"
)

// envPrefix is stripped from environment variable names.
const envPrefix = "STT_"

// envKeys maps environment variables to config keys.
var envKeys = map[string]string{
	"STT_DATA_FILE":            "data_file",
	"STT_LOG_LEVEL":            "log_level",
	"STT_BACKUP_DIR":           "backup.dir",
	"STT_BACKUP_INTERVAL_DAYS": "backup.interval_days",
	"STT_BACKUP_RETENTION":     "backup.retention",
	"STT_OUTLOOK_TENANT_ID":    "outlook.tenant_id",
	"STT_OUTLOOK_CLIENT_ID":    "outlook.client_id",
	"STT_OUTLOOK_PREFIX":       "outlook.prefix",
	"STT_OUTLOOK_TIMEZONE":     "outlook.timezone",
}

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		LogLevel: "warn",
		Backup: BackupConfig{
			Dir:          DefaultBackupDir,
			IntervalDays: 1,
			Retention:    14,
		},
		Outlook: OutlookConfig{
			TenantID: DefaultTenantID,
			ClientID: DefaultClientID,
			Prefix:   DefaultPrefix,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// stt configuration – ~/.stt/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Every key can also be set through the environment, e.g.
// STT_DATA_FILE=~/work.stt or STT_BACKUP_RETENTION=30.
{
  // Activities file. Empty means ~/.stt/activities.
  // Can be overridden per command with: stt --file <path>
  "data_file": "",

  // Diagnostics on stderr: debug, info, warn or error.
  "log_level": "warn",

  // Dated copies of the activities file, taken before it is rewritten.
  "backup": {
    "dir": "~/.stt/backups",
    // Days between two backups. 0 disables backups.
    "interval_days": 1,
    // Number of backups kept. 0 keeps all of them.
    "retention": 14
  },

  // ── Microsoft Graph / Outlook calendar sync ──────────────────────────────
  "outlook": {
    // Azure AD tenant ID.
    // • "common"  – personal Microsoft accounts and any organisation (default)
    // • Your organisation's tenant GUID, e.g. "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"
    "tenant_id": "common",

    // Azure application (client) ID used for the OAuth2 device code flow.
    // The built-in value is the public Azure CLI app – no app registration needed.
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",

    // Text put in front of every imported event subject.
    // Can be overridden per-sync with: stt outlook sync --prefix <text>
    "prefix": "Meeting: ",

    // IANA timezone for interpreting calendar event times, e.g. "Europe/Berlin".
    // Leave empty to use UTC. Can be overridden with: stt outlook sync --timezone <tz>
    "timezone": ""
  }
}
`

// FilePath returns the path to ~/.stt/config.json.
func FilePath() (string, error) {
	base, err := storage.BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.stt/config.json, creating it with annotated defaults on first
// run.
func Load() (Config, error) {
	path, err := FilePath()
	if err != nil {
		return defaultConfig(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config file at path, creating it with annotated
// defaults if it does not exist, and applies STT_ environment overrides.
// Keys missing from the file keep their defaults.
func LoadFrom(path string) (Config, error) {
	k := koanf.New(".")

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := k.Load(rawbytes.Provider(stripLineComments(data)), json.Parser()); err != nil {
			return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		return envKeys[strings.ToUpper(key)], value
	}), nil); err != nil {
		return defaultConfig(), fmt.Errorf("loading environment: %w", err)
	}

	cfg := defaultConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("decoding config: %w", err)
	}

	// Empty strings in the file fall back to the built-in defaults.
	if cfg.Outlook.TenantID == "" {
		cfg.Outlook.TenantID = DefaultTenantID
	}
	if cfg.Outlook.ClientID == "" {
		cfg.Outlook.ClientID = DefaultClientID
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = DefaultBackupDir
	}

	return cfg, nil
}

// DataPath returns the activities file with ~ expanded.
func (c Config) DataPath() (string, error) {
	if c.DataFile == "" {
		return storage.DefaultPath()
	}
	return storage.ExpandPath(c.DataFile)
}

// BackupPolicy returns the backup settings with ~ expanded.
func (c Config) BackupPolicy() (storage.BackupPolicy, error) {
	dir, err := storage.ExpandPath(c.Backup.Dir)
	if err != nil {
		return storage.BackupPolicy{}, err
	}
	return storage.BackupPolicy{
		Dir:          dir,
		IntervalDays: c.Backup.IntervalDays,
		Retention:    c.Backup.Retention,
	}, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
