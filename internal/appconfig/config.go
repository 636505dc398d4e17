package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/termclock/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int            `mapstructure:"config_version" yaml:"config_version"`
	Update        UpdateConfig   `mapstructure:"update" yaml:"update"`
	Console       ConsoleConfig  `mapstructure:"console" yaml:"console"`
	Platform      PlatformConfig `mapstructure:"platform" yaml:"platform"`
	Logging       LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	SSH           SSHConfig      `mapstructure:"ssh" yaml:"ssh"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// DefaultUpdateURL serves the latest build for the running platform.
const DefaultUpdateURL = "https://updates.pkt.systems/termclock/${GOOS}-${GOARCH}/termclock"

// UpdateConfig controls the self-updater.
type UpdateConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
	// Executable overrides the path that is replaced; empty means the running binary.
	Executable             string `mapstructure:"executable" yaml:"executable"`
	CheckTimeoutSeconds    int    `mapstructure:"check_timeout_seconds" yaml:"check_timeout_seconds"`
	DownloadTimeoutSeconds int    `mapstructure:"download_timeout_seconds" yaml:"download_timeout_seconds"`
	RestartDelaySeconds    int    `mapstructure:"restart_delay_seconds" yaml:"restart_delay_seconds"`
}

// ConsoleConfig controls the console look and buffers.
type ConsoleConfig struct {
	Theme          string `mapstructure:"theme" yaml:"theme"`
	Prompt         string `mapstructure:"prompt" yaml:"prompt"`
	BufferMaxLines int    `mapstructure:"buffer_max_lines" yaml:"buffer_max_lines"`
	ScrollStep     int    `mapstructure:"scroll_step" yaml:"scroll_step"`
	HistoryMax     int    `mapstructure:"history_max" yaml:"history_max"`
	Banner         bool   `mapstructure:"banner" yaml:"banner"`
}

// PlatformConfig switches host integrations.
type PlatformConfig struct {
	Lockdown     bool   `mapstructure:"lockdown" yaml:"lockdown"`
	Autostart    bool   `mapstructure:"autostart" yaml:"autostart"`
	AutostartDir string `mapstructure:"autostart_dir" yaml:"autostart_dir"`
}

// LoggingConfig controls where the console logs and how much.
type LoggingConfig struct {
	File               string `mapstructure:"file" yaml:"file"`
	Level              string `mapstructure:"level" yaml:"level"`
	DisableAuditTrails bool   `mapstructure:"disable_audit_trails" yaml:"disable_audit_trails"`
}

// SSHConfig configures the SSH server started by serve.
type SSHConfig struct {
	Addr           string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath    string `mapstructure:"host_key_path" yaml:"host_key_path"`
	AuthorizedKeys string `mapstructure:"authorized_keys" yaml:"authorized_keys"`
	MaxSessions    int    `mapstructure:"max_sessions" yaml:"max_sessions"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	base := filepath.Join(home, ".termclock")
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Update: UpdateConfig{
			URL:                    DefaultUpdateURL,
			Executable:             "",
			CheckTimeoutSeconds:    15,
			DownloadTimeoutSeconds: 300,
			RestartDelaySeconds:    2,
		},
		Console: ConsoleConfig{
			Theme:          string(schema.DefaultTheme),
			Prompt:         schema.Prompt,
			BufferMaxLines: 0,
			ScrollStep:     schema.DefaultScrollStep,
			HistoryMax:     schema.DefaultHistoryMax,
			Banner:         true,
		},
		Platform: PlatformConfig{
			Lockdown:     true,
			Autostart:    false,
			AutostartDir: filepath.Join(home, ".config", "autostart"),
		},
		Logging: LoggingConfig{
			File:               filepath.Join(base, "termclock.log"),
			Level:              "info",
			DisableAuditTrails: false,
		},
		SSH: SSHConfig{
			Addr:           ":2222",
			HostKeyPath:    filepath.Join(base, "ssh_host_key"),
			AuthorizedKeys: filepath.Join(home, ".ssh", "authorized_keys"),
			MaxSessions:    16,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".termclock", "config.yaml"), nil
}

// SessionConfig returns the per-session settings.
func (c Config) SessionConfig() schema.SessionConfig {
	return schema.SessionConfig{
		Prompt:         c.Console.Prompt,
		BufferMaxLines: c.Console.BufferMaxLines,
		ScrollStep:     c.Console.ScrollStep,
		HistoryMax:     c.Console.HistoryMax,
		Banner:         c.Console.Banner,
	}
}

// CheckTimeout returns the update check timeout.
func (u UpdateConfig) CheckTimeout() time.Duration {
	return time.Duration(u.CheckTimeoutSeconds) * time.Second
}

// DownloadTimeout returns the update download timeout; zero means unbounded.
func (u UpdateConfig) DownloadTimeout() time.Duration {
	return time.Duration(u.DownloadTimeoutSeconds) * time.Second
}

// RestartDelay returns the pause between a successful update and the restart.
func (u UpdateConfig) RestartDelay() time.Duration {
	return time.Duration(u.RestartDelaySeconds) * time.Second
}
