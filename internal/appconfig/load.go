package appconfig

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pkt.systems/termclock/schema"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("update.url", cfg.Update.URL)
	v.SetDefault("update.executable", cfg.Update.Executable)
	v.SetDefault("update.check_timeout_seconds", cfg.Update.CheckTimeoutSeconds)
	v.SetDefault("update.download_timeout_seconds", cfg.Update.DownloadTimeoutSeconds)
	v.SetDefault("update.restart_delay_seconds", cfg.Update.RestartDelaySeconds)
	v.SetDefault("console.theme", cfg.Console.Theme)
	v.SetDefault("console.prompt", cfg.Console.Prompt)
	v.SetDefault("console.buffer_max_lines", cfg.Console.BufferMaxLines)
	v.SetDefault("console.scroll_step", cfg.Console.ScrollStep)
	v.SetDefault("console.history_max", cfg.Console.HistoryMax)
	v.SetDefault("console.banner", cfg.Console.Banner)
	v.SetDefault("platform.lockdown", cfg.Platform.Lockdown)
	v.SetDefault("platform.autostart", cfg.Platform.Autostart)
	v.SetDefault("platform.autostart_dir", cfg.Platform.AutostartDir)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.disable_audit_trails", cfg.Logging.DisableAuditTrails)
	v.SetDefault("ssh.addr", cfg.SSH.Addr)
	v.SetDefault("ssh.host_key_path", cfg.SSH.HostKeyPath)
	v.SetDefault("ssh.authorized_keys", cfg.SSH.AuthorizedKeys)
	v.SetDefault("ssh.max_sessions", cfg.SSH.MaxSessions)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validate(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if err := validateUpdateURL(cfg.Update.URL); err != nil {
		return err
	}
	theme, ok := schema.NormalizeThemeName(cfg.Console.Theme)
	if !ok {
		return fmt.Errorf("unsupported console.theme %q", cfg.Console.Theme)
	}
	cfg.Console.Theme = string(theme)
	if _, err := schema.NormalizeSessionConfig(cfg.SessionConfig()); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if cfg.Update.CheckTimeoutSeconds < 0 || cfg.Update.DownloadTimeoutSeconds < 0 || cfg.Update.RestartDelaySeconds < 0 {
		return fmt.Errorf("update timeouts must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported logging.level %q", cfg.Logging.Level)
	}
	return nil
}

func validateUpdateURL(raw string) error {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("update.url must include scheme and host (e.g. https://example.com/termclock)")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("update.url scheme must be http or https")
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Update.URL = expandEnv(cfg.Update.URL)
	cfg.Update.Executable = expandEnv(cfg.Update.Executable)
	cfg.Platform.AutostartDir = expandEnv(cfg.Platform.AutostartDir)
	cfg.Logging.File = expandEnv(cfg.Logging.File)
	cfg.SSH.HostKeyPath = expandEnv(cfg.SSH.HostKeyPath)
	cfg.SSH.AuthorizedKeys = expandEnv(cfg.SSH.AuthorizedKeys)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	case "GOOS":
		return runtime.GOOS, true
	case "GOARCH":
		return runtime.GOARCH, true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
