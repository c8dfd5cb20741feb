package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AppName            = "screen-pds"
	EnvPathVar         = "SCREEN_PDS"
	SettingsFileEnvVar = "SETTINGS_FILE"
	settingsFileName   = "settings.yaml"
)

type LoadOptions struct {
	SettingsPathOverride string
	TickOverride         time.Duration
}

type Config struct {
	EnableFileLogging bool
	SettingsPath      string
	TimelineDir       string
	TickInterval      time.Duration
	HotkeyRefresh     time.Duration
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_PDS env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	tick := durationFromEnv("TICK_MS", time.Millisecond, time.Second)
	if opts.TickOverride > 0 {
		tick = opts.TickOverride
	}

	cfg := &Config{
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		SettingsPath:      resolveSettingsPath(opts, dotenvValues),
		TimelineDir:       os.Getenv("TIMELINE_DIR"),
		TickInterval:      tick,
		HotkeyRefresh:     durationFromEnv("HOTKEY_REFRESH_SEC", time.Second, 5*time.Second),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveSettingsPath(opts LoadOptions, dotenvValues map[string]string) string {
	path := DefaultSettingsPath()

	if envPath := strings.TrimSpace(os.Getenv(SettingsFileEnvVar)); envPath != "" {
		path = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[SettingsFileEnvVar]); dotenvPath != "" {
		path = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.SettingsPathOverride); overridePath != "" {
		path = overridePath
	}

	return path
}

// DefaultSettingsPath returns <UserConfigDir>/screen-pds/settings.yaml, or a
// file in the working directory when no config dir is available.
func DefaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return settingsFileName
	}
	return filepath.Join(dir, AppName, settingsFileName)
}

func durationFromEnv(key string, unit, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * unit
		}
	}
	return fallback
}
