package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultSettleTimeout bounds the wait for a privileged removal to become
// visible before the current root is re-aggregated.
const DefaultSettleTimeout = 2 * time.Second

// Config is the on-disk configuration. Every field is optional.
type Config struct {
	TrashDir        string   `json:"trash_dir"`
	PrivilegeHelper string   `json:"privilege_helper"`
	SettleTimeout   Duration `json:"settle_timeout"`
	LogFile         string   `json:"log_file"`
	LogLevel        string   `json:"log_level"`
	Exclude         []string `json:"exclude"`
}

// Duration is a time.Duration that unmarshals from a Go duration string.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		TrashDir:      TrashDir(),
		SettleTimeout: Duration(DefaultSettleTimeout),
		LogFile:       filepath.Join(CacheDir(), "diskord", "diskord.log"),
		LogLevel:      "info",
	}
}

// ResolvePath returns the config file to load. An explicit path always wins;
// otherwise the first existing default location is used. ok is false when
// no file applies.
func ResolvePath(explicit string) (path string, ok bool) {
	if explicit != "" {
		return explicit, true
	}
	candidate := filepath.Join(ConfigDir(), "diskord", "config.json")
	if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
		return candidate, true
	}
	return "", false
}

// Load reads the file at path and overlays it on Default().
func Load(path string) (Config, error) {
	cfg := Default()
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var file Config
	if err := json.Unmarshal(content, &file); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return merge(cfg, file)
}

// LoadDefault resolves and loads the config, returning Default() when no
// file exists.
func LoadDefault(explicit string) (Config, error) {
	path, ok := ResolvePath(explicit)
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func merge(base, file Config) (Config, error) {
	if file.SettleTimeout < 0 {
		return Config{}, errors.New("config: settle_timeout must be >= 0")
	}
	if file.TrashDir != "" {
		if !filepath.IsAbs(file.TrashDir) {
			return Config{}, fmt.Errorf("config: trash_dir %q must be absolute", file.TrashDir)
		}
		base.TrashDir = filepath.Clean(file.TrashDir)
	}
	if file.PrivilegeHelper != "" {
		base.PrivilegeHelper = file.PrivilegeHelper
	}
	if file.SettleTimeout > 0 {
		base.SettleTimeout = file.SettleTimeout
	}
	if file.LogFile != "" {
		base.LogFile = file.LogFile
	}
	if file.LogLevel != "" {
		base.LogLevel = file.LogLevel
	}
	if len(file.Exclude) > 0 {
		base.Exclude = file.Exclude
	}
	return base, nil
}
