// Package config loads prio configuration from layered JSONC files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"
)

// FileName is the project config file looked up in the work directory.
const FileName = ".prio.json"

// Defaults.
const (
	DefaultBacklogFile = "roadmap/implementation-order.json"
	DefaultLockTimeout = 2 * time.Second
)

// Errors returned while loading configuration.
var (
	ErrFileNotFound   = errors.New("config file not found")
	ErrFileRead       = errors.New("cannot read config file")
	ErrInvalid        = errors.New("invalid config file")
	ErrBacklogEmpty   = errors.New("backlog_file cannot be empty")
	ErrBadLockTimeout = errors.New("lock_timeout must be a positive duration")
)

// Config holds every configuration option.
type Config struct {
	// From config files (serialized).
	BacklogFile string   `json:"backlog_file"`
	LockTimeout Duration `json:"lock_timeout"`
	WeightsFile string   `json:"weights_file,omitempty"`

	// Resolved (computed, not serialized).
	WorkDir        string  `json:"-"`
	BacklogFileAbs string  `json:"-"`
	WeightsFileAbs string  `json:"-"`
	Sources        Sources `json:"-"`
}

// Sources records which config files contributed to a [Config].
type Sources struct {
	Global  string
	Project string
}

// Duration is a [time.Duration] that reads and writes Go duration strings
// such as "2s" or "500ms".
type Duration time.Duration

// MarshalJSON implements [json.Marshaler].
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements [json.Unmarshaler].
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"2s\": %w", err)
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(parsed)

	return nil
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		BacklogFile: DefaultBacklogFile,
		LockTimeout: Duration(DefaultLockTimeout),
	}
}

// LoadInput holds the inputs for [Load].
type LoadInput struct {
	WorkDir         string            // -C/--cwd value; os.Getwd() when empty
	ConfigPath      string            // -c/--config value
	BacklogOverride string            // --backlog value; empty means no override
	Env             map[string]string // environment variables
}

// Load resolves configuration with the following precedence (highest wins):
//  1. Defaults
//  2. Global user config ($XDG_CONFIG_HOME/prio/config.json or ~/.config/prio/config.json)
//  3. Project config (.prio.json in the work dir), or the file given by ConfigPath
//  4. CLI overrides
//
// Relative paths resolve against the work directory.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}

		workDir = wd
	}

	if !filepath.IsAbs(workDir) {
		abs, err := filepath.Abs(workDir)
		if err != nil {
			return Config{}, fmt.Errorf("resolving work dir: %w", err)
		}

		workDir = abs
	}

	cfg := Default()

	if globalPath := globalConfigPath(input.Env); globalPath != "" {
		layer, loaded, err := loadFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = merge(cfg, layer)
			cfg.Sources.Global = globalPath
		}
	}

	projectPath, mustExist := filepath.Join(workDir, FileName), false
	if input.ConfigPath != "" {
		projectPath, mustExist = resolve(workDir, input.ConfigPath), true
	}

	layer, loaded, err := loadFile(projectPath, mustExist)
	if err != nil {
		return Config{}, err
	}

	if loaded {
		cfg = merge(cfg, layer)
		cfg.Sources.Project = projectPath
	}

	if input.BacklogOverride != "" {
		cfg.BacklogFile = input.BacklogOverride
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	cfg.WorkDir = workDir
	cfg.BacklogFileAbs = resolve(workDir, cfg.BacklogFile)

	if cfg.WeightsFile != "" {
		cfg.WeightsFileAbs = resolve(workDir, cfg.WeightsFile)
	}

	return cfg, nil
}

// Format renders cfg as the JSON a user could put in a config file.
func Format(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting config: %w", err)
	}

	return string(data), nil
}

func globalConfigPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "prio", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "prio", "config.json")
	}

	return ""
}

// layer is a config file as written: nil fields were not set.
type layer struct {
	BacklogFile *string   `json:"backlog_file"`
	LockTimeout *Duration `json:"lock_timeout"`
	WeightsFile *string   `json:"weights_file"`
}

func loadFile(path string, mustExist bool) (layer, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if mustExist {
				return layer{}, false, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}

			return layer{}, false, nil
		}

		return layer{}, false, fmt.Errorf("%w: %s: %w", ErrFileRead, path, err)
	}

	l, err := parse(data)
	if err != nil {
		return layer{}, false, fmt.Errorf("%w %s: %w", ErrInvalid, path, err)
	}

	return l, true, nil
}

func parse(data []byte) (layer, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return layer{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var l layer

	if err := json.Unmarshal(standardized, &l); err != nil {
		return layer{}, fmt.Errorf("invalid JSON: %w", err)
	}

	if l.BacklogFile != nil && *l.BacklogFile == "" {
		return layer{}, ErrBacklogEmpty
	}

	return l, nil
}

func merge(base Config, overlay layer) Config {
	if overlay.BacklogFile != nil {
		base.BacklogFile = *overlay.BacklogFile
	}

	if overlay.LockTimeout != nil {
		base.LockTimeout = *overlay.LockTimeout
	}

	if overlay.WeightsFile != nil {
		base.WeightsFile = *overlay.WeightsFile
	}

	return base
}

func validate(cfg Config) error {
	if cfg.BacklogFile == "" {
		return ErrBacklogEmpty
	}

	if cfg.LockTimeout <= 0 {
		return fmt.Errorf("%w: %s", ErrBadLockTimeout, time.Duration(cfg.LockTimeout))
	}

	return nil
}

func resolve(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}
