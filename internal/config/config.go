package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"

	"runcohorts/internal/grouping"
	"runcohorts/internal/log"
	"runcohorts/internal/quantity"
)

// HomeEnv overrides the configuration directory (default ~/.runcohorts)
const HomeEnv = "RUNCOHORTS_HOME"

const configFile = "config.toml"

// Config represents the application configuration
type Config struct {
	Strava     StravaConfig            `toml:"strava"`
	Display    DisplayConfig           `toml:"display"`
	Sync       SyncConfig              `toml:"sync"`
	Grouping   map[string]MetricConfig `toml:"grouping"`
	Prediction PredictionConfig        `toml:"prediction"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	CallbackPort int    `toml:"callback_port,omitempty"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `toml:"distance_unit"` // "mi" or "km"
}

// SyncConfig controls which activities are imported
type SyncConfig struct {
	ActivityTypes []string `toml:"activity_types"`
	PerPage       int      `toml:"per_page"`
}

// MetricConfig overrides one metric's grouping parameters. Unset fields keep
// the metric's defaults.
type MetricConfig struct {
	Tolerance   *float64 `toml:"tolerance,omitempty"`
	BucketWidth *float64 `toml:"bucket_width,omitempty"`
}

// PredictionConfig controls forecasts
type PredictionConfig struct {
	WeeksAhead float64 `toml:"weeks_ahead"`
	// Enabled attaches a prediction to every cohort with two or more workouts
	Enabled bool `toml:"enabled"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Display: DisplayConfig{
			DistanceUnit: quantity.Miles,
		},
		Sync: SyncConfig{
			ActivityTypes: []string{"Run", "TrailRun", "Walk", "Hike"},
			PerPage:       100,
		},
		Grouping: map[string]MetricConfig{},
		Prediction: PredictionConfig{
			WeeksAhead: grouping.DefaultWeeksAhead,
		},
	}
}

// Load reads the configuration from the config directory
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path, filling defaults for missing values
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	for _, key := range md.Undecoded() {
		log.Warnf("ignoring unknown config key %q in %s", key.String(), path)
	}

	defaults := DefaultConfig()
	if cfg.Display.DistanceUnit == "" {
		cfg.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if len(cfg.Sync.ActivityTypes) == 0 {
		cfg.Sync.ActivityTypes = defaults.Sync.ActivityTypes
	}
	if cfg.Sync.PerPage == 0 {
		cfg.Sync.PerPage = defaults.Sync.PerPage
	}
	if cfg.Grouping == nil {
		cfg.Grouping = map[string]MetricConfig{}
	}

	return &cfg, nil
}

// Save writes the configuration to the config directory
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as TOML to path
func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encoding config: %w", err)
	}
	return f.Close()
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}
	for _, m := range grouping.AllMetrics {
		def, _ := grouping.Lookup(m)
		tol, width := def.DefaultTolerance, def.DefaultBucketWidth
		example.Grouping[string(m)] = MetricConfig{Tolerance: &tol, BucketWidth: &width}
	}

	return SaveFile(path, &example)
}

// Parameters returns the grouping parameters for metric, with defaults for
// anything the file leaves out
func (c *Config) Parameters(metric grouping.MetricType) (grouping.Parameters, error) {
	def, err := grouping.Lookup(metric)
	if err != nil {
		return grouping.Parameters{}, err
	}

	params := def.DefaultParameters()
	if mc, ok := c.Grouping[string(metric)]; ok {
		if mc.Tolerance != nil {
			params.Tolerance = *mc.Tolerance
		}
		if mc.BucketWidth != nil {
			params.BucketWidth = *mc.BucketWidth
		}
	}
	return params, nil
}

// Validate checks everything except Strava credentials and reports every
// problem found
func (c *Config) Validate() error {
	var errs error

	switch c.Display.DistanceUnit {
	case "", quantity.Miles, quantity.Kilometers:
	default:
		errs = multierr.Append(errs, fmt.Errorf("display.distance_unit must be %q or %q, got %q",
			quantity.Miles, quantity.Kilometers, c.Display.DistanceUnit))
	}

	if c.Sync.PerPage < 0 || c.Sync.PerPage > 200 {
		errs = multierr.Append(errs, fmt.Errorf("sync.per_page must be between 1 and 200, got %d", c.Sync.PerPage))
	}

	keys := make([]string, 0, len(c.Grouping))
	for name := range c.Grouping {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	for _, name := range keys {
		metric, err := grouping.ParseMetric(name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("grouping.%s: %w", name, err))
			continue
		}
		params, _ := c.Parameters(metric)
		if err := params.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("grouping.%s: %w", name, err))
		}
	}

	if w := c.Prediction.WeeksAhead; math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		errs = multierr.Append(errs, fmt.Errorf("prediction.weeks_ahead must be a non-negative number, got %v", w))
	}

	return errs
}

// ValidateStrava checks the Strava credentials needed to log in and sync
func (c *Config) ValidateStrava() error {
	var errs error
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		errs = multierr.Append(errs, errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api"))
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		errs = multierr.Append(errs, errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api"))
	}
	if c.Strava.CallbackPort < 0 || c.Strava.CallbackPort > 65535 {
		errs = multierr.Append(errs, fmt.Errorf("strava.callback_port %d is not a valid port", c.Strava.CallbackPort))
	}
	return errs
}

// IncludesActivity reports whether sync should keep an activity type
func (c *Config) IncludesActivity(activityType string) bool {
	return slices.Contains(c.Sync.ActivityTypes, activityType)
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".runcohorts"), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	return getConfigPath()
}
