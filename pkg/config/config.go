// Package config loads goalview settings from .goalview/config.json and
// GOALVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/alantheprice/goalview/pkg/goals"
	"github.com/alantheprice/goalview/pkg/utils"
)

// Output formats of rendered documents.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatANSI = "ansi"
)

const (
	configDirName  = ".goalview"
	configFileName = "config.json"
)

type Config struct {
	Render RenderConfig `mapstructure:"render" json:"render"`
	Serve  ServeConfig  `mapstructure:"serve" json:"serve"`
	Cache  CacheConfig  `mapstructure:"cache" json:"cache"`
	Log    LogConfig    `mapstructure:"log" json:"log"`
}

// RenderConfig controls document layout. A zero width means the terminal
// width.
type RenderConfig struct {
	Width       int    `mapstructure:"width" json:"width"`
	Format      string `mapstructure:"format" json:"format"`
	Separator   string `mapstructure:"separator" json:"separator,omitempty"`
	AllHyps     bool   `mapstructure:"all_hyps" json:"all_hyps"`
	HideShelved bool   `mapstructure:"hide_shelved" json:"hide_shelved"`
}

type ServeConfig struct {
	Port int `mapstructure:"port" json:"port"`
}

// CacheConfig sizes the goal answer cache.
type CacheConfig struct {
	Size int `mapstructure:"size" json:"size"`
}

type LogConfig struct {
	File string `mapstructure:"file" json:"file"`
	JSON bool   `mapstructure:"json" json:"json"`
}

// GoalOptions returns the goal panel options of the render settings.
func (c Config) GoalOptions() goals.Options {
	return goals.Options{
		Separator:   c.Render.Separator,
		AllHyps:     c.Render.AllHyps,
		HideShelved: c.Render.HideShelved,
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch c.Render.Format {
	case FormatText, FormatHTML, FormatANSI:
	default:
		return utils.NewValidationError(utils.KindInvalidRequest, "render.format",
			fmt.Sprintf("unknown format %q (want text, html or ansi)", c.Render.Format))
	}
	if c.Render.Width < 0 {
		return utils.NewValidationError(utils.KindInvalidRequest, "render.width", "must not be negative")
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return utils.NewValidationError(utils.KindInvalidRequest, "serve.port", fmt.Sprintf("%d out of range", c.Serve.Port))
	}
	if c.Cache.Size < 0 {
		return utils.NewValidationError(utils.KindInvalidRequest, "cache.size", "must not be negative")
	}
	return nil
}

func getHomeConfigPath() (string, string) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	configDir := filepath.Join(home, configDirName)
	return configDir, filepath.Join(configDir, configFileName)
}

func getCurrentConfigPath() (string, string) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", ""
	}
	configDir := filepath.Join(cwd, configDirName)
	return configDir, filepath.Join(configDir, configFileName)
}

// Path returns the config file in effect: $GOALVIEW_CONFIG, else
// ./.goalview/config.json, else ~/.goalview/config.json. It returns "" when
// none exists.
func Path() string {
	if p := os.Getenv("GOALVIEW_CONFIG"); p != "" {
		return p
	}
	_, current := getCurrentConfigPath()
	_, home := getHomeConfigPath()
	for _, p := range []string{current, home} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("render.width", 0)
	v.SetDefault("render.format", FormatText)
	v.SetDefault("render.separator", "")
	v.SetDefault("render.all_hyps", false)
	v.SetDefault("render.hide_shelved", false)
	v.SetDefault("serve.port", 54321)
	v.SetDefault("cache.size", 256)
	v.SetDefault("log.file", utils.DefaultLogFile)
	v.SetDefault("log.json", false)

	v.SetConfigType("json")
	v.SetEnvPrefix("GOALVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file found by Path, if any, and applies env
// overrides such as GOALVIEW_RENDER_WIDTH.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path. An empty path yields the defaults with
// env overrides.
func LoadFile(path string) (Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save writes cfg to path, creating the directory if needed. An empty path
// means ./.goalview/config.json.
func Save(cfg Config, path string) error {
	if path == "" {
		_, path = getCurrentConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.Set("render.width", cfg.Render.Width)
	v.Set("render.format", cfg.Render.Format)
	v.Set("render.separator", cfg.Render.Separator)
	v.Set("render.all_hyps", cfg.Render.AllHyps)
	v.Set("render.hide_shelved", cfg.Render.HideShelved)
	v.Set("serve.port", cfg.Serve.Port)
	v.Set("cache.size", cfg.Cache.Size)
	v.Set("log.file", cfg.Log.File)
	v.Set("log.json", cfg.Log.JSON)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
