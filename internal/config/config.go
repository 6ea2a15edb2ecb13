// Package config loads pawlette.json: max_backups, comment_styles, and
// logging options, via viper, falling back to defaults whenever the file
// is absent or malformed.
package config

import (
	"encoding/json"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/pawlette/pawlette/internal/logger"
	"github.com/pawlette/pawlette/internal/paths"
)

// LoggingConfig mirrors the logging sub-object of pawlette.json.
type LoggingConfig struct {
	EnableConsole bool   `mapstructure:"enable_console" json:"enable_console"`
	ConsoleLevel  string `mapstructure:"console_level" json:"console_level"`
	FileLevel     string `mapstructure:"file_level" json:"file_level"`
	JournalLevel  string `mapstructure:"journal_level" json:"journal_level"`
	EnableColors  bool   `mapstructure:"enable_colors" json:"enable_colors"`
}

// Config is the root of pawlette.json.
type Config struct {
	MaxBackups    int               `mapstructure:"max_backups" json:"max_backups"`
	CommentStyles map[string]string `mapstructure:"comment_styles" json:"comment_styles"`
	Logging       LoggingConfig     `mapstructure:"logging" json:"logging"`
}

// Default returns pawlette's built-in configuration defaults.
func Default() *Config {
	return &Config{
		MaxBackups: 5,
		CommentStyles: map[string]string{
			".json": "//",
			".conf": "#",
			".yaml": "#",
			".yml":  "#",
			".toml": "#",
			".ini":  "#",
		},
		Logging: LoggingConfig{
			EnableConsole: true,
			ConsoleLevel:  "info",
			FileLevel:     "debug",
			JournalLevel:  "warn",
			EnableColors:  true,
		},
	}
}

// CommentToken resolves the comment token for a given file extension
// (including the leading dot), falling back to "#" per the component design.
func (c *Config) CommentToken(ext string) string {
	if tok, ok := c.CommentStyles[ext]; ok {
		return tok
	}
	return "#"
}

// Load reads pawlette.json from the given path (paths.AppConfigFile by
// convention), returning defaults with a logged warning on any error.
func Load(path string) *Config {
	def := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			logger.Warn("config file not found, using defaults", "path", path)
		} else {
			logger.Warn("config stat failed, using defaults", "path", path, "error", err)
		}
		return def
	}

	// comment_styles keys contain "." (".json"), so "." cannot be viper's
	// key delimiter.
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		logger.Warn("config malformed, using defaults", "path", path, "error", err)
		return def
	}

	cfg := Default()
	decodeOpts := func(c *mapstructure.DecoderConfig) {
		c.ErrorUnused = false
	}
	if err := v.Unmarshal(cfg, decodeOpts); err != nil {
		logger.Warn("config decode failed, using defaults", "path", path, "error", err)
		return def
	}
	if cfg.CommentStyles == nil {
		cfg.CommentStyles = def.CommentStyles
	}
	return cfg
}

// Generate writes the default configuration to paths.AppConfigFile,
// pretty-printed, for the `generate-config` CLI command.
func Generate() error {
	def := Default()
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return paths.AtomicWrite(paths.AppConfigFile, data, 0o644)
}
