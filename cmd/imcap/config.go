package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the imcap configuration file (~/.config/imcap/config.yaml).
// Pointer fields distinguish "not set" from zero values.
type Config struct {
	Model string `yaml:"model"`
	Vocab string `yaml:"vocab"`

	// Decode defaults
	BeamWidth           *int64   `yaml:"beam_width"`
	MaxSteps            *int64   `yaml:"max_steps"`
	LengthNormalization *float64 `yaml:"length_normalization"`

	// Server
	ServerAddress string   `yaml:"server_address"`
	RateLimit     *float64 `yaml:"rate_limit"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "imcap", "config.yaml")
}

// loadConfig reads the config file if present. A missing file is not an
// error; a malformed one is.
func loadConfig() (Config, error) {
	var cfg Config
	path := configPath()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyDecodeConfig applies config file defaults to decode command
// variables when the corresponding CLI flag was not explicitly set.
func applyDecodeConfig(c *cli.Command, cfg Config,
	beamWidth, maxSteps *int64, lengthNorm *float64,
) {
	if cfg.Model != "" && !c.IsSet("model") {
		modelPath = cfg.Model
	}
	if cfg.Vocab != "" && !c.IsSet("vocab") {
		vocabPath = cfg.Vocab
	}
	if cfg.BeamWidth != nil && !c.IsSet("beam-width") {
		*beamWidth = *cfg.BeamWidth
	}
	if cfg.MaxSteps != nil && !c.IsSet("max-steps") {
		*maxSteps = *cfg.MaxSteps
	}
	if cfg.LengthNormalization != nil && !c.IsSet("length-normalization") {
		*lengthNorm = *cfg.LengthNormalization
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to the serve command
// variables, log settings included, when the corresponding CLI flag was
// not explicitly set.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, rateLimit *float64) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.RateLimit != nil && !c.IsSet("rate-limit") {
		*rateLimit = *cfg.RateLimit
	}
	if cfg.Model != "" && !c.IsSet("model") {
		modelPath = cfg.Model
	}
	if cfg.Vocab != "" && !c.IsSet("vocab") {
		vocabPath = cfg.Vocab
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}
