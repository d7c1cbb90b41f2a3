package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joeshaw/envdecode"

	"github.com/reoring/goform/i18n"
	"github.com/reoring/goform/survey"
)

// Config holds the environment defaults shared by every subcommand.
type Config struct {
	// Survey is a YAML definition path; empty means the built-in survey. ENV: GOFORM_SURVEY
	Survey string `env:"GOFORM_SURVEY"`
	// Lang selects the issue message language ("en" or "ja"). ENV: GOFORM_LANG
	Lang string `env:"GOFORM_LANG,default=en"`
	// LogLevel is a slog level name. ENV: GOFORM_LOG_LEVEL
	LogLevel string `env:"GOFORM_LOG_LEVEL,default=warn"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if cfg.Lang == "" {
		cfg.Lang = "en"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	return cfg, nil
}

// apply installs the language and returns a stderr logger at the
// configured level.
func (c Config) apply() (*slog.Logger, error) {
	i18n.SetLanguage(c.Lang)
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func (c Config) definition(path string) (*survey.Definition, error) {
	if path == "" {
		path = c.Survey
	}
	if path == "" {
		return survey.Default(), nil
	}
	return survey.LoadFile(path)
}
