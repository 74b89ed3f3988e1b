package config

// This file reads the optional YAML config file. Keys mirror the yaml tags on
// Config; unknown keys are rejected so typos do not pass silently.

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	homedir "github.com/mitchellh/go-homedir"
)

// EnvConfig names the environment variable that overrides the config path.
const EnvConfig = "GFTOOL_CONFIG"

const defaultPath = "~/.config/gftool/config.yaml"

// DefaultPath returns $GFTOOL_CONFIG if set, else ~/.config/gftool/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return homedir.Expand(p)
	}
	return homedir.Expand(defaultPath)
}

// LoadFile merges the YAML file at path into cfg. A missing file is an error
// only when required is set; fields absent from the file keep their values.
func LoadFile(path string, cfg *Config, required bool) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return fmt.Errorf("parse config %s: %w", expanded, err)
	}
	if cfg.LogFile != "" {
		if cfg.LogFile, err = homedir.Expand(cfg.LogFile); err != nil {
			return err
		}
	}
	cfg.ConfigFile = expanded
	return nil
}
