package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadInto loads configuration for the given environment into out.
//
// Order of precedence, lowest first:
//  1. <configDir>/base.yaml (required)
//  2. <configDir>/<env>.yaml (optional, overlays base)
//  3. <configDir>/secrets.env and ./.env (optional, only fill variables not already set)
//
// Callers apply Override*FromEnv afterwards so real environment variables win.
func LoadInto(env, configDir string, out any) error {
	if configDir == "" {
		configDir = "config"
	}

	if err := decodeYAMLFile(filepath.Join(configDir, "base.yaml"), out); err != nil {
		return fmt.Errorf("failed to load base.yaml: %w", err)
	}

	if env != "" && env != "base" {
		envFile := filepath.Join(configDir, env+".yaml")
		if exists(envFile) {
			if err := decodeYAMLFile(envFile, out); err != nil {
				return fmt.Errorf("failed to load %s.yaml: %w", env, err)
			}
		}
	}

	for _, f := range []string{filepath.Join(configDir, "secrets.env"), ".env"} {
		if !exists(f) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	return nil
}

// decodeYAMLFile decodes path onto out; fields absent from the file keep their current value.
func decodeYAMLFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(out); err != nil {
		// an empty overlay file is not an error
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
