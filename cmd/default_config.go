package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/outbreak-sim/outbreak-sim/forecast"
)

// ModelFile represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type ModelFile struct {
	Version string          `yaml:"version"`
	Model   forecast.Config `yaml:"model"`
}

// loadModelConfig parses a model YAML file into a forecast.Config.
// Keys absent from the file keep their built-in defaults; unknown keys are errors.
func loadModelConfig(path string) (forecast.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return forecast.Config{}, fmt.Errorf("reading model config %s: %w", path, err)
	}

	file := ModelFile{Model: forecast.DefaultConfig()}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return forecast.Config{}, fmt.Errorf("parsing model config %s: %w", path, err)
	}
	return file.Model, nil
}
