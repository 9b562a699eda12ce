package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/outbreak-sim/outbreak-sim/forecast"
)

// Manifest records one sweep run: the inputs, and what happened to each region.
type Manifest struct {
	RunID      string          `yaml:"run_id"`
	CreatedAt  string          `yaml:"created_at"`
	Today      string          `yaml:"today"`
	Country    string          `yaml:"country"`
	Iterations int             `yaml:"iterations"`
	Format     Format          `yaml:"format"`
	Model      forecast.Config `yaml:"model"`
	Regions    []RegionOutcome `yaml:"regions"`
}

// RegionOutcome is the sweep result for a single region.
type RegionOutcome struct {
	State         string `yaml:"state"`
	File          string `yaml:"file,omitempty"`
	Rows          int    `yaml:"rows,omitempty"`
	OverwhelmedOn string `yaml:"overwhelmed_on,omitempty"`
	Error         string `yaml:"error,omitempty"`
}

// Failed reports whether the region produced no table.
func (o RegionOutcome) Failed() bool {
	return o.Error != ""
}

// WriteManifest writes the manifest as YAML.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}
