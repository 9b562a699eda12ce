package cmd

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outbreak-sim/outbreak-sim/forecast"
)

// newModelFlagsCommand binds the model flags on a throwaway command so
// Changed() reflects only what each test sets.
func newModelFlagsCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	c.Flags().StringVar(&modelConfigPath, "model-config", "defaults.yaml", "")
	c.Flags().Float64Var(&r0Initial, "r0-initial", 2.4, "")
	c.Flags().IntVar(&intervalDays, "interval", 4, "")
	return c
}

func TestResolveModelConfig_NoFileNoFlags_BuiltInDefaults(t *testing.T) {
	c := newModelFlagsCommand()
	modelConfigPath = filepath.Join(t.TempDir(), "defaults.yaml")

	cfg, err := resolveModelConfig(c)

	require.NoError(t, err)
	assert.Equal(t, forecast.DefaultConfig(), cfg)
}

func TestResolveModelConfig_ExplicitFlagsOverrideFile(t *testing.T) {
	// GIVEN a file setting r0 and the interval
	c := newModelFlagsCommand()
	require.NoError(t, c.Flags().Set("model-config", writeModelFile(t, "model:\n  r0_initial: 3.0\n  model_interval_days: 7\n")))

	// WHEN only --r0-initial is set on the command line
	require.NoError(t, c.Flags().Set("r0-initial", "1.8"))
	cfg, err := resolveModelConfig(c)

	// THEN the flag wins for r0 and the file wins for the interval
	require.NoError(t, err)
	assert.Equal(t, 1.8, cfg.R0Initial)
	assert.Equal(t, 7, cfg.ModelIntervalDays)
}

func TestResolveModelConfig_ExplicitMissingFile_Errors(t *testing.T) {
	c := newModelFlagsCommand()
	require.NoError(t, c.Flags().Set("model-config", filepath.Join(t.TempDir(), "absent.yaml")))

	_, err := resolveModelConfig(c)

	assert.Error(t, err)
}

func TestResolveModelConfig_InvalidOverride_Rejected(t *testing.T) {
	c := newModelFlagsCommand()
	modelConfigPath = filepath.Join(t.TempDir(), "defaults.yaml")
	require.NoError(t, c.Flags().Set("interval", "0"))

	_, err := resolveModelConfig(c)

	assert.True(t, errors.Is(err, forecast.ErrInvalidConfig))
}

func TestParseClock(t *testing.T) {
	clock, err := parseClock("2020-04-11")
	require.NoError(t, err)
	assert.Equal(t, "2020-04-11", clock().Format(forecast.DateLayout))

	e := forecast.Engine{Now: clock}
	assert.Equal(t, "2020-04-10", e.Today().Format(forecast.DateLayout))

	_, err = parseClock("04/11/2020")
	assert.Error(t, err)

	clock, err = parseClock("")
	require.NoError(t, err)
	assert.False(t, clock().IsZero())
}
