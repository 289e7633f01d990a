package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kristofer/smog/internal/config"
)

func TestFromEnvDefaultsToAllOff(t *testing.T) {
	for _, v := range []string{"SMOG_TRACE", "SMOG_GC_LOG", "SMOG_STRESS_GC", "SMOG_NO_COLOR", "NO_COLOR"} {
		t.Setenv(v, "")
	}
	cfg := config.FromEnv()
	assert.False(t, cfg.Trace)
	assert.False(t, cfg.GCLog)
	assert.False(t, cfg.StressGC)
	assert.False(t, cfg.NoColor)
}

func TestFromEnvReadsEachToggle(t *testing.T) {
	t.Setenv("SMOG_TRACE", "1")
	t.Setenv("SMOG_GC_LOG", "1")
	t.Setenv("SMOG_STRESS_GC", "1")
	t.Setenv("SMOG_NO_COLOR", "1")

	cfg := config.FromEnv()
	assert.True(t, cfg.Trace)
	assert.True(t, cfg.GCLog)
	assert.True(t, cfg.StressGC)
	assert.True(t, cfg.NoColor)
}

func TestFromEnvZeroValueCountsAsUnset(t *testing.T) {
	t.Setenv("SMOG_TRACE", "0")
	cfg := config.FromEnv()
	assert.False(t, cfg.Trace)
}

func TestFromEnvHonorsStandardNoColor(t *testing.T) {
	t.Setenv("SMOG_NO_COLOR", "")
	t.Setenv("NO_COLOR", "1")
	cfg := config.FromEnv()
	assert.True(t, cfg.NoColor)
}
