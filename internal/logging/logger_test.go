package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/EzhovAndrew/zulu/internal/configuration"
)

func TestLevelForVerbosity(t *testing.T) {
	assert.Equal(t, "warn", LevelForVerbosity(0))
	assert.Equal(t, "info", LevelForVerbosity(1))
	assert.Equal(t, "debug", LevelForVerbosity(2))
	assert.Equal(t, "debug", LevelForVerbosity(3))
}

func TestInitDefaultsOutput(t *testing.T) {
	cfg := &configuration.LoggingConfig{Level: "not-a-level"}

	Init(cfg)
	Info("logger initialized")
	Sync()

	assert.Equal(t, "stdout", cfg.Output)
}
