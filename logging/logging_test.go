package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		cfg   Config
		level zapcore.Level
	}{
		{Config{}, zapcore.InfoLevel},
		{Config{ Debug: true }, zapcore.DebugLevel},
		{Config{ Level: "WARN" }, zapcore.WarnLevel},
		{Config{ Debug: true, Level: "error" }, zapcore.ErrorLevel},
	}

	for i, test := range tests {
		log, err := New(test.cfg)
		require.NoError(t, err, "%d", i)
		core := log.Desugar().Core()
		assert.True(t, core.Enabled(test.level), "%d", i)
		if test.level > zapcore.DebugLevel {
			assert.False(t, core.Enabled(test.level - 1), "%d", i)
		}
	}
}

func TestQuiet(t *testing.T) {
	log, err := New(Config{ Quiet: true, Level: "nonsense" })
	require.NoError(t, err)
	assert.False(t, log.Desugar().Core().Enabled(zapcore.ErrorLevel))
	assert.False(t, Nop().Desugar().Core().Enabled(zapcore.ErrorLevel))
}

func TestBadLevel(t *testing.T) {
	_, err := New(Config{ Level: "loud" })
	assert.Error(t, err)
}
