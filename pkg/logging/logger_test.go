package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunIDStable(t *testing.T) {
	a := RunID()
	b := RunID()
	require.NotEmpty(t, a)
	assert.Equal(t, a, b, "run ID must not change within a process")
}

func TestConfigureRejectsBadLevel(t *testing.T) {
	err := Configure("shouting", "")
	assert.Error(t, err)
}

func TestConfigureWithFileSink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Configure("debug", dir))

	log := New("test")
	log.Debug().Msg("sink smoke test")
}

func TestNopLoggerIsSilent(t *testing.T) {
	log := Nop()
	// Must not panic and must be fully disabled.
	log.Error().Msg("ignored")
	assert.Equal(t, "disabled", log.GetLevel().String())
}
