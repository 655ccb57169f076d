package browser

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestStringifyResult(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  string
	}{
		{
			name:  "string passes through unchanged",
			input: `{"ok":true}`,
			want:  `{"ok":true}`,
		},
		{
			name:  "nil becomes empty",
			input: nil,
			want:  "",
		},
		{
			name:  "number is re-encoded",
			input: float64(7),
			want:  "7",
		},
		{
			name:  "map is re-encoded as json",
			input: map[string]interface{}{"moved": true},
			want:  `{"moved":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stringifyResult(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenRequiresInitialize(t *testing.T) {
	m := NewManager(testLogger())
	_, err := m.Open(Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not initialized")
}

func TestShutdownBeforeInitializeIsNoop(t *testing.T) {
	m := NewManager(testLogger())
	require.NoError(t, m.Shutdown())
}
