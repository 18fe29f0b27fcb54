package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", &buf)

	logger.Info().Str("entity", "AAA.JK").Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Warn().Str("entity", "AAA.JK").Msg("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "AAA.JK")
}

func TestOrDiscard(t *testing.T) {
	l := New("info", &bytes.Buffer{})
	assert.Same(t, l, OrDiscard(l))
	assert.NotNil(t, OrDiscard(nil))

	// Must not panic.
	OrDiscard(nil).Error().Msg("dropped")
}
