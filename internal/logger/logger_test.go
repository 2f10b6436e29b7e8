package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextReturnsAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), NewWithWriter(&buf))

	FromContext(ctx).Warn().Str("k", "v").Msg("attached")

	assert.Contains(t, buf.String(), "attached")
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestFromContextFallsBack(t *testing.T) {
	l := FromContext(context.Background())
	require.NotNil(t, l)
	// The fallback must be directly usable for chained event calls.
	l.Info().Msg("fallback")
}
