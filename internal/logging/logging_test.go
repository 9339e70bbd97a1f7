package logging

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restore(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		SetLevel(slog.LevelInfo)
		require.NoError(t, Configure(FormatConsole, os.Stderr))
	})
}

func TestConfigureFormats(t *testing.T) {
	restore(t)

	tests := []struct {
		format string
		want   string
	}{
		{format: FormatText, want: `msg=hello key=value`},
		{format: FormatJSON, want: `"msg":"hello","key":"value"`},
		{format: FormatConsole, want: "hello key=value"},
		{format: "", want: "hello key=value"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Configure(tt.format, &buf))
			Logger().Info("hello", "key", "value")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestConfigureRejectsUnknownFormat(t *testing.T) {
	restore(t)
	before := Logger()

	err := Configure("xml", &bytes.Buffer{})
	require.Error(t, err)
	assert.Same(t, before, Logger())
}

func TestSetLevel(t *testing.T) {
	restore(t)
	var buf bytes.Buffer
	require.NoError(t, Configure(FormatText, &buf))

	SetLevel(slog.LevelWarn)
	Logger().Info("hidden")
	Logger().Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	got, err := ParseLevel(" debug ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, got)

	got, err = ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, got)

	_, err = ParseLevel("loud")
	require.Error(t, err)
}
