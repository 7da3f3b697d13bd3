package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level    string
		encoding string
		want     zapcore.Level
		wantErr  bool
	}{
		{level: "debug", encoding: "json", want: zapcore.DebugLevel},
		{level: "info", encoding: "console", want: zapcore.InfoLevel},
		{level: "warn", encoding: "json", want: zapcore.WarnLevel},
		{level: "error", encoding: "console", want: zapcore.ErrorLevel},
		{level: "verbose", encoding: "json", wantErr: true},
		{level: "info", encoding: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.encoding, func(t *testing.T) {
			l, err := New(tt.level, tt.encoding)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv(LevelEnv, "warn")
	t.Setenv(EncodingEnv, "json")

	l, err := New("", "")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}
