package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		level     LogLevel
		wantDebug bool
		wantInfo  bool
	}{
		{level: DebugLevel, wantDebug: true, wantInfo: true},
		{level: "DEBUG", wantDebug: true, wantInfo: true},
		{level: InfoLevel, wantDebug: false, wantInfo: true},
		{level: ErrorLevel, wantDebug: false, wantInfo: false},
		{level: "bogus", wantDebug: false, wantInfo: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&Config{Level: tt.level, Output: &buf})

			l.Debug("debug line")
			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug line")))

			l.Info("info line", "phase", "build")
			assert.Equal(t, tt.wantInfo, bytes.Contains(buf.Bytes(), []byte("info line")))
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: InfoLevel, Output: &buf, JSON: true})
	l.Info("launched", "pid", 42)
	assert.Contains(t, buf.String(), `"msg":"launched"`)
	assert.Contains(t, buf.String(), `"pid":42`)
}
