package logger

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   Level
		wantOK bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{" warning ", LevelWarn, true},
		{"error", LevelError, true},
		{"off", LevelNone, true},
		{"loud", LevelWarn, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestFromVerbosity(t *testing.T) {
	assert.Equal(t, LevelNone, FromVerbosity(-1))
	assert.Equal(t, LevelWarn, FromVerbosity(0))
	assert.Equal(t, LevelInfo, FromVerbosity(1))
	assert.Equal(t, LevelDebug, FromVerbosity(2))
	assert.Equal(t, LevelDebug, FromVerbosity(5))
}

func TestConsoleFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelWarn, false)

	log.Debug("hidden %d", 1)
	log.Info("hidden %d", 2)
	log.Warn("shown %d", 3)
	log.Error("shown %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN] shown 3")
	assert.Contains(t, out, "ERROR] shown 4")
}

func TestNamedPrefixesMessages(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelDebug, false).Named("walker").Named("tree")

	log.Info("pushed %s", "src")

	assert.Contains(t, buf.String(), "walker.tree: pushed src")
}

func TestConsoleConcurrentWritesKeepLinesWhole(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, LevelDebug, false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				log.Debug("worker %d line %d", id, j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 400)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "["), "line %q", line)
	}
}
