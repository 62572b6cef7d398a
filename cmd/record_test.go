package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audiolibrelab/quickrec/internal/config"
	"github.com/audiolibrelab/quickrec/internal/menu"
	"github.com/audiolibrelab/quickrec/internal/service"
)

func TestDurationFlag(t *testing.T) {
	cfg = config.Default()

	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 5 * time.Second},
		{"3", 3 * time.Second},
		{"2.5", 2500 * time.Millisecond},
		{"1m30s", 90 * time.Second},
		{"750ms", 750 * time.Millisecond},
	}
	for _, tt := range tests {
		got, err := durationFlag(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, in := range []string{"0", "-2s", "soon", "1e12", "1e-12"} {
		_, err := durationFlag(in)
		assert.ErrorIs(t, err, menu.ErrInvalidInput, in)
	}
}

func TestResolvePath(t *testing.T) {
	cfg = config.Default()
	cfg.SetDirectory(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Output.Directory, "recording_1.wav"), make([]byte, 200), 0o644))
	svc := newService()

	path, err := resolvePath(svc, "1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Output.Directory, "recording_1.wav"), path)

	path, err = resolvePath(svc, "./elsewhere/missing.wav")
	require.NoError(t, err)
	assert.Equal(t, "./elsewhere/missing.wav", path)

	_, err = resolvePath(svc, "4")
	assert.ErrorIs(t, err, service.ErrUnknownRecording)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quickrec.yaml")
	require.NoError(t, writeDefaultConfig(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Audio, loaded.Audio)
	assert.Equal(t, 5*time.Second, loaded.Output.DefaultDuration)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(written), "default_duration: 5s")
}
