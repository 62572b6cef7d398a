package audio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audiolibrelab/quickrec/internal/config"
)

// installed returns a probe that only launches the named programs.
func installed(names ...string) func(ctx context.Context, name string) error {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(ctx context.Context, name string) error {
		if set[name] {
			return nil
		}
		return errors.New("executable file not found in $PATH")
	}
}

func newTestDetector(probe func(ctx context.Context, name string) error) *Detector {
	d := NewDetector(config.Default())
	d.probe = probe
	return d
}

func TestPlatform_Candidates(t *testing.T) {
	assert.Equal(t, []string{"sox"}, PlatformWindows.Candidates())
	assert.Equal(t, []string{"rec", "sox"}, PlatformMacOS.Candidates())
	assert.Equal(t, []string{"arecord", "sox", "rec"}, PlatformUnix.Candidates())
}

func TestPlatformFor(t *testing.T) {
	assert.Equal(t, PlatformWindows, PlatformFor("windows"))
	assert.Equal(t, PlatformMacOS, PlatformFor("darwin"))
	assert.Equal(t, PlatformUnix, PlatformFor("linux"))
	assert.Equal(t, PlatformUnix, PlatformFor("freebsd"))
}

func TestDetect_FirstUsableCandidateWins(t *testing.T) {
	tests := []struct {
		name      string
		platform  Platform
		installed []string
		want      string
		found     bool
	}{
		{"linux prefers arecord", PlatformUnix, []string{"rec", "sox", "arecord"}, "arecord", true},
		{"linux falls back to sox", PlatformUnix, []string{"rec", "sox"}, "sox", true},
		{"linux last resort rec", PlatformUnix, []string{"rec"}, "rec", true},
		{"mac prefers rec", PlatformMacOS, []string{"sox", "rec"}, "rec", true},
		{"mac ignores arecord", PlatformMacOS, []string{"arecord"}, "", false},
		{"windows only sox", PlatformWindows, []string{"rec", "arecord"}, "", false},
		{"windows sox", PlatformWindows, []string{"sox"}, "sox", true},
		{"nothing installed", PlatformUnix, nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDetector(installed(tt.installed...))

			program, ok := d.Detect(context.Background(), tt.platform)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, program.Name)
			if ok {
				assert.True(t, program.Available)
				assert.Contains(t, tt.platform.Candidates(), program.Name)
			}
		})
	}
}

func TestDetect_IsDeterministic(t *testing.T) {
	d := newTestDetector(installed("sox", "rec"))

	first, _ := d.Detect(context.Background(), PlatformUnix)
	for i := 0; i < 5; i++ {
		again, ok := d.Detect(context.Background(), PlatformUnix)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestDetect_StopsProbingAfterFirstMatch(t *testing.T) {
	var probed []string
	d := newTestDetector(func(ctx context.Context, name string) error {
		probed = append(probed, name)
		return nil
	})

	_, ok := d.Detect(context.Background(), PlatformUnix)
	require.True(t, ok)
	assert.Equal(t, []string{"arecord"}, probed)
}

func TestDetect_CandidateOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Recorder.Candidates = []string{"rec", "arecord"}
	d := NewDetector(cfg)
	d.probe = installed("arecord", "sox")

	program, ok := d.Detect(context.Background(), PlatformUnix)
	require.True(t, ok)
	assert.Equal(t, "arecord", program.Name)
	assert.Equal(t, []string{"rec", "arecord"}, d.Candidates(PlatformWindows))
}

func TestDetect_ProbeIsBounded(t *testing.T) {
	cfg := config.Default()
	cfg.Recorder.ProbeTimeout = 50 * time.Millisecond
	d := NewDetector(cfg)
	d.probe = func(ctx context.Context, name string) error {
		<-ctx.Done()
		return ctx.Err()
	}

	start := time.Now()
	_, ok := d.Detect(context.Background(), PlatformUnix)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDetect_CancelledContext(t *testing.T) {
	d := newTestDetector(installed("arecord"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := d.Detect(ctx, PlatformUnix)
	assert.False(t, ok)
}

func TestReport_ProbesEveryCandidate(t *testing.T) {
	d := newTestDetector(installed("sox"))

	report := d.Report(context.Background(), PlatformUnix)
	assert.Equal(t, []RecorderProgram{
		{Name: "arecord", Available: false},
		{Name: "sox", Available: true},
		{Name: "rec", Available: false},
	}, report)
}

func TestProbeProgram_MissingExecutable(t *testing.T) {
	err := probeProgram(context.Background(), filepath.Join(t.TempDir(), "no-such-recorder"))
	assert.Error(t, err)
}

func TestProbeProgram_NonZeroExitIsUsable(t *testing.T) {
	// the test binary rejects --version with exit status 2, but it did launch
	assert.NoError(t, probeProgram(context.Background(), os.Args[0]))
}

func TestCachedDetector_RemembersSuccessOnly(t *testing.T) {
	inner := &fakeDetector{}
	cached := NewCachedDetector(inner)

	_, ok := cached.Detect(context.Background(), PlatformUnix)
	assert.False(t, ok)

	inner.program, inner.ok = RecorderProgram{Name: "sox", Available: true}, true
	for i := 0; i < 3; i++ {
		program, ok := cached.Detect(context.Background(), PlatformUnix)
		require.True(t, ok)
		assert.Equal(t, "sox", program.Name)
	}
	assert.Equal(t, 2, inner.calls, "failure retried, success cached")
}
