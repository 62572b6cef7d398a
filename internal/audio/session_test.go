package audio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturingSession returns a session already in the capturing state whose
// target holds size bytes (no file when size < 0).
func capturingSession(t *testing.T, size int) *Session {
	t.Helper()
	target := filepath.Join(t.TempDir(), "recording_1000.wav")
	if size >= 0 {
		require.NoError(t, os.WriteFile(target, bytes.Repeat([]byte{1}, size), 0o644))
	}
	return &Session{
		TargetPath: target,
		Duration:   time.Second,
		minBytes:   100,
		state:      StateCapturing,
	}
}

func TestSession_FinalizeIsIdempotent(t *testing.T) {
	s := capturingSession(t, 4096)
	var teardowns int
	teardown := func() error {
		teardowns++
		return nil
	}

	path, err := s.finalize(nil, teardown)
	require.NoError(t, err)
	again, err := s.finalize(nil, teardown)
	require.NoError(t, err)

	assert.Equal(t, 1, teardowns, "second finalize must not tear down again")
	assert.Equal(t, path, again)
	assert.Equal(t, s.TargetPath, path)
	assert.Equal(t, StateCompleted, s.State())
	assert.Equal(t, int64(4096), s.CapturedBytes())
	assert.FileExists(t, path)
}

func TestSession_FinalizeRaceRunsTeardownOnce(t *testing.T) {
	s := capturingSession(t, 4096)
	var teardowns atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.finalize(nil, func() error {
				teardowns.Add(1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), teardowns.Load())
	assert.Equal(t, StateCompleted, s.State())
}

func TestSession_FinalizeThresholdIsExclusive(t *testing.T) {
	tests := []struct {
		name  string
		size  int
		valid bool
	}{
		{"missing file", -1, false},
		{"empty file", 0, false},
		{"at threshold", 100, false},
		{"just above threshold", 101, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := capturingSession(t, tt.size)

			path, err := s.finalize(nil, nil)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, s.TargetPath, path)
				assert.FileExists(t, s.TargetPath)
				return
			}
			require.ErrorIs(t, err, ErrEmptyOutput)
			assert.Empty(t, path)
			assert.NoFileExists(t, s.TargetPath)
			assert.Equal(t, StateFailed, s.State())
		})
	}
}

func TestSession_FinalizeFailureDeletesOnce(t *testing.T) {
	s := capturingSession(t, 4096)
	cause := errors.New("stream broke")

	_, err := s.finalize(cause, nil)
	require.ErrorIs(t, err, cause)
	assert.NoFileExists(t, s.TargetPath)

	// a new file at the same path must survive a repeated finalize
	require.NoError(t, os.WriteFile(s.TargetPath, []byte("keep"), 0o644))
	_, err = s.finalize(cause, nil)
	require.ErrorIs(t, err, cause)
	assert.FileExists(t, s.TargetPath)
	assert.Equal(t, StateFailed, s.State())
	assert.Equal(t, cause, s.Err())
}

func TestSession_TeardownErrorFailsSession(t *testing.T) {
	s := capturingSession(t, 4096)
	copyFailed := fmt.Errorf("%w (arecord): writing target: no space left on device", ErrCaptureProcess)

	path, err := s.finalize(nil, func() error { return copyFailed })
	require.ErrorIs(t, err, ErrCaptureProcess)
	assert.Empty(t, path)
	assert.NoFileExists(t, s.TargetPath)
	assert.Equal(t, StateFailed, s.State())
}

func TestSession_TeardownErrorKeepsEarlierCause(t *testing.T) {
	s := capturingSession(t, 4096)
	cause := errors.New("exit code 2")

	_, err := s.finalize(cause, func() error { return errors.New("late copy failure") })
	assert.Equal(t, cause, err)
}

func TestSession_AbortLeavesTargetUntouched(t *testing.T) {
	s := capturingSession(t, 4096)

	_, err := s.abort(ErrProcessSpawn)
	require.ErrorIs(t, err, ErrProcessSpawn)
	assert.FileExists(t, s.TargetPath)
	assert.Equal(t, StateFailed, s.State())

	_, err = s.finalize(nil, func() error {
		t.Fatal("teardown after abort")
		return nil
	})
	require.ErrorIs(t, err, ErrProcessSpawn)
}

func TestSession_TransitionsOnlyMoveForward(t *testing.T) {
	s := &Session{state: StateIdle}

	require.NoError(t, s.transition(StateDetecting))
	require.NoError(t, s.transition(StateCapturing))
	assert.Error(t, s.transition(StateDetecting))
	assert.Error(t, s.transition(StateCapturing))
	require.NoError(t, s.transition(StateFinalizing))
	require.NoError(t, s.transition(StateCompleted))
	assert.Error(t, s.transition(StateFailed))
}

func TestState_Terminal(t *testing.T) {
	for _, s := range []State{StateCompleted, StateFailed, StateCancelled} {
		assert.True(t, s.Terminal(), s)
	}
	for _, s := range []State{StateIdle, StateDetecting, StateCapturing, StateFinalizing} {
		assert.False(t, s.Terminal(), s)
	}
}
