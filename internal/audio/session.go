package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"time"
)

// State is a recording session's lifecycle position.
type State string

const (
	StateIdle       State = "IDLE"
	StateDetecting  State = "DETECTING"
	StateCapturing  State = "CAPTURING"
	StateFinalizing State = "FINALIZING"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
	StateCancelled  State = "CANCELLED"
)

var stateRank = map[State]int{
	StateIdle:       0,
	StateDetecting:  1,
	StateCapturing:  2,
	StateFinalizing: 3,
	StateCompleted:  4,
	StateFailed:     4,
	StateCancelled:  4,
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return stateRank[s] == 4
}

// ProgramDetector finds the recorder program a session will run.
type ProgramDetector interface {
	Detect(ctx context.Context, p Platform) (RecorderProgram, bool)
}

// Session is one recording into a fresh target path. It is single use: Run
// may be called once, and the state only moves forward.
type Session struct {
	TargetPath string
	Duration   time.Duration
	Program    RecorderProgram

	platform   Platform
	detector   ProgramDetector
	opts       CaptureOptions
	minBytes   int64
	out        io.Writer
	interrupts []os.Signal

	mu            sync.Mutex
	state         State
	finalized     bool
	capturedBytes int64
	path          string
	err           error
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CapturedBytes returns the output size observed at finalize.
func (s *Session) CapturedBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capturedBytes
}

// Err returns the failure recorded by finalize, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Run detects a recorder, captures into TargetPath and finalizes. The interrupt
// signals are only intercepted while Run is active; an interrupt during capture
// stops the recorder and keeps what was captured.
func (s *Session) Run(ctx context.Context) (string, error) {
	if len(s.interrupts) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, s.interrupts...)
		defer stop()
	}

	if err := s.transition(StateDetecting); err != nil {
		return "", err
	}

	program, ok := s.detector.Detect(ctx, s.platform)
	if ctx.Err() != nil {
		s.cancel()
		return "", ErrCancelled
	}
	if !ok {
		return s.abort(ErrNoRecorderAvailable)
	}
	s.Program = program

	capture := SelectCapture(s.platform, program, s.opts)

	if err := s.transition(StateCapturing); err != nil {
		return "", err
	}

	seconds := s.Duration.Seconds()
	fmt.Fprintf(s.out, "🎤 Recording started... (%gs)\n", seconds)
	fmt.Fprintln(s.out, "Recording... (Ctrl+C to stop)")
	slog.Info("Recording session started", "program", program.Name, "strategy", capture.Name(), "target", s.TargetPath, "duration", s.Duration)

	return capture.Capture(ctx, s)
}

func (s *Session) transition(next State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionLocked(next)
}

func (s *Session) transitionLocked(next State) error {
	if stateRank[next] <= stateRank[s.state] {
		return fmt.Errorf("invalid session transition %s -> %s", s.state, next)
	}
	slog.Debug("Recording session transition", "from", s.state, "to", next, "target", s.TargetPath)
	s.state = next
	return nil
}

// finalize runs teardown and settles the session exactly once. A teardown
// error becomes the cause when there is none yet. A nil cause means the capture
// ended normally; the output must then exceed minBytes or it is deleted like
// any failed capture. Later calls return the first outcome.
func (s *Session) finalize(cause error, teardown func() error) (string, error) {
	s.mu.Lock()
	if s.finalized {
		path, err := s.path, s.err
		s.mu.Unlock()
		slog.Debug("Recording session already finalized", "target", s.TargetPath)
		return path, err
	}
	s.finalized = true
	if err := s.transitionLocked(StateFinalizing); err != nil {
		slog.Debug("Finalizing from unexpected state", "error", err)
		s.state = StateFinalizing
	}
	s.mu.Unlock()

	if teardown != nil {
		if err := teardown(); err != nil && cause == nil {
			cause = err
		}
	}

	var size int64
	if info, err := os.Stat(s.TargetPath); err == nil {
		size = info.Size()
	}
	if cause == nil && size <= s.minBytes {
		cause = fmt.Errorf("%w: %s (%d bytes)", ErrEmptyOutput, s.TargetPath, size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.capturedBytes = size

	if cause != nil {
		if err := os.Remove(s.TargetPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Failed to remove partial recording", "path", s.TargetPath, "error", err)
		}
		s.err = cause
		s.state = StateFailed
		slog.Debug("Recording session failed", "target", s.TargetPath, "bytes", size, "error", cause)
		return "", cause
	}

	s.path = s.TargetPath
	s.state = StateCompleted
	slog.Debug("Recording session completed", "target", s.TargetPath, "bytes", size)
	return s.path, nil
}

// abort fails the session without touching the target path, for failures that
// happen before any output could have been created.
func (s *Session) abort(cause error) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return s.path, s.err
	}
	s.finalized = true
	s.err = cause
	s.state = StateFailed
	return "", cause
}

func (s *Session) cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finalized {
		return
	}
	s.finalized = true
	s.err = ErrCancelled
	s.state = StateCancelled
}
