package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/audiolibrelab/quickrec/internal/config"
)

// Recorder creates one Session per recording request and is the boundary where
// recording errors stop: Record reports them and returns no path.
type Recorder struct {
	cfg       *config.Config
	detector  ProgramDetector
	platform  Platform
	opts      CaptureOptions
	logWriter io.Writer

	interrupts []os.Signal
}

// NewRecorder creates a recorder for the current platform. Progress and
// diagnostics for the user are written to logWriter.
func NewRecorder(cfg *config.Config, logWriter io.Writer) *Recorder {
	if logWriter == nil {
		logWriter = io.Discard
	}

	return &Recorder{
		cfg:        cfg,
		detector:   NewDetector(cfg),
		platform:   CurrentPlatform(),
		opts:       NewCaptureOptions(cfg),
		logWriter:  logWriter,
		interrupts: []os.Signal{os.Interrupt},
	}
}

// Platform returns the platform family the recorder targets.
func (r *Recorder) Platform() Platform {
	return r.platform
}

// UseDetector replaces the recorder detection, e.g. with a CachedDetector.
func (r *Recorder) UseDetector(d ProgramDetector) {
	r.detector = d
}

// NewSession prepares a session writing filename under the recordings directory.
func (r *Recorder) NewSession(filename string, duration time.Duration) *Session {
	return &Session{
		TargetPath: filepath.Join(r.cfg.Output.Directory, filename),
		Duration:   duration,
		platform:   r.platform,
		detector:   r.detector,
		opts:       r.opts,
		minBytes:   r.cfg.Output.MinBytes,
		out:        r.logWriter,
		interrupts: r.interrupts,
		state:      StateIdle,
	}
}

// Record captures duration of audio into filename. It never returns an error:
// failures are logged, explained on the log writer, and yield ("", false).
func (r *Recorder) Record(ctx context.Context, filename string, duration time.Duration) (string, bool) {
	session := r.NewSession(filename, duration)

	path, err := session.Run(ctx)
	if err != nil {
		r.report(session, err)
		return "", false
	}

	fmt.Fprintf(r.logWriter, "✅ Recording complete: %s\n", path)
	slog.Info("Recording saved", "path", path, "bytes", session.CapturedBytes())
	return path, true
}

func (r *Recorder) report(s *Session, err error) {
	slog.Debug("Recording failed", "target", s.TargetPath, "program", s.Program.Name, "state", s.State(), "error", err)

	switch {
	case errors.Is(err, ErrNoRecorderAvailable):
		fmt.Fprintln(r.logWriter, "❌ No recorder program found.")
		for _, line := range r.platform.InstallHint() {
			fmt.Fprintln(r.logWriter, line)
		}
	case errors.Is(err, ErrCancelled):
		fmt.Fprintln(r.logWriter, "Recording cancelled")
	case errors.Is(err, ErrEmptyOutput):
		fmt.Fprintln(r.logWriter, "❌ Recording error: output is empty")
	case errors.Is(err, ErrProcessSpawn):
		fmt.Fprintf(r.logWriter, "❌ Recorder launch error: %v\n", err)
	default:
		fmt.Fprintf(r.logWriter, "❌ Recording error: %v\n", err)
		if SelectCapture(r.platform, s.Program, r.opts).Name() == "direct" {
			fmt.Fprintln(r.logWriter, MicrophoneHint)
		}
	}
}
