package audio

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/audiolibrelab/quickrec/internal/config"
)

// Capture turns microphone input into the session's target file. Implementations
// must settle the session through finalize or abort before returning, and must
// not leave the recorder running.
type Capture interface {
	Name() string
	Capture(ctx context.Context, s *Session) (string, error)
}

// CaptureOptions carries the audio parameters shared by every strategy.
type CaptureOptions struct {
	SampleRate int
	Channels   int
	Bits       int
	Encoding   string
	Type       string
	StopGrace  time.Duration

	// NewCommand builds the recorder process, exec.Command unless overridden.
	NewCommand func(name string, args ...string) *exec.Cmd
	// CreateFile opens the stream target, os.Create unless overridden.
	CreateFile func(name string) (io.WriteCloser, error)
}

// NewCaptureOptions derives capture options from the audio configuration.
func NewCaptureOptions(cfg *config.Config) CaptureOptions {
	return CaptureOptions{
		SampleRate: cfg.Audio.SampleRate,
		Channels:   cfg.Audio.Channels,
		Bits:       cfg.Audio.Bits,
		Encoding:   cfg.Audio.Encoding,
		Type:       cfg.Audio.Type,
		StopGrace:  cfg.Recorder.StopGrace,
		NewCommand: exec.Command,
	}
}

func (o CaptureOptions) command(name string, args ...string) *exec.Cmd {
	if o.NewCommand != nil {
		return o.NewCommand(name, args...)
	}
	return exec.Command(name, args...)
}

func (o CaptureOptions) create(name string) (io.WriteCloser, error) {
	if o.CreateFile != nil {
		return o.CreateFile(name)
	}
	return os.Create(name)
}

func (o CaptureOptions) grace() time.Duration {
	if o.StopGrace > 0 {
		return o.StopGrace
	}
	return 5 * time.Second
}

// SelectCapture picks the strategy once per session. SoX on Windows writes the
// file itself; everything else is streamed through a pipe into the file.
func SelectCapture(p Platform, program RecorderProgram, opts CaptureOptions) Capture {
	if p == PlatformWindows && program.Name == "sox" {
		return &DirectCapture{opts: opts}
	}
	return &StreamCapture{opts: opts}
}

// formatSeconds renders a duration the way recorder CLIs expect, e.g. "5" or "1.5".
func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
