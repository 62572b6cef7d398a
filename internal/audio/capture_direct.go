package audio

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// DirectCapture runs SoX against the Windows waveaudio device and lets it write
// the target file, trimmed to the session duration.
type DirectCapture struct {
	opts CaptureOptions
}

func (c *DirectCapture) Name() string {
	return "direct"
}

// Args returns the SoX arguments for capturing d into target.
func (c *DirectCapture) Args(target string, d time.Duration) []string {
	return []string{
		"-V1",
		"-t", "waveaudio", "default",
		"-r", strconv.Itoa(c.opts.SampleRate),
		"-c", strconv.Itoa(c.opts.Channels),
		"-b", strconv.Itoa(c.opts.Bits),
		"-e", c.opts.Encoding,
		target,
		"trim", "0", formatSeconds(d),
	}
}

func (c *DirectCapture) Capture(ctx context.Context, s *Session) (string, error) {
	name := s.Program.Name
	diag := &diagnosticBuffer{program: name}

	cmd := c.opts.command(name, c.Args(s.TargetPath, s.Duration)...)
	cmd.Stderr = diag

	proc, err := startProcess(cmd, nil)
	if err != nil {
		return s.abort(fmt.Errorf("%w: %s: %v", ErrProcessSpawn, name, err))
	}
	slog.Debug("Direct recorder started", "program", name, "pid", cmd.Process.Pid, "args", cmd.Args)

	// SoX ends on its own after the trim; the watchdog covers a stuck device.
	watchdog := time.NewTimer(s.Duration + c.opts.grace())
	defer watchdog.Stop()

	stopped := false
	select {
	case <-proc.Done():
	case <-ctx.Done():
		slog.Info("Interrupt received, stopping recorder", "program", name)
		stopped = true
		proc.Stop(c.opts.grace())
	case <-watchdog.C:
		slog.Warn("Recorder still running after its duration, stopping", "program", name, "duration", s.Duration)
		stopped = true
		proc.Stop(c.opts.grace())
	}

	var cause error
	if err := proc.Err(); err != nil && !stopped {
		detail := diag.String()
		if detail == "" {
			detail = exitDescription(err)
		}
		cause = fmt.Errorf("%w (%s): %s", ErrCaptureProcess, name, detail)
	}

	return s.finalize(cause, func() error {
		proc.Stop(c.opts.grace())
		return nil
	})
}
