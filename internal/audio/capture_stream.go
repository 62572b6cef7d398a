package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"
)

// StreamCapture starts the recorder writing a WAV stream to stdout and copies
// it into the target file until the duration elapses, an interrupt arrives or
// the stream fails.
type StreamCapture struct {
	opts CaptureOptions
}

func (c *StreamCapture) Name() string {
	return "stream"
}

// Args returns the arguments that make program emit an unbounded stream on
// stdout. Silence detection is never enabled: the recorder always records.
func (c *StreamCapture) Args(program string) []string {
	rate := strconv.Itoa(c.opts.SampleRate)
	channels := strconv.Itoa(c.opts.Channels)
	bits := strconv.Itoa(c.opts.Bits)

	switch program {
	case "arecord":
		return []string{
			"-q",
			"-r", rate,
			"-c", channels,
			"-t", c.opts.Type,
			"-f", alsaFormat(c.opts.Bits),
			"-",
		}
	case "rec":
		return []string{
			"-q",
			"-r", rate,
			"-c", channels,
			"-e", c.opts.Encoding,
			"-b", bits,
			"-t", c.opts.Type,
			"-",
		}
	default:
		return []string{
			"--default-device",
			"--no-show-progress",
			"--rate", rate,
			"--channels", channels,
			"--encoding", c.opts.Encoding,
			"--bits", bits,
			"--type", c.opts.Type,
			"-",
		}
	}
}

func (c *StreamCapture) Capture(ctx context.Context, s *Session) (string, error) {
	name := s.Program.Name

	file, err := c.opts.create(s.TargetPath)
	if err != nil {
		return s.abort(fmt.Errorf("%w: cannot create %s: %v", ErrCaptureProcess, s.TargetPath, err))
	}

	diag := &diagnosticBuffer{program: name}
	cmd := c.opts.command(name, c.Args(name)...)
	cmd.Stderr = diag

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		file.Close()
		return s.finalize(fmt.Errorf("%w: %s: %v", ErrProcessSpawn, name, err), nil)
	}

	proc, err := startProcess(cmd, func() error {
		_, err := io.Copy(file, stdout)
		if err != nil {
			// keep the recorder from blocking on a full pipe
			_, _ = io.Copy(io.Discard, stdout)
		}
		return err
	})
	if err != nil {
		file.Close()
		return s.finalize(fmt.Errorf("%w: %s: %v", ErrProcessSpawn, name, err), nil)
	}
	slog.Debug("Stream recorder started", "program", name, "pid", cmd.Process.Pid, "args", cmd.Args)

	timer := time.NewTimer(s.Duration)

	var cause error
	select {
	case <-timer.C:
		slog.Debug("Recording duration elapsed", "duration", s.Duration)
	case <-ctx.Done():
		slog.Info("Interrupt received, keeping captured audio", "program", name)
	case <-proc.Done():
		if err := proc.Err(); err != nil {
			detail := diag.String()
			if detail == "" {
				detail = exitDescription(err)
			}
			cause = fmt.Errorf("%w (%s): %s", ErrCaptureProcess, name, detail)
			slog.Debug("Recording stream failed", "program", name, "error", detail)
		} else {
			slog.Debug("Recording stream ended before duration", "program", name)
		}
	}

	return s.finalize(cause, func() error {
		timer.Stop()
		proc.Stop(c.opts.grace())
		if err := file.Close(); err != nil {
			slog.Warn("Failed to close recording file", "path", s.TargetPath, "error", err)
		}
		if err := proc.CopyErr(); err != nil {
			slog.Debug("Recording stream copy failed", "program", name, "error", err)
			return fmt.Errorf("%w (%s): writing %s: %v", ErrCaptureProcess, name, s.TargetPath, err)
		}
		return nil
	})
}

func alsaFormat(bits int) string {
	switch bits {
	case 8:
		return "U8"
	case 24:
		return "S24_LE"
	case 32:
		return "S32_LE"
	default:
		return "S16_LE"
	}
}
