package audio

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// process supervises one recorder child. err and copyErr are only valid after
// done is closed.
type process struct {
	cmd     *exec.Cmd
	done    chan struct{}
	err     error
	copyErr error
}

// startProcess starts cmd and waits for it in the background. drain, if set,
// runs to completion before Wait, as required when reading from StdoutPipe.
// Its error is kept apart from the exit status in CopyErr.
func startProcess(cmd *exec.Cmd, drain func() error) (*process, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &process{cmd: cmd, done: make(chan struct{})}
	go func() {
		if drain != nil {
			p.copyErr = drain()
		}
		p.err = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

func (p *process) Done() <-chan struct{} {
	return p.done
}

func (p *process) Err() error {
	<-p.done
	return p.err
}

// CopyErr returns the drain error, if any.
func (p *process) CopyErr() error {
	<-p.done
	return p.copyErr
}

// Stop interrupts the recorder so it can flush its output, then kills it if it
// has not exited within grace. It returns once the process is gone.
func (p *process) Stop(grace time.Duration) {
	select {
	case <-p.done:
		return
	default:
	}

	slog.Debug("Sending interrupt to recorder", "pid", p.cmd.Process.Pid)
	if err := p.cmd.Process.Signal(os.Interrupt); err != nil {
		// Windows cannot deliver SIGINT to a child
		slog.Debug("Failed to send interrupt to recorder, killing", "error", err)
		_ = p.cmd.Process.Kill()
	}

	select {
	case <-p.done:
	case <-time.After(grace):
		slog.Warn("Recorder did not exit within timeout, force killing", "pid", p.cmd.Process.Pid)
		_ = p.cmd.Process.Kill()
		<-p.done
	}
}

// diagnosticBuffer accumulates a recorder's stderr and mirrors it to the debug log.
type diagnosticBuffer struct {
	program string
	buf     bytes.Buffer
}

func (d *diagnosticBuffer) Write(b []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(b), "\r\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			slog.Debug("Recorder output", "program", d.program, "line", line)
		}
	}
	return d.buf.Write(b)
}

// String is only safe to call after the process has exited.
func (d *diagnosticBuffer) String() string {
	return strings.TrimSpace(d.buf.String())
}

// exitDescription renders a Wait error as "exit code N" when possible.
func exitDescription(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if code := exitErr.ExitCode(); code >= 0 {
			return fmt.Sprintf("exit code %d", code)
		}
		return exitErr.String()
	}
	return err.Error()
}
