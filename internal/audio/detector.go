package audio

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/audiolibrelab/quickrec/internal/config"
)

// RecorderProgram is an external recorder executable and whether its probe launched.
type RecorderProgram struct {
	Name      string `json:"name" yaml:"name"`
	Available bool   `json:"available" yaml:"available"`
}

// Detector probes the platform's recorder candidates in preference order.
type Detector struct {
	candidates []string
	timeout    time.Duration

	// probe is replaced in tests
	probe func(ctx context.Context, name string) error
}

// NewDetector creates a detector using the configured candidate override and probe timeout.
func NewDetector(cfg *config.Config) *Detector {
	return &Detector{
		candidates: cfg.Recorder.Candidates,
		timeout:    cfg.Recorder.ProbeTimeout,
		probe:      probeProgram,
	}
}

// Candidates returns the ordered probe list for platform p.
func (d *Detector) Candidates(p Platform) []string {
	if len(d.candidates) > 0 {
		return d.candidates
	}
	return p.Candidates()
}

// Detect returns the first candidate whose probe launches. The result only
// depends on the platform and the installed executables.
func (d *Detector) Detect(ctx context.Context, p Platform) (RecorderProgram, bool) {
	for _, name := range d.Candidates(p) {
		if ctx.Err() != nil {
			return RecorderProgram{}, false
		}
		if d.check(ctx, name) {
			slog.Debug("Recorder program detected", "program", name, "platform", p)
			return RecorderProgram{Name: name, Available: true}, true
		}
	}

	slog.Debug("No recorder program detected", "platform", p, "candidates", d.Candidates(p))
	return RecorderProgram{}, false
}

// Report probes every candidate for platform p, in order.
func (d *Detector) Report(ctx context.Context, p Platform) []RecorderProgram {
	candidates := d.Candidates(p)
	programs := make([]RecorderProgram, 0, len(candidates))
	for _, name := range candidates {
		programs = append(programs, RecorderProgram{Name: name, Available: d.check(ctx, name)})
	}
	return programs
}

func (d *Detector) check(ctx context.Context, name string) bool {
	timeout := d.timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := d.probe(probeCtx, name); err != nil {
		slog.Debug("Recorder probe failed", "program", name, "error", err)
		return false
	}
	return true
}

// probeProgram runs `<name> --version` with stdio discarded. Any process that
// launched counts as usable, even if it exits non-zero or is killed at the timeout.
func probeProgram(ctx context.Context, name string) error {
	cmd := exec.CommandContext(ctx, name, "--version")
	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

// CachedDetector remembers the first successful detection for the life of the
// process. Failed detections are retried on the next call.
type CachedDetector struct {
	inner ProgramDetector

	mu     sync.Mutex
	cached map[Platform]RecorderProgram
}

func NewCachedDetector(inner ProgramDetector) *CachedDetector {
	return &CachedDetector{inner: inner, cached: make(map[Platform]RecorderProgram)}
}

func (c *CachedDetector) Detect(ctx context.Context, p Platform) (RecorderProgram, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if program, ok := c.cached[p]; ok {
		return program, true
	}
	program, ok := c.inner.Detect(ctx, p)
	if ok {
		c.cached[p] = program
	}
	return program, ok
}
