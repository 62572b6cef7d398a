package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/audiolibrelab/quickrec/internal/audio"
	"github.com/audiolibrelab/quickrec/internal/catalog"
	"github.com/audiolibrelab/quickrec/internal/config"
	"github.com/audiolibrelab/quickrec/internal/menu"
	"github.com/audiolibrelab/quickrec/internal/play"
)

// ErrUnknownRecording is returned when a recording reference matches nothing.
var ErrUnknownRecording = errors.New("unknown recording")

// Service is the application surface shared by the menu and the subcommands.
type Service interface {
	// Recording operations
	Record(ctx context.Context, duration time.Duration) (string, bool)

	// Playback operations
	Play(ctx context.Context, path string) error

	// Catalog operations
	EnsureDirs() error
	ListRecordings() ([]catalog.Entry, error)
	Resolve(ref string) (catalog.Entry, error)
	MoveToFavorites(name string) (string, error)

	// Pipeline operations
	RunPipeline(ctx context.Context, steps string, duration time.Duration) error

	// Information operations
	DetectRecorders(ctx context.Context) []audio.RecorderProgram
	GetRecorderInfo(ctx context.Context) RecorderInfo
	GetConfig() *config.Config
	GetLastError() string
}

// RecorderInfo describes what a recording would use right now.
type RecorderInfo struct {
	Platform  audio.Platform        `json:"platform" yaml:"platform"`
	Program   audio.RecorderProgram `json:"program" yaml:"program"`
	Strategy  string                `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Available bool                  `json:"available" yaml:"available"`
}

// QuickrecService is the main service implementation
type QuickrecService struct {
	cfg       *config.Config
	recorder  *audio.Recorder
	detector  *audio.Detector
	cached    *audio.CachedDetector
	player    *play.Player
	catalog   *catalog.Catalog
	logWriter io.Writer

	// Error tracking
	lastError      string
	lastErrorMutex sync.RWMutex
}

var (
	_ Service      = (*QuickrecService)(nil)
	_ menu.Service = (*QuickrecService)(nil)
)

// New creates a new service instance
func New(cfg *config.Config, logWriter io.Writer) *QuickrecService {
	if logWriter == nil {
		logWriter = io.Discard
	}

	detector := audio.NewDetector(cfg)
	cached := audio.NewCachedDetector(detector)
	recorder := audio.NewRecorder(cfg, logWriter)
	recorder.UseDetector(cached)

	return &QuickrecService{
		cfg:       cfg,
		recorder:  recorder,
		detector:  detector,
		cached:    cached,
		player:    play.New(cfg, logWriter),
		catalog:   catalog.New(cfg, logWriter),
		logWriter: logWriter,
	}
}

// Record captures duration of audio into a freshly named file. Failures are
// already reported to the user; the bool says whether a file was saved.
func (s *QuickrecService) Record(ctx context.Context, duration time.Duration) (string, bool) {
	slog.Debug("Service.Record called", "duration", duration)
	s.clearLastError()

	if err := s.catalog.EnsureDirs(); err != nil {
		s.setLastError(fmt.Sprintf("Failed to prepare directories: %v", err))
		fmt.Fprintf(s.logWriter, "❌ %v\n", err)
		return "", false
	}

	path, ok := s.recorder.Record(ctx, s.catalog.NewFilename(), duration)
	if !ok {
		s.setLastError("Recording failed")
	}
	return path, ok
}

// Play plays a recording and returns playback errors to the caller.
func (s *QuickrecService) Play(ctx context.Context, path string) error {
	err := s.player.Play(ctx, path)
	if err != nil {
		s.setLastError(fmt.Sprintf("Failed to play %s: %v", path, err))
	}
	return err
}

func (s *QuickrecService) EnsureDirs() error {
	return s.catalog.EnsureDirs()
}

func (s *QuickrecService) ListRecordings() ([]catalog.Entry, error) {
	return s.catalog.List()
}

// Resolve finds a recording by its 1-based position in ListRecordings or by
// file name.
func (s *QuickrecService) Resolve(ref string) (catalog.Entry, error) {
	entries, err := s.catalog.List()
	if err != nil {
		return catalog.Entry{}, err
	}

	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(entries) {
			return catalog.Entry{}, fmt.Errorf("%w: #%d (have %d)", ErrUnknownRecording, n, len(entries))
		}
		return entries[n-1], nil
	}

	name := filepath.Base(ref)
	for _, e := range entries {
		if e.Name == name {
			return e, nil
		}
	}
	return catalog.Entry{}, fmt.Errorf("%w: %s", ErrUnknownRecording, ref)
}

func (s *QuickrecService) MoveToFavorites(name string) (string, error) {
	dest, err := s.catalog.MoveToFavorites(name)
	if err != nil {
		s.setLastError(fmt.Sprintf("Failed to move %s to favorites: %v", name, err))
		return "", err
	}
	fmt.Fprintf(s.logWriter, "⭐ Moved to favorites: %s\n", filepath.Base(dest))
	return dest, nil
}

// RunPipeline executes a sequence of operations (r=record, p=play latest, f=favorite latest)
func (s *QuickrecService) RunPipeline(ctx context.Context, steps string, duration time.Duration) error {
	for _, step := range steps {
		switch step {
		case 'r', 'p', 'f':
		default:
			return fmt.Errorf("unknown pipeline step: '%c' (valid: r=record, p=play, f=favorite)", step)
		}
	}

	for _, step := range steps {
		switch step {
		case 'r':
			if _, ok := s.Record(ctx, duration); !ok {
				return fmt.Errorf("pipeline record failed")
			}
		case 'p':
			latest, err := s.latest()
			if err != nil {
				return fmt.Errorf("pipeline play failed: %w", err)
			}
			if err := s.Play(ctx, latest.Path); err != nil {
				return fmt.Errorf("pipeline play failed: %w", err)
			}
		case 'f':
			latest, err := s.latest()
			if err != nil {
				return fmt.Errorf("pipeline favorite failed: %w", err)
			}
			if _, err := s.MoveToFavorites(latest.Name); err != nil {
				return fmt.Errorf("pipeline favorite failed: %w", err)
			}
		}
	}
	return nil
}

func (s *QuickrecService) latest() (catalog.Entry, error) {
	entries, err := s.catalog.List()
	if err != nil {
		return catalog.Entry{}, err
	}
	if len(entries) == 0 {
		return catalog.Entry{}, fmt.Errorf("%w: no recordings in %s", ErrUnknownRecording, s.catalog.Dir())
	}
	return entries[0], nil
}

// DetectRecorders probes every candidate recorder for the current platform.
func (s *QuickrecService) DetectRecorders(ctx context.Context) []audio.RecorderProgram {
	return s.detector.Report(ctx, s.recorder.Platform())
}

// GetRecorderInfo returns the recorder and capture strategy a recording would use.
func (s *QuickrecService) GetRecorderInfo(ctx context.Context) RecorderInfo {
	p := s.recorder.Platform()
	info := RecorderInfo{Platform: p}

	program, ok := s.cached.Detect(ctx, p)
	if !ok {
		return info
	}
	info.Program = program
	info.Available = true
	info.Strategy = audio.SelectCapture(p, program, audio.NewCaptureOptions(s.cfg)).Name()
	return info
}

// GetConfig returns the current configuration
func (s *QuickrecService) GetConfig() *config.Config {
	return s.cfg
}

// GetLastError returns the last error message (thread-safe)
func (s *QuickrecService) GetLastError() string {
	s.lastErrorMutex.RLock()
	defer s.lastErrorMutex.RUnlock()
	return s.lastError
}

// setLastError sets the last error message (thread-safe)
func (s *QuickrecService) setLastError(err string) {
	s.lastErrorMutex.Lock()
	defer s.lastErrorMutex.Unlock()
	s.lastError = err

	slog.Debug("Service error occurred", "error_message", err)
}

// clearLastError clears the last error message (thread-safe)
func (s *QuickrecService) clearLastError() {
	s.lastErrorMutex.Lock()
	defer s.lastErrorMutex.Unlock()
	s.lastError = ""
}
