package catalog

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/audiolibrelab/quickrec/internal/config"
)

// Entry is one saved recording.
type Entry struct {
	Name    string    `json:"name" yaml:"name"`
	Path    string    `json:"path" yaml:"path"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// SizeHuman formats the size like "12.3 KB".
func (e Entry) SizeHuman() string {
	return formatBytes(e.Size)
}

// Catalog manages the recordings directory and its favorites subdirectory.
type Catalog struct {
	dir          string
	favoritesDir string
	out          io.Writer

	// now is replaced in tests
	now func() time.Time
}

func New(cfg *config.Config, out io.Writer) *Catalog {
	if out == nil {
		out = io.Discard
	}
	return &Catalog{
		dir:          cfg.Output.Directory,
		favoritesDir: cfg.Output.FavoritesDirectory,
		out:          out,
		now:          time.Now,
	}
}

func (c *Catalog) Dir() string          { return c.dir }
func (c *Catalog) FavoritesDir() string { return c.favoritesDir }

// EnsureDirs creates the recordings and favorites directories if missing.
func (c *Catalog) EnsureDirs() error {
	for _, dir := range []string{c.dir, c.favoritesDir} {
		if _, err := os.Stat(dir); err == nil {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		fmt.Fprintf(c.out, "📁 Created directory %s\n", dir)
		slog.Debug("Created directory", "path", dir)
	}
	return nil
}

// NewFilename returns a fresh recording name based on the current time.
func (c *Catalog) NewFilename() string {
	return fmt.Sprintf("recording_%d.wav", c.now().UnixMilli())
}

// List returns the .wav recordings, newest first. Favorites are not included.
func (c *Catalog) List() ([]Entry, error) {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read recordings directory: %w", err)
	}

	var entries []Entry
	for _, file := range files {
		if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".wav") {
			continue
		}

		info, err := file.Info()
		if err != nil {
			slog.Warn("Failed to get file info", "file", file.Name(), "error", err)
			continue
		}

		entries = append(entries, Entry{
			Name:    file.Name(),
			Path:    filepath.Join(c.dir, file.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Name > entries[j].Name
		}
		return entries[i].ModTime.After(entries[j].ModTime)
	})

	return entries, nil
}

// MoveToFavorites moves the named recording into the favorites directory and
// returns its new path. An existing favorite is never overwritten.
func (c *Catalog) MoveToFavorites(name string) (string, error) {
	src := filepath.Join(c.dir, filepath.Base(name))
	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("recording file not found: %s", name)
	}

	if err := os.MkdirAll(c.favoritesDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create favorites directory: %w", err)
	}

	dest := c.favoriteDestination(filepath.Base(src))
	if err := os.Rename(src, dest); err != nil {
		return "", fmt.Errorf("failed to move recording to favorites: %w", err)
	}

	slog.Info("Moved recording to favorites", "recording", name, "dest", dest)
	return dest, nil
}

func (c *Catalog) favoriteDestination(name string) string {
	dest := filepath.Join(c.favoritesDir, name)
	if !exists(dest) {
		return dest
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	dest = filepath.Join(c.favoritesDir, stem+"_favorite"+ext)
	if !exists(dest) {
		return dest
	}
	return filepath.Join(c.favoritesDir, fmt.Sprintf("%s_favorite_%d%s", stem, c.now().UnixMilli(), ext))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
