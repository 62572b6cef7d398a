package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audiolibrelab/quickrec/internal/config"
)

func newTestCatalog(t *testing.T) (*Catalog, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Directory = filepath.Join(t.TempDir(), "recordings")
	cfg.Output.FavoritesDirectory = filepath.Join(cfg.Output.Directory, "favorites")

	var out bytes.Buffer
	c := New(cfg, &out)
	c.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return c, &out
}

func writeFile(t *testing.T, path string, size int, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{1}, size), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestEnsureDirs(t *testing.T) {
	c, out := newTestCatalog(t)

	require.NoError(t, c.EnsureDirs())
	assert.DirExists(t, c.Dir())
	assert.DirExists(t, c.FavoritesDir())
	assert.Contains(t, out.String(), "📁 Created directory "+c.Dir())

	out.Reset()
	require.NoError(t, c.EnsureDirs())
	assert.Empty(t, out.String(), "existing directories are not reported")
}

func TestNewFilename(t *testing.T) {
	c, _ := newTestCatalog(t)
	assert.Equal(t, "recording_1700000000123.wav", c.NewFilename())
}

func TestList_NewestFirstWavOnly(t *testing.T) {
	c, _ := newTestCatalog(t)
	base := time.Now().Add(-time.Hour)

	writeFile(t, filepath.Join(c.Dir(), "recording_1.wav"), 2048, base)
	writeFile(t, filepath.Join(c.Dir(), "recording_3.wav"), 4096, base.Add(2*time.Minute))
	writeFile(t, filepath.Join(c.Dir(), "recording_2.wav"), 1024, base.Add(time.Minute))
	writeFile(t, filepath.Join(c.Dir(), "notes.txt"), 10, base.Add(3*time.Minute))
	writeFile(t, filepath.Join(c.FavoritesDir(), "recording_0.wav"), 10, base.Add(4*time.Minute))

	entries, err := c.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "recording_3.wav", entries[0].Name)
	assert.Equal(t, "recording_2.wav", entries[1].Name)
	assert.Equal(t, "recording_1.wav", entries[2].Name)
	assert.Equal(t, int64(4096), entries[0].Size)
	assert.Equal(t, "4.0 KB", entries[0].SizeHuman())
	assert.Equal(t, filepath.Join(c.Dir(), "recording_3.wav"), entries[0].Path)
}

func TestList_MissingDirectoryIsEmpty(t *testing.T) {
	c, _ := newTestCatalog(t)

	entries, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMoveToFavorites_CollisionNaming(t *testing.T) {
	c, _ := newTestCatalog(t)
	now := time.Now()
	name := "recording_5.wav"

	writeFile(t, filepath.Join(c.Dir(), name), 500, now)
	dest, err := c.MoveToFavorites(name)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.FavoritesDir(), name), dest)
	assert.NoFileExists(t, filepath.Join(c.Dir(), name))

	writeFile(t, filepath.Join(c.Dir(), name), 600, now)
	dest, err = c.MoveToFavorites(name)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.FavoritesDir(), "recording_5_favorite.wav"), dest)

	writeFile(t, filepath.Join(c.Dir(), name), 700, now)
	dest, err = c.MoveToFavorites(name)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(c.FavoritesDir(), "recording_5_favorite_1700000000123.wav"), dest)

	// every earlier favorite is intact
	for path, size := range map[string]int64{
		filepath.Join(c.FavoritesDir(), name):                                    500,
		filepath.Join(c.FavoritesDir(), "recording_5_favorite.wav"):               600,
		filepath.Join(c.FavoritesDir(), "recording_5_favorite_1700000000123.wav"): 700,
	} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, size, info.Size(), path)
	}
}

func TestMoveToFavorites_MissingRecording(t *testing.T) {
	c, _ := newTestCatalog(t)

	_, err := c.MoveToFavorites("recording_404.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording file not found")
}
