package play

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/audiolibrelab/quickrec/internal/config"
)

var (
	ErrFileNotFound   = errors.New("audio file not found")
	ErrPlaybackFailed = errors.New("playback failed")
)

// Player plays a recording through the first installed external player.
type Player struct {
	players []string
	out     io.Writer

	lookPath   func(file string) (string, error)
	newCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func New(cfg *config.Config, out io.Writer) *Player {
	if out == nil {
		out = io.Discard
	}

	players := cfg.Player.Preferred
	if len(players) == 0 {
		players = DefaultPlayers(runtime.GOOS)
	}

	return &Player{
		players:    players,
		out:        out,
		lookPath:   exec.LookPath,
		newCommand: exec.CommandContext,
	}
}

// DefaultPlayers returns the player preference list for goos.
func DefaultPlayers(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"afplay", "play", "ffplay", "mpv", "vlc"}
	case "windows":
		return []string{"ffplay", "mpv", "vlc", "play"}
	default:
		return []string{"aplay", "paplay", "play", "ffplay", "mpv", "vlc"}
	}
}

// Play blocks until the player exits. A missing or unreadable file is reported
// before any player is looked up.
func (p *Player) Play(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}

	player, err := p.findAudioPlayer()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlaybackFailed, err)
	}

	fmt.Fprintf(p.out, "🔊 Playing: %s\n", path)
	slog.Debug("Starting playback", "player", player, "path", path)

	var stderr strings.Builder
	cmd := p.newCommand(ctx, player, Args(player, path)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		slog.Debug("Playback failed", "player", player, "path", path, "error", detail)
		return fmt.Errorf("%w with %s: %s", ErrPlaybackFailed, player, detail)
	}

	fmt.Fprintln(p.out, "✅ Playback completed")
	return nil
}

// Args returns the arguments that make player play path once without a window.
func Args(player, path string) []string {
	switch player {
	case "vlc", "cvlc":
		return []string{"--intf", "dummy", "--play-and-exit", path}
	case "mpv":
		return []string{"--no-video", "--really-quiet", path}
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "error", path}
	case "play":
		return []string{"-q", path}
	case "aplay":
		return []string{"-q", path}
	default:
		// afplay, paplay and anything configured take the file alone
		return []string{path}
	}
}

func (p *Player) findAudioPlayer() (string, error) {
	for _, player := range p.players {
		if _, err := p.lookPath(player); err == nil {
			return player, nil
		}
	}

	return "", fmt.Errorf("no audio player found (tried: %s)", strings.Join(p.players, ", "))
}
