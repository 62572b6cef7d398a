package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/audiolibrelab/quickrec/internal/catalog"
)

// ErrInvalidInput is reported for a bad menu choice, index or duration. The
// loop recovers from it without changing any state.
var ErrInvalidInput = errors.New("invalid input")

// Service is what the menu drives.
type Service interface {
	Record(ctx context.Context, duration time.Duration) (string, bool)
	Play(ctx context.Context, path string) error
	ListRecordings() ([]catalog.Entry, error)
	MoveToFavorites(name string) (string, error)
}

// Menu is the numbered interactive loop.
type Menu struct {
	svc Service
	in  *bufio.Reader
	out io.Writer

	// DefaultDuration is the length of option 1.
	DefaultDuration time.Duration
	// Pause waits for Enter after each action.
	Pause bool
}

// New creates a menu reading choices from in. Pausing after each action is only
// enabled when in is a terminal.
func New(svc Service, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		svc:             svc,
		in:              bufio.NewReader(in),
		out:             out,
		DefaultDuration: 5 * time.Second,
		Pause:           isTerminal(in),
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Run shows the menu until the user exits or input ends.
func (m *Menu) Run(ctx context.Context) error {
	fmt.Fprintln(m.out, "🎵 Starting audio recorder")

	for {
		m.show()
		choice, err := m.prompt("Select an option (1-6): ")
		if err != nil {
			return endOfInput(err)
		}

		if choice == "6" {
			fmt.Fprintln(m.out, "👋 Goodbye")
			return nil
		}

		if err := m.handle(ctx, choice); err != nil {
			if !errors.Is(err, ErrInvalidInput) {
				return err
			}
			fmt.Fprintf(m.out, "❌ %v\n", err)
		}

		if m.Pause {
			fmt.Fprintln(m.out, "\nPress Enter to continue...")
			if _, err := m.readLine(); err != nil {
				return endOfInput(err)
			}
		}
	}
}

func (m *Menu) show() {
	fmt.Fprintln(m.out, "\n🎵 Audio Recorder")
	fmt.Fprintln(m.out, "========================")
	fmt.Fprintf(m.out, "1. Record (%gs)\n", m.DefaultDuration.Seconds())
	fmt.Fprintln(m.out, "2. Record (custom duration)")
	fmt.Fprintln(m.out, "3. List recordings")
	fmt.Fprintln(m.out, "4. Play a recording")
	fmt.Fprintln(m.out, "5. Move to favorites")
	fmt.Fprintln(m.out, "6. Exit")
	fmt.Fprintln(m.out, "========================")
}

func (m *Menu) handle(ctx context.Context, choice string) error {
	switch choice {
	case "1":
		m.svc.Record(ctx, m.DefaultDuration)
		return nil

	case "2":
		answer, err := m.prompt("Enter the recording length in seconds: ")
		if err != nil {
			return endOfInput(err)
		}
		d, err := ParseSeconds(answer)
		if err != nil {
			return err
		}
		m.svc.Record(ctx, d)
		return nil

	case "3":
		_, err := m.list()
		return err

	case "4":
		entry, ok, err := m.choose("Enter the number of the recording to play: ")
		if err != nil || !ok {
			return err
		}
		if err := m.svc.Play(ctx, entry.Path); err != nil {
			fmt.Fprintf(m.out, "❌ Playback failed: %v\n", err)
		}
		return nil

	case "5":
		entry, ok, err := m.choose("Enter the number of the recording to move to favorites: ")
		if err != nil || !ok {
			return err
		}
		if _, err := m.svc.MoveToFavorites(entry.Name); err != nil {
			fmt.Fprintf(m.out, "❌ Failed to move to favorites: %v\n", err)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown option %q", ErrInvalidInput, choice)
	}
}

// list prints the recordings numbered from 1, newest first.
func (m *Menu) list() ([]catalog.Entry, error) {
	entries, err := m.svc.ListRecordings()
	if err != nil {
		fmt.Fprintf(m.out, "❌ Failed to list recordings: %v\n", err)
		return nil, nil
	}

	if len(entries) == 0 {
		fmt.Fprintln(m.out, "📝 No saved recordings")
		return nil, nil
	}

	fmt.Fprintln(m.out, "📝 Saved recordings:")
	for i, e := range entries {
		sizeKB := int64(math.Round(float64(e.Size) / 1024))
		fmt.Fprintf(m.out, "  %d. %s (%dKB, %s)\n", i+1, e.Name, sizeKB, e.ModTime.Format("2006-01-02 15:04:05"))
	}
	return entries, nil
}

// choose lists the recordings and asks for one. ok is false when there is
// nothing to choose from.
func (m *Menu) choose(question string) (catalog.Entry, bool, error) {
	entries, _ := m.list()
	if len(entries) == 0 {
		return catalog.Entry{}, false, nil
	}

	answer, err := m.prompt(question)
	if err != nil {
		return catalog.Entry{}, false, endOfInput(err)
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(entries) {
		return catalog.Entry{}, false, fmt.Errorf("%w: invalid number %q", ErrInvalidInput, answer)
	}
	return entries[n-1], true, nil
}

// maxSeconds is the longest duration time.Duration can hold, in seconds.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

// ParseSeconds parses a positive number of seconds such as "3" or "2.5".
func ParseSeconds(s string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(secs) || secs <= 0 || secs >= maxSeconds {
		return 0, fmt.Errorf("%w: invalid duration %q", ErrInvalidInput, s)
	}
	d := time.Duration(secs * float64(time.Second))
	if d <= 0 {
		return 0, fmt.Errorf("%w: invalid duration %q", ErrInvalidInput, s)
	}
	return d, nil
}

func (m *Menu) prompt(question string) (string, error) {
	fmt.Fprint(m.out, question)
	return m.readLine()
}

func (m *Menu) readLine() (string, error) {
	line, err := m.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// endOfInput turns a closed stdin into a normal exit.
func endOfInput(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
