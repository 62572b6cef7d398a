package audio

import "runtime"

// Platform is the OS family that decides recorder candidates and capture strategy.
type Platform string

const (
	PlatformWindows Platform = "windows"
	PlatformMacOS   Platform = "darwin"
	PlatformUnix    Platform = "unix"
)

// CurrentPlatform returns the platform family of the running binary.
func CurrentPlatform() Platform {
	return PlatformFor(runtime.GOOS)
}

// PlatformFor maps a GOOS value to its platform family.
func PlatformFor(goos string) Platform {
	switch goos {
	case "windows":
		return PlatformWindows
	case "darwin":
		return PlatformMacOS
	default:
		return PlatformUnix
	}
}

// Candidates returns the recorder programs to probe, most preferred first.
func (p Platform) Candidates() []string {
	switch p {
	case PlatformWindows:
		return []string{"sox"}
	case PlatformMacOS:
		return []string{"rec", "sox"}
	default:
		return []string{"arecord", "sox", "rec"}
	}
}

// InstallHint returns the lines printed when no recorder is installed.
func (p Platform) InstallHint() []string {
	switch p {
	case PlatformWindows:
		return []string{
			"SoX is required for recording on Windows:",
			"  choco install sox   or   scoop install sox",
			"Restart the terminal after installing and try again.",
		}
	case PlatformMacOS:
		return []string{
			"Install SoX to record audio, e.g. brew install sox",
		}
	default:
		return []string{
			"Install sox or arecord to record audio, e.g. sudo apt install sox / sudo apt install alsa-utils",
		}
	}
}

// MicrophoneHint is printed after a direct capture failure.
const MicrophoneHint = "Hint: allow microphone access for this terminal under Settings > Privacy & security > Microphone, and check that the default input device is enabled."
