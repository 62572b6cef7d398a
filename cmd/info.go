package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show resolved paths, recorder and capture settings",
	Long:  `Display the resolved configuration, the recordings and favorites directories, and the recorder program and capture strategy a recording would use right now.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService()
		recorder := svc.GetRecorderInfo(cmd.Context())

		// Display file paths
		fmt.Printf("=== FILE PATHS ===\n")
		fmt.Printf("recordings: %s\n", cfg.Output.Directory)
		fmt.Printf("favorites: %s\n", cfg.Output.FavoritesDirectory)
		fmt.Printf("next_file: %s\n", "recording_<unix-millis>.wav")

		fmt.Printf("\n=== RECORDER ===\n")
		fmt.Printf("platform: %s\n", recorder.Platform)
		if recorder.Available {
			fmt.Printf("program: %s\n", recorder.Program.Name)
			fmt.Printf("strategy: %s\n", recorder.Strategy)
		} else {
			fmt.Printf("program: none (run 'quickrec recorders')\n")
		}

		fmt.Printf("\n=== RESOLVED CONFIGURATION ===\n")

		fmt.Printf("\n[Audio]\n")
		fmt.Printf("sample_rate: %d\n", cfg.Audio.SampleRate)
		fmt.Printf("channels: %d\n", cfg.Audio.Channels)
		fmt.Printf("bits: %d (%s)\n", cfg.Audio.Bits, cfg.Audio.Encoding)
		fmt.Printf("type: %s\n", cfg.Audio.Type)

		fmt.Printf("\n[Output]\n")
		fmt.Printf("min_bytes: %d\n", cfg.Output.MinBytes)
		fmt.Printf("default_duration: %s\n", cfg.Output.DefaultDuration)

		fmt.Printf("\n[Recorder]\n")
		fmt.Printf("candidates: %s\n", listOrDefault(cfg.Recorder.Candidates))
		fmt.Printf("probe_timeout: %s\n", cfg.Recorder.ProbeTimeout)
		fmt.Printf("stop_grace: %s\n", cfg.Recorder.StopGrace)

		fmt.Printf("\n[Player]\n")
		fmt.Printf("preferred: %s\n", listOrDefault(cfg.Player.Preferred))

		return nil
	},
}

func listOrDefault(values []string) string {
	if len(values) == 0 {
		return "[platform default]"
	}
	return strings.Join(values, ", ")
}
