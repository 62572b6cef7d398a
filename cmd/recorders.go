package cmd

import (
	"fmt"
	"runtime"

	"github.com/audiolibrelab/quickrec/internal/audio"

	"github.com/spf13/cobra"
)

var recordersCmd = &cobra.Command{
	Use:   "recorders",
	Short: "Show which recorder programs are usable",
	Long: `Probe every recorder candidate for this platform in preference order.
The first usable one is what recordings will run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService()
		programs := svc.DetectRecorders(cmd.Context())

		fmt.Printf("🎤 Recorder programs (%s, %s)\n", audio.CurrentPlatform(), runtime.GOOS)
		fmt.Printf("═══════════════════════════════════════\n\n")

		selected := ""
		for i, p := range programs {
			mark := "❌ not found"
			if p.Available {
				mark = "✅ available"
				if selected == "" {
					selected = p.Name
					mark += " (selected)"
				}
			}
			fmt.Printf("  %d. %-8s %s\n", i+1, p.Name, mark)
		}

		if selected == "" {
			fmt.Println()
			for _, line := range audio.CurrentPlatform().InstallHint() {
				fmt.Println(line)
			}
		}
		return nil
	},
}
