package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	pipeline    string
	runDuration string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute pipeline steps",
	Long: `Execute the specified pipeline steps in order. Use -p to specify which steps to run:
  r  record a new clip
  p  play the latest recording
  f  move the latest recording to favorites
For example 'quickrec run -p rp' records a clip and plays it back.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if pipeline == "" {
			return fmt.Errorf("no pipeline specified, use -p flag (e.g., -p rp)")
		}

		duration, err := durationFlag(runDuration)
		if err != nil {
			return err
		}

		steps := strings.ToLower(pipeline)
		fmt.Printf("Pipeline: executing %d step(s): %s\n", len(steps), steps)

		if err := newService().RunPipeline(cmd.Context(), steps, duration); err != nil {
			return err
		}
		fmt.Println("Pipeline: completed")
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&pipeline, "pipeline", "p", "", "pipeline steps: r=record, p=play, f=favorite (e.g., 'rp', 'rf')")
	runCmd.Flags().StringVarP(&runDuration, "duration", "d", "", "recording length for the r step; default from config")
}
