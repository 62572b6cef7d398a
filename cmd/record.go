package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/audiolibrelab/quickrec/internal/menu"

	"github.com/spf13/cobra"
)

var recordDuration string

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a clip from the default microphone",
	Long: `Record a clip from the default input device into a new
recording_<unix-millis>.wav file in the recordings directory.
Press Ctrl+C to stop early and keep what was captured.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		duration, err := durationFlag(recordDuration)
		if err != nil {
			return err
		}
		slog.Info("Record command started", "duration", duration)

		if _, ok := newService().Record(cmd.Context(), duration); !ok {
			return fmt.Errorf("recording failed")
		}
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVarP(&recordDuration, "duration", "d", "", "recording length, seconds (\"3\") or a duration (\"1m30s\"); default from config")
}

// durationFlag parses a duration flag, falling back to the configured default.
func durationFlag(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return cfg.Output.DefaultDuration, nil
	}
	if d, err := time.ParseDuration(value); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("%w: duration must be positive", menu.ErrInvalidInput)
		}
		return d, nil
	}
	return menu.ParseSeconds(value)
}
