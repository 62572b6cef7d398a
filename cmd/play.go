package cmd

import (
	"errors"
	"strconv"

	"github.com/audiolibrelab/quickrec/internal/service"

	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play <number|file>",
	Short: "Play a recording",
	Long: `Play a recording by its number in 'quickrec list' or by file name.
A path to any other file is played as given. The first installed player
from the platform list (or player.preferred) is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService()

		path, err := resolvePath(svc, args[0])
		if err != nil {
			return err
		}
		return svc.Play(cmd.Context(), path)
	},
}

// resolvePath maps a list number or file name to a path. Unknown names are
// returned as-is so playback reports the missing file.
func resolvePath(svc *service.QuickrecService, ref string) (string, error) {
	entry, err := svc.Resolve(ref)
	if err == nil {
		return entry.Path, nil
	}
	if _, numErr := strconv.Atoi(ref); numErr != nil && errors.Is(err, service.ErrUnknownRecording) {
		return ref, nil
	}
	return "", err
}
