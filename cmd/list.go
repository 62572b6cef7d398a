package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved recordings, newest first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := newService().ListRecordings()
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Printf("📝 No saved recordings in %s\n", cfg.Output.Directory)
			return nil
		}

		fmt.Printf("📝 Saved recordings (%s):\n", cfg.Output.Directory)
		for i, e := range entries {
			fmt.Printf("  %d. %s (%s, %s)\n", i+1, e.Name, e.SizeHuman(), e.ModTime.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}
