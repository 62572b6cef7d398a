package cmd

import (
	"github.com/spf13/cobra"
)

var favoriteCmd = &cobra.Command{
	Use:     "favorite <number|file>",
	Aliases: []string{"fav"},
	Short:   "Move a recording into the favorites directory",
	Long: `Move a recording into the favorites directory. If a favorite with the same
name exists the file is renamed with a _favorite suffix, then with a
_favorite_<unix-millis> suffix; existing favorites are never overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService()

		entry, err := svc.Resolve(args[0])
		if err != nil {
			return err
		}
		_, err = svc.MoveToFavorites(entry.Name)
		return err
	},
}
