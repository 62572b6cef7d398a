package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/audiolibrelab/quickrec/internal/config"
	"github.com/audiolibrelab/quickrec/internal/menu"
	"github.com/audiolibrelab/quickrec/internal/service"

	"github.com/spf13/cobra"
)

var (
	cfg          *config.Config
	cfgFile      string
	outputDir    string
	verboseLevel int
)

var rootCmd = &cobra.Command{
	Use:   "quickrec",
	Short: "Record short audio clips from the microphone and play them back",
	Long: `quickrec records short clips through an installed command-line recorder
(sox, rec or arecord), saves them as WAV files and plays them back through an
installed player.

Without a subcommand it starts an interactive menu.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Configure slog based on verbose level
		setupLogging(verboseLevel)

		path := cfgFile
		if path == "" {
			path = config.DefaultPath()
		} else if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("config file not found: %s", path)
		}

		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if outputDir != "" {
			cfg.SetDirectory(outputDir)
		}
		slog.Debug("Configuration loaded", "path", path, "directory", cfg.Output.Directory)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newService()
		if err := svc.EnsureDirs(); err != nil {
			return err
		}

		m := menu.New(svc, os.Stdin, os.Stdout)
		m.DefaultDuration = cfg.Output.DefaultDuration
		return m.Run(cmd.Context())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/quickrec.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "dir", "o", "", "recordings directory (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&verboseLevel, "verbose", "v", 0, "verbose level: 0=warnings, 1=info, 2=debug with recorder output")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(favoriteCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(recordersCmd)
	rootCmd.AddCommand(infoCmd)
}

// newService builds the service writing user-facing progress to stdout.
func newService() *service.QuickrecService {
	return service.New(cfg, os.Stdout)
}

// setupLogging configures slog based on the verbose level
func setupLogging(level int) {
	var slogLevel slog.Level
	switch {
	case level <= 0:
		// progress already goes to stdout, keep stderr for problems
		slogLevel = slog.LevelWarn
	case level == 1:
		slogLevel = slog.LevelInfo
	default:
		slogLevel = slog.LevelDebug
	}

	// Configure text handler for clean terminal output
	opts := &slog.HandlerOptions{
		Level: slogLevel,
	}
	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)
	slog.SetDefault(logger)
}
