package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aryannaik/nb-bookmarks/internal/config"
	"github.com/aryannaik/nb-bookmarks/internal/ingest"
	"github.com/aryannaik/nb-bookmarks/internal/logging"
	"github.com/aryannaik/nb-bookmarks/internal/nb"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	nbBinary    string
	timeout     time.Duration
	concurrency int

	cfg    config.Config
	logger *zap.Logger

	// newRunner builds the nb collaborator; tests swap it for a fake.
	newRunner = func(cfg config.Config, logger *zap.Logger) nb.Runner {
		return nb.NewCommandRunner(cfg.NBBinary,
			nb.WithTimeout(cfg.QueryTimeout),
			nb.WithLogger(logger))
	}
)

var rootCmd = &cobra.Command{
	Use:   "nb-bookmarks",
	Short: "Structured bookmarks and tags from the nb CLI",
	Long: `nb-bookmarks runs the nb note-taking CLI, strips its terminal formatting and
turns its listings into structured bookmark and tag records.

Bookmarks are listed with "nb bookmarks", enriched one by one with "nb show",
and tags are counted with one "nb --tags <name>" query per tag.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlags(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(logging.Options{
			Level:   cfg.LogLevel,
			Verbose: verbose,
			File:    cfg.LogFile,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&nbBinary, "nb", "", "nb executable (default from config, then \"nb\")")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for each nb invocation")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "max concurrent \"nb show\" calls (<= 0 is unbounded)")

	rootCmd.AddCommand(bookmarksCmd, tagsCmd, filterCmd, showCmd, searchCmd, serveCmd)
}

// applyFlags lets explicitly set flags override the loaded config.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("nb") {
		cfg.NBBinary = nbBinary
	}
	if flags.Changed("timeout") {
		cfg.QueryTimeout = timeout
	}
	if flags.Changed("concurrency") {
		cfg.DetailConcurrency = concurrency
	}
}

func newService() *ingest.Service {
	return ingest.NewService(newRunner(cfg, logger), logger, ingest.Options{
		DetailConcurrency: cfg.DetailConcurrency,
		TagConcurrency:    cfg.TagConcurrency,
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
