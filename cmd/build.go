package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/fragview/internal/progress"
	"github.com/ziadkadry99/fragview/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Write an expanded copy of every page",
	Long: `Walks root_dir, expands the fragments of every page matching the include
globs and writes the result under output_dir. Other files are copied as-is.
Fragments that fail to load are left in place and reported; they do not fail
the build.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("output", "", "override output directory")
	buildCmd.Flags().Bool("quiet", false, "disable progress output")
	buildCmd.Flags().Bool("strict", false, "exit non-zero when any fragment failed to load")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.OutputDir = out
	}

	store, closeJournal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer closeJournal()

	exp, err := newExpander(cfg, store, false)
	if err != nil {
		return err
	}

	var reporter progress.Reporter = progress.Nop{}
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		reporter = progress.NewReporter()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := &site.Builder{
		Expander:    exp,
		RootDir:     cfg.RootDir,
		OutputDir:   cfg.OutputDir,
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
		Concurrency: cfg.MaxConcurrency,
		Reporter:    reporter,
	}
	result, err := b.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages (%d fragments loaded, %d failed) and copied %d files to %s\n",
		result.Pages, result.Loaded, result.Failed, result.Assets, cfg.OutputDir)

	if strict, _ := cmd.Flags().GetBool("strict"); strict && result.Failed > 0 {
		return fmt.Errorf("%d fragments failed to load", result.Failed)
	}
	return nil
}
