package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/fragview/internal/journal"
	"github.com/ziadkadry99/fragview/internal/livereload"
	"github.com/ziadkadry99/fragview/internal/server"
	"github.com/ziadkadry99/fragview/internal/site"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site with fragments expanded on every request",
	Long: `Starts a local preview server. Pages under root_dir are expanded on each
request; other files, and any page requested with ?raw=1, are served as-is.
With live reload on, browsers viewing a page reload whenever a file under
root_dir changes. The load journal is exposed under /api/loads when
journal_path is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (defaults to serve.port)")
	serveCmd.Flags().Bool("open", false, "open browser automatically")
	serveCmd.Flags().Bool("no-reload", false, "disable live reload")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Serve.Port = port
	}
	if noReload, _ := cmd.Flags().GetBool("no-reload"); noReload {
		cfg.Serve.LiveReload = false
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{
		Port:     cfg.Serve.Port,
		AllowAll: cfg.Serve.AllowAll,
	}, slog.Default())
	r := srv.Router()

	if store != nil {
		journal.RegisterRoutes(r, store)
	}

	handler := site.NewHandler(exp, cfg.RootDir, cfg.Include, cfg.Exclude)

	if cfg.Serve.LiveReload {
		hub := livereload.NewHub(slog.Default())
		defer hub.Close()

		watcher, err := livereload.NewWatcher(livereload.WatcherConfig{
			RootDir:  cfg.RootDir,
			Ignore:   cfg.Exclude,
			SkipDirs: []string{cfg.OutputDir},
			OnChange: func(changed []string) {
				slog.Info("reloading", "changed", len(changed), "clients", hub.Clients())
				hub.Reload()
			},
		})
		if err != nil {
			return err
		}
		go func() {
			if err := watcher.Run(ctx); err != nil {
				slog.Error("live reload watcher stopped", "error", err)
			}
		}()

		r.Get(livereload.Path, hub.ServeHTTP)
		handler.Inject = livereload.Script
	}

	r.Handle("/*", handler)

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	url := fmt.Sprintf("http://localhost:%d", cfg.Serve.Port)
	fmt.Fprintf(os.Stderr, "fragview %s serving %s at %s\n", Version, cfg.RootDir, url)
	if cfg.JournalPath != "" {
		fmt.Fprintf(os.Stderr, "  Journal: %s\n", cfg.JournalPath)
	}
	if open, _ := cmd.Flags().GetBool("open"); open {
		go openBrowser(url)
	}

	return srv.Start()
}

// openBrowser opens the given URL in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
