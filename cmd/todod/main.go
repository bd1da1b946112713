package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todod/internal/auth"
	"github.com/sandeepkv93/todod/internal/config"
	"github.com/sandeepkv93/todod/internal/logging"
	"github.com/sandeepkv93/todod/internal/scheduler"
	"github.com/sandeepkv93/todod/internal/session"
	"github.com/sandeepkv93/todod/internal/storage"
	"github.com/sandeepkv93/todod/internal/update"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	var configPath string
	rootCmd := &cobra.Command{
		Use:           "todod",
		Short:         "todod - a terminal task tracker",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "todod.yaml", "path to the YAML config file")

	rootCmd.AddCommand(exportCmd(&configPath))
	rootCmd.AddCommand(migrateCmd(&configPath))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "todod failed: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand opens from the config.
type app struct {
	cfg    config.Config
	log    *slog.Logger
	repo   storage.Repository
	closer io.Closer
}

func openApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, closer, err := logging.OpenFile(cfg.Log.File, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	repo, err := storage.Open(ctx, cfg.StorageOptions())
	if err != nil {
		log.Error("open storage failed", "backend", cfg.Storage.Backend, "error", err)
		_ = closer.Close()
		return nil, err
	}
	log.Info("storage opened", "backend", cfg.Storage.Backend)
	return &app{cfg: cfg, log: log, repo: repo, closer: closer}, nil
}

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.log.Warn("close storage failed", "error", err)
	}
	_ = a.closer.Close()
}

func (a *app) auth() *auth.Service {
	return auth.NewService(a.repo, a.cfg.BcryptCost, a.log)
}

func (a *app) sessionOptions() session.Options {
	return session.Options{
		Logger:            a.log,
		Locale:            a.cfg.Locale,
		TodayResetsStatus: a.cfg.TodayResetsStatus,
		DefaultSort:       a.cfg.SortKey(),
	}
}

func runTUI(ctx context.Context, configPath string) error {
	a, err := openApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	sched := scheduler.NewEngine(a.cfg.SchedulerBuffer)
	sched.Start()
	defer sched.Stop()

	program := tea.NewProgram(update.NewModel(update.Deps{
		Auth:      a.auth(),
		Repo:      a.repo,
		Scheduler: sched,
		Logger:    a.log,
		Session:   a.sessionOptions(),
	}))
	if _, err := program.Run(); err != nil {
		return err
	}
	if dropped := sched.Dropped(); dropped > 0 {
		a.log.Warn("scheduler dropped events", "count", dropped)
	}
	return nil
}
