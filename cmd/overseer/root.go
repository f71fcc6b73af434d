package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/overseer/internal/config"
	"github.com/aretw0/overseer/internal/journal"
	"github.com/aretw0/overseer/internal/logging"
	"github.com/aretw0/overseer/internal/session"
	"github.com/aretw0/overseer/pkg/ports"
)

var rootCmd = &cobra.Command{
	Use:   "overseer",
	Short: "Overseer drives a running game through its snapshot/command bridge",
	Long: `Overseer reads the state snapshots a game engine publishes to disk and
answers with command batches: navigation, combat, dialogue, all paced by
the engine's own tick counter.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("game-dir", "", "Directory the engine publishes snapshots to")
	rootCmd.PersistentFlags().String("config", "overseer.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig layers the config file over defaults and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if dir, _ := cmd.Flags().GetString("game-dir"); dir != "" {
		cfg.GameDir = dir
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

// startSession wires a session, starts the poller, and waits for the first
// snapshot so commands fail fast when the publisher is down. The returned
// context cancels on SIGINT/SIGTERM; the cleanup func must be deferred.
func startSession(cmd *cobra.Command) (*session.Session, context.Context, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	sess, err := session.New(cfg, session.WithLogger(newLogger(cmd)))
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	sess.Start(ctx)

	cleanup := func() {
		sess.Close()
		stop()
	}

	if _, err := sess.Poller.Next(ctx); err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("no snapshot from %s: %w (is the game running?)", cfg.GameDir, err)
	}

	return sess, ctx, cleanup, nil
}

// openJournal opens the configured journal backend without a full session,
// for commands that never touch the bridge.
func openJournal(cfg config.Config) (ports.Journal, func(), error) {
	switch cfg.Journal.Backend {
	case "redis":
		j := journal.NewRedis(cfg.Journal.RedisAddr)
		return j, func() { j.Close() }, nil
	default:
		j, err := journal.NewFile(cfg.Journal.Dir)
		if err != nil {
			return nil, nil, err
		}
		return j, func() {}, nil
	}
}
