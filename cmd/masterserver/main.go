package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/udisondev/masterserver/internal/config"
	"github.com/udisondev/masterserver/internal/db"
	"github.com/udisondev/masterserver/internal/master"
)

const ConfigPath = "config/masterserver.yaml"

func main() {
	cfgPath := pflag.StringP("config", "c", ConfigPath, "path to the YAML config file")
	testDB := pflag.String("testdb", "", "run a statistics store self-test as the named player and exit")
	pflag.Parse()

	if p := os.Getenv("MASTER_CONFIG"); p != "" && !pflag.CommandLine.Changed("config") {
		*cfgPath = p
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, *cfgPath, *testDB); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath, testDB string) error {
	// Load config
	cfg, err := config.LoadMaster(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Configure slog
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	slog.Info("master server starting", "name", cfg.MasterName, "bind", cfg.BindAddress, "port", cfg.Port)

	// Open statistics store
	store, err := openStats(ctx, cfg.Stats)
	if err != nil {
		return fmt.Errorf("opening statistics store: %w", err)
	}
	if store != nil {
		defer store.Close()
		slog.Info("statistics store opened", "driver", cfg.Stats.Driver)
	} else {
		slog.Info("statistics store not configured, stats are discarded")
	}

	if testDB != "" {
		if store == nil {
			return fmt.Errorf("cannot self-test: statistics store is not configured")
		}
		if err := db.SelfTest(ctx, store, testDB); err != nil {
			return fmt.Errorf("store self-test: %w", err)
		}
		slog.Info("store self-test passed", "player", testDB)
		return nil
	}

	// Connect to the forum credential store
	var verifier db.CredentialVerifier
	if cfg.Forum.Enabled() {
		fv, err := db.NewForumVerifier(ctx, cfg.Forum.Database.DSN(), cfg.Forum.TablePrefix)
		if err != nil {
			return fmt.Errorf("connecting to forum database: %w", err)
		}
		defer fv.Close()
		verifier = db.VerifierWithBreaker(fv)
		slog.Info("forum database connected", "host", cfg.Forum.Database.Host)
	} else {
		slog.Info("forum database not configured, name claims are not verified")
	}

	m := master.NewMaster(&cfg, cfgPath, store, verifier)

	// Re-apply the config when the file changes on disk
	stopWatch, err := config.Watch(cfgPath, func() {
		next, err := config.LoadMaster(cfgPath)
		if err != nil {
			slog.Warn("config reload failed", "error", err)
			return
		}
		m.Reload(&next)
	})
	if err != nil {
		slog.Warn("config watcher unavailable", "error", err)
	} else {
		defer stopWatch()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting master server")
		if err := m.Run(gctx); err != nil {
			return fmt.Errorf("master server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// openStats выбирает хранилище статистики по драйверу из конфига.
// Пустой драйвер выключает статистику целиком.
func openStats(ctx context.Context, cfg config.StatsConfig) (db.StatsStore, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "sqlite":
		s, err := db.NewSqliteStats(ctx, cfg.File)
		if err != nil {
			return nil, err
		}
		return db.WithBreaker(s), nil
	case "postgres":
		dsn := cfg.Database.DSN()
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		s, err := db.NewPostgresStats(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return db.WithBreaker(s), nil
	default:
		return nil, fmt.Errorf("unknown stats driver %q", cfg.Driver)
	}
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
