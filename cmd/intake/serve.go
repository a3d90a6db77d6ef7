package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/theflipapp/intake/internal/catalog"
	"github.com/theflipapp/intake/internal/config"
	"github.com/theflipapp/intake/internal/db"
	"github.com/theflipapp/intake/internal/handlers"
	"github.com/theflipapp/intake/internal/logger"
	"github.com/theflipapp/intake/internal/maintenance"
	"github.com/theflipapp/intake/internal/parse"
	"github.com/theflipapp/intake/internal/server"
	"github.com/theflipapp/intake/internal/version"
)

func newServeCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the intake classification service",
		Run: func(cmd *cobra.Command, args []string) {
			runServe(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	return cmd
}

func runServe(configPath string) {
	fx.New(
		fx.Provide(
			func() (config.Config, error) { return provideConfig(configPath) },
			provideLogger,
			provideDBConn,
			provideCatalogCache,
			provideMaintenanceStore,
			provideClassifier,
			provideLinks,
			provideParser,
			handlers.NewPingHandler,
			provideParseHandler,
			handlers.NewCatalogHandler,
			provideServer,
		),
		fx.Invoke(
			startCatalogRefresh,
			startServer,
		),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideConfig(path string) (config.Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideDBConn(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.Postgres); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	conn, err := db.Open(context.Background(), cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { conn.Close(); return nil }})
	return conn, nil
}

func provideCatalogCache(log *slog.Logger, conn *pgxpool.Pool) *catalog.Cache {
	return catalog.NewCache(log, catalog.NewPGStore(conn))
}

func provideMaintenanceStore(conn *pgxpool.Pool) *maintenance.Store {
	return maintenance.NewStore(conn)
}

func provideClassifier(cfg config.Config, log *slog.Logger) (*parse.Classifier, error) {
	kw := parse.DefaultKeywords()
	if path := cfg.Classifier.KeywordsFile; path != "" {
		loaded, err := parse.LoadKeywords(path)
		if err != nil {
			return nil, fmt.Errorf("classifier keywords: %w", err)
		}
		kw = loaded
		log.Info("classifier keywords loaded", slog.String("path", path))
	}
	return parse.NewClassifier(kw), nil
}

func provideLinks(cfg config.Config) *parse.Links {
	return parse.NewLinks(cfg.Links.Host)
}

func provideParser(log *slog.Logger, links *parse.Links, classifier *parse.Classifier, cache *catalog.Cache, store *maintenance.Store) *parse.Parser {
	return parse.NewParser(log, links, classifier, cache, store, store)
}

func provideParseHandler(log *slog.Logger, parser *parse.Parser) *handlers.ParseHandler {
	return handlers.NewParseHandler(log, parser)
}

func provideServer(cfg config.Config, pingHandler *handlers.PingHandler, parseHandler *handlers.ParseHandler, catalogHandler *handlers.CatalogHandler) *server.Server {
	return server.NewServer(cfg.Server.Addr, pingHandler, parseHandler, catalogHandler)
}

// startCatalogRefresh drops the asset cache on a schedule so renames picked
// up outside the invalidate endpoint still converge.
func startCatalogRefresh(lc fx.Lifecycle, logger *slog.Logger, cfg config.Config, cache *catalog.Cache) error {
	spec := cfg.Catalog.Refresh
	if spec == "" {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, cache.Invalidate); err != nil {
		return fmt.Errorf("catalog refresh schedule %q: %w", spec, err)
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			c.Start()
			logger.Info("catalog refresh scheduled", slog.String("spec", spec))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			<-c.Stop().Done()
			return nil
		},
	})
	return nil
}

func startServer(lc fx.Lifecycle, logger *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting intake %s\n", version.GetInfo())
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
