package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	authremote "pawpals/internal/adapters/auth/remote"
	"pawpals/internal/adapters/broker/rabbitmq"
	modremote "pawpals/internal/adapters/moderation/remote"
	"pawpals/internal/adapters/moderation/wordlist"
	sessredis "pawpals/internal/adapters/session/redis"
	pg "pawpals/internal/adapters/storage/postgres"
	"pawpals/internal/config"
	"pawpals/internal/platform/httpclient"
	"pawpals/internal/platform/logger"
	"pawpals/internal/ports/moderation"
	"pawpals/internal/router"

	"github.com/spf13/cobra"
)

var autoMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply the database schema before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer syncLogger(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{Config: cfg, Logger: log}

	if dsn := cfg.Database.DSN; dsn != "" {
		db, err := pg.Open(dsn, poolConfig(cfg.Database))
		if err != nil {
			return err
		}
		defer db.Close()
		if autoMigrate {
			if err := pg.Migrate(ctx, db); err != nil {
				return err
			}
			log.Info("schema applied", nil)
		}
		opts.DB = db
	} else {
		log.Warn("DB_DSN not set, using in-memory storage", nil)
	}

	if addr := cfg.Redis.Addr; addr != "" {
		store, err := sessredis.Connect(ctx, sessredis.Config{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Sessions = store
		opts.Cache = store
	}

	if url := cfg.RabbitMQ.URL; url != "" {
		pub, err := rabbitmq.NewPublisher(rabbitmq.Config{
			URL:      url,
			Exchange: cfg.RabbitMQ.Exchange,
			Queue:    cfg.RabbitMQ.Queue,
		})
		if err != nil {
			return err
		}
		defer pub.Close()
		opts.Notifier = pub
	}

	if base := cfg.Auth.RemoteURL; base != "" {
		c, err := httpclient.New(httpclient.Config{BaseURL: base, APIKey: cfg.Auth.RemoteAPIKey})
		if err != nil {
			return err
		}
		opts.AuthVerifier = authremote.NewVerifier(c)
	}
	if cfg.Auth.DevMode {
		log.Warn("AUTH_DEV_MODE enabled: X-Debug-User-ID is trusted", nil)
	}

	mod, err := buildModerator(cfg.Moderation, log)
	if err != nil {
		return err
	}
	opts.Moderator = mod

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "env": cfg.App.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func poolConfig(c config.DatabaseConfig) pg.PoolConfig {
	return pg.PoolConfig{
		MaxOpenConns: c.MaxOpenConns,
		MaxIdleConns: c.MaxIdleConns,
		MaxLifetime:  c.MaxLifetime,
		MaxIdleTime:  c.MaxIdleTime,
		ConnTimeout:  c.ConnTimeout,
	}
}

// buildModerator combina lista local y servicio remoto; sin ninguno no filtra.
func buildModerator(c config.ModerationConfig, log logger.Logger) (moderation.Moderator, error) {
	var all moderation.All
	if path := c.WordListPath; path != "" {
		wl, err := wordlist.Load(path)
		if err != nil {
			return nil, err
		}
		log.Info("word list loaded", map[string]any{"path": path, "words": wl.Len()})
		all = append(all, wl)
	}
	if base := c.RemoteURL; base != "" {
		hc, err := httpclient.New(httpclient.Config{BaseURL: base, APIKey: c.RemoteAPIKey})
		if err != nil {
			return nil, err
		}
		all = append(all, modremote.New(hc, true))
	}
	if len(all) == 0 {
		return moderation.AllowAll{}, nil
	}
	return all, nil
}
