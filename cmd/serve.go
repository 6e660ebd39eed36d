package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sjsage522/filmwaiver/config"
	"sjsage522/filmwaiver/internal/api"
	"sjsage522/filmwaiver/internal/source"
	"sjsage522/filmwaiver/internal/store"
	"sjsage522/filmwaiver/logger"
	"sjsage522/filmwaiver/services/cache"
	"sjsage522/filmwaiver/services/publisher"
	"sjsage522/filmwaiver/services/worker"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (default from $PORT or 3000)")
	serveCmd.Flags().String("source", "", "Data source: live or static (default from $WAIVER_DATA_SOURCE)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.ForServer()

	if p, _ := cmd.Flags().GetString("port"); p != "" {
		cfg.Port = p
	}
	if s, _ := cmd.Flags().GetString("source"); s != "" {
		cfg.DataSource = s
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Info().
		Str("environment", cfg.Environment).
		Str("source", cfg.DataSource).
		Dur("cache_ttl", cfg.CacheTTL).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("Starting application")

	// Set up context cancelled on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services := initializeServices(ctx, cfg)
	defer services.Cleanup()

	snapshots := store.New(newSource(cfg, services.Cache), cfg.CacheTTL, services.Publisher)

	if cfg.RefreshInterval > 0 {
		w := worker.NewWorker(snapshots, services.Publisher, cfg.RefreshInterval)
		go w.Start(ctx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(snapshots, cfg.PageSize),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.FetchTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Film waiver API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Services holds the optional backing services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logger.ForPublisher().Warn().Err(err).Msg("Failed to close publisher")
		}
	}
}

// initializeServices connects the optional memcache and redis services.
// Unreachable services are logged and kept, their operations fail softly.
func initializeServices(ctx context.Context, cfg *config.Config) *Services {
	services := &Services{Cache: cache.New(cfg.MemcacheAddr), Publisher: publisher.Nop{}}

	if mc, ok := services.Cache.(*cache.MemcacheService); ok {
		if err := mc.Ping(); err != nil {
			logger.ForCache().Warn().Err(err).Str("addr", cfg.MemcacheAddr).Msg("Memcache unreachable")
		} else {
			logger.ForCache().Info().Str("addr", cfg.MemcacheAddr).Msg("Connected to Memcache")
		}
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		log := logger.ForPublisher().WithFields(logger.Fields{
			"addr":   cfg.RedisAddr,
			"db":     cfg.RedisDB,
			"stream": cfg.RedisStream,
		})
		if err := redisPublisher.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable")
		} else {
			log.Info().Msg("Connected to Redis")
		}
		services.Publisher = redisPublisher
	}

	return services
}

// newSource picks the record source for the configured data source
func newSource(cfg *config.Config, cacheSvc cache.CacheService) source.Source {
	if cfg.DataSource == config.SourceStatic {
		return source.NewStatic()
	}
	return source.NewScraper(cfg, cacheSvc)
}
