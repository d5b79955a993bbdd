package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"skillsprint/adapters/jsonfile"
	mem "skillsprint/adapters/memory"
	redisAdapter "skillsprint/adapters/redis"
	sqlxAdapter "skillsprint/adapters/sqlx"
	"skillsprint/api/httpapi"
	"skillsprint/config"
	"skillsprint/content"
	"skillsprint/core"
	"skillsprint/engine"
	"skillsprint/integrations/webhook"
	"skillsprint/leaderboard"
	"skillsprint/learn"
	"skillsprint/realtime"
)

// App aggregates the assembled server components.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Hub     *realtime.Hub
	Service *engine.LearnService
	Handler http.Handler
	Server  *http.Server
}

func provideConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.LoadSecretsFromEnv(ctx); err != nil {
		return nil, err
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return setupLogging(cfg)
}

func provideHub() *realtime.Hub {
	return realtime.NewHub()
}

func provideStorage(ctx context.Context, cfg *config.Config) (engine.Storage, error) {
	return setupStorage(ctx, cfg)
}

func provideBoard() leaderboard.Board {
	return leaderboard.NewSkipList()
}

// provideContent returns nil when content generation is disabled, which
// in turn disables the lesson and question routes.
func provideContent(cfg *config.Config, logger *slog.Logger) *content.Client {
	if !cfg.Content.Enabled {
		return nil
	}
	return content.NewClient(cfg.Content.ClientConfig(),
		content.WithRetryConfig(cfg.Content.RetryConfig()),
		content.WithLogger(logger),
	)
}

func provideSink(cfg *config.Config) *webhook.Sink {
	wh := cfg.Integrations.Webhook
	if !wh.Enabled || len(wh.Endpoints) == 0 {
		return nil
	}
	var opts []webhook.Option
	if len(wh.Events) > 0 {
		types := make([]core.EventType, len(wh.Events))
		for i, e := range wh.Events {
			types[i] = core.EventType(e)
		}
		opts = append(opts, webhook.WithEventTypes(types...))
	}
	return webhook.New(wh.Endpoints, opts...)
}

func provideService(storage engine.Storage, hub *realtime.Hub, board leaderboard.Board, sink *webhook.Sink) *engine.LearnService {
	opts := []learn.Option{
		learn.WithStorage(storage),
		learn.WithRealtime(hub),
		learn.WithLeaderboard(board),
		learn.WithDispatchMode(engine.DispatchAsync),
	}
	if sink != nil {
		opts = append(opts, learn.WithWebhook(sink))
	}
	return learn.New(opts...)
}

func provideHandler(svc *engine.LearnService, hub *realtime.Hub, client *content.Client, board leaderboard.Board, cfg *config.Config) http.Handler {
	return httpapi.NewMux(httpapi.Deps{
		Service: svc,
		Hub:     hub,
		Content: client,
		Board:   board,
	}, httpapi.Options{
		PathPrefix:       cfg.Server.PathPrefix,
		AllowCORSOrigin:  cfg.Server.CORSOrigin,
		APIKeys:          cfg.Security.APIKeys,
		RateLimitEnabled: cfg.Security.EnableRateLimit,
		RateLimitRPM:     cfg.Security.RateLimit.RequestsPerMinute,
		RateLimitBurst:   cfg.Security.RateLimit.BurstSize,
	})
}

func provideServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

// setupLogging configures the logger based on configuration.
func setupLogging(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Logging.Level),
	}

	out := os.Stdout
	if cfg.Logging.Output == "stderr" {
		out = os.Stderr
	}

	switch cfg.Logging.Format {
	case "text":
		handler = slog.NewTextHandler(out, opts)
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if len(cfg.Logging.Attributes) > 0 {
		handler = handler.WithAttrs(convertAttributes(cfg.Logging.Attributes))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// convertAttributes converts map[string]string to []slog.Attr.
func convertAttributes(attrs map[string]string) []slog.Attr {
	var result []slog.Attr
	for k, v := range attrs {
		result = append(result, slog.String(k, v))
	}
	return result
}

// setupStorage creates the appropriate storage adapter based on configuration.
func setupStorage(ctx context.Context, cfg *config.Config) (engine.Storage, error) {
	switch cfg.Storage.Adapter {
	case "memory":
		return mem.New(), nil
	case "file":
		return jsonfile.New(cfg.Storage.File.Path)
	case "redis":
		return redisAdapter.New(cfg.Storage.Redis)
	case "sql":
		store, err := sqlxAdapter.New(cfg.Storage.SQL)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate schema: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage adapter: %s", cfg.Storage.Adapter)
	}
}
