// stockmon watches the user's stock monitors from the terminal: it keeps the
// monitor list in sync with the backend at a trading-hours-adaptive cadence
// and prints summary lines as quotes move.
//
// Usage: stockmon --config configs/client.yaml
//
// Credentials come from the persisted token file; when that is absent or
// expired, STOCKMON_USERNAME and STOCKMON_PASSWORD (environment or .env) are
// used to log in again.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lwei/stockmon/internal/api"
	"github.com/lwei/stockmon/internal/auth"
	"github.com/lwei/stockmon/internal/config"
	"github.com/lwei/stockmon/internal/monitor"
	"github.com/lwei/stockmon/internal/stream"
	"github.com/lwei/stockmon/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/client.yaml", "path to config file")
	flag.Parse()

	// Pick up STOCKMON_* variables from a local .env, if present.
	_ = godotenv.Load()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting stockmon",
		"version", version.Version,
		"commit", version.Commit,
		"api_url", cfg.API.BaseURL,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	tokens, err := auth.NewFileStore(cfg.Auth.TokenFile)
	if err != nil {
		logger.Error("failed to open token store", "error", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.API.BaseURL, tokens,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithNotifier(api.NotifierFunc(func(msg string) {
			logger.Warn("notice", "message", msg)
		})),
		// Headless client: "redirect to login" means shut down so the next
		// run logs in afresh.
		api.WithNavigator(api.NavigatorFunc(func() {
			logger.Warn("session expired, shutting down")
			cancel()
		})),
	)

	session := auth.NewSession(client, tokens, logger)
	if !session.CheckAuth(ctx) {
		username := os.Getenv("STOCKMON_USERNAME")
		password := os.Getenv("STOCKMON_PASSWORD")
		if username == "" || password == "" {
			logger.Error("no valid session; set STOCKMON_USERNAME and STOCKMON_PASSWORD to log in")
			os.Exit(1)
		}
		if _, err := session.Login(ctx, username, password); err != nil {
			logger.Error("login failed", "error", err)
			os.Exit(1)
		}
	}
	user := session.CurrentUser()
	logger.Info("session ready", "username", user.Username)

	engine := monitor.New(monitor.Config{
		TradingInterval: cfg.Poll.TradingInterval,
		IdleInterval:    cfg.Poll.IdleInterval,
		RequestTimeout:  cfg.Poll.RequestTimeout,
	}, client, logger)

	if err := engine.Load(ctx); err != nil {
		logger.Error("initial load failed", "error", err)
		os.Exit(1)
	}
	engine.StartPolling()
	defer engine.StopPolling()

	if cfg.Stream.Enabled {
		go runStream(ctx, cfg, tokens.Token(), engine, logger)
	}

	statusTicker := time.NewTicker(30 * time.Second)
	defer statusTicker.Stop()

	printStats(engine, logger)
	for {
		select {
		case <-ctx.Done():
			logger.Info("stockmon stopped")
			return
		case <-statusTicker.C:
			printStats(engine, logger)
		}
	}
}

// runStream maintains the optional websocket push channel alongside polling.
// Stream failures degrade to polling alone.
func runStream(ctx context.Context, cfg *config.ClientConfig, token string, engine *monitor.Engine, logger *slog.Logger) {
	sc := stream.NewClient(stream.Config{
		URL:          cfg.API.WSURL,
		Token:        token,
		PingInterval: cfg.Stream.PingInterval,
		ReadTimeout:  cfg.Stream.ReadTimeout,
		BufferSize:   cfg.Stream.BufferSize,
	}, logger)

	if err := sc.Connect(ctx); err != nil {
		logger.Warn("quote stream unavailable, continuing with polling only", "error", err)
		return
	}
	defer sc.Close()

	for _, m := range engine.Monitors() {
		if err := sc.Subscribe(m.StockID); err != nil {
			logger.Warn("subscribe failed", "stock_id", m.StockID, "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sc.Errors():
			logger.Warn("quote stream failed, continuing with polling only", "error", err)
			return
		case u := <-sc.Updates():
			logger.Info("pushed quote",
				"stock_id", u.StockID,
				"price", u.Data.Price,
				"change_percent", u.Data.ChangePercent,
			)
		}
	}
}

func printStats(engine *monitor.Engine, logger *slog.Logger) {
	stats := engine.Stats()
	logger.Info("monitor summary",
		"total", stats.Total,
		"active", stats.Active,
		"rising", stats.Rising,
		"falling", stats.Falling,
		"alerting", stats.Alerting,
		"is_trading", engine.IsTrading(),
		"interval", engine.Interval(),
		"last_updated", engine.LastUpdated().Format(time.RFC3339),
	)
}

func logLevel(level string) slog.Level {
	switch level {
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
