// apicheck exercises the stock-monitor API end to end: log in, fetch the
// account, the monitor list, a realtime snapshot and the service status.
// Useful for verifying credentials and backend reachability.
//
// Usage: apicheck --base-url http://localhost:8000/api --user demo --pass secret
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/lwei/stockmon/internal/api"
	"github.com/lwei/stockmon/internal/auth"
)

func main() {
	baseURL := flag.String("base-url", "http://localhost:8000/api", "API base URL")
	user := flag.String("user", "", "username (default: STOCKMON_USERNAME)")
	pass := flag.String("pass", "", "password (default: STOCKMON_PASSWORD)")
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	username := *user
	if username == "" {
		username = os.Getenv("STOCKMON_USERNAME")
	}
	password := *pass
	if password == "" {
		password = os.Getenv("STOCKMON_PASSWORD")
	}
	if username == "" || password == "" {
		fmt.Fprintln(os.Stderr, "username and password are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tokens := auth.NewMemoryStore()
	client := api.NewClient(*baseURL, tokens, api.WithLogger(logger))
	session := auth.NewSession(client, tokens, logger)

	me, err := session.Login(ctx, username, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("logged in as %s (id=%d)\n", me.Username, me.ID)

	monitors, err := client.ListMonitors(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list monitors failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("monitors: %d\n", len(monitors))
	for _, m := range monitors {
		fmt.Printf("  #%d stock=%d %s active=%v\n", m.ID, m.StockID, m.StockName, m.IsActive)
	}

	rt, err := client.RealtimeMonitors(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "realtime monitors failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("realtime: %d monitors, is_trading=%v, cache_ttl=%ds\n",
		len(rt.Monitors), rt.IsTrading, rt.CacheTTL)
	for _, m := range rt.Monitors {
		fmt.Printf("  #%d %s price=%s change=%s%% alert=%v\n",
			m.ID, m.StockName, m.CurrentPrice, m.ChangePercent, m.HasAlert)
	}

	status, err := client.RealtimeStatus(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "realtime status failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("service: is_trading=%v cache_valid=%v cache_size=%d\n",
		status.IsTrading, status.CacheValid, status.CacheSize)
}
