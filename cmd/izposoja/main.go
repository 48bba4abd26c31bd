// Command izposoja runs the equipment rental API server.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/izposoja/internal/api"
	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/store"
)

const usage = `Usage: izposoja [flags]

Flags:
  -d, -db <path>          SQLite database path (default: izposoja.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        administrator created on first run (default: Admin)
  -r, -login-rate <n>     login attempts per minute per client, 0 disables (default: 10)
  -l, -log <path>         also append logs to this file
  -v, -verbose            log debug messages
  -h, -help               show this help and exit
`

type options struct {
	dbPath    string
	addr      string
	adminUser string
	loginRate int
	logPath   string
	verbose   bool
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("izposoja", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	var o options
	fs.StringVar(&o.dbPath, "db", "izposoja.sqlite3", "")
	fs.StringVar(&o.dbPath, "d", "izposoja.sqlite3", "")
	fs.StringVar(&o.addr, "addr", ":8080", "")
	fs.StringVar(&o.addr, "a", ":8080", "")
	fs.StringVar(&o.adminUser, "user", "Admin", "")
	fs.StringVar(&o.adminUser, "u", "Admin", "")
	fs.IntVar(&o.loginRate, "login-rate", 10, "")
	fs.IntVar(&o.loginRate, "r", 10, "")
	fs.StringVar(&o.logPath, "log", "", "")
	fs.StringVar(&o.logPath, "l", "", "")
	fs.BoolVar(&o.verbose, "verbose", false, "")
	fs.BoolVar(&o.verbose, "v", false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if o.loginRate < 0 {
		return nil, fmt.Errorf("login rate must not be negative")
	}
	return &o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(opts.logPath, opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	if err := run(opts); err != nil {
		slog.Error("fatal", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(opts *options) error {
	ctx := context.Background()

	database, err := db.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}

	password, err := ensureAdmin(ctx, database, opts.adminUser)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	if password != "" {
		printAdmin(opts.dbPath, opts.adminUser, password)
	}
	slog.Info("database ready", "path", opts.dbPath)

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading jwt secret: %w", err)
	}

	router := api.NewRouter(database, api.Config{
		JWTSecret:       jwtSecret,
		LoginsPerMinute: opts.loginRate,
	})

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           api.LoggingMiddleware(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-sigCtx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	go purgeRevokedTokens(sigCtx, database, time.Hour)

	slog.Info("server started", "addr", opts.addr, "login_rate", opts.loginRate)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// purgeRevokedTokens periodically drops revocations of expired tokens until
// ctx is done.
func purgeRevokedTokens(ctx context.Context, database *sql.DB, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		n, err := store.PurgeRevokedTokens(ctx, database, time.Now())
		if err != nil && ctx.Err() == nil {
			slog.Error("failed to purge revoked tokens", "error", err)
		} else if n > 0 {
			slog.Debug("purged revoked tokens", "count", n)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
