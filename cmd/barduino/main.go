// barduino — drink recommendation service for bar kiosks.
// Entry point: version/help flags plus the serve and migrate subcommands.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rafaelgorayb/barduino/internal/domain/catalog"
	"github.com/rafaelgorayb/barduino/internal/infra/config"
	"github.com/rafaelgorayb/barduino/internal/infra/sqlite"
	"github.com/rafaelgorayb/barduino/internal/server"
	"github.com/rafaelgorayb/barduino/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

func run(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("barduino", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	showVersion := fs.Bool("version", false, "Show version information")
	showHelp := fs.Bool("help", false, "Show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	}

	if *showHelp {
		printHelp(out)
		return 0
	}

	switch fs.Arg(0) {
	case "serve":
		return serveCmd(fs.Args()[1:], out)
	case "migrate":
		return migrateCmd(out)
	case "":
		// Default: print version.
		fmt.Fprintln(out, version.String()) //nolint:errcheck
		return 0
	default:
		fmt.Fprintf(out, "unknown command %q\n\n", fs.Arg(0)) //nolint:errcheck
		printHelp(out)
		return 2
	}
}

// openDB opens the configured database with migrations applied.
func openDB(out io.Writer) (*sql.DB, string, bool) {
	cfg := config.Load()
	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(out, "failed to open database %s: %v\n", cfg.DBPath, err) //nolint:errcheck
		return nil, "", false
	}
	if err := sqlite.MigrateUp(db); err != nil {
		db.Close() //nolint:errcheck
		fmt.Fprintf(out, "migration failed: %v\n", err) //nolint:errcheck
		return nil, "", false
	}
	return db, cfg.DBPath, true
}

// migrateCmd applies pending migrations and reports the schema version.
func migrateCmd(out io.Writer) int {
	db, path, ok := openDB(out)
	if !ok {
		return 1
	}
	defer db.Close() //nolint:errcheck

	v, err := sqlite.MigrationVersion(db)
	if err != nil {
		fmt.Fprintf(out, "failed to read schema version: %v\n", err) //nolint:errcheck
		return 1
	}
	fmt.Fprintf(out, "database %s at schema version %d\n", path, v) //nolint:errcheck
	return 0
}

// serveCmd runs migrations, seeds the menu if empty, and serves HTTP until
// SIGINT/SIGTERM.
func serveCmd(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("barduino serve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	port := fs.Int("port", server.DefaultConfig().Port, "HTTP listen port")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	db, path, ok := openDB(out)
	if !ok {
		return 1
	}

	seeded, err := catalog.Seed(context.Background(), db)
	if err != nil {
		db.Close() //nolint:errcheck
		fmt.Fprintf(out, "menu seed failed: %v\n", err) //nolint:errcheck
		return 1
	}
	if seeded > 0 {
		fmt.Fprintf(out, "seeded %d drinks into %s\n", seeded, path) //nolint:errcheck
	}

	srvConfig := server.DefaultConfig()
	srvConfig.Port = *port
	srv := server.NewServer(db, srvConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(out, "shutdown error: %v\n", err) //nolint:errcheck
			return 1
		}
		return 0
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(out, "server error: %v\n", err) //nolint:errcheck
			return 1
		}
		return 0
	}
}

func printHelp(out io.Writer) {
	helpText := `barduino - drink recommendation service

Usage:
  barduino [options] [command]

Options:
  --version    Show version information
  --help       Show this help message

Commands:
  serve        Run migrations, seed the menu, start the HTTP server
  migrate      Apply database migrations and print the schema version

Examples:
  barduino --version
  barduino serve --port 8080
  barduino migrate`
	fmt.Fprintln(out, helpText) //nolint:errcheck
}
