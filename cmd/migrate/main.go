package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cellarclub/backend/internal/infrastructure/config"
	"github.com/cellarclub/backend/internal/infrastructure/logger"
	"github.com/cellarclub/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "migrations", "path to the migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("resolve migrations path", zap.Error(err))
	}

	// create and list work on the files alone, no database needed
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("usage: migrate create <name>")
		}
		pair, err := migration.Create(absPath, args[1])
		if err != nil {
			log.Fatal("create migration", zap.Error(err))
		}
		log.Info("migration created",
			zap.String("version", pair.Version),
			zap.String("up", pair.UpPath),
			zap.String("down", pair.DownPath),
		)
		return

	case "list":
		names, err := migration.List(absPath)
		if err != nil {
			log.Fatal("list migrations", zap.Error(err))
		}
		log.Info("migrations on disk", zap.Int("count", len(names)))
		for _, name := range names {
			fmt.Println("  -", name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("ping database", zap.Error(err))
	}

	mg, err := migration.New(db, absPath, log)
	if err != nil {
		log.Fatal("build migrator", zap.Error(err))
	}
	defer mg.Close()

	switch command {
	case "up":
		if err := mg.Up(); err != nil {
			log.Fatal("migrate up", zap.Error(err))
		}

	case "down":
		if err := mg.Down(); err != nil {
			log.Fatal("migrate down", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("invalid step count", zap.String("value", args[1]))
		}
		if err := mg.Steps(n); err != nil {
			log.Fatal("migrate step", zap.Error(err))
		}

	case "version":
		version, dirty, err := mg.Version()
		if err != nil {
			log.Fatal("read version", zap.Error(err))
		}
		if version == 0 {
			log.Info("no migrations applied")
		} else {
			log.Info("current schema version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("invalid version", zap.String("value", args[1]))
		}
		if err := mg.Force(version); err != nil {
			log.Fatal("force version", zap.Error(err))
		}

	default:
		log.Error("unknown command", zap.String("command", command))
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`Club schema migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up              apply all pending migrations
  down            roll back all migrations
  step <n>        apply n migrations (negative rolls back)
  version         show the current schema version
  force <version> pin the version after a hand-repaired failure
  create <name>   write a new up/down migration pair
  list            list migration pairs on disk

Flags:
  -path string       migrations directory (default "migrations")
  -log-level string  debug, info, warn, error (default "info")

The database connection comes from the same configuration as the server:
DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSL_MODE.`)
}
