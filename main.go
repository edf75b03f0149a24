package main

import (
	"fmt"
	"os"

	"github.com/lwexler/theralog-be/internal/backup"
	"github.com/lwexler/theralog-be/internal/config"
	"github.com/lwexler/theralog-be/internal/database"
	"github.com/lwexler/theralog-be/internal/logger"
	"github.com/lwexler/theralog-be/internal/services"
	"github.com/lwexler/theralog-be/internal/store"
	"github.com/rs/zerolog/log"
)

const usage = `Usage: theralog-be <command> [flags]

Commands:
  create    Create a full or incremental snapshot of the record store
  restore   Restore the record store from a snapshot (replace or skip mode)
  verify    Check a snapshot's structure and referential consistency
  list      List snapshot files in the backup directory, newest first
  cleanup   Delete old snapshots under the retention policy
  schedule  Run periodic snapshots and cleanup on a cron expression
  user      Create an operator account

Run 'theralog-be <command> -h' for command flags.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services and the snapshot engine
	recordStore := store.New(db)
	eventService := services.NewEventService(db)
	engine := backup.NewEngine(recordStore, eventService, cfg.BackupDir)

	var runErr error
	switch os.Args[1] {
	case "create":
		runErr = runCreate(engine, os.Args[2:])
	case "restore":
		runErr = runRestore(engine, os.Args[2:])
	case "verify":
		runErr = runVerify(engine, os.Args[2:])
	case "list":
		runErr = runList(engine, os.Args[2:])
	case "cleanup":
		runErr = runCleanup(engine, cfg, os.Args[2:])
	case "schedule":
		runErr = runSchedule(engine, cfg, os.Args[2:])
	case "user":
		runErr = runUser(services.NewUserService(db), os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(1)
	}

	if runErr != nil {
		log.Error().Err(runErr).Str("command", os.Args[1]).Msg("Command failed")
		os.Exit(1)
	}
}
