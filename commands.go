package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lwexler/theralog-be/internal/backup"
	"github.com/lwexler/theralog-be/internal/config"
	"github.com/lwexler/theralog-be/internal/scheduler"
	"github.com/lwexler/theralog-be/internal/services"
	"github.com/rs/zerolog/log"
)

// printResult writes a command's structured result to stdout.
func printResult(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runCreate(engine *backup.Engine, args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	backupType := fs.String("type", "full", "backup type: full or incremental")
	since := fs.String("since", "", "cutoff date (YYYY-MM-DD) for incremental backups; defaults to 7 days ago")
	noCompress := fs.Bool("no-compress", false, "write the snapshot uncompressed")
	skipTrialLogs := fs.Bool("skip-trial-logs", false, "exclude trial logs from a full backup")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	switch *backupType {
	case "full":
		result, err := engine.CreateFullBackup(ctx, backup.FullBackupOptions{
			Compress:         !*noCompress,
			IncludeTrialLogs: !*skipTrialLogs,
		})
		if err != nil {
			return err
		}
		return printResult(result)
	case "incremental":
		cutoff := time.Now().AddDate(0, 0, -7)
		if *since != "" {
			parsed, err := time.Parse("2006-01-02", *since)
			if err != nil {
				return fmt.Errorf("invalid -since date %q: %w", *since, err)
			}
			cutoff = parsed
		}
		result, err := engine.CreateIncrementalBackup(ctx, cutoff, !*noCompress)
		if err != nil {
			return err
		}
		return printResult(result)
	default:
		return fmt.Errorf("unknown backup type %q (want full or incremental)", *backupType)
	}
}

func runRestore(engine *backup.Engine, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	file := fs.String("file", "", "snapshot file (absolute, or relative to the backup directory)")
	mode := fs.String("mode", "replace", "conflict policy: replace or skip")
	yes := fs.Bool("yes", false, "confirm a destructive or warned restore without prompting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("the -file flag is required")
	}

	// Always verify before touching the store; the operator sees every
	// issue before anything is deleted.
	verify := engine.VerifyBackup(*file)
	if verify.Status == backup.VerifyError {
		return fmt.Errorf("backup failed verification: %s", verify.Error)
	}
	if verify.Status == backup.VerifyWarning {
		for _, issue := range verify.ConsistencyIssues {
			log.Warn().Msg(issue)
		}
		if !*yes {
			return fmt.Errorf("backup has consistency warnings; re-run with -yes to restore anyway")
		}
	}
	if backup.RestoreMode(*mode) == backup.ModeReplace && !*yes {
		return fmt.Errorf("replace mode deletes all existing clinical records; re-run with -yes to confirm")
	}

	result, err := engine.RestoreBackup(context.Background(), *file, backup.RestoreMode(*mode))
	if err != nil {
		return err
	}
	return printResult(result)
}

func runVerify(engine *backup.Engine, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	file := fs.String("file", "", "snapshot file (absolute, or relative to the backup directory)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("the -file flag is required")
	}

	result := engine.VerifyBackup(*file)
	if err := printResult(result); err != nil {
		return err
	}
	if result.Status == backup.VerifyError {
		return fmt.Errorf("snapshot is not usable: %s", result.Error)
	}
	return nil
}

func runList(engine *backup.Engine, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	backups, err := engine.ListBackups()
	if err != nil {
		return err
	}
	if backups == nil {
		backups = []backup.BackupInfo{}
	}
	return printResult(backups)
}

func runCleanup(engine *backup.Engine, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	keepDays := fs.Int("keep-days", cfg.KeepDays, "delete snapshots older than this many days")
	keepMinimum := fs.Int("keep-minimum", cfg.KeepMinimum, "always retain at least this many snapshots")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := engine.CleanupOldBackups(*keepDays, *keepMinimum)
	if err != nil {
		return err
	}
	return printResult(result)
}

func runSchedule(engine *backup.Engine, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	cronExpr := fs.String("cron", cfg.BackupCron, "cron expression for the backup job")
	backupType := fs.String("type", "full", "backup type: full or incremental")
	noCompress := fs.Bool("no-compress", false, "write snapshots uncompressed")
	keepDays := fs.Int("keep-days", cfg.KeepDays, "retention window in days")
	keepMinimum := fs.Int("keep-minimum", cfg.KeepMinimum, "minimum snapshots to retain")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sched, err := scheduler.New(engine, scheduler.Config{
		CronExpression: *cronExpr,
		BackupType:     *backupType,
		Compress:       !*noCompress,
		KeepDays:       *keepDays,
		KeepMinimum:    *keepMinimum,
	})
	if err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}
	go sched.Run()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runUser(users services.UserServiceProvider, args []string) error {
	fs := flag.NewFlagSet("user", flag.ExitOnError)
	username := fs.String("username", "", "account username")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password (min 8 characters)")
	role := fs.String("role", "clinician", "account role, e.g. clinician or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := users.CreateUser(*username, *email, *password, *role)
	if err != nil {
		return err
	}
	return printResult(user)
}
