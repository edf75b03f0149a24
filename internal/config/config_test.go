package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.KeepDays != 30 || cfg.KeepMinimum != 5 {
		t.Errorf("retention defaults = %d/%d, want 30/5", cfg.KeepDays, cfg.KeepMinimum)
	}
	if cfg.BackupCron != "0 3 * * *" {
		t.Errorf("BackupCron = %q, want the nightly default", cfg.BackupCron)
	}
	if cfg.BackupDir == "" || cfg.DatabasePath == "" {
		t.Error("paths not defaulted")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BACKUP_DIR", "/var/backups/theralog")
	t.Setenv("BACKUP_KEEP_DAYS", "14")
	t.Setenv("BACKUP_KEEP_MINIMUM", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BackupDir != "/var/backups/theralog" {
		t.Errorf("BackupDir = %q", cfg.BackupDir)
	}
	if cfg.KeepDays != 14 || cfg.KeepMinimum != 3 {
		t.Errorf("retention = %d/%d, want 14/3", cfg.KeepDays, cfg.KeepMinimum)
	}
}

func TestLoadRejectsBadInteger(t *testing.T) {
	t.Setenv("BACKUP_KEEP_DAYS", "a month")

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for a non-integer BACKUP_KEEP_DAYS")
	}
}
