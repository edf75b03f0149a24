package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lwexler/theralog-be/internal/models"
	"github.com/rs/zerolog/log"
)

// FullBackupOptions configures a full snapshot run.
type FullBackupOptions struct {
	// Compress gzips the snapshot file.
	Compress bool
	// IncludeTrialLogs includes the trial_logs collection. Trial logs are
	// by far the largest table, so high-frequency jobs may leave them out.
	IncludeTrialLogs bool
}

// BackupResult describes one created snapshot file.
type BackupResult struct {
	BackupID         string `json:"backup_id"`
	BackupName       string `json:"backup_name"`
	FilePath         string `json:"file_path"`
	FileSize         int64  `json:"file_size"`
	Compressed       bool   `json:"compressed"`
	IncludeTrialLogs bool   `json:"include_trial_logs,omitempty"`
	RecordsBackedUp  int    `json:"records_backed_up"`
	SinceDate        string `json:"since_date,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// CreateFullBackup captures every record of every entity type (trial logs
// optional) into a single snapshot file named full_backup_<timestamp>.
func (e *Engine) CreateFullBackup(ctx context.Context, opts FullBackupOptions) (*BackupResult, error) {
	now := time.Now()
	name := fullPrefix + now.Format(timestampLayout)

	data := make(map[models.EntityType][]models.Record, len(models.Registry))
	total := 0
	for _, entity := range models.InsertOrder() {
		if entity == models.EntityTrialLogs && !opts.IncludeTrialLogs {
			continue
		}
		recs, err := e.store.ScanAll(ctx, entity)
		if err != nil {
			e.recordEvent("backup.create.fail", "error", fmt.Sprintf("Full backup failed scanning %s: %v.", entity, err))
			return nil, fmt.Errorf("%w: scanning %s: %v", ErrStore, entity, err)
		}
		if recs == nil {
			recs = []models.Record{}
		}
		data[entity] = recs
		total += len(recs)
	}

	meta := &Metadata{
		BackupID:      uuid.New().String(),
		BackupType:    "full",
		CreatedAt:     now.UTC().Format(time.RFC3339),
		SchemaVersion: SchemaVersion,
		TotalRecords:  &total,
	}

	path, size, err := e.writeSnapshot(&document{Metadata: meta, Data: data}, name, opts.Compress)
	if err != nil {
		e.recordEvent("backup.create.fail", "error", fmt.Sprintf("Full backup failed writing snapshot: %v.", err))
		return nil, fmt.Errorf("writing snapshot: %w", err)
	}

	log.Info().
		Str("file", path).
		Int64("size", size).
		Int("records", total).
		Msg("Full backup created")
	e.recordEvent("backup.create", "info", fmt.Sprintf("Full backup %s created (%d records).", name, total))

	return &BackupResult{
		BackupID:         meta.BackupID,
		BackupName:       name,
		FilePath:         path,
		FileSize:         size,
		Compressed:       opts.Compress,
		IncludeTrialLogs: opts.IncludeTrialLogs,
		RecordsBackedUp:  total,
		CreatedAt:        meta.CreatedAt,
	}, nil
}
