package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lwexler/theralog-be/internal/models"
	"github.com/rs/zerolog/log"
)

// CreateIncrementalBackup captures records modified on or after the since
// date into a snapshot named incremental_backup_<since>_<timestamp>. User
// accounts are not part of incremental scope; only mutable clinical data is
// captured. A future since date is accepted and simply yields an empty set.
func (e *Engine) CreateIncrementalBackup(ctx context.Context, since time.Time, compress bool) (*BackupResult, error) {
	now := time.Now()
	name := fmt.Sprintf("%s%s_%s", incrementalPrefix, since.Format(sinceLayout), now.Format(timestampLayout))

	data := make(map[models.EntityType][]models.Record, len(models.Registry))
	counts := make(map[models.EntityType]int, len(models.Registry))
	total := 0
	for _, entity := range models.InsertOrder() {
		if entity == models.EntityUsers {
			continue
		}
		recs, err := e.store.ScanSince(ctx, entity, since)
		if err != nil {
			e.recordEvent("backup.create.fail", "error", fmt.Sprintf("Incremental backup failed scanning %s: %v.", entity, err))
			return nil, fmt.Errorf("%w: scanning %s: %v", ErrStore, entity, err)
		}
		if recs == nil {
			recs = []models.Record{}
		}
		data[entity] = recs
		counts[entity] = len(recs)
		total += len(recs)
	}

	meta := &Metadata{
		BackupID:      uuid.New().String(),
		BackupType:    "incremental",
		CreatedAt:     now.UTC().Format(time.RFC3339),
		SchemaVersion: SchemaVersion,
		SinceDate:     since.Format("2006-01-02"),
		RecordsCount:  counts,
	}

	path, size, err := e.writeSnapshot(&document{Metadata: meta, Data: data}, name, compress)
	if err != nil {
		e.recordEvent("backup.create.fail", "error", fmt.Sprintf("Incremental backup failed writing snapshot: %v.", err))
		return nil, fmt.Errorf("writing snapshot: %w", err)
	}

	log.Info().
		Str("file", path).
		Str("since", meta.SinceDate).
		Int("records", total).
		Msg("Incremental backup created")
	e.recordEvent("backup.create", "info", fmt.Sprintf("Incremental backup %s created (%d modified records).", name, total))

	return &BackupResult{
		BackupID:        meta.BackupID,
		BackupName:      name,
		FilePath:        path,
		FileSize:        size,
		Compressed:      compress,
		RecordsBackedUp: total,
		SinceDate:       meta.SinceDate,
		CreatedAt:       meta.CreatedAt,
	}, nil
}
