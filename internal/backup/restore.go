package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/lwexler/theralog-be/internal/models"
	"github.com/rs/zerolog/log"
)

// RestoreResult reports the outcome of a restore run.
type RestoreResult struct {
	BackupFile     string                    `json:"backup_file"`
	Mode           RestoreMode               `json:"restore_mode"`
	RestoredCounts map[models.EntityType]int `json:"restored_counts"`
	TotalRestored  int                       `json:"total_restored"`
	RestoredAt     string                    `json:"restored_at"`
}

// RestoreBackup loads a snapshot into the record store under the given
// conflict policy. The entire run — replace-mode deletions and all inserts —
// executes inside one store transaction: any failure rolls everything back,
// so no partial restore is ever observable.
//
// Replace mode deletes existing rows child-before-parent, derived from the
// entity dependency graph. User accounts are never deleted, so a restore can
// not lock every operator out. Insertion runs parent-before-child and
// upserts by primary key, which also makes a repeated restore of the same
// snapshot idempotent. Skip mode leaves records with an already-present
// primary key untouched and does not count them as restored.
func (e *Engine) RestoreBackup(ctx context.Context, name string, mode RestoreMode) (*RestoreResult, error) {
	if mode != ModeReplace && mode != ModeSkip {
		return nil, fmt.Errorf("%w: %q", ErrBadRestoreMode, mode)
	}

	path, err := e.resolvePath(name)
	if err != nil {
		return nil, err
	}
	doc, err := e.readDocument(path)
	if err != nil {
		return nil, err
	}

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrStore, err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Msg("Restore rollback failed")
			}
		}
	}()

	if mode == ModeReplace {
		log.Warn().Str("file", path).Msg("Replace mode: deleting existing records")
		for _, entity := range models.DeleteOrder() {
			if entity == models.EntityUsers {
				continue
			}
			if err := tx.DeleteAll(entity); err != nil {
				e.recordEvent("backup.restore.fail", "error", fmt.Sprintf("Restore of %s failed clearing %s: %v.", name, entity, err))
				return nil, fmt.Errorf("%w: clearing %s: %v", ErrStore, entity, err)
			}
		}
	}

	counts := make(map[models.EntityType]int, len(models.Registry))
	total := 0
	for _, entity := range models.InsertOrder() {
		restored, err := restoreCollection(tx, entity, doc.Data[entity], mode)
		if err != nil {
			e.recordEvent("backup.restore.fail", "error", fmt.Sprintf("Restore of %s failed on %s: %v.", name, entity, err))
			return nil, err
		}
		counts[entity] = restored
		total += restored
	}

	if err := tx.Commit(); err != nil {
		e.recordEvent("backup.restore.fail", "error", fmt.Sprintf("Restore of %s failed to commit: %v.", name, err))
		return nil, fmt.Errorf("%w: commit: %v", ErrStore, err)
	}
	committed = true

	log.Info().
		Str("file", path).
		Str("mode", string(mode)).
		Int("records", total).
		Msg("Backup restored")
	e.recordEvent("backup.restore", "warn", fmt.Sprintf("Store restored from %s in %s mode (%d records).", name, mode, total))

	return &RestoreResult{
		BackupFile:     path,
		Mode:           mode,
		RestoredCounts: counts,
		TotalRestored:  total,
		RestoredAt:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func restoreCollection(tx Tx, entity models.EntityType, recs []models.Record, mode RestoreMode) (int, error) {
	restored := 0
	for _, rec := range recs {
		id, ok := rec.ID()
		if !ok {
			return 0, fmt.Errorf("%w: %s record without an id", ErrParse, entity)
		}
		if mode == ModeSkip {
			exists, err := tx.Exists(entity, id)
			if err != nil {
				return 0, fmt.Errorf("%w: checking %s %d: %v", ErrStore, entity, id, err)
			}
			if exists {
				continue
			}
		}
		if err := tx.Upsert(entity, rec); err != nil {
			return 0, fmt.Errorf("%w: upserting %s %d: %v", ErrStore, entity, id, err)
		}
		restored++
	}
	return restored, nil
}
