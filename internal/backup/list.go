package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// BackupInfo describes one snapshot file in the backup directory. Metadata
// is best effort: it is nil when the file cannot be parsed, but the file
// still appears in the listing with its filesystem attributes.
type BackupInfo struct {
	Filename   string    `json:"filename"`
	FilePath   string    `json:"file_path"`
	SizeBytes  int64     `json:"size_bytes"`
	Created    time.Time `json:"created"`
	Modified   time.Time `json:"modified"`
	Compressed bool      `json:"compressed"`
	Metadata   *Metadata `json:"metadata,omitempty"`
}

// DeletedFile describes one snapshot removed by cleanup.
type DeletedFile struct {
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	Created   time.Time `json:"created"`
}

// CleanupResult reports the outcome of a retention run.
type CleanupResult struct {
	FilesDeleted int           `json:"files_deleted"`
	FilesKept    int           `json:"files_kept"`
	SpaceFreed   int64         `json:"space_freed"`
	DeletedFiles []DeletedFile `json:"deleted_files"`
	CleanedAt    string        `json:"cleaned_at"`
}

// ListBackups scans the backup directory for snapshot files, compressed or
// not, and returns them newest first. Snapshot files are written once and
// never modified, so the modification time doubles as the creation time.
func (e *Engine) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(e.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, suffixJSON) && !strings.HasSuffix(name, suffixGzip) {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(e.backupDir, name)

		info := BackupInfo{
			Filename:   name,
			FilePath:   path,
			SizeBytes:  fi.Size(),
			Created:    fi.ModTime(),
			Modified:   fi.ModTime(),
			Compressed: strings.HasSuffix(name, suffixGzip),
		}
		// Best effort: a corrupt file still shows up in the listing.
		if doc, err := e.readDocument(path); err == nil {
			info.Metadata = doc.Metadata
		}
		backups = append(backups, info)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Created.After(backups[j].Created)
	})
	return backups, nil
}

// CleanupOldBackups applies the retention policy: the newest keepMinimum
// snapshots are always retained regardless of age, and of the remainder only
// those older than keepDays are deleted. A file younger than the cutoff is
// never removed, even outside the keep-minimum window.
func (e *Engine) CleanupOldBackups(keepDays, keepMinimum int) (*CleanupResult, error) {
	if keepMinimum < 0 {
		keepMinimum = 0
	}
	backups, err := e.ListBackups()
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -keepDays)

	candidates := backups
	if len(candidates) > keepMinimum {
		candidates = candidates[keepMinimum:]
	} else {
		candidates = nil
	}

	var deleted []DeletedFile
	var freed int64
	for _, b := range candidates {
		if !b.Created.Before(cutoff) {
			continue
		}
		if err := os.Remove(b.FilePath); err != nil {
			log.Warn().Err(err).Str("file", b.FilePath).Msg("Failed to delete old backup")
			continue
		}
		deleted = append(deleted, DeletedFile{
			Filename:  b.Filename,
			SizeBytes: b.SizeBytes,
			Created:   b.Created,
		})
		freed += b.SizeBytes
	}

	result := &CleanupResult{
		FilesDeleted: len(deleted),
		FilesKept:    len(backups) - len(deleted),
		SpaceFreed:   freed,
		DeletedFiles: deleted,
		CleanedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	log.Info().
		Int("deleted", result.FilesDeleted).
		Int("kept", result.FilesKept).
		Int64("freed", result.SpaceFreed).
		Msg("Backup cleanup finished")
	e.recordEvent("backup.cleanup", "info", fmt.Sprintf("Backup cleanup removed %d files (%d bytes).", result.FilesDeleted, result.SpaceFreed))

	return result, nil
}
