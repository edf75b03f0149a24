package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/pgzip"
	"github.com/lwexler/theralog-be/internal/models"
)

// Metadata is the snapshot's self-description block.
type Metadata struct {
	BackupID      string `json:"backup_id"`
	BackupType    string `json:"backup_type"`
	CreatedAt     string `json:"created_at"`
	SchemaVersion string `json:"schema_version"`

	// TotalRecords is set on full snapshots only.
	TotalRecords *int `json:"total_records,omitempty"`

	// SinceDate and RecordsCount are set on incremental snapshots only.
	SinceDate    string                    `json:"since_date,omitempty"`
	RecordsCount map[models.EntityType]int `json:"records_count,omitempty"`
}

// document is the full snapshot file layout: a metadata block plus one
// record sequence per entity type. A snapshot file is immutable once
// written; verify and restore only ever read it.
type document struct {
	Metadata *Metadata                             `json:"metadata"`
	Data     map[models.EntityType][]models.Record `json:"data"`
}

// resolvePath locates a snapshot by absolute path, by path relative to the
// working directory, or by name inside the backup directory, in that order.
func (e *Engine) resolvePath(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	inDir := filepath.Join(e.backupDir, name)
	if _, err := os.Stat(inDir); err == nil {
		return inDir, nil
	}
	return "", fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
}

// readRaw returns the decompressed bytes of a snapshot file.
func (e *Engine) readRaw(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return data, nil
}

// readDocument parses a snapshot file and checks its top-level structure.
func (e *Engine) readDocument(path string) (*document, error) {
	raw, err := e.readRaw(path)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if doc.Metadata == nil || doc.Data == nil {
		return nil, ErrStructure
	}
	return &doc, nil
}

// writeSnapshot serializes the document to <name>.json in the backup
// directory. With compress set, the plain file is gzip-compressed to
// <name>.json.gz and removed, so exactly one file remains on disk either
// way. Partial files are cleaned up on failure.
func (e *Engine) writeSnapshot(doc *document, name string, compress bool) (string, int64, error) {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", 0, err
	}

	path := filepath.Join(e.backupDir, name+suffixJSON)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", 0, err
	}

	if compress {
		gzPath := filepath.Join(e.backupDir, name+suffixGzip)
		if err := writeGzip(gzPath, raw); err != nil {
			os.Remove(gzPath)
			os.Remove(path)
			return "", 0, err
		}
		// Remove the uncompressed intermediate.
		if err := os.Remove(path); err != nil {
			return "", 0, err
		}
		path = gzPath
	}

	fi, err := os.Stat(path)
	if err != nil {
		return "", 0, err
	}
	return path, fi.Size(), nil
}

func writeGzip(path string, raw []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	gz := pgzip.NewWriter(f)
	if _, err := gz.Write(raw); err != nil {
		gz.Close()
		f.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
