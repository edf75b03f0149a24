package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/lwexler/theralog-be/internal/models"
)

// VerifyStatus classifies a snapshot's health.
type VerifyStatus string

const (
	// VerifySuccess means the snapshot is structurally sound and
	// referentially consistent.
	VerifySuccess VerifyStatus = "success"
	// VerifyWarning means the snapshot is restorable but has consistency
	// issues the operator should review first.
	VerifyWarning VerifyStatus = "warning"
	// VerifyError means the file is unusable as a snapshot.
	VerifyError VerifyStatus = "error"
)

// VerifyResult reports the outcome of a snapshot integrity check.
type VerifyResult struct {
	Status            VerifyStatus              `json:"status"`
	Error             string                    `json:"error,omitempty"`
	FilePath          string                    `json:"file_path,omitempty"`
	FileSize          int64                     `json:"file_size,omitempty"`
	StructureValid    bool                      `json:"structure_valid"`
	MetadataComplete  bool                      `json:"metadata_complete"`
	BackupType        string                    `json:"backup_type,omitempty"`
	CreatedAt         string                    `json:"created_at,omitempty"`
	DataCounts        map[models.EntityType]int `json:"data_counts,omitempty"`
	TotalRecords      int                       `json:"total_records"`
	ConsistencyIssues []string                  `json:"consistency_issues"`
	VerifiedAt        string                    `json:"verified_at"`
}

// VerifyBackup checks a snapshot file without mutating anything. Three
// independent checks are run: top-level structure (metadata and data keys
// present), metadata completeness (backup_type and created_at present), and
// referential consistency of every declared foreign key between collections
// in the snapshot. Problems are downgraded into the result classification;
// this method never fails outright.
func (e *Engine) VerifyBackup(name string) *VerifyResult {
	res := &VerifyResult{
		Status:     VerifyError,
		VerifiedAt: time.Now().UTC().Format(time.RFC3339),
	}

	path, err := e.resolvePath(name)
	if err != nil {
		res.Error = fmt.Sprintf("backup file not found: %s", name)
		return res
	}
	res.FilePath = path
	if fi, err := os.Stat(path); err == nil {
		res.FileSize = fi.Size()
	}

	raw, err := e.readRaw(path)
	if err != nil {
		res.Error = fmt.Sprintf("cannot read snapshot: %v", err)
		return res
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		res.Error = fmt.Sprintf("cannot parse snapshot: %v", err)
		return res
	}

	// Check 1: structural validity.
	var missing []string
	for _, key := range []string{"metadata", "data"} {
		if _, ok := top[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		res.Error = fmt.Sprintf("missing required keys: %v", missing)
		return res
	}
	res.StructureValid = true

	// Check 2: metadata completeness.
	var metaFields map[string]json.RawMessage
	var meta Metadata
	if err := json.Unmarshal(top["metadata"], &metaFields); err != nil {
		res.Error = fmt.Sprintf("cannot parse metadata section: %v", err)
		res.StructureValid = false
		return res
	}
	if err := json.Unmarshal(top["metadata"], &meta); err != nil {
		res.Error = fmt.Sprintf("cannot parse metadata section: %v", err)
		res.StructureValid = false
		return res
	}
	_, hasType := metaFields["backup_type"]
	_, hasCreated := metaFields["created_at"]
	res.MetadataComplete = hasType && hasCreated
	res.BackupType = meta.BackupType
	res.CreatedAt = meta.CreatedAt

	var data map[models.EntityType][]models.Record
	if err := json.Unmarshal(top["data"], &data); err != nil {
		res.Error = fmt.Sprintf("cannot parse data section: %v", err)
		res.StructureValid = false
		return res
	}

	res.DataCounts = make(map[models.EntityType]int, len(data))
	for entity, recs := range data {
		res.DataCounts[entity] = len(recs)
		res.TotalRecords += len(recs)
	}

	// Check 3: referential consistency plus the record-count invariant.
	issues := checkConsistency(data)
	issues = append(issues, checkRecordCounts(&meta, res.DataCounts, res.TotalRecords)...)
	res.ConsistencyIssues = issues

	switch {
	case len(issues) > 0 || !res.MetadataComplete:
		res.Status = VerifyWarning
	default:
		res.Status = VerifySuccess
	}
	return res
}

// checkConsistency walks every declared foreign key and reports records
// whose reference does not resolve within the snapshot. A check is skipped
// when the parent collection is absent from the snapshot entirely (an
// incremental capture may legitimately carry children whose parents are
// unchanged and live only in the store).
func checkConsistency(data map[models.EntityType][]models.Record) []string {
	var issues []string
	for _, entity := range models.Registry {
		recs, ok := data[entity.Type]
		if !ok {
			continue
		}
		for _, fk := range entity.ForeignKeys {
			parents, ok := data[fk.Parent]
			if !ok {
				continue
			}
			parentIDs := make(map[int64]bool, len(parents))
			for _, p := range parents {
				if id, ok := p.ID(); ok {
					parentIDs[id] = true
				}
			}
			for _, rec := range recs {
				id, _ := rec.ID()
				ref, ok := rec.Ref(fk.Field)
				if !ok {
					if !fk.Nullable {
						issues = append(issues, fmt.Sprintf("%s %d has no %s", entity.Type, id, fk.Field))
					}
					continue
				}
				if !parentIDs[ref] {
					issues = append(issues, fmt.Sprintf("%s %d references missing %s %d via %s", entity.Type, id, fk.Parent, ref, fk.Field))
				}
			}
		}
	}
	return issues
}

// checkRecordCounts validates that the metadata record counts match the
// actual data section lengths.
func checkRecordCounts(meta *Metadata, counts map[models.EntityType]int, total int) []string {
	var issues []string
	if meta.TotalRecords != nil && *meta.TotalRecords != total {
		issues = append(issues, fmt.Sprintf("metadata total_records is %d but data holds %d records", *meta.TotalRecords, total))
	}
	for entity, want := range meta.RecordsCount {
		if got := counts[entity]; got != want {
			issues = append(issues, fmt.Sprintf("metadata records_count for %s is %d but data holds %d records", entity, want, got))
		}
	}
	return issues
}
