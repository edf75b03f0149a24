package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lwexler/theralog-be/internal/models"
)

func writeRawSnapshot(t *testing.T, engine *Engine, name, content string) string {
	t.Helper()
	path := filepath.Join(engine.backupDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVerifyBackupSuccess(t *testing.T) {
	engine, store := newTestEngine(t)
	store.put(models.EntityStudents, testStudent(7, "Ada", testUpdatedAt))
	store.put(models.EntityGoals, testGoal(3, 7, testUpdatedAt))

	created, err := engine.CreateFullBackup(context.Background(), FullBackupOptions{IncludeTrialLogs: true})
	if err != nil {
		t.Fatal(err)
	}

	result := engine.VerifyBackup(created.FilePath)
	if result.Status != VerifySuccess {
		t.Fatalf("Status = %q, want success (issues: %v, error: %s)", result.Status, result.ConsistencyIssues, result.Error)
	}
	if !result.StructureValid || !result.MetadataComplete {
		t.Errorf("StructureValid = %v, MetadataComplete = %v, want both true", result.StructureValid, result.MetadataComplete)
	}
	if result.BackupType != "full" {
		t.Errorf("BackupType = %q, want full", result.BackupType)
	}
	if result.TotalRecords != 2 {
		t.Errorf("TotalRecords = %d, want 2", result.TotalRecords)
	}
	if got := result.DataCounts[models.EntityGoals]; got != 1 {
		t.Errorf("DataCounts[goals] = %d, want 1", got)
	}
}

func TestVerifyBackupCompressed(t *testing.T) {
	engine, store := newTestEngine(t)
	store.put(models.EntityStudents, testStudent(7, "Ada", testUpdatedAt))

	created, err := engine.CreateFullBackup(context.Background(), FullBackupOptions{Compress: true, IncludeTrialLogs: true})
	if err != nil {
		t.Fatal(err)
	}

	result := engine.VerifyBackup(created.FilePath)
	if result.Status != VerifySuccess {
		t.Errorf("Status = %q, want success for a compressed snapshot", result.Status)
	}
	if result.TotalRecords != 1 {
		t.Errorf("TotalRecords = %d, want 1", result.TotalRecords)
	}
}

func TestVerifyBackupMissingFile(t *testing.T) {
	engine, _ := newTestEngine(t)

	result := engine.VerifyBackup("no_such_backup.json")
	if result.Status != VerifyError {
		t.Errorf("Status = %q, want error", result.Status)
	}
	if result.Error == "" {
		t.Error("Error is empty for a missing file")
	}
}

func TestVerifyBackupInvalidJSON(t *testing.T) {
	engine, _ := newTestEngine(t)
	path := writeRawSnapshot(t, engine, "full_backup_20240101_000000.json", "{broken")

	result := engine.VerifyBackup(path)
	if result.Status != VerifyError {
		t.Errorf("Status = %q, want error", result.Status)
	}
	if result.StructureValid {
		t.Error("StructureValid = true for unparseable JSON")
	}
}

func TestVerifyBackupMissingDataKey(t *testing.T) {
	engine, _ := newTestEngine(t)
	path := writeRawSnapshot(t, engine, "full_backup_20240101_000000.json",
		`{"metadata": {"backup_type": "full", "created_at": "2024-01-01T00:00:00Z"}}`)

	result := engine.VerifyBackup(path)
	if result.Status != VerifyError {
		t.Errorf("Status = %q, want error", result.Status)
	}
	if !strings.Contains(result.Error, "data") {
		t.Errorf("Error = %q, want it to name the missing data key", result.Error)
	}
}

func TestVerifyBackupIncompleteMetadata(t *testing.T) {
	engine, _ := newTestEngine(t)
	path := writeRawSnapshot(t, engine, "full_backup_20240101_000000.json",
		`{"metadata": {"backup_type": "full"}, "data": {"students": []}}`)

	result := engine.VerifyBackup(path)
	if result.Status != VerifyWarning {
		t.Errorf("Status = %q, want warning for incomplete metadata", result.Status)
	}
	if result.MetadataComplete {
		t.Error("MetadataComplete = true without created_at")
	}
	if !result.StructureValid {
		t.Error("StructureValid = false; both top-level keys are present")
	}
}

func TestVerifyBackupDanglingReference(t *testing.T) {
	engine, _ := newTestEngine(t)
	path := writeRawSnapshot(t, engine, "full_backup_20240101_000000.json",
		`{
			"metadata": {"backup_type": "full", "created_at": "2024-01-01T00:00:00Z"},
			"data": {
				"students": [],
				"goals": [{"id": 3, "student_id": 7}]
			}
		}`)

	result := engine.VerifyBackup(path)
	if result.Status != VerifyWarning {
		t.Fatalf("Status = %q, want warning", result.Status)
	}
	if len(result.ConsistencyIssues) != 1 {
		t.Fatalf("ConsistencyIssues = %v, want exactly one", result.ConsistencyIssues)
	}
	issue := result.ConsistencyIssues[0]
	if !strings.Contains(issue, "goals 3") || !strings.Contains(issue, "students 7") {
		t.Errorf("issue %q does not name the dangling goal and its missing student", issue)
	}
}

func TestVerifyBackupAbsentParentCollection(t *testing.T) {
	engine, _ := newTestEngine(t)
	// An incremental snapshot may carry goals whose students are unchanged
	// and therefore absent; that is not an inconsistency.
	path := writeRawSnapshot(t, engine, "incremental_backup_20240101_20240102_000000.json",
		`{
			"metadata": {"backup_type": "incremental", "created_at": "2024-01-02T00:00:00Z"},
			"data": {"goals": [{"id": 3, "student_id": 7}]}
		}`)

	result := engine.VerifyBackup(path)
	if result.Status != VerifySuccess {
		t.Errorf("Status = %q, want success (issues: %v)", result.Status, result.ConsistencyIssues)
	}
}

func TestVerifyBackupNullableReference(t *testing.T) {
	engine, _ := newTestEngine(t)
	path := writeRawSnapshot(t, engine, "full_backup_20240101_000000.json",
		`{
			"metadata": {"backup_type": "full", "created_at": "2024-01-01T00:00:00Z"},
			"data": {
				"students": [{"id": 7}],
				"objectives": [],
				"trial_logs": [{"id": 11, "student_id": 7, "objective_id": null}]
			}
		}`)

	result := engine.VerifyBackup(path)
	if result.Status != VerifySuccess {
		t.Errorf("Status = %q, want success; a null nullable reference is fine (issues: %v)", result.Status, result.ConsistencyIssues)
	}
}

func TestVerifyBackupMissingRequiredReference(t *testing.T) {
	engine, _ := newTestEngine(t)
	path := writeRawSnapshot(t, engine, "full_backup_20240101_000000.json",
		`{
			"metadata": {"backup_type": "full", "created_at": "2024-01-01T00:00:00Z"},
			"data": {
				"students": [{"id": 7}],
				"goals": [{"id": 3}]
			}
		}`)

	result := engine.VerifyBackup(path)
	if result.Status != VerifyWarning {
		t.Fatalf("Status = %q, want warning", result.Status)
	}
	found := false
	for _, issue := range result.ConsistencyIssues {
		if strings.Contains(issue, "goals 3") && strings.Contains(issue, "has no student_id") {
			found = true
		}
	}
	if !found {
		t.Errorf("issues %v do not flag the goal without a student_id", result.ConsistencyIssues)
	}
}

func TestVerifyBackupCountMismatch(t *testing.T) {
	engine, _ := newTestEngine(t)
	path := writeRawSnapshot(t, engine, "full_backup_20240101_000000.json",
		`{
			"metadata": {"backup_type": "full", "created_at": "2024-01-01T00:00:00Z", "total_records": 5},
			"data": {"students": [{"id": 7}]}
		}`)

	result := engine.VerifyBackup(path)
	if result.Status != VerifyWarning {
		t.Fatalf("Status = %q, want warning", result.Status)
	}
	found := false
	for _, issue := range result.ConsistencyIssues {
		if strings.Contains(issue, "total_records") {
			found = true
		}
	}
	if !found {
		t.Errorf("issues %v do not flag the total_records mismatch", result.ConsistencyIssues)
	}
}
