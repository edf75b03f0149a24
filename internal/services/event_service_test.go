package services

import "testing"

func TestRecordAndGetRecentEvents(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)

	svc.RecordEvent("backup.create", "info", "Full backup created (3 records).")
	svc.RecordEvent("backup.restore", "warn", "Store restored from snapshot.")

	events, err := svc.GetRecentEvents(10)
	if err != nil {
		t.Fatalf("GetRecentEvents() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("GetRecentEvents() returned %d events, want 2", len(events))
	}
	for _, e := range events {
		if e.ID == "" || e.CreatedAt == "" {
			t.Errorf("event %+v missing id or timestamp", e)
		}
	}
}

func TestGetRecentEventsLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)

	for i := 0; i < 5; i++ {
		svc.RecordEvent("backup.cleanup", "info", "Backup cleanup removed 0 files (0 bytes).")
	}

	events, err := svc.GetRecentEvents(3)
	if err != nil {
		t.Fatalf("GetRecentEvents() error = %v", err)
	}
	if len(events) != 3 {
		t.Errorf("GetRecentEvents(3) returned %d events, want 3", len(events))
	}
}

func TestRecordEventSwallowsFailures(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db)
	db.Close()

	// Audit writes never fail the operation they describe.
	svc.RecordEvent("backup.create", "info", "after close")
}
