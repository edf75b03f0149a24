package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/lwexler/theralog-be/internal/models"
)

// memStore is an in-memory RecordStore used to exercise the engine without
// a database. Mutations are staged per transaction and only applied on
// Commit, mirroring the transactional contract the engine relies on.
type memStore struct {
	data map[models.EntityType]map[int64]models.Record

	scanErr   error
	beginErr  error
	upsertErr map[models.EntityType]error
}

func newMemStore() *memStore {
	data := make(map[models.EntityType]map[int64]models.Record, len(models.Registry))
	for _, e := range models.Registry {
		data[e.Type] = make(map[int64]models.Record)
	}
	return &memStore{
		data:      data,
		upsertErr: make(map[models.EntityType]error),
	}
}

// put seeds one record directly, bypassing transactions.
func (m *memStore) put(entity models.EntityType, rec models.Record) {
	id, ok := rec.ID()
	if !ok {
		panic(fmt.Sprintf("test record for %s has no id", entity))
	}
	m.data[entity][id] = cloneRecord(rec)
}

func (m *memStore) count(entity models.EntityType) int {
	return len(m.data[entity])
}

func (m *memStore) get(entity models.EntityType, id int64) (models.Record, bool) {
	rec, ok := m.data[entity][id]
	return rec, ok
}

func (m *memStore) ScanAll(_ context.Context, entity models.EntityType) ([]models.Record, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	return sortedRecords(m.data[entity]), nil
}

func (m *memStore) ScanSince(_ context.Context, entity models.EntityType, since time.Time) ([]models.Record, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	var out []models.Record
	for _, rec := range sortedRecords(m.data[entity]) {
		raw, _ := rec["updated_at"].(string)
		updated, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			continue
		}
		if !updated.Before(since) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) Begin(_ context.Context) (Tx, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}
	staged := make(map[models.EntityType]map[int64]models.Record, len(m.data))
	for entity, recs := range m.data {
		staged[entity] = make(map[int64]models.Record, len(recs))
		for id, rec := range recs {
			staged[entity][id] = cloneRecord(rec)
		}
	}
	return &memTx{store: m, staged: staged}, nil
}

type memTx struct {
	store  *memStore
	staged map[models.EntityType]map[int64]models.Record
	done   bool
}

func (t *memTx) Upsert(entity models.EntityType, rec models.Record) error {
	if err := t.store.upsertErr[entity]; err != nil {
		return err
	}
	id, ok := rec.ID()
	if !ok {
		return fmt.Errorf("record for %s has no id", entity)
	}
	t.staged[entity][id] = cloneRecord(rec)
	return nil
}

func (t *memTx) DeleteAll(entity models.EntityType) error {
	t.staged[entity] = make(map[int64]models.Record)
	return nil
}

func (t *memTx) Exists(entity models.EntityType, id int64) (bool, error) {
	_, ok := t.staged[entity][id]
	return ok, nil
}

func (t *memTx) Commit() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true
	t.store.data = t.staged
	return nil
}

func (t *memTx) Rollback() error {
	t.done = true
	return nil
}

func cloneRecord(rec models.Record) models.Record {
	out := make(models.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func sortedRecords(recs map[int64]models.Record) []models.Record {
	ids := make([]int64, 0, len(recs))
	for id := range recs {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	out := make([]models.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, recs[id])
	}
	return out
}
