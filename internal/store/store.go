// Package store implements the snapshot engine's record-store interface on
// top of sqlite. It is fully generic over the entity schema registry: column
// lists, scan targets, and upsert arguments are all derived from the
// declared schemas, so adding an entity type never touches this package.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lwexler/theralog-be/internal/backup"
	"github.com/lwexler/theralog-be/internal/models"
)

// Store provides scan and transactional write access to the clinical
// record tables.
type Store struct {
	db *sql.DB
}

// New creates a Store over an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ScanAll returns every record of one entity type.
func (s *Store) ScanAll(ctx context.Context, entity models.EntityType) ([]models.Record, error) {
	ent, err := models.ByType(entity)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(ent.ColumnNames(), ", "), ent.Table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows, ent)
}

// ScanSince returns records of one entity type whose updated_at is on or
// after the cutoff. Timestamps are stored as ISO-8601 UTC text, so the
// comparison is a plain string compare.
func (s *Store) ScanSince(ctx context.Context, entity models.EntityType, since time.Time) ([]models.Record, error) {
	ent, err := models.ByType(entity)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE updated_at >= ? ORDER BY id", strings.Join(ent.ColumnNames(), ", "), ent.Table)
	rows, err := s.db.QueryContext(ctx, query, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows, ent)
}

// Begin opens a store transaction for a restore run.
func (s *Store) Begin(ctx context.Context) (backup.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Tx is one sqlite transaction implementing the engine's Tx interface.
type Tx struct {
	tx *sql.Tx
}

// Upsert inserts or replaces one record by primary key.
func (t *Tx) Upsert(entity models.EntityType, rec models.Record) error {
	ent, err := models.ByType(entity)
	if err != nil {
		return err
	}
	cols := ent.Columns
	names := make([]string, len(cols))
	holders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		holders[i] = "?"
		args[i] = bindValue(rec[c.Name], c.Kind)
	}
	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		ent.Table, strings.Join(names, ", "), strings.Join(holders, ", "))
	_, err = t.tx.Exec(query, args...)
	return err
}

// DeleteAll removes every row of one entity type.
func (t *Tx) DeleteAll(entity models.EntityType) error {
	ent, err := models.ByType(entity)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec("DELETE FROM " + ent.Table)
	return err
}

// Exists reports whether a row with the given primary key is present.
func (t *Tx) Exists(entity models.EntityType, id int64) (bool, error) {
	ent, err := models.ByType(entity)
	if err != nil {
		return false, err
	}
	var one int
	err = t.tx.QueryRow(fmt.Sprintf("SELECT 1 FROM %s WHERE id = ?", ent.Table), id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

func scanRecords(rows *sql.Rows, ent models.Entity) ([]models.Record, error) {
	cols := ent.Columns
	var recs []models.Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make(models.Record, len(cols))
		for i, c := range cols {
			rec[c.Name] = normalize(vals[i], c.Kind)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// normalize converts driver scan values to the record representation:
// integers as int64, text as string, booleans as bool, NULL as nil.
func normalize(v any, kind models.Kind) any {
	if v == nil {
		return nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch kind {
	case models.KindBool:
		switch n := v.(type) {
		case bool:
			return n
		case int64:
			return n != 0
		}
	case models.KindInt:
		switch n := v.(type) {
		case int64:
			return n
		case float64:
			return int64(n)
		}
	}
	return v
}

// bindValue coerces a record value (possibly fresh from a JSON decode, where
// numbers arrive as float64 and booleans as bool) into a driver-friendly
// argument.
func bindValue(v any, kind models.Kind) any {
	if v == nil {
		return nil
	}
	switch kind {
	case models.KindBool:
		switch b := v.(type) {
		case bool:
			if b {
				return int64(1)
			}
			return int64(0)
		case float64:
			return int64(b)
		case int64:
			return b
		}
	case models.KindInt:
		switch n := v.(type) {
		case float64:
			return int64(n)
		case int64:
			return n
		case int:
			return int64(n)
		}
	}
	return v
}
