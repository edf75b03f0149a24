// Package models declares the clinical entity schemas: one descriptor per
// entity type carrying its table name, column schema, and foreign-key
// dependencies. Everything that needs to walk entities in a safe order
// (snapshot restore, table wipes) derives it from the declared dependency
// graph instead of maintaining a hand-written sequence.
package models

import "fmt"

// EntityType names one entity collection, matching both the database table
// name and the key used in snapshot files.
type EntityType string

const (
	EntityUsers      EntityType = "users"
	EntityStudents   EntityType = "students"
	EntityGoals      EntityType = "goals"
	EntityObjectives EntityType = "objectives"
	EntitySessions   EntityType = "sessions"
	EntityTrialLogs  EntityType = "trial_logs"
	EntitySOAPNotes  EntityType = "soap_notes"
)

// Kind is the storage class of a column.
type Kind int

const (
	KindInt Kind = iota
	KindText
	KindBool
)

// Column describes one field of an entity's serialization contract.
type Column struct {
	Name string
	Kind Kind
}

// ForeignKey declares that a field references the primary key of a parent
// entity. Nullable references may legitimately be absent.
type ForeignKey struct {
	Field    string
	Parent   EntityType
	Nullable bool
}

// Entity is the schema descriptor for one entity type.
type Entity struct {
	Type        EntityType
	Table       string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// ColumnNames returns the column names in declaration order.
func (e Entity) ColumnNames() []string {
	names := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		names[i] = c.Name
	}
	return names
}

// ByType looks up an entity descriptor.
func ByType(t EntityType) (Entity, error) {
	for _, e := range Registry {
		if e.Type == t {
			return e, nil
		}
	}
	return Entity{}, fmt.Errorf("unknown entity type %q", t)
}

// InsertOrder returns all entity types sorted parent-before-child, derived
// from the declared foreign keys. Ties keep registry declaration order so the
// result is deterministic.
func InsertOrder() []EntityType {
	remaining := make([]Entity, len(Registry))
	copy(remaining, Registry)

	placed := make(map[EntityType]bool, len(Registry))
	order := make([]EntityType, 0, len(Registry))

	for len(remaining) > 0 {
		progressed := false
		next := remaining[:0]
		for _, e := range remaining {
			ready := true
			for _, fk := range e.ForeignKeys {
				// Self-references cannot gate placement.
				if fk.Parent != e.Type && !placed[fk.Parent] {
					ready = false
					break
				}
			}
			if ready {
				order = append(order, e.Type)
				placed[e.Type] = true
				progressed = true
			} else {
				next = append(next, e)
			}
		}
		if !progressed {
			// A cycle in the declared graph is a programming error.
			panic("models: entity dependency graph contains a cycle")
		}
		remaining = next
	}
	return order
}

// DeleteOrder returns all entity types sorted child-before-parent, the mirror
// of InsertOrder, so deletions never violate foreign-key constraints.
func DeleteOrder() []EntityType {
	ins := InsertOrder()
	out := make([]EntityType, len(ins))
	for i, t := range ins {
		out[len(ins)-1-i] = t
	}
	return out
}
