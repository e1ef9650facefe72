// internal/app/migration/idmap/idmap.go
//
// Package idmap keeps the relational-ID → document-ID cross reference that
// the migration fills in as parents are written.
package idmap

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind names a mapping table.
type Kind string

const (
	Users      Kind = "users"
	Categories Kind = "categories"
	Complaints Kind = "complaints"
)

// Kinds lists the mapped entity types. Only these are referenced by other
// entities' foreign keys in a way that needs remapping.
var Kinds = []Kind{Users, Categories, Complaints}

// Snapshot is the mapping file shape: kind → relational ID → document ID hex.
type Snapshot map[string]map[string]string

// Mapper is not safe for concurrent use; the migration is sequential.
type Mapper struct {
	tables map[Kind]map[uint]primitive.ObjectID
}

func New() *Mapper {
	m := &Mapper{tables: make(map[Kind]map[uint]primitive.ObjectID, len(Kinds))}
	for _, k := range Kinds {
		m.tables[k] = make(map[uint]primitive.ObjectID)
	}
	return m
}

// Tracks reports whether k has a mapping table.
func (m *Mapper) Tracks(k Kind) bool {
	_, ok := m.tables[k]
	return ok
}

// Lookup returns the document ID for relID, if migrated.
func (m *Mapper) Lookup(k Kind, relID uint) (primitive.ObjectID, bool) {
	id, ok := m.tables[k][relID]
	return id, ok
}

// Put records relID → docID. An existing entry is never replaced: Put
// returns the ID already stored and false in that case. Untracked kinds are
// ignored.
func (m *Mapper) Put(k Kind, relID uint, docID primitive.ObjectID) (primitive.ObjectID, bool) {
	t, ok := m.tables[k]
	if !ok {
		return docID, false
	}
	if prev, exists := t[relID]; exists {
		return prev, false
	}
	t[relID] = docID
	return docID, true
}

// Len is the number of entries for k.
func (m *Mapper) Len(k Kind) int {
	return len(m.tables[k])
}

// Snapshot copies the tables into the mapping file shape. Every kind is
// present, even when empty.
func (m *Mapper) Snapshot() Snapshot {
	out := make(Snapshot, len(Kinds))
	for _, k := range Kinds {
		t := make(map[string]string, len(m.tables[k]))
		for rel, doc := range m.tables[k] {
			t[strconv.FormatUint(uint64(rel), 10)] = doc.Hex()
		}
		out[string(k)] = t
	}
	return out
}
