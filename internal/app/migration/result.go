// internal/app/migration/result.go
package migration

import (
	"fmt"

	"github.com/dalemusser/cityseva/internal/app/migration/idmap"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outcome is what happened to one relational row.
type Outcome int

const (
	Migrated Outcome = iota
	AlreadyMigrated
	SkippedMissingParent
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Migrated:
		return "migrated"
	case AlreadyMigrated:
		return "already_migrated"
	case SkippedMissingParent:
		return "skipped_missing_parent"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// RowResult is the result for one row. Err is a *MissingParentError for
// skips and a *WriteError for failures.
type RowResult struct {
	Kind     Kind
	LegacyID uint
	DocID    primitive.ObjectID
	Outcome  Outcome
	Err      error
}

// MissingParentError names the child row and the parent it could not resolve.
type MissingParentError struct {
	Child    Kind
	ChildID  uint
	Parent   Kind
	ParentID uint
}

func (e *MissingParentError) Error() string {
	return fmt.Sprintf("%s %d: parent %s %d was not migrated", e.Child, e.ChildID, e.Parent, e.ParentID)
}

// WriteError wraps a rejected write.
type WriteError struct {
	Kind     Kind
	LegacyID uint
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s %d: %v", e.Kind, e.LegacyID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ConnectionError means a store could not be reached. It aborts the run.
type ConnectionError struct {
	Store string
	Err   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s unreachable: %v", e.Store, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Counts are per-kind tallies. Migrated+AlreadyMigrated+Skipped+Failed == Total.
type Counts struct {
	Total           int `json:"total"`
	Migrated        int `json:"migrated"`
	AlreadyMigrated int `json:"already_migrated"`
	Skipped         int `json:"skipped"`
	Failed          int `json:"failed"`
}

// Balanced reports whether every row was accounted for exactly once.
func (c Counts) Balanced() bool {
	return c.Migrated+c.AlreadyMigrated+c.Skipped+c.Failed == c.Total
}

func (c *Counts) add(o Outcome) {
	switch o {
	case Migrated:
		c.Migrated++
	case AlreadyMigrated:
		c.AlreadyMigrated++
	case SkippedMissingParent:
		c.Skipped++
	case Failed:
		c.Failed++
	}
}

// Report summarizes a run.
type Report struct {
	RunID  string
	Order  []Kind
	Counts map[Kind]*Counts
	// Problems holds every skipped or failed row.
	Problems []RowResult
	Mapping  idmap.Snapshot
	// MappingFileErr is set when the mapping file could not be written;
	// the migrated data itself is unaffected.
	MappingFileErr error
}

func newReport(runID string, order []Kind) *Report {
	r := &Report{RunID: runID, Order: order, Counts: make(map[Kind]*Counts, len(order))}
	for _, k := range order {
		r.Counts[k] = &Counts{}
	}
	return r
}

func (r *Report) record(res RowResult) {
	c := r.Counts[res.Kind]
	c.add(res.Outcome)
	if res.Outcome == SkippedMissingParent || res.Outcome == Failed {
		r.Problems = append(r.Problems, res)
	}
}

// Balanced reports whether every kind's counts balance.
func (r *Report) Balanced() bool {
	for _, c := range r.Counts {
		if !c.Balanced() {
			return false
		}
	}
	return true
}
