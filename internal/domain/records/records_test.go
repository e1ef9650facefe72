package records

import (
	"testing"
	"time"

	"github.com/dalemusser/cityseva/internal/domain/models"
)

func TestComplaintBeforeSave_ResolvedAt(t *testing.T) {
	stamp := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		status     string
		resolvedAt *time.Time
		wantSet    bool
		wantKept   bool
	}{
		{"resolved without stamp gets one", models.StatusResolved, nil, true, false},
		{"resolved keeps its stamp", models.StatusResolved, &stamp, true, true},
		{"pending drops stale stamp", models.StatusPending, &stamp, false, false},
		{"in progress stays clear", models.StatusInProgress, nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Complaint{Status: tt.status, ResolvedAt: tt.resolvedAt}
			if err := c.BeforeSave(nil); err != nil {
				t.Fatalf("BeforeSave: %v", err)
			}
			if (c.ResolvedAt != nil) != tt.wantSet {
				t.Fatalf("ResolvedAt set = %v, want %v", c.ResolvedAt != nil, tt.wantSet)
			}
			if tt.wantKept && !c.ResolvedAt.Equal(stamp) {
				t.Errorf("ResolvedAt = %v, want %v", c.ResolvedAt, stamp)
			}
		})
	}
}

func TestAll_ParentsFirst(t *testing.T) {
	all := All()
	if len(all) != 9 {
		t.Fatalf("expected 9 models, got %d", len(all))
	}
	if _, ok := all[0].(*User); !ok {
		t.Error("users must migrate first")
	}
	if _, ok := all[2].(*Complaint); !ok {
		t.Error("complaints must follow users and categories")
	}
}
