package reconciler

import (
	"fmt"

	"github.com/osmtools/chargesync/pkg/matcher"
	"github.com/osmtools/chargesync/pkg/stations"
)

// Summary carries run statistics.
type Summary struct {
	Processed int // incoming records seen, including skipped ones
	Skipped   int // not OPEN
	Created   int // emitted with a synthetic id
	Updated   int // emitted with an inherited id
	Unchanged int // merged but identical, discarded
	Orphans   int // existing records left unclaimed (after exclusions)
}

// Result is the outcome of one reconciliation run.
type Result struct {
	// Emitted holds every changed or created record, in input order.
	// Unchanged merges are never included.
	Emitted []*stations.Station

	// Orphans lists existing records no incoming record claimed, minus the
	// configured exclusions. Candidates for removal; a human decides.
	Orphans []*stations.Station

	// Decisions is the match trace, one entry per reconciled record.
	Decisions []matcher.Decision

	Summary Summary
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{}
}

// HasChanges reports whether anything needs to be uploaded.
func (r *Result) HasChanges() bool {
	return len(r.Emitted) > 0
}

// String returns a one-line human-readable summary.
func (s Summary) String() string {
	return fmt.Sprintf("processed %d (skipped %d): %d created, %d updated, %d unchanged; %d orphans",
		s.Processed, s.Skipped, s.Created, s.Updated, s.Unchanged, s.Orphans)
}
