// Package rules loads the human-curated reconciliation rules document: the
// explicit override table consulted before geographic matching, the name
// correction table, and the orphan-report exclusion list. Keeping these in a
// YAML file (rather than compiled-in tables) means a bad match can be pinned
// down without rebuilding the tool.
package rules

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/osmtools/chargesync/pkg/errors"
	"github.com/osmtools/chargesync/pkg/normalize"
)

// DefaultThreshold is the match distance cutoff in decimal degrees used when
// the rules document does not set one. At charging-station latitudes this is
// on the order of a couple hundred meters.
const DefaultThreshold = 0.002

// Override pins down reconciliation decisions for a single vendor location,
// keyed by its external identifier. All fields are optional; unset fields
// fall through to vendor data.
type Override struct {
	// NodeID forces the match to a specific existing node, bypassing the
	// distance search entirely.
	NodeID *int64 `yaml:"node_id,omitempty"`

	// Latitude and Longitude replace the vendor GPS fix.
	Latitude  *string `yaml:"latitude,omitempty"`
	Longitude *string `yaml:"longitude,omitempty"`

	// Capacity replaces the vendor stall count.
	Capacity *string `yaml:"capacity,omitempty"`

	// Hours replaces the vendor hours string verbatim. Curated hours are
	// already in the target grammar and skip the normalizer; an explicitly
	// empty value suppresses the opening_hours tag.
	Hours *string `yaml:"hours,omitempty"`
}

// Rules is the full reconciliation rules document.
type Rules struct {
	// Threshold is the nearest-neighbor distance cutoff in decimal degrees.
	// Zero means DefaultThreshold.
	Threshold float64 `yaml:"threshold,omitempty"`

	// Overrides maps vendor external identifiers to per-field overrides.
	Overrides map[string]Override `yaml:"overrides,omitempty"`

	// Corrections maps known-incorrect computed display names to fixes.
	Corrections normalize.Corrections `yaml:"corrections,omitempty"`

	// OrphanExclusions lists node ids to suppress from the orphan report,
	// for known false positives.
	OrphanExclusions []int64 `yaml:"orphan_exclusions,omitempty"`
}

// Empty returns a usable zero-rules document.
func Empty() *Rules {
	return &Rules{
		Overrides:   make(map[string]Override),
		Corrections: make(normalize.Corrections),
	}
}

// Load reads and parses a rules document from disk.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	r := Empty()
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if r.Overrides == nil {
		r.Overrides = make(map[string]Override)
	}
	if r.Corrections == nil {
		r.Corrections = make(normalize.Corrections)
	}
	return r, nil
}

// EffectiveThreshold returns the configured threshold or the default.
func (r *Rules) EffectiveThreshold() float64 {
	if r == nil || r.Threshold == 0 {
		return DefaultThreshold
	}
	return r.Threshold
}

// Override returns the override entry for an external identifier, if any.
func (r *Rules) Override(externalID string) (Override, bool) {
	if r == nil {
		return Override{}, false
	}
	o, ok := r.Overrides[externalID]
	return o, ok
}

// ExcludesOrphan reports whether a node id is suppressed from the orphan report.
func (r *Rules) ExcludesOrphan(nodeID int64) bool {
	if r == nil {
		return false
	}
	for _, id := range r.OrphanExclusions {
		if id == nodeID {
			return true
		}
	}
	return false
}
