// Package matcher decides, for one incoming vendor record, which existing
// station record (if any) represents the same physical entity. An explicit
// override table is consulted first; otherwise the nearest unclaimed
// neighbor within a distance threshold wins. A successful match claims the
// existing record so it cannot be matched twice in a run.
package matcher

import (
	"math"
	"strconv"

	"github.com/osmtools/chargesync/pkg/errors"
	"github.com/osmtools/chargesync/pkg/rules"
	"github.com/osmtools/chargesync/pkg/stations"
)

// Rule names the path by which a match was (or was not) made.
type Rule string

const (
	// RuleOverride means the override table pinned the match to a node id.
	RuleOverride Rule = "override"
	// RuleNearest means the nearest-neighbor search found a candidate.
	RuleNearest Rule = "nearest"
	// RuleNone means no existing record qualified; the record is new.
	RuleNone Rule = "none"
)

// Candidate is the slice of an incoming vendor record the matcher needs:
// its external identifier and its effective coordinates (after any override
// substitution).
type Candidate struct {
	ExternalID string
	Lat        string
	Lon        string
}

// Decision records one match outcome for the diagnostic trace.
type Decision struct {
	ExternalID string
	NodeID     int64 // matched existing node id; 0 when Rule is RuleNone
	Rule       Rule
	Distance   float64 // decimal degrees; meaningful only for RuleNearest
}

// Matcher performs override and nearest-neighbor matching with a fixed
// distance threshold.
type Matcher struct {
	threshold float64
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithThreshold sets the nearest-neighbor distance cutoff in decimal
// degrees. Candidates at exactly the threshold do not match.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

// New creates a Matcher. Without options the threshold is
// rules.DefaultThreshold.
func New(opts ...Option) *Matcher {
	m := &Matcher{threshold: rules.DefaultThreshold}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the configured distance cutoff.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match finds at most one existing record for the candidate and claims it.
//
// An override entry with a target node id always wins and bypasses the
// distance search. A stale override (target missing, or already claimed by
// an earlier incoming record) aborts the run: silently falling back to
// proximity would defeat the point of the table.
//
// Otherwise every unclaimed existing record with coordinates is scanned in
// input order; strict less-than comparisons against both the threshold and
// the running minimum make the first minimal candidate win deterministically.
func (m *Matcher) Match(c Candidate, existing []*stations.Station, r *rules.Rules) (*stations.Station, Decision, error) {
	if o, ok := r.Override(c.ExternalID); ok && o.NodeID != nil {
		target := *o.NodeID
		for _, s := range existing {
			if s.ID != target {
				continue
			}
			if s.Claimed {
				return nil, Decision{}, errors.NewValidationError(
					"overrides", c.ExternalID,
					"override target node "+strconv.FormatInt(target, 10)+" is already claimed")
			}
			s.Claimed = true
			return s, Decision{
				ExternalID: c.ExternalID,
				NodeID:     s.ID,
				Rule:       RuleOverride,
			}, nil
		}
		return nil, Decision{}, errors.NewValidationError(
			"overrides", c.ExternalID,
			"override target node "+strconv.FormatInt(target, 10)+" not found in existing records")
	}

	lat, err := strconv.ParseFloat(c.Lat, 64)
	if err != nil {
		return nil, Decision{}, errors.NewValidationError("latitude", c.Lat, "unparseable coordinate")
	}
	lon, err := strconv.ParseFloat(c.Lon, 64)
	if err != nil {
		return nil, Decision{}, errors.NewValidationError("longitude", c.Lon, "unparseable coordinate")
	}

	var closest *stations.Station
	dclosest := math.MaxFloat64
	for _, s := range existing {
		if s.Claimed || !s.HasCoordinates() {
			continue
		}
		slat, slon, err := s.Coordinates()
		if err != nil {
			return nil, Decision{}, err
		}
		latdiff := slat - lat
		londiff := slon - lon
		dist := math.Sqrt(latdiff*latdiff + londiff*londiff)
		if dist < m.threshold && dist < dclosest {
			closest = s
			dclosest = dist
		}
	}

	if closest == nil {
		return nil, Decision{ExternalID: c.ExternalID, Rule: RuleNone}, nil
	}

	closest.Claimed = true
	return closest, Decision{
		ExternalID: c.ExternalID,
		NodeID:     closest.ID,
		Rule:       RuleNearest,
		Distance:   dclosest,
	}, nil
}
