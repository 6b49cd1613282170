// Package reconciler is the record-reconciliation engine. For each open
// vendor location it finds the existing station that represents the same
// entity (override table first, nearest neighbor second), merges vendor data
// into it under field-level precedence rules, and keeps the result only when
// something actually changed. Existing records no incoming record claimed
// are reported as orphans for human review; nothing is ever auto-deleted.
package reconciler

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/osmtools/chargesync/pkg/errors"
	"github.com/osmtools/chargesync/pkg/matcher"
	"github.com/osmtools/chargesync/pkg/rules"
	"github.com/osmtools/chargesync/pkg/stations"
)

// Incoming is one vendor snapshot record, already flattened by the loader.
type Incoming struct {
	ExternalID string
	Status     string
	Name       string
	Hours      *string // nil when the feed omitted the field
	StallCount string
	Lat        string
	Lon        string
	City       string
	Zip        string
	Country    string
	State      string
}

// open reports whether the record should be reconciled at all.
func (in *Incoming) open() bool {
	return strings.EqualFold(in.Status, "OPEN")
}

// hoursOrDefault defaults a missing hours field to round-the-clock service.
// An explicitly empty string stays empty and suppresses the tag.
func (in *Incoming) hoursOrDefault() string {
	if in.Hours == nil {
		return "24/7"
	}
	return *in.Hours
}

// Reconciler runs a full reconciliation pass over in-memory records.
type Reconciler interface {
	// Run processes incoming records strictly in input order. Existing
	// records are claimed as they are matched; the first error aborts the
	// whole run with no partial result.
	Run(existing []*stations.Station, incoming []Incoming) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	rules     *rules.Rules
	matcher   *matcher.Matcher
	merger    *merger
	allocator *stations.Allocator
	logger    *zerolog.Logger
}

// New creates a Reconciler with options.
func New(opts ...Option) (Reconciler, error) {
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	threshold := options.threshold
	if threshold == 0 {
		threshold = options.rules.EffectiveThreshold()
	}

	return &reconciler{
		rules:     options.rules,
		matcher:   matcher.New(matcher.WithThreshold(threshold)),
		merger:    newMerger(options.rules.Corrections),
		allocator: options.allocator,
		logger:    options.logger,
	}, nil
}

// effective holds per-record values after override resolution: overrides are
// partial, so each field falls through to vendor data when unset.
type effective struct {
	lat      string
	lon      string
	capacity string
	hours    string
	// curated marks hours supplied by an override; curated hours are
	// already in the target grammar and skip the normalizer.
	curated bool
}

// resolve applies the override table on top of the vendor record.
func (r *reconciler) resolve(in *Incoming) effective {
	eff := effective{
		lat:      in.Lat,
		lon:      in.Lon,
		capacity: in.StallCount,
		hours:    in.hoursOrDefault(),
	}
	o, ok := r.rules.Override(in.ExternalID)
	if !ok {
		return eff
	}
	if o.Latitude != nil {
		eff.lat = *o.Latitude
	}
	if o.Longitude != nil {
		eff.lon = *o.Longitude
	}
	if o.Capacity != nil {
		eff.capacity = *o.Capacity
	}
	if o.Hours != nil {
		eff.hours = *o.Hours
		eff.curated = true
	}
	return eff
}

// Run implements Reconciler.
func (r *reconciler) Run(existing []*stations.Station, incoming []Incoming) (*Result, error) {
	result := NewResult()

	for i := range incoming {
		in := &incoming[i]
		result.Summary.Processed++

		if !in.open() {
			result.Summary.Skipped++
			r.logger.Debug().
				Str("external_id", in.ExternalID).
				Str("status", in.Status).
				Msg("Skipping location that is not open")
			continue
		}

		eff := r.resolve(in)

		candidate := matcher.Candidate{
			ExternalID: in.ExternalID,
			Lat:        eff.lat,
			Lon:        eff.lon,
		}
		matched, decision, err := r.matcher.Match(candidate, existing, r.rules)
		if err != nil {
			return nil, errors.WrapRecord(in.ExternalID, err)
		}
		result.Decisions = append(result.Decisions, decision)
		r.logDecision(decision)

		var work *stations.Station
		if matched != nil {
			work = matched.Clone()
		} else {
			work = stations.New(r.allocator.Next())
		}

		merged, changed := r.merger.merge(work, in, eff)
		if !changed {
			result.Summary.Unchanged++
			r.logger.Debug().
				Str("external_id", in.ExternalID).
				Int64("node_id", merged.ID).
				Msg("Merge produced no change; discarding")
			continue
		}

		result.Emitted = append(result.Emitted, merged)
		if merged.ID < 0 {
			result.Summary.Created++
		} else {
			result.Summary.Updated++
		}
	}

	for _, s := range existing {
		if s.Claimed || r.rules.ExcludesOrphan(s.ID) {
			continue
		}
		result.Orphans = append(result.Orphans, s)
		r.logger.Warn().
			Int64("node_id", s.ID).
			Str("name", s.Tag(TagName)).
			Msg("Existing node unclaimed by vendor feed; review for removal")
	}
	result.Summary.Orphans = len(result.Orphans)

	return result, nil
}

// logDecision emits one line of the match-decision trace.
func (r *reconciler) logDecision(d matcher.Decision) {
	switch d.Rule {
	case matcher.RuleOverride:
		r.logger.Info().
			Str("external_id", d.ExternalID).
			Int64("node_id", d.NodeID).
			Msg("Matched by override")
	case matcher.RuleNearest:
		r.logger.Info().
			Str("external_id", d.ExternalID).
			Int64("node_id", d.NodeID).
			Float64("distance", d.Distance).
			Msg("Matched by proximity")
	case matcher.RuleNone:
		r.logger.Info().
			Str("external_id", d.ExternalID).
			Msg("No existing node; creating")
	}
}
