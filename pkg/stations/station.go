// Package stations defines the entity record model shared by the matcher,
// merger, and the OSM loader/emitter. A Station is one physical charging
// location, either loaded from the existing database or produced by a
// reconciliation run.
package stations

import (
	"maps"
	"strconv"

	"github.com/osmtools/chargesync/pkg/errors"
)

// Station is one charging-station record.
//
// ID is the database-assigned node id for loaded records (positive) or a
// synthetic placeholder for records created within a run (negative, unique
// per run, no meaning across runs). Coordinates are kept as decimal text so
// values survive a load/emit round trip without float formatting drift; they
// are parsed only for distance computation.
type Station struct {
	ID       int64
	Revision int
	Lat      string
	Lon      string
	Tags     map[string]string

	// PriorTags, PriorLat and PriorLon snapshot the record as it was before
	// the current merge. They feed the audit annotations in the output
	// document and are excluded from equality.
	PriorTags map[string]string
	PriorLat  string
	PriorLon  string

	// Claimed is set once an incoming record has matched this one. Records
	// left unclaimed after a run are orphan candidates.
	Claimed bool
}

// New returns a Station with an initialized tag map.
func New(id int64) *Station {
	return &Station{
		ID:   id,
		Tags: make(map[string]string),
	}
}

// Clone returns a deep copy of the station with audit and claim state reset.
// The copy is the working record for a merge; the original keeps its claim.
func (s *Station) Clone() *Station {
	c := &Station{
		ID:       s.ID,
		Revision: s.Revision,
		Lat:      s.Lat,
		Lon:      s.Lon,
		Tags:     make(map[string]string, len(s.Tags)),
	}
	maps.Copy(c.Tags, s.Tags)
	return c
}

// Equal reports whether two stations represent the same record state.
// Only id, revision, coordinates and tags participate; the audit snapshots
// and the claim flag do not.
func (s *Station) Equal(o *Station) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.ID == o.ID &&
		s.Revision == o.Revision &&
		s.Lat == o.Lat &&
		s.Lon == o.Lon &&
		maps.Equal(s.Tags, o.Tags)
}

// HasCoordinates reports whether both coordinate fields are non-empty.
func (s *Station) HasCoordinates() bool {
	return s.Lat != "" && s.Lon != ""
}

// Coordinates parses the coordinate text into floating point for distance
// computation. A malformed coordinate is fatal to the run.
func (s *Station) Coordinates() (lat, lon float64, err error) {
	lat, err = strconv.ParseFloat(s.Lat, 64)
	if err != nil {
		return 0, 0, errors.NewValidationError("lat", s.Lat,
			"node "+strconv.FormatInt(s.ID, 10)+" has unparseable latitude")
	}
	lon, err = strconv.ParseFloat(s.Lon, 64)
	if err != nil {
		return 0, 0, errors.NewValidationError("lon", s.Lon,
			"node "+strconv.FormatInt(s.ID, 10)+" has unparseable longitude")
	}
	return lat, lon, nil
}

// Tag returns the value of a tag, or "" when unset.
func (s *Station) Tag(key string) string {
	return s.Tags[key]
}

// SetTag sets a tag value, allocating the map if needed.
func (s *Station) SetTag(key, value string) {
	if s.Tags == nil {
		s.Tags = make(map[string]string)
	}
	s.Tags[key] = value
}
