package reconciler

import (
	"maps"

	"github.com/osmtools/chargesync/pkg/normalize"
	"github.com/osmtools/chargesync/pkg/stations"
)

// Tag keys and vendor-authoritative values written by the merger.
const (
	TagOpeningHours = "opening_hours"
	TagSocket       = "socket:tesla_supercharger"
	TagCapacity     = "capacity"
	TagOperator     = "operator"
	TagAmenity      = "amenity"
	TagName         = "name"
	TagCity         = "addr:city"
	TagPostcode     = "addr:postcode"

	// OperatorName tags who runs the stations this tool reconciles.
	OperatorName = "Tesla Motors Inc."
	// AmenityValue is the OSM amenity class for charging stations.
	AmenityValue = "charging_station"
	// NamePrefix is prepended to the vendor's location name.
	NamePrefix = "Tesla Supercharger "
)

// merger combines an incoming record with its matched (or synthesized)
// station under the field precedence rules.
type merger struct {
	corrections normalize.Corrections
}

func newMerger(corrections normalize.Corrections) *merger {
	return &merger{corrections: corrections}
}

// merge mutates work, which must be a fresh clone (or a fresh synthetic
// record) that nothing else holds, and reports whether the merge changed it.
//
// Precedence: existing coordinates win over vendor GPS; address tags are
// filled only when empty; the vendor-derived tags (opening hours, socket,
// capacity, operator, amenity, name) are always overwritten. Prior values
// are snapshotted first so the emitter can annotate what changed. When
// nothing changed the caller discards the record without a revision bump.
func (m *merger) merge(work *stations.Station, in *Incoming, eff effective) (*stations.Station, bool) {
	before := work.Clone()

	work.PriorTags = make(map[string]string, len(work.Tags))
	maps.Copy(work.PriorTags, work.Tags)
	// A record with blank coordinates has no prior position worth noting.
	if work.HasCoordinates() {
		work.PriorLat = work.Lat
		work.PriorLon = work.Lon
	}

	// Manually surveyed coordinates are trusted over the vendor GPS feed
	// once present.
	if work.Lat == "" {
		work.Lat = eff.lat
	}
	if work.Lon == "" {
		work.Lon = eff.lon
	}

	hours := eff.hours
	if !eff.curated {
		hours = normalize.OpeningHours(hours)
	}
	if hours != "" {
		work.SetTag(TagOpeningHours, hours)
	}
	work.SetTag(TagSocket, eff.capacity)
	work.SetTag(TagCapacity, eff.capacity)
	work.SetTag(TagOperator, OperatorName)
	work.SetTag(TagAmenity, AmenityValue)

	// Manual address annotations win; fill only what is empty.
	if work.Tag(TagCity) == "" && in.City != "" {
		work.SetTag(TagCity, in.City)
	}
	if work.Tag(TagPostcode) == "" && in.Zip != "" {
		work.SetTag(TagPostcode, in.Zip)
	}

	work.SetTag(TagName, m.displayName(work, in))

	if work.Equal(before) {
		return work, false
	}
	work.Revision++
	return work, true
}

// displayName computes the name tag: vendor name with the trailing country
// and state stripped, the operator prefix added, and the correction table
// applied last.
func (m *merger) displayName(work *stations.Station, in *Incoming) string {
	name := in.Name
	if in.Country != "" {
		name = normalize.StripSuffix(name, ", "+in.Country)
	}
	if in.State != "" {
		name = normalize.StripSuffix(name, ", "+in.State)
	}
	display := NamePrefix + name

	if corr, ok := m.corrections.Apply(display); ok {
		display = corr.Name
		if corr.Postcode != "" {
			work.SetTag(TagPostcode, corr.Postcode)
		}
	}
	return display
}
