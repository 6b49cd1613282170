package reconciler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/osmtools/chargesync/pkg/normalize"
	"github.com/osmtools/chargesync/pkg/stations"
)

func existingNode() *stations.Station {
	s := stations.New(100)
	s.Revision = 3
	s.Lat = "52.0"
	s.Lon = "13.0"
	s.Tags["name"] = "Old"
	return s
}

func vendorIncoming() *Incoming {
	return &Incoming{
		ExternalID: "42",
		Status:     "OPEN",
		Name:       "New",
		StallCount: "4",
		Lat:        "52.0005",
		Lon:        "13.0003",
	}
}

func vendorEffective(in *Incoming) effective {
	return effective{
		lat:      in.Lat,
		lon:      in.Lon,
		capacity: in.StallCount,
		hours:    in.hoursOrDefault(),
	}
}

func TestMergeMatchedRecord(t *testing.T) {
	m := newMerger(nil)
	in := vendorIncoming()

	merged, changed := m.merge(existingNode().Clone(), in, vendorEffective(in))
	assert.True(t, changed)

	expected := &stations.Station{
		ID:       100,
		Revision: 4,
		Lat:      "52.0", // existing coordinates win
		Lon:      "13.0",
		Tags: map[string]string{
			TagOpeningHours: "24/7",
			TagSocket:       "4",
			TagCapacity:     "4",
			TagOperator:     OperatorName,
			TagAmenity:      AmenityValue,
			TagName:         "Tesla Supercharger New",
		},
		PriorTags: map[string]string{"name": "Old"},
		PriorLat:  "52.0",
		PriorLon:  "13.0",
	}
	if diff := cmp.Diff(expected, merged); diff != "" {
		t.Errorf("merged record mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeNoOpSuppression(t *testing.T) {
	m := newMerger(nil)
	in := vendorIncoming()

	src := stations.New(100)
	src.Revision = 3
	src.Lat = "52.0"
	src.Lon = "13.0"
	src.Tags = map[string]string{
		TagOpeningHours: "24/7",
		TagSocket:       "4",
		TagCapacity:     "4",
		TagOperator:     OperatorName,
		TagAmenity:      AmenityValue,
		TagName:         "Tesla Supercharger New",
	}

	merged, changed := m.merge(src.Clone(), in, vendorEffective(in))
	assert.False(t, changed)
	assert.Equal(t, 3, merged.Revision, "no revision bump on a no-op merge")
}

func TestMergeCoordinatePrecedence(t *testing.T) {
	m := newMerger(nil)
	in := vendorIncoming()

	// Existing coordinates are never overwritten.
	withCoords := existingNode().Clone()
	merged, _ := m.merge(withCoords, in, vendorEffective(in))
	assert.Equal(t, "52.0", merged.Lat)
	assert.Equal(t, "13.0", merged.Lon)

	// Empty existing coordinates are filled from the vendor record.
	blank := stations.New(100)
	blank.Revision = 3
	merged, changed := m.merge(blank.Clone(), in, vendorEffective(in))
	assert.True(t, changed)
	assert.Equal(t, "52.0005", merged.Lat)
	assert.Equal(t, "13.0003", merged.Lon)
	assert.Empty(t, merged.PriorLat, "no prior position when the source had none")
	assert.Empty(t, merged.PriorLon)
}

func TestMergeAddressFillOnlyWhenEmpty(t *testing.T) {
	m := newMerger(nil)
	in := vendorIncoming()
	in.City = "Berlin"
	in.Zip = "10117"

	// Empty address tags are filled.
	merged, _ := m.merge(existingNode().Clone(), in, vendorEffective(in))
	assert.Equal(t, "Berlin", merged.Tag(TagCity))
	assert.Equal(t, "10117", merged.Tag(TagPostcode))

	// Manual annotations win.
	annotated := existingNode()
	annotated.Tags[TagCity] = "Berlin-Mitte"
	annotated.Tags[TagPostcode] = "10118"
	merged, _ = m.merge(annotated.Clone(), in, vendorEffective(in))
	assert.Equal(t, "Berlin-Mitte", merged.Tag(TagCity))
	assert.Equal(t, "10118", merged.Tag(TagPostcode))

	// Empty vendor values never blank out anything.
	in.City = ""
	in.Zip = ""
	merged, _ = m.merge(existingNode().Clone(), in, vendorEffective(in))
	assert.Empty(t, merged.Tag(TagCity))
}

func TestMergeDisplayName(t *testing.T) {
	m := newMerger(normalize.Corrections{
		"Tesla Supercharger Hamburg": {
			Name:     "Tesla Supercharger Hamburg-Wandsbek",
			Postcode: "22041",
		},
	})

	in := vendorIncoming()
	in.Name = "Hamburg, Germany"
	in.Country = "Germany"

	merged, _ := m.merge(existingNode().Clone(), in, vendorEffective(in))
	assert.Equal(t, "Tesla Supercharger Hamburg-Wandsbek", merged.Tag(TagName))
	assert.Equal(t, "22041", merged.Tag(TagPostcode), "corrected postcode overrides")

	// State suffix stripping, no correction hit.
	plain := newMerger(nil)
	in = vendorIncoming()
	in.Name = "Fremont, CA"
	in.State = "CA"
	merged, _ = plain.merge(existingNode().Clone(), in, vendorEffective(in))
	assert.Equal(t, "Tesla Supercharger Fremont", merged.Tag(TagName))
}

func TestMergeHours(t *testing.T) {
	m := newMerger(nil)

	// Vendor hours pass through the normalizer.
	in := vendorIncoming()
	raw := "Mon-Fri 9am - 5pm"
	in.Hours = &raw
	merged, _ := m.merge(existingNode().Clone(), in, vendorEffective(in))
	assert.Equal(t, "Mo-Fr 09:00-05:00", merged.Tag(TagOpeningHours))

	// Curated override hours are used verbatim.
	in = vendorIncoming()
	eff := vendorEffective(in)
	eff.hours = "Mo-Fr 09:00-17:30; Sa 10:00-17:00"
	eff.curated = true
	merged, _ = m.merge(existingNode().Clone(), in, eff)
	assert.Equal(t, "Mo-Fr 09:00-17:30; Sa 10:00-17:00", merged.Tag(TagOpeningHours))

	// Empty effective hours suppress the tag entirely.
	eff = vendorEffective(in)
	eff.hours = ""
	eff.curated = true
	merged, _ = m.merge(existingNode().Clone(), in, eff)
	_, ok := merged.Tags[TagOpeningHours]
	assert.False(t, ok)
}
