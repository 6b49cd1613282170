package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmtools/chargesync/pkg/errors"
	"github.com/osmtools/chargesync/pkg/rules"
	"github.com/osmtools/chargesync/pkg/stations"
)

func node(id int64, lat, lon string) *stations.Station {
	s := stations.New(id)
	s.Lat = lat
	s.Lon = lon
	return s
}

func overrideTo(externalID string, nodeID int64) *rules.Rules {
	r := rules.Empty()
	r.Overrides[externalID] = rules.Override{NodeID: &nodeID}
	return r
}

func TestMatchNearest(t *testing.T) {
	m := New(WithThreshold(0.002))
	existing := []*stations.Station{
		node(1, "52.0", "13.0"),
		node(2, "52.1", "13.1"),
	}

	s, d, err := m.Match(Candidate{ExternalID: "42", Lat: "52.0005", Lon: "13.0003"}, existing, rules.Empty())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, int64(1), s.ID)
	assert.True(t, s.Claimed)
	assert.Equal(t, RuleNearest, d.Rule)
	assert.Equal(t, int64(1), d.NodeID)
	assert.InDelta(t, 0.000583, d.Distance, 1e-5)
	assert.False(t, existing[1].Claimed)
}

// TestMatchThresholdBoundary pins the strict less-than comparison: a
// candidate at exactly the threshold does not match.
func TestMatchThresholdBoundary(t *testing.T) {
	m := New(WithThreshold(0.5))

	atBoundary := []*stations.Station{node(1, "1.0", "0")}
	s, d, err := m.Match(Candidate{ExternalID: "42", Lat: "0.5", Lon: "0"}, atBoundary, rules.Empty())
	require.NoError(t, err)
	assert.Nil(t, s)
	assert.Equal(t, RuleNone, d.Rule)
	assert.False(t, atBoundary[0].Claimed)

	below := []*stations.Station{node(1, "1.0", "0")}
	s, d, err = m.Match(Candidate{ExternalID: "42", Lat: "0.6", Lon: "0"}, below, rules.Empty())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, RuleNearest, d.Rule)
	assert.InDelta(t, 0.4, d.Distance, 1e-9)
}

// TestMatchTieBreak verifies the first minimal candidate in input order wins.
func TestMatchTieBreak(t *testing.T) {
	m := New(WithThreshold(1.0))
	existing := []*stations.Station{
		node(1, "0.1", "0"),
		node(2, "0", "0.1"), // same distance, later in input order
	}

	s, _, err := m.Match(Candidate{ExternalID: "42", Lat: "0", Lon: "0"}, existing, rules.Empty())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, int64(1), s.ID)
}

// TestMatchOverridePrecedence: an override target beats a geographically
// closer candidate.
func TestMatchOverridePrecedence(t *testing.T) {
	m := New(WithThreshold(0.002))
	existing := []*stations.Station{
		node(7, "52.0005", "13.0003"), // closer
		node(9, "52.5", "13.5"),       // override target, far outside threshold
	}

	s, d, err := m.Match(Candidate{ExternalID: "42", Lat: "52.0005", Lon: "13.0003"}, existing, overrideTo("42", 9))
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, int64(9), s.ID)
	assert.Equal(t, RuleOverride, d.Rule)
	assert.True(t, s.Claimed)
	assert.False(t, existing[0].Claimed)
}

func TestMatchOverrideErrors(t *testing.T) {
	m := New(WithThreshold(0.002))

	// Target id absent from the existing records.
	existing := []*stations.Station{node(1, "52.0", "13.0")}
	_, _, err := m.Match(Candidate{ExternalID: "42", Lat: "52.0", Lon: "13.0"}, existing, overrideTo("42", 9))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	// Target already claimed by an earlier incoming record.
	claimed := node(9, "52.0", "13.0")
	claimed.Claimed = true
	_, _, err = m.Match(Candidate{ExternalID: "42", Lat: "52.0", Lon: "13.0"}, []*stations.Station{claimed}, overrideTo("42", 9))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already claimed")
}

func TestMatchSkipsClaimedAndBlank(t *testing.T) {
	m := New(WithThreshold(0.002))
	claimed := node(1, "52.0", "13.0")
	claimed.Claimed = true
	blank := node(2, "", "")
	farther := node(3, "52.001", "13.0")
	existing := []*stations.Station{claimed, blank, farther}

	s, _, err := m.Match(Candidate{ExternalID: "42", Lat: "52.0", Lon: "13.0"}, existing, rules.Empty())
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, int64(3), s.ID)
}

func TestMatchCoordinateErrors(t *testing.T) {
	m := New(WithThreshold(0.002))

	// Unparseable candidate coordinate.
	_, _, err := m.Match(Candidate{ExternalID: "42", Lat: "", Lon: "13.0"}, nil, rules.Empty())
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	// Unparseable existing coordinate is fatal, not skipped.
	existing := []*stations.Station{node(5, "garbage", "13.0")}
	_, _, err = m.Match(Candidate{ExternalID: "42", Lat: "52.0", Lon: "13.0"}, existing, rules.Empty())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5")
}

func TestNewDefaultThreshold(t *testing.T) {
	assert.InDelta(t, rules.DefaultThreshold, New().Threshold(), 1e-12)
	assert.InDelta(t, 0.035, New(WithThreshold(0.035)).Threshold(), 1e-12)
}
