package tesla

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osmtools/chargesync/pkg/errors"
)

const sampleSnapshot = `[
  {
    "id": 42,
    "status": "OPEN",
    "name": "Hamburg, Germany",
    "hours": "Mon-Fri 9am-5pm",
    "stallCount": 4,
    "gps": {"latitude": 53.5505, "longitude": 10.0014},
    "address": {"city": "Hamburg", "zip": "20095", "country": "Germany", "state": ""}
  },
  {
    "id": "berlin-1",
    "status": "CLOSED",
    "name": "Berlin",
    "stallCount": "8",
    "gps": {"latitude": "52.52", "longitude": "13.405"},
    "address": {"city": "Berlin", "zip": "", "country": "Germany", "state": ""}
  }
]`

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	locations, err := Load(writeSnapshot(t, sampleSnapshot))
	require.NoError(t, err)
	require.Len(t, locations, 2)

	first := locations[0]
	assert.Equal(t, "42", string(first.ID), "numeric id normalized to string")
	assert.Equal(t, "4", string(first.StallCount))
	assert.Equal(t, "53.5505", string(first.GPS.Latitude), "coordinate text preserved exactly")
	assert.Equal(t, "10.0014", string(first.GPS.Longitude))
	require.NotNil(t, first.Hours)
	assert.Equal(t, "Mon-Fri 9am-5pm", *first.Hours)

	second := locations[1]
	assert.Equal(t, "berlin-1", string(second.ID), "string id passes through")
	assert.Equal(t, "8", string(second.StallCount))
	assert.Nil(t, second.Hours, "absent hours stay nil")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)

	_, err = Load(writeSnapshot(t, "{not json"))
	require.Error(t, err)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestIncomingConversion(t *testing.T) {
	locations, err := Load(writeSnapshot(t, sampleSnapshot))
	require.NoError(t, err)

	in := locations[0].Incoming()
	assert.Equal(t, "42", in.ExternalID)
	assert.Equal(t, "OPEN", in.Status)
	assert.Equal(t, "Hamburg, Germany", in.Name)
	assert.Equal(t, "4", in.StallCount)
	assert.Equal(t, "53.5505", in.Lat)
	assert.Equal(t, "10.0014", in.Lon)
	assert.Equal(t, "Hamburg", in.City)
	assert.Equal(t, "20095", in.Zip)
	assert.Equal(t, "Germany", in.Country)

	in = locations[1].Incoming()
	assert.Nil(t, in.Hours)
	assert.Equal(t, "CLOSED", in.Status)
}
