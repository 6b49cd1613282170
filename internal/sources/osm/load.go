// Package osm reads the existing OpenStreetMap export and writes the
// reconciled changefile. Parsing is two-phase: the whole document is decoded
// into plain structs first, then converted into station records, so the core
// never touches an XML token stream.
package osm

import (
	"encoding/xml"
	"os"
	"strconv"

	"github.com/osmtools/chargesync/pkg/errors"
	"github.com/osmtools/chargesync/pkg/stations"
)

type xmlTag struct {
	K string `xml:"k,attr"`
	V string `xml:"v,attr"`
}

type xmlNode struct {
	ID      string   `xml:"id,attr"`
	Version string   `xml:"version,attr"`
	Lat     string   `xml:"lat,attr"`
	Lon     string   `xml:"lon,attr"`
	Tags    []xmlTag `xml:"tag"`
}

type xmlDocument struct {
	XMLName xml.Name  `xml:"osm"`
	Nodes   []xmlNode `xml:"node"`
}

// Load parses an OSM export into station records. Node order is preserved:
// it defines the tie-break order for nearest-neighbor matching.
func Load(path string) ([]*stations.Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("xml", path, err)
	}

	records := make([]*stations.Station, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		id, err := strconv.ParseInt(n.ID, 10, 64)
		if err != nil {
			return nil, errors.NewParseError("xml", path,
				"node has unparseable id "+strconv.Quote(n.ID), err)
		}
		revision, err := strconv.Atoi(n.Version)
		if err != nil {
			return nil, errors.NewParseError("xml", path,
				"node "+n.ID+" has unparseable version "+strconv.Quote(n.Version), err)
		}

		s := stations.New(id)
		s.Revision = revision
		s.Lat = n.Lat
		s.Lon = n.Lon
		for _, t := range n.Tags {
			s.Tags[t.K] = t.V
		}
		records = append(records, s)
	}
	return records, nil
}
