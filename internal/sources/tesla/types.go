// Package tesla loads the vendor charging-station snapshot: a pre-fetched
// JSON document listing locations with status, coordinates, stall counts and
// address data. The loader is deliberately thin; all reconciliation decisions
// live in pkg/reconciler.
package tesla

import (
	"encoding/json"

	"github.com/osmtools/chargesync/pkg/reconciler"
)

// Flex is a string that unmarshals from either a JSON string or a JSON
// number, preserving the number's decimal text exactly. The feed is
// inconsistent about quoting identifiers, stall counts and coordinates, and
// coordinates must not round-trip through float64.
type Flex string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flex) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	}
	*f = Flex(data)
	return nil
}

// String returns the preserved text.
func (f Flex) String() string {
	return string(f)
}

// GPS is the vendor's coordinate fix, kept as decimal text.
type GPS struct {
	Latitude  Flex `json:"latitude"`
	Longitude Flex `json:"longitude"`
}

// Address is the vendor's address sub-record.
type Address struct {
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	State   string `json:"state"`
}

// Location is one vendor snapshot record.
type Location struct {
	ID         Flex    `json:"id"`
	Status     string  `json:"status"`
	Name       string  `json:"name"`
	Hours      *string `json:"hours"`
	StallCount Flex    `json:"stallCount"`
	GPS        GPS     `json:"gps"`
	Address    Address `json:"address"`
}

// Incoming flattens the location into the engine's input record. The
// identifier and stall count are normalized to strings; coordinate text
// passes through untouched.
func (l *Location) Incoming() reconciler.Incoming {
	return reconciler.Incoming{
		ExternalID: string(l.ID),
		Status:     l.Status,
		Name:       l.Name,
		Hours:      l.Hours,
		StallCount: string(l.StallCount),
		Lat:        string(l.GPS.Latitude),
		Lon:        string(l.GPS.Longitude),
		City:       l.Address.City,
		Zip:        l.Address.Zip,
		Country:    l.Address.Country,
		State:      l.Address.State,
	}
}
