package tesla

import (
	"encoding/json"
	"os"

	"github.com/osmtools/chargesync/pkg/errors"
)

// Load reads a vendor snapshot file into memory. The document is small
// (thousands of records), so it is parsed whole before processing begins.
func Load(path string) ([]Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var locations []Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return locations, nil
}
