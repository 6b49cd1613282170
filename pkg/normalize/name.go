package normalize

import "strings"

// StripSuffix removes a literal trailing substring from s if present at the
// exact end. It is a no-op for an empty suffix or a non-matching tail.
func StripSuffix(s, suffix string) string {
	if suffix == "" {
		return s
	}
	return strings.TrimSuffix(s, suffix)
}

// Correction is a curated replacement for a known-incorrect display name.
// A non-empty Postcode also overrides the addr:postcode tag: these entries
// model one-off data-quality fixes discovered during prior runs.
type Correction struct {
	Name     string `yaml:"name"`
	Postcode string `yaml:"postcode,omitempty"`
}

// Corrections maps a computed display name to its curated replacement.
// Lookup is exact string match only; the table is loaded from the rules
// document, never inferred.
type Corrections map[string]Correction

// Apply returns the correction for name, if one exists.
func (c Corrections) Apply(name string) (Correction, bool) {
	corr, ok := c[name]
	return corr, ok
}
