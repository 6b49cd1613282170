package osm

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/osmtools/chargesync/pkg/stations"
)

// xmlEscaper covers the five characters that must not appear raw inside a
// single-quoted attribute value.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// Write serializes emitted records as an OSM changefile. Tags are sorted by
// key so output is stable across runs. Each tag whose value differs from the
// record's pre-merge snapshot carries a trailing comment with the prior
// value, and a node that had coordinates before the merge carries a prior
// position comment, for human review of the upload.
func Write(w io.Writer, emitted []*stations.Station) error {
	if _, err := fmt.Fprint(w, "<?xml version='1.0' encoding='UTF-8'?>\n<osm version='0.6' upload='true' generator='chargesync'>\n"); err != nil {
		return err
	}

	for _, s := range emitted {
		if _, err := fmt.Fprintf(w, "\t<node version='%d' id='%d' lat='%s' lon='%s'>",
			s.Revision, s.ID, xmlEscaper.Replace(s.Lat), xmlEscaper.Replace(s.Lon)); err != nil {
			return err
		}
		if s.PriorLat != "" && (s.PriorLat != s.Lat || s.PriorLon != s.Lon) {
			if _, err := fmt.Fprintf(w, " <!-- prior position: %s,%s -->",
				commentEscape(s.PriorLat), commentEscape(s.PriorLon)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprint(w, "\n"); err != nil {
			return err
		}

		keys := make([]string, 0, len(s.Tags))
		for k := range s.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			v := s.Tags[k]
			if _, err := fmt.Fprintf(w, "\t\t<tag k='%s' v='%s' />",
				xmlEscaper.Replace(k), xmlEscaper.Replace(v)); err != nil {
				return err
			}
			if prior, ok := s.PriorTags[k]; ok && prior != "" && prior != v {
				if _, err := fmt.Fprintf(w, " <!-- was: %s -->", commentEscape(prior)); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprint(w, "\n"); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprint(w, "\t</node>\n"); err != nil {
			return err
		}
	}

	_, err := fmt.Fprint(w, "</osm>\n")
	return err
}

// commentEscape keeps annotation text legal inside an XML comment, which
// must not contain "--".
func commentEscape(s string) string {
	return strings.ReplaceAll(s, "--", "- -")
}
