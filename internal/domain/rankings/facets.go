package rankings

import (
	"sort"
	"strings"
)

// FacetSet holds the distinct region and conference names of a dataset.
type FacetSet struct {
	Regions     []string
	Conferences []string
}

// DeriveFacets collects the sorted distinct non-blank region and conference names.
func DeriveFacets(data []Record) FacetSet {
	regions := map[string]struct{}{}
	conferences := map[string]struct{}{}
	for i := range data {
		if r := strings.TrimSpace(data[i].Region); r != "" {
			regions[r] = struct{}{}
		}
		if c := strings.TrimSpace(data[i].Conference); c != "" {
			conferences[c] = struct{}{}
		}
	}
	return FacetSet{Regions: sortedKeys(regions), Conferences: sortedKeys(conferences)}
}

// FilterFacets keeps the rows whose region and conference equal the given
// names. An empty name does not filter.
func FilterFacets(data []Record, region, conference string) []Record {
	if region == "" && conference == "" {
		return data
	}
	out := make([]Record, 0, len(data))
	for i := range data {
		if region != "" && data[i].Region != region {
			continue
		}
		if conference != "" && data[i].Conference != conference {
			continue
		}
		out = append(out, data[i])
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
