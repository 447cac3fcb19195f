package rankings

import "sort"

// Snapshot is a published historical ranking date.
type Snapshot struct {
	Date        string `json:"date"`
	Season      int    `json:"season"`
	DisplayName string `json:"display_name"`
}

// LatestForSeason returns the most recent snapshot of season. The list is
// expected most recent first, as the backend sends it, but the dates are
// compared anyway.
func LatestForSeason(list []Snapshot, season int) (Snapshot, bool) {
	var best Snapshot
	found := false
	for _, s := range list {
		if s.Season != season {
			continue
		}
		if !found || s.Date > best.Date {
			best = s
			found = true
		}
	}
	return best, found
}

// Seasons lists the distinct seasons in list, most recent first.
func Seasons(list []Snapshot) []int {
	seen := map[int]bool{}
	var out []int
	for _, s := range list {
		if !seen[s.Season] {
			seen[s.Season] = true
			out = append(out, s.Season)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}
