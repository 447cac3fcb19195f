package filter

import (
	"fmt"
	"strings"
)

// FetchKey is the part of State that decides what the backend must return.
// Search and Offset are absent: they are resolved client-side. FetchKey is
// comparable, so a pending request can be matched against the current
// selection with ==.
type FetchKey struct {
	Division   int
	Gender     string
	View       View
	Region     string
	Conference string
	Historical bool
	Snapshot   string
}

// FetchKey derives the fetch key of s.
func (s State) FetchKey() FetchKey {
	k := FetchKey{
		Division:   s.Division,
		Gender:     s.Gender,
		View:       s.View,
		Historical: s.Historical,
	}
	if s.Region != nil {
		k.Region = *s.Region
	}
	if s.Conference != nil {
		k.Conference = *s.Conference
	}
	if s.Historical && s.SnapshotDate != nil {
		k.Snapshot = *s.SnapshotDate
	}
	return k
}

// Base drops the facet filters. Responses for the same base key share a facet set.
func (k FetchKey) Base() FetchKey {
	k.Region = ""
	k.Conference = ""
	return k
}

// Faceted reports whether a region or conference filter is active.
func (k FetchKey) Faceted() bool {
	return k.Region != "" || k.Conference != ""
}

// Fetchable reports whether the key can be sent to the backend. Historical
// mode needs a snapshot date.
func (k FetchKey) Fetchable() bool {
	return !k.Historical || k.Snapshot != ""
}

// String renders the key for logs.
func (k FetchKey) String() string {
	parts := []string{fmt.Sprintf("division=%d", k.Division), "gender=" + k.Gender, "view=" + string(k.View)}
	if k.Region != "" {
		parts = append(parts, "region="+k.Region)
	}
	if k.Conference != "" {
		parts = append(parts, "conference="+k.Conference)
	}
	if k.Historical {
		parts = append(parts, "snapshot="+k.Snapshot)
	}
	return strings.Join(parts, " ")
}
