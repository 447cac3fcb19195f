// Package filter holds the ranking filter selection and its pure transitions.
//
// State is a value type. Apply never mutates its input and performs no I/O,
// so every transition can be tested in isolation from fetching and rendering.
package filter

import (
	"fmt"
	"time"
)

// SnapshotLayout is the date format used for snapshot dates.
const SnapshotLayout = "2006-01-02"

// State is the current filter selection.
type State struct {
	Division     int
	Gender       string
	View         View
	Region       *string
	Conference   *string
	Search       string
	Offset       int
	Historical   bool
	SnapshotDate *string
}

// Default returns the initial selection: first division, first gender, the
// athletes view and no facet filters.
func Default() State {
	return State{
		Division: Divisions[0].Code,
		Gender:   Genders[0].Code,
		View:     ViewAthletes,
	}
}

// Patch is a multi-field update. Nil pointers leave a field unchanged.
// Clearing a facet filter uses the Clear flags since a nil pointer already
// means "unchanged".
type Patch struct {
	Division        *int
	Gender          *string
	View            *View
	Region          *string
	ClearRegion     bool
	Conference      *string
	ClearConference bool
	Search          *string
	Offset          *int
	Historical      *bool
	SnapshotDate    *string
	ClearSnapshot   bool
}

// Ptr returns a pointer to v. It keeps patch literals short.
func Ptr[T any](v T) *T { return &v }

// Apply returns the state produced by p. The transition is atomic: either every
// field in p is applied together with the reset rules, or an error is returned
// and s is unchanged.
//
// Reset rules:
//   - a change of Division or Gender clears Region and Conference, whatever p says
//     about them, since facet names belong to the previous division;
//   - a change of any field other than Offset sets Offset to 0;
//   - leaving historical mode clears SnapshotDate.
func Apply(s State, p Patch) (State, error) {
	next := s
	next.Region = clonePtr(s.Region)
	next.Conference = clonePtr(s.Conference)
	next.SnapshotDate = clonePtr(s.SnapshotDate)

	if p.Division != nil {
		if _, ok := DivisionByCode(*p.Division); !ok {
			return s, fmt.Errorf("%w: %d", ErrUnknownDivision, *p.Division)
		}
		next.Division = *p.Division
	}
	if p.Gender != nil {
		g, ok := GenderByCode(*p.Gender)
		if !ok {
			return s, fmt.Errorf("%w: %q", ErrUnknownGender, *p.Gender)
		}
		next.Gender = g.Code
	}
	if p.View != nil {
		v, ok := ParseView(string(*p.View))
		if !ok {
			return s, fmt.Errorf("%w: %q", ErrUnknownView, *p.View)
		}
		next.View = v
	}
	if p.ClearRegion {
		next.Region = nil
	}
	if p.Region != nil {
		next.Region = facetPtr(*p.Region)
	}
	if p.ClearConference {
		next.Conference = nil
	}
	if p.Conference != nil {
		next.Conference = facetPtr(*p.Conference)
	}
	if p.Search != nil {
		next.Search = *p.Search
	}
	if p.Historical != nil {
		next.Historical = *p.Historical
	}
	if p.ClearSnapshot {
		next.SnapshotDate = nil
	}
	if p.SnapshotDate != nil {
		if _, err := time.Parse(SnapshotLayout, *p.SnapshotDate); err != nil {
			return s, fmt.Errorf("%w: %q", ErrInvalidSnapshot, *p.SnapshotDate)
		}
		next.SnapshotDate = Ptr(*p.SnapshotDate)
	}
	if p.Offset != nil {
		if *p.Offset < 0 {
			return s, fmt.Errorf("%w: %d", ErrInvalidOffset, *p.Offset)
		}
		next.Offset = *p.Offset
	}

	if !next.Historical {
		next.SnapshotDate = nil
	}
	if next.Division != s.Division || next.Gender != s.Gender {
		next.Region = nil
		next.Conference = nil
	}
	if !sameExceptOffset(s, next) {
		next.Offset = 0
	}
	return next, nil
}

// Equal reports whether two states select the same thing.
func Equal(a, b State) bool {
	return a.Offset == b.Offset && sameExceptOffset(a, b)
}

func sameExceptOffset(a, b State) bool {
	return a.Division == b.Division &&
		a.Gender == b.Gender &&
		a.View == b.View &&
		eqPtr(a.Region, b.Region) &&
		eqPtr(a.Conference, b.Conference) &&
		a.Search == b.Search &&
		a.Historical == b.Historical &&
		eqPtr(a.SnapshotDate, b.SnapshotDate)
}

// SnapshotTime parses SnapshotDate. ok is false outside historical mode or
// when no date is selected.
func (s State) SnapshotTime() (t time.Time, ok bool) {
	if !s.Historical || s.SnapshotDate == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(SnapshotLayout, *s.SnapshotDate)
	return t, err == nil
}

// facetPtr treats an empty name as "no filter".
func facetPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func eqPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
