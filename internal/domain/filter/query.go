package filter

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query parameter names of the shareable URL.
const (
	ParamDivision   = "division"
	ParamGender     = "gender"
	ParamView       = "view"
	ParamRegion     = "region"
	ParamConference = "conference"
	ParamSearch     = "search"
	ParamSnapshot   = "snapshot"
	ParamHistorical = "historical"
)

// Encode serializes the non-default fields of s. Offset is never written:
// a shared link always opens on the first page.
func Encode(s State) url.Values {
	def := Default()
	q := url.Values{}
	if s.Division != def.Division {
		q.Set(ParamDivision, strconv.Itoa(s.Division))
	}
	if s.Gender != def.Gender {
		q.Set(ParamGender, s.Gender)
	}
	if s.View != def.View {
		q.Set(ParamView, string(s.View))
	}
	if s.Region != nil {
		q.Set(ParamRegion, *s.Region)
	}
	if s.Conference != nil {
		q.Set(ParamConference, *s.Conference)
	}
	if s.Search != "" {
		q.Set(ParamSearch, s.Search)
	}
	if s.Historical {
		if s.SnapshotDate != nil {
			q.Set(ParamSnapshot, *s.SnapshotDate)
		} else {
			q.Set(ParamHistorical, "true")
		}
	}
	return q
}

// EncodeString is Encode rendered as a query string (keys sorted).
func EncodeString(s State) string {
	return Encode(s).Encode()
}

// Decode hydrates a State from query parameters. Absent or unrecognised
// values fall back to the defaults; Decode never fails.
func Decode(q url.Values) State {
	s := Default()

	if d, ok := ParseDivision(q.Get(ParamDivision)); ok {
		s.Division = d.Code
	}
	if g, ok := GenderByCode(q.Get(ParamGender)); ok {
		s.Gender = g.Code
	}
	if v, ok := ParseView(q.Get(ParamView)); ok {
		s.View = v
	}
	if r := q.Get(ParamRegion); r != "" {
		s.Region = Ptr(r)
	}
	if c := q.Get(ParamConference); c != "" {
		s.Conference = Ptr(c)
	}
	s.Search = q.Get(ParamSearch)

	if d := strings.TrimSpace(q.Get(ParamSnapshot)); d != "" {
		if _, err := time.Parse(SnapshotLayout, d); err == nil {
			s.Historical = true
			s.SnapshotDate = Ptr(d)
		}
	}
	if h, err := strconv.ParseBool(q.Get(ParamHistorical)); err == nil && h {
		s.Historical = true
	}
	return s
}

// DecodeString parses a raw query string (with or without a leading "?").
func DecodeString(raw string) (State, error) {
	q, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return Default(), err
	}
	return Decode(q), nil
}
