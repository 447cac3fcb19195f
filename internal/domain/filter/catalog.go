package filter

import (
	"strconv"
	"strings"
)

// Division is a ranking division as the backend identifies it.
type Division struct {
	Code  int
	Name  string
	Short string
}

// Gender is a ranking gender bucket.
type Gender struct {
	Code  string
	Label string
}

// View selects which ranking list is shown.
type View string

// Known views.
const (
	ViewAthletes  View = "athletes"
	ViewTeamScore View = "teamScore"
	ViewKnockout  View = "knockout"
)

// Divisions in display order. The first entry is the default.
var Divisions = []Division{ //nolint:gochecknoglobals // static catalog
	{Code: 2030, Name: "NCAA Division I", Short: "D1"},
	{Code: 2031, Name: "NCAA Division II", Short: "D2"},
	{Code: 2032, Name: "NCAA Division III", Short: "D3"},
	{Code: 2028, Name: "NAIA", Short: "NAIA"},
	{Code: 19781, Name: "NJCAA Division I", Short: "NJCAA D1"},
	{Code: 19782, Name: "NJCAA Division II", Short: "NJCAA D2"},
	{Code: 2034, Name: "NJCAA Division III", Short: "NJCAA D3"},
}

// Genders in display order. The first entry is the default.
var Genders = []Gender{ //nolint:gochecknoglobals // static catalog
	{Code: "M", Label: "Men"},
	{Code: "F", Label: "Women"},
}

// Views in display order. The first entry is the default.
var Views = []View{ViewAthletes, ViewTeamScore, ViewKnockout} //nolint:gochecknoglobals // static catalog

// DivisionByCode looks up a division by its backend code.
func DivisionByCode(code int) (Division, bool) {
	for _, d := range Divisions {
		if d.Code == code {
			return d, true
		}
	}
	return Division{}, false
}

// DivisionByShort looks up a division by short name, ignoring case and
// treating dashes, underscores and spaces alike ("njcaa-d1" matches "NJCAA D1").
func DivisionByShort(short string) (Division, bool) {
	norm := normalizeShort(short)
	for _, d := range Divisions {
		if normalizeShort(d.Short) == norm {
			return d, true
		}
	}
	return Division{}, false
}

// ParseDivision accepts a backend code or a short name.
func ParseDivision(raw string) (Division, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Division{}, false
	}
	if code, err := strconv.Atoi(raw); err == nil {
		return DivisionByCode(code)
	}
	return DivisionByShort(raw)
}

func normalizeShort(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", " ", "_", " ").Replace(s)
}

// GenderByCode looks up a gender by code, ignoring case.
func GenderByCode(code string) (Gender, bool) {
	for _, g := range Genders {
		if strings.EqualFold(g.Code, strings.TrimSpace(code)) {
			return g, true
		}
	}
	return Gender{}, false
}

// ParseView resolves a view name, ignoring case.
func ParseView(s string) (View, bool) {
	for _, v := range Views {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v, true
		}
	}
	return "", false
}

// Label returns the human name of a view.
func (v View) Label() string {
	switch v {
	case ViewAthletes:
		return "Athletes"
	case ViewTeamScore:
		return "Team Score"
	case ViewKnockout:
		return "Team Knockout"
	default:
		return string(v)
	}
}

// IsTeamView reports whether rows in this view are teams.
func (v View) IsTeamView() bool {
	return v == ViewTeamScore || v == ViewKnockout
}
