package rankings

import "strings"

// Page is one materialized page. Total counts the rows that matched the
// search before pagination.
type Page struct {
	Results []Record
	Total   int
}

// Materialize applies the text search to data and returns the window
// [offset, offset+limit) of the matches. It never modifies data.
//
// The search is trimmed and case-insensitive and matches the display name
// and, for athletes, the team name. A blank search keeps every row.
func Materialize(data []Record, search string, offset, limit int) Page {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	matched := data
	if needle := normalizeSearch(search); needle != "" {
		matched = make([]Record, 0, len(data))
		for i := range data {
			if Matches(&data[i], needle) {
				matched = append(matched, data[i])
			}
		}
	}

	total := len(matched)
	if offset >= total || limit == 0 {
		return Page{Results: []Record{}, Total: total}
	}
	end := total
	if limit < total-offset {
		end = offset + limit
	}
	out := make([]Record, end-offset)
	copy(out, matched[offset:end])
	return Page{Results: out, Total: total}
}

// Matches reports whether r matches an already normalized search needle.
func Matches(r *Record, needle string) bool {
	if strings.Contains(strings.ToLower(r.DisplayName()), needle) {
		return true
	}
	return r.Kind == KindAthlete && strings.Contains(strings.ToLower(r.TeamName), needle)
}

func normalizeSearch(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
