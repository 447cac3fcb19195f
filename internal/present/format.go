package present

import (
	"math"
	"strconv"
	"time"

	"github.com/xcri/rankings/internal/domain/knockout"
	"github.com/xcri/rankings/internal/domain/rankings"
)

// Placeholder is shown for absent values.
const Placeholder = "-"

// Ordinal renders 1 as "1st", 2 as "2nd", 11 as "11th". Non-positive
// values render as the placeholder.
func Ordinal(n int) string {
	if n <= 0 {
		return Placeholder
	}
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// MonthDay renders a backend date or timestamp as "M/D".
func MonthDay(s string) string {
	t, ok := rankings.ParseTimestamp(s)
	if !ok {
		return Placeholder
	}
	return strconv.Itoa(int(t.Month())) + "/" + strconv.Itoa(t.Day())
}

// Record renders "W-L (x.x%)".
func Record(wins, losses int) string {
	return knockout.Stats{
		Wins:   wins,
		Losses: losses,
		WinPct: knockout.WinPct(wins, wins+losses),
	}.String()
}

// Calculated renders a calculation time for a status line.
func Calculated(t time.Time) string {
	return t.Local().Format("Jan 2, 2006 3:04 PM")
}

func formatRank(v any) string {
	if n, ok := v.(int); ok {
		if n <= 0 {
			return Placeholder
		}
		return strconv.Itoa(n)
	}
	return Placeholder
}

func formatText(v any) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return Placeholder
}

func formatFixed2(v any) string {
	if f, ok := v.(*float64); ok && f != nil {
		return strconv.FormatFloat(*f, 'f', 2, 64)
	}
	return Placeholder
}

func formatFloor(v any) string {
	if f, ok := v.(*float64); ok && f != nil && *f != 0 {
		return strconv.Itoa(int(math.Floor(*f)))
	}
	return Placeholder
}

func formatCount(v any) string {
	if n, ok := v.(*int); ok && n != nil {
		return strconv.Itoa(*n)
	}
	return "0"
}

func formatOptionalRank(v any) string {
	if n, ok := v.(*int); ok && n != nil {
		return formatRank(*n)
	}
	return Placeholder
}

func formatMonthDay(v any) string {
	if s, ok := v.(string); ok {
		return MonthDay(s)
	}
	return Placeholder
}
