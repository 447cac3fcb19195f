// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind names what an intent changes.
type Kind string

// Intent kinds emitted by renderers.
const (
	KindDivision   Kind = "division"
	KindGender     Kind = "gender"
	KindView       Kind = "view"
	KindRegion     Kind = "region"
	KindConference Kind = "conference"
	KindSearch     Kind = "search"
	KindPage       Kind = "page"
	KindNext       Kind = "next"
	KindPrev       Kind = "prev"
	KindHistorical Kind = "historical"
	KindLive       Kind = "live"
	KindSnapshot   Kind = "snapshot"
	KindRetry      Kind = "retry"
)

// Sentinel parse errors.
var (
	ErrUnknownIntent = errors.New("unknown intent")
	ErrMissingValue  = errors.New("intent needs a value")
)

// Intent is one user action against the rankings list.
type Intent struct {
	ID    string    // unique id for log correlation
	Kind  Kind      // what to change
	Value string    // new value; empty clears region, conference and search
	TS    time.Time // when the intent was received
}

// New stamps an intent with an id and the current time.
func New(kind Kind, value string) Intent {
	return Intent{ID: uuid.NewString(), Kind: kind, Value: value, TS: time.Now()}
}

// needsValue lists the kinds that are meaningless without a value.
var needsValue = map[Kind]bool{ //nolint:gochecknoglobals // static table
	KindDivision: true,
	KindGender:   true,
	KindView:     true,
	KindPage:     true,
	KindSnapshot: true,
}

var known = map[Kind]bool{ //nolint:gochecknoglobals // static table
	KindDivision: true, KindGender: true, KindView: true, KindRegion: true,
	KindConference: true, KindSearch: true, KindPage: true, KindNext: true,
	KindPrev: true, KindHistorical: true, KindLive: true, KindSnapshot: true,
	KindRetry: true,
}

// Parse reads "<kind> [value]". The value is the rest of the line, trimmed,
// so search text and region names may contain spaces.
func Parse(line string) (Intent, error) {
	line = strings.TrimSpace(line)
	word, rest, _ := strings.Cut(line, " ")
	kind := Kind(strings.ToLower(word))
	if !known[kind] {
		return Intent{}, fmt.Errorf("%w: %q", ErrUnknownIntent, word)
	}
	value := strings.TrimSpace(rest)
	if value == "" && needsValue[kind] {
		return Intent{}, fmt.Errorf("%w: %s", ErrMissingValue, kind)
	}
	return New(kind, value), nil
}

func (i Intent) String() string {
	if i.Value == "" {
		return string(i.Kind)
	}
	return string(i.Kind) + " " + i.Value
}
