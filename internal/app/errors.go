package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/xcri/rankings/internal/adapters/rankingsapi"
	"github.com/xcri/rankings/internal/domain/filter"
)

// Sentinel errors.
var (
	ErrClosed            = errors.New("controller closed")
	ErrUnsupportedIntent = errors.New("unsupported intent")
	ErrNotStarted        = errors.New("service not started")
	ErrQueueFull         = errors.New("intent queue full")
	ErrDuplicateIntent   = errors.New("intent already submitted")
)

// ErrorKind classifies a failed fetch for display.
type ErrorKind string

// Fetch failure kinds.
const (
	ErrorNetwork ErrorKind = "network"
	ErrorStatus  ErrorKind = "status"
	ErrorDecode  ErrorKind = "decode"
)

// FetchError is the error state of the list. It is retryable with
// Controller.Retry.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int
	Key        filter.FetchKey
	Err        error
}

func newFetchError(key filter.FetchKey, err error) *FetchError {
	fe := &FetchError{Key: key, Err: err, Kind: ErrorNetwork}
	switch {
	case errors.Is(err, rankingsapi.ErrDecode):
		fe.Kind = ErrorDecode
	case rankingsapi.StatusCode(err) != 0:
		fe.Kind = ErrorStatus
		fe.StatusCode = rankingsapi.StatusCode(err)
	}
	return fe
}

func (e *FetchError) Error() string {
	if e.Kind == ErrorStatus {
		return fmt.Sprintf("rankings unavailable (%d %s): %v", e.StatusCode, http.StatusText(e.StatusCode), e.Err)
	}
	return fmt.Sprintf("rankings unavailable (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
