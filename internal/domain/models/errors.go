package models

import (
	"errors"
	"fmt"
)

var (
	ErrScanInFlight           = errors.New("scan already in progress")
	ErrAutoScanRunning        = errors.New("auto-scan already running")
	ErrTradeNotFound          = errors.New("trade not found")
	ErrTradeClosed            = errors.New("trade already closed")
	ErrTradeAlreadyLogged     = errors.New("trade already logged")
	ErrNotifierNotConfigured  = errors.New("telegram token and chat id are not configured")
	ErrRecommendationNotFound = errors.New("recommendation not found in latest scan")
)

// DataFetchError means a market feed was unreachable or answered non-2xx.
type DataFetchError struct {
	Feed       string
	StatusCode int
	Err        error
}

func (e *DataFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Feed, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Feed, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// AdvisoryError means the advisor failed or produced unusable output.
type AdvisoryError struct {
	Err error
}

func (e *AdvisoryError) Error() string { return fmt.Sprintf("advisory: %v", e.Err) }

func (e *AdvisoryError) Unwrap() error { return e.Err }

// MalformedPickError describes a single dropped pick.
type MalformedPickError struct {
	Pair   string
	Reason string
}

func (e *MalformedPickError) Error() string {
	return fmt.Sprintf("malformed pick %q: %s", e.Pair, e.Reason)
}

// FailureMessage is the human-readable text shown for an aborted cycle.
func FailureMessage(err error) string {
	return fmt.Sprintf("Failed to complete analysis. %v Please try again later.", err)
}
