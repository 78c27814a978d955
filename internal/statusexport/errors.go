package statusexport

import "errors"

// Sentinel errors for status export operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, statusexport.ErrDisabled) {
//	    // Metrics export not configured, carry on without it
//	}
var (
	// ErrNotConnected indicates the client is not connected to InfluxDB.
	ErrNotConnected = errors.New("statusexport: not connected")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("statusexport: connection failed")

	// ErrDisabled indicates metrics export is disabled in config.
	ErrDisabled = errors.New("statusexport: disabled in configuration")
)
