package inventory

import "errors"

// Sentinel errors for inventory operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, inventory.ErrEmpty) {
//	    // No snapshot cached yet
//	}
var (
	// ErrEmpty indicates the cache holds no device snapshot.
	ErrEmpty = errors.New("inventory: no cached devices")
)
