// Package inventory caches the account's device list in a local SQLite
// database.
//
// The CLI's sync verb stores the latest listing as a snapshot; the cached
// verb answers listings from it without touching the API. Each sync replaces
// the previous snapshot wholesale.
//
// # Usage
//
//	store, err := inventory.Open(inventory.Config{Path: "./data/inventory.db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.Replace(ctx, devices); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The store serialises writes through SQLite's single-writer connection;
// methods are safe for concurrent use.
package inventory
