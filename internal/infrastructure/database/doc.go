// Package database provides SQLite connection management for the bridge's
// local storage.
//
// The bridge keeps very little state of its own: the persisted eMODUL
// session (see internal/session) so restarts don't force a fresh login.
// SQLite is configured with WAL mode and a busy timeout, and restricted to
// a single writer connection.
//
// # Usage
//
//	db, err := database.Open(ctx, database.Config{Path: "./data/techbridge.db", WALMode: true, BusyTimeout: 5})
//	if err != nil { ... }
//	defer db.Close()
package database
