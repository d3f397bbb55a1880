// Package session persists eMODUL API sessions across bridge restarts.
//
// The eMODUL cloud issues a bearer token on authentication. Tokens are
// long-lived, so the bridge stores the (user id, token) pair in SQLite and
// reuses it on startup instead of re-authenticating with credentials. When
// the cloud rejects the stored token the coordinator re-authenticates and
// the new session replaces the old row.
package session
