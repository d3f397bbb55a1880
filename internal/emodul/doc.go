// Package emodul implements the Tech Controllers (eMODUL) cloud API client
// and the per-module state cache behind the bridge.
//
// # Overview
//
// A heating installation consists of modules (physical controllers,
// identified by UDID) containing zones (controllable heating areas) and
// tiles (generic device widgets: relays, sensors, pumps). The client
// periodically fetches a module's full payload and merges it into a local
// cache keyed by module UDID.
//
// # Cache semantics
//
// The merge is monotonic by id: a refresh overwrites entries present in
// the response but never removes previously cached ids that the response
// omits. A temporarily missing entry therefore cannot cause flicker in
// consumers; stale entries persist until ClearModuleCache or ClearCache.
// Invalid entries (unregistered zone slots, invisible tiles, null or
// partial records) are dropped silently before merging.
//
// # Errors
//
// Failures surface as exactly one of two kinds: *AuthError (session
// missing or expired; the caller must re-authenticate) or *APIError
// (network failure, non-200 status, malformed JSON or timeout; the next
// poll may succeed). Cache lookups that miss return the ErrZoneNotFound /
// ErrTileNotFound sentinels instead.
//
// # Usage
//
//	client := emodul.New(emodul.Config{})
//	if err := client.Authenticate(ctx, user, pass); err != nil { ... }
//	state, err := client.RefreshModule(ctx, udid)
//	err = client.SetZoneTemperature(ctx, udid, zoneID, 21.5)
//
// The client performs no retry or backoff of its own; the polling
// coordinator owns the retry cadence.
package emodul
