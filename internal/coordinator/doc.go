// Package coordinator drives the polling loop against the eMODUL cloud.
//
// One coordinator polls every configured module on a fixed interval and
// fans refreshed state out to registered listeners (the MQTT bridge, the
// history recorder). An expired session triggers a single in-place
// re-authentication using the configured account credentials; the new
// session is persisted so restarts keep working without a login round-trip.
package coordinator
