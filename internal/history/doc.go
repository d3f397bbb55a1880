// Package history records zone and tile readings to InfluxDB.
//
// Each successful module refresh produces one batch of points: per-zone
// temperature, target and humidity, and per-tile working status. Writes
// are non-blocking; the recorder batches points and reports failures via
// an error callback. Recording is optional and controlled by the influxdb
// config section.
package history
