package history

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/daroga0002/tech-controllers/internal/emodul"
	"github.com/daroga0002/tech-controllers/internal/infrastructure/config"
)

// Default timeouts for InfluxDB operations.
const (
	defaultConnectTimeout = 10 * time.Second
	defaultPingTimeout    = 5 * time.Second

	// millisecondsPerSecond converts seconds to milliseconds for the InfluxDB API.
	millisecondsPerSecond = 1000

	// tenthsPerDegree converts API temperature values to degrees Celsius.
	tenthsPerDegree = 10.0
)

// Recorder writes zone and tile history to InfluxDB.
//
// Writes are non-blocking and batched; failures are delivered via the
// error callback rather than from RecordModule.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Recorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI
	cfg      config.InfluxDBConfig

	// connected tracks current connection state.
	connected bool
	mu        sync.RWMutex

	// onError is called when async write errors occur.
	onError func(err error)
}

// Connect establishes a connection to the InfluxDB server.
//
// It performs the following setup:
//  1. Creates the client with token authentication
//  2. Verifies connectivity with a ping
//  3. Configures the non-blocking write API with batching
//  4. Sets up error callback for async write failures
//
// Parameters:
//   - cfg: InfluxDB configuration from config.yaml
//
// Returns:
//   - *Recorder: Connected recorder ready for use
//   - error: If history is disabled or connection fails
func Connect(cfg config.InfluxDBConfig) (*Recorder, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 10
	}

	// #nosec G115 -- values validated above to be positive
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(uint(batchSize)).
			SetFlushInterval(uint(flushInterval)*millisecondsPerSecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), defaultConnectTimeout)
	defer cancel()

	healthy, err := client.Ping(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping failed: %w", ErrConnectionFailed, err)
	}
	if !healthy {
		client.Close()
		return nil, fmt.Errorf("%w: server not healthy", ErrConnectionFailed)
	}

	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)

	r := &Recorder{
		client:    client,
		writeAPI:  writeAPI,
		cfg:       cfg,
		connected: true,
	}

	errorsCh := writeAPI.Errors()
	go r.handleWriteErrors(errorsCh)

	return r, nil
}

// handleWriteErrors processes async write errors from the WriteAPI.
func (r *Recorder) handleWriteErrors(errorsCh <-chan error) {
	for err := range errorsCh {
		r.mu.RLock()
		callback := r.onError
		r.mu.RUnlock()

		if callback != nil {
			callback(err)
		}
	}
}

// RecordModule writes one refresh round's worth of zone and tile points.
//
// Zones contribute current temperature, target temperature, and humidity
// (each only when the API reported a value). Tiles contribute their
// working status and, when present, a temperature reading.
func (r *Recorder) RecordModule(udid string, state emodul.ModuleState) {
	if !r.IsConnected() {
		return
	}

	now := time.Now()
	if state.LastUpdate != nil {
		now = *state.LastUpdate
	}

	for id, zone := range state.Zones {
		if zone.Zone == nil {
			continue
		}

		fields := map[string]interface{}{}
		if zone.Zone.CurrentTemperature != nil {
			fields["temperature_c"] = float64(*zone.Zone.CurrentTemperature) / tenthsPerDegree
		}
		if zone.Zone.SetTemperature != nil {
			fields["target_c"] = float64(*zone.Zone.SetTemperature) / tenthsPerDegree
		}
		if zone.Zone.Humidity != nil && *zone.Zone.Humidity >= 0 {
			fields["humidity_pct"] = float64(*zone.Zone.Humidity)
		}
		if len(fields) == 0 {
			continue
		}

		tags := map[string]string{
			"udid":    udid,
			"zone_id": strconv.Itoa(id),
		}
		if zone.Description != nil {
			tags["name"] = zone.Description.Name
		}

		r.writeAPI.WritePoint(write.NewPoint("zone", tags, fields, now))
	}

	for id, tile := range state.Tiles {
		fields := map[string]interface{}{
			"working": tile.Params.WorkingStatus,
		}
		if tile.Params.Temperature != nil {
			fields["temperature_c"] = float64(*tile.Params.Temperature) / tenthsPerDegree
		}

		tags := map[string]string{
			"udid":    udid,
			"tile_id": strconv.Itoa(id),
			"type":    strconv.Itoa(tile.Type),
		}

		r.writeAPI.WritePoint(write.NewPoint("tile", tags, fields, now))
	}
}

// Close gracefully shuts down the InfluxDB connection after flushing any
// pending writes.
func (r *Recorder) Close() error {
	if r.client == nil {
		return nil
	}

	r.mu.Lock()
	r.connected = false
	r.mu.Unlock()

	r.writeAPI.Flush()
	r.client.Close()

	return nil
}

// HealthCheck verifies the InfluxDB connection is alive and functioning.
func (r *Recorder) HealthCheck(ctx context.Context) error {
	if !r.IsConnected() {
		return ErrNotConnected
	}

	checkCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	healthy, err := r.client.Ping(checkCtx)
	if err != nil {
		return fmt.Errorf("history health check failed: %w", err)
	}
	if !healthy {
		return fmt.Errorf("history health check failed: server not healthy")
	}

	return nil
}

// IsConnected returns the current connection state.
func (r *Recorder) IsConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

// SetOnError sets a callback to be invoked when async write errors occur.
//
// Since writes are non-blocking, errors are delivered asynchronously.
// Use this callback to log or handle write failures.
func (r *Recorder) SetOnError(callback func(err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onError = callback
}

// Flush forces all pending writes to be sent to InfluxDB.
//
// This blocks until all buffered points are written.
// Safe to call after Close() (no-op).
func (r *Recorder) Flush() {
	if r.writeAPI == nil {
		return
	}

	r.mu.RLock()
	connected := r.connected
	r.mu.RUnlock()

	if !connected {
		return
	}

	r.writeAPI.Flush()
}
