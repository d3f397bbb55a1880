package emodul

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"testing"
)

// moduleHandler serves the same module payload for every request.
type moduleHandler struct {
	payload string
}

func (h *moduleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(h.payload)) //nolint:errcheck
}

func TestGetModuleZones_FiltersInvalidEntries(t *testing.T) {
	// One valid zone surrounded by every invalid shape the API produces:
	// a null entry, an entry without a zone sub-record, a null sub-record,
	// a sub-record without a visibility field, and an unregistered slot.
	payload := `{
		"zones": {"elements": [
			null,
			{"description": {"name": "No zone record"}},
			{"zone": null},
			{"zone": {"id": 2, "zoneState": "zoneOn"}},
			{"zone": {"id": 3, "zoneState": "zoneUnregistered", "visibility": true}},
			{"zone": {"id": 1, "zoneState": "zoneOn", "visibility": true, "currentTemperature": 216}}
		]},
		"tiles": []
	}`
	c := newTestClient(t, &moduleHandler{payload: payload})

	zones, err := c.GetModuleZones(context.Background(), "udid-1")
	if err != nil {
		t.Fatalf("GetModuleZones() error = %v", err)
	}

	if len(zones) != 1 {
		t.Fatalf("cached zones = %d, want 1 (invalid entries must be dropped)", len(zones))
	}
	zone, ok := zones[1]
	if !ok {
		t.Fatal("zone 1 missing from cache")
	}
	if zone.Zone.CurrentTemperature == nil || *zone.Zone.CurrentTemperature != 216 {
		t.Errorf("zone 1 currentTemperature = %v, want 216", zone.Zone.CurrentTemperature)
	}
}

func TestGetModuleTiles_FiltersInvisibleEntries(t *testing.T) {
	payload := `{
		"zones": {"elements": []},
		"tiles": [
			null,
			{"id": 10, "type": 11, "visibility": false},
			{"id": 11, "type": 11},
			{"id": 12, "type": 31, "visibility": true, "params": {"workingStatus": true}}
		]
	}`
	c := newTestClient(t, &moduleHandler{payload: payload})

	tiles, err := c.GetModuleTiles(context.Background(), "udid-1")
	if err != nil {
		t.Fatalf("GetModuleTiles() error = %v", err)
	}

	if len(tiles) != 1 {
		t.Fatalf("cached tiles = %d, want 1 (invisible tiles must be dropped)", len(tiles))
	}
	if _, ok := tiles[12]; !ok {
		t.Error("tile 12 missing from cache")
	}
}

func TestMerge_IsMonotonic(t *testing.T) {
	h := &moduleHandler{payload: `{
		"zones": {"elements": [
			{"zone": {"id": 1, "zoneState": "zoneOn", "visibility": true, "setTemperature": 200}},
			{"zone": {"id": 2, "zoneState": "zoneOn", "visibility": true, "setTemperature": 210}}
		]},
		"tiles": []
	}`}
	c := newTestClient(t, h)

	if _, err := c.GetModuleZones(context.Background(), "udid-1"); err != nil {
		t.Fatalf("first refresh error = %v", err)
	}

	// Second response drops zone 1 and changes zone 2.
	h.payload = `{
		"zones": {"elements": [
			{"zone": {"id": 2, "zoneState": "zoneOn", "visibility": true, "setTemperature": 225}}
		]},
		"tiles": []
	}`

	zones, err := c.GetModuleZones(context.Background(), "udid-1")
	if err != nil {
		t.Fatalf("second refresh error = %v", err)
	}

	zone1, ok := zones[1]
	if !ok {
		t.Fatal("zone 1 was deleted by a response that omitted it")
	}
	if *zone1.Zone.SetTemperature != 200 {
		t.Errorf("zone 1 setTemperature = %d, want unchanged 200", *zone1.Zone.SetTemperature)
	}
	if *zones[2].Zone.SetTemperature != 225 {
		t.Errorf("zone 2 setTemperature = %d, want updated 225", *zones[2].Zone.SetTemperature)
	}
}

func TestRefresh_IsIdempotent(t *testing.T) {
	c := newTestClient(t, &moduleHandler{payload: `{
		"zones": {"elements": [
			{"zone": {"id": 1, "zoneState": "zoneOn", "visibility": true, "setTemperature": 200, "humidity": 45}}
		]},
		"tiles": [{"id": 5, "type": 11, "visibility": true, "params": {"workingStatus": false}}]
	}`})

	first, err := c.RefreshModule(context.Background(), "udid-1")
	if err != nil {
		t.Fatalf("RefreshModule() error = %v", err)
	}

	var last ModuleState
	for i := 0; i < 4; i++ {
		last, err = c.RefreshModule(context.Background(), "udid-1")
		if err != nil {
			t.Fatalf("RefreshModule() #%d error = %v", i+2, err)
		}
	}

	if !reflect.DeepEqual(first.Zones, last.Zones) {
		t.Errorf("zones after repeated refresh differ: %v vs %v", first.Zones, last.Zones)
	}
	if !reflect.DeepEqual(first.Tiles, last.Tiles) {
		t.Errorf("tiles after repeated refresh differ: %v vs %v", first.Tiles, last.Tiles)
	}
}

func TestCache_ScopedPerModule(t *testing.T) {
	srvMux := http.NewServeMux()
	for udid, zoneID := range map[string]int{"udid-a": 1, "udid-b": 9} {
		payload := fmt.Sprintf(`{
			"zones": {"elements": [{"zone": {"id": %d, "zoneState": "zoneOn", "visibility": true}}]},
			"tiles": []
		}`, zoneID)
		srvMux.Handle("/users/240/modules/"+udid, &moduleHandler{payload: payload})
	}
	c := newTestClient(t, srvMux)

	zonesA, err := c.GetModuleZones(context.Background(), "udid-a")
	if err != nil {
		t.Fatalf("GetModuleZones(udid-a) error = %v", err)
	}
	zonesB, err := c.GetModuleZones(context.Background(), "udid-b")
	if err != nil {
		t.Fatalf("GetModuleZones(udid-b) error = %v", err)
	}

	if _, ok := zonesA[1]; !ok || len(zonesA) != 1 {
		t.Errorf("udid-a zones = %v, want only zone 1", zonesA)
	}
	if _, ok := zonesB[9]; !ok || len(zonesB) != 1 {
		t.Errorf("udid-b zones = %v, want only zone 9", zonesB)
	}
}

func TestClearModuleCache(t *testing.T) {
	c := newTestClient(t, &moduleHandler{payload: `{
		"zones": {"elements": [{"zone": {"id": 1, "zoneState": "zoneOn", "visibility": true}}]},
		"tiles": []
	}`})

	if _, err := c.RefreshModule(context.Background(), "udid-1"); err != nil {
		t.Fatalf("RefreshModule() error = %v", err)
	}
	if _, ok := c.ModuleLastUpdate("udid-1"); !ok {
		t.Fatal("ModuleLastUpdate() missing after refresh")
	}

	c.ClearModuleCache("udid-1")

	if _, ok := c.ModuleLastUpdate("udid-1"); ok {
		t.Error("ModuleLastUpdate() still set after ClearModuleCache")
	}

	// Clearing an unknown module is a no-op, not a panic.
	c.ClearModuleCache("udid-unknown")

	c.ClearCache()
	if _, ok := c.ModuleLastUpdate("udid-1"); ok {
		t.Error("ModuleLastUpdate() still set after ClearCache")
	}
}

func TestGetZone_NotFound(t *testing.T) {
	c := newTestClient(t, &moduleHandler{payload: `{
		"zones": {"elements": [{"zone": {"id": 1, "zoneState": "zoneOn", "visibility": true}}]},
		"tiles": []
	}`})

	if _, err := c.GetZone(context.Background(), "udid-1", 1); err != nil {
		t.Fatalf("GetZone(1) error = %v", err)
	}

	_, err := c.GetZone(context.Background(), "udid-1", 42)
	if !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("GetZone(42) error = %v, want ErrZoneNotFound", err)
	}

	_, err = c.GetTile(context.Background(), "udid-1", 42)
	if !errors.Is(err, ErrTileNotFound) {
		t.Errorf("GetTile(42) error = %v, want ErrTileNotFound", err)
	}
}
