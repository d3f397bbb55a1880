package emodul

import "time"

// moduleState is the mutable cached state of one module. All access goes
// through the client's cacheMu.
type moduleState struct {
	lastUpdate *time.Time
	zones      map[int]Zone
	tiles      map[int]Tile
}

// ensureModule returns the cached state for udid, creating an empty record
// on first access. Callers must hold cacheMu.
func (c *Client) ensureModule(udid string) *moduleState {
	m, ok := c.modules[udid]
	if !ok {
		m = &moduleState{
			zones: make(map[int]Zone),
			tiles: make(map[int]Tile),
		}
		c.modules[udid] = m
	}
	return m
}

// validZone reports whether a zone entry may enter the cache: it must be
// non-null, carry a non-null zone sub-record that includes a visibility
// field, and must not be an unregistered slot. Anything else is dropped
// silently; partial entries in a large device list are expected.
func validZone(z *Zone) bool {
	return z != nil &&
		z.Zone != nil &&
		z.Zone.Visibility != nil &&
		z.Zone.ZoneState != ZoneStateUnregistered
}

// validTile reports whether a tile entry may enter the cache: it must be
// non-null and visible.
func validTile(t *Tile) bool {
	return t != nil && t.Visibility
}

// mergeZones folds filtered zones into a module's cache by zone id.
// Entries absent from this batch are left untouched; the cache only grows
// or updates, it never forgets until explicitly cleared. Callers must hold
// cacheMu.
func (m *moduleState) mergeZones(zones []*Zone) int {
	merged := 0
	for _, z := range zones {
		if !validZone(z) {
			continue
		}
		m.zones[z.Zone.ID] = *z
		merged++
	}
	return merged
}

// mergeTiles folds filtered tiles into a module's cache by tile id, with
// the same monotonic semantics as mergeZones. Callers must hold cacheMu.
func (m *moduleState) mergeTiles(tiles []*Tile) int {
	merged := 0
	for _, t := range tiles {
		if !validTile(t) {
			continue
		}
		m.tiles[t.ID] = *t
		merged++
	}
	return merged
}

// snapshot returns a deep copy of the module state. Callers must hold
// cacheMu.
func (m *moduleState) snapshot() ModuleState {
	s := ModuleState{
		Zones: make(map[int]Zone, len(m.zones)),
		Tiles: make(map[int]Tile, len(m.tiles)),
	}
	for id, z := range m.zones {
		s.Zones[id] = z
	}
	for id, t := range m.tiles {
		s.Tiles[id] = t
	}
	if m.lastUpdate != nil {
		ts := *m.lastUpdate
		s.LastUpdate = &ts
	}
	return s
}

// ClearModuleCache resets one module's cached state to empty. The module
// record itself survives; the next refresh repopulates it. No network
// effect.
func (c *Client) ClearModuleCache(udid string) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	if _, ok := c.modules[udid]; ok {
		c.modules[udid] = &moduleState{
			zones: make(map[int]Zone),
			tiles: make(map[int]Tile),
		}
		c.debugf("cleared module cache", "udid", udid)
	}
}

// ClearCache drops the cached state of every module. No network effect.
func (c *Client) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.modules = make(map[string]*moduleState)
	c.debugf("cleared all module caches")
}

// ModuleLastUpdate returns the last successful refresh time for a module.
// The second return is false when the module was never refreshed (or never
// accessed).
func (c *Client) ModuleLastUpdate(udid string) (time.Time, bool) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	m, ok := c.modules[udid]
	if !ok || m.lastUpdate == nil {
		return time.Time{}, false
	}
	return *m.lastUpdate, true
}
