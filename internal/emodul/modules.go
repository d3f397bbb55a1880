package emodul

import (
	"context"
	"fmt"
	"time"
)

// ListModules returns the modules registered to the authenticated user.
func (c *Client) ListModules(ctx context.Context) ([]Module, error) {
	var modules []Module
	if err := c.get(ctx, fmt.Sprintf("users/%s/modules", c.UserID()), &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

// getModuleData fetches the full module payload (zones and tiles) in one
// round trip.
func (c *Client) getModuleData(ctx context.Context, udid string) (*moduleResponse, error) {
	var resp moduleResponse
	path := fmt.Sprintf("users/%s/modules/%s", c.UserID(), udid)
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetModuleZones fetches the module payload, merges its zones into the
// cache and returns a copy of the full merged zone map, including entries
// from earlier refreshes that this response did not mention.
//
// Callers needing both zones and tiles should prefer RefreshModule, which
// does both from a single fetch.
func (c *Client) GetModuleZones(ctx context.Context, udid string) (map[int]Zone, error) {
	c.cacheMu.Lock()
	c.ensureModule(udid)
	c.cacheMu.Unlock()

	resp, err := c.getModuleData(ctx, udid)
	if err != nil {
		return nil, err
	}

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	m := c.ensureModule(udid)
	merged := m.mergeZones(resp.Zones.Elements)
	c.debugf("merged zones", "udid", udid, "merged", merged, "cached", len(m.zones))

	return m.snapshot().Zones, nil
}

// GetModuleTiles fetches the module payload, merges its tiles into the
// cache and returns a copy of the full merged tile map.
func (c *Client) GetModuleTiles(ctx context.Context, udid string) (map[int]Tile, error) {
	c.cacheMu.Lock()
	c.ensureModule(udid)
	c.cacheMu.Unlock()

	resp, err := c.getModuleData(ctx, udid)
	if err != nil {
		return nil, err
	}

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	m := c.ensureModule(udid)
	merged := m.mergeTiles(resp.Tiles)
	c.debugf("merged tiles", "udid", udid, "merged", merged, "cached", len(m.tiles))

	return m.snapshot().Tiles, nil
}

// GetZone refreshes the module's zones and returns the requested zone, or
// ErrZoneNotFound if the id is still absent afterwards.
func (c *Client) GetZone(ctx context.Context, udid string, zoneID int) (Zone, error) {
	zones, err := c.GetModuleZones(ctx, udid)
	if err != nil {
		return Zone{}, err
	}

	zone, ok := zones[zoneID]
	if !ok {
		return Zone{}, fmt.Errorf("%w: zone %d in module %s", ErrZoneNotFound, zoneID, udid)
	}
	return zone, nil
}

// GetTile refreshes the module's tiles and returns the requested tile, or
// ErrTileNotFound if the id is still absent afterwards.
func (c *Client) GetTile(ctx context.Context, udid string, tileID int) (Tile, error) {
	tiles, err := c.GetModuleTiles(ctx, udid)
	if err != nil {
		return Tile{}, err
	}

	tile, ok := tiles[tileID]
	if !ok {
		return Tile{}, fmt.Errorf("%w: tile %d in module %s", ErrTileNotFound, tileID, udid)
	}
	return tile, nil
}

// RefreshModule performs a full fetch-and-merge cycle for one module and
// returns the resulting snapshot.
//
// Refreshes are serialised client-wide: concurrent calls for any module
// queue behind the in-flight one, so a slow poll never stacks duplicate
// module-payload fetches onto the same session. An AuthError propagates
// untouched so the caller can trigger re-authentication; any other failure
// is wrapped as a refresh failure.
func (c *Client) RefreshModule(ctx context.Context, udid string) (ModuleState, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	now := time.Now()

	c.cacheMu.Lock()
	c.ensureModule(udid)
	c.cacheMu.Unlock()

	c.debugf("refreshing module", "udid", udid)

	resp, err := c.getModuleData(ctx, udid)
	if err != nil {
		if IsAuthError(err) {
			return ModuleState{}, err
		}
		return ModuleState{}, fmt.Errorf("refreshing module %s: %w", udid, err)
	}

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	m := c.ensureModule(udid)
	zones := m.mergeZones(resp.Zones.Elements)
	tiles := m.mergeTiles(resp.Tiles)
	m.lastUpdate = &now

	c.debugf("module refreshed",
		"udid", udid,
		"zones_merged", zones,
		"tiles_merged", tiles,
	)

	return m.snapshot(), nil
}
