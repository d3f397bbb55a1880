package emodul

import (
	"context"
	"fmt"
)

// constTempTime is the duration, in minutes, the controller holds a
// constant-temperature override set through the API.
const constTempTime = 60

// tenthsPerDegree is the temperature scaling the API uses: setpoints are
// integers in tenths of a degree Celsius.
const tenthsPerDegree = 10

// zoneModeRequest is the wire shape of a constant-temperature mode change.
type zoneModeRequest struct {
	Mode zoneModeBody `json:"mode"`
}

type zoneModeBody struct {
	ID             int    `json:"id"`
	ParentID       int    `json:"parentId"`
	Mode           string `json:"mode"`
	ConstTempTime  int    `json:"constTempTime"`
	SetTemperature int    `json:"setTemperature"`
	ScheduleIndex  int    `json:"scheduleIndex"`
}

// zoneStateRequest is the wire shape of a zone on/off toggle.
type zoneStateRequest struct {
	Zone zoneStateBody `json:"zone"`
}

type zoneStateBody struct {
	ID        int    `json:"id"`
	ZoneState string `json:"zoneState"`
}

// SetZoneTemperature sets a constant-temperature override on a zone.
//
// The request embeds the zone's current mode id, so the zone must be in
// the cache; a zone refresh is triggered to make sure it is, and
// ErrZoneNotFound is returned if the id is still absent. targetTemp is in
// degrees Celsius and is scaled to tenths, truncating toward zero.
//
// The cached setpoint is not updated here; the next refresh observes the
// effect.
func (c *Client) SetZoneTemperature(ctx context.Context, udid string, zoneID int, targetTemp float64) error {
	zone, err := c.GetZone(ctx, udid, zoneID)
	if err != nil {
		return err
	}
	if zone.Mode == nil {
		return fmt.Errorf("%w: zone %d in module %s has no mode record", ErrZoneNotFound, zoneID, udid)
	}

	c.debugf("setting zone temperature",
		"udid", udid,
		"zone_id", zoneID,
		"target", targetTemp,
	)

	req := zoneModeRequest{
		Mode: zoneModeBody{
			ID:             zone.Mode.ID,
			ParentID:       zoneID,
			Mode:           "constantTemp",
			ConstTempTime:  constTempTime,
			SetTemperature: int(targetTemp * tenthsPerDegree),
			ScheduleIndex:  0,
		},
	}

	path := fmt.Sprintf("users/%s/modules/%s/zones", c.UserID(), udid)
	return c.post(ctx, path, req, nil)
}

// SetZoneOnOff turns a zone on or off. Unlike SetZoneTemperature this
// needs nothing from the cache; the request is built from the ids alone.
func (c *Client) SetZoneOnOff(ctx context.Context, udid string, zoneID int, on bool) error {
	state := ZoneStateOff
	if on {
		state = ZoneStateOn
	}

	c.debugf("setting zone state",
		"udid", udid,
		"zone_id", zoneID,
		"state", state,
	)

	req := zoneStateRequest{
		Zone: zoneStateBody{
			ID:        zoneID,
			ZoneState: state,
		},
	}

	path := fmt.Sprintf("users/%s/modules/%s/zones", c.UserID(), udid)
	return c.post(ctx, path, req, nil)
}
