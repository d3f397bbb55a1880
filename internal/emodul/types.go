package emodul

import "time"

// Zone state values used by the eMODUL API.
const (
	// ZoneStateOn marks a zone that is switched on.
	ZoneStateOn = "zoneOn"

	// ZoneStateOff marks a zone that is switched off.
	ZoneStateOff = "zoneOff"

	// ZoneStateNoAlarm is reported by some controllers instead of zoneOn.
	ZoneStateNoAlarm = "noAlarm"

	// ZoneStateUnregistered marks a zone slot with no paired device.
	// Such zones are never admitted to the cache.
	ZoneStateUnregistered = "zoneUnregistered"
)

// Tile types as numbered by the eMODUL API.
const (
	TileTypeTemperature    = 1
	TileTypeRelay          = 11
	TileTypeAdditionalPump = 21
	TileTypeFireSensor     = 31
)

// Zone is a single zone entry from a module payload. The interesting data
// lives in the nested sub-records; the API sends entries with missing or
// null sub-records for unconfigured slots, which the cache filters out.
type Zone struct {
	Zone        *ZoneDetails     `json:"zone"`
	Description *ZoneDescription `json:"description,omitempty"`
	Mode        *ZoneMode        `json:"mode,omitempty"`
}

// ZoneDetails carries the live state of a zone. Temperatures are in tenths
// of a degree Celsius. Visibility is a pointer because its mere presence is
// part of the validity check.
type ZoneDetails struct {
	ID                 int       `json:"id"`
	ZoneState          string    `json:"zoneState"`
	Visibility         *bool     `json:"visibility,omitempty"`
	SetTemperature     *int      `json:"setTemperature,omitempty"`
	CurrentTemperature *int      `json:"currentTemperature,omitempty"`
	Humidity           *int      `json:"humidity,omitempty"`
	DuringChange       bool      `json:"duringChange,omitempty"`
	SignalStrength     *int      `json:"signalStrength,omitempty"`
	BatteryLevel       *int      `json:"batteryLevel,omitempty"`
	Flags              ZoneFlags `json:"flags,omitempty"`
}

// ZoneFlags carries the relay/algorithm sub-state used to derive whether a
// zone is actively heating or cooling.
type ZoneFlags struct {
	RelayState string `json:"relayState,omitempty"`
	Algorithm  string `json:"algorithm,omitempty"`
}

// ZoneDescription carries the user-assigned zone metadata.
type ZoneDescription struct {
	Name string `json:"name"`
}

// ZoneMode is the active operating mode of a zone. The mode id is required
// when constructing a temperature-change request.
type ZoneMode struct {
	ID             int    `json:"id"`
	ParentID       int    `json:"parentId"`
	Mode           string `json:"mode"`
	ConstTempTime  int    `json:"constTempTime"`
	SetTemperature int    `json:"setTemperature"`
	ScheduleIndex  int    `json:"scheduleIndex"`
}

// Tile is a generic device widget within a module (relay, sensor, pump).
// Only visible tiles are admitted to the cache.
type Tile struct {
	ID         int        `json:"id"`
	Type       int        `json:"type"`
	Visibility bool       `json:"visibility"`
	Params     TileParams `json:"params,omitempty"`
}

// TileParams is the per-type parameter bag of a tile. Only the fields the
// bridge consumes are modelled; the API sends many more.
type TileParams struct {
	Description   string `json:"description,omitempty"`
	WorkingStatus bool   `json:"workingStatus,omitempty"`
	IconID        int    `json:"iconId,omitempty"`
	TxtID         int    `json:"txtId,omitempty"`
	Temperature   *int   `json:"temperature,omitempty"`
}

// Module is one entry from the authenticated user's module listing.
type Module struct {
	ID      int    `json:"id"`
	UDID    string `json:"udid"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// ModuleState is a point-in-time snapshot of a module's cached state.
// Snapshots returned by the client are deep copies; mutating one never
// affects the cache.
type ModuleState struct {
	LastUpdate *time.Time
	Zones      map[int]Zone
	Tiles      map[int]Tile
}

// moduleResponse is the wire shape of the module-detail endpoint.
// Zone entries arrive nested under zones.elements.
type moduleResponse struct {
	Zones struct {
		Elements []*Zone `json:"elements"`
	} `json:"zones"`
	Tiles []*Tile `json:"tiles"`
}

// authRequest is the wire shape of the authentication endpoint request.
type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse is the wire shape of the authentication endpoint response.
// user_id arrives as a JSON number; it is stored as a string because all
// subsequent request paths embed it verbatim.
type authResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        int64  `json:"user_id"`
	Token         string `json:"token"`
}

// Translations is a language pack from the i18n endpoint: numeric text ids
// mapped to localised strings.
type Translations struct {
	Data map[string]string `json:"data"`
}
