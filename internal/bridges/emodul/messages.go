package emodulbridge

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/daroga0002/tech-controllers/internal/emodul"
)

// HVAC mode and action values published in zone state messages.
const (
	ModeHeat = "heat"
	ModeOff  = "off"

	ActionHeating = "heating"
	ActionCooling = "cooling"
	ActionIdle    = "idle"
	ActionOff     = "off"
)

// Zone flag values from the eMODUL API.
const (
	relayOn          = "on"
	relayOff         = "off"
	algorithmHeating = "heating"
	algorithmCooling = "cooling"
)

// Command actions accepted on the command topic tree.
const (
	ActionTemperature = "temperature"
	ActionState       = "state"
)

// ZoneStateMessage is the retained JSON state published per zone.
//
// Temperatures are in degrees Celsius (the API's tenths are converted on
// the way out). Nullable fields are omitted when the API reported no value.
type ZoneStateMessage struct {
	ID                 int      `json:"id"`
	Name               string   `json:"name,omitempty"`
	CurrentTemperature *float64 `json:"current_temperature,omitempty"`
	TargetTemperature  *float64 `json:"target_temperature,omitempty"`
	Humidity           *int     `json:"humidity,omitempty"`
	Mode               string   `json:"mode"`
	Action             string   `json:"action"`
	BatteryLevel       *int     `json:"battery_level,omitempty"`
	SignalStrength     *int     `json:"signal_strength,omitempty"`
	UpdatedAt          string   `json:"updated_at"`
}

// TileStateMessage is the retained JSON state published per tile.
type TileStateMessage struct {
	ID          int      `json:"id"`
	Type        int      `json:"type"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Working     bool     `json:"working"`
	Temperature *float64 `json:"temperature,omitempty"`
	UpdatedAt   string   `json:"updated_at"`
}

// ModuleStatusMessage reports per-module polling health.
type ModuleStatusMessage struct {
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	LastUpdate string `json:"last_update,omitempty"`
}

// TemperatureCommand is the payload for the temperature command action.
type TemperatureCommand struct {
	Temperature float64 `json:"temperature"`
}

// StateCommand is the payload for the state command action.
type StateCommand struct {
	On bool `json:"on"`
}

// zoneAction derives the running HVAC action from zone flags.
//
// A closed relay is heating or cooling depending on the controller's
// algorithm; an open relay is idle; missing flags mean the zone is off.
func zoneAction(flags emodul.ZoneFlags) string {
	switch flags.RelayState {
	case relayOn:
		switch flags.Algorithm {
		case algorithmHeating:
			return ActionHeating
		case algorithmCooling:
			return ActionCooling
		default:
			return ActionIdle
		}
	case relayOff:
		return ActionIdle
	default:
		return ActionOff
	}
}

// zoneMode derives the HVAC mode from the zone state string.
func zoneMode(zoneState string) string {
	if zoneState == emodul.ZoneStateOn || zoneState == emodul.ZoneStateNoAlarm {
		return ModeHeat
	}
	return ModeOff
}

// parseTemperatureCommand decodes a temperature command payload.
// Accepts either {"temperature": 21.5} or a bare number.
func parseTemperatureCommand(payload []byte) (float64, error) {
	var cmd TemperatureCommand
	if err := json.Unmarshal(payload, &cmd); err == nil && cmd.Temperature != 0 {
		return cmd.Temperature, nil
	}

	var raw float64
	if err := json.Unmarshal(payload, &raw); err == nil && raw != 0 {
		return raw, nil
	}

	return 0, fmt.Errorf("%w: %s", ErrInvalidPayload, payload)
}

// parseStateCommand decodes a state command payload.
// Accepts {"on": true}, "on"/"off", or a bare boolean.
func parseStateCommand(payload []byte) (bool, error) {
	var cmd StateCommand
	if err := json.Unmarshal(payload, &cmd); err == nil {
		// Distinguish {"on":false} from a non-object payload: a bare
		// bool or string also unmarshals into an error here.
		var probe map[string]json.RawMessage
		if probeErr := json.Unmarshal(payload, &probe); probeErr == nil {
			if _, ok := probe["on"]; ok {
				return cmd.On, nil
			}
			return false, fmt.Errorf("%w: %s", ErrInvalidPayload, payload)
		}
	}

	var rawBool bool
	if err := json.Unmarshal(payload, &rawBool); err == nil {
		return rawBool, nil
	}

	var rawString string
	if err := json.Unmarshal(payload, &rawString); err == nil {
		switch rawString {
		case "on", "ON":
			return true, nil
		case "off", "OFF":
			return false, nil
		}
	}

	return false, fmt.Errorf("%w: %s", ErrInvalidPayload, payload)
}

// timestamp renders a message timestamp in the wire format.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
