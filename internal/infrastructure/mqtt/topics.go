package mqtt

import "fmt"

// TopicPrefix is the base for all bridge topics.
//
// Scheme:
//
//	tech/state/{udid}/zone/{zone_id}
//	tech/state/{udid}/tile/{tile_id}
//	tech/command/{udid}/zone/{zone_id}/{action}
//	tech/module/{udid}/status
//	tech/bridge/status
const TopicPrefix = "tech"

// Topics provides builders for the bridge's MQTT topics. Using these
// helpers keeps topic naming consistent across publisher and subscribers.
//
//	topics := mqtt.Topics{}
//	stateTopic := topics.ZoneState("a1b2c3", 101)
//	// Returns: "tech/state/a1b2c3/zone/101"
type Topics struct{}

// ZoneState returns the retained state topic for a zone.
//
// Example: tech/state/a1b2c3/zone/101
func (Topics) ZoneState(udid string, zoneID int) string {
	return fmt.Sprintf("%s/state/%s/zone/%d", TopicPrefix, udid, zoneID)
}

// TileState returns the retained state topic for a tile.
//
// Example: tech/state/a1b2c3/tile/12
func (Topics) TileState(udid string, tileID int) string {
	return fmt.Sprintf("%s/state/%s/tile/%d", TopicPrefix, udid, tileID)
}

// ZoneCommand returns the command topic for a zone action.
// Actions: "temperature" (set target), "state" (on/off).
//
// Example: tech/command/a1b2c3/zone/101/temperature
func (Topics) ZoneCommand(udid string, zoneID int, action string) string {
	return fmt.Sprintf("%s/command/%s/zone/%d/%s", TopicPrefix, udid, zoneID, action)
}

// ModuleStatus returns the availability topic for a module.
//
// Example: tech/module/a1b2c3/status
func (Topics) ModuleStatus(udid string) string {
	return fmt.Sprintf("%s/module/%s/status", TopicPrefix, udid)
}

// BridgeStatus returns the bridge's own status topic (also the LWT topic).
//
// Example: tech/bridge/status
func (Topics) BridgeStatus() string {
	return fmt.Sprintf("%s/bridge/status", TopicPrefix)
}

// AllZoneCommands returns a pattern matching every zone command.
//
// Pattern: tech/command/+/zone/+/+
func (Topics) AllZoneCommands() string {
	return fmt.Sprintf("%s/command/+/zone/+/+", TopicPrefix)
}

// AllStates returns a pattern matching every published state.
//
// Pattern: tech/state/#
func (Topics) AllStates() string {
	return fmt.Sprintf("%s/state/#", TopicPrefix)
}
