package assets

import (
	"fmt"

	"github.com/daroga0002/tech-controllers/internal/emodul"
)

// DefaultIcon is used when a tile carries no recognized icon id or type.
const DefaultIcon = "mdi:eye"

// iconByID maps eMODUL icon ids to Material Design icon names.
var iconByID = map[int]string{
	50:  "mdi:thermometer",
	51:  "mdi:thermometer-lines",
	90:  "mdi:fire",
	101: "mdi:fan",
	102: "mdi:pump",
	103: "mdi:valve",
	104: "mdi:radiator",
	105: "mdi:water-boiler",
}

// iconByType maps tile types to Material Design icon names, used when a
// tile has no explicit icon id.
var iconByType = map[int]string{
	emodul.TileTypeTemperature:    "mdi:thermometer",
	emodul.TileTypeRelay:          "mdi:toggle-switch",
	emodul.TileTypeAdditionalPump: "mdi:pump",
	emodul.TileTypeFireSensor:     "mdi:fire-alert",
}

// txtIDByType maps tile types to the default text id naming them in the
// language pack.
var txtIDByType = map[int]int{
	emodul.TileTypeTemperature:    940,
	emodul.TileTypeRelay:          962,
	emodul.TileTypeAdditionalPump: 961,
	emodul.TileTypeFireSensor:     963,
}

// Icon resolves an icon id to an icon name, falling back to DefaultIcon.
func Icon(iconID int) string {
	if icon, ok := iconByID[iconID]; ok {
		return icon
	}
	return DefaultIcon
}

// IconByType resolves a tile type to an icon name, falling back to
// DefaultIcon. Used when the tile carries no icon id.
func IconByType(tileType int) string {
	if tileType == 0 {
		return DefaultIcon
	}
	if icon, ok := iconByType[tileType]; ok {
		return icon
	}
	return DefaultIcon
}

// Redact returns a rendering of data with the named keys hidden. Used when
// logging payloads that may carry credentials or tokens.
func Redact(data map[string]any, keys ...string) string {
	if len(data) == 0 {
		return fmt.Sprintf("%v", data)
	}

	sanitized := make(map[string]any, len(data))
	for k, v := range data {
		sanitized[k] = v
	}
	for _, key := range keys {
		if _, ok := sanitized[key]; ok {
			sanitized[key] = "***HIDDEN***"
		}
	}
	return fmt.Sprintf("%v", sanitized)
}
