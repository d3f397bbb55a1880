package emodulbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/daroga0002/tech-controllers/internal/assets"
	"github.com/daroga0002/tech-controllers/internal/emodul"
	"github.com/daroga0002/tech-controllers/internal/infrastructure/mqtt"
)

// Topic layout: tech/command/{udid}/zone/{id}/{action} splits into 6 parts.
const commandTopicParts = 6

// commandTimeout bounds the cloud round-trip for a single command.
const commandTimeout = 30 * time.Second

// tenthsPerDegree converts API temperature values to degrees Celsius.
const tenthsPerDegree = 10.0

// MQTTClient is the MQTT surface the bridge needs.
// Satisfied by *mqtt.Client; a fake stands in for tests.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	IsConnected() bool
}

// CommandSender dispatches zone commands to the cloud.
// Satisfied by *emodul.Client.
type CommandSender interface {
	SetZoneTemperature(ctx context.Context, udid string, zoneID int, targetTemp float64) error
	SetZoneOnOff(ctx context.Context, udid string, zoneID int, on bool) error
}

// Logger interface for structured logging.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options holds configuration for creating a bridge.
type Options struct {
	// MQTT is the broker connection. Required.
	MQTT MQTTClient

	// Commands dispatches zone commands to the cloud. Required.
	Commands CommandSender

	// Translations resolves tile names. Optional; without it tiles get
	// fallback names.
	Translations *assets.TranslationManager

	// QoS for published state and subscribed commands.
	QoS byte

	// Logger is optional.
	Logger Logger
}

// Bridge publishes module state to MQTT and relays commands back to the
// eMODUL cloud.
//
// It implements coordinator.Listener: each successful refresh publishes
// retained zone and tile state plus an online module status; a failed
// refresh publishes an offline status so consumers can mark entities
// unavailable.
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	mqtt         MQTTClient
	commands     CommandSender
	translations *assets.TranslationManager
	qos          byte

	// lastTarget remembers the previously published target temperature
	// per zone. While a zone reports duringChange, the cloud echoes a
	// stale setpoint, so the bridge keeps publishing the last good one.
	lastTarget map[string]float64
	targetMu   sync.Mutex

	logger   Logger
	loggerMu sync.RWMutex
}

// New creates a bridge. Call Start to subscribe to command topics.
func New(opts Options) (*Bridge, error) {
	if opts.MQTT == nil {
		return nil, fmt.Errorf("mqtt client is required")
	}
	if opts.Commands == nil {
		return nil, fmt.Errorf("command sender is required")
	}

	return &Bridge{
		mqtt:         opts.MQTT,
		commands:     opts.Commands,
		translations: opts.Translations,
		qos:          opts.QoS,
		lastTarget:   make(map[string]float64),
		logger:       opts.Logger,
	}, nil
}

// Start subscribes to the zone command topic tree.
func (b *Bridge) Start() error {
	topic := mqtt.Topics{}.AllZoneCommands()
	if err := b.mqtt.Subscribe(topic, b.qos, b.handleCommand); err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}

	b.logf().Info("bridge started", "command_topic", topic)
	return nil
}

// OnModuleUpdate publishes retained state for every zone and tile in the
// snapshot, then marks the module online.
func (b *Bridge) OnModuleUpdate(_ context.Context, udid string, state emodul.ModuleState) {
	for id, zone := range state.Zones {
		b.publishZone(udid, id, zone, state.LastUpdate)
	}
	for id, tile := range state.Tiles {
		b.publishTile(udid, id, tile, state.LastUpdate)
	}

	status := ModuleStatusMessage{Status: "online"}
	if state.LastUpdate != nil {
		status.LastUpdate = timestamp(*state.LastUpdate)
	}
	b.publishStatus(udid, status)
}

// OnModuleError marks the module offline. Retained zone and tile state is
// left in place; consumers decide whether stale state is usable.
func (b *Bridge) OnModuleError(_ context.Context, udid string, err error) {
	b.publishStatus(udid, ModuleStatusMessage{
		Status: "offline",
		Error:  err.Error(),
	})
}

// publishZone converts a zone snapshot to a state message and publishes it.
func (b *Bridge) publishZone(udid string, id int, zone emodul.Zone, lastUpdate *time.Time) {
	if zone.Zone == nil {
		return
	}

	msg := ZoneStateMessage{
		ID:     id,
		Mode:   zoneMode(zone.Zone.ZoneState),
		Action: zoneAction(zone.Zone.Flags),
	}
	if zone.Description != nil {
		msg.Name = zone.Description.Name
	}
	if lastUpdate != nil {
		msg.UpdatedAt = timestamp(*lastUpdate)
	}

	if zone.Zone.CurrentTemperature != nil {
		current := float64(*zone.Zone.CurrentTemperature) / tenthsPerDegree
		msg.CurrentTemperature = &current
	}

	msg.TargetTemperature = b.targetTemperature(udid, id, zone.Zone)

	if zone.Zone.Humidity != nil && *zone.Zone.Humidity >= 0 {
		msg.Humidity = zone.Zone.Humidity
	}

	msg.BatteryLevel = zone.Zone.BatteryLevel
	msg.SignalStrength = zone.Zone.SignalStrength

	b.publishJSON(mqtt.Topics{}.ZoneState(udid, id), msg)
}

// targetTemperature resolves the target setpoint to publish. While the
// zone reports duringChange the cloud still echoes the old setpoint, so
// the last published value wins until the change settles.
func (b *Bridge) targetTemperature(udid string, id int, details *emodul.ZoneDetails) *float64 {
	key := udid + "/" + strconv.Itoa(id)

	b.targetMu.Lock()
	defer b.targetMu.Unlock()

	if details.SetTemperature == nil {
		delete(b.lastTarget, key)
		return nil
	}

	if details.DuringChange {
		if last, ok := b.lastTarget[key]; ok {
			return &last
		}
		return nil
	}

	target := float64(*details.SetTemperature) / tenthsPerDegree
	b.lastTarget[key] = target
	return &target
}

// publishTile converts a tile snapshot to a state message and publishes it.
func (b *Bridge) publishTile(udid string, id int, tile emodul.Tile, lastUpdate *time.Time) {
	msg := TileStateMessage{
		ID:      id,
		Type:    tile.Type,
		Name:    b.tileName(tile),
		Icon:    tileIcon(tile),
		Working: tile.Params.WorkingStatus,
	}
	if lastUpdate != nil {
		msg.UpdatedAt = timestamp(*lastUpdate)
	}
	if tile.Params.Temperature != nil {
		temp := float64(*tile.Params.Temperature) / tenthsPerDegree
		msg.Temperature = &temp
	}

	b.publishJSON(mqtt.Topics{}.TileState(udid, id), msg)
}

// tileName resolves a display name: explicit description first, then the
// tile's text id, then the type's default label.
func (b *Bridge) tileName(tile emodul.Tile) string {
	if tile.Params.Description != "" {
		return tile.Params.Description
	}
	if b.translations == nil {
		return fmt.Sprintf("txtId %d", tile.Params.TxtID)
	}
	if tile.Params.TxtID != 0 {
		return b.translations.Text(tile.Params.TxtID)
	}
	return b.translations.TextByType(tile.Type)
}

// tileIcon resolves an icon: explicit icon id first, then the type default.
func tileIcon(tile emodul.Tile) string {
	if tile.Params.IconID != 0 {
		return assets.Icon(tile.Params.IconID)
	}
	return assets.IconByType(tile.Type)
}

func (b *Bridge) publishStatus(udid string, msg ModuleStatusMessage) {
	b.publishJSON(mqtt.Topics{}.ModuleStatus(udid), msg)
}

func (b *Bridge) publishJSON(topic string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		b.logf().Error("marshalling state message", "topic", topic, "error", err)
		return
	}
	if err := b.mqtt.PublishRetained(topic, payload); err != nil {
		b.logf().Warn("publishing state failed", "topic", topic, "error", err)
	}
}

// handleCommand dispatches an inbound command message.
//
// The topic carries the routing: tech/command/{udid}/zone/{id}/{action}.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	udid, zoneID, action, err := parseCommandTopic(topic)
	if err != nil {
		b.logf().Warn("dropping command", "topic", topic, "error", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch action {
	case ActionTemperature:
		target, parseErr := parseTemperatureCommand(payload)
		if parseErr != nil {
			b.logf().Warn("dropping command", "topic", topic, "error", parseErr)
			return parseErr
		}
		if cmdErr := b.commands.SetZoneTemperature(ctx, udid, zoneID, target); cmdErr != nil {
			b.logf().Error("set temperature failed", "udid", udid, "zone", zoneID, "error", cmdErr)
			return cmdErr
		}
		b.logf().Info("set temperature", "udid", udid, "zone", zoneID, "target", target)

	case ActionState:
		on, parseErr := parseStateCommand(payload)
		if parseErr != nil {
			b.logf().Warn("dropping command", "topic", topic, "error", parseErr)
			return parseErr
		}
		if cmdErr := b.commands.SetZoneOnOff(ctx, udid, zoneID, on); cmdErr != nil {
			b.logf().Error("set zone state failed", "udid", udid, "zone", zoneID, "error", cmdErr)
			return cmdErr
		}
		b.logf().Info("set zone state", "udid", udid, "zone", zoneID, "on", on)

	default:
		err := fmt.Errorf("%w: %s", ErrUnknownAction, action)
		b.logf().Warn("dropping command", "topic", topic, "error", err)
		return err
	}

	return nil
}

// parseCommandTopic extracts routing from a command topic.
func parseCommandTopic(topic string) (udid string, zoneID int, action string, err error) {
	parts := strings.Split(topic, "/")
	if len(parts) != commandTopicParts || parts[0] != mqtt.TopicPrefix || parts[1] != "command" || parts[3] != "zone" {
		return "", 0, "", fmt.Errorf("%w: %s", ErrInvalidTopic, topic)
	}

	zoneID, convErr := strconv.Atoi(parts[4])
	if convErr != nil {
		return "", 0, "", fmt.Errorf("%w: bad zone id in %s", ErrInvalidTopic, topic)
	}

	return parts[2], zoneID, parts[5], nil
}

// SetLogger sets a logger. If unset, the bridge logs nowhere.
func (b *Bridge) SetLogger(logger Logger) {
	b.loggerMu.Lock()
	b.logger = logger
	b.loggerMu.Unlock()
}

// logf returns the current logger, or a no-op one.
func (b *Bridge) logf() Logger {
	b.loggerMu.RLock()
	defer b.loggerMu.RUnlock()
	if b.logger == nil {
		return noopLogger{}
	}
	return b.logger
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
