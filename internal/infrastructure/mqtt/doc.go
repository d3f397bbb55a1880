// Package mqtt provides MQTT client connectivity for the techbridge daemon.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The bridge publishes zone and tile state to retained topics and accepts
// zone commands on a command topic tree. Home-automation platforms (or any
// MQTT consumer) subscribe to state topics and publish commands:
//
//	eMODUL cloud ↔ techbridge ↔ MQTT Broker ↔ consumers
//
// # Topic Structure
//
//	tech/state/{udid}/zone/{id}      retained zone state (JSON)
//	tech/state/{udid}/tile/{id}      retained tile state (JSON)
//	tech/command/{udid}/zone/{id}/{action}   inbound commands
//	tech/module/{udid}/status        per-module availability
//	tech/bridge/status               bridge online/offline (LWT)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllZoneCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        // dispatch command
//	        return nil
//	    })
package mqtt
