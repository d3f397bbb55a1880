// Package config provides configuration loading for the Tech Controllers bridge.
//
// Configuration is read from a YAML file, merged over hardcoded defaults,
// and finally overridden by TECHBRIDGE_* environment variables. Secrets
// (the eMODUL password, MQTT password, InfluxDB token) are expected to come
// from the environment in production deployments.
//
// # Example
//
//	emodul:
//	  username: "user@example.com"
//	  poll_interval: 60
//	  language: "pl"
//	  modules:
//	    - udid: "a1b2c3d4e5"
//	      name: "House"
//	mqtt:
//	  enabled: true
//	  broker:
//	    host: "localhost"
//	    port: 1883
//	logging:
//	  level: "info"
//	  format: "json"
package config
