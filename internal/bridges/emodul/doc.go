// Package emodulbridge translates between the eMODUL cloud and MQTT.
//
// The bridge is a coordinator listener: each module refresh fans out as
// retained per-zone and per-tile state messages plus a module status
// message. In the other direction it subscribes to the command topic tree
// and relays temperature and on/off commands back to the cloud.
//
// State is published retained so consumers joining late immediately see
// the last known snapshot; the module status topic tells them whether
// that snapshot is fresh.
package emodulbridge
