package models

import (
	"strings"
	"time"
)

// N2Device is a single field controller discovered by an N2 driver export.
type N2Device struct {
	Name    string   `json:"name"`
	Address int      `json:"address"`
	Status  []string `json:"status"`
	Type    string   `json:"type"`
	// RawType preserves the original "Unknown code: N" text when the
	// controller type could not be normalized.
	RawType string `json:"raw_type,omitempty"`
}

// HasStatus reports whether the device carries the given status token.
func (d N2Device) HasStatus(token string) bool {
	for _, s := range d.Status {
		if s == token {
			return true
		}
	}
	return false
}

// Faulty reports whether the device is in any non-ok state.
func (d N2Device) Faulty() bool {
	for _, s := range d.Status {
		switch s {
		case StatusDown, StatusAlarm, StatusUnackedAlarm, StatusFault, StatusError:
			return true
		}
	}
	return false
}

// BACnetDevice is a device row from a BACnet driver export.
type BACnetDevice struct {
	Name     string   `json:"name"`
	DeviceID int      `json:"device_id"`
	Status   []string `json:"status"`
	Vendor   string   `json:"vendor"`
	Model    string   `json:"model"`
	// RawVendor and RawModel keep the pre-normalization strings.
	RawVendor string `json:"raw_vendor,omitempty"`
	RawModel  string `json:"raw_model,omitempty"`
	Firmware  string `json:"firmware,omitempty"`
	// Health is the textual health value with the embedded timestamp removed.
	Health          string     `json:"health,omitempty"`
	HealthTimestamp *time.Time `json:"health_timestamp,omitempty"`
}

// HasStatus reports whether the device carries the given status token.
func (d BACnetDevice) HasStatus(token string) bool {
	for _, s := range d.Status {
		if s == token {
			return true
		}
	}
	return false
}

// Faulty reports whether the device is in any non-ok state.
func (d BACnetDevice) Faulty() bool {
	for _, s := range d.Status {
		switch s {
		case StatusDown, StatusAlarm, StatusUnackedAlarm, StatusFault, StatusError:
			return true
		}
	}
	return false
}

// NetworkNode is one row of a Niagara network export: a station, a device
// under a station, or a folder in the station tree. The parser emits a flat
// list; parent/child structure is reconstructed during cross-validation.
type NetworkNode struct {
	Path            string     `json:"path"`
	Name            string     `json:"name"`
	Type            string     `json:"type,omitempty"`
	Address         string     `json:"address,omitempty"`
	IP              string     `json:"ip,omitempty"`
	Port            int        `json:"port,omitempty"`
	Status          []string   `json:"status"`
	Health          string     `json:"health,omitempty"`
	HealthTimestamp *time.Time `json:"health_timestamp,omitempty"`
	ClientConn      string     `json:"client_conn,omitempty"`
	ServerConn      string     `json:"server_conn,omitempty"`
	Connected       bool       `json:"connected"`
	HostModel       string     `json:"host_model,omitempty"`
	Version         string     `json:"version,omitempty"`
	FoxPort         int        `json:"fox_port,omitempty"`
	PlatformPort    int        `json:"platform_port,omitempty"`
	CredentialStore string     `json:"credential_store,omitempty"`
	PlatformUser    string     `json:"platform_user,omitempty"`
	SecurePlatform  bool       `json:"secure_platform"`
	UseFoxs         bool       `json:"use_foxs"`
	VirtualsEnabled bool       `json:"virtuals_enabled"`
	FaultCause      string     `json:"fault_cause,omitempty"`
}

// HasStatus reports whether the node carries the given status token.
func (n NetworkNode) HasStatus(token string) bool {
	for _, s := range n.Status {
		if s == token {
			return true
		}
	}
	return false
}

// IsStationNode reports whether the node is a Niagara station entry rather
// than a folder or a field device.
func (n NetworkNode) IsStationNode() bool {
	return strings.Contains(n.Type, "Niagara Station") ||
		(n.HostModel != "" && n.Version != "")
}
