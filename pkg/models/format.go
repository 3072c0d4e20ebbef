// Package models defines the shared value objects produced by the export
// parsers and consumed by cross-validation, analytics, persistence, and the
// HTTP API. All types here are plain data; nothing holds references back
// into a parser or mutable shared state.
package models

// Format identifies a known vendor export file format.
type Format string

const (
	FormatN2             Format = "n2"
	FormatBACnet         Format = "bacnet"
	FormatResource       Format = "resource"
	FormatPlatform       Format = "platform"
	FormatNiagaraNetwork Format = "niagaraNetwork"
	FormatModbus         Format = "modbus"
	FormatLON            Format = "lon"
	FormatUnknown        Format = "unknown"
)

// Architecture classifies the site topology inferred from a file batch.
type Architecture string

const (
	ArchitectureSingleJACE Architecture = "single-jace"
	ArchitectureMultiJACE  Architecture = "multi-jace"
	ArchitectureSupervisor Architecture = "supervisor"
)

// Severity grades an analysis alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Device status vocabulary as it appears in station exports, lower-cased.
const (
	StatusOK           = "ok"
	StatusDown         = "down"
	StatusAlarm        = "alarm"
	StatusUnackedAlarm = "unackedalarm"
	StatusFault        = "fault"
	StatusError        = "error"
	StatusUnknown      = "unknown"
	StatusDisabled     = "disabled"
)
