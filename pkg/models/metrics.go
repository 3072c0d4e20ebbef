package models

// ValueKind classifies how a raw resource metric value string was parsed.
type ValueKind string

const (
	ValueKindPercent ValueKind = "percent"
	ValueKindMemory  ValueKind = "memory"
	ValueKindLimit   ValueKind = "limit"
	ValueKindPeak    ValueKind = "peak"
	ValueKindNumber  ValueKind = "number"
	ValueKindText    ValueKind = "text"
)

// RawMetric is one Name,Value row from a resource export after value
// classification. Numeric values are normalized (memory sizes to MB).
// Immutable once created.
type RawMetric struct {
	Name  string    `json:"name"`
	Kind  ValueKind `json:"kind"`
	Value float64   `json:"value"`
	// Text holds the original value for text metrics (uptime, versions).
	Text string `json:"text,omitempty"`
	Unit string `json:"unit,omitempty"`
	// Limit is nil when the export reported "Limit: none".
	Limit *float64 `json:"limit,omitempty"`
	Peak  float64  `json:"peak,omitempty"`
}

// CapacityMetric is a current/limit pair for a licensed station capacity.
type CapacityMetric struct {
	Current float64 `json:"current"`
	// Limit is nil for unlicensed ("Limit: none") capacities.
	Limit      *float64 `json:"limit"`
	Percentage int      `json:"percentage"`
}

// MemoryUsage is a used/max pair in MB with a derived percentage.
type MemoryUsage struct {
	Used       float64 `json:"used"`
	Max        float64 `json:"max"`
	Total      float64 `json:"total,omitempty"`
	Free       float64 `json:"free,omitempty"`
	Percentage int     `json:"percentage"`
}

// FileDescriptorUsage tracks open file descriptors against the OS limit.
type FileDescriptorUsage struct {
	Open       float64 `json:"open"`
	Max        float64 `json:"max"`
	Percentage int     `json:"percentage"`
}

// CapacitySet groups the licensed global capacities of a station.
type CapacitySet struct {
	Points    CapacityMetric `json:"points"`
	Devices   CapacityMetric `json:"devices"`
	Networks  CapacityMetric `json:"networks"`
	Histories CapacityMetric `json:"histories"`
	Links     CapacityMetric `json:"links"`
	Schedules CapacityMetric `json:"schedules"`
}

// VersionSet carries the version strings reported by a resource export.
type VersionSet struct {
	Niagara string `json:"niagara,omitempty"`
	Java    string `json:"java,omitempty"`
	OS      string `json:"os,omitempty"`
}

// EngineStats carries station engine scan and queue statistics. Values stay
// textual; the export mixes durations, counts, and composite peak strings.
type EngineStats struct {
	ScanRecent   string `json:"scan_recent,omitempty"`
	ScanPeak     string `json:"scan_peak,omitempty"`
	ScanLifetime string `json:"scan_lifetime,omitempty"`
	ScanUsage    string `json:"scan_usage,omitempty"`
	QueueActions string `json:"queue_actions,omitempty"`
	QueueLong    string `json:"queue_long,omitempty"`
	QueueMedium  string `json:"queue_medium,omitempty"`
	QueueShort   string `json:"queue_short,omitempty"`
}

// ResourceMetrics is the structured view over a resource export's raw
// metrics, looked up by the fixed metric-name keys the station writes.
type ResourceMetrics struct {
	CPUUsage        int                 `json:"cpu_usage"`
	Heap            MemoryUsage         `json:"heap"`
	Memory          MemoryUsage         `json:"memory"`
	FileDescriptors FileDescriptorUsage `json:"file_descriptors"`
	Capacities      CapacitySet         `json:"capacities"`
	Uptime          string              `json:"uptime,omitempty"`
	Versions        VersionSet          `json:"versions"`
	Engine          EngineStats         `json:"engine"`
}
