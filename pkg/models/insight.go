package models

// SystemHealthAnalysis is the site-wide health rollup computed over the
// assembled model.
type SystemHealthAnalysis struct {
	// OverallHealth = round((DeviceHealthScore + AvgJACEOnlinePct) / 2).
	OverallHealth     int `json:"overall_health"`
	DeviceHealthScore int `json:"device_health_score"`
	AvgJACEOnlinePct  int `json:"avg_jace_online_pct"`

	TotalDevices   int `json:"total_devices"`
	HealthyDevices int `json:"healthy_devices"`
	FaultyDevices  int `json:"faulty_devices"`
	AlarmDevices   int `json:"alarm_devices"`

	// ResourceFlags lists, per JACE, the resource domains sitting above
	// their warning threshold (cpu, heap, memory, points, devices).
	ResourceFlags map[string][]string `json:"resource_flags,omitempty"`
}

// ProtocolUtilization is one protocol's share of the licensed device
// capacity.
type ProtocolUtilization struct {
	DeviceCount int `json:"device_count"`
	// EstimatedLimit is the protocol's allocated share of the devices
	// capacity limit. Zero when no limit is known.
	EstimatedLimit float64 `json:"estimated_limit"`
	Percentage     int     `json:"percentage"`
}

// LicenseUtilization projects driver device counts against the licensed
// devices capacity.
type LicenseUtilization struct {
	// DevicesLimit is the summed devices capacity limit across all
	// stations; nil when no station reported one.
	DevicesLimit    *float64            `json:"devices_limit"`
	TotalDevices    int                 `json:"total_devices"`
	TotalPercentage int                 `json:"total_percentage"`
	BACnet          ProtocolUtilization `json:"bacnet"`
	N2              ProtocolUtilization `json:"n2"`
	// HeuristicSplit marks that the per-protocol limits are the assumed
	// 60/40 BACnet/N2 allocation, not licensed per-protocol figures.
	HeuristicSplit bool `json:"heuristic_split"`
}

// SystemInsights carries fleet-composition facts and risk findings.
type SystemInsights struct {
	VendorDistribution map[string]int `json:"vendor_distribution,omitempty"`
	TypeDistribution   map[string]int `json:"type_distribution,omitempty"`
	Versions           []string       `json:"versions,omitempty"`
	Risks              []string       `json:"risks,omitempty"`
}

// InsightReport bundles the three system-level analyses of one batch.
type InsightReport struct {
	Health  *SystemHealthAnalysis `json:"health,omitempty"`
	License *LicenseUtilization   `json:"license,omitempty"`
	System  *SystemInsights       `json:"system,omitempty"`
}
