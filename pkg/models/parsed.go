package models

// N2Summary aggregates device counts for an N2 driver export.
type N2Summary struct {
	Total        int            `json:"total"`
	OK           int            `json:"ok"`
	Faulty       int            `json:"faulty"`
	Down         int            `json:"down"`
	Alarm        int            `json:"alarm"`
	UnackedAlarm int            `json:"unacked_alarm"`
	TypeCounts   map[string]int `json:"type_counts"`
}

// BACnetSummary aggregates device counts for a BACnet driver export.
type BACnetSummary struct {
	Total        int            `json:"total"`
	OK           int            `json:"ok"`
	Faulty       int            `json:"faulty"`
	Down         int            `json:"down"`
	Alarm        int            `json:"alarm"`
	UnackedAlarm int            `json:"unacked_alarm"`
	VendorCounts map[string]int `json:"vendor_counts"`
	ModelCounts  map[string]int `json:"model_counts"`
}

// ResourceSummary aggregates a resource export.
type ResourceSummary struct {
	MetricCount   int `json:"metric_count"`
	CapacityCount int `json:"capacity_count"`
}

// NetworkSummary aggregates a Niagara network export.
type NetworkSummary struct {
	TotalNodes   int            `json:"total_nodes"`
	Connected    int            `json:"connected"`
	Disconnected int            `json:"disconnected"`
	Stations     int            `json:"stations"`
	ByType       map[string]int `json:"by_type"`
}

// N2Result is the parse output for an N2 driver export.
type N2Result struct {
	Devices  []N2Device `json:"devices"`
	Summary  N2Summary  `json:"summary"`
	Analysis Analysis   `json:"analysis"`
}

// BACnetResult is the parse output for a BACnet driver export.
type BACnetResult struct {
	Devices  []BACnetDevice `json:"devices"`
	Summary  BACnetSummary  `json:"summary"`
	Analysis Analysis       `json:"analysis"`
}

// ResourceResult is the parse output for a resource export.
type ResourceResult struct {
	Metrics []RawMetric     `json:"metrics"`
	Data    ResourceMetrics `json:"data"`
	Summary ResourceSummary `json:"summary"`
	// Warnings is the legacy plain-text channel ("points at 87%") kept for
	// callers that do not read Analysis.Alerts.
	Warnings []string `json:"warnings"`
	Analysis Analysis `json:"analysis"`
}

// PlatformResult is the parse output for a platform details export.
type PlatformResult struct {
	Summary  PlatformSummary `json:"summary"`
	Analysis Analysis        `json:"analysis"`
}

// NetworkResult is the parse output for a Niagara network export. Nodes is
// flat; hierarchy is assembled during cross-validation.
type NetworkResult struct {
	Nodes    []NetworkNode  `json:"nodes"`
	Summary  NetworkSummary `json:"summary"`
	Analysis Analysis       `json:"analysis"`
}

// ParsedFile is the tagged union of per-format parse results. Format is the
// discriminant; exactly one result pointer is non-nil for a successful parse.
type ParsedFile struct {
	FileName string          `json:"file_name"`
	Format   Format          `json:"format"`
	N2       *N2Result       `json:"n2,omitempty"`
	BACnet   *BACnetResult   `json:"bacnet,omitempty"`
	Resource *ResourceResult `json:"resource,omitempty"`
	Platform *PlatformResult `json:"platform,omitempty"`
	Network  *NetworkResult  `json:"network,omitempty"`
}

// Analysis returns the per-file analysis for whichever variant is set.
func (p ParsedFile) Analysis() (Analysis, bool) {
	switch {
	case p.N2 != nil:
		return p.N2.Analysis, true
	case p.BACnet != nil:
		return p.BACnet.Analysis, true
	case p.Resource != nil:
		return p.Resource.Analysis, true
	case p.Platform != nil:
		return p.Platform.Analysis, true
	case p.Network != nil:
		return p.Network.Analysis, true
	}
	return Analysis{}, false
}
