package models

// DriverSet groups the protocol driver exports attributed to one JACE.
// Modbus and LON exports are recognized but carry no row parser; only the
// file name is recorded for them.
type DriverSet struct {
	BACnet *BACnetResult `json:"bacnet,omitempty"`
	N2     *N2Result     `json:"n2,omitempty"`
	Modbus string        `json:"modbus,omitempty"`
	LON    string        `json:"lon,omitempty"`
}

// DeviceTotal is the number of devices discovered across all parsed drivers.
func (d DriverSet) DeviceTotal() int {
	total := 0
	if d.BACnet != nil {
		total += len(d.BACnet.Devices)
	}
	if d.N2 != nil {
		total += len(d.N2.Devices)
	}
	return total
}

// JACE is one station controller assembled from the files attributed to it.
type JACE struct {
	Platform    *PlatformSummary `json:"platform,omitempty"`
	Resources   *ResourceMetrics `json:"resources,omitempty"`
	Drivers     DriverSet        `json:"drivers"`
	NetworkInfo *NetworkNode     `json:"network_info,omitempty"`
}

// SupervisorInfo is the supervisor node of a supervisor architecture.
type SupervisorInfo struct {
	Platform  *PlatformSummary `json:"platform,omitempty"`
	Resources *ResourceMetrics `json:"resources,omitempty"`
	Network   *NetworkResult   `json:"network,omitempty"`
}

// CrossValidationFlags records the outcome of each consistency check.
type CrossValidationFlags struct {
	VersionConsistency         bool `json:"version_consistency"`
	DeviceCountConsistency     bool `json:"device_count_consistency"`
	NetworkTopologyConsistency bool `json:"network_topology_consistency"`
	CapacityConsistency        bool `json:"capacity_consistency"`
}

// TopologyNode is one node of the assembled station tree. Parent and
// Children are indexes into the owning Topology's Nodes arena; Parent is -1
// for roots. Synthetic nodes are per-protocol grouping nodes injected under
// JACE parents.
type TopologyNode struct {
	ID        int         `json:"id"`
	Node      NetworkNode `json:"node"`
	Parent    int         `json:"parent"`
	Children  []int       `json:"children,omitempty"`
	Synthetic bool        `json:"synthetic,omitempty"`
	Protocol  string      `json:"protocol,omitempty"`
	// AggregateStatus is the worst-of status of a synthetic group's children.
	AggregateStatus string `json:"aggregate_status,omitempty"`
}

// Topology is the reconstructed station tree, stored as an arena of nodes
// addressed by stable index rather than pointers.
type Topology struct {
	Nodes []TopologyNode `json:"nodes"`
	Roots []int          `json:"roots"`
}

// CrossValidatedData is the assembled hierarchical model for one file batch.
// Built fresh per batch and never mutated afterwards.
type CrossValidatedData struct {
	Architecture       Architecture         `json:"architecture"`
	JACEs              map[string]*JACE     `json:"jaces"`
	Supervisor         *SupervisorInfo      `json:"supervisor,omitempty"`
	Topology           *Topology            `json:"topology,omitempty"`
	ValidationWarnings []string             `json:"validation_warnings"`
	ConsistencyErrors  []string             `json:"consistency_errors"`
	CrossValidation    CrossValidationFlags `json:"cross_validation"`
}
