package crossval

import (
	"sort"
	"strings"

	"github.com/griddock/stationscope/pkg/models"
)

// protocolMarkers map a lowercase substring of a node's type or path to the
// canonical protocol name used for grouping.
var protocolMarkers = []struct {
	marker   string
	protocol string
}{
	{"bacnet", "BACnet"},
	{"n2", "N2"},
	{"modbus", "Modbus"},
	{"lon", "LON"},
}

// assembleTopology builds a parent/child tree over the flat node list of a
// network export. Two passes: the first indexes every node by path, the
// second resolves each node's parent as the longest proper path prefix
// present in the batch. Nodes without a resolvable parent become roots.
// Station children are then regrouped under synthetic per-protocol nodes.
func assembleTopology(nodes []models.NetworkNode, data *models.CrossValidatedData) *models.Topology {
	topo := &models.Topology{
		Nodes: make([]models.TopologyNode, 0, len(nodes)),
		Roots: []int{},
	}

	byPath := make(map[string]int, len(nodes))
	for _, n := range nodes {
		id := len(topo.Nodes)
		topo.Nodes = append(topo.Nodes, models.TopologyNode{
			ID:     id,
			Node:   n,
			Parent: -1,
		})
		if n.Path == "" {
			continue
		}
		if prev, dup := byPath[n.Path]; dup {
			data.CrossValidation.NetworkTopologyConsistency = false
			data.ValidationWarnings = append(data.ValidationWarnings,
				"duplicate network path "+n.Path+" ("+topo.Nodes[prev].Node.Name+", "+n.Name+")")
			continue
		}
		byPath[n.Path] = id
	}

	for i := range topo.Nodes {
		parent := longestPrefixParent(topo.Nodes[i].Node.Path, byPath)
		if parent >= 0 && parent != i {
			topo.Nodes[i].Parent = parent
			topo.Nodes[parent].Children = append(topo.Nodes[parent].Children, i)
		} else {
			topo.Roots = append(topo.Roots, i)
		}
	}

	groupByProtocol(topo)
	return topo
}

// longestPrefixParent finds the indexed node whose path is the longest
// proper prefix of path, honoring "/" segment boundaries.
func longestPrefixParent(path string, byPath map[string]int) int {
	if path == "" {
		return -1
	}
	best := -1
	bestLen := 0
	for candidate, id := range byPath {
		if len(candidate) >= len(path) || candidate == "" {
			continue
		}
		if !strings.HasPrefix(path, candidate) {
			continue
		}
		if path[len(candidate)] != '/' {
			continue
		}
		if len(candidate) > bestLen {
			best = id
			bestLen = len(candidate)
		}
	}
	return best
}

// protocolOf classifies a node by its driver protocol, or "" when none of
// the markers match.
func protocolOf(n models.NetworkNode) string {
	haystack := strings.ToLower(n.Type + " " + n.Path)
	for _, m := range protocolMarkers {
		if strings.Contains(haystack, m.marker) {
			return m.protocol
		}
	}
	return ""
}

// groupByProtocol inserts a synthetic "<Protocol> Devices" node between
// each station and its protocol-classified children, so the tree reads the
// way the source system's own navigation tree does.
func groupByProtocol(topo *models.Topology) {
	stationCount := len(topo.Nodes)
	for si := 0; si < stationCount; si++ {
		if !topo.Nodes[si].Node.IsStationNode() {
			continue
		}

		grouped := make(map[string][]int)
		var kept []int
		for _, child := range topo.Nodes[si].Children {
			if proto := protocolOf(topo.Nodes[child].Node); proto != "" {
				grouped[proto] = append(grouped[proto], child)
			} else {
				kept = append(kept, child)
			}
		}
		if len(grouped) == 0 {
			continue
		}

		protocols := make([]string, 0, len(grouped))
		for proto := range grouped {
			protocols = append(protocols, proto)
		}
		sort.Strings(protocols)

		for _, proto := range protocols {
			children := grouped[proto]
			id := len(topo.Nodes)
			topo.Nodes = append(topo.Nodes, models.TopologyNode{
				ID: id,
				Node: models.NetworkNode{
					Name: proto + " Devices",
					Path: topo.Nodes[si].Node.Path + "/" + strings.ToLower(proto),
				},
				Parent:          si,
				Children:        children,
				Synthetic:       true,
				Protocol:        proto,
				AggregateStatus: aggregateStatus(topo, children),
			})
			for _, child := range children {
				topo.Nodes[child].Parent = id
			}
			kept = append(kept, id)
		}
		topo.Nodes[si].Children = kept
	}
}

// aggregateStatus collapses the member statuses of a synthetic group into
// the single worst one: any down or fault makes the group faulted, any
// alarm makes it alarmed, otherwise a healthy member makes it ok.
func aggregateStatus(topo *models.Topology, members []int) string {
	anyAlarm, anyOK := false, false
	for _, id := range members {
		node := topo.Nodes[id].Node
		if node.HasStatus(models.StatusDown) || node.HasStatus(models.StatusFault) {
			return models.StatusFault
		}
		if node.HasStatus(models.StatusAlarm) || node.HasStatus(models.StatusUnackedAlarm) {
			anyAlarm = true
		}
		if node.HasStatus(models.StatusOK) {
			anyOK = true
		}
	}
	switch {
	case anyAlarm:
		return models.StatusAlarm
	case anyOK:
		return models.StatusOK
	default:
		return models.StatusUnknown
	}
}
