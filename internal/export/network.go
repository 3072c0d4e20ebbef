package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/griddock/stationscope/internal/normalize"
	"github.com/griddock/stationscope/pkg/models"
)

// networkRequiredHeaders is the full column set a Niagara network export
// writes. Only a header row missing all of them is fatal.
var networkRequiredHeaders = []string{
	"Path", "Name", "Address", "Type", "Status", "Health",
	"Client Conn", "Server Conn", "Host Model", "Version",
	"Fox Port", "Platform Port", "Credential Store", "Platform User",
	"Platform Password", "Secure Platform", "Use Foxs",
	"Virtuals Enabled", "Fault Cause",
}

var ipTokenRe = regexp.MustCompile(`ip:([0-9A-Za-z._-]+)`)

// NetworkParser parses Niagara network exports into a flat node list.
// Hierarchy reconstruction belongs to cross-validation, not this parser.
type NetworkParser struct {
	logger *zap.Logger
}

// NewNetworkParser creates a Niagara network export parser.
func NewNetworkParser(logger *zap.Logger) *NetworkParser {
	return &NetworkParser{logger: logger}
}

// Parse converts a network export into nodes. Rows without a name are
// dropped with a warning.
func (p *NetworkParser) Parse(content string) (*models.NetworkResult, error) {
	content = Preprocess(content)
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{Format: models.FormatNiagaraNetwork, Reason: "empty input"}
	}

	rows := readRows(content, p.logger)
	if len(rows) == 0 {
		return nil, &ParseError{Format: models.FormatNiagaraNetwork, Reason: "no rows"}
	}

	idx := headerIndex(rows[0])
	if !anyHeaderPresent(idx, networkRequiredHeaders) {
		return nil, &ParseError{Format: models.FormatNiagaraNetwork, Reason: "missing required headers"}
	}

	nodes := make([]models.NetworkNode, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := field(row, idx, "Name")
		if name == "" {
			p.logger.Warn("skipping network row with empty name")
			continue
		}

		node := models.NetworkNode{
			Path:            field(row, idx, "Path"),
			Name:            name,
			Type:            field(row, idx, "Type"),
			Address:         field(row, idx, "Address"),
			ClientConn:      field(row, idx, "Client Conn"),
			ServerConn:      field(row, idx, "Server Conn"),
			HostModel:       field(row, idx, "Host Model"),
			Version:         field(row, idx, "Version"),
			CredentialStore: field(row, idx, "Credential Store"),
			PlatformUser:    field(row, idx, "Platform User"),
			FaultCause:      field(row, idx, "Fault Cause"),
		}

		if m := ipTokenRe.FindStringSubmatch(node.Address); m != nil {
			node.IP = m[1]
		}
		node.FoxPort = parsePort(field(row, idx, "Fox Port"))
		node.PlatformPort = parsePort(field(row, idx, "Platform Port"))
		node.Port = node.FoxPort
		node.SecurePlatform = parseBool(field(row, idx, "Secure Platform"))
		node.UseFoxs = parseBool(field(row, idx, "Use Foxs"))
		node.VirtualsEnabled = parseBool(field(row, idx, "Virtuals Enabled"))
		node.Connected = node.ClientConn == "Connected" || node.ServerConn == "Connected"

		node.Status = normalize.ParseStatusSet(field(row, idx, "Status"))
		if len(node.Status) == 0 {
			node.Status = []string{models.StatusUnknown}
		}
		node.Health, node.HealthTimestamp = splitHealth(field(row, idx, "Health"))

		nodes = append(nodes, node)
	}

	if len(nodes) == 0 {
		return nil, &ParseError{Format: models.FormatNiagaraNetwork, Reason: "no valid node rows"}
	}

	summary := summarizeNetwork(nodes)
	return &models.NetworkResult{
		Nodes:    nodes,
		Summary:  summary,
		Analysis: analyzeNetwork(summary, nodes),
	}, nil
}

func parsePort(s string) int {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return port
}

func parseBool(s string) bool {
	return strings.EqualFold(s, "true") || strings.EqualFold(s, "yes")
}

func summarizeNetwork(nodes []models.NetworkNode) models.NetworkSummary {
	s := models.NetworkSummary{
		TotalNodes: len(nodes),
		ByType:     make(map[string]int),
	}
	for _, n := range nodes {
		if n.Type != "" {
			s.ByType[n.Type]++
		}
		if n.Connected {
			s.Connected++
		} else {
			s.Disconnected++
		}
		if n.IsStationNode() {
			s.Stations++
		}
	}
	return s
}

// analyzeNetwork scores supervisor-to-station connectivity. The base score
// is the connected ratio; disconnect share and fault causes add alerts.
func analyzeNetwork(s models.NetworkSummary, nodes []models.NetworkNode) models.Analysis {
	a := models.NewAnalysis()
	if s.TotalNodes == 0 {
		return a
	}
	a.HealthScore = normalize.Percentage(float64(s.Connected), float64(s.TotalNodes))

	disconnectedPct := normalize.Percentage(float64(s.Disconnected), float64(s.TotalNodes))
	switch {
	case disconnectedPct > DisconnectedCriticalPct:
		a.AddAlert(models.Alert{
			Severity:  models.SeverityCritical,
			Category:  "connectivity",
			Message:   fmt.Sprintf("%d%% of stations are disconnected", disconnectedPct),
			Threshold: DisconnectedCriticalPct,
			Value:     float64(disconnectedPct),
		}, DisconnectedCriticalPenalty)
		a.Recommend("Check supervisor reachability to disconnected stations")
	case disconnectedPct > DisconnectedWarnPct:
		a.AddAlert(models.Alert{
			Severity:  models.SeverityWarning,
			Category:  "connectivity",
			Message:   fmt.Sprintf("%d%% of stations are disconnected", disconnectedPct),
			Threshold: DisconnectedWarnPct,
			Value:     float64(disconnectedPct),
		}, DisconnectedWarnPenalty)
		a.Recommend("Check supervisor reachability to disconnected stations")
	}

	var faultCauses int
	for _, n := range nodes {
		if n.FaultCause != "" {
			faultCauses++
		}
	}
	if faultCauses > 0 {
		a.Alerts = append(a.Alerts, models.Alert{
			Severity: models.SeverityInfo,
			Category: "connectivity",
			Message:  fmt.Sprintf("%d node(s) report a fault cause", faultCauses),
			Value:    float64(faultCauses),
		})
		a.Recommend("Review reported fault causes on network nodes")
	}

	return a
}
