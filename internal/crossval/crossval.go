// Package crossval reconciles independently parsed export files into one
// hierarchical site model and checks them against each other. It never
// fails: every disagreement between files becomes a textual entry in the
// result's ValidationWarnings or ConsistencyErrors, and the assembled
// structure is always returned populated.
package crossval

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/griddock/stationscope/pkg/models"
)

// DeviceCountTolerance is the fixed absolute difference allowed between a
// resource export's reported device capacity and the device total discovered
// in driver exports. Deliberately absolute rather than proportional; the
// source ecosystem behaves this way regardless of fleet size.
const DeviceCountTolerance = 5

// defaultJACEName is the pseudo-station files are attributed to when no
// station name can be extracted from the file key.
const defaultJACEName = "default"

// jaceNamePatterns are tried in order against a file key; the first match
// wins.
var jaceNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(.+?)[_-]?N2xport`),
	regexp.MustCompile(`(?i)^(.+?)[_-]?Platform`),
	regexp.MustCompile(`(?i)^(.+?)[_-]?Resource`),
	regexp.MustCompile(`(?i)^(.+?)[_-]?Bacnet`),
	regexp.MustCompile(`(?i)^(.+?)[_-]?Export`),
}

// Validator assembles and cross-checks parsed export files.
type Validator struct {
	logger *zap.Logger
}

// New creates a Validator.
func New(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// CrossValidate merges the parsed files of one batch into a hierarchical
// model. The input map is keyed by file name; iteration order is fixed by
// sorting the keys so warnings are emitted deterministically.
func (v *Validator) CrossValidate(parsed map[string]models.ParsedFile) *models.CrossValidatedData {
	data := &models.CrossValidatedData{
		JACEs:              make(map[string]*models.JACE),
		ValidationWarnings: []string{},
		ConsistencyErrors:  []string{},
		CrossValidation: models.CrossValidationFlags{
			VersionConsistency:         true,
			DeviceCountConsistency:     true,
			NetworkTopologyConsistency: true,
			CapacityConsistency:        true,
		},
	}

	keys := make([]string, 0, len(parsed))
	for k := range parsed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data.Architecture = inferArchitecture(keys, parsed)
	v.logger.Debug("assembling site model",
		zap.Int("files", len(keys)),
		zap.String("architecture", string(data.Architecture)))

	var network *models.NetworkResult
	for _, key := range keys {
		file := parsed[key]
		if file.Network != nil {
			network = file.Network
		}
	}

	if data.Architecture == models.ArchitectureSupervisor {
		data.Supervisor = &models.SupervisorInfo{Network: network}
	}

	for _, key := range keys {
		v.placeFile(data, key, parsed[key])
	}

	if network != nil {
		data.Topology = assembleTopology(network.Nodes, data)
		v.attachNetworkInfo(data, network)
	}

	v.checkVersionConsistency(data, keys, parsed)
	v.checkDeviceCounts(data)
	v.checkCapacities(data)

	return data
}

// inferArchitecture classifies the batch: a parsed network export implies a
// supervisor site; otherwise a "supervisor" file name implies multi-jace;
// otherwise a single JACE.
func inferArchitecture(keys []string, parsed map[string]models.ParsedFile) models.Architecture {
	for _, key := range keys {
		if parsed[key].Network != nil {
			return models.ArchitectureSupervisor
		}
	}
	for _, key := range keys {
		if strings.Contains(strings.ToLower(key), "supervisor") {
			return models.ArchitectureMultiJACE
		}
	}
	return models.ArchitectureSingleJACE
}

// ExtractJACEName pulls the station name out of a composite file key such
// as "Store4071_N2xport.csv". Unmatched keys fall back to the default
// pseudo-station.
func ExtractJACEName(key string) string {
	base := key
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	for _, re := range jaceNamePatterns {
		if m := re.FindStringSubmatch(base); m != nil {
			name := strings.Trim(m[1], "_- ")
			if name != "" {
				return name
			}
		}
	}
	return defaultJACEName
}

// placeFile attributes one parsed file to the supervisor or to its JACE.
// Only platform and resource exports describe the supervisor host itself;
// driver exports always belong to a station, however the file is named.
func (v *Validator) placeFile(data *models.CrossValidatedData, key string, file models.ParsedFile) {
	isSupervisorFile := data.Supervisor != nil &&
		(file.Network != nil ||
			((file.Platform != nil || file.Resource != nil) &&
				strings.Contains(strings.ToLower(key), "supervisor")))

	if isSupervisorFile {
		switch {
		case file.Platform != nil:
			data.Supervisor.Platform = &file.Platform.Summary
		case file.Resource != nil:
			data.Supervisor.Resources = &file.Resource.Data
		}
		return
	}

	name := ExtractJACEName(key)
	if data.Supervisor != nil && strings.Contains(strings.ToLower(key), "supervisor") {
		data.ValidationWarnings = append(data.ValidationWarnings,
			fmt.Sprintf("driver export %s is named like a supervisor file; attributed to station %q", key, name))
	}
	jace, ok := data.JACEs[name]
	if !ok {
		jace = &models.JACE{}
		data.JACEs[name] = jace
	}

	switch {
	case file.Platform != nil:
		if jace.Platform != nil {
			data.ValidationWarnings = append(data.ValidationWarnings,
				fmt.Sprintf("duplicate platform export for %s (%s)", name, key))
		}
		jace.Platform = &file.Platform.Summary
	case file.Resource != nil:
		if jace.Resources != nil {
			data.ValidationWarnings = append(data.ValidationWarnings,
				fmt.Sprintf("duplicate resource export for %s (%s)", name, key))
		}
		jace.Resources = &file.Resource.Data
	case file.N2 != nil:
		jace.Drivers.N2 = file.N2
	case file.BACnet != nil:
		jace.Drivers.BACnet = file.BACnet
	case file.Format == models.FormatModbus:
		jace.Drivers.Modbus = key
	case file.Format == models.FormatLON:
		jace.Drivers.LON = key
	}
}

// attachNetworkInfo links station nodes from the network export to the
// JACEs assembled from per-station files, matching on station name.
func (v *Validator) attachNetworkInfo(data *models.CrossValidatedData, network *models.NetworkResult) {
	for i := range network.Nodes {
		for name, jace := range data.JACEs {
			if strings.EqualFold(network.Nodes[i].Name, name) {
				jace.NetworkInfo = &network.Nodes[i]
			}
		}
	}
}

// checkVersionConsistency collects every Niagara version string across all
// sources; more than one distinct value is an inconsistency.
func (v *Validator) checkVersionConsistency(data *models.CrossValidatedData, keys []string, parsed map[string]models.ParsedFile) {
	seen := make(map[string]bool)
	var versions []string
	record := func(version string) {
		version = strings.TrimSpace(version)
		if version == "" || seen[version] {
			return
		}
		seen[version] = true
		versions = append(versions, version)
	}

	for _, key := range keys {
		file := parsed[key]
		switch {
		case file.Resource != nil:
			record(file.Resource.Data.Versions.Niagara)
		case file.Platform != nil:
			record(file.Platform.Summary.DaemonVersion)
		case file.Network != nil:
			for _, node := range file.Network.Nodes {
				record(node.Version)
			}
		}
	}

	if len(versions) > 1 {
		data.CrossValidation.VersionConsistency = false
		data.ValidationWarnings = append(data.ValidationWarnings,
			"multiple Niagara versions in one site: "+strings.Join(versions, ", "))
	}
}

// checkDeviceCounts compares each JACE's licensed device count against the
// devices discovered in its driver exports, with a fixed tolerance.
func (v *Validator) checkDeviceCounts(data *models.CrossValidatedData) {
	names := make([]string, 0, len(data.JACEs))
	for name := range data.JACEs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		jace := data.JACEs[name]
		if jace.Resources == nil {
			continue
		}
		reported := jace.Resources.Capacities.Devices.Current
		discovered := jace.Drivers.DeviceTotal()
		if reported <= 0 || discovered == 0 {
			continue
		}
		if diff := math.Abs(reported - float64(discovered)); diff > DeviceCountTolerance {
			data.CrossValidation.DeviceCountConsistency = false
			data.ConsistencyErrors = append(data.ConsistencyErrors,
				fmt.Sprintf("%s: resource export reports %d devices but drivers discovered %d",
					name, int(reported), discovered))
		}
	}
}

// checkCapacities flags impossible capacity data: a percentage above 100
// means the export is corrupt or the license math is wrong.
func (v *Validator) checkCapacities(data *models.CrossValidatedData) {
	check := func(owner string, rm *models.ResourceMetrics) {
		if rm == nil {
			return
		}
		for _, entry := range []struct {
			name string
			cm   models.CapacityMetric
		}{
			{"points", rm.Capacities.Points},
			{"devices", rm.Capacities.Devices},
			{"networks", rm.Capacities.Networks},
			{"histories", rm.Capacities.Histories},
			{"links", rm.Capacities.Links},
			{"schedules", rm.Capacities.Schedules},
		} {
			if entry.cm.Percentage > 100 {
				data.CrossValidation.CapacityConsistency = false
				data.ConsistencyErrors = append(data.ConsistencyErrors,
					fmt.Sprintf("%s: %s capacity at %d%% exceeds its limit", owner, entry.name, entry.cm.Percentage))
			}
		}
	}

	names := make([]string, 0, len(data.JACEs))
	for name := range data.JACEs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		check(name, data.JACEs[name].Resources)
	}
	if data.Supervisor != nil {
		check("supervisor", data.Supervisor.Resources)
	}
}
