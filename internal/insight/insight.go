// Package insight computes system-level analyses over the assembled site
// model: an overall health rollup, a license-utilization projection, and
// fleet composition with risk findings. All analyzers are pure functions
// tolerant of partially populated input; missing resources or drivers on a
// JACE read as zero, never as a failure.
package insight

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/griddock/stationscope/internal/export"
	"github.com/griddock/stationscope/internal/normalize"
	"github.com/griddock/stationscope/pkg/models"
)

// BACnet/N2 share of the devices capacity limit when no per-protocol
// license figure exists. An assumed split, not a licensed one.
const (
	bacnetLimitShare = 0.60
	n2LimitShare     = 0.40
)

var niagaraVersionRe = regexp.MustCompile(`^(\d+)\.(\d+)`)

// BuildReport runs all three analyzers over the assembled model. An
// analyzer panic degrades to an entry in the model's ValidationWarnings and
// a nil section in the report; the batch keeps its other results.
func BuildReport(logger *zap.Logger, data *models.CrossValidatedData) *models.InsightReport {
	report := &models.InsightReport{}

	run := func(name string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				logger.Warn("analyzer failed",
					zap.String("analyzer", name),
					zap.Any("panic", r))
				data.ValidationWarnings = append(data.ValidationWarnings,
					fmt.Sprintf("%s analysis failed: %v", name, r))
			}
		}()
		fn()
	}

	run("health", func() { report.Health = AnalyzeSystemHealth(data) })
	run("license", func() { report.License = ProjectLicenseUtilization(data) })
	run("system", func() { report.System = BuildSystemInsights(data) })
	return report
}

// AnalyzeSystemHealth rolls device health and station connectivity up into
// one site score.
func AnalyzeSystemHealth(data *models.CrossValidatedData) *models.SystemHealthAnalysis {
	a := &models.SystemHealthAnalysis{
		ResourceFlags: make(map[string][]string),
	}

	onlineJACEs := 0
	for _, name := range sortedJACENames(data) {
		jace := data.JACEs[name]
		countDevices(a, jace.Drivers)
		if jace.NetworkInfo == nil || jace.NetworkInfo.Connected {
			onlineJACEs++
		}
		if flags := resourceFlags(jace.Resources); len(flags) > 0 {
			a.ResourceFlags[name] = flags
		}
	}

	// An empty fleet has nothing wrong with it.
	a.DeviceHealthScore = 100
	if a.TotalDevices > 0 {
		a.DeviceHealthScore = normalize.Percentage(float64(a.HealthyDevices), float64(a.TotalDevices))
	}
	a.AvgJACEOnlinePct = 100
	if len(data.JACEs) > 0 {
		a.AvgJACEOnlinePct = normalize.Percentage(float64(onlineJACEs), float64(len(data.JACEs)))
	}
	a.OverallHealth = int(math.Round(float64(a.DeviceHealthScore+a.AvgJACEOnlinePct) / 2))
	return a
}

func countDevices(a *models.SystemHealthAnalysis, drivers models.DriverSet) {
	if drivers.N2 != nil {
		for _, d := range drivers.N2.Devices {
			a.TotalDevices++
			if d.Faulty() {
				a.FaultyDevices++
			} else {
				a.HealthyDevices++
			}
			if d.HasStatus(models.StatusAlarm) || d.HasStatus(models.StatusUnackedAlarm) {
				a.AlarmDevices++
			}
		}
	}
	if drivers.BACnet != nil {
		for _, d := range drivers.BACnet.Devices {
			a.TotalDevices++
			if d.Faulty() {
				a.FaultyDevices++
			} else {
				a.HealthyDevices++
			}
			if d.HasStatus(models.StatusAlarm) || d.HasStatus(models.StatusUnackedAlarm) {
				a.AlarmDevices++
			}
		}
	}
}

// resourceFlags lists the resource domains of one JACE sitting above their
// warning threshold.
func resourceFlags(rm *models.ResourceMetrics) []string {
	if rm == nil {
		return nil
	}
	var flags []string
	if rm.CPUUsage > export.CPUWarn {
		flags = append(flags, "cpu")
	}
	if rm.Heap.Percentage > export.HeapWarn {
		flags = append(flags, "heap")
	}
	if rm.Memory.Percentage > export.MemoryWarn {
		flags = append(flags, "memory")
	}
	if rm.FileDescriptors.Percentage > export.FDWarn {
		flags = append(flags, "file descriptors")
	}
	if rm.Capacities.Points.Percentage > export.PointsWarn {
		flags = append(flags, "points")
	}
	if rm.Capacities.Devices.Percentage > export.DevicesWarn {
		flags = append(flags, "devices")
	}
	return flags
}

// ProjectLicenseUtilization projects the discovered driver device counts
// against the licensed devices capacity. Without per-protocol license
// figures the limit is split 60/40 between BACnet and N2.
func ProjectLicenseUtilization(data *models.CrossValidatedData) *models.LicenseUtilization {
	u := &models.LicenseUtilization{HeuristicSplit: true}

	var limit float64
	haveLimit := false
	for _, name := range sortedJACENames(data) {
		jace := data.JACEs[name]
		if jace.Resources != nil && jace.Resources.Capacities.Devices.Limit != nil {
			limit += *jace.Resources.Capacities.Devices.Limit
			haveLimit = true
		}
		if jace.Drivers.BACnet != nil {
			u.BACnet.DeviceCount += len(jace.Drivers.BACnet.Devices)
		}
		if jace.Drivers.N2 != nil {
			u.N2.DeviceCount += len(jace.Drivers.N2.Devices)
		}
	}
	u.TotalDevices = u.BACnet.DeviceCount + u.N2.DeviceCount

	if !haveLimit {
		return u
	}
	u.DevicesLimit = &limit
	u.TotalPercentage = normalize.Percentage(float64(u.TotalDevices), limit)
	u.BACnet.EstimatedLimit = limit * bacnetLimitShare
	u.N2.EstimatedLimit = limit * n2LimitShare
	u.BACnet.Percentage = normalize.Percentage(float64(u.BACnet.DeviceCount), u.BACnet.EstimatedLimit)
	u.N2.Percentage = normalize.Percentage(float64(u.N2.DeviceCount), u.N2.EstimatedLimit)
	return u
}

// BuildSystemInsights summarizes fleet composition and flags structural
// risks.
func BuildSystemInsights(data *models.CrossValidatedData) *models.SystemInsights {
	si := &models.SystemInsights{
		VendorDistribution: make(map[string]int),
		TypeDistribution:   make(map[string]int),
	}

	versionSeen := make(map[string]bool)
	names := sortedJACENames(data)
	deviceCounts := make(map[string]int, len(names))
	totalDevices := 0

	for _, name := range names {
		jace := data.JACEs[name]
		if jace.Drivers.BACnet != nil {
			for _, d := range jace.Drivers.BACnet.Devices {
				if d.Vendor != "" {
					si.VendorDistribution[d.Vendor]++
				}
				if d.Model != "" {
					si.TypeDistribution[d.Model]++
				}
			}
		}
		if jace.Drivers.N2 != nil {
			for _, d := range jace.Drivers.N2.Devices {
				if d.Type != "" {
					si.TypeDistribution[d.Type]++
				}
			}
		}
		deviceCounts[name] = jace.Drivers.DeviceTotal()
		totalDevices += deviceCounts[name]

		if jace.Resources != nil {
			recordVersion(si, versionSeen, jace.Resources.Versions.Niagara)
		}
		if jace.Platform != nil {
			recordVersion(si, versionSeen, jace.Platform.DaemonVersion)
		}
	}
	if data.Supervisor != nil && data.Supervisor.Platform != nil {
		recordVersion(si, versionSeen, data.Supervisor.Platform.DaemonVersion)
	}

	si.Risks = assessRisks(data, si.Versions, deviceCounts, totalDevices, names)
	return si
}

func recordVersion(si *models.SystemInsights, seen map[string]bool, version string) {
	if version == "" || seen[version] {
		return
	}
	seen[version] = true
	si.Versions = append(si.Versions, version)
}

func assessRisks(data *models.CrossValidatedData, versions []string, deviceCounts map[string]int, totalDevices int, names []string) []string {
	var risks []string

	for _, version := range versions {
		if major, minor, ok := parseNiagaraVersion(version); ok &&
			major == 4 && minor < export.VersionSupportedMinor {
			risks = append(risks,
				fmt.Sprintf("Niagara %s is past end of support; plan an upgrade", version))
		}
	}

	for _, name := range names {
		jace := data.JACEs[name]
		if jace.Resources == nil {
			continue
		}
		caps := jace.Resources.Capacities
		for _, entry := range []struct {
			label string
			pct   int
		}{
			{"points", caps.Points.Percentage},
			{"devices", caps.Devices.Percentage},
			{"histories", caps.Histories.Percentage},
		} {
			if entry.pct > 90 {
				risks = append(risks,
					fmt.Sprintf("%s: %s capacity at %d%%, exhaustion imminent", name, entry.label, entry.pct))
			}
		}
	}

	if data.Architecture == models.ArchitectureSupervisor && len(names) > 1 {
		risks = append(risks,
			"single supervisor fronts all stations; it is a single point of failure")
	}
	for _, name := range names {
		if totalDevices > 0 && deviceCounts[name]*2 > totalDevices && len(names) > 1 {
			risks = append(risks,
				fmt.Sprintf("%s hosts the majority of devices (%d of %d)", name, deviceCounts[name], totalDevices))
		}
	}
	return risks
}

// parseNiagaraVersion extracts major.minor from a version string such as
// "4.10.2.28".
func parseNiagaraVersion(version string) (int, int, bool) {
	m := niagaraVersionRe.FindStringSubmatch(version)
	if m == nil {
		return 0, 0, false
	}
	major, err1 := strconv.Atoi(m[1])
	minor, err2 := strconv.Atoi(m[2])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return major, minor, true
}

func sortedJACENames(data *models.CrossValidatedData) []string {
	names := make([]string, 0, len(data.JACEs))
	for name := range data.JACEs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
