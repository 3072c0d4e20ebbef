package export

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/griddock/stationscope/internal/normalize"
	"github.com/griddock/stationscope/pkg/models"
)

var resourceRequiredHeaders = []string{"Name", "Value"}

// ResourceParser parses station resource exports (Name,Value CSV).
type ResourceParser struct {
	logger *zap.Logger
}

// NewResourceParser creates a resource export parser.
func NewResourceParser(logger *zap.Logger) *ResourceParser {
	return &ResourceParser{logger: logger}
}

// Parse converts a resource export into classified raw metrics plus the
// structured metric view, the legacy plain-text warnings channel, and the
// threshold analysis.
func (p *ResourceParser) Parse(content string) (*models.ResourceResult, error) {
	content = Preprocess(content)
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{Format: models.FormatResource, Reason: "empty input"}
	}

	rows := readRows(content, p.logger)
	if len(rows) == 0 {
		return nil, &ParseError{Format: models.FormatResource, Reason: "no rows"}
	}

	idx := headerIndex(rows[0])
	if !anyHeaderPresent(idx, resourceRequiredHeaders) {
		return nil, &ParseError{Format: models.FormatResource, Reason: "missing required headers Name, Value"}
	}

	metrics := make([]models.RawMetric, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := field(row, idx, "Name")
		if name == "" {
			p.logger.Warn("skipping resource row with empty name")
			continue
		}
		metrics = append(metrics, classifyMetric(name, field(row, idx, "Value")))
	}

	if len(metrics) == 0 {
		return nil, &ParseError{Format: models.FormatResource, Reason: "no valid metric rows"}
	}

	data := buildResourceMetrics(metrics)
	result := &models.ResourceResult{
		Metrics: metrics,
		Data:    data,
		Summary: models.ResourceSummary{
			MetricCount:   len(metrics),
			CapacityCount: countCapacities(data.Capacities),
		},
		Warnings: capacityWarnings(data.Capacities),
		Analysis: analyzeResource(data),
	}
	return result, nil
}

// classifyMetric applies the value classification rules in fixed order:
// percentage, memory with unit, value with limit, value with peak, plain
// numeric, plain string. First match wins.
func classifyMetric(name, value string) models.RawMetric {
	value = strings.TrimSpace(value)

	if pct, ok := normalize.ParsePercent(value); ok {
		return models.RawMetric{Name: name, Kind: models.ValueKindPercent, Value: pct, Unit: "%"}
	}
	if normalize.IsMemory(value) {
		return models.RawMetric{Name: name, Kind: models.ValueKindMemory, Value: normalize.ParseMemory(value), Unit: "MB"}
	}
	c := normalize.ParseComposite(value)
	if c.HasLimit {
		return models.RawMetric{Name: name, Kind: models.ValueKindLimit, Value: c.Value, Limit: c.Limit}
	}
	if c.HasPeak {
		return models.RawMetric{Name: name, Kind: models.ValueKindPeak, Value: c.Value, Peak: c.Peak}
	}
	if n, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64); err == nil {
		return models.RawMetric{Name: name, Kind: models.ValueKindNumber, Value: n}
	}
	return models.RawMetric{Name: name, Kind: models.ValueKindText, Text: value}
}

// buildResourceMetrics resolves the structured view by the fixed metric
// keys a station writes. Missing keys leave zero values.
func buildResourceMetrics(metrics []models.RawMetric) models.ResourceMetrics {
	byName := make(map[string]models.RawMetric, len(metrics))
	for _, m := range metrics {
		byName[m.Name] = m
	}
	value := func(key string) float64 { return byName[key].Value }
	text := func(key string) string { return metricText(byName[key]) }

	var rm models.ResourceMetrics
	rm.CPUUsage = int(value("cpu.usage"))

	rm.Heap = models.MemoryUsage{
		Used:  value("heap.used"),
		Max:   value("heap.max"),
		Total: value("heap.total"),
		Free:  value("heap.free"),
	}
	rm.Heap.Percentage = normalize.Percentage(rm.Heap.Used, rm.Heap.Max)

	used, ok := byName["mem.used"]
	if !ok {
		used = byName["mem.physical"]
	}
	rm.Memory = models.MemoryUsage{Used: used.Value, Total: value("mem.total")}
	rm.Memory.Percentage = normalize.Percentage(rm.Memory.Used, rm.Memory.Total)

	rm.FileDescriptors = models.FileDescriptorUsage{
		Open: value("fd.open"),
		Max:  value("fd.max"),
	}
	rm.FileDescriptors.Percentage = normalize.Percentage(rm.FileDescriptors.Open, rm.FileDescriptors.Max)

	rm.Capacities = models.CapacitySet{
		Points:    capacityFrom(byName, "globalCapacity.points"),
		Devices:   capacityFrom(byName, "globalCapacity.devices"),
		Networks:  capacityFrom(byName, "globalCapacity.networks"),
		Histories: capacityFrom(byName, "globalCapacity.histories"),
		Links:     capacityFrom(byName, "globalCapacity.links"),
		Schedules: capacityFrom(byName, "globalCapacity.schedules"),
	}

	rm.Uptime = text("time.uptime")
	rm.Versions = models.VersionSet{
		Niagara: text("version.niagara"),
		Java:    text("version.java"),
		OS:      text("version.os"),
	}
	rm.Engine = models.EngineStats{
		ScanRecent:   text("engine.scan.recent"),
		ScanPeak:     text("engine.scan.peak"),
		ScanLifetime: text("engine.scan.lifetime"),
		ScanUsage:    text("engine.scan.usage"),
		QueueActions: text("engine.queue.actions"),
		QueueLong:    text("engine.queue.longTimers"),
		QueueMedium:  text("engine.queue.mediumTimers"),
		QueueShort:   text("engine.queue.shortTimers"),
	}
	return rm
}

func capacityFrom(byName map[string]models.RawMetric, key string) models.CapacityMetric {
	m, ok := byName[key]
	if !ok {
		return models.CapacityMetric{}
	}
	c := models.CapacityMetric{Current: m.Value, Limit: m.Limit}
	c.Percentage = normalize.CapacityPercentage(c.Current, c.Limit)
	return c
}

// metricText renders a metric back to display text.
func metricText(m models.RawMetric) string {
	switch m.Kind {
	case models.ValueKindText:
		return m.Text
	case models.ValueKindPercent:
		return fmt.Sprintf("%v%%", m.Value)
	case models.ValueKindPeak:
		return fmt.Sprintf("%v (Peak %v)", m.Value, m.Peak)
	case models.ValueKindNumber, models.ValueKindMemory, models.ValueKindLimit:
		return strconv.FormatFloat(m.Value, 'f', -1, 64)
	}
	return ""
}

func countCapacities(c models.CapacitySet) int {
	n := 0
	for _, cm := range []models.CapacityMetric{c.Points, c.Devices, c.Networks, c.Histories, c.Links, c.Schedules} {
		if cm.Current > 0 || cm.Limit != nil {
			n++
		}
	}
	return n
}

// capacityWarnings is the legacy plain-text warning channel: any capacity
// strictly above 66% yields "<name> at <pct>%". Kept alongside the richer
// analysis alerts for callers that only read Warnings.
func capacityWarnings(c models.CapacitySet) []string {
	warnings := []string{}
	for _, entry := range []struct {
		name string
		cm   models.CapacityMetric
	}{
		{"points", c.Points},
		{"devices", c.Devices},
		{"networks", c.Networks},
		{"histories", c.Histories},
		{"links", c.Links},
		{"schedules", c.Schedules},
	} {
		if entry.cm.Percentage > CapacityLegacyWarn {
			warnings = append(warnings, fmt.Sprintf("%s at %d%%", entry.name, entry.cm.Percentage))
		}
	}
	return warnings
}

// analyzeResource applies the fixed resource thresholds.
func analyzeResource(rm models.ResourceMetrics) models.Analysis {
	a := models.NewAnalysis()

	thresholdAlert(&a, "cpu", "CPU usage", float64(rm.CPUUsage),
		CPUWarn, CPUCritical, CPUWarnPenalty, CPUCriticalPenalty,
		"Investigate station load; consider reducing poll rates")

	if rm.Heap.Max > 0 {
		thresholdAlert(&a, "heap", "heap usage", float64(rm.Heap.Percentage),
			HeapWarn, HeapCritical, HeapWarnPenalty, HeapCriticalPenalty,
			"Increase station heap or reduce loaded modules")
	}
	if rm.Memory.Total > 0 {
		thresholdAlert(&a, "memory", "physical memory usage", float64(rm.Memory.Percentage),
			MemoryWarn, MemoryCritical, MemoryWarnPenalty, MemoryCriticalPenalty,
			"Physical memory pressure; audit running applications")
	}
	if rm.FileDescriptors.Max > 0 {
		thresholdAlert(&a, "fd", "file descriptor usage", float64(rm.FileDescriptors.Percentage),
			FDWarn, FDCritical, FDWarnPenalty, FDCriticalPenalty,
			"File descriptor usage is high; check for connection leaks")
	}

	thresholdAlert(&a, "capacity.points", "points capacity", float64(rm.Capacities.Points.Percentage),
		PointsWarn, PointsCritical, PointsWarnPenalty, PointsCriticalPenalty,
		"Points capacity near license limit; plan a capacity upgrade")
	thresholdAlert(&a, "capacity.devices", "devices capacity", float64(rm.Capacities.Devices.Percentage),
		DevicesWarn, DevicesCritical, DevicesWarnPenalty, DevicesCriticalPenalty,
		"Devices capacity near license limit; plan a capacity upgrade")

	histWarn, histCritical := HistoriesJACEWarn, HistoriesJACECritical
	if limit := rm.Capacities.Histories.Limit; limit != nil && *limit > JACEHistoryLimitCutoff {
		histWarn, histCritical = HistoriesSupWarn, HistoriesSupCritical
	}
	thresholdAlert(&a, "capacity.histories", "histories capacity", float64(rm.Capacities.Histories.Percentage),
		float64(histWarn), float64(histCritical), HistoriesWarnPenalty, HistoriesCriticalPenalty,
		"History capacity filling up; archive or trim histories")

	return a
}

// thresholdAlert appends a warning or critical alert when value exceeds the
// given boundaries (exclusive) and applies the matching penalty.
func thresholdAlert(a *models.Analysis, category, label string, value float64,
	warn, critical float64, warnPenalty, criticalPenalty int, recommendation string) {
	switch {
	case value > critical:
		a.AddAlert(models.Alert{
			Severity:  models.SeverityCritical,
			Category:  category,
			Message:   fmt.Sprintf("%s at %v%%", label, value),
			Threshold: critical,
			Value:     value,
		}, criticalPenalty)
		a.Recommend(recommendation)
	case value > warn:
		a.AddAlert(models.Alert{
			Severity:  models.SeverityWarning,
			Category:  category,
			Message:   fmt.Sprintf("%s at %v%%", label, value),
			Threshold: warn,
			Value:     value,
		}, warnPenalty)
		a.Recommend(recommendation)
	}
}
