package export

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/griddock/stationscope/internal/normalize"
	"github.com/griddock/stationscope/pkg/models"
)

// bacnetRequiredHeaders are soft-required: a missing column is warned about
// and parsing continues with whatever is present.
var bacnetRequiredHeaders = []string{"Name", "Device ID", "Status", "Vendor", "Model"}

var (
	deviceIDRe  = regexp.MustCompile(`device:(\d+)`)
	bracketTSRe = regexp.MustCompile(`\[([^\]]+)\]`)
)

//go:embed vendor_aliases.yaml
var vendorAliasData []byte

// vendorTable holds the normalization rules loaded from the embedded YAML.
type vendorTable struct {
	Vendors       map[string]string `yaml:"vendors"`
	ModelPrefixes []string          `yaml:"model_prefixes"`
	ModelSuffixes []string          `yaml:"model_suffixes"`
	// orderedKeys caches vendor keys longest-first so "johnson controls
	// international" wins over "johnson controls".
	orderedKeys []string
}

var (
	vendorOnce   sync.Once
	vendorRules  vendorTable
	vendorErrMsg string
)

func loadVendorTable() vendorTable {
	vendorOnce.Do(func() {
		if err := yaml.Unmarshal(vendorAliasData, &vendorRules); err != nil {
			vendorErrMsg = err.Error()
			vendorRules = vendorTable{}
			return
		}
		vendorRules.orderedKeys = make([]string, 0, len(vendorRules.Vendors))
		for k := range vendorRules.Vendors {
			vendorRules.orderedKeys = append(vendorRules.orderedKeys, k)
		}
		sort.Slice(vendorRules.orderedKeys, func(i, j int) bool {
			return len(vendorRules.orderedKeys[i]) > len(vendorRules.orderedKeys[j])
		})
	})
	return vendorRules
}

// BACnetParser parses BACnet driver device exports.
type BACnetParser struct {
	logger *zap.Logger
}

// NewBACnetParser creates a BACnet export parser.
func NewBACnetParser(logger *zap.Logger) *BACnetParser {
	return &BACnetParser{logger: logger}
}

// Parse converts a BACnet export into typed devices.
func (p *BACnetParser) Parse(content string) (*models.BACnetResult, error) {
	content = Preprocess(content)
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{Format: models.FormatBACnet, Reason: "empty input"}
	}

	rows := readRows(content, p.logger)
	if len(rows) == 0 {
		return nil, &ParseError{Format: models.FormatBACnet, Reason: "no rows"}
	}

	idx := headerIndex(rows[0])
	if !anyHeaderPresent(idx, bacnetRequiredHeaders) {
		return nil, &ParseError{Format: models.FormatBACnet, Reason: "missing required headers " + strings.Join(bacnetRequiredHeaders, ", ")}
	}
	if missing := missingHeaders(idx, bacnetRequiredHeaders); len(missing) > 0 {
		p.logger.Warn("bacnet export missing columns", zap.Strings("columns", missing))
	}
	if msg := vendorLoadError(); msg != "" {
		p.logger.Warn("vendor alias table failed to load", zap.String("error", msg))
	}

	devices := make([]models.BACnetDevice, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := field(row, idx, "Name")
		if name == "" {
			p.logger.Warn("skipping bacnet row with empty name")
			continue
		}

		id, ok := parseDeviceID(field(row, idx, "Device ID"))
		if !ok {
			p.logger.Warn("skipping bacnet row with invalid device id",
				zap.String("name", name), zap.String("device_id", field(row, idx, "Device ID")))
			continue
		}

		status := normalize.ParseStatusSet(field(row, idx, "Status"))
		if len(status) == 0 {
			status = []string{models.StatusUnknown}
		}

		device := models.BACnetDevice{
			Name:      name,
			DeviceID:  id,
			Status:    status,
			RawVendor: field(row, idx, "Vendor"),
			RawModel:  field(row, idx, "Model"),
			Firmware:  field(row, idx, "Firmware Rev"),
		}
		device.Vendor = NormalizeVendor(device.RawVendor)
		device.Model = NormalizeModel(device.RawModel)
		device.Health, device.HealthTimestamp = splitHealth(field(row, idx, "Health"))

		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, &ParseError{Format: models.FormatBACnet, Reason: "no valid device rows"}
	}

	summary := summarizeBACnet(devices)
	return &models.BACnetResult{
		Devices:  devices,
		Summary:  summary,
		Analysis: analyzeBACnet(summary),
	}, nil
}

// parseDeviceID extracts the numeric instance from "device:1234" or a bare
// integer.
func parseDeviceID(s string) (int, bool) {
	if m := deviceIDRe.FindStringSubmatch(s); m != nil {
		id, err := strconv.Atoi(m[1])
		return id, err == nil
	}
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return id, true
}

// splitHealth separates a health value like "Ok [19-Aug-25 10:11 PM EDT]"
// into its textual part and the embedded vendor timestamp.
func splitHealth(s string) (string, *time.Time) {
	m := bracketTSRe.FindStringSubmatch(s)
	if m == nil {
		return strings.TrimSpace(s), nil
	}
	text := strings.TrimSpace(bracketTSRe.ReplaceAllString(s, ""))
	if ts, ok := normalize.ParseVendorTimestamp(m[1]); ok {
		return text, &ts
	}
	return text, nil
}

// NormalizeVendor maps a raw vendor string to its short house name. Unknown
// vendors are returned trimmed but otherwise as written.
func NormalizeVendor(raw string) string {
	trimmed := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "."))
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	rules := loadVendorTable()
	for _, key := range rules.orderedKeys {
		if strings.Contains(lower, key) {
			return rules.Vendors[key]
		}
	}
	return trimmed
}

// NormalizeModel strips ordering-code decoration from a model string:
// leading "MS-", trailing "-0", upper-cased.
func NormalizeModel(raw string) string {
	model := strings.ToUpper(strings.TrimSpace(raw))
	rules := loadVendorTable()
	for _, prefix := range rules.ModelPrefixes {
		model = strings.TrimPrefix(model, strings.ToUpper(prefix))
	}
	for _, suffix := range rules.ModelSuffixes {
		model = strings.TrimSuffix(model, strings.ToUpper(suffix))
	}
	return model
}

func vendorLoadError() string {
	loadVendorTable()
	return vendorErrMsg
}

func summarizeBACnet(devices []models.BACnetDevice) models.BACnetSummary {
	s := models.BACnetSummary{
		Total:        len(devices),
		VendorCounts: make(map[string]int),
		ModelCounts:  make(map[string]int),
	}
	for _, d := range devices {
		if d.Vendor != "" {
			s.VendorCounts[d.Vendor]++
		}
		if d.Model != "" {
			s.ModelCounts[d.Model]++
		}
		if d.Faulty() {
			s.Faulty++
		} else {
			s.OK++
		}
		if d.HasStatus(models.StatusDown) {
			s.Down++
		}
		if d.HasStatus(models.StatusAlarm) {
			s.Alarm++
		}
		if d.HasStatus(models.StatusUnackedAlarm) {
			s.UnackedAlarm++
		}
	}
	return s
}

// analyzeBACnet applies the same fleet rules as the N2 analysis: ok-ratio
// base score, faulty-share thresholds, down and alarm presence.
func analyzeBACnet(s models.BACnetSummary) models.Analysis {
	a := models.NewAnalysis()
	if s.Total == 0 {
		return a
	}
	a.HealthScore = normalize.Percentage(float64(s.OK), float64(s.Total))

	faultyPct := normalize.Percentage(float64(s.Faulty), float64(s.Total))
	switch {
	case faultyPct > FaultyCriticalPct:
		a.AddAlert(models.Alert{
			Severity:  models.SeverityCritical,
			Category:  "devices",
			Message:   fmt.Sprintf("%d%% of BACnet devices are faulty", faultyPct),
			Threshold: FaultyCriticalPct,
			Value:     float64(faultyPct),
		}, FaultyCriticalPenalty)
		a.Recommend("Investigate BACnet network segments with offline devices")
	case faultyPct > FaultyWarnPct:
		a.AddAlert(models.Alert{
			Severity:  models.SeverityWarning,
			Category:  "devices",
			Message:   fmt.Sprintf("%d%% of BACnet devices are faulty", faultyPct),
			Threshold: FaultyWarnPct,
			Value:     float64(faultyPct),
		}, FaultyWarnPenalty)
		a.Recommend("Review faulty BACnet devices")
	}

	if s.Down > 0 {
		a.AddAlert(models.Alert{
			Severity: models.SeverityWarning,
			Category: "devices",
			Message:  fmt.Sprintf("%d BACnet device(s) down", s.Down),
			Value:    float64(s.Down),
		}, DownPresencePenalty)
		a.Recommend("Restore communication to down BACnet devices")
	}

	if s.Alarm > 0 || s.UnackedAlarm > 0 {
		a.AddAlert(models.Alert{
			Severity: models.SeverityWarning,
			Category: "alarms",
			Message:  fmt.Sprintf("%d BACnet device(s) in alarm", s.Alarm+s.UnackedAlarm),
			Value:    float64(s.Alarm + s.UnackedAlarm),
		}, AlarmPresencePenalty)
		a.Recommend("Acknowledge and clear outstanding BACnet alarms")
	}

	return a
}
