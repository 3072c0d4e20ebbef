package export

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/griddock/stationscope/internal/normalize"
	"github.com/griddock/stationscope/pkg/models"
)

// n2RequiredHeaders are the columns an N2 driver export writes, exactly as
// the station names them.
var n2RequiredHeaders = []string{"Name", "Status", "Address", "Controller Type"}

// N2Parser parses N2 driver device exports.
type N2Parser struct {
	logger *zap.Logger
}

// NewN2Parser creates an N2 export parser.
func NewN2Parser(logger *zap.Logger) *N2Parser {
	return &N2Parser{logger: logger}
}

// Parse converts an N2 export into typed devices. Rows with an empty name
// or unparseable address are skipped with a warning; the parse fails only
// for empty input, a header row missing every required column, or zero
// surviving rows.
func (p *N2Parser) Parse(content string) (*models.N2Result, error) {
	content = Preprocess(content)
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{Format: models.FormatN2, Reason: "empty input"}
	}

	rows := readRows(content, p.logger)
	if len(rows) == 0 {
		return nil, &ParseError{Format: models.FormatN2, Reason: "no rows"}
	}

	idx := headerIndex(rows[0])
	if !anyHeaderPresent(idx, n2RequiredHeaders) {
		return nil, &ParseError{Format: models.FormatN2, Reason: "missing required headers " + strings.Join(n2RequiredHeaders, ", ")}
	}
	if missing := missingHeaders(idx, n2RequiredHeaders); len(missing) > 0 {
		p.logger.Warn("n2 export missing columns", zap.Strings("columns", missing))
	}

	devices := make([]models.N2Device, 0, len(rows)-1)
	for _, row := range rows[1:] {
		name := field(row, idx, "Name")
		if name == "" {
			p.logger.Warn("skipping n2 row with empty name")
			continue
		}

		addrText := field(row, idx, "Address")
		address, err := strconv.Atoi(addrText)
		if err != nil {
			p.logger.Warn("skipping n2 row with invalid address",
				zap.String("name", name), zap.String("address", addrText))
			continue
		}

		status := normalize.ParseStatusSet(field(row, idx, "Status"))
		if len(status) == 0 {
			status = []string{models.StatusUnknown}
		}

		device := models.N2Device{
			Name:    name,
			Address: address,
			Status:  status,
		}
		device.Type, device.RawType = normalizeControllerType(field(row, idx, "Controller Type"))

		devices = append(devices, device)
	}

	if len(devices) == 0 {
		return nil, &ParseError{Format: models.FormatN2, Reason: "no valid device rows"}
	}

	summary := summarizeN2(devices)
	return &models.N2Result{
		Devices:  devices,
		Summary:  summary,
		Analysis: analyzeN2(summary),
	}, nil
}

// normalizeControllerType maps "Unknown code: N" types to "Unknown" while
// preserving the original text, and leaves everything else as written.
func normalizeControllerType(raw string) (typ, rawType string) {
	if strings.HasPrefix(raw, "Unknown code:") {
		return "Unknown", raw
	}
	if raw == "" {
		return "Unknown", ""
	}
	return raw, ""
}

func summarizeN2(devices []models.N2Device) models.N2Summary {
	s := models.N2Summary{
		Total:      len(devices),
		TypeCounts: make(map[string]int),
	}
	for _, d := range devices {
		s.TypeCounts[d.Type]++
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

// analyzeN2 scores trunk health. The base score is the ok-device ratio;
// rule alerts then subtract fixed penalties.
func analyzeN2(s models.N2Summary) models.Analysis {
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
			Message:   fmt.Sprintf("%d%% of N2 devices are faulty", faultyPct),
			Threshold: FaultyCriticalPct,
			Value:     float64(faultyPct),
		}, FaultyCriticalPenalty)
		a.Recommend("Investigate N2 trunk wiring and field controller power")
	case faultyPct > FaultyWarnPct:
		a.AddAlert(models.Alert{
			Severity:  models.SeverityWarning,
			Category:  "devices",
			Message:   fmt.Sprintf("%d%% of N2 devices are faulty", faultyPct),
			Threshold: FaultyWarnPct,
			Value:     float64(faultyPct),
		}, FaultyWarnPenalty)
		a.Recommend("Review faulty N2 devices before they degrade the trunk")
	}

	if s.Down > 0 {
		a.AddAlert(models.Alert{
			Severity: models.SeverityWarning,
			Category: "devices",
			Message:  fmt.Sprintf("%d N2 device(s) down", s.Down),
			Value:    float64(s.Down),
		}, DownPresencePenalty)
		a.Recommend("Restore communication to down N2 devices")
	}

	if s.Alarm > 0 || s.UnackedAlarm > 0 {
		a.AddAlert(models.Alert{
			Severity: models.SeverityWarning,
			Category: "alarms",
			Message:  fmt.Sprintf("%d N2 device(s) in alarm", s.Alarm+s.UnackedAlarm),
			Value:    float64(s.Alarm + s.UnackedAlarm),
		}, AlarmPresencePenalty)
		a.Recommend("Acknowledge and clear outstanding N2 alarms")
	}

	if len(s.TypeCounts) > TypeDiversityLimit {
		a.Alerts = append(a.Alerts, models.Alert{
			Severity:  models.SeverityInfo,
			Category:  "inventory",
			Message:   fmt.Sprintf("%d distinct controller types on one trunk", len(s.TypeCounts)),
			Threshold: TypeDiversityLimit,
			Value:     float64(len(s.TypeCounts)),
		})
		a.Recommend("Consider consolidating controller models to simplify spares")
	}

	return a
}
