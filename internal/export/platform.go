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

// platformSection is the explicit state of the section-scoped line parser.
type platformSection int

const (
	sectionIdle platformSection = iota
	sectionModules
	sectionLicenses
	sectionCertificates
	sectionApplications
	sectionFilesystems
	sectionLexicons
	sectionOtherParts
)

var (
	moduleLineRe  = regexp.MustCompile(`^(\S+)\s+\((\S+)\s+([^)\s]+)\)$`)
	licenseLineRe = regexp.MustCompile(`^(\S+)\s+\((\S+)(?:\s+([^\s)-]+))?\s*-\s*(never expires|expires\s+(.+?))\)$`)
	certLineRe    = regexp.MustCompile(`^(.\S*(?:\s\S+)*?)\s+\((\S+)(?:\s*-\s*(never expires|expires\s+(.+?)))?\)$`)
	appLineRe     = regexp.MustCompile(`^station\s+"([^"]+)"\s+(.*?)\s*\((\w+)\)$`)
	fsLineRe      = regexp.MustCompile(`^(\S+)\s+([\d,]+)\s*KB\s+([\d,]+)\s*KB(?:\s+([\d,]+)\s+([\d,]+))?$`)
	partLineRe    = regexp.MustCompile(`^(\S+)(?:\s+\(?([^)\s]+)\)?)?$`)
	ramLineRe     = regexp.MustCompile(`^([\d,]+)\s*KB\s+([\d,]+)\s*KB$`)
	kvLineRe      = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9 /]+?):\s*(.*)$`)
	versionRe     = regexp.MustCompile(`^(\d+)\.(\d+)`)
)

// PlatformParser parses free-text platform details exports.
type PlatformParser struct {
	logger *zap.Logger
}

// NewPlatformParser creates a platform details parser.
func NewPlatformParser(logger *zap.Logger) *PlatformParser {
	return &PlatformParser{logger: logger}
}

// Parse walks the export line by line through an explicit section state
// machine. Sentinel lines switch sections; lines that match no pattern
// inside a section are silently skipped. A malformed section therefore
// yields an empty collection, never a fatal error.
func (p *PlatformParser) Parse(content string) (*models.PlatformResult, error) {
	content = Preprocess(content)
	if strings.TrimSpace(content) == "" {
		return nil, &ParseError{Format: models.FormatPlatform, Reason: "empty input"}
	}

	summary := models.PlatformSummary{
		Modules:      []models.PlatformModule{},
		Licenses:     []models.PlatformLicense{},
		Certificates: []models.PlatformCertificate{},
		Applications: []models.PlatformApplication{},
		Filesystems:  []models.PlatformFilesystem{},
		OtherParts:   []models.PlatformPart{},
	}

	state := sectionIdle
	expectRAMRow := false

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if next, ok := sectionSentinel(line); ok {
			state = next
			expectRAMRow = false
			continue
		}
		if strings.HasPrefix(line, "Physical RAM") {
			expectRAMRow = true
			continue
		}
		if expectRAMRow {
			if m := ramLineRe.FindStringSubmatch(line); m != nil {
				summary.RAMFreeKB = parsePlatformNumber(m[1])
				summary.RAMTotalKB = parsePlatformNumber(m[2])
			}
			expectRAMRow = false
			continue
		}

		switch state {
		case sectionIdle:
			p.parseKeyFact(&summary, line)
		case sectionModules:
			if m := moduleLineRe.FindStringSubmatch(line); m != nil {
				summary.Modules = append(summary.Modules, models.PlatformModule{
					Name: m[1], Vendor: m[2], Version: m[3],
				})
			}
		case sectionLicenses:
			if m := licenseLineRe.FindStringSubmatch(line); m != nil {
				lic := models.PlatformLicense{Name: m[1], Vendor: m[2], Version: m[3]}
				if m[5] != "" {
					lic.Expires = strings.TrimSpace(m[5])
				} else {
					lic.Expires = "never"
				}
				summary.Licenses = append(summary.Licenses, lic)
			}
		case sectionCertificates:
			if m := certLineRe.FindStringSubmatch(line); m != nil {
				cert := models.PlatformCertificate{Name: m[1], Vendor: m[2]}
				if m[4] != "" {
					cert.Expires = strings.TrimSpace(m[4])
				} else if m[3] != "" {
					cert.Expires = "never"
				}
				summary.Certificates = append(summary.Certificates, cert)
			}
		case sectionApplications:
			if app, ok := parseApplicationLine(line); ok {
				summary.Applications = append(summary.Applications, app)
			}
		case sectionFilesystems:
			// The filesystem table sits between key facts; a non-row line
			// ends the table rather than being swallowed by it.
			m := fsLineRe.FindStringSubmatch(line)
			if m == nil {
				state = sectionIdle
				p.parseKeyFact(&summary, line)
				continue
			}
			fs := models.PlatformFilesystem{
				Path:    m[1],
				FreeKB:  parsePlatformNumber(m[2]),
				TotalKB: parsePlatformNumber(m[3]),
			}
			if m[4] != "" {
				fs.Files = int(parsePlatformNumber(m[4]))
				fs.MaxFiles = int(parsePlatformNumber(m[5]))
			}
			summary.Filesystems = append(summary.Filesystems, fs)
		case sectionLexicons:
			// Recognized but not collected.
		case sectionOtherParts:
			if m := partLineRe.FindStringSubmatch(line); m != nil {
				summary.OtherParts = append(summary.OtherParts, models.PlatformPart{
					Name: m[1], Version: m[2],
				})
			}
		}
	}

	if summary.DaemonVersion == "" && len(summary.Modules) == 0 && summary.Model == "" {
		return nil, &ParseError{Format: models.FormatPlatform, Reason: "no recognizable platform facts"}
	}

	return &models.PlatformResult{
		Summary:  summary,
		Analysis: analyzePlatform(summary),
	}, nil
}

// sectionSentinel maps a sentinel line to its section state.
func sectionSentinel(line string) (platformSection, bool) {
	switch line {
	case "Modules":
		return sectionModules, true
	case "Licenses":
		return sectionLicenses, true
	case "Certificates":
		return sectionCertificates, true
	case "Applications":
		return sectionApplications, true
	case "Lexicons":
		return sectionLexicons, true
	case "Other Parts":
		return sectionOtherParts, true
	}
	if strings.HasPrefix(line, "Filesystem") && strings.Contains(line, "Free") && strings.Contains(line, "Total") {
		return sectionFilesystems, true
	}
	return sectionIdle, false
}

// parseKeyFact handles the "Key: Value" facts before any section starts.
func (p *PlatformParser) parseKeyFact(summary *models.PlatformSummary, line string) {
	m := kvLineRe.FindStringSubmatch(line)
	if m == nil {
		return
	}
	key, value := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	switch key {
	case "Daemon Version":
		summary.DaemonVersion = value
	case "Daemon HTTP Port":
		summary.DaemonHTTPPort = value
	case "Host":
		summary.Host = value
	case "Host ID":
		summary.HostID = value
	case "Model":
		summary.Model = value
	case "Product":
		summary.Product = value
	case "Architecture":
		summary.Architecture = value
	case "Number of CPUs":
		summary.CPUCount, _ = strconv.Atoi(value)
	case "Current CPU Usage":
		if pct, ok := normalize.ParsePercent(value); ok {
			summary.CurrentCPUUsage = int(pct)
		}
	case "Overall CPU Usage":
		if pct, ok := normalize.ParsePercent(value); ok {
			summary.OverallCPUUsage = int(pct)
		}
	case "Operating System":
		summary.OS = value
	case "Java Virtual Machine":
		summary.Java = value
	case "Niagara Runtime Environment":
		summary.Runtime = value
	case "System Home":
		summary.SystemHome = value
	case "User Home":
		summary.UserHome = value
	case "Enabled Runtime Profiles":
		for _, profile := range strings.Split(value, ",") {
			if profile = strings.TrimSpace(profile); profile != "" {
				summary.EnabledProfiles = append(summary.EnabledProfiles, profile)
			}
		}
	case "Platform TLS Support":
		summary.TLSSupport = value
	}
}

// parseApplicationLine parses a station application line, e.g.
// `station "Store_4071" fox=n/a foxs=4911 http=n/a https=443 (running)`.
func parseApplicationLine(line string) (models.PlatformApplication, bool) {
	m := appLineRe.FindStringSubmatch(line)
	if m == nil {
		return models.PlatformApplication{}, false
	}
	app := models.PlatformApplication{
		Name:   m[1],
		Type:   "station",
		Status: strings.ToLower(m[3]),
	}
	for _, token := range strings.Fields(m[2]) {
		key, value, found := strings.Cut(token, "=")
		if !found {
			if token == "autostart" {
				app.Autostart = true
			}
			continue
		}
		switch key {
		case "fox":
			app.Fox = value
		case "foxs":
			app.Foxs = value
		case "http":
			app.HTTP = value
		case "https":
			app.HTTPS = value
		}
	}
	return app, true
}

func parsePlatformNumber(s string) float64 {
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return n
}

// IsJACEPlatform reports whether the platform looks like an embedded JACE
// controller rather than a Supervisor host.
func IsJACEPlatform(s models.PlatformSummary) bool {
	product := strings.ToUpper(s.Product)
	model := strings.ToUpper(s.Model)
	if strings.Contains(product, "JACE") || strings.Contains(model, "TITAN") || strings.Contains(model, "NPM") {
		return true
	}
	if strings.Contains(product, "SUPERVISOR") || strings.Contains(product, "WORKSTATION") {
		return false
	}
	// Embedded architectures imply a JACE; desktop-class CPUs imply a host.
	arch := strings.ToLower(s.Architecture)
	return strings.Contains(arch, "arm") || strings.Contains(arch, "ppc")
}

// analyzePlatform scores a platform export: version support matrix, RAM
// pressure, and per-filesystem disk pressure.
func analyzePlatform(s models.PlatformSummary) models.Analysis {
	a := models.NewAnalysis()
	isJACE := IsJACEPlatform(s)

	if s.DaemonVersion != "" {
		applyVersionSupport(&a, s.DaemonVersion)
	}

	if s.RAMTotalKB > 0 {
		usedPct := normalize.Percentage(s.RAMTotalKB-s.RAMFreeKB, s.RAMTotalKB)
		thresholdAlert(&a, "ram", "physical RAM usage", float64(usedPct),
			RAMWarn, RAMCritical, RAMWarnPenalty, RAMCriticalPenalty,
			"RAM pressure on the platform; reduce station footprint")
	}

	diskWarn := DiskSupervisorWarn
	if isJACE {
		diskWarn = DiskJACEWarn
	}
	for _, fs := range s.Filesystems {
		if fs.TotalKB <= 0 {
			continue
		}
		usedPct := normalize.Percentage(fs.TotalKB-fs.FreeKB, fs.TotalKB)
		thresholdAlert(&a, "disk", fmt.Sprintf("filesystem %s usage", fs.Path), float64(usedPct),
			float64(diskWarn), float64(diskWarn+DiskCriticalDelta), DiskWarnPenalty, DiskCriticalPenalty,
			"Free disk space on the platform before history archiving stalls")
	}

	return a
}

// applyVersionSupport implements the Niagara version support matrix:
// 4.12+ supported, 4.14+ upgrade-not-recommended relative to the 4.15 LTS,
// below 4.12 unsupported.
func applyVersionSupport(a *models.Analysis, version string) {
	m := versionRe.FindStringSubmatch(version)
	if m == nil {
		return
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])

	switch {
	case major < 4 || (major == 4 && minor < VersionSupportedMinor):
		a.AddAlert(models.Alert{
			Severity: models.SeverityCritical,
			Category: "version",
			Message:  fmt.Sprintf("Niagara %s is no longer supported", version),
		}, UnsupportedVersionPenalty)
		a.Recommend(fmt.Sprintf("Upgrade to Niagara 4.%d LTS", VersionLTSMinor))
	case major == 4 && minor >= VersionUpgradeHoldMinor:
		a.Alerts = append(a.Alerts, models.Alert{
			Severity: models.SeverityInfo,
			Category: "version",
			Message:  fmt.Sprintf("Niagara %s is current; further upgrade not recommended", version),
		})
	default:
		a.Alerts = append(a.Alerts, models.Alert{
			Severity: models.SeverityInfo,
			Category: "version",
			Message:  fmt.Sprintf("Niagara %s is supported", version),
		})
		a.Recommend(fmt.Sprintf("Plan an upgrade path to Niagara 4.%d LTS", VersionLTSMinor))
	}
}
