// Package detect classifies vendor export files by format. Detection is
// two-stage: a filename heuristic proposes a format with a confidence score,
// and a content validation independently re-scores it against the headers
// and keywords that format is required to carry. Ambiguity never raises; an
// unrecognizable file is reported as FormatUnknown with confidence 0.
package detect

import (
	"strings"

	"github.com/griddock/stationscope/pkg/models"
)

// Confidence scoring weights. A bare filename match scores baseConfidence;
// disambiguating substrings add on top, clamped to 100. The supervisor boost
// outweighs the jace boost so that a name carrying both is attributed to the
// supervisor.
const (
	baseConfidence   = 70
	jaceBoost        = 15
	supervisorBoost  = 25
	keywordBoost     = 15
	minContentScore  = 40
	legacyConfidence = 60
	genericCSVScore  = 20
	maxConfidence    = 100
)

// NameDetection is the result of filename-based format detection.
type NameDetection struct {
	Type            models.Format `json:"type"`
	Confidence      int           `json:"confidence"`
	PatternsMatched []string      `json:"patterns_matched"`
}

// ContentValidation is the result of content-based re-scoring for a
// proposed format.
type ContentValidation struct {
	IsValid    bool     `json:"is_valid"`
	Confidence int      `json:"confidence"`
	Warnings   []string `json:"warnings"`
}

// Detection is the final combined classification for a file.
type Detection struct {
	Type       models.Format `json:"type"`
	Confidence int           `json:"confidence"`
	// Source records which stage decided: "name+content", "content", "csv",
	// or "none".
	Source   string   `json:"source"`
	Warnings []string `json:"warnings,omitempty"`
}

// namePatterns maps each format to the filename substrings that propose it.
// Matching is case-insensitive against the lower-cased filename.
var namePatterns = map[models.Format][]string{
	models.FormatN2:             {"n2xport", "n2export", "n2_export", "n2"},
	models.FormatBACnet:         {"bacnet"},
	models.FormatResource:       {"resource"},
	models.FormatPlatform:       {"platform"},
	models.FormatNiagaraNetwork: {"niagaranetwork", "niagara_network", "niagaranet", "nwexport", "networkexport"},
	models.FormatModbus:         {"modbus"},
	models.FormatLON:            {"lonworks", "lonexport", "lontrunk"},
}

// nameOrder fixes the evaluation order so that more specific keywords win
// over shorter ones ("niagaranetwork" before "n2"-style fragments).
var nameOrder = []models.Format{
	models.FormatNiagaraNetwork,
	models.FormatBACnet,
	models.FormatResource,
	models.FormatPlatform,
	models.FormatModbus,
	models.FormatLON,
	models.FormatN2,
}

// FromName proposes a format from the filename alone.
func FromName(filename string) NameDetection {
	lower := strings.ToLower(filename)

	for _, format := range nameOrder {
		for _, pattern := range namePatterns[format] {
			if !strings.Contains(lower, pattern) {
				continue
			}
			det := NameDetection{
				Type:            format,
				Confidence:      baseConfidence,
				PatternsMatched: []string{pattern},
			}
			if strings.Contains(lower, "supervisor") {
				det.Confidence += supervisorBoost
				det.PatternsMatched = append(det.PatternsMatched, "supervisor")
			} else if strings.Contains(lower, "jace") {
				det.Confidence += jaceBoost
				det.PatternsMatched = append(det.PatternsMatched, "jace")
			}
			if strings.Contains(lower, string(format)) {
				det.Confidence += keywordBoost
				det.PatternsMatched = append(det.PatternsMatched, string(format))
			}
			if det.Confidence > maxConfidence {
				det.Confidence = maxConfidence
			}
			return det
		}
	}

	return NameDetection{Type: models.FormatUnknown}
}

// contentKeywords maps each format to the keywords its content must carry.
// CSV formats are matched against the header region (first three lines);
// platform exports against the whole text.
var contentKeywords = map[models.Format][]string{
	models.FormatN2:             {"name", "status", "address", "controller type"},
	models.FormatBACnet:         {"name", "device id", "status", "vendor", "model"},
	models.FormatResource:       {"cpu", "heap", "memory", "component", "capacity"},
	models.FormatPlatform:       {"daemon version", "host id", "model", "operating system", "niagara"},
	models.FormatNiagaraNetwork: {"path", "name", "address", "client conn", "server conn", "fox port"},
	models.FormatModbus:         {"name", "status", "address", "modbus"},
	models.FormatLON:            {"name", "status", "address", "lon"},
}

// FromContent re-scores a proposed format against the file content. The
// confidence is the percentage of that format's keywords found; below 40
// the format is rejected regardless of how the filename scored.
func FromContent(format models.Format, content string) ContentValidation {
	keywords, ok := contentKeywords[format]
	if !ok || strings.TrimSpace(content) == "" {
		return ContentValidation{Warnings: []string{"no content to validate against"}}
	}

	region := headerRegion(content)
	if format == models.FormatPlatform {
		region = strings.ToLower(content)
	}

	var matched int
	var missing []string
	for _, kw := range keywords {
		if strings.Contains(region, kw) {
			matched++
		} else {
			missing = append(missing, kw)
		}
	}

	cv := ContentValidation{
		Confidence: matched * 100 / len(keywords),
	}
	cv.IsValid = cv.Confidence >= minContentScore
	if !cv.IsValid {
		cv.Warnings = append(cv.Warnings,
			"content missing expected keywords: "+strings.Join(missing, ", "))
	}
	return cv
}

// DetectFormat is the detection orchestrator: name-based detection first,
// validated and combined with content scoring; then legacy per-format
// keyword sniffing of the content; then generic CSV header sniffing; else
// unknown with confidence 0.
func DetectFormat(filename, content string) Detection {
	if byName := FromName(filename); byName.Type != models.FormatUnknown {
		cv := FromContent(byName.Type, content)
		if cv.IsValid {
			confidence := byName.Confidence + cv.Confidence
			if confidence > maxConfidence {
				confidence = maxConfidence
			}
			return Detection{Type: byName.Type, Confidence: confidence, Source: "name+content"}
		}
		// Fall through to content sniffing; keep the rejection visible.
		if sniffed := sniffContent(content); sniffed.Type != models.FormatUnknown {
			sniffed.Warnings = append(sniffed.Warnings, cv.Warnings...)
			return sniffed
		}
		return Detection{
			Type:     models.FormatUnknown,
			Source:   "none",
			Warnings: append([]string{"filename matched " + string(byName.Type) + " but content did not"}, cv.Warnings...),
		}
	}

	if sniffed := sniffContent(content); sniffed.Type != models.FormatUnknown {
		return sniffed
	}

	if looksLikeCSV(content) {
		return Detection{
			Type:       models.FormatUnknown,
			Confidence: genericCSVScore,
			Source:     "csv",
			Warnings:   []string{"unrecognized CSV header"},
		}
	}

	return Detection{Type: models.FormatUnknown, Source: "none"}
}

// sniffContent is the legacy detection path: look for each format's
// distinctive keywords directly in the content, most specific format first.
func sniffContent(content string) Detection {
	region := headerRegion(content)
	lower := strings.ToLower(content)

	switch {
	case strings.Contains(region, "client conn") && strings.Contains(region, "server conn"):
		return Detection{Type: models.FormatNiagaraNetwork, Confidence: legacyConfidence, Source: "content"}
	case strings.Contains(region, "controller type"):
		return Detection{Type: models.FormatN2, Confidence: legacyConfidence, Source: "content"}
	case strings.Contains(region, "device id") && strings.Contains(region, "vendor"):
		return Detection{Type: models.FormatBACnet, Confidence: legacyConfidence, Source: "content"}
	case strings.Contains(lower, "cpu.usage") || strings.Contains(lower, "heap.used") || strings.Contains(lower, "globalcapacity"):
		return Detection{Type: models.FormatResource, Confidence: legacyConfidence, Source: "content"}
	case strings.Contains(lower, "daemon version") || strings.Contains(lower, "platform summary"):
		return Detection{Type: models.FormatPlatform, Confidence: legacyConfidence, Source: "content"}
	}
	return Detection{Type: models.FormatUnknown}
}

// headerRegion returns the first three lines lower-cased, which is where
// every CSV export keeps its column headers.
func headerRegion(content string) string {
	lines := strings.SplitN(content, "\n", 4)
	if len(lines) > 3 {
		lines = lines[:3]
	}
	return strings.ToLower(strings.Join(lines, "\n"))
}

func looksLikeCSV(content string) bool {
	first, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	return strings.Count(first, ",") >= 2
}
