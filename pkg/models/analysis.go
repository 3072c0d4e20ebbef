package models

// Alert is a single threshold violation or rule finding produced by a
// per-file or system-level analysis.
type Alert struct {
	Severity  Severity `json:"severity"`
	Category  string   `json:"category"`
	Message   string   `json:"message"`
	Threshold float64  `json:"threshold,omitempty"`
	Value     float64  `json:"value,omitempty"`
}

// Analysis is the deterministic health assessment attached to every parsed
// file and to the assembled system model. HealthScore starts at 100 and is
// decremented by fixed per-condition penalties, clamped to [0,100].
type Analysis struct {
	HealthScore     int      `json:"health_score"`
	Alerts          []Alert  `json:"alerts"`
	Recommendations []string `json:"recommendations"`
}

// NewAnalysis returns an Analysis with a full health score and empty,
// non-nil collections.
func NewAnalysis() Analysis {
	return Analysis{
		HealthScore:     100,
		Alerts:          []Alert{},
		Recommendations: []string{},
	}
}

// AddAlert appends an alert and applies its score penalty.
func (a *Analysis) AddAlert(alert Alert, penalty int) {
	a.Alerts = append(a.Alerts, alert)
	a.Penalize(penalty)
}

// Penalize lowers the health score, clamping at zero.
func (a *Analysis) Penalize(points int) {
	a.HealthScore -= points
	if a.HealthScore < 0 {
		a.HealthScore = 0
	}
	if a.HealthScore > 100 {
		a.HealthScore = 100
	}
}

// Recommend appends a recommendation, skipping duplicates.
func (a *Analysis) Recommend(text string) {
	for _, r := range a.Recommendations {
		if r == text {
			return
		}
	}
	a.Recommendations = append(a.Recommendations, text)
}

// CriticalCount returns the number of critical alerts.
func (a Analysis) CriticalCount() int {
	n := 0
	for _, al := range a.Alerts {
		if al.Severity == SeverityCritical {
			n++
		}
	}
	return n
}
