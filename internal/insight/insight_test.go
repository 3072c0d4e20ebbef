package insight

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/griddock/stationscope/pkg/models"
)

func floatPtr(f float64) *float64 { return &f }

func siteWith(jaces map[string]*models.JACE) *models.CrossValidatedData {
	return &models.CrossValidatedData{
		Architecture:       models.ArchitectureMultiJACE,
		JACEs:              jaces,
		ValidationWarnings: []string{},
		ConsistencyErrors:  []string{},
	}
}

func n2Result(statuses ...[]string) *models.N2Result {
	r := &models.N2Result{}
	for i, st := range statuses {
		r.Devices = append(r.Devices, models.N2Device{
			Name: "VAV", Address: i + 1, Status: st, Type: "VND",
		})
	}
	return r
}

func TestAnalyzeSystemHealth(t *testing.T) {
	data := siteWith(map[string]*models.JACE{
		"North": {
			Drivers: models.DriverSet{
				N2: n2Result(
					[]string{models.StatusOK},
					[]string{models.StatusOK},
					[]string{models.StatusDown},
					[]string{models.StatusAlarm},
				),
			},
			NetworkInfo: &models.NetworkNode{Name: "North", Connected: true},
		},
		"South": {
			NetworkInfo: &models.NetworkNode{Name: "South", Connected: false},
		},
	})

	a := AnalyzeSystemHealth(data)
	if a.TotalDevices != 4 || a.HealthyDevices != 2 || a.FaultyDevices != 2 {
		t.Errorf("device tally = %d/%d/%d, want 4/2/2",
			a.TotalDevices, a.HealthyDevices, a.FaultyDevices)
	}
	if a.AlarmDevices != 1 {
		t.Errorf("AlarmDevices = %d, want 1", a.AlarmDevices)
	}
	if a.DeviceHealthScore != 50 {
		t.Errorf("DeviceHealthScore = %d, want 50", a.DeviceHealthScore)
	}
	if a.AvgJACEOnlinePct != 50 {
		t.Errorf("AvgJACEOnlinePct = %d, want 50", a.AvgJACEOnlinePct)
	}
	if a.OverallHealth != 50 {
		t.Errorf("OverallHealth = %d, want 50", a.OverallHealth)
	}
}

func TestAnalyzeSystemHealthEmptySite(t *testing.T) {
	a := AnalyzeSystemHealth(siteWith(map[string]*models.JACE{}))
	if a.OverallHealth != 100 {
		t.Errorf("OverallHealth = %d, want 100 for an empty site", a.OverallHealth)
	}
}

func TestAnalyzeSystemHealthResourceFlags(t *testing.T) {
	data := siteWith(map[string]*models.JACE{
		"North": {
			Resources: &models.ResourceMetrics{
				CPUUsage: 92,
				Heap:     models.MemoryUsage{Percentage: 80},
				Capacities: models.CapacitySet{
					Points: models.CapacityMetric{Percentage: 96},
				},
			},
		},
	})

	a := AnalyzeSystemHealth(data)
	flags := a.ResourceFlags["North"]
	want := []string{"cpu", "heap", "points"}
	if len(flags) != len(want) {
		t.Fatalf("flags = %v, want %v", flags, want)
	}
	for i := range want {
		if flags[i] != want[i] {
			t.Errorf("flags = %v, want %v", flags, want)
			break
		}
	}
}

func TestProjectLicenseUtilization(t *testing.T) {
	bacnet := &models.BACnetResult{}
	for i := 0; i < 30; i++ {
		bacnet.Devices = append(bacnet.Devices, models.BACnetDevice{
			Name: "FEC", DeviceID: i + 1, Status: []string{models.StatusOK},
		})
	}
	data := siteWith(map[string]*models.JACE{
		"North": {
			Resources: &models.ResourceMetrics{
				Capacities: models.CapacitySet{
					Devices: models.CapacityMetric{Current: 50, Limit: floatPtr(100), Percentage: 50},
				},
			},
			Drivers: models.DriverSet{
				BACnet: bacnet,
				N2:     n2Result([]string{models.StatusOK}, []string{models.StatusOK}),
			},
		},
	})

	u := ProjectLicenseUtilization(data)
	if u.DevicesLimit == nil || *u.DevicesLimit != 100 {
		t.Fatalf("DevicesLimit = %v, want 100", u.DevicesLimit)
	}
	if u.TotalDevices != 32 || u.TotalPercentage != 32 {
		t.Errorf("total = %d at %d%%, want 32 at 32%%", u.TotalDevices, u.TotalPercentage)
	}
	// 60/40 split: BACnet 30 of 60 = 50%, N2 2 of 40 = 5%.
	if u.BACnet.EstimatedLimit != 60 || u.BACnet.Percentage != 50 {
		t.Errorf("BACnet = %+v, want limit 60 at 50%%", u.BACnet)
	}
	if u.N2.EstimatedLimit != 40 || u.N2.Percentage != 5 {
		t.Errorf("N2 = %+v, want limit 40 at 5%%", u.N2)
	}
	if !u.HeuristicSplit {
		t.Error("HeuristicSplit not set")
	}
}

func TestProjectLicenseUtilizationNoLimit(t *testing.T) {
	data := siteWith(map[string]*models.JACE{
		"North": {Drivers: models.DriverSet{N2: n2Result([]string{models.StatusOK})}},
	})
	u := ProjectLicenseUtilization(data)
	if u.DevicesLimit != nil {
		t.Errorf("DevicesLimit = %v, want nil", u.DevicesLimit)
	}
	if u.TotalDevices != 1 || u.TotalPercentage != 0 {
		t.Errorf("total = %d at %d%%, want 1 at 0%%", u.TotalDevices, u.TotalPercentage)
	}
}

func TestBuildSystemInsights(t *testing.T) {
	data := siteWith(map[string]*models.JACE{
		"North": {
			Resources: &models.ResourceMetrics{
				Versions: models.VersionSet{Niagara: "4.10.2.28"},
				Capacities: models.CapacitySet{
					Points: models.CapacityMetric{Percentage: 94},
				},
			},
			Drivers: models.DriverSet{
				BACnet: &models.BACnetResult{Devices: []models.BACnetDevice{
					{Name: "a", DeviceID: 1, Vendor: "JCI", Model: "FEC2611"},
					{Name: "b", DeviceID: 2, Vendor: "JCI", Model: "VMA1615"},
					{Name: "c", DeviceID: 3, Vendor: "Distech", Model: "ECB-203"},
				}},
			},
		},
	})

	si := BuildSystemInsights(data)
	if si.VendorDistribution["JCI"] != 2 || si.VendorDistribution["Distech"] != 1 {
		t.Errorf("VendorDistribution = %v", si.VendorDistribution)
	}
	if len(si.Versions) != 1 || si.Versions[0] != "4.10.2.28" {
		t.Errorf("Versions = %v", si.Versions)
	}

	var eol, capRisk bool
	for _, r := range si.Risks {
		if strings.Contains(r, "end of support") {
			eol = true
		}
		if strings.Contains(r, "points capacity") {
			capRisk = true
		}
	}
	if !eol {
		t.Errorf("no end-of-support risk for 4.10: %v", si.Risks)
	}
	if !capRisk {
		t.Errorf("no capacity exhaustion risk at 94%%: %v", si.Risks)
	}
}

func TestBuildReportZeroValueModel(t *testing.T) {
	// A zero-value model has nil maps everywhere; every analyzer must
	// treat the absence of data as an empty, healthy site.
	var data models.CrossValidatedData
	report := BuildReport(zap.NewNop(), &data)
	if report.Health == nil || report.License == nil || report.System == nil {
		t.Fatalf("incomplete report: %+v", report)
	}
	if report.Health.OverallHealth != 100 {
		t.Errorf("OverallHealth = %d, want 100", report.Health.OverallHealth)
	}
}
