package export

// Alert thresholds and health-score penalties. These values mirror the
// operating envelopes Tridium publishes for JACE and Supervisor stations and
// are deliberately constants, not configuration: two runs over the same
// export must always produce the same analysis.
const (
	CPUWarn            = 80
	CPUCritical        = 85
	CPUWarnPenalty     = 10
	CPUCriticalPenalty = 20

	HeapWarn            = 75
	HeapCritical        = 90
	HeapWarnPenalty     = 15
	HeapCriticalPenalty = 25

	MemoryWarn            = 75
	MemoryCritical        = 85
	MemoryWarnPenalty     = 8
	MemoryCriticalPenalty = 18

	FDWarn            = 70
	FDCritical        = 85
	FDWarnPenalty     = 5
	FDCriticalPenalty = 12

	PointsWarn            = 85
	PointsCritical        = 95
	PointsWarnPenalty     = 15
	PointsCriticalPenalty = 30

	DevicesWarn            = 85
	DevicesCritical        = 95
	DevicesWarnPenalty     = 12
	DevicesCriticalPenalty = 25

	// Histories thresholds split by station class: a history limit above
	// 10000 indicates a Supervisor license.
	JACEHistoryLimitCutoff = 10000

	HistoriesJACEWarn        = 75
	HistoriesJACECritical    = 90
	HistoriesSupWarn         = 85
	HistoriesSupCritical     = 95
	HistoriesWarnPenalty     = 8
	HistoriesCriticalPenalty = 20

	RAMWarn            = 75
	RAMCritical        = 85
	RAMWarnPenalty     = 10
	RAMCriticalPenalty = 20

	DiskJACEWarn        = 80
	DiskSupervisorWarn  = 85
	DiskCriticalDelta   = 10
	DiskWarnPenalty     = 8
	DiskCriticalPenalty = 15

	// CapacityLegacyWarn is the boundary for the plain-text warnings channel
	// ("points at 87%"); the boundary itself is exclusive.
	CapacityLegacyWarn = 66

	// Driver fleet thresholds: share of faulty devices on a trunk.
	FaultyWarnPct         = 15
	FaultyCriticalPct     = 25
	FaultyWarnPenalty     = 10
	FaultyCriticalPenalty = 20

	DownPresencePenalty  = 10
	AlarmPresencePenalty = 5

	// TypeDiversityLimit flags trunks mixing an unusually broad set of
	// controller models, which complicates spares and firmware management.
	TypeDiversityLimit = 10

	// Niagara network station connectivity.
	DisconnectedWarnPct         = 10
	DisconnectedCriticalPct     = 25
	DisconnectedWarnPenalty     = 10
	DisconnectedCriticalPenalty = 20

	// Platform version support matrix.
	VersionSupportedMinor     = 12 // 4.12+ is supported
	VersionUpgradeHoldMinor   = 14 // 4.14+: upgrading further not recommended
	VersionLTSMinor           = 15 // current LTS line
	UnsupportedVersionPenalty = 25
)
