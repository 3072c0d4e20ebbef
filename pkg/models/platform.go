package models

// PlatformModule is one installed software module line from a platform
// details export, e.g. `alarm-rt (Tridium 4.12.0.156)`.
type PlatformModule struct {
	Name    string `json:"name"`
	Vendor  string `json:"vendor"`
	Version string `json:"version"`
}

// PlatformLicense is one license line, e.g.
// `FacExp.license (Tridium 4.12 - expires 2026-01-01)`.
type PlatformLicense struct {
	Name    string `json:"name"`
	Vendor  string `json:"vendor"`
	Version string `json:"version,omitempty"`
	Expires string `json:"expires,omitempty"`
}

// PlatformCertificate is one certificate line, e.g.
// `Tridium 4.x (Tridium - never expires)`.
type PlatformCertificate struct {
	Name    string `json:"name"`
	Vendor  string `json:"vendor"`
	Expires string `json:"expires,omitempty"`
}

// PlatformApplication is one station application line with its port
// assignments and run state, e.g.
// `station "Store_4071" fox=n/a foxs=4911 http=n/a https=443 (running)`.
type PlatformApplication struct {
	Name      string `json:"name"`
	Type      string `json:"type,omitempty"`
	Autostart bool   `json:"autostart"`
	Fox       string `json:"fox,omitempty"`
	Foxs      string `json:"foxs,omitempty"`
	HTTP      string `json:"http,omitempty"`
	HTTPS     string `json:"https,omitempty"`
	Status    string `json:"status,omitempty"`
}

// PlatformFilesystem is one filesystem table row with sizes in KB.
type PlatformFilesystem struct {
	Path     string  `json:"path"`
	FreeKB   float64 `json:"free_kb"`
	TotalKB  float64 `json:"total_kb"`
	Files    int     `json:"files,omitempty"`
	MaxFiles int     `json:"max_files,omitempty"`
}

// PlatformPart is one entry from the Other Parts section.
type PlatformPart struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// PlatformSummary is the typed result of parsing a free-text platform
// details export. A malformed section yields an empty child collection,
// never a parse failure.
type PlatformSummary struct {
	DaemonVersion   string   `json:"daemon_version,omitempty"`
	DaemonHTTPPort  string   `json:"daemon_http_port,omitempty"`
	Host            string   `json:"host,omitempty"`
	HostID          string   `json:"host_id,omitempty"`
	Model           string   `json:"model,omitempty"`
	Product         string   `json:"product,omitempty"`
	Architecture    string   `json:"architecture,omitempty"`
	CPUCount        int      `json:"cpu_count,omitempty"`
	CurrentCPUUsage int      `json:"current_cpu_usage,omitempty"`
	OverallCPUUsage int      `json:"overall_cpu_usage,omitempty"`
	RAMFreeKB       float64  `json:"ram_free_kb,omitempty"`
	RAMTotalKB      float64  `json:"ram_total_kb,omitempty"`
	OS              string   `json:"os,omitempty"`
	Java            string   `json:"java,omitempty"`
	Runtime         string   `json:"runtime,omitempty"`
	SystemHome      string   `json:"system_home,omitempty"`
	UserHome        string   `json:"user_home,omitempty"`
	EnabledProfiles []string `json:"enabled_profiles,omitempty"`
	TLSSupport      string   `json:"tls_support,omitempty"`

	Modules      []PlatformModule      `json:"modules"`
	Licenses     []PlatformLicense     `json:"licenses"`
	Certificates []PlatformCertificate `json:"certificates"`
	Applications []PlatformApplication `json:"applications"`
	Filesystems  []PlatformFilesystem  `json:"filesystems"`
	OtherParts   []PlatformPart        `json:"other_parts"`
}
