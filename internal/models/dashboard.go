package models

// HostStats is a snapshot of the machine the backend runs on.
type HostStats struct {
	Hostname      string  `json:"hostname"`
	UptimeSeconds uint64  `json:"uptimeSeconds"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	MemoryUsedMB  uint64  `json:"memoryUsedMB"`
	MemoryTotalMB uint64  `json:"memoryTotalMB"`
}

// DashboardStats holds the counters shown on the administration dashboard.
type DashboardStats struct {
	Accounts     int        `json:"accounts"`
	Admins       int        `json:"admins"`
	Libraries    int        `json:"libraries"`
	SavedLessons int        `json:"savedLessons"`
	Feedback     int        `json:"feedback"`
	NewFeedback  int        `json:"newFeedback"`
	Messages     int        `json:"messages"`
	Host         *HostStats `json:"host,omitempty"`
}
