package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ConversionRecord describes one handled conversion request.
type ConversionRecord struct {
	ID            int64  `json:"id"`
	RequestID     string `json:"requestId"`
	TargetFormat  string `json:"targetFormat"`
	Family        string `json:"family"`
	InputCount    int    `json:"inputCount"`
	OutputCount   int    `json:"outputCount"`
	SkippedCount  int    `json:"skippedCount"`
	ArtifactName  string `json:"artifactName,omitempty"`
	ArtifactBytes int64  `json:"artifactBytes"`
	Status        string `json:"status"`
	ErrorKind     string `json:"errorKind,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
	DurationMS    int64  `json:"durationMs"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// ConversionListResponse wraps a collection of history records.
type ConversionListResponse struct {
	Items []ConversionRecord `json:"items"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Path        string `json:"path,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// CheckResult mirrors a preflight check.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// SweeperStatus summarizes background temp cleanup.
type SweeperStatus struct {
	Enabled      bool   `json:"enabled"`
	Dir          string `json:"dir"`
	Prefix       string `json:"prefix"`
	LastRun      string `json:"lastRun,omitempty"`
	Passes       int    `json:"passes"`
	TotalRemoved int    `json:"totalRemoved"`
	LastErrors   int    `json:"lastErrors"`
}

// ConversionCounts totals the history ledger by outcome.
type ConversionCounts struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running       bool               `json:"running"`
	PID           int                `json:"pid"`
	HistoryDBPath string             `json:"historyDbPath,omitempty"`
	LockFilePath  string             `json:"lockFilePath"`
	Targets       []string           `json:"targets"`
	Sweeper       SweeperStatus      `json:"sweeper"`
	Conversions   ConversionCounts   `json:"conversions"`
	Dependencies  []DependencyStatus `json:"dependencies"`
	Preflight     []CheckResult      `json:"preflight"`
}
