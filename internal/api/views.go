package api

import (
	"toolbox/internal/deps"
	"toolbox/internal/history"
	"toolbox/internal/preflight"
	"toolbox/internal/tempfs"
)

// FromHistoryRecord converts a ledger row to its API representation.
func FromHistoryRecord(rec history.Record) ConversionRecord {
	dto := ConversionRecord{
		ID:            rec.ID,
		RequestID:     rec.RequestID,
		TargetFormat:  rec.TargetFormat,
		Family:        rec.Family,
		InputCount:    rec.InputCount,
		OutputCount:   rec.OutputCount,
		SkippedCount:  rec.SkippedCount,
		ArtifactName:  rec.ArtifactName,
		ArtifactBytes: rec.ArtifactBytes,
		Status:        rec.Status,
		ErrorKind:     rec.ErrorKind,
		ErrorMessage:  rec.ErrorMessage,
		DurationMS:    rec.Duration.Milliseconds(),
	}
	if !rec.CreatedAt.IsZero() {
		dto.CreatedAt = rec.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromHistoryRecords converts ledger rows into API DTOs. The result is never
// nil so it encodes as an empty JSON array.
func FromHistoryRecords(records []history.Record) []ConversionRecord {
	out := make([]ConversionRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, FromHistoryRecord(rec))
	}
	return out
}

// FromDependencyStatuses converts dependency checks into API DTOs.
func FromDependencyStatuses(statuses []deps.Status) []DependencyStatus {
	out := make([]DependencyStatus, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, DependencyStatus{
			Name:        s.Name,
			Command:     s.Command,
			Description: s.Description,
			Optional:    s.Optional,
			Available:   s.Available,
			Path:        s.Path,
			Detail:      s.Detail,
		})
	}
	return out
}

// FromPreflightResults converts preflight checks into API DTOs.
func FromPreflightResults(results []preflight.Result) []CheckResult {
	out := make([]CheckResult, 0, len(results))
	for _, r := range results {
		out = append(out, CheckResult{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}

// FromSweepStats converts sweeper statistics into an API DTO.
func FromSweepStats(enabled bool, dir, prefix string, stats tempfs.SweepStats) SweeperStatus {
	dto := SweeperStatus{
		Enabled:      enabled,
		Dir:          dir,
		Prefix:       prefix,
		Passes:       stats.Passes,
		TotalRemoved: stats.TotalRemoved,
		LastErrors:   stats.LastErrors,
	}
	if !stats.LastRun.IsZero() {
		dto.LastRun = stats.LastRun.UTC().Format(dateTimeFormat)
	}
	return dto
}
