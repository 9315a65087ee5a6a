package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"toolbox/internal/conversion"
	"toolbox/internal/format"
	"toolbox/internal/history"
	"toolbox/internal/logging"
	"toolbox/internal/packager"
	"toolbox/internal/services"
)

// Dispatcher converts a batch of uploads for one target.
type Dispatcher interface {
	Convert(ctx context.Context, files []conversion.UploadedFile, targetFormat string) (conversion.BatchResult, error)
}

// Packager assembles a batch into a downloadable artifact.
type Packager interface {
	Package(result conversion.BatchResult) (packager.Artifact, error)
}

// HistoryStore persists and lists conversion records.
type HistoryStore interface {
	Record(ctx context.Context, rec history.Record) (history.Record, error)
	List(ctx context.Context, limit int) ([]history.Record, error)
	Prune(ctx context.Context, keep int) (int64, error)
	Counts(ctx context.Context) (succeeded, failed int, err error)
}

// ConvertService runs conversion requests end to end.
type ConvertService struct {
	dispatcher Dispatcher
	packager   Packager
	history    HistoryStore
	keepRows   int
	logger     *slog.Logger
}

// ConvertOption configures a ConvertService.
type ConvertOption func(*ConvertService)

// WithHistory records every request in store and trims it to keepRows.
func WithHistory(store HistoryStore, keepRows int) ConvertOption {
	return func(s *ConvertService) {
		s.history = store
		s.keepRows = keepRows
	}
}

// NewConvertService constructs a ConvertService.
func NewConvertService(dispatcher Dispatcher, pkg Packager, logger *slog.Logger, opts ...ConvertOption) *ConvertService {
	s := &ConvertService{
		dispatcher: dispatcher,
		packager:   pkg,
		logger:     logging.NewComponentLogger(logger, "convert_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert dispatches files, packages the result, and records the outcome. A
// request ID is assigned when ctx does not already carry one.
func (s *ConvertService) Convert(ctx context.Context, files []conversion.UploadedFile, targetFormat string) (packager.Artifact, error) {
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
		ctx = services.WithRequestID(ctx, requestID)
	}
	started := time.Now()

	rec := history.Record{
		RequestID:    requestID,
		TargetFormat: targetFormat,
		InputCount:   len(files),
	}
	if target, err := format.ParseTarget(targetFormat); err == nil {
		rec.TargetFormat = target.Format
		rec.Family = target.Family.String()
	}

	artifact, result, err := s.run(ctx, files, targetFormat)
	rec.Duration = time.Since(started)
	if err != nil {
		rec.Status = history.StatusFailed
		rec.ErrorKind = services.Kind(err)
		rec.ErrorMessage = err.Error()
	} else {
		rec.Status = history.StatusSucceeded
		rec.OutputCount = artifact.Entries
		rec.SkippedCount = result.Skipped()
		rec.ArtifactName = artifact.Name
		rec.ArtifactBytes = int64(len(artifact.Data))
	}
	s.record(ctx, rec)
	return artifact, err
}

func (s *ConvertService) run(ctx context.Context, files []conversion.UploadedFile, targetFormat string) (packager.Artifact, conversion.BatchResult, error) {
	result, err := s.dispatcher.Convert(ctx, files, targetFormat)
	if err != nil {
		return packager.Artifact{}, conversion.BatchResult{}, err
	}
	artifact, err := s.packager.Package(result)
	if err != nil {
		return packager.Artifact{}, conversion.BatchResult{}, err
	}
	return artifact, result, nil
}

func (s *ConvertService) record(ctx context.Context, rec history.Record) {
	if s.history == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	logger := logging.WithContext(ctx, s.logger)
	if _, err := s.history.Record(ctx, rec); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check data_dir permissions and disk space"),
			logging.String(logging.FieldImpact, "conversion missing from history"),
		)
		return
	}
	if removed, err := s.history.Prune(ctx, s.keepRows); err != nil {
		logging.WarnWithContext(logger, "history prune failed", "history_prune_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete history.db if the problem persists"),
			logging.String(logging.FieldImpact, "history grows past max_rows"),
		)
	} else if removed > 0 {
		logger.Debug("history pruned", logging.Int64("removed", removed))
	}
}

// History lists up to limit recorded conversions, newest first.
func (s *ConvertService) History(ctx context.Context, limit int) ([]ConversionRecord, error) {
	if s.history == nil {
		return []ConversionRecord{}, nil
	}
	records, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return FromHistoryRecords(records), nil
}

// Counts totals recorded conversions by outcome.
func (s *ConvertService) Counts(ctx context.Context) (ConversionCounts, error) {
	if s.history == nil {
		return ConversionCounts{}, nil
	}
	ok, failed, err := s.history.Counts(ctx)
	if err != nil {
		return ConversionCounts{}, err
	}
	return ConversionCounts{Succeeded: ok, Failed: failed}, nil
}
