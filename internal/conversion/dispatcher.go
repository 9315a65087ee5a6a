package conversion

import (
	"context"
	"log/slog"
	"time"

	"toolbox/internal/format"
	"toolbox/internal/logging"
	"toolbox/internal/services"
)

// Dispatcher runs a batch of files through the converter for one target.
type Dispatcher struct {
	converters map[format.Family]Converter
	logger     *slog.Logger
}

// NewDispatcher builds the four family converters over b.
func NewDispatcher(b Backends, logger *slog.Logger) *Dispatcher {
	logger = logging.NewComponentLogger(logger, "conversion")
	return NewDispatcherWith(map[format.Family]Converter{
		format.FamilyPDF:      NewPDFUnifier(b.Images, b.Vector, b.PDF, logger),
		format.FamilyRaster:   NewRasterConverter(b.Images, b.Vector, b.PDF, logger),
		format.FamilyDocument: NewDocumentConverter(b.PDF, b.Docx, b.Temp, logger),
		format.FamilyMedia:    NewMediaConverter(b.Media, b.Temp, logger),
	}, logger)
}

// NewDispatcherWith uses caller-supplied converters keyed by family.
func NewDispatcherWith(converters map[format.Family]Converter, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Dispatcher{converters: converters, logger: logger}
}

// Convert parses targetFormat, then converts files one at a time in input
// order. The target is validated before any file is inspected. The first
// converter error aborts the batch and no partial result is returned.
//
// Cancellation of ctx is not honoured once the batch has started; a batch
// always runs to completion or failure.
func (d *Dispatcher) Convert(ctx context.Context, files []UploadedFile, targetFormat string) (BatchResult, error) {
	target, err := format.ParseTarget(targetFormat)
	if err != nil {
		return BatchResult{}, err
	}
	converter, ok := d.converters[target.Family]
	if !ok || converter == nil {
		return BatchResult{}, services.Wrap(services.ErrUnsupportedTarget, "conversion", "dispatch", "no converter for "+target.Family.String(), nil)
	}
	if len(files) == 0 {
		return BatchResult{}, services.Wrap(services.ErrValidation, "conversion", "dispatch", "no files uploaded", nil)
	}

	ctx = services.WithTargetFormat(context.WithoutCancel(ctx), target.Format)
	logger := logging.WithContext(ctx, d.logger)
	started := time.Now()
	logger.Info("conversion batch started",
		logging.String("family", target.Family.String()),
		logging.Int("files", len(files)),
	)

	result := BatchResult{Target: target, Units: make([]Unit, 0, len(files))}
	for idx, file := range files {
		in := Input{
			Index:  idx,
			Name:   file.Name,
			Kind:   format.Classify(file.Name),
			Data:   file.Data,
			Target: target,
		}
		fileCtx := services.WithFileIndex(ctx, idx)
		blobs, err := converter.Convert(fileCtx, in)
		if err != nil {
			logging.WarnWithContext(logging.WithContext(fileCtx, d.logger), "conversion batch aborted", "batch_aborted",
				logging.String(logging.FieldFileName, file.Name),
				logging.String("source_kind", in.Kind.String()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix or remove the failing file and resubmit the batch"),
				logging.String(logging.FieldImpact, "no output produced for this request"),
			)
			return BatchResult{}, err
		}
		if len(blobs) == 0 {
			logging.WithContext(fileCtx, d.logger).Debug("source skipped",
				logging.String(logging.FieldEventType, "source_skipped"),
				logging.String(logging.FieldFileName, file.Name),
				logging.String("source_kind", in.Kind.String()),
			)
		}
		result.Units = append(result.Units, Unit{Index: idx, Source: file.Name, Kind: in.Kind, Blobs: blobs})
	}

	logger.Info("conversion batch finished",
		logging.Int("outputs", len(result.Blobs())),
		logging.Int("skipped", result.Skipped()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}
