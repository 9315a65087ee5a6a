package conversion

import (
	"image"
	"log/slog"

	"toolbox/internal/config"
	"toolbox/internal/imaging"
	"toolbox/internal/pdfkit"
	"toolbox/internal/services/ffmpeg"
	"toolbox/internal/services/office"
	"toolbox/internal/tempfs"
	"toolbox/internal/vector"
)

// Backends bundles the capabilities the family converters run on.
type Backends struct {
	Images ImageCodec
	PDF    PDFToolkit
	Vector VectorRasterizer
	Docx   DocxTranscoder
	Media  MediaTranscoder
	Temp   TempFiles
}

// NewBackends wires the production backends from configuration. temp is
// shared with the sweeper so both agree on directory and prefix.
func NewBackends(cfg *config.Config, temp *tempfs.Manager) Backends {
	return Backends{
		Images: imaging.NewCodec(cfg.Convert.JPEGQuality, cfg.Convert.MaxImagePixels),
		PDF: PDFKit{
			Text: pdfkit.TextOptions{
				OriginX:    cfg.Convert.TextOriginX,
				OriginY:    cfg.Convert.TextOriginY,
				FontSize:   cfg.Convert.TextFontSize,
				LineHeight: cfg.Convert.TextLineHeight,
			},
			MaxPixels: cfg.Convert.MaxImagePixels,
		},
		Vector: vector.NewRasterizer(),
		Docx:   office.NewCLI(office.WithBinary(cfg.Tools.Soffice)),
		Media:  ffmpeg.NewCLI(ffmpeg.WithBinaries(cfg.Tools.FFmpeg, cfg.Tools.FFprobe)),
		Temp:   temp,
	}
}

// NewTempManager returns the scratch manager configured for cfg.
func NewTempManager(cfg *config.Config, logger *slog.Logger) *tempfs.Manager {
	return tempfs.NewManager(cfg.Paths.TempDir, cfg.Sweeper.Prefix, logger)
}

// PDFKit adapts package pdfkit to PDFToolkit.
type PDFKit struct {
	Text      pdfkit.TextOptions
	MaxPixels int64
}

// Open parses data with MuPDF. Rendered pages are bounded by MaxPixels.
func (k PDFKit) Open(data []byte) (PDFDocument, error) {
	doc, err := pdfkit.Open(data, pdfkit.WithMaxPixels(k.MaxPixels))
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ImagePage wraps img in a single-page PDF.
func (k PDFKit) ImagePage(img image.Image) ([]byte, error) {
	return pdfkit.ImagePage(img)
}

// TextPage renders text onto a single A4 page.
func (k PDFKit) TextPage(text string) ([]byte, error) {
	return pdfkit.TextPage(text, k.Text)
}

// Merge concatenates sections in order.
func (k PDFKit) Merge(sections [][]byte) ([]byte, error) {
	return pdfkit.Merge(sections)
}
