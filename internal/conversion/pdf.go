package conversion

import (
	"context"
	"log/slog"
	"strings"

	"toolbox/internal/format"
	"toolbox/internal/imaging"
	"toolbox/internal/logging"
	"toolbox/internal/services"
)

// PDFUnifier turns each input into a PDF section named file_<i>.pdf. The
// packager merges the sections in batch order.
type PDFUnifier struct {
	images ImageCodec
	vector VectorRasterizer
	pdf    PDFToolkit
	logger *slog.Logger
}

// NewPDFUnifier constructs a PDFUnifier.
func NewPDFUnifier(images ImageCodec, vector VectorRasterizer, pdf PDFToolkit, logger *slog.Logger) *PDFUnifier {
	return &PDFUnifier{images: images, vector: vector, pdf: pdf, logger: logging.NewComponentLogger(logger, "pdf_unifier")}
}

// Convert implements Converter.
func (u *PDFUnifier) Convert(ctx context.Context, in Input) ([]Blob, error) {
	var (
		section []byte
		err     error
	)
	switch in.Kind {
	case format.RasterImage:
		section, err = u.fromRaster(in.Data)
	case format.VectorImage:
		section, err = u.vector.SVGToPDF(in.Data)
	case format.PDF:
		section, err = u.passThrough(in.Data)
	case format.TextLike:
		section, err = u.pdf.TextPage(strings.ToValidUTF8(string(in.Data), "\uFFFD"))
	default:
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "pdf_unifier", in.Kind.String(), in.Name, err)
	}
	logging.WithContext(ctx, u.logger).Debug("pdf section built",
		logging.String(logging.FieldFileName, in.Name),
		logging.Int("bytes", len(section)),
	)
	return []Blob{{Name: FileName(in.Index, "pdf"), Data: section}}, nil
}

func (u *PDFUnifier) fromRaster(data []byte) ([]byte, error) {
	img, err := u.images.Decode(data)
	if err != nil {
		return nil, err
	}
	return u.pdf.ImagePage(u.images.ConvertColorMode(img, imaging.ModeRGB))
}

// passThrough keeps the bytes unmodified but rejects input the merge step
// would be unable to read.
func (u *PDFUnifier) passThrough(data []byte) ([]byte, error) {
	doc, err := u.pdf.Open(data)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	if doc.PageCount() == 0 {
		return nil, services.Wrap(services.ErrConversionTool, "pdf_unifier", "open", "document has no pages", nil)
	}
	return data, nil
}
