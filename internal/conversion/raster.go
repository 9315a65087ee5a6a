package conversion

import (
	"context"
	"image"
	"log/slog"

	"toolbox/internal/format"
	"toolbox/internal/imaging"
	"toolbox/internal/logging"
	"toolbox/internal/services"
)

// RasterConverter produces png, jpg, or webp images. PDF inputs yield one
// image per page; other inputs yield a single image.
type RasterConverter struct {
	images ImageCodec
	vector VectorRasterizer
	pdf    PDFToolkit
	logger *slog.Logger
}

// NewRasterConverter constructs a RasterConverter.
func NewRasterConverter(images ImageCodec, vector VectorRasterizer, pdf PDFToolkit, logger *slog.Logger) *RasterConverter {
	return &RasterConverter{images: images, vector: vector, pdf: pdf, logger: logging.NewComponentLogger(logger, "raster")}
}

// Convert implements Converter.
func (r *RasterConverter) Convert(ctx context.Context, in Input) ([]Blob, error) {
	ext := in.Target.Ext()
	switch in.Kind {
	case format.PDF:
		return r.pages(ctx, in)
	case format.VectorImage:
		intermediate, err := r.vector.SVGToPNG(in.Data)
		if err != nil {
			return nil, services.Wrap(services.ErrConversionTool, "raster", "rasterize svg", in.Name, err)
		}
		data, err := r.reencode(intermediate, ext)
		if err != nil {
			return nil, services.Wrap(services.ErrConversionTool, "raster", "encode", in.Name, err)
		}
		return []Blob{{Name: FileName(in.Index, ext), Data: data}}, nil
	case format.RasterImage:
		data, err := r.reencode(in.Data, ext)
		if err != nil {
			return nil, services.Wrap(services.ErrConversionTool, "raster", "encode", in.Name, err)
		}
		return []Blob{{Name: FileName(in.Index, ext), Data: data}}, nil
	default:
		return nil, nil
	}
}

func (r *RasterConverter) reencode(data []byte, ext string) ([]byte, error) {
	img, err := r.images.Decode(data)
	if err != nil {
		return nil, err
	}
	return r.encode(img, ext)
}

func (r *RasterConverter) encode(img image.Image, ext string) ([]byte, error) {
	if ext == "jpg" {
		img = r.images.ConvertColorMode(img, imaging.ModeRGB)
	}
	return r.images.Encode(img, ext)
}

func (r *RasterConverter) pages(ctx context.Context, in Input) ([]Blob, error) {
	doc, err := r.pdf.Open(in.Data)
	if err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "raster", "open pdf", in.Name, err)
	}
	defer doc.Close()

	ext := in.Target.Ext()
	count := doc.PageCount()
	blobs := make([]Blob, 0, count)
	for page := 0; page < count; page++ {
		img, err := doc.RenderPage(page)
		if err != nil {
			return nil, services.Wrap(services.ErrConversionTool, "raster", "render page", in.Name, err)
		}
		data, err := r.encode(img, ext)
		if err != nil {
			return nil, services.Wrap(services.ErrConversionTool, "raster", "encode page", in.Name, err)
		}
		blobs = append(blobs, Blob{Name: PageName(in.Index, page, ext), Data: data})
	}
	logging.WithContext(ctx, r.logger).Debug("pdf pages rendered",
		logging.String(logging.FieldFileName, in.Name),
		logging.Int("pages", count),
	)
	return blobs, nil
}
