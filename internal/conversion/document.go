package conversion

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"toolbox/internal/format"
	"toolbox/internal/logging"
	"toolbox/internal/services"
)

// DocumentConverter produces docx or txt entries.
type DocumentConverter struct {
	pdf    PDFToolkit
	docx   DocxTranscoder
	temp   TempFiles
	logger *slog.Logger
}

// NewDocumentConverter constructs a DocumentConverter.
func NewDocumentConverter(pdf PDFToolkit, docx DocxTranscoder, temp TempFiles, logger *slog.Logger) *DocumentConverter {
	return &DocumentConverter{pdf: pdf, docx: docx, temp: temp, logger: logging.NewComponentLogger(logger, "document")}
}

// Convert implements Converter. docx accepts PDF inputs only. txt extracts
// the text of PDF inputs and passes every other input through byte for byte.
func (c *DocumentConverter) Convert(ctx context.Context, in Input) ([]Blob, error) {
	switch in.Target.Format {
	case "docx":
		if in.Kind != format.PDF {
			return nil, nil
		}
		data, err := c.toDOCX(ctx, in)
		if err != nil {
			return nil, err
		}
		return []Blob{{Name: FileName(in.Index, "docx"), Data: data}}, nil
	case "txt":
		if in.Kind != format.PDF {
			return []Blob{{Name: FileName(in.Index, "txt"), Data: in.Data}}, nil
		}
		text, err := c.extractText(in)
		if err != nil {
			return nil, err
		}
		return []Blob{{Name: FileName(in.Index, "txt"), Data: []byte(text)}}, nil
	default:
		return nil, services.Wrap(services.ErrUnsupportedTarget, "document", "convert", "unsupported document format "+in.Target.Format, nil)
	}
}

func (c *DocumentConverter) extractText(in Input) (string, error) {
	doc, err := c.pdf.Open(in.Data)
	if err != nil {
		return "", services.Wrap(services.ErrConversionTool, "document", "open pdf", in.Name, err)
	}
	defer doc.Close()

	var b strings.Builder
	for page := 0; page < doc.PageCount(); page++ {
		text, err := doc.PageText(page)
		if err != nil {
			return "", services.Wrap(services.ErrConversionTool, "document", "extract text", in.Name, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// toDOCX stages the PDF on disk because the transcoder only works on paths.
// Both scratch files are gone by the time this returns.
func (c *DocumentConverter) toDOCX(ctx context.Context, in Input) ([]byte, error) {
	var out []byte
	err := c.temp.WithTempFile(".pdf", func(inputPath string) error {
		if err := os.WriteFile(inputPath, in.Data, 0o600); err != nil {
			return services.Wrap(services.ErrResource, "document", "stage pdf", in.Name, err)
		}
		return c.temp.WithTempFile(".docx", func(outputPath string) error {
			if err := c.docx.PDFToDOCX(ctx, inputPath, outputPath); err != nil {
				return services.Wrap(services.ErrConversionTool, "document", "pdf to docx", in.Name, err)
			}
			data, err := os.ReadFile(outputPath)
			if err != nil {
				return services.Wrap(services.ErrResource, "document", "read docx", in.Name, err)
			}
			out = data
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	logging.WithContext(ctx, c.logger).Debug("docx produced",
		logging.String(logging.FieldFileName, in.Name),
		logging.Int("bytes", len(out)),
	)
	return out, nil
}
