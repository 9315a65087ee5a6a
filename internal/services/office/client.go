package office

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"toolbox/internal/services"
)

var commandContext = exec.CommandContext

// Converter defines PDF to DOCX transcoding behaviour.
type Converter interface {
	PDFToDOCX(ctx context.Context, inputPath, outputPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the soffice command-line converter.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "soffice"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Binary returns the executable the client runs.
func (c *CLI) Binary() string { return c.binary }

// PDFToDOCX converts the PDF at inputPath and writes the result to
// outputPath. soffice runs with a private profile in a scratch directory next
// to outputPath so concurrent conversions never share LibreOffice state.
func (c *CLI) PDFToDOCX(ctx context.Context, inputPath, outputPath string) error {
	if strings.TrimSpace(inputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}

	workDir := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + "-soffice"
	if err := os.MkdirAll(workDir, 0o700); err != nil {
		return services.Wrap(services.ErrResource, "office", "prepare", "create work dir", err)
	}
	defer os.RemoveAll(workDir)

	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return services.Wrap(services.ErrResource, "office", "prepare", "resolve input", err)
	}
	absWork, err := filepath.Abs(workDir)
	if err != nil {
		return services.Wrap(services.ErrResource, "office", "prepare", "resolve work dir", err)
	}

	args := []string{
		"-env:UserInstallation=file://" + filepath.ToSlash(filepath.Join(absWork, "profile")),
		"--headless",
		"--norestore",
		"--infilter=writer_pdf_import",
		"--convert-to", "docx:MS Word 2007 XML",
		"--outdir", absWork,
		absInput,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrConversionTool, "office", "pdf to docx", fmt.Sprintf("soffice failed: %s", strings.TrimSpace(string(output))), err)
	}

	base := filepath.Base(absInput)
	produced := filepath.Join(absWork, strings.TrimSuffix(base, filepath.Ext(base))+".docx")
	if _, err := os.Stat(produced); err != nil {
		return services.Wrap(services.ErrConversionTool, "office", "pdf to docx", fmt.Sprintf("soffice produced no output: %s", strings.TrimSpace(string(output))), err)
	}
	if err := os.Rename(produced, outputPath); err != nil {
		return services.Wrap(services.ErrResource, "office", "pdf to docx", "move output", err)
	}
	return nil
}

var _ Converter = (*CLI)(nil)
