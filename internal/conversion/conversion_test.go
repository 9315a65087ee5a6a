package conversion_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"toolbox/internal/conversion"
	"toolbox/internal/format"
	"toolbox/internal/imaging"
	"toolbox/internal/logging"
	"toolbox/internal/pdfkit"
	"toolbox/internal/services"
	"toolbox/internal/services/ffmpeg"
	"toolbox/internal/tempfs"
	"toolbox/internal/testsupport"
	"toolbox/internal/vector"
)

type fakeDocx struct {
	inputs [][]byte
	paths  []string
	err    error
}

func (f *fakeDocx) PDFToDOCX(_ context.Context, inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	f.inputs = append(f.inputs, data)
	f.paths = append(f.paths, inputPath, outputPath)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, append([]byte("docx:"), data[:4]...), 0o600)
}

type fakeMedia struct {
	calls  []string
	inputs []string
	err    error
}

func (f *fakeMedia) OpenAudio(_ context.Context, path string) (ffmpeg.Source, error) {
	f.calls = append(f.calls, "open_audio")
	f.inputs = append(f.inputs, path)
	if strings.HasSuffix(path, ".mp4") {
		return ffmpeg.Source{}, ffmpeg.ErrNoStream
	}
	return ffmpeg.Source{Path: path, AudioStream: 0, VideoStream: -1}, nil
}

func (f *fakeMedia) OpenAudioVideo(_ context.Context, path string) (ffmpeg.Source, error) {
	f.calls = append(f.calls, "open_audio_video")
	if !strings.HasSuffix(path, ".mp4") {
		return ffmpeg.Source{}, ffmpeg.ErrNoStream
	}
	return ffmpeg.Source{Path: path, AudioStream: 1, VideoStream: 0}, nil
}

func (f *fakeMedia) WriteAudio(_ context.Context, src ffmpeg.Source, outputPath, format string) error {
	f.calls = append(f.calls, "write_audio:"+format)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("audio:"+format), 0o600)
}

func (f *fakeMedia) WriteVideo(_ context.Context, src ffmpeg.Source, outputPath, codec string) error {
	f.calls = append(f.calls, "write_video:"+codec)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("video:"+codec), 0o600)
}

// trackingPDF counts documents opened and closed through the real toolkit.
type trackingPDF struct {
	conversion.PDFKit
	opened, closed int
}

func (p *trackingPDF) Open(data []byte) (conversion.PDFDocument, error) {
	doc, err := p.PDFKit.Open(data)
	if err != nil {
		return nil, err
	}
	p.opened++
	return &trackingDoc{PDFDocument: doc, owner: p}, nil
}

type trackingDoc struct {
	conversion.PDFDocument
	owner *trackingPDF
}

func (d *trackingDoc) Close() error {
	d.owner.closed++
	return d.PDFDocument.Close()
}

type harness struct {
	dispatcher *conversion.Dispatcher
	tempDir    string
	docx       *fakeDocx
	media      *fakeMedia
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tempDir := filepath.Join(t.TempDir(), "scratch")
	h := &harness{tempDir: tempDir, docx: &fakeDocx{}, media: &fakeMedia{}}
	h.dispatcher = conversion.NewDispatcher(conversion.Backends{
		Images: imaging.NewCodec(0, 0),
		PDF:    conversion.PDFKit{Text: pdfkit.DefaultTextOptions()},
		Vector: vector.NewRasterizer(),
		Docx:   h.docx,
		Media:  h.media,
		Temp:   tempfs.NewManager(tempDir, "", logging.NewNop()),
	}, logging.NewNop())
	return h
}

func (h *harness) assertNoTempFiles(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.tempDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("temp files left behind: %v", names)
	}
}

func blobNames(result conversion.BatchResult) []string {
	var names []string
	for _, blob := range result.Blobs() {
		names = append(names, blob.Name)
	}
	return names
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return img
}

func pageWidths(t *testing.T, data []byte) []int {
	t.Helper()
	doc, err := pdfkit.Open(data)
	if err != nil {
		t.Fatalf("open merged pdf: %v", err)
	}
	defer doc.Close()
	widths := make([]int, 0, doc.PageCount())
	for i := 0; i < doc.PageCount(); i++ {
		img, err := doc.RenderPage(i)
		if err != nil {
			t.Fatalf("render page %d: %v", i, err)
		}
		widths = append(widths, img.Bounds().Dx())
	}
	return widths
}

func closeTo(got []int, want []int) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if d := got[i] - want[i]; d < -1 || d > 1 {
			return false
		}
	}
	return true
}

type recordingConverter struct{ calls int }

func (r *recordingConverter) Convert(context.Context, conversion.Input) ([]conversion.Blob, error) {
	r.calls++
	return nil, nil
}

func TestConvertRejectsUnknownTargetBeforeAnyWork(t *testing.T) {
	rec := &recordingConverter{}
	d := conversion.NewDispatcherWith(map[format.Family]conversion.Converter{
		format.FamilyPDF:      rec,
		format.FamilyRaster:   rec,
		format.FamilyDocument: rec,
		format.FamilyMedia:    rec,
	}, logging.NewNop())

	_, err := d.Convert(context.Background(), []conversion.UploadedFile{{Name: "a.png", Data: []byte("x")}}, "exe")
	if !errors.Is(err, services.ErrUnsupportedTarget) {
		t.Fatalf("expected unsupported target, got %v", err)
	}
	if rec.calls != 0 {
		t.Fatalf("converter invoked %d times for a rejected target", rec.calls)
	}
}

func TestConvertRejectsEmptyBatch(t *testing.T) {
	h := newHarness(t)
	_, err := h.dispatcher.Convert(context.Background(), nil, "pdf")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPDFFamilyPreservesInputOrder(t *testing.T) {
	h := newHarness(t)
	files := []conversion.UploadedFile{
		{Name: "a.png", Data: testsupport.PNG(t, 50, 40, color.RGBA{R: 255, A: 255})},
		{Name: "doc.pdf", Data: testsupport.PDF(t, 100, 120)},
		{Name: "tool.exe", Data: []byte("MZ")},
		{Name: "notes.txt", Data: []byte("hello\nworld\xff")},
		{Name: "logo.svg", Data: []byte(testsupport.SVG)},
		{Name: "b.png", Data: testsupport.PNG(t, 70, 40, color.RGBA{B: 255, A: 255})},
	}

	result, err := h.dispatcher.Convert(context.Background(), files, "PDF")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if len(result.Units) != len(files) {
		t.Fatalf("expected %d units, got %d", len(files), len(result.Units))
	}
	if !result.Units[2].Skipped() || result.Skipped() != 1 {
		t.Fatalf("expected only the exe to be skipped, got %+v", result.Units[2])
	}
	want := []string{"file_0.pdf", "file_1.pdf", "file_3.pdf", "file_4.pdf", "file_5.pdf"}
	if got := blobNames(result); !slices.Equal(got, want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
	if !bytes.Equal(result.Units[1].Blobs[0].Data, files[1].Data) {
		t.Fatalf("pdf input was not passed through unchanged")
	}

	sections := make([][]byte, 0, len(result.Blobs()))
	for _, blob := range result.Blobs() {
		sections = append(sections, blob.Data)
	}
	merged, err := pdfkit.Merge(sections)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	widths := pageWidths(t, merged)
	if !closeTo(widths, []int{50, 100, 120, 595, 40, 70}) {
		t.Fatalf("merged page widths = %v", widths)
	}
}

func TestPDFFamilyTwoImagesScenario(t *testing.T) {
	h := newHarness(t)
	result, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "a.png", Data: testsupport.PNG(t, 30, 30, color.White)},
		{Name: "b.png", Data: testsupport.PNG(t, 60, 30, color.Black)},
	}, "pdf")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	merged, err := pdfkit.Merge([][]byte{result.Units[0].Blobs[0].Data, result.Units[1].Blobs[0].Data})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if widths := pageWidths(t, merged); !closeTo(widths, []int{30, 60}) {
		t.Fatalf("page widths = %v, want [30 60]", widths)
	}
}

func TestPDFFamilyRejectsCorruptPDF(t *testing.T) {
	h := newHarness(t)
	_, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "a.png", Data: testsupport.PNG(t, 10, 10, color.White)},
		{Name: "broken.pdf", Data: []byte("not a pdf")},
	}, "pdf")
	if !errors.Is(err, services.ErrConversionTool) {
		t.Fatalf("expected conversion tool error, got %v", err)
	}
}

func TestPDFFamilyClosesEveryOpenedDocument(t *testing.T) {
	h := newHarness(t)
	pdf := &trackingPDF{PDFKit: conversion.PDFKit{Text: pdfkit.DefaultTextOptions()}}
	dispatcher := conversion.NewDispatcher(conversion.Backends{
		Images: imaging.NewCodec(0, 0),
		PDF:    pdf,
		Vector: vector.NewRasterizer(),
		Docx:   h.docx,
		Media:  h.media,
		Temp:   tempfs.NewManager(h.tempDir, "", logging.NewNop()),
	}, logging.NewNop())

	_, err := dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "a.pdf", Data: testsupport.PDF(t, 30)},
		{Name: "b.pdf", Data: testsupport.PDF(t, 60, 90)},
	}, "pdf")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if pdf.opened != 2 || pdf.closed != 2 {
		t.Fatalf("opened %d closed %d, want 2 and 2", pdf.opened, pdf.closed)
	}
}

func TestRasterFamilyRendersEveryPDFPage(t *testing.T) {
	h := newHarness(t)
	result, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "doc.pdf", Data: testsupport.PDF(t, 100, 150, 180)},
	}, "png")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	want := []string{"file_0_page_0.png", "file_0_page_1.png", "file_0_page_2.png"}
	if got := blobNames(result); !slices.Equal(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for i, w := range []int{100, 150, 180} {
		img := decode(t, result.Units[0].Blobs[i].Data)
		if d := img.Bounds().Dx() - w; d < -1 || d > 1 {
			t.Fatalf("page %d width = %d, want %d", i, img.Bounds().Dx(), w)
		}
	}
}

func TestOversizedImageRejectedForPDFAndRaster(t *testing.T) {
	h := newHarness(t)
	header := testsupport.PNGHeader(t, 60000, 60000)
	for _, target := range []string{"pdf", "jpg"} {
		_, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
			{Name: "huge.png", Data: header},
		}, target)
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", target, err)
		}
	}
}

func TestRasterFamilyRejectsOversizedPDFPage(t *testing.T) {
	h := newHarness(t)
	dispatcher := conversion.NewDispatcher(conversion.Backends{
		Images: imaging.NewCodec(0, 0),
		PDF:    conversion.PDFKit{Text: pdfkit.DefaultTextOptions(), MaxPixels: 10_000},
		Vector: vector.NewRasterizer(),
		Docx:   h.docx,
		Media:  h.media,
		Temp:   tempfs.NewManager(h.tempDir, "", logging.NewNop()),
	}, logging.NewNop())

	// 100 x 200 points renders to 20000 pixels.
	_, err := dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "doc.pdf", Data: testsupport.PDF(t, 100)},
	}, "png")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRasterFamilyKeepsDimensions(t *testing.T) {
	h := newHarness(t)
	for _, target := range []string{"png", "jpg", "webp"} {
		result, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
			{Name: "photo.png", Data: testsupport.PNG(t, 33, 17, color.RGBA{G: 200, A: 255})},
		}, target)
		if err != nil {
			t.Fatalf("%s: Convert returned error: %v", target, err)
		}
		blob := result.Units[0].Blobs[0]
		if blob.Name != "file_0."+target {
			t.Fatalf("%s: entry name = %s", target, blob.Name)
		}
		img := decode(t, blob.Data)
		if img.Bounds().Dx() != 33 || img.Bounds().Dy() != 17 {
			t.Fatalf("%s: bounds = %v", target, img.Bounds())
		}
	}
}

func TestRasterFamilyJPGIsAlwaysRGB(t *testing.T) {
	h := newHarness(t)
	gray := image.NewGray(image.Rect(0, 0, 8, 8))
	translucent := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range translucent.Pix {
		translucent.Pix[i] = 0x40
	}
	result, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "gray.png", Data: testsupport.EncodePNG(t, gray)},
		{Name: "alpha.png", Data: testsupport.EncodePNG(t, translucent)},
	}, "jpeg")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if got := blobNames(result); !slices.Equal(got, []string{"file_0.jpg", "file_1.jpg"}) {
		t.Fatalf("entries = %v", got)
	}
	for _, blob := range result.Blobs() {
		if mode := imaging.ModeOf(decode(t, blob.Data)); mode != imaging.ModeRGB {
			t.Fatalf("%s decoded as %s, want RGB", blob.Name, mode)
		}
	}
}

func TestRasterFamilyRasterizesSVG(t *testing.T) {
	h := newHarness(t)
	result, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "logo.svg", Data: []byte(testsupport.SVG)},
	}, "webp")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	img := decode(t, result.Units[0].Blobs[0].Data)
	if img.Bounds().Dx() != 40 || img.Bounds().Dy() != 20 {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestRasterFamilySkipsUnknownAndText(t *testing.T) {
	h := newHarness(t)
	result, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "tool.exe", Data: []byte("MZ")},
		{Name: "notes.txt", Data: []byte("hi")},
	}, "png")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if len(result.Blobs()) != 0 || result.Skipped() != 2 {
		t.Fatalf("expected nothing converted, got %v", blobNames(result))
	}
}

func TestBatchAbortsOnFirstFailure(t *testing.T) {
	h := newHarness(t)
	result, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "good.png", Data: testsupport.PNG(t, 4, 4, color.White)},
		{Name: "bad.png", Data: []byte("garbage")},
		{Name: "later.png", Data: testsupport.PNG(t, 4, 4, color.White)},
	}, "png")
	if !errors.Is(err, services.ErrConversionTool) {
		t.Fatalf("expected conversion tool error, got %v", err)
	}
	if len(result.Units) != 0 {
		t.Fatalf("expected no partial result, got %d units", len(result.Units))
	}
}

func TestDocumentFamilyDOCX(t *testing.T) {
	h := newHarness(t)
	pdf := testsupport.PDF(t, 100)
	result, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "report.pdf", Data: pdf},
		{Name: "notes.txt", Data: []byte("skip me")},
	}, "docx")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if got := blobNames(result); !slices.Equal(got, []string{"file_0.docx"}) {
		t.Fatalf("entries = %v", got)
	}
	if string(result.Units[0].Blobs[0].Data) != "docx:%PDF" {
		t.Fatalf("unexpected docx payload %q", result.Units[0].Blobs[0].Data)
	}
	if len(h.docx.inputs) != 1 || !bytes.Equal(h.docx.inputs[0], pdf) {
		t.Fatalf("transcoder did not see the staged pdf")
	}
	if !strings.HasSuffix(h.docx.paths[0], ".pdf") || !strings.HasSuffix(h.docx.paths[1], ".docx") {
		t.Fatalf("unexpected scratch paths %v", h.docx.paths)
	}
	h.assertNoTempFiles(t)
}

func TestDocumentFamilyDOCXFailureCleansUp(t *testing.T) {
	h := newHarness(t)
	h.docx.err = errors.New("soffice crashed")
	_, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "report.pdf", Data: testsupport.PDF(t, 100)},
	}, "docx")
	if !errors.Is(err, services.ErrConversionTool) {
		t.Fatalf("expected conversion tool error, got %v", err)
	}
	h.assertNoTempFiles(t)
}

func TestDocumentFamilyTXT(t *testing.T) {
	h := newHarness(t)
	raw := []byte("\x00binary\xffpayload")
	result, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "doc.pdf", Data: testsupport.PDF(t, 150, 150)},
		{Name: "blob.bin", Data: raw},
	}, "txt")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if got := blobNames(result); !slices.Equal(got, []string{"file_0.txt", "file_1.txt"}) {
		t.Fatalf("entries = %v", got)
	}
	text := string(result.Units[0].Blobs[0].Data)
	first, second := strings.Index(text, "page 0"), strings.Index(text, "page 1")
	if first < 0 || second < first {
		t.Fatalf("extracted text out of order: %q", text)
	}
	if !bytes.Equal(result.Units[1].Blobs[0].Data, raw) {
		t.Fatalf("non-pdf input was not passed through")
	}
}

func TestMediaFamilyAudioScenario(t *testing.T) {
	h := newHarness(t)
	result, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "clip.wav", Data: []byte("RIFF")},
	}, "mp3")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if got := blobNames(result); !slices.Equal(got, []string{"file_0.mp3"}) {
		t.Fatalf("entries = %v", got)
	}
	if string(result.Units[0].Blobs[0].Data) != "audio:mp3" {
		t.Fatalf("unexpected payload %q", result.Units[0].Blobs[0].Data)
	}
	if !strings.HasSuffix(h.media.inputs[0], ".wav") {
		t.Fatalf("input not staged with its extension: %s", h.media.inputs[0])
	}
	h.assertNoTempFiles(t)
}

func TestMediaFamilyAudioFallsBackToVideoSource(t *testing.T) {
	h := newHarness(t)
	_, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "movie.MP4", Data: []byte("ftyp")},
	}, "ogg")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	want := []string{"open_audio", "open_audio_video", "write_audio:ogg"}
	if !slices.Equal(h.media.calls, want) {
		t.Fatalf("calls = %v, want %v", h.media.calls, want)
	}
}

func TestMediaFamilyVideoUsesFixedCodec(t *testing.T) {
	h := newHarness(t)
	result, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "movie.mp4", Data: []byte("ftyp")},
		{Name: "cover.png", Data: testsupport.PNG(t, 2, 2, color.White)},
	}, "mov")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if got := blobNames(result); !slices.Equal(got, []string{"file_0.mov"}) {
		t.Fatalf("entries = %v", got)
	}
	if !slices.Equal(h.media.calls, []string{"open_audio_video", "write_video:" + ffmpeg.VideoCodec}) {
		t.Fatalf("calls = %v", h.media.calls)
	}
}

func TestMediaFamilyFailureCleansUp(t *testing.T) {
	h := newHarness(t)
	h.media.err = errors.New("encoder exploded")
	_, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "clip.wav", Data: []byte("RIFF")},
	}, "wav")
	if !errors.Is(err, services.ErrConversionTool) {
		t.Fatalf("expected conversion tool error, got %v", err)
	}
	h.assertNoTempFiles(t)
}

func TestMediaFamilyAudioOnlyToVideoFails(t *testing.T) {
	h := newHarness(t)
	_, err := h.dispatcher.Convert(context.Background(), []conversion.UploadedFile{
		{Name: "clip.wav", Data: []byte("RIFF")},
	}, "mp4")
	if !errors.Is(err, ffmpeg.ErrNoStream) {
		t.Fatalf("expected missing stream error, got %v", err)
	}
	h.assertNoTempFiles(t)
}

func TestConvertIgnoresCancellationMidBatch(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := h.dispatcher.Convert(ctx, []conversion.UploadedFile{
		{Name: "clip.wav", Data: []byte("RIFF")},
	}, "mp3")
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if len(result.Blobs()) != 1 {
		t.Fatalf("expected batch to complete")
	}
}
