package testsupport

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// SolidImage returns a w x h RGBA image filled with c.
func SolidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// PNG encodes a solid w x h image.
func PNG(t testing.TB, w, h int, c color.Color) []byte {
	t.Helper()
	return EncodePNG(t, SolidImage(w, h, c))
}

// EncodePNG encodes img as PNG.
func EncodePNG(t testing.TB, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// PNGHeader returns the signature and IHDR chunk of a w x h PNG with no pixel
// data. Reading its config succeeds while a full decode fails, so it tells
// header checks apart from decodes.
func PNGHeader(t testing.TB, w, h int) []byte {
	t.Helper()
	data := EncodePNG(t, SolidImage(1, 1, color.White))
	// signature (8) + length (4) + "IHDR" (4) + 13 bytes of data + CRC (4)
	const ihdrEnd = 33
	header := append([]byte(nil), data[:ihdrEnd]...)
	binary.BigEndian.PutUint32(header[16:20], uint32(w))
	binary.BigEndian.PutUint32(header[20:24], uint32(h))
	binary.BigEndian.PutUint32(header[29:33], crc32.ChecksumIEEE(header[12:29]))
	return header
}

// PDF builds a document with one page per entry in widths. Page i is
// widths[i] x 200 points and carries the text "page <i>", so tests can tell
// pages apart after rendering or merging.
func PDF(t testing.TB, widths ...float64) []byte {
	t.Helper()
	if len(widths) == 0 {
		t.Fatalf("PDF fixture needs at least one page")
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt", Size: fpdf.SizeType{Wd: widths[0], Ht: 200}})
	pdf.SetFont("Helvetica", "", 12)
	for i, w := range widths {
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: 200})
		pdf.Text(10, 30, fmt.Sprintf("page %d", i))
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build pdf fixture: %v", err)
	}
	return buf.Bytes()
}

// SVG is a 40 x 20 red rectangle.
const SVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 20" width="40" height="20">
  <rect x="0" y="0" width="40" height="20" fill="#ff0000"/>
</svg>`
