// Package imaging decodes uploaded raster images, normalizes their color
// mode, and encodes them to the raster output formats.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"toolbox/internal/services"
)

// ColorMode names the pixel layout of an image.
type ColorMode string

const (
	ModeRGB  ColorMode = "RGB"
	ModeRGBA ColorMode = "RGBA"
	ModeGray ColorMode = "L"
)

const (
	// DefaultJPEGQuality is used when a Codec is constructed with quality 0.
	DefaultJPEGQuality = 95
	// DefaultMaxPixels caps decoded image area when no limit is configured.
	DefaultMaxPixels int64 = 89_478_485
)

// Codec decodes and encodes raster images.
type Codec struct {
	JPEGQuality int
	MaxPixels   int64
}

// NewCodec returns a codec with the given JPEG quality and pixel limit.
// Out-of-range values fall back to the defaults.
func NewCodec(jpegQuality int, maxPixels int64) Codec {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = DefaultJPEGQuality
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return Codec{JPEGQuality: jpegQuality, MaxPixels: maxPixels}
}

// CheckDimensions rejects a width x height image whose area exceeds
// maxPixels. A non-positive maxPixels applies DefaultMaxPixels.
func CheckDimensions(width, height int, maxPixels int64) error {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if width < 0 || height < 0 || int64(width)*int64(height) > maxPixels {
		return services.Wrap(services.ErrValidation, "imaging", "check size",
			fmt.Sprintf("image is %dx%d pixels, limit is %d", width, height, maxPixels), nil)
	}
	return nil
}

// Decode sniffs the container format from the bytes and decodes the first
// frame. PNG, JPEG, GIF, BMP, TIFF, and WebP are recognized. The header is
// read first so oversized images are rejected before any pixel buffer exists.
func (c Codec) Decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "imaging", "decode", "", err)
	}
	if err := CheckDimensions(cfg.Width, cfg.Height, c.MaxPixels); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "imaging", "decode", "", err)
	}
	return img, nil
}

// Encode serializes img in the named format: png, jpg/jpeg, or webp.
func (c Codec) Encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "png":
		err = png.Encode(&buf, img)
	case "jpg", "jpeg":
		quality := c.JPEGQuality
		if quality <= 0 {
			quality = DefaultJPEGQuality
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "webp":
		err = nativewebp.Encode(&buf, img, &nativewebp.Options{})
	default:
		return nil, services.Wrap(services.ErrUnsupportedTarget, "imaging", "encode", fmt.Sprintf("unsupported image format %q", format), nil)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrConversionTool, "imaging", "encode "+format, "", err)
	}
	return buf.Bytes(), nil
}

// ConvertColorMode returns img in the requested mode. Only RGB is a
// conversion target: transparency is composited over white. An image already
// in mode is returned unchanged.
func (c Codec) ConvertColorMode(img image.Image, mode ColorMode) image.Image {
	return ConvertColorMode(img, mode)
}

// ConvertColorMode is the package-level form of Codec.ConvertColorMode.
func ConvertColorMode(img image.Image, mode ColorMode) image.Image {
	if mode != ModeRGB || ModeOf(img) == ModeRGB {
		return img
	}
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, bounds, img, bounds.Min, draw.Over)
	return out
}

// ModeOf reports the color mode of img as it would be encoded.
func ModeOf(img image.Image) ColorMode {
	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		return ModeGray
	case color.YCbCrModel, color.CMYKModel:
		return ModeRGB
	}
	if opaque, ok := img.(interface{ Opaque() bool }); ok && opaque.Opaque() {
		return ModeRGB
	}
	return ModeRGBA
}
