package format_test

import (
	"errors"
	"testing"

	"toolbox/internal/format"
	"toolbox/internal/services"
)

func TestClassify(t *testing.T) {
	cases := map[string]format.SourceKind{
		"photo.PNG":        format.RasterImage,
		"scan.jpeg":        format.RasterImage,
		"anim.gif":         format.RasterImage,
		"page.tif":         format.RasterImage,
		"IMG_0001.HEIC":    format.RasterImage,
		"logo.svg":         format.VectorImage,
		"report.pdf":       format.PDF,
		"archive.tar.pdf":  format.PDF,
		"notes.txt":        format.TextLike,
		"README.md":        format.TextLike,
		"table.csv":        format.TextLike,
		"letter.docx":      format.ArbitraryDocument,
		"song.mp3":         format.AudioVideo,
		"clip.MOV":         format.AudioVideo,
		"tool.exe":         format.Unknown,
		"Makefile":         format.Unknown,
		"":                 format.Unknown,
		"trailing.dot.":    format.Unknown,
		"dir/nested.webp":  format.RasterImage,
		"  spaced.pdf  ":   format.PDF,
		"double.png.bak":   format.Unknown,
		"recording.flac":   format.AudioVideo,
		"presentation.odp": format.ArbitraryDocument,
	}
	for name, want := range cases {
		if got := format.Classify(name); got != want {
			t.Errorf("Classify(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestSourceKindString(t *testing.T) {
	if format.PDF.String() != "pdf" {
		t.Fatalf("unexpected name %q", format.PDF.String())
	}
	if format.SourceKind(99).String() != "unknown" {
		t.Fatal("expected unknown for out-of-range kind")
	}
}

func TestParseTargetFamilies(t *testing.T) {
	cases := map[string]format.Family{
		"pdf":  format.FamilyPDF,
		"PNG":  format.FamilyRaster,
		"jpg":  format.FamilyRaster,
		"webp": format.FamilyRaster,
		"docx": format.FamilyDocument,
		"txt":  format.FamilyDocument,
		"mp3":  format.FamilyMedia,
		"wav":  format.FamilyMedia,
		"ogg":  format.FamilyMedia,
		"mp4":  format.FamilyMedia,
		".mov": format.FamilyMedia,
	}
	for raw, want := range cases {
		target, err := format.ParseTarget(raw)
		if err != nil {
			t.Fatalf("ParseTarget(%q) returned error: %v", raw, err)
		}
		if target.Family != want {
			t.Fatalf("ParseTarget(%q) family = %s, want %s", raw, target.Family, want)
		}
	}
}

func TestParseTargetAliasesJPEG(t *testing.T) {
	target, err := format.ParseTarget("JPEG")
	if err != nil {
		t.Fatalf("ParseTarget returned error: %v", err)
	}
	if target.Format != "jpg" || target.Ext() != "jpg" {
		t.Fatalf("expected jpg alias, got %+v", target)
	}
}

func TestParseTargetRejectsUnknown(t *testing.T) {
	for _, raw := range []string{"exe", "", "  ", "mkv", "gif"} {
		_, err := format.ParseTarget(raw)
		if err == nil {
			t.Fatalf("expected error for %q", raw)
		}
		if !errors.Is(err, services.ErrUnsupportedTarget) {
			t.Fatalf("expected unsupported target marker for %q, got %v", raw, err)
		}
	}
}

func TestSupportedTargetsAllParse(t *testing.T) {
	for _, name := range format.Supported() {
		if _, err := format.ParseTarget(name); err != nil {
			t.Fatalf("supported target %q failed to parse: %v", name, err)
		}
	}
}

func TestIsAudio(t *testing.T) {
	for _, name := range []string{"mp3", "wav", "ogg"} {
		target, _ := format.ParseTarget(name)
		if !target.IsAudio() {
			t.Fatalf("expected %s to be audio", name)
		}
	}
	for _, name := range []string{"mp4", "mov"} {
		target, _ := format.ParseTarget(name)
		if target.IsAudio() {
			t.Fatalf("expected %s to be video", name)
		}
	}
}
