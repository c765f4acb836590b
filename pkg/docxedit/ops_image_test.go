package docxedit

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestPNG writes a solid-color PNG of the given pixel size.
func writeTestPNG(t *testing.T, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), "sample.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create image file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return path
}

func TestResizeImageAbsolute(t *testing.T) {
	ed := openTestDoc(t, paraPicture())

	w, h := 2.0, 1.5
	report := ed.BatchUpdate([]Operation{
		&ResizeImageOp{ImageIndex: 0, WidthCm: &w, HeightCm: &h},
	})
	if report.Failed != 0 {
		t.Fatalf("Resize failed: %+v", report.Details)
	}

	ext := ed.images[0].drawing.Extent
	if ext.Cx != 720000 || ext.Cy != 540000 {
		t.Errorf("Expected 720000x540000 EMU, got %dx%d", ext.Cx, ext.Cy)
	}

	outline := ed.GetImagesOutline()
	if *outline[0].WidthCm != 2.0 || *outline[0].HeightCm != 1.5 {
		t.Errorf("Unexpected outline dimensions: %+v", outline[0])
	}
}

func TestResizeImageKeepsAspectRatio(t *testing.T) {
	// The fixture image is 914400x457200 EMU, a 2:1 ratio.
	ed := openTestDoc(t, paraPicture())

	w := 2.0
	report := ed.BatchUpdate([]Operation{
		&ResizeImageOp{ImageIndex: 0, WidthCm: &w},
	})
	if report.Failed != 0 {
		t.Fatalf("Resize failed: %+v", report.Details)
	}

	ext := ed.images[0].drawing.Extent
	if ext.Cx != 720000 || ext.Cy != 360000 {
		t.Errorf("Expected 720000x360000 EMU, got %dx%d", ext.Cx, ext.Cy)
	}

	// The transform inside the picture payload must follow.
	var graphic strings.Builder
	for _, raw := range ed.images[0].drawing.Graphic {
		graphic.Write(raw.Content)
	}
	if !strings.Contains(graphic.String(), `<a:ext cx="720000" cy="360000">`) {
		t.Errorf("a:ext not rewritten: %s", graphic.String())
	}
}

func TestResizeImageNoDimensionsIsNoOp(t *testing.T) {
	ed := openTestDoc(t, paraPicture())

	report := ed.BatchUpdate([]Operation{&ResizeImageOp{ImageIndex: 0}})
	if report.Failed != 0 {
		t.Fatalf("Resize failed: %+v", report.Details)
	}
	ext := ed.images[0].drawing.Extent
	if ext.Cx != 914400 || ext.Cy != 457200 {
		t.Errorf("No-op resize changed extent: %dx%d", ext.Cx, ext.Cy)
	}
}

func TestResizeImageOutOfRange(t *testing.T) {
	ed := openTestDoc(t, para("no images"))

	w := 2.0
	report := ed.BatchUpdate([]Operation{
		&ResizeImageOp{ImageIndex: 0, WidthCm: &w},
	})
	if report.Failed != 1 || !strings.Contains(report.Details[0].Error, "out of range") {
		t.Errorf("Expected range failure, got %+v", report.Details)
	}
}

func TestDeleteImage(t *testing.T) {
	ed := openTestDoc(t, para("text"), paraPicture())

	report := ed.BatchUpdate([]Operation{&DeleteImageOp{ImageIndex: 0}})
	if report.Failed != 0 {
		t.Fatalf("Delete failed: %+v", report.Details)
	}
	if ed.ImageCount() != 0 {
		t.Errorf("Expected 0 images, got %d", ed.ImageCount())
	}
	// The host paragraph stays in place.
	if ed.ParagraphCount() != 2 {
		t.Errorf("Expected 2 paragraphs, got %d", ed.ParagraphCount())
	}
}

func TestInsertImage(t *testing.T) {
	ed := openTestDoc(t, para("caption"))
	path := writeTestPNG(t, 96, 48)

	report := ed.BatchUpdate([]Operation{
		&InsertImageOp{Index: 0, Path: path},
	})
	if report.Failed != 0 {
		t.Fatalf("Insert failed: %+v", report.Details)
	}

	if ed.ImageCount() != 1 {
		t.Fatalf("Expected 1 image, got %d", ed.ImageCount())
	}

	outline := ed.GetImagesOutline()
	if outline[0].Kind != "picture" {
		t.Errorf("Expected picture, got %s", outline[0].Kind)
	}
	// 96px at 96 DPI is one inch: 2.54 cm; 48px is half that.
	if *outline[0].WidthCm != 2.54 || *outline[0].HeightCm != 1.27 {
		t.Errorf("Unexpected natural size: %+v", outline[0])
	}

	// Package plumbing: media part, content type, relationship.
	if _, ok := ed.parts["word/media/image1.png"]; !ok {
		t.Error("Media part missing")
	}
	if !strings.Contains(string(ed.parts[contentTypesName]), `Extension="png"`) {
		t.Error("png content type missing")
	}
	found := false
	for _, rel := range ed.rels.Relationship {
		if rel.Type == imageRelationshipType && rel.Target == "media/image1.png" {
			found = true
		}
	}
	if !found {
		t.Errorf("Image relationship missing: %+v", ed.rels.Relationship)
	}
}

func TestInsertImageExplicitWidth(t *testing.T) {
	ed := openTestDoc(t, para(""))
	path := writeTestPNG(t, 200, 100)

	w := 4.0
	report := ed.BatchUpdate([]Operation{
		&InsertImageOp{Index: 0, Path: path, WidthCm: &w},
	})
	if report.Failed != 0 {
		t.Fatalf("Insert failed: %+v", report.Details)
	}

	ext := ed.images[0].drawing.Extent
	if ext.Cx != cmToEMU(4.0) {
		t.Errorf("Expected explicit width, got %d", ext.Cx)
	}
	// 2:1 pixel ratio carries over to the derived height.
	if ext.Cy != ext.Cx/2 {
		t.Errorf("Expected derived height %d, got %d", ext.Cx/2, ext.Cy)
	}
}

func TestInsertImageSurvivesRoundTrip(t *testing.T) {
	ed := openTestDoc(t, para("host"))
	path := writeTestPNG(t, 10, 10)

	report := ed.BatchUpdate([]Operation{&InsertImageOp{Index: 0, Path: path}})
	if report.Failed != 0 {
		t.Fatalf("Insert failed: %+v", report.Details)
	}

	data, err := ed.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	reopened, err := OpenBytes(data)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	if reopened.ImageCount() != 1 {
		t.Fatalf("Expected image after round trip, got %d", reopened.ImageCount())
	}
	if reopened.GetImagesOutline()[0].Kind != "picture" {
		t.Errorf("Unexpected kind after round trip")
	}
}

func TestInsertImageMissingFile(t *testing.T) {
	ed := openTestDoc(t, para("host"))

	report := ed.BatchUpdate([]Operation{
		&InsertImageOp{Index: 0, Path: "/no/such/image.png"},
	})
	if report.Failed != 1 {
		t.Fatalf("Expected failure, got %+v", report.Details)
	}
	if !strings.Contains(report.Details[0].Error, "not found") {
		t.Errorf("Unexpected error: %s", report.Details[0].Error)
	}
	if ed.ImageCount() != 0 {
		t.Error("Failed insert must not add an image")
	}
}

func TestInsertImageUnsupportedFormat(t *testing.T) {
	ed := openTestDoc(t, para("host"))

	path := filepath.Join(t.TempDir(), "bogus.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	report := ed.BatchUpdate([]Operation{&InsertImageOp{Index: 0, Path: path}})
	if report.Failed != 1 || !strings.Contains(report.Details[0].Error, "unsupported image format") {
		t.Errorf("Expected format failure, got %+v", report.Details)
	}
}

func TestNextMediaNameSkipsExisting(t *testing.T) {
	ed := openTestDoc(t, para(""))
	ed.setPart("word/media/image1.png", []byte("x"))

	partName, relTarget := ed.nextMediaName("png")
	if partName != "word/media/image2.png" || relTarget != "media/image2.png" {
		t.Errorf("Unexpected media name %s / %s", partName, relTarget)
	}

	partName, _ = ed.nextMediaName("jpeg")
	if partName != "word/media/image1.jpg" {
		t.Errorf("Expected jpg extension, got %s", partName)
	}
}

func TestNextDocPrID(t *testing.T) {
	ed := openTestDoc(t, paraPicture())
	if got := ed.nextDocPrID(); got != 2 {
		t.Errorf("Expected 2, got %d", got)
	}
}
