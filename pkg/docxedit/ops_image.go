package docxedit

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Register decoders so DecodeConfig can probe the formats Word accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	docxml "github.com/docxtools/docxedit/pkg/docxedit/xml"
)

const imageRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"webp": "image/webp",
}

// DeleteImageOp removes an inline image from its containing paragraph.
type DeleteImageOp struct {
	ImageIndex int
}

func (o *DeleteImageOp) Kind() string { return "delete_image" }
func (o *DeleteImageOp) anchor() int  { return indexlessAnchor }

func (o *DeleteImageOp) apply(ed *Editor, det *OpDetail) error {
	det.ImageIndex = &o.ImageIndex
	if o.ImageIndex < 0 || o.ImageIndex >= len(ed.images) {
		return NewRangeError("image", o.ImageIndex, len(ed.images))
	}

	ed.images[o.ImageIndex].run.Drawing = nil
	ed.refresh()
	return nil
}

// ResizeImageOp resizes an inline image. With both dimensions given it sets
// them absolutely; with one given it preserves the current aspect ratio; with
// neither it is a no-op. Dimensions are centimeters.
type ResizeImageOp struct {
	ImageIndex int
	WidthCm    *float64
	HeightCm   *float64
}

func (o *ResizeImageOp) Kind() string { return "resize_image" }
func (o *ResizeImageOp) anchor() int  { return indexlessAnchor }

func (o *ResizeImageOp) apply(ed *Editor, det *OpDetail) error {
	det.ImageIndex = &o.ImageIndex
	if o.ImageIndex < 0 || o.ImageIndex >= len(ed.images) {
		return NewRangeError("image", o.ImageIndex, len(ed.images))
	}
	if o.WidthCm == nil && o.HeightCm == nil {
		return nil
	}

	drawing := ed.images[o.ImageIndex].drawing
	ext := drawing.Extent
	if ext == nil || ext.Cx == 0 || ext.Cy == 0 {
		if o.WidthCm == nil || o.HeightCm == nil {
			return fmt.Errorf("image %d has no explicit size to derive the aspect ratio from", o.ImageIndex)
		}
	}

	var cx, cy int64
	switch {
	case o.WidthCm != nil && o.HeightCm != nil:
		cx = cmToEMU(*o.WidthCm)
		cy = cmToEMU(*o.HeightCm)
	case o.WidthCm != nil:
		cx = cmToEMU(*o.WidthCm)
		cy = int64(float64(cx) * float64(ext.Cy) / float64(ext.Cx))
	default:
		cy = cmToEMU(*o.HeightCm)
		cx = int64(float64(cy) * float64(ext.Cx) / float64(ext.Cy))
	}

	drawing.SetExtent(cx, cy)
	return nil
}

// InsertImageOp attaches a new picture run to the target paragraph from a
// local image file. Missing dimensions are derived from the image's pixel
// size at 96 DPI, preserving aspect ratio when only one is given.
type InsertImageOp struct {
	Index    int
	Path     string
	WidthCm  *float64
	HeightCm *float64
}

func (o *InsertImageOp) Kind() string { return "insert_image" }
func (o *InsertImageOp) anchor() int  { return o.Index }

func (o *InsertImageOp) apply(ed *Editor, det *OpDetail) error {
	det.Index = &o.Index
	if o.Index < 0 || o.Index >= len(ed.paragraphs) {
		return NewRangeError("paragraph", o.Index, len(ed.paragraphs))
	}
	if _, err := os.Stat(o.Path); err != nil {
		return NewNotFoundError(o.Path)
	}

	data, err := os.ReadFile(o.Path)
	if err != nil {
		return NewDocumentError("read image", o.Path, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("unsupported image format in %s: %w", o.Path, err)
	}

	cx, cy := imageExtent(cfg, o.WidthCm, o.HeightCm)

	partName, relTarget := ed.nextMediaName(format)
	ed.setPart(partName, data)
	ed.ensureDefaultContentType(strings.TrimPrefix(filepath.Ext(partName), "."), imageContentTypes[format])
	relID := addImageRelationship(ed.rels, relTarget)

	p := ed.paragraphs[o.Index]
	run := p.AddRun("")
	run.Drawing = buildInlineDrawing(relID, ed.nextDocPrID(), filepath.Base(o.Path), cx, cy)

	ed.refresh()
	return nil
}

// imageExtent computes the drawing extent in EMU from explicit centimeter
// dimensions and the decoded pixel size.
func imageExtent(cfg image.Config, widthCm, heightCm *float64) (int64, int64) {
	naturalCx := pxToEMU(cfg.Width)
	naturalCy := pxToEMU(cfg.Height)

	switch {
	case widthCm != nil && heightCm != nil:
		return cmToEMU(*widthCm), cmToEMU(*heightCm)
	case widthCm != nil:
		cx := cmToEMU(*widthCm)
		return cx, int64(float64(cx) * float64(naturalCy) / float64(naturalCx))
	case heightCm != nil:
		cy := cmToEMU(*heightCm)
		return int64(float64(cy) * float64(naturalCx) / float64(naturalCy)), cy
	default:
		return naturalCx, naturalCy
	}
}

// nextMediaName picks the next free word/media/imageN name for the format.
func (ed *Editor) nextMediaName(format string) (partName, relTarget string) {
	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}
	n := 1
	for {
		candidate := fmt.Sprintf("word/media/image%d.%s", n, ext)
		if _, exists := ed.parts[candidate]; !exists {
			return candidate, fmt.Sprintf("media/image%d.%s", n, ext)
		}
		n++
	}
}

// nextDocPrID returns a docPr id above every existing inline drawing's.
func (ed *Editor) nextDocPrID() int {
	maxID := 0
	for _, ref := range ed.images {
		if ref.drawing.DocProps != nil && ref.drawing.DocProps.ID > maxID {
			maxID = ref.drawing.DocProps.ID
		}
	}
	return maxID + 1
}

// addImageRelationship adds a new image relationship and returns its ID
func addImageRelationship(rels *Relationships, target string) string {
	newID := getNextRelationshipID(rels)

	rels.Relationship = append(rels.Relationship, Relationship{
		ID:     newID,
		Type:   imageRelationshipType,
		Target: target,
	})
	return newID
}

const pictureGraphicTemplate = `<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture"><pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"><pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr><pic:blipFill><a:blip r:embed="%s" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill><pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic></a:graphicData></a:graphic>`

// buildInlineDrawing assembles a wp:inline picture drawing referencing the
// given image relationship.
func buildInlineDrawing(relID string, docPrID int, name string, cx, cy int64) *docxml.Drawing {
	graphic := fmt.Sprintf(pictureGraphicTemplate, docPrID, xmlEscape(name), relID, cx, cy)
	return &docxml.Drawing{
		InlineAttrs: docxml.InlineDrawingAttrs(),
		Extent:      &docxml.Extent{Cx: cx, Cy: cy},
		DocProps:    &docxml.DocProps{ID: docPrID, Name: name},
		Graphic: []*docxml.RawXMLElement{
			docxml.NewRawXMLElement("graphic", []byte(graphic)),
		},
	}
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)
	return replacer.Replace(s)
}

// ensureDefaultContentType makes sure [Content_Types].xml declares a Default
// entry for the extension.
func (ed *Editor) ensureDefaultContentType(ext, contentType string) {
	if contentType == "" {
		return
	}
	s := string(ed.parts[contentTypesName])
	if strings.Contains(s, fmt.Sprintf(`Extension="%s"`, ext)) {
		return
	}
	entry := fmt.Sprintf(`<Default Extension="%s" ContentType="%s"/>`, ext, contentType)
	if idx := strings.Index(s, "</Types>"); idx >= 0 {
		ed.setPart(contentTypesName, []byte(s[:idx]+entry+s[idx:]))
	}
}

// ensureOverrideContentType makes sure [Content_Types].xml declares an
// Override entry for the part.
func (ed *Editor) ensureOverrideContentType(partName, contentType string) {
	s := string(ed.parts[contentTypesName])
	if strings.Contains(s, fmt.Sprintf(`PartName="/%s"`, partName)) {
		return
	}
	entry := fmt.Sprintf(`<Override PartName="/%s" ContentType="%s"/>`, partName, contentType)
	if idx := strings.Index(s, "</Types>"); idx >= 0 {
		ed.setPart(contentTypesName, []byte(s[:idx]+entry+s[idx:]))
	}
}
