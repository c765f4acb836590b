package docxedit

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	docxml "github.com/docxtools/docxedit/pkg/docxedit/xml"
)

const (
	documentPartName = "word/document.xml"
	stylesPartName   = "word/styles.xml"
	settingsPartName = "word/settings.xml"
	relsPartName     = "word/_rels/document.xml.rels"
	contentTypesName = "[Content_Types].xml"
)

// Relationship represents a relationship in the DOCX package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents the collection of relationships
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// Editor holds one open DOCX document and its three index catalogs. An Editor
// owns its document exclusively; it must not be shared across goroutines.
type Editor struct {
	path  string
	parts map[string][]byte
	order []string

	doc    *docxml.Document
	styles *docxml.StyleMap
	rels   *Relationships

	paragraphs []*docxml.Paragraph
	tables     []*docxml.Table
	images     []*imageRef

	logger *Logger
}

// imageRef ties an inline drawing to the run and paragraph that contain it,
// so image operations can edit or detach it in place.
type imageRef struct {
	paragraph *docxml.Paragraph
	run       *docxml.Run
	drawing   *docxml.Drawing
}

// Open loads a DOCX file from disk.
func Open(path string) (*Editor, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}

	ed, err := OpenBytes(content)
	if err != nil {
		if docErr, ok := err.(*DocumentError); ok {
			docErr.Path = path
		}
		return nil, err
	}
	ed.path = path
	ed.logger = GetLogger().WithField("path", path)
	ed.logger.Debug("opened document: %d paragraphs, %d tables, %d images",
		len(ed.paragraphs), len(ed.tables), len(ed.images))
	return ed, nil
}

// OpenBytes loads a DOCX package from memory.
func OpenBytes(content []byte) (*Editor, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, NewDocumentError("open", "", fmt.Errorf("failed to read zip file: %w", err))
	}

	ed := &Editor{
		parts:  make(map[string][]byte),
		logger: GetLogger(),
	}
	for _, file := range zipReader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, NewDocumentError("open", "", fmt.Errorf("failed to open part %s: %w", file.Name, err))
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, NewDocumentError("open", "", fmt.Errorf("failed to read part %s: %w", file.Name, err))
		}
		ed.parts[file.Name] = data
		ed.order = append(ed.order, file.Name)
	}

	docXML, ok := ed.parts[documentPartName]
	if !ok {
		return nil, NewDocumentError("open", "", fmt.Errorf("not a valid DOCX file: missing %s", documentPartName))
	}

	doc, err := docxml.ParseDocument(bytes.NewReader(docXML))
	if err != nil {
		return nil, NewDocumentError("parse", "", err)
	}
	ed.doc = doc

	if stylesXML, ok := ed.parts[stylesPartName]; ok {
		styles, err := docxml.ParseStyles(bytes.NewReader(stylesXML))
		if err != nil {
			return nil, NewDocumentError("parse", stylesPartName, err)
		}
		ed.styles = styles
	}

	ed.rels = parseRelationships(ed.parts[relsPartName])

	ed.refresh()
	return ed, nil
}

// refresh recomputes the paragraph, table and image catalogs from the current
// document tree. It must run after every mutation that adds or removes a
// paragraph or image.
func (ed *Editor) refresh() {
	ed.paragraphs = ed.paragraphs[:0]
	ed.tables = ed.tables[:0]
	ed.images = ed.images[:0]

	for _, elem := range ed.doc.Body.Elements {
		switch el := elem.(type) {
		case *docxml.Paragraph:
			ed.paragraphs = append(ed.paragraphs, el)
			ed.collectImages(el)
		case *docxml.Table:
			ed.tables = append(ed.tables, el)
			ed.collectTableImages(el)
		}
	}
}

func (ed *Editor) collectImages(p *docxml.Paragraph) {
	for _, run := range p.Runs() {
		if run.Drawing != nil && run.Drawing.IsInline() {
			ed.images = append(ed.images, &imageRef{
				paragraph: p,
				run:       run,
				drawing:   run.Drawing,
			})
		}
	}
}

func (ed *Editor) collectTableImages(t *docxml.Table) {
	for _, row := range t.Rows() {
		for _, cell := range row.Cells() {
			for _, elem := range cell.Elements {
				switch el := elem.(type) {
				case *docxml.Paragraph:
					ed.collectImages(el)
				case *docxml.Table:
					ed.collectTableImages(el)
				}
			}
		}
	}
}

// ParagraphCount returns the number of paragraphs in the body.
func (ed *Editor) ParagraphCount() int {
	return len(ed.paragraphs)
}

// TableCount returns the number of top-level tables in the body.
func (ed *Editor) TableCount() int {
	return len(ed.tables)
}

// ImageCount returns the number of inline images in the document.
func (ed *Editor) ImageCount() int {
	return len(ed.images)
}

// styleName resolves a style identifier to its display name.
func (ed *Editor) styleName(styleID string) string {
	if styleID == "" {
		return ""
	}
	return ed.styles.NameFor(styleID)
}

// Save writes the document back to the path it was opened from.
func (ed *Editor) Save() error {
	if ed.path == "" {
		return NewDocumentError("save", "", fmt.Errorf("document was not opened from a file"))
	}
	return ed.SaveAs(ed.path)
}

// SaveAs writes the document to the given path.
func (ed *Editor) SaveAs(path string) error {
	var buf bytes.Buffer
	if err := ed.WriteTo(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return NewDocumentError("save", path, err)
	}
	ed.logger.Debug("saved document to %s (%d bytes)", path, buf.Len())
	return nil
}

// Bytes serializes the document package to memory.
func (ed *Editor) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := ed.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo serializes the document package to w, copying every part from the
// source and replacing the ones that were edited.
func (ed *Editor) WriteTo(w io.Writer) error {
	docXML, err := docxml.MarshalDocument(ed.doc)
	if err != nil {
		return NewDocumentError("marshal", ed.path, err)
	}
	ed.setPart(documentPartName, docXML)
	ed.setPart(relsPartName, marshalRelationships(ed.rels))

	zw := zip.NewWriter(w)
	for _, name := range ed.order {
		fw, err := zw.Create(name)
		if err != nil {
			return NewDocumentError("save", ed.path, fmt.Errorf("failed to create %s: %w", name, err))
		}
		if _, err := fw.Write(ed.parts[name]); err != nil {
			return NewDocumentError("save", ed.path, fmt.Errorf("failed to write %s: %w", name, err))
		}
	}
	if err := zw.Close(); err != nil {
		return NewDocumentError("save", ed.path, err)
	}
	return nil
}

func (ed *Editor) hasPart(name string) bool {
	for _, n := range ed.order {
		if n == name {
			return true
		}
	}
	return false
}

// setPart stores or replaces a package part, keeping the zip order stable.
func (ed *Editor) setPart(name string, data []byte) {
	if !ed.hasPart(name) {
		ed.order = append(ed.order, name)
	}
	ed.parts[name] = data
}

func parseRelationships(data []byte) *Relationships {
	rels := &Relationships{
		Namespace: "http://schemas.openxmlformats.org/package/2006/relationships",
	}
	if len(data) == 0 {
		return rels
	}
	if err := xml.Unmarshal(data, rels); err != nil {
		// Treat unparseable relationships as empty; new ones start at rId1.
		return &Relationships{
			Namespace: "http://schemas.openxmlformats.org/package/2006/relationships",
		}
	}
	return rels
}

func marshalRelationships(rels *Relationships) []byte {
	output, err := xml.Marshal(rels)
	if err != nil {
		return nil
	}
	header := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	return append([]byte(header), output...)
}

// getNextRelationshipID generates the next available relationship ID
func getNextRelationshipID(rels *Relationships) string {
	maxID := 0

	for _, rel := range rels.Relationship {
		if strings.HasPrefix(rel.ID, "rId") {
			idStr := rel.ID[3:]
			if id, err := strconv.Atoi(idStr); err == nil && id > maxID {
				maxID = id
			}
		}
	}

	return fmt.Sprintf("rId%d", maxID+1)
}
