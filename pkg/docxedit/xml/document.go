package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// Document represents the word/document.xml part.
type Document struct {
	Attrs []xml.Attr
	Body  *Body
}

// Body represents the document body: an ordered sequence of paragraphs and
// tables, plus the trailing section properties Word requires.
type Body struct {
	Elements []BodyElement
	SectPr   *RawXMLElement
}

// ParseDocument parses a word/document.xml stream.
func ParseDocument(r io.Reader) (*Document, error) {
	decoder := xml.NewDecoder(r)

	doc := &Document{}
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}

		if start, ok := token.(xml.StartElement); ok {
			if start.Name.Local != "document" {
				return nil, fmt.Errorf("unexpected root element %q", start.Name.Local)
			}
			doc.Attrs = start.Attr
			body, err := parseBody(decoder)
			if err != nil {
				return nil, fmt.Errorf("failed to parse document: %w", err)
			}
			doc.Body = body
		}
	}

	if doc.Body == nil {
		return nil, fmt.Errorf("document has no body")
	}
	return doc, nil
}

func parseBody(d *xml.Decoder) (*Body, error) {
	body := &Body{}
	for {
		token, err := d.Token()
		if err == io.EOF {
			return body, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				// descend
			case "p":
				para := &Paragraph{}
				if err := d.DecodeElement(para, &t); err != nil {
					return nil, err
				}
				body.Elements = append(body.Elements, para)
			case "tbl":
				table := &Table{}
				if err := d.DecodeElement(table, &t); err != nil {
					return nil, err
				}
				body.Elements = append(body.Elements, table)
			case "sectPr":
				raw, err := captureRaw(d, t)
				if err != nil {
					return nil, err
				}
				body.SectPr = raw
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return nil, err
				}
				body.Elements = append(body.Elements, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				return body, nil
			}
		}
	}
}

func encodeBodyElement(e *xml.Encoder, elem BodyElement) error {
	switch el := elem.(type) {
	case *Paragraph:
		return e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: "w:p"}})
	case *Table:
		return e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: "w:tbl"}})
	case *RawXMLElement:
		return e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}})
	}
	return fmt.Errorf("unknown body element type %T", elem)
}

// MarshalXML implements custom XML marshaling for Body.
func (b *Body) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:body"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, elem := range b.Elements {
		if err := encodeBodyElement(e, elem); err != nil {
			return err
		}
	}

	if b.SectPr != nil {
		if err := e.EncodeElement(b.SectPr, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// MarshalXML implements custom XML marshaling for Document, restoring the
// namespace declarations captured at parse time.
func (doc *Document) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:document"}
	start.Attr = nil
	for _, attr := range doc.Attrs {
		name := attr.Name.Local
		switch {
		case attr.Name.Space == "xmlns":
			name = "xmlns:" + attr.Name.Local
		case attr.Name.Space != "":
			name = namespaceToPrefix(attr.Name.Space) + ":" + attr.Name.Local
		}
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: attr.Value})
	}

	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if doc.Body != nil {
		if err := e.EncodeElement(doc.Body, xml.StartElement{Name: xml.Name{Local: "w:body"}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

func (doc *Document) collectMarkers(reg *markerRegistry) {
	if doc.Body == nil {
		return
	}
	for _, elem := range doc.Body.Elements {
		switch el := elem.(type) {
		case *Paragraph:
			el.collectMarkers(reg)
		case *Table:
			el.collectMarkers(reg)
		case *RawXMLElement:
			reg.register(el)
		}
	}
	if doc.Body.SectPr != nil {
		reg.register(doc.Body.SectPr)
	}
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

// MarshalDocument serializes the document back to word/document.xml bytes.
// Raw fragments are first registered in a marker registry, the tree is
// marshaled with marker placeholders, and the markers are then substituted
// with the preserved content.
func MarshalDocument(doc *Document) ([]byte, error) {
	reg := newMarkerRegistry()
	doc.collectMarkers(reg)

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}

	xmlStr := reg.substitute(buf.String())
	return []byte(xmlHeader + xmlStr), nil
}
