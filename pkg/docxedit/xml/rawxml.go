package xml

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// namespaceToPrefix converts a namespace URI to its conventional prefix.
func namespaceToPrefix(uri string) string {
	prefixMap := map[string]string{
		// Core Word namespaces
		"http://schemas.openxmlformats.org/wordprocessingml/2006/main":        "w",
		"http://schemas.openxmlformats.org/officeDocument/2006/relationships": "r",
		"http://schemas.openxmlformats.org/officeDocument/2006/math":          "m",
		"http://www.w3.org/XML/1998/namespace":                                "xml",
		// Drawing namespaces
		"http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing": "wp",
		"http://schemas.openxmlformats.org/drawingml/2006/main":                  "a",
		"http://schemas.openxmlformats.org/drawingml/2006/picture":               "pic",
		"http://schemas.openxmlformats.org/drawingml/2006/chart":                 "c",
		"http://schemas.openxmlformats.org/drawingml/2006/diagram":               "dgm",
		"http://schemas.microsoft.com/office/word/2010/wordprocessingDrawing":    "wp14",
		"http://schemas.microsoft.com/office/drawing/2010/main":                  "a14",
		// VML namespaces
		"urn:schemas-microsoft-com:vml":           "v",
		"urn:schemas-microsoft-com:office:office": "o",
		"urn:schemas-microsoft-com:office:word":   "w10",
		// Markup compatibility namespace
		"http://schemas.openxmlformats.org/markup-compatibility/2006": "mc",
		// Word processing shapes and canvas
		"http://schemas.microsoft.com/office/word/2010/wordprocessingShape":  "wps",
		"http://schemas.microsoft.com/office/word/2010/wordprocessingCanvas": "wpc",
		"http://schemas.microsoft.com/office/word/2010/wordprocessingGroup":  "wpg",
		// Extended Word namespaces
		"http://schemas.microsoft.com/office/word/2010/wordml": "w14",
		"http://schemas.microsoft.com/office/word/2012/wordml": "w15",
		// Chart extension namespaces
		"http://schemas.microsoft.com/office/drawing/2014/chartex": "cx",
	}

	if prefix, ok := prefixMap[uri]; ok {
		return prefix
	}
	// For unknown namespaces, return the URI as-is (shouldn't happen in practice)
	return uri
}

// RawXMLElement represents a raw XML element that is preserved but not parsed.
// Content holds the full element text, opening tag included, with namespace
// URIs converted back to their conventional prefixes.
type RawXMLElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr
	Content []byte

	marker string
}

func (r *RawXMLElement) isBodyElement()    {}
func (r *RawXMLElement) isParagraphChild() {}
func (r *RawXMLElement) isTableElement()   {}
func (r *RawXMLElement) isRowElement()     {}

// NewRawXMLElement wraps a prebuilt XML fragment as a raw element. Content
// must be the complete element text, start tag included, with any namespace
// prefixes it uses declared inline.
func NewRawXMLElement(local string, content []byte) *RawXMLElement {
	return &RawXMLElement{
		XMLName: xml.Name{Local: local},
		Content: content,
	}
}

// MarshalXML emits a marker placeholder. The real content is substituted in
// by MarshalDocument after the encoder pass (encoding/xml cannot write raw
// bytes, and re-encoding the captured fragment would mangle its namespaces).
func (r *RawXMLElement) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	return encodeMarker(e, r.marker)
}

func encodeMarker(e *xml.Encoder, marker string) error {
	elem := struct {
		XMLName xml.Name
		Content string `xml:",chardata"`
	}{
		XMLName: xml.Name{Local: rawMarkerElement},
		Content: marker,
	}
	return e.EncodeElement(&elem, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}})
}

const rawMarkerElement = "rawXMLMarker"

// markerRegistry assigns marker strings to raw fragments during one marshal
// pass and replaces them with the stored content afterwards.
type markerRegistry struct {
	contents map[string][]byte
	next     int
}

func newMarkerRegistry() *markerRegistry {
	return &markerRegistry{contents: make(map[string][]byte)}
}

func (m *markerRegistry) register(raw *RawXMLElement) {
	marker := fmt.Sprintf("__RAW_XML_%d__", m.next)
	m.next++
	raw.marker = marker
	m.contents[marker] = raw.Content
}

// registerContent registers a bare byte fragment and returns its marker.
func (m *markerRegistry) registerContent(content []byte) string {
	marker := fmt.Sprintf("__RAW_XML_%d__", m.next)
	m.next++
	m.contents[marker] = content
	return marker
}

// substitute replaces every marker element in the marshaled XML with its raw
// content.
func (m *markerRegistry) substitute(xmlStr string) string {
	for marker, content := range m.contents {
		placeholder := "<" + rawMarkerElement + ">" + marker + "</" + rawMarkerElement + ">"
		xmlStr = strings.Replace(xmlStr, placeholder, string(content), 1)
	}
	return xmlStr
}

// captureRaw reads an entire element (whose start tag has already been
// consumed) and returns it as a RawXMLElement, converting namespace URIs back
// to prefixes and escaping character data.
func captureRaw(d *xml.Decoder, start xml.StartElement) (*RawXMLElement, error) {
	raw := &RawXMLElement{XMLName: start.Name, Attrs: start.Attr}

	var buf strings.Builder
	writeStartTag(&buf, start)

	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			writeStartTag(&buf, t)
		case xml.EndElement:
			depth--
			writeEndTag(&buf, t)
		case xml.CharData:
			buf.WriteString(escapeCharData(string(t)))
		}
	}

	raw.Content = []byte(buf.String())
	return raw, nil
}

func writeStartTag(buf *strings.Builder, t xml.StartElement) {
	buf.WriteString("<")
	writeName(buf, t.Name)
	for _, attr := range t.Attr {
		buf.WriteString(" ")
		// Keep namespace declarations so captured subtrees stay
		// self-contained even when the root does not declare them.
		if attr.Name.Space == "xmlns" {
			buf.WriteString("xmlns:")
			buf.WriteString(attr.Name.Local)
		} else {
			writeName(buf, attr.Name)
		}
		buf.WriteString("=\"")
		buf.WriteString(escapeAttr(attr.Value))
		buf.WriteString("\"")
	}
	buf.WriteString(">")
}

func writeEndTag(buf *strings.Builder, t xml.EndElement) {
	buf.WriteString("</")
	writeName(buf, t.Name)
	buf.WriteString(">")
}

func writeName(buf *strings.Builder, name xml.Name) {
	if name.Space != "" {
		buf.WriteString(namespaceToPrefix(name.Space))
		buf.WriteString(":")
	}
	buf.WriteString(name.Local)
}

func escapeCharData(s string) string {
	s = strings.Replace(s, "&", "&amp;", -1)
	s = strings.Replace(s, "<", "&lt;", -1)
	s = strings.Replace(s, ">", "&gt;", -1)
	return s
}

func escapeAttr(s string) string {
	s = escapeCharData(s)
	s = strings.Replace(s, "\"", "&quot;", -1)
	return s
}
