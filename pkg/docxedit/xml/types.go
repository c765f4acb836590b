package xml

import (
	"encoding/xml"
	"strconv"
)

// BodyElement represents any element that can appear in a document body.
type BodyElement interface {
	isBodyElement()
}

// ParagraphChild represents any element that can appear inside a paragraph.
type ParagraphChild interface {
	isParagraphChild()
}

// TableElement represents a direct child of a table other than its
// properties and grid: rows, and raw content such as bookmarks.
type TableElement interface {
	isTableElement()
}

// RowElement represents a direct child of a table row other than its
// properties: cells, and raw content such as bookmarks.
type RowElement interface {
	isRowElement()
}

// OnOff represents a WordprocessingML toggle property such as w:b or w:i.
// An empty Val means the property is switched on.
type OnOff struct {
	Val string `xml:"val,attr"`
}

// IsOn reports whether the toggle is enabled.
func (o *OnOff) IsOn() bool {
	switch o.Val {
	case "", "1", "true", "on":
		return true
	}
	return false
}

// MarshalXML implements custom XML marshaling for OnOff. The element name is
// supplied by the caller (w:b, w:i, ...).
func (o OnOff) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = nil
	if o.Val != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:val"}, Value: o.Val})
	}
	return e.EncodeElement(struct{}{}, start)
}

// StyleRef represents a style reference element (w:pStyle, w:rStyle).
type StyleRef struct {
	Val string `xml:"val,attr"`
}

// MarshalXML implements custom XML marshaling for StyleRef. The element name
// depends on the context, so the provided name is kept.
func (s StyleRef) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:val"}, Value: s.Val},
	}
	return e.EncodeElement(struct{}{}, start)
}

// HalfPointSize represents a font size element (w:sz, w:szCs) whose value is
// measured in half points.
type HalfPointSize struct {
	Val int `xml:"val,attr"`
}

// Points returns the size in points.
func (s *HalfPointSize) Points() float64 {
	return float64(s.Val) / 2
}

// MarshalXML implements custom XML marshaling for HalfPointSize.
func (s HalfPointSize) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:val"}, Value: strconv.Itoa(s.Val)},
	}
	return e.EncodeElement(struct{}{}, start)
}
