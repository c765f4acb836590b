package xml

import (
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
)

// ImageKind classifies the graphic payload of an inline drawing.
type ImageKind string

const (
	ImageKindPicture       ImageKind = "picture"
	ImageKindChart         ImageKind = "chart"
	ImageKindSmartArt      ImageKind = "smart_art"
	ImageKindLinkedPicture ImageKind = "linked_picture"
	ImageKindOther         ImageKind = "other"
)

// Drawing represents a w:drawing element. Inline drawings (wp:inline) are
// parsed into extent and docPr plus a raw graphic subtree so their size can
// be edited; floating drawings (wp:anchor) round-trip untouched and are not
// addressable as images.
type Drawing struct {
	InlineAttrs  []xml.Attr
	Extent       *Extent
	EffectExtent *RawXMLElement
	DocProps     *DocProps
	Graphic      []*RawXMLElement
	Anchor       *RawXMLElement
}

// Extent represents the wp:extent element; cx and cy are EMU.
type Extent struct {
	Cx int64 `xml:"cx,attr"`
	Cy int64 `xml:"cy,attr"`
}

// MarshalXML implements custom XML marshaling for Extent.
func (x Extent) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "wp:extent"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "cx"}, Value: strconv.FormatInt(x.Cx, 10)},
		{Name: xml.Name{Local: "cy"}, Value: strconv.FormatInt(x.Cy, 10)},
	}
	return e.EncodeElement(struct{}{}, start)
}

// DocProps represents the wp:docPr element.
type DocProps struct {
	ID    int    `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"`
}

// MarshalXML implements custom XML marshaling for DocProps.
func (p DocProps) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "wp:docPr"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "id"}, Value: strconv.Itoa(p.ID)},
		{Name: xml.Name{Local: "name"}, Value: p.Name},
	}
	if p.Descr != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "descr"}, Value: p.Descr})
	}
	return e.EncodeElement(struct{}{}, start)
}

// InlineDrawingAttrs returns the attribute set for a freshly created
// wp:inline element. The wp namespace is declared on the element itself so
// the drawing is valid even when the document root does not declare it.
func InlineDrawingAttrs() []xml.Attr {
	return []xml.Attr{
		{Name: xml.Name{Local: "xmlns:wp"}, Value: "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"},
		{Name: xml.Name{Local: "distT"}, Value: "0"},
		{Name: xml.Name{Local: "distB"}, Value: "0"},
		{Name: xml.Name{Local: "distL"}, Value: "0"},
		{Name: xml.Name{Local: "distR"}, Value: "0"},
	}
}

// IsInline reports whether the drawing is anchored inline in paragraph flow.
func (d *Drawing) IsInline() bool {
	return d.Anchor == nil
}

// parse consumes the children of an already-opened w:drawing element.
func (d *Drawing) parse(dec *xml.Decoder) error {
	for {
		token, err := dec.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "inline":
				d.InlineAttrs = t.Attr
				if err := d.parseInline(dec); err != nil {
					return err
				}
			case "anchor":
				raw, err := captureRaw(dec, t)
				if err != nil {
					return err
				}
				d.Anchor = raw
			default:
				if err := dec.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "drawing" {
				return nil
			}
		}
	}
}

func (d *Drawing) parseInline(dec *xml.Decoder) error {
	for {
		token, err := dec.Token()
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "extent":
				var ext Extent
				if err := dec.DecodeElement(&ext, &t); err != nil {
					return err
				}
				d.Extent = &ext
			case "effectExtent":
				raw, err := captureRaw(dec, t)
				if err != nil {
					return err
				}
				d.EffectExtent = raw
			case "docPr":
				var props DocProps
				if err := dec.DecodeElement(&props, &t); err != nil {
					return err
				}
				d.DocProps = &props
			default:
				raw, err := captureRaw(dec, t)
				if err != nil {
					return err
				}
				d.Graphic = append(d.Graphic, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "inline" {
				return nil
			}
		}
	}
}

// MarshalXML implements custom XML marshaling for Drawing.
func (d *Drawing) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:drawing"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if d.Anchor != nil {
		if err := e.EncodeElement(d.Anchor, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
			return err
		}
		return e.EncodeToken(xml.EndElement{Name: start.Name})
	}

	inline := xml.StartElement{Name: xml.Name{Local: "wp:inline"}}
	for _, attr := range d.InlineAttrs {
		if attr.Name.Space == "xmlns" {
			inline.Attr = append(inline.Attr, xml.Attr{
				Name:  xml.Name{Local: "xmlns:" + attr.Name.Local},
				Value: attr.Value,
			})
			continue
		}
		name := attr.Name.Local
		if attr.Name.Space != "" {
			name = namespaceToPrefix(attr.Name.Space) + ":" + name
		}
		inline.Attr = append(inline.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: attr.Value})
	}
	if err := e.EncodeToken(inline); err != nil {
		return err
	}

	if d.Extent != nil {
		if err := e.EncodeElement(d.Extent, xml.StartElement{Name: xml.Name{Local: "wp:extent"}}); err != nil {
			return err
		}
	}
	if d.EffectExtent != nil {
		if err := e.EncodeElement(d.EffectExtent, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
			return err
		}
	}
	if d.DocProps != nil {
		if err := e.EncodeElement(d.DocProps, xml.StartElement{Name: xml.Name{Local: "wp:docPr"}}); err != nil {
			return err
		}
	}
	for _, raw := range d.Graphic {
		if err := e.EncodeElement(raw, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
			return err
		}
	}

	if err := e.EncodeToken(xml.EndElement{Name: inline.Name}); err != nil {
		return err
	}
	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

func (d *Drawing) collectMarkers(reg *markerRegistry) {
	if d.Anchor != nil {
		reg.register(d.Anchor)
	}
	if d.EffectExtent != nil {
		reg.register(d.EffectExtent)
	}
	for _, raw := range d.Graphic {
		reg.register(raw)
	}
}

// Kind classifies the drawing by its graphicData payload, following the
// wp:inline type taxonomy (picture, chart, smart art, linked picture).
func (d *Drawing) Kind() ImageKind {
	content := d.graphicContent()
	switch {
	case strings.Contains(content, "drawingml/2006/chart") || strings.Contains(content, "chartex"):
		return ImageKindChart
	case strings.Contains(content, "drawingml/2006/diagram"):
		return ImageKindSmartArt
	case strings.Contains(content, "drawingml/2006/picture"):
		if strings.Contains(content, "r:link=") && !strings.Contains(content, "r:embed=") {
			return ImageKindLinkedPicture
		}
		return ImageKindPicture
	default:
		return ImageKindOther
	}
}

func (d *Drawing) graphicContent() string {
	var sb strings.Builder
	for _, raw := range d.Graphic {
		sb.Write(raw.Content)
	}
	return sb.String()
}

var aExtPattern = regexp.MustCompile(`<a:ext\b[^>]*>`)

// SetExtent updates the drawing size in EMU, rewriting both the wp:extent
// element and the a:ext transform inside the graphic subtree so Word renders
// the new size.
func (d *Drawing) SetExtent(cx, cy int64) {
	if d.Extent == nil {
		d.Extent = &Extent{}
	}
	d.Extent.Cx = cx
	d.Extent.Cy = cy

	cxAttr := regexp.MustCompile(`cx="\d+"`)
	cyAttr := regexp.MustCompile(`cy="\d+"`)
	for _, raw := range d.Graphic {
		raw.Content = []byte(aExtPattern.ReplaceAllStringFunc(string(raw.Content), func(tag string) string {
			tag = cxAttr.ReplaceAllString(tag, `cx="`+strconv.FormatInt(cx, 10)+`"`)
			tag = cyAttr.ReplaceAllString(tag, `cy="`+strconv.FormatInt(cy, 10)+`"`)
			return tag
		}))
	}
}
