package xml

import (
	"encoding/xml"
	"io"
	"strings"
)

// Run represents a contiguous styled span of text within a paragraph.
// Text, break and inline drawing children are typed; anything else (field
// chars, instruction text, embedded objects, VML picts) is preserved raw.
type Run struct {
	Properties *RunProperties
	Text       *Text
	Break      *Break
	Drawing    *Drawing
	RawXML     []*RawXMLElement
}

func (r *Run) isParagraphChild() {}

// UnmarshalXML implements custom XML unmarshaling to preserve unknown elements.
func (r *Run) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				var props RunProperties
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				r.Properties = &props
			case "t":
				var text Text
				if err := d.DecodeElement(&text, &t); err != nil {
					return err
				}
				r.Text = &text
			case "br":
				var br Break
				if err := d.DecodeElement(&br, &t); err != nil {
					return err
				}
				r.Break = &br
			case "drawing":
				var drawing Drawing
				if err := drawing.parse(d); err != nil {
					return err
				}
				r.Drawing = &drawing
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				r.RawXML = append(r.RawXML, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "r" {
				return nil
			}
		}
	}

	return nil
}

// MarshalXML implements custom XML marshaling for Run.
func (r *Run) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:r"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil {
		if err := e.EncodeElement(r.Properties, xml.StartElement{Name: xml.Name{Local: "w:rPr"}}); err != nil {
			return err
		}
	}

	if r.Text != nil {
		if err := e.EncodeElement(r.Text, xml.StartElement{Name: xml.Name{Local: "w:t"}}); err != nil {
			return err
		}
	}

	if r.Drawing != nil {
		if err := e.EncodeElement(r.Drawing, xml.StartElement{Name: xml.Name{Local: "w:drawing"}}); err != nil {
			return err
		}
	}

	if r.Break != nil {
		if err := e.EncodeElement(r.Break, xml.StartElement{Name: xml.Name{Local: "w:br"}}); err != nil {
			return err
		}
	}

	for _, raw := range r.RawXML {
		if err := e.EncodeElement(raw, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// GetText returns the text content of the run.
func (r *Run) GetText() string {
	if r.Text == nil {
		return ""
	}
	return r.Text.Content
}

// SetText replaces the text content of the run, keeping its formatting.
func (r *Run) SetText(s string) {
	if r.Text == nil {
		r.Text = &Text{}
	}
	r.Text.Content = s
	if s != strings.TrimSpace(s) {
		r.Text.Space = "preserve"
	} else {
		r.Text.Space = ""
	}
}

// ClearText removes the text content of the run. Non-text children such as
// drawings are left in place.
func (r *Run) ClearText() {
	r.Text = nil
}

func (r *Run) collectMarkers(reg *markerRegistry) {
	if r.Properties != nil {
		r.Properties.collectMarkers(reg)
	}
	if r.Drawing != nil {
		r.Drawing.collectMarkers(reg)
	}
	for _, raw := range r.RawXML {
		reg.register(raw)
	}
}

// RunProperties represents run formatting properties. Common properties are
// typed; the rest (underline, color, highlight, run style, ...) round-trip
// raw.
type RunProperties struct {
	Bold   *OnOff
	Italic *OnOff
	Size   *HalfPointSize
	SizeCs *HalfPointSize
	Fonts  *Fonts
	RawXML []*RawXMLElement
}

// UnmarshalXML implements custom XML unmarshaling to preserve unknown elements.
func (p *RunProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "b":
				var v OnOff
				if err := d.DecodeElement(&v, &t); err != nil {
					return err
				}
				p.Bold = &v
			case "i":
				var v OnOff
				if err := d.DecodeElement(&v, &t); err != nil {
					return err
				}
				p.Italic = &v
			case "sz":
				var v HalfPointSize
				if err := d.DecodeElement(&v, &t); err != nil {
					return err
				}
				p.Size = &v
			case "szCs":
				var v HalfPointSize
				if err := d.DecodeElement(&v, &t); err != nil {
					return err
				}
				p.SizeCs = &v
			case "rFonts":
				var v Fonts
				if err := d.DecodeElement(&v, &t); err != nil {
					return err
				}
				p.Fonts = &v
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				p.RawXML = append(p.RawXML, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "rPr" {
				return nil
			}
		}
	}

	return nil
}

// MarshalXML implements custom XML marshaling for RunProperties.
func (p *RunProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:rPr"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	for _, raw := range p.RawXML {
		if err := e.EncodeElement(raw, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
			return err
		}
	}

	if p.Fonts != nil {
		if err := e.EncodeElement(p.Fonts, xml.StartElement{Name: xml.Name{Local: "w:rFonts"}}); err != nil {
			return err
		}
	}
	if p.Bold != nil {
		if err := e.EncodeElement(p.Bold, xml.StartElement{Name: xml.Name{Local: "w:b"}}); err != nil {
			return err
		}
	}
	if p.Italic != nil {
		if err := e.EncodeElement(p.Italic, xml.StartElement{Name: xml.Name{Local: "w:i"}}); err != nil {
			return err
		}
	}
	if p.Size != nil {
		if err := e.EncodeElement(p.Size, xml.StartElement{Name: xml.Name{Local: "w:sz"}}); err != nil {
			return err
		}
	}
	if p.SizeCs != nil {
		if err := e.EncodeElement(p.SizeCs, xml.StartElement{Name: xml.Name{Local: "w:szCs"}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

func (p *RunProperties) collectMarkers(reg *markerRegistry) {
	for _, raw := range p.RawXML {
		reg.register(raw)
	}
}

// Fonts represents the w:rFonts element.
type Fonts struct {
	ASCII    string `xml:"ascii,attr"`
	HAnsi    string `xml:"hAnsi,attr"`
	EastAsia string `xml:"eastAsia,attr"`
	CS       string `xml:"cs,attr"`
}

// MarshalXML implements custom XML marshaling for Fonts.
func (f Fonts) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:rFonts"}
	start.Attr = nil
	if f.ASCII != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:ascii"}, Value: f.ASCII})
	}
	if f.HAnsi != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:hAnsi"}, Value: f.HAnsi})
	}
	if f.EastAsia != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:eastAsia"}, Value: f.EastAsia})
	}
	if f.CS != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:cs"}, Value: f.CS})
	}
	return e.EncodeElement(struct{}{}, start)
}

// Text represents the text content of a run.
type Text struct {
	Space   string `xml:"space,attr"`
	Content string `xml:",chardata"`
}

// MarshalXML implements custom XML marshaling for Text.
func (t Text) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:t"}
	start.Attr = nil
	if t.Space == "preserve" {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Space: "http://www.w3.org/XML/1998/namespace", Local: "space"},
			Value: "preserve",
		})
	}
	return e.EncodeElement(t.Content, start)
}

// Break represents a line break.
type Break struct {
	Type string `xml:"type,attr,omitempty"`
}

// MarshalXML implements xml.Marshaler to ensure Break is self-closing.
func (b *Break) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:br"}
	start.Attr = nil
	if b.Type != "" {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Local: "w:type"},
			Value: b.Type,
		})
	}
	return e.EncodeElement(struct{}{}, start)
}
