package xml

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

// Paragraph represents a paragraph in the document body or a table cell.
// Children preserves the order of runs and of everything else (hyperlinks,
// bookmarks, proofing marks) that appears inside the paragraph.
type Paragraph struct {
	Properties *ParagraphProperties
	Children   []ParagraphChild
}

func (p *Paragraph) isBodyElement() {}

// UnmarshalXML implements custom XML unmarshaling to preserve element order.
func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
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
			case "pPr":
				var props ParagraphProperties
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				p.Properties = &props
			case "r":
				run := &Run{}
				if err := d.DecodeElement(run, &t); err != nil {
					return err
				}
				p.Children = append(p.Children, run)
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				p.Children = append(p.Children, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				return nil
			}
		}
	}

	return nil
}

// MarshalXML implements custom XML marshaling for Paragraph.
func (p *Paragraph) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:p"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Properties != nil {
		if err := e.EncodeElement(p.Properties, xml.StartElement{Name: xml.Name{Local: "w:pPr"}}); err != nil {
			return err
		}
	}

	for _, child := range p.Children {
		switch c := child.(type) {
		case *Run:
			if err := e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: "w:r"}}); err != nil {
				return err
			}
		case *RawXMLElement:
			if err := e.EncodeElement(c, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
				return err
			}
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Runs returns the paragraph's runs in document order.
func (p *Paragraph) Runs() []*Run {
	var runs []*Run
	for _, child := range p.Children {
		if run, ok := child.(*Run); ok {
			runs = append(runs, run)
		}
	}
	return runs
}

// GetText returns the concatenated text of all runs in the paragraph.
func (p *Paragraph) GetText() string {
	var texts []string
	for _, run := range p.Runs() {
		if text := run.GetText(); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "")
}

// AddRun appends a new run with the given text and returns it.
func (p *Paragraph) AddRun(text string) *Run {
	run := &Run{}
	if text != "" {
		run.SetText(text)
	}
	p.Children = append(p.Children, run)
	return run
}

// StyleID returns the paragraph's style identifier, or the empty string when
// no explicit style is set.
func (p *Paragraph) StyleID() string {
	if p.Properties == nil || p.Properties.Style == nil {
		return ""
	}
	return p.Properties.Style.Val
}

// SetStyleID sets the paragraph's style identifier.
func (p *Paragraph) SetStyleID(id string) {
	props := p.EnsureProperties()
	props.Style = &StyleRef{Val: id}
}

// EnsureProperties returns the paragraph's properties, creating them first if
// absent.
func (p *Paragraph) EnsureProperties() *ParagraphProperties {
	if p.Properties == nil {
		p.Properties = &ParagraphProperties{}
	}
	return p.Properties
}

func (p *Paragraph) collectMarkers(reg *markerRegistry) {
	if p.Properties != nil {
		p.Properties.collectMarkers(reg)
	}
	for _, child := range p.Children {
		switch c := child.(type) {
		case *Run:
			c.collectMarkers(reg)
		case *RawXMLElement:
			reg.register(c)
		}
	}
}

// ParagraphProperties represents paragraph formatting properties. Unmodeled
// children (numbering, borders, shading, ...) are preserved raw.
type ParagraphProperties struct {
	Style         *StyleRef
	Alignment     *Alignment
	Indentation   *Indentation
	Spacing       *Spacing
	RunProperties *RunProperties
	RawXML        []*RawXMLElement
}

// UnmarshalXML implements custom XML unmarshaling to preserve unknown elements.
func (p *ParagraphProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
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
			case "pStyle":
				var style StyleRef
				if err := d.DecodeElement(&style, &t); err != nil {
					return err
				}
				p.Style = &style
			case "jc":
				var alignment Alignment
				if err := d.DecodeElement(&alignment, &t); err != nil {
					return err
				}
				p.Alignment = &alignment
			case "ind":
				var ind Indentation
				if err := d.DecodeElement(&ind, &t); err != nil {
					return err
				}
				p.Indentation = &ind
			case "spacing":
				var spacing Spacing
				if err := d.DecodeElement(&spacing, &t); err != nil {
					return err
				}
				p.Spacing = &spacing
			case "rPr":
				var runProps RunProperties
				if err := d.DecodeElement(&runProps, &t); err != nil {
					return err
				}
				p.RunProperties = &runProps
			default:
				raw, err := captureRaw(d, t)
				if err != nil {
					return err
				}
				p.RawXML = append(p.RawXML, raw)
			}
		case xml.EndElement:
			if t.Name.Local == "pPr" {
				return nil
			}
		}
	}

	return nil
}

// MarshalXML implements custom XML marshaling for ParagraphProperties.
func (p *ParagraphProperties) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:pPr"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if p.Style != nil {
		if err := e.EncodeElement(p.Style, xml.StartElement{Name: xml.Name{Local: "w:pStyle"}}); err != nil {
			return err
		}
	}

	// Raw children (numPr and friends) sit between pStyle and the modeled
	// formatting, which matches where Word usually puts them.
	for _, raw := range p.RawXML {
		if err := e.EncodeElement(raw, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
			return err
		}
	}

	if p.Spacing != nil {
		if err := e.EncodeElement(p.Spacing, xml.StartElement{Name: xml.Name{Local: "w:spacing"}}); err != nil {
			return err
		}
	}
	if p.Indentation != nil {
		if err := e.EncodeElement(p.Indentation, xml.StartElement{Name: xml.Name{Local: "w:ind"}}); err != nil {
			return err
		}
	}
	if p.Alignment != nil {
		if err := e.EncodeElement(p.Alignment, xml.StartElement{Name: xml.Name{Local: "w:jc"}}); err != nil {
			return err
		}
	}
	if p.RunProperties != nil {
		if err := e.EncodeElement(p.RunProperties, xml.StartElement{Name: xml.Name{Local: "w:rPr"}}); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Has reports whether the properties contain a child element with the given
// local name, raw or typed.
func (p *ParagraphProperties) Has(name string) bool {
	switch name {
	case "pStyle":
		return p.Style != nil
	case "jc":
		return p.Alignment != nil
	case "ind":
		return p.Indentation != nil
	case "spacing":
		return p.Spacing != nil
	case "rPr":
		return p.RunProperties != nil
	}
	for _, raw := range p.RawXML {
		if raw.XMLName.Local == name {
			return true
		}
	}
	return false
}

// Remove deletes the child element with the given local name, raw or typed.
// Removing a name that is not present is a no-op.
func (p *ParagraphProperties) Remove(name string) {
	switch name {
	case "pStyle":
		p.Style = nil
		return
	case "jc":
		p.Alignment = nil
		return
	case "ind":
		p.Indentation = nil
		return
	case "spacing":
		p.Spacing = nil
		return
	case "rPr":
		p.RunProperties = nil
		return
	}
	kept := p.RawXML[:0]
	for _, raw := range p.RawXML {
		if raw.XMLName.Local != name {
			kept = append(kept, raw)
		}
	}
	p.RawXML = kept
}

func (p *ParagraphProperties) collectMarkers(reg *markerRegistry) {
	for _, raw := range p.RawXML {
		reg.register(raw)
	}
	if p.RunProperties != nil {
		p.RunProperties.collectMarkers(reg)
	}
}

// Alignment represents the w:jc element.
type Alignment struct {
	Val string `xml:"val,attr"`
}

// MarshalXML implements custom XML marshaling for Alignment.
func (a Alignment) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:jc"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "w:val"}, Value: a.Val},
	}
	return e.EncodeElement(struct{}{}, start)
}

// Indentation represents the w:ind element; values are twips.
type Indentation struct {
	Left      *int `xml:"left,attr"`
	Right     *int `xml:"right,attr"`
	FirstLine *int `xml:"firstLine,attr"`
	Hanging   *int `xml:"hanging,attr"`
}

// MarshalXML implements custom XML marshaling for Indentation.
func (i Indentation) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:ind"}
	start.Attr = nil
	if i.Left != nil {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:left"}, Value: strconv.Itoa(*i.Left)})
	}
	if i.Right != nil {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:right"}, Value: strconv.Itoa(*i.Right)})
	}
	if i.FirstLine != nil {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:firstLine"}, Value: strconv.Itoa(*i.FirstLine)})
	}
	if i.Hanging != nil {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:hanging"}, Value: strconv.Itoa(*i.Hanging)})
	}
	return e.EncodeElement(struct{}{}, start)
}

// Spacing represents the w:spacing element; before/after/line are twips
// unless LineRule is auto, in which case line is 240ths of a line.
type Spacing struct {
	Before   *int   `xml:"before,attr"`
	After    *int   `xml:"after,attr"`
	Line     *int   `xml:"line,attr"`
	LineRule string `xml:"lineRule,attr"`
}

// MarshalXML implements custom XML marshaling for Spacing.
func (s Spacing) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:spacing"}
	start.Attr = nil
	if s.Before != nil {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:before"}, Value: strconv.Itoa(*s.Before)})
	}
	if s.After != nil {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:after"}, Value: strconv.Itoa(*s.After)})
	}
	if s.Line != nil {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:line"}, Value: strconv.Itoa(*s.Line)})
	}
	if s.LineRule != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "w:lineRule"}, Value: s.LineRule})
	}
	return e.EncodeElement(struct{}{}, start)
}
