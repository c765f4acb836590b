package xml

import (
	"encoding/xml"
	"io"
	"strings"
)

// Table represents a w:tbl element. Formatting (tblPr, tblGrid, trPr, tcPr)
// is preserved raw; only the row/cell structure and cell paragraph content
// are modeled, which is all the editing operations touch. Other direct
// children (bookmarks spanning the table, customXml) are kept raw in order.
type Table struct {
	Properties *RawXMLElement
	Grid       *RawXMLElement
	Elements   []TableElement
}

func (t *Table) isBodyElement() {}

// UnmarshalXML implements custom XML unmarshaling for Table.
func (t *Table) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "tblPr":
				raw, err := captureRaw(d, tok)
				if err != nil {
					return err
				}
				t.Properties = raw
			case "tblGrid":
				raw, err := captureRaw(d, tok)
				if err != nil {
					return err
				}
				t.Grid = raw
			case "tr":
				row := &TableRow{}
				if err := d.DecodeElement(row, &tok); err != nil {
					return err
				}
				t.Elements = append(t.Elements, row)
			default:
				raw, err := captureRaw(d, tok)
				if err != nil {
					return err
				}
				t.Elements = append(t.Elements, raw)
			}
		case xml.EndElement:
			if tok.Name.Local == "tbl" {
				return nil
			}
		}
	}

	return nil
}

// MarshalXML implements custom XML marshaling for Table.
func (t *Table) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tbl"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if t.Properties != nil {
		if err := e.EncodeElement(t.Properties, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
			return err
		}
	}
	if t.Grid != nil {
		if err := e.EncodeElement(t.Grid, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
			return err
		}
	}
	for _, elem := range t.Elements {
		switch el := elem.(type) {
		case *TableRow:
			if err := e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: "w:tr"}}); err != nil {
				return err
			}
		case *RawXMLElement:
			if err := e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
				return err
			}
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Rows returns the table's rows in document order.
func (t *Table) Rows() []*TableRow {
	var rows []*TableRow
	for _, elem := range t.Elements {
		if row, ok := elem.(*TableRow); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Rows())
}

// ColumnCount returns the number of cells in the first row, or 0 for an
// empty table.
func (t *Table) ColumnCount() int {
	rows := t.Rows()
	if len(rows) == 0 {
		return 0
	}
	return len(rows[0].Cells())
}

// Cell returns the cell at (row, col); callers must range-check first.
func (t *Table) Cell(row, col int) *TableCell {
	return t.Rows()[row].Cells()[col]
}

func (t *Table) collectMarkers(reg *markerRegistry) {
	if t.Properties != nil {
		reg.register(t.Properties)
	}
	if t.Grid != nil {
		reg.register(t.Grid)
	}
	for _, elem := range t.Elements {
		switch el := elem.(type) {
		case *TableRow:
			el.collectMarkers(reg)
		case *RawXMLElement:
			reg.register(el)
		}
	}
}

// TableRow represents a w:tr element. Non-cell children (bookmarks, proofing
// marks) are kept raw in order.
type TableRow struct {
	Properties *RawXMLElement
	Elements   []RowElement
}

func (r *TableRow) isTableElement() {}

// UnmarshalXML implements custom XML unmarshaling for TableRow.
func (r *TableRow) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "trPr":
				raw, err := captureRaw(d, tok)
				if err != nil {
					return err
				}
				r.Properties = raw
			case "tc":
				cell := &TableCell{}
				if err := d.DecodeElement(cell, &tok); err != nil {
					return err
				}
				r.Elements = append(r.Elements, cell)
			default:
				raw, err := captureRaw(d, tok)
				if err != nil {
					return err
				}
				r.Elements = append(r.Elements, raw)
			}
		case xml.EndElement:
			if tok.Name.Local == "tr" {
				return nil
			}
		}
	}

	return nil
}

// MarshalXML implements custom XML marshaling for TableRow.
func (r *TableRow) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tr"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if r.Properties != nil {
		if err := e.EncodeElement(r.Properties, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
			return err
		}
	}
	for _, elem := range r.Elements {
		switch el := elem.(type) {
		case *TableCell:
			if err := e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: "w:tc"}}); err != nil {
				return err
			}
		case *RawXMLElement:
			if err := e.EncodeElement(el, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
				return err
			}
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Cells returns the row's cells in document order.
func (r *TableRow) Cells() []*TableCell {
	var cells []*TableCell
	for _, elem := range r.Elements {
		if cell, ok := elem.(*TableCell); ok {
			cells = append(cells, cell)
		}
	}
	return cells
}

func (r *TableRow) collectMarkers(reg *markerRegistry) {
	if r.Properties != nil {
		reg.register(r.Properties)
	}
	for _, elem := range r.Elements {
		switch el := elem.(type) {
		case *TableCell:
			el.collectMarkers(reg)
		case *RawXMLElement:
			reg.register(el)
		}
	}
}

// TableCell represents a w:tc element. Cell content is body-style: an
// ordered mix of paragraphs and nested tables.
type TableCell struct {
	Properties *RawXMLElement
	Elements   []BodyElement
}

func (c *TableCell) isRowElement() {}

// UnmarshalXML implements custom XML unmarshaling for TableCell.
func (c *TableCell) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			switch tok.Name.Local {
			case "tcPr":
				raw, err := captureRaw(d, tok)
				if err != nil {
					return err
				}
				c.Properties = raw
			case "p":
				para := &Paragraph{}
				if err := d.DecodeElement(para, &tok); err != nil {
					return err
				}
				c.Elements = append(c.Elements, para)
			case "tbl":
				table := &Table{}
				if err := d.DecodeElement(table, &tok); err != nil {
					return err
				}
				c.Elements = append(c.Elements, table)
			default:
				raw, err := captureRaw(d, tok)
				if err != nil {
					return err
				}
				c.Elements = append(c.Elements, raw)
			}
		case xml.EndElement:
			if tok.Name.Local == "tc" {
				return nil
			}
		}
	}

	return nil
}

// MarshalXML implements custom XML marshaling for TableCell.
func (c *TableCell) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "w:tc"}
	start.Attr = nil
	if err := e.EncodeToken(start); err != nil {
		return err
	}

	if c.Properties != nil {
		if err := e.EncodeElement(c.Properties, xml.StartElement{Name: xml.Name{Local: rawMarkerElement}}); err != nil {
			return err
		}
	}
	for _, elem := range c.Elements {
		if err := encodeBodyElement(e, elem); err != nil {
			return err
		}
	}

	return e.EncodeToken(xml.EndElement{Name: start.Name})
}

// Paragraphs returns the cell's direct paragraphs in order.
func (c *TableCell) Paragraphs() []*Paragraph {
	var paras []*Paragraph
	for _, elem := range c.Elements {
		if para, ok := elem.(*Paragraph); ok {
			paras = append(paras, para)
		}
	}
	return paras
}

// GetText returns the cell's text: its paragraph texts joined by newlines.
func (c *TableCell) GetText() string {
	var texts []string
	for _, para := range c.Paragraphs() {
		texts = append(texts, para.GetText())
	}
	return strings.Join(texts, "\n")
}

// SetText replaces the entire cell content with a single paragraph holding
// the given text. Cell-level formatting (tcPr) is preserved.
func (c *TableCell) SetText(text string) {
	para := &Paragraph{}
	para.AddRun(text)
	c.Elements = []BodyElement{para}
}

func (c *TableCell) collectMarkers(reg *markerRegistry) {
	if c.Properties != nil {
		reg.register(c.Properties)
	}
	for _, elem := range c.Elements {
		switch el := elem.(type) {
		case *Paragraph:
			el.collectMarkers(reg)
		case *Table:
			el.collectMarkers(reg)
		case *RawXMLElement:
			reg.register(el)
		}
	}
}
