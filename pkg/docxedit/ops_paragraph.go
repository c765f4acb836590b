package docxedit

import (
	"fmt"
	"regexp"
	"strings"

	docxml "github.com/docxtools/docxedit/pkg/docxedit/xml"
)

// Insert positions relative to the reference paragraph.
const (
	PositionBefore = "before"
	PositionAfter  = "after"
)

// DeleteOp removes a paragraph. Unless Force is set, deleting a paragraph
// that still carries text or embedded content fails with a guard error.
type DeleteOp struct {
	Index int
	Force bool
}

func (o *DeleteOp) Kind() string { return "delete" }
func (o *DeleteOp) anchor() int  { return o.Index }

func (o *DeleteOp) apply(ed *Editor, det *OpDetail) error {
	det.Index = &o.Index
	if o.Index < 0 || o.Index >= len(ed.paragraphs) {
		return NewRangeError("paragraph", o.Index, len(ed.paragraphs))
	}

	p := ed.paragraphs[o.Index]
	if !o.Force && !isTrulyEmpty(p) {
		reason := "has text"
		if hasEmbedded(p) {
			reason = "has embedded content"
		}
		return NewGuardError(o.Index, reason)
	}

	ed.removeBodyElement(p)
	ed.refresh()
	return nil
}

// InsertOp creates a new paragraph adjacent to the reference paragraph and
// reports the new paragraph's index.
type InsertOp struct {
	Index    int
	Position string
	Text     string
	Style    string
}

func (o *InsertOp) Kind() string { return "insert" }
func (o *InsertOp) anchor() int  { return o.Index }

func (o *InsertOp) apply(ed *Editor, det *OpDetail) error {
	det.Index = &o.Index
	if o.Index < 0 || o.Index >= len(ed.paragraphs) {
		return NewRangeError("paragraph", o.Index, len(ed.paragraphs))
	}

	ref := ed.paragraphs[o.Index]
	at := ed.bodyIndexOf(ref)
	if at < 0 {
		return fmt.Errorf("paragraph %d not found in body", o.Index)
	}
	if o.Position != PositionBefore {
		at++
	}

	p := &docxml.Paragraph{}
	ed.insertBodyElement(at, p)
	ed.refresh()

	setParagraphText(p, o.Text)
	if o.Style != "" {
		ed.applyNamedStyle(p, o.Style)
	}

	for i, candidate := range ed.paragraphs {
		if candidate == p {
			newIndex := i
			det.NewIndex = &newIndex
			break
		}
	}
	return nil
}

// FontSpec is the optional font block of UpdateStyleOp. Size is points.
type FontSpec struct {
	Name   string   `json:"name"`
	Size   *float64 `json:"size"`
	Bold   *bool    `json:"bold"`
	Italic *bool    `json:"italic"`
}

// IndentSpec is an optional indentation block; values are centimeters.
type IndentSpec struct {
	FirstLine *float64 `json:"first_line"`
	Left      *float64 `json:"left"`
	Right     *float64 `json:"right"`
}

// SpacingSpec is an optional spacing block. Line is a multiple of single
// spacing; Before and After are points.
type SpacingSpec struct {
	Line   *float64 `json:"line"`
	Before *float64 `json:"before"`
	After  *float64 `json:"after"`
}

// UpdateStyleOp applies any combination of named style, font, alignment,
// indentation and spacing to one paragraph. Sub-fields are independent; an
// unknown style name is ignored rather than failing the operation.
type UpdateStyleOp struct {
	Index     int
	Style     string
	Font      *FontSpec
	Alignment string
	Indent    *IndentSpec
	Spacing   *SpacingSpec
}

func (o *UpdateStyleOp) Kind() string { return "update_style" }
func (o *UpdateStyleOp) anchor() int  { return o.Index }

func (o *UpdateStyleOp) apply(ed *Editor, det *OpDetail) error {
	det.Index = &o.Index
	if o.Index < 0 || o.Index >= len(ed.paragraphs) {
		return NewRangeError("paragraph", o.Index, len(ed.paragraphs))
	}
	p := ed.paragraphs[o.Index]

	if o.Style != "" {
		ed.applyNamedStyle(p, o.Style)
	}
	if o.Font != nil {
		applyFont(p, o.Font)
	}
	if o.Alignment != "" {
		applyAlignment(p, o.Alignment)
	}
	if o.Indent != nil {
		applyIndent(p, o.Indent)
	}
	if o.Spacing != nil {
		applySpacing(p, o.Spacing)
	}
	return nil
}

// applyNamedStyle sets a paragraph style by display name or identifier; an
// unknown name is ignored.
func (ed *Editor) applyNamedStyle(p *docxml.Paragraph, name string) {
	styleID := ed.styles.IDFor(name)
	if !ed.styles.Has(styleID) {
		ed.logger.Debug("ignoring unknown style %q", name)
		return
	}
	p.SetStyleID(styleID)
}

func applyFont(p *docxml.Paragraph, font *FontSpec) {
	for _, run := range p.Runs() {
		if run.Properties == nil {
			run.Properties = &docxml.RunProperties{}
		}
		props := run.Properties
		if font.Name != "" {
			// eastAsia must follow the latin face or CJK text keeps the
			// old font.
			props.Fonts = &docxml.Fonts{
				ASCII:    font.Name,
				HAnsi:    font.Name,
				EastAsia: font.Name,
			}
		}
		if font.Size != nil {
			props.Size = &docxml.HalfPointSize{Val: ptToHalfPoints(*font.Size)}
			props.SizeCs = &docxml.HalfPointSize{Val: ptToHalfPoints(*font.Size)}
		}
		if font.Bold != nil {
			if *font.Bold {
				props.Bold = &docxml.OnOff{}
			} else {
				props.Bold = &docxml.OnOff{Val: "0"}
			}
		}
		if font.Italic != nil {
			if *font.Italic {
				props.Italic = &docxml.OnOff{}
			} else {
				props.Italic = &docxml.OnOff{Val: "0"}
			}
		}
	}
}

func applyAlignment(p *docxml.Paragraph, alignment string) {
	val := alignment
	if alignment == "justify" {
		val = "both"
	}
	p.EnsureProperties().Alignment = &docxml.Alignment{Val: val}
}

func applyIndent(p *docxml.Paragraph, indent *IndentSpec) {
	props := p.EnsureProperties()
	if props.Indentation == nil {
		props.Indentation = &docxml.Indentation{}
	}
	if indent.FirstLine != nil {
		twips := cmToTwips(*indent.FirstLine)
		props.Indentation.FirstLine = &twips
	}
	if indent.Left != nil {
		twips := cmToTwips(*indent.Left)
		props.Indentation.Left = &twips
	}
	if indent.Right != nil {
		twips := cmToTwips(*indent.Right)
		props.Indentation.Right = &twips
	}
}

func applySpacing(p *docxml.Paragraph, spacing *SpacingSpec) {
	props := p.EnsureProperties()
	if props.Spacing == nil {
		props.Spacing = &docxml.Spacing{}
	}
	if spacing.Line != nil {
		line := int(*spacing.Line * 240)
		props.Spacing.Line = &line
		props.Spacing.LineRule = "auto"
	}
	if spacing.Before != nil {
		before := ptToTwips(*spacing.Before)
		props.Spacing.Before = &before
	}
	if spacing.After != nil {
		after := ptToTwips(*spacing.After)
		props.Spacing.After = &after
	}
}

// ReplaceTextOp substitutes within one paragraph's text and reports whether a
// change occurred. Pattern is a regular expression unless Regex is false.
type ReplaceTextOp struct {
	Index       int
	Pattern     string
	Replacement string
	Regex       bool
}

func (o *ReplaceTextOp) Kind() string { return "replace_text" }
func (o *ReplaceTextOp) anchor() int  { return o.Index }

func (o *ReplaceTextOp) apply(ed *Editor, det *OpDetail) error {
	det.Index = &o.Index
	if o.Index < 0 || o.Index >= len(ed.paragraphs) {
		return NewRangeError("paragraph", o.Index, len(ed.paragraphs))
	}

	p := ed.paragraphs[o.Index]
	newText, changed, err := substitute(p.GetText(), o.Pattern, o.Replacement, o.Regex)
	if err != nil {
		return err
	}
	if changed {
		setParagraphText(p, newText)
	}
	det.Changed = &changed
	return nil
}

// ReplaceTextGlobalOp substitutes across every paragraph and reports how many
// paragraphs changed. Pattern is a literal substring unless Regex is true.
type ReplaceTextGlobalOp struct {
	Pattern     string
	Replacement string
	Regex       bool
}

func (o *ReplaceTextGlobalOp) Kind() string { return "replace_text_global" }
func (o *ReplaceTextGlobalOp) anchor() int  { return indexlessAnchor }

func (o *ReplaceTextGlobalOp) apply(ed *Editor, det *OpDetail) error {
	count := 0
	for _, p := range ed.paragraphs {
		newText, changed, err := substitute(p.GetText(), o.Pattern, o.Replacement, o.Regex)
		if err != nil {
			return err
		}
		if changed {
			setParagraphText(p, newText)
			count++
		}
	}
	det.ReplacedCount = &count
	return nil
}

func substitute(text, pattern, replacement string, regex bool) (string, bool, error) {
	var newText string
	if regex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return "", false, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		newText = re.ReplaceAllString(text, replacement)
	} else {
		newText = strings.ReplaceAll(text, pattern, replacement)
	}
	return newText, newText != text, nil
}

// CleanXMLOp removes named structural children (such as numPr automatic
// numbering) from a paragraph's properties, optionally re-applying style and
// indentation afterwards.
type CleanXMLOp struct {
	Index  int
	Remove []string
	Style  string
	Indent *IndentSpec
}

func (o *CleanXMLOp) Kind() string { return "clean_xml" }
func (o *CleanXMLOp) anchor() int  { return o.Index }

func (o *CleanXMLOp) apply(ed *Editor, det *OpDetail) error {
	det.Index = &o.Index
	if o.Index < 0 || o.Index >= len(ed.paragraphs) {
		return NewRangeError("paragraph", o.Index, len(ed.paragraphs))
	}

	p := ed.paragraphs[o.Index]
	if p.Properties != nil {
		for _, name := range o.Remove {
			p.Properties.Remove(name)
		}
	}
	if o.Style != "" {
		ed.applyNamedStyle(p, o.Style)
	}
	if o.Indent != nil {
		applyIndent(p, o.Indent)
	}
	return nil
}

// SetTextOp replaces a paragraph's text, preserving first-run formatting.
type SetTextOp struct {
	Index int
	Text  string
}

func (o *SetTextOp) Kind() string { return "set_text" }
func (o *SetTextOp) anchor() int  { return o.Index }

func (o *SetTextOp) apply(ed *Editor, det *OpDetail) error {
	det.Index = &o.Index
	if o.Index < 0 || o.Index >= len(ed.paragraphs) {
		return NewRangeError("paragraph", o.Index, len(ed.paragraphs))
	}
	setParagraphText(ed.paragraphs[o.Index], o.Text)
	return nil
}

// removeBodyElement deletes the given element from the document body.
func (ed *Editor) removeBodyElement(target docxml.BodyElement) {
	elements := ed.doc.Body.Elements
	for i, elem := range elements {
		if elem == target {
			ed.doc.Body.Elements = append(elements[:i], elements[i+1:]...)
			return
		}
	}
}

// bodyIndexOf returns the position of the element in the document body, or -1.
func (ed *Editor) bodyIndexOf(target docxml.BodyElement) int {
	for i, elem := range ed.doc.Body.Elements {
		if elem == target {
			return i
		}
	}
	return -1
}

// insertBodyElement inserts an element at the given body position.
func (ed *Editor) insertBodyElement(at int, elem docxml.BodyElement) {
	elements := ed.doc.Body.Elements
	elements = append(elements, nil)
	copy(elements[at+1:], elements[at:])
	elements[at] = elem
	ed.doc.Body.Elements = elements
}
