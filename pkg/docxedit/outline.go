package docxedit

import (
	"strconv"
	"strings"

	docxml "github.com/docxtools/docxedit/pkg/docxedit/xml"
)

// OutlineHeading is one heading entry in the document outline.
type OutlineHeading struct {
	Index int    `json:"index"`
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Outline is the cheap document map: heading paragraphs plus the total
// paragraph count.
type Outline struct {
	TotalParagraphs int              `json:"total_paragraphs"`
	Headings        []OutlineHeading `json:"headings"`
}

// GetOutline returns every non-empty heading paragraph. It looks only at
// style and text, never at runs or formatting, so it stays cheap on large
// documents.
func (ed *Editor) GetOutline() *Outline {
	limit := GetGlobalConfig().OutlineTextLimit
	outline := &Outline{TotalParagraphs: len(ed.paragraphs)}

	for i, p := range ed.paragraphs {
		level := ed.headingLevel(p)
		if level == 0 {
			continue
		}
		text := strings.TrimSpace(p.GetText())
		if text == "" {
			continue
		}
		outline.Headings = append(outline.Headings, OutlineHeading{
			Index: i,
			Level: level,
			Text:  truncateRunes(text, limit),
		})
	}
	return outline
}

// headingLevel returns the paragraph's heading level, or 0 when the paragraph
// is not a heading. A style named "Heading N" yields N; a purely numeric
// style identifier up to 9 is also treated as a heading level.
func (ed *Editor) headingLevel(p *docxml.Paragraph) int {
	styleID := p.StyleID()
	if styleID == "" {
		return 0
	}

	name := ed.styleName(styleID)
	if strings.HasPrefix(name, "Heading ") {
		if level, err := strconv.Atoi(strings.TrimPrefix(name, "Heading ")); err == nil && level > 0 {
			return level
		}
	}

	if level, err := strconv.Atoi(styleID); err == nil && level >= 1 && level <= 9 {
		return level
	}
	return 0
}

// Selector resolves to a set of paragraph indices for ReadContent.
type Selector interface {
	resolve(ed *Editor) []int
}

// IndexSelector selects a single paragraph index.
type IndexSelector int

func (s IndexSelector) resolve(ed *Editor) []int {
	return []int{int(s)}
}

// IndicesSelector selects an explicit list of paragraph indices.
type IndicesSelector []int

func (s IndicesSelector) resolve(ed *Editor) []int {
	return []int(s)
}

// RangeSelector selects the contiguous inclusive index range [Start, End].
type RangeSelector struct {
	Start int
	End   int
}

func (s RangeSelector) resolve(ed *Editor) []int {
	var indices []int
	for i := s.Start; i <= s.End; i++ {
		indices = append(indices, i)
	}
	return indices
}

// SectionSelector selects the paragraphs of the section opened by the first
// heading whose text contains Title, up to but excluding the next heading of
// the same or higher level.
type SectionSelector struct {
	Title string
}

func (s SectionSelector) resolve(ed *Editor) []int {
	start := -1
	level := 0
	for i, p := range ed.paragraphs {
		l := ed.headingLevel(p)
		if l == 0 {
			continue
		}
		if strings.Contains(p.GetText(), s.Title) {
			start = i
			level = l
			break
		}
	}
	if start < 0 {
		return nil
	}

	end := len(ed.paragraphs)
	for i := start + 1; i < len(ed.paragraphs); i++ {
		if l := ed.headingLevel(ed.paragraphs[i]); l != 0 && l <= level {
			end = i
			break
		}
	}

	indices := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		indices = append(indices, i)
	}
	return indices
}

// RunInfo describes one run of a paragraph.
type RunInfo struct {
	Text     string   `json:"text"`
	Bold     bool     `json:"bold"`
	Italic   bool     `json:"italic"`
	FontSize *float64 `json:"font_size,omitempty"`
}

// ParagraphFormat describes paragraph-level formatting. Measurements are only
// present when explicitly set on the paragraph.
type ParagraphFormat struct {
	Alignment         string   `json:"alignment"`
	LineSpacing       *float64 `json:"line_spacing,omitempty"`
	FirstLineIndentCm *float64 `json:"first_line_indent_cm,omitempty"`
	LeftIndentCm      *float64 `json:"left_indent_cm,omitempty"`
}

// ParagraphContent is the full read projection of one paragraph.
type ParagraphContent struct {
	Index        int             `json:"index"`
	Text         string          `json:"text"`
	Style        string          `json:"style"`
	IsHeading    bool            `json:"is_heading"`
	HeadingLevel int             `json:"heading_level,omitempty"`
	TextEmpty    bool            `json:"text_empty"`
	TrulyEmpty   bool            `json:"truly_empty"`
	HasEmbedded  bool            `json:"has_embedded"`
	HasNumbering bool            `json:"has_numbering"`
	Runs         []RunInfo       `json:"runs"`
	Format       ParagraphFormat `json:"format"`
}

// ReadContent returns the full projection of every paragraph the selector
// resolves to. Out-of-range indices are skipped, not errors.
func (ed *Editor) ReadContent(sel Selector) []ParagraphContent {
	var result []ParagraphContent
	for _, i := range sel.resolve(ed) {
		if i < 0 || i >= len(ed.paragraphs) {
			continue
		}
		result = append(result, ed.paragraphContent(i))
	}
	return result
}

func (ed *Editor) paragraphContent(index int) ParagraphContent {
	p := ed.paragraphs[index]
	text := p.GetText()
	level := ed.headingLevel(p)

	content := ParagraphContent{
		Index:        index,
		Text:         text,
		Style:        ed.styleName(p.StyleID()),
		IsHeading:    level > 0,
		HeadingLevel: level,
		TextEmpty:    strings.TrimSpace(text) == "",
		TrulyEmpty:   isTrulyEmpty(p),
		HasEmbedded:  hasEmbedded(p),
		HasNumbering: p.Properties != nil && p.Properties.Has("numPr"),
		Format:       paragraphFormat(p),
	}

	for _, run := range p.Runs() {
		info := RunInfo{Text: run.GetText()}
		if props := run.Properties; props != nil {
			info.Bold = props.Bold != nil && props.Bold.IsOn()
			info.Italic = props.Italic != nil && props.Italic.IsOn()
			if props.Size != nil {
				size := props.Size.Points()
				info.FontSize = &size
			}
		}
		content.Runs = append(content.Runs, info)
	}
	return content
}

func paragraphFormat(p *docxml.Paragraph) ParagraphFormat {
	format := ParagraphFormat{Alignment: "none"}
	props := p.Properties
	if props == nil {
		return format
	}

	if props.Alignment != nil {
		format.Alignment = alignmentName(props.Alignment.Val)
	}
	if props.Spacing != nil && props.Spacing.Line != nil {
		spacing := lineSpacingValue(props.Spacing)
		format.LineSpacing = &spacing
	}
	if props.Indentation != nil {
		if props.Indentation.FirstLine != nil {
			cm := twipsToCm(*props.Indentation.FirstLine)
			format.FirstLineIndentCm = &cm
		}
		if props.Indentation.Left != nil {
			cm := twipsToCm(*props.Indentation.Left)
			format.LeftIndentCm = &cm
		}
	}
	return format
}

// alignmentName maps w:jc values onto the caller-facing alignment names;
// OOXML calls justified text "both".
func alignmentName(val string) string {
	switch val {
	case "both", "distribute":
		return "justify"
	case "left", "start":
		return "left"
	case "right", "end":
		return "right"
	case "center":
		return "center"
	case "":
		return "none"
	default:
		return val
	}
}

// lineSpacingValue converts w:spacing/@w:line to the caller-facing value: a
// multiple of single spacing when lineRule is auto (240ths of a line),
// otherwise points.
func lineSpacingValue(s *docxml.Spacing) float64 {
	if s.LineRule == "" || s.LineRule == "auto" {
		return float64(*s.Line) / 240
	}
	return float64(*s.Line) / 20
}

// TableOutline is one entry of the tables outline.
type TableOutline struct {
	TableIndex int    `json:"table_index"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	Preview    string `json:"preview"`
}

// GetTablesOutline returns shape and first-cell preview for every table.
func (ed *Editor) GetTablesOutline() []TableOutline {
	limit := GetGlobalConfig().TablePreviewLimit
	var result []TableOutline
	for i, t := range ed.tables {
		entry := TableOutline{
			TableIndex: i,
			Rows:       t.RowCount(),
			Cols:       t.ColumnCount(),
		}
		if entry.Rows > 0 && entry.Cols > 0 {
			preview := strings.TrimSpace(t.Cell(0, 0).GetText())
			if len([]rune(preview)) > limit {
				preview = truncateRunes(preview, limit) + "..."
			}
			entry.Preview = preview
		}
		result = append(result, entry)
	}
	return result
}

// TableData is the full cell grid of one table.
type TableData struct {
	TableIndex int        `json:"table_index"`
	Rows       int        `json:"rows"`
	Cols       int        `json:"cols"`
	Cells      [][]string `json:"cells"`
}

// ReadTable returns the full cell grid of the table at the given index.
func (ed *Editor) ReadTable(tableIndex int) (*TableData, error) {
	if tableIndex < 0 || tableIndex >= len(ed.tables) {
		return nil, NewRangeError("table", tableIndex, len(ed.tables))
	}

	t := ed.tables[tableIndex]
	data := &TableData{
		TableIndex: tableIndex,
		Rows:       t.RowCount(),
		Cols:       t.ColumnCount(),
	}
	for _, row := range t.Rows() {
		cells := row.Cells()
		texts := make([]string, 0, len(cells))
		for _, cell := range cells {
			texts = append(texts, cell.GetText())
		}
		data.Cells = append(data.Cells, texts)
	}
	return data, nil
}

// ImageOutline is one entry of the images outline. Dimensions are
// centimeters, nil when the drawing has no explicit extent.
type ImageOutline struct {
	ImageIndex int      `json:"image_index"`
	Kind       string   `json:"kind"`
	WidthCm    *float64 `json:"width_cm"`
	HeightCm   *float64 `json:"height_cm"`
}

// GetImagesOutline returns kind and size for every inline image.
func (ed *Editor) GetImagesOutline() []ImageOutline {
	var result []ImageOutline
	for i, ref := range ed.images {
		entry := ImageOutline{
			ImageIndex: i,
			Kind:       string(ref.drawing.Kind()),
		}
		if ext := ref.drawing.Extent; ext != nil {
			w := emuToCm(ext.Cx)
			h := emuToCm(ext.Cy)
			entry.WidthCm = &w
			entry.HeightCm = &h
		}
		result = append(result, entry)
	}
	return result
}

// truncateRunes cuts s to at most limit runes.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
