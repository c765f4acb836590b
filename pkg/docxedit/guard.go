package docxedit

import (
	"strings"

	docxml "github.com/docxtools/docxedit/pkg/docxedit/xml"
)

// isTrulyEmpty reports whether a paragraph can be deleted without data loss:
// its trimmed text is empty and it carries no drawing, OLE object or chart
// content. Text extraction returns "" for paragraphs whose only content is an
// embedded picture, so checking text alone would silently destroy figures.
func isTrulyEmpty(p *docxml.Paragraph) bool {
	if strings.TrimSpace(p.GetText()) != "" {
		return false
	}
	return !hasEmbedded(p)
}

// hasEmbedded reports whether the paragraph contains a drawing, an OLE
// object, or chart markup anywhere in its subtree.
func hasEmbedded(p *docxml.Paragraph) bool {
	for _, run := range p.Runs() {
		if run.Drawing != nil {
			return true
		}
		for _, raw := range run.RawXML {
			if rawHasEmbedded(raw) {
				return true
			}
		}
	}
	for _, child := range p.Children {
		if raw, ok := child.(*docxml.RawXMLElement); ok {
			if rawHasEmbedded(raw) {
				return true
			}
		}
	}
	return false
}

func rawHasEmbedded(raw *docxml.RawXMLElement) bool {
	switch raw.XMLName.Local {
	case "drawing", "object", "pict":
		return true
	}
	// Match chart content by its namespace or element tags, not by the bare
	// word: character data mentioning a chart must not trip the guard.
	content := string(raw.Content)
	return strings.Contains(content, "<w:drawing") ||
		strings.Contains(content, "<w:object") ||
		strings.Contains(content, "drawingml/2006/chart") ||
		strings.Contains(content, "drawing/2014/chartex") ||
		strings.Contains(content, "<c:chart")
}

// setParagraphText replaces the paragraph's text while preserving the first
// run's formatting. The first run keeps its properties and receives the whole
// text; every other run has its text cleared but keeps non-text children such
// as drawings. A paragraph with no runs gets a fresh run appended.
func setParagraphText(p *docxml.Paragraph, text string) {
	runs := p.Runs()
	if len(runs) == 0 {
		p.AddRun(text)
		return
	}
	runs[0].SetText(text)
	for _, run := range runs[1:] {
		run.ClearText()
	}
}
