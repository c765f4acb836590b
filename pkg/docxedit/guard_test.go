package docxedit

import (
	"testing"

	docxml "github.com/docxtools/docxedit/pkg/docxedit/xml"
)

func TestRawHasEmbedded(t *testing.T) {
	tests := []struct {
		name    string
		local   string
		content string
		want    bool
	}{
		{
			name:    "hyperlink text mentioning a chart",
			local:   "hyperlink",
			content: `<w:hyperlink r:id="rId9"><w:r><w:t>see the chart below</w:t></w:r></w:hyperlink>`,
			want:    false,
		},
		{
			name:    "plain bookmark",
			local:   "bookmarkStart",
			content: `<w:bookmarkStart w:id="1" w:name="chartnotes"></w:bookmarkStart>`,
			want:    false,
		},
		{
			name:    "drawing element name",
			local:   "drawing",
			content: `<w:drawing></w:drawing>`,
			want:    true,
		},
		{
			name:    "nested drawing markup",
			local:   "AlternateContent",
			content: `<mc:AlternateContent><mc:Choice><w:drawing></w:drawing></mc:Choice></mc:AlternateContent>`,
			want:    true,
		},
		{
			name:    "chart graphicData namespace",
			local:   "customXml",
			content: `<w:customXml><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/chart"></a:graphicData></w:customXml>`,
			want:    true,
		},
		{
			name:    "chartex namespace",
			local:   "customXml",
			content: `<w:customXml><a:graphicData uri="http://schemas.microsoft.com/office/drawing/2014/chartex"></a:graphicData></w:customXml>`,
			want:    true,
		},
		{
			name:    "ole object",
			local:   "object",
			content: `<w:object></w:object>`,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := docxml.NewRawXMLElement(tt.local, []byte(tt.content))
			if got := rawHasEmbedded(raw); got != tt.want {
				t.Errorf("rawHasEmbedded(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestDeleteGuardIgnoresChartWordInText(t *testing.T) {
	// Hyperlink run text is not part of the paragraph text extraction, so a
	// paragraph holding only a hyperlink reads as text-empty. Its character
	// data mentioning a chart must not make the guard treat it as embedded
	// content.
	ed := openTestDoc(t,
		`<w:p><w:hyperlink r:id="rId9"><w:r><w:t>chart</w:t></w:r></w:hyperlink></w:p>`,
		para("keep"),
	)

	c := ed.ReadContent(IndexSelector(0))[0]
	if c.HasEmbedded {
		t.Error("Hyperlink text must not count as embedded content")
	}

	report := ed.BatchUpdate([]Operation{&DeleteOp{Index: 0}})
	if report.Failed != 0 {
		t.Fatalf("Delete vetoed without embedded content: %+v", report.Details)
	}
	if ed.ParagraphCount() != 1 {
		t.Errorf("Expected 1 paragraph, got %d", ed.ParagraphCount())
	}
}
