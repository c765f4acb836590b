package docxedit

import (
	"strings"
	"testing"
)

func TestBatchDescendingOrderScenario(t *testing.T) {
	// Submitting delete(5), delete(2), insert(2) in any order must execute
	// highest index first, so every target index stays valid against the
	// pre-batch document state.
	ed := openTestDoc(t,
		para("p0"), para("p1"), para("p2"), para("p3"), para("p4"), para("p5"), para("p6"),
	)

	report := ed.BatchUpdate([]Operation{
		&DeleteOp{Index: 2, Force: true},
		&InsertOp{Index: 2, Position: PositionBefore, Text: "X"},
		&DeleteOp{Index: 5, Force: true},
	})
	if report.Failed != 0 {
		t.Fatalf("Batch failed: %+v", report.Details)
	}

	texts := paragraphTexts(ed)
	want := []string{"p0", "p1", "X", "p3", "p4", "p6"}
	if strings.Join(texts, "|") != strings.Join(want, "|") {
		t.Errorf("Expected %v, got %v", want, texts)
	}

	// Execution order is the post-sort order: index 5 first, indexless last.
	if *report.Details[0].Index != 5 || *report.Details[1].Index != 2 {
		t.Errorf("Unexpected execution order: %+v", report.Details)
	}
}

func TestBatchStableOrderForEqualAnchors(t *testing.T) {
	ed := openTestDoc(t, simpleTable([]string{"a", "b"}))

	// Two operations on the same cell keep submission order.
	report := ed.BatchUpdate([]Operation{
		&UpdateTableCellOp{TableIndex: 0, Row: 0, Col: 0, Text: "first"},
		&UpdateTableCellOp{TableIndex: 0, Row: 0, Col: 0, Text: "second"},
	})
	if report.Failed != 0 {
		t.Fatalf("Batch failed: %+v", report.Details)
	}

	data, _ := ed.ReadTable(0)
	if data.Cells[0][0] != "second" {
		t.Errorf("Expected later operation to win, got %q", data.Cells[0][0])
	}
}

func TestBatchFailureIsolation(t *testing.T) {
	ed := openTestDoc(t, para("keep"))

	report := ed.BatchUpdate([]Operation{
		&SetTextOp{Index: 99, Text: "out of range"},
		&SetTextOp{Index: 0, Text: "updated"},
		&unknownOp{kind: "frobnicate"},
	})

	if report.Success != 1 || report.Failed != 2 {
		t.Fatalf("Expected 1 success / 2 failures, got %d/%d", report.Success, report.Failed)
	}
	if got := paragraphTexts(ed)[0]; got != "updated" {
		t.Errorf("Valid operation must still apply, got %q", got)
	}

	for _, det := range report.Details {
		switch det.Status {
		case "failed":
			if det.Error == "" {
				t.Errorf("Failed detail missing error: %+v", det)
			}
		case "success":
			if det.Error != "" {
				t.Errorf("Success detail carries error: %+v", det)
			}
		default:
			t.Errorf("Unexpected status %q", det.Status)
		}
	}
}

func TestDeleteGuard(t *testing.T) {
	ed := openTestDoc(t, para("text"), paraPicture(), para(""))
	before := ed.ParagraphCount()

	// A picture-only paragraph has empty text but must not be deletable
	// without force.
	report := ed.BatchUpdate([]Operation{&DeleteOp{Index: 1}})
	if report.Failed != 1 {
		t.Fatalf("Expected guard failure, got %+v", report.Details)
	}
	if !strings.Contains(report.Details[0].Error, "not empty") {
		t.Errorf("Unexpected error message: %s", report.Details[0].Error)
	}
	if ed.ParagraphCount() != before {
		t.Error("Failed delete must not change paragraph count")
	}

	report = ed.BatchUpdate([]Operation{&DeleteOp{Index: 1, Force: true}})
	if report.Failed != 0 {
		t.Fatalf("Forced delete failed: %+v", report.Details)
	}
	if ed.ParagraphCount() != before-1 {
		t.Errorf("Expected %d paragraphs, got %d", before-1, ed.ParagraphCount())
	}
}

func TestDeleteEmptyParagraphWithoutForce(t *testing.T) {
	ed := openTestDoc(t, para("text"), para(""))

	report := ed.BatchUpdate([]Operation{&DeleteOp{Index: 1}})
	if report.Failed != 0 {
		t.Fatalf("Deleting a truly empty paragraph must not need force: %+v", report.Details)
	}
	if ed.ParagraphCount() != 1 {
		t.Errorf("Expected 1 paragraph, got %d", ed.ParagraphCount())
	}
}

func TestInsertPositions(t *testing.T) {
	ed := openTestDoc(t, para("a"), para("b"))

	report := ed.BatchUpdate([]Operation{
		&InsertOp{Index: 1, Position: PositionBefore, Text: "before-b", Style: "Quote"},
	})
	if report.Failed != 0 {
		t.Fatalf("Insert failed: %+v", report.Details)
	}
	if report.Details[0].NewIndex == nil || *report.Details[0].NewIndex != 1 {
		t.Errorf("Expected new index 1, got %+v", report.Details[0].NewIndex)
	}

	texts := paragraphTexts(ed)
	if strings.Join(texts, "|") != "a|before-b|b" {
		t.Errorf("Unexpected texts: %v", texts)
	}
	if got := ed.ReadContent(IndexSelector(1))[0].Style; got != "Quote" {
		t.Errorf("Expected style Quote, got %q", got)
	}

	report = ed.BatchUpdate([]Operation{
		&InsertOp{Index: 2, Position: PositionAfter, Text: "after-b"},
	})
	if report.Failed != 0 {
		t.Fatalf("Insert failed: %+v", report.Details)
	}
	if *report.Details[0].NewIndex != 3 {
		t.Errorf("Expected new index 3, got %d", *report.Details[0].NewIndex)
	}
}

func TestInsertUnknownStyleIsIgnored(t *testing.T) {
	ed := openTestDoc(t, para("a"))

	report := ed.BatchUpdate([]Operation{
		&InsertOp{Index: 0, Position: PositionAfter, Text: "styled", Style: "NoSuchStyle"},
	})
	if report.Failed != 0 {
		t.Fatalf("Unknown style must not fail the insert: %+v", report.Details)
	}
	if got := ed.ReadContent(IndexSelector(1))[0].Style; got != "" {
		t.Errorf("Expected no style, got %q", got)
	}
}

func TestReplaceText(t *testing.T) {
	ed := openTestDoc(t, para("version 1.2 released"))

	report := ed.BatchUpdate([]Operation{
		&ReplaceTextOp{Index: 0, Pattern: `\d+\.\d+`, Replacement: "2.0", Regex: true},
	})
	if report.Failed != 0 {
		t.Fatalf("Replace failed: %+v", report.Details)
	}
	if report.Details[0].Changed == nil || !*report.Details[0].Changed {
		t.Error("Expected changed=true")
	}
	if got := paragraphTexts(ed)[0]; got != "version 2.0 released" {
		t.Errorf("Unexpected text %q", got)
	}

	// No match reports changed=false and leaves the text alone.
	report = ed.BatchUpdate([]Operation{
		&ReplaceTextOp{Index: 0, Pattern: "absent", Replacement: "x", Regex: false},
	})
	if report.Failed != 0 || *report.Details[0].Changed {
		t.Errorf("Expected unchanged success, got %+v", report.Details)
	}
}

func TestReplaceTextInvalidPattern(t *testing.T) {
	ed := openTestDoc(t, para("text"))

	report := ed.BatchUpdate([]Operation{
		&ReplaceTextOp{Index: 0, Pattern: "(unclosed", Replacement: "x", Regex: true},
	})
	if report.Failed != 1 {
		t.Errorf("Invalid pattern must fail the operation: %+v", report.Details)
	}
}

func TestReplaceTextGlobalCount(t *testing.T) {
	elements := []string{
		para("alpha one"), para("two"), para("alpha three"), para("four"),
		para("five"), para("six"), para("seven alpha"), para("eight"),
		para("nine"), para("ten"),
	}
	ed := openTestDoc(t, elements...)

	report := ed.BatchUpdate([]Operation{
		&ReplaceTextGlobalOp{Pattern: "alpha", Replacement: "beta"},
	})
	if report.Failed != 0 {
		t.Fatalf("Global replace failed: %+v", report.Details)
	}
	if report.Details[0].ReplacedCount == nil || *report.Details[0].ReplacedCount != 3 {
		t.Errorf("Expected replaced_count 3, got %+v", report.Details[0].ReplacedCount)
	}

	texts := paragraphTexts(ed)
	if texts[0] != "beta one" || texts[2] != "beta three" || texts[6] != "seven beta" {
		t.Errorf("Unexpected replacements: %v", texts)
	}
	if texts[1] != "two" || texts[9] != "ten" {
		t.Errorf("Untouched paragraphs changed: %v", texts)
	}
}

func TestSetTextPreservesFirstRunFormatting(t *testing.T) {
	ed := openTestDoc(t,
		`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>bold</w:t></w:r><w:r><w:t>plain</w:t></w:r></w:p>`,
	)

	report := ed.BatchUpdate([]Operation{&SetTextOp{Index: 0, Text: "replaced"}})
	if report.Failed != 0 {
		t.Fatalf("SetText failed: %+v", report.Details)
	}

	c := ed.ReadContent(IndexSelector(0))[0]
	if c.Text != "replaced" {
		t.Errorf("Unexpected text %q", c.Text)
	}
	if len(c.Runs) != 2 || c.Runs[0].Text != "replaced" || c.Runs[1].Text != "" {
		t.Errorf("Unexpected runs: %+v", c.Runs)
	}
	if !c.Runs[0].Bold {
		t.Error("First-run formatting must survive SetText")
	}
}

func TestSetTextKeepsDrawings(t *testing.T) {
	ed := openTestDoc(t, `<w:p><w:r><w:t>caption</w:t></w:r>`+pictureRunXML+`</w:p>`)

	report := ed.BatchUpdate([]Operation{&SetTextOp{Index: 0, Text: "new caption"}})
	if report.Failed != 0 {
		t.Fatalf("SetText failed: %+v", report.Details)
	}
	if ed.ImageCount() != 1 {
		t.Error("SetText must not destroy inline images")
	}
}

func TestUpdateStyle(t *testing.T) {
	ed := openTestDoc(t, para("styled paragraph"))

	size := 14.0
	boldOn := true
	report := ed.BatchUpdate([]Operation{
		&UpdateStyleOp{
			Index:     0,
			Style:     "Quote",
			Font:      &FontSpec{Name: "Arial", Size: &size, Bold: &boldOn},
			Alignment: "justify",
			Indent:    &IndentSpec{FirstLine: float64Ptr(1.0)},
			Spacing:   &SpacingSpec{Line: float64Ptr(1.5)},
		},
	})
	if report.Failed != 0 {
		t.Fatalf("UpdateStyle failed: %+v", report.Details)
	}

	c := ed.ReadContent(IndexSelector(0))[0]
	if c.Style != "Quote" {
		t.Errorf("Expected Quote, got %q", c.Style)
	}
	if c.Format.Alignment != "justify" {
		t.Errorf("Expected justify, got %q", c.Format.Alignment)
	}
	if c.Format.LineSpacing == nil || *c.Format.LineSpacing != 1.5 {
		t.Errorf("Expected line spacing 1.5, got %+v", c.Format.LineSpacing)
	}
	if c.Format.FirstLineIndentCm == nil || *c.Format.FirstLineIndentCm != 1.0 {
		t.Errorf("Expected 1.0cm first-line indent, got %+v", c.Format.FirstLineIndentCm)
	}
	if len(c.Runs) != 1 || !c.Runs[0].Bold || c.Runs[0].FontSize == nil || *c.Runs[0].FontSize != 14 {
		t.Errorf("Unexpected run formatting: %+v", c.Runs)
	}

	// The East-Asian font fallback must follow the latin face.
	props := ed.paragraphs[0].Runs()[0].Properties
	if props.Fonts == nil || props.Fonts.EastAsia != "Arial" || props.Fonts.ASCII != "Arial" {
		t.Errorf("Unexpected fonts: %+v", props.Fonts)
	}
}

func TestCleanXMLRemovesNumbering(t *testing.T) {
	ed := openTestDoc(t,
		`<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr></w:pPr><w:r><w:t>item</w:t></w:r></w:p>`,
	)

	if !ed.ReadContent(IndexSelector(0))[0].HasNumbering {
		t.Fatal("Fixture should carry numbering")
	}

	report := ed.BatchUpdate([]Operation{
		&CleanXMLOp{Index: 0, Remove: []string{"numPr"}, Indent: &IndentSpec{Left: float64Ptr(0)}},
	})
	if report.Failed != 0 {
		t.Fatalf("CleanXML failed: %+v", report.Details)
	}
	if ed.ReadContent(IndexSelector(0))[0].HasNumbering {
		t.Error("Expected numbering to be removed")
	}
}

func TestTableOperations(t *testing.T) {
	ed := openTestDoc(t, simpleTable([]string{"a", "b"}, []string{"c", "d"}))

	report := ed.BatchUpdate([]Operation{
		&UpdateTableCellOp{TableIndex: 0, Row: 0, Col: 1, Text: "B"},
		&UpdateTableRowOp{TableIndex: 0, Row: 1, Texts: []string{"C", "D", "ignored extra"}},
	})
	if report.Failed != 0 {
		t.Fatalf("Table batch failed: %+v", report.Details)
	}

	data, _ := ed.ReadTable(0)
	if data.Cells[0][1] != "B" || data.Cells[1][0] != "C" || data.Cells[1][1] != "D" {
		t.Errorf("Unexpected cells: %+v", data.Cells)
	}

	report = ed.BatchUpdate([]Operation{
		&UpdateTableColOp{TableIndex: 0, Col: 0, Texts: []string{"x", "y"}},
		&ReplaceTableCellOp{TableIndex: 0, Row: 0, Col: 1, Pattern: "B", Replacement: "Z"},
	})
	if report.Failed != 0 {
		t.Fatalf("Table batch failed: %+v", report.Details)
	}
	data, _ = ed.ReadTable(0)
	if data.Cells[0][0] != "x" || data.Cells[1][0] != "y" || data.Cells[0][1] != "Z" {
		t.Errorf("Unexpected cells: %+v", data.Cells)
	}
}

func TestTableOperationRangeErrors(t *testing.T) {
	ed := openTestDoc(t, simpleTable([]string{"a"}))

	report := ed.BatchUpdate([]Operation{
		&UpdateTableCellOp{TableIndex: 9, Row: 0, Col: 0, Text: "x"},
		&UpdateTableCellOp{TableIndex: 0, Row: 5, Col: 0, Text: "x"},
		&UpdateTableCellOp{TableIndex: 0, Row: 0, Col: 5, Text: "x"},
	})
	if report.Failed != 3 {
		t.Fatalf("Expected 3 range failures, got %+v", report.Details)
	}
	for _, det := range report.Details {
		if !strings.Contains(det.Error, "out of range") {
			t.Errorf("Unexpected error: %s", det.Error)
		}
	}
}

func TestUpdateFieldsIdempotent(t *testing.T) {
	ed := openTestDoc(t, para("doc"))

	for i := 0; i < 2; i++ {
		report := ed.BatchUpdate([]Operation{&UpdateFieldsOp{}})
		if report.Failed != 0 {
			t.Fatalf("update_fields_on_open failed: %+v", report.Details)
		}
	}

	settings := string(ed.parts[settingsPartName])
	if got := strings.Count(settings, "<w:updateFields"); got != 1 {
		t.Errorf("Expected exactly one updateFields element, got %d: %s", got, settings)
	}
	if !strings.Contains(settings, `w:val="true"`) {
		t.Errorf("Expected enabled flag: %s", settings)
	}

	// Creating the part must also register its content type and relationship.
	if !strings.Contains(string(ed.parts[contentTypesName]), "/word/settings.xml") {
		t.Error("settings.xml missing from content types")
	}
	found := false
	for _, rel := range ed.rels.Relationship {
		if rel.Type == settingsRelationshipType {
			found = true
		}
	}
	if !found {
		t.Error("settings relationship missing")
	}
}

func TestParseOperations(t *testing.T) {
	ops, err := ParseOperations([]byte(`[
		{"op": "delete", "index": 5, "force": true},
		{"op": "insert", "index": 2, "text": "X"},
		{"op": "replace_text", "index": 1, "pattern": "a+", "replacement": "b"},
		{"op": "replace_text_global", "pattern": "x", "replacement": "y"},
		{"op": "update_fields_on_open"}
	]`))
	if err != nil {
		t.Fatalf("ParseOperations failed: %v", err)
	}
	if len(ops) != 5 {
		t.Fatalf("Expected 5 operations, got %d", len(ops))
	}

	if del, ok := ops[0].(*DeleteOp); !ok || del.Index != 5 || !del.Force {
		t.Errorf("Unexpected delete: %+v", ops[0])
	}
	if ins, ok := ops[1].(*InsertOp); !ok || ins.Position != PositionAfter {
		t.Errorf("Expected default position after, got %+v", ops[1])
	}
	if rep, ok := ops[2].(*ReplaceTextOp); !ok || !rep.Regex {
		t.Errorf("replace_text must default to regex mode, got %+v", ops[2])
	}
	if rep, ok := ops[3].(*ReplaceTextGlobalOp); !ok || rep.Regex {
		t.Errorf("replace_text_global must default to literal mode, got %+v", ops[3])
	}
}

func TestParseOperationsMissingIndexFailsInBatch(t *testing.T) {
	ops, err := ParseOperations([]byte(`[{"op": "delete"}]`))
	if err != nil {
		t.Fatalf("ParseOperations failed: %v", err)
	}

	ed := openTestDoc(t, para("only"))
	report := ed.BatchUpdate(ops)
	if report.Failed != 1 {
		t.Errorf("Missing index must fail at apply time: %+v", report.Details)
	}
}

func TestParseOperationsUnknownKind(t *testing.T) {
	ops, err := ParseOperations([]byte(`[{"op": "explode"}, {"op": "set_text", "index": 0, "text": "ok"}]`))
	if err != nil {
		t.Fatalf("Unknown kinds must not fail parsing: %v", err)
	}

	ed := openTestDoc(t, para("x"))
	report := ed.BatchUpdate(ops)
	if report.Success != 1 || report.Failed != 1 {
		t.Fatalf("Expected 1/1, got %d/%d", report.Success, report.Failed)
	}
	for _, det := range report.Details {
		if det.Op == "explode" {
			if !strings.Contains(det.Error, "unknown operation") {
				t.Errorf("Unexpected error: %s", det.Error)
			}
		}
	}
	if got := paragraphTexts(ed)[0]; got != "ok" {
		t.Errorf("Valid operation must still apply, got %q", got)
	}
}

func TestParseOperationsMalformed(t *testing.T) {
	if _, err := ParseOperations([]byte(`{"op": "delete"}`)); err == nil {
		t.Error("Expected error for non-array input")
	}
	if _, err := ParseOperations([]byte(`[{"op": "delete", "index": "five"}]`)); err == nil {
		t.Error("Expected error for mistyped field")
	}
}

func float64Ptr(v float64) *float64 {
	return &v
}
