package docxedit

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Operation is one requested mutation. Each kind carries its own addressing
// fields; all kinds are applied through BatchUpdate.
type Operation interface {
	// Kind returns the wire name of the operation.
	Kind() string
	// anchor returns the paragraph index the operation targets, or
	// indexlessAnchor when the operation has no paragraph-index field.
	anchor() int
	// apply executes the operation, recording addressing and result fields
	// on the detail record.
	apply(ed *Editor, det *OpDetail) error
}

// indexlessAnchor sorts operations without a paragraph index ahead of every
// paragraph-indexed one in the descending execution order.
const indexlessAnchor = math.MaxInt

// OpDetail is the per-operation outcome record of a batch.
type OpDetail struct {
	Op            string `json:"op"`
	Index         *int   `json:"index,omitempty"`
	TableIndex    *int   `json:"table_index,omitempty"`
	Row           *int   `json:"row,omitempty"`
	Col           *int   `json:"col,omitempty"`
	ImageIndex    *int   `json:"image_index,omitempty"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	NewIndex      *int   `json:"new_index,omitempty"`
	Changed       *bool  `json:"changed,omitempty"`
	ReplacedCount *int   `json:"replaced_count,omitempty"`
}

// BatchReport aggregates the outcome of one BatchUpdate call. Details are in
// execution order, which is the post-sort order, not submission order.
type BatchReport struct {
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Details []OpDetail `json:"details"`
}

// BatchUpdate applies an ordered list of operations and reports per-operation
// outcomes. Operations are executed in descending order of their paragraph
// index: inserts and deletes shift every higher paragraph index, so working
// from the bottom of the document upward keeps each operation's target index
// valid as specified against the pre-batch state. Operations without a
// paragraph index keep their submission order relative to each other.
//
// Each operation runs inside its own failure boundary: an error or panic is
// recorded as a failed detail and the batch continues. There is no rollback.
func (ed *Editor) BatchUpdate(ops []Operation) *BatchReport {
	sorted := make([]Operation, len(ops))
	copy(sorted, ops)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].anchor() > sorted[j].anchor()
	})

	report := &BatchReport{Details: make([]OpDetail, 0, len(sorted))}
	for _, op := range sorted {
		det := OpDetail{Op: op.Kind()}
		if err := ed.applyOne(op, &det); err != nil {
			det.Status = "failed"
			det.Error = err.Error()
			report.Failed++
			ed.logger.Warn("operation %s failed: %v", op.Kind(), err)
		} else {
			det.Status = "success"
			report.Success++
		}
		report.Details = append(report.Details, det)
	}

	ed.logger.Debug("batch finished: %d succeeded, %d failed", report.Success, report.Failed)
	return report
}

func (ed *Editor) applyOne(op Operation, det *OpDetail) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = RecoverError(r)
		}
	}()
	return op.apply(ed, det)
}

// ParseOperations decodes the JSON wire form of a batch: an array of objects,
// each with an "op" field naming the kind. An unrecognized kind decodes to an
// operation that fails inside the batch rather than failing the whole parse.
func ParseOperations(data []byte) ([]Operation, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse operations: %w", err)
	}

	ops := make([]Operation, 0, len(raws))
	for i, raw := range raws {
		var head struct {
			Op string `json:"op"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		op, err := parseOperation(head.Op, raw)
		if err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, head.Op, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func parseOperation(kind string, raw json.RawMessage) (Operation, error) {
	switch kind {
	case "delete":
		var w struct {
			Index *int `json:"index"`
			Force bool `json:"force"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &DeleteOp{Index: wireIndex(w.Index), Force: w.Force}, nil

	case "insert":
		var w struct {
			Index    *int   `json:"index"`
			Position string `json:"position"`
			Text     string `json:"text"`
			Style    string `json:"style"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		pos := w.Position
		if pos == "" {
			pos = PositionAfter
		}
		return &InsertOp{Index: wireIndex(w.Index), Position: pos, Text: w.Text, Style: w.Style}, nil

	case "update_style":
		var w struct {
			Index     *int         `json:"index"`
			Style     string       `json:"style"`
			Font      *FontSpec    `json:"font"`
			Alignment string       `json:"alignment"`
			Indent    *IndentSpec  `json:"indent"`
			Spacing   *SpacingSpec `json:"spacing"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &UpdateStyleOp{
			Index:     wireIndex(w.Index),
			Style:     w.Style,
			Font:      w.Font,
			Alignment: w.Alignment,
			Indent:    w.Indent,
			Spacing:   w.Spacing,
		}, nil

	case "replace_text":
		var w struct {
			Index       *int   `json:"index"`
			Pattern     string `json:"pattern"`
			Replacement string `json:"replacement"`
			Regex       *bool  `json:"regex"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		// regex defaults to true for the single-paragraph form
		regex := true
		if w.Regex != nil {
			regex = *w.Regex
		}
		return &ReplaceTextOp{Index: wireIndex(w.Index), Pattern: w.Pattern, Replacement: w.Replacement, Regex: regex}, nil

	case "replace_text_global":
		var w struct {
			Pattern     string `json:"pattern"`
			Replacement string `json:"replacement"`
			Regex       bool   `json:"regex"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &ReplaceTextGlobalOp{Pattern: w.Pattern, Replacement: w.Replacement, Regex: w.Regex}, nil

	case "clean_xml":
		var w struct {
			Index  *int        `json:"index"`
			Remove []string    `json:"remove"`
			Style  string      `json:"style"`
			Indent *IndentSpec `json:"indent"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &CleanXMLOp{Index: wireIndex(w.Index), Remove: w.Remove, Style: w.Style, Indent: w.Indent}, nil

	case "set_text":
		var w struct {
			Index *int   `json:"index"`
			Text  string `json:"text"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &SetTextOp{Index: wireIndex(w.Index), Text: w.Text}, nil

	case "update_table_cell":
		var w struct {
			TableIndex *int   `json:"table_index"`
			Row        *int   `json:"row"`
			Col        *int   `json:"col"`
			Text       string `json:"text"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &UpdateTableCellOp{
			TableIndex: wireIndex(w.TableIndex),
			Row:        wireIndex(w.Row),
			Col:        wireIndex(w.Col),
			Text:       w.Text,
		}, nil

	case "replace_table_cell":
		var w struct {
			TableIndex  *int   `json:"table_index"`
			Row         *int   `json:"row"`
			Col         *int   `json:"col"`
			Pattern     string `json:"pattern"`
			Replacement string `json:"replacement"`
			Regex       bool   `json:"regex"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &ReplaceTableCellOp{
			TableIndex:  wireIndex(w.TableIndex),
			Row:         wireIndex(w.Row),
			Col:         wireIndex(w.Col),
			Pattern:     w.Pattern,
			Replacement: w.Replacement,
			Regex:       w.Regex,
		}, nil

	case "update_table_row":
		var w struct {
			TableIndex *int     `json:"table_index"`
			Row        *int     `json:"row"`
			Texts      []string `json:"texts"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &UpdateTableRowOp{TableIndex: wireIndex(w.TableIndex), Row: wireIndex(w.Row), Texts: w.Texts}, nil

	case "update_table_col":
		var w struct {
			TableIndex *int     `json:"table_index"`
			Col        *int     `json:"col"`
			Texts      []string `json:"texts"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &UpdateTableColOp{TableIndex: wireIndex(w.TableIndex), Col: wireIndex(w.Col), Texts: w.Texts}, nil

	case "delete_image":
		var w struct {
			ImageIndex *int `json:"image_index"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &DeleteImageOp{ImageIndex: wireIndex(w.ImageIndex)}, nil

	case "resize_image":
		var w struct {
			ImageIndex *int     `json:"image_index"`
			Width      *float64 `json:"width"`
			Height     *float64 `json:"height"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &ResizeImageOp{ImageIndex: wireIndex(w.ImageIndex), WidthCm: w.Width, HeightCm: w.Height}, nil

	case "insert_image":
		var w struct {
			Index  *int     `json:"index"`
			Path   string   `json:"path"`
			Width  *float64 `json:"width"`
			Height *float64 `json:"height"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return &InsertImageOp{Index: wireIndex(w.Index), Path: w.Path, WidthCm: w.Width, HeightCm: w.Height}, nil

	case "update_fields_on_open":
		return &UpdateFieldsOp{}, nil

	default:
		return &unknownOp{kind: kind}, nil
	}
}

// wireIndex converts an optional wire index to its int form; a missing index
// becomes -1 and fails the range check at apply time.
func wireIndex(i *int) int {
	if i == nil {
		return -1
	}
	return *i
}

// unknownOp records an unrecognized kind and fails when applied, so a typo in
// one operation does not abort the rest of the batch.
type unknownOp struct {
	kind string
}

func (o *unknownOp) Kind() string { return o.kind }
func (o *unknownOp) anchor() int  { return indexlessAnchor }
func (o *unknownOp) apply(ed *Editor, det *OpDetail) error {
	return NewUnknownOperationError(o.kind)
}
