package docxedit

import (
	docxml "github.com/docxtools/docxedit/pkg/docxedit/xml"
)

// checkTableAddress range-checks a (table, row, col) address; row or col may
// be -1 to skip that dimension.
func (ed *Editor) checkTableAddress(tableIndex, row, col int) (*docxml.Table, error) {
	if tableIndex < 0 || tableIndex >= len(ed.tables) {
		return nil, NewRangeError("table", tableIndex, len(ed.tables))
	}
	t := ed.tables[tableIndex]
	if row >= 0 || col >= 0 {
		if row < 0 || row >= t.RowCount() {
			return nil, NewRangeError("row", row, t.RowCount())
		}
	}
	if col >= 0 {
		cells := t.Rows()[row].Cells()
		if col >= len(cells) {
			return nil, NewRangeError("col", col, len(cells))
		}
	}
	return t, nil
}

// UpdateTableCellOp overwrites one cell's content with a single paragraph of
// the given text.
type UpdateTableCellOp struct {
	TableIndex int
	Row        int
	Col        int
	Text       string
}

func (o *UpdateTableCellOp) Kind() string { return "update_table_cell" }
func (o *UpdateTableCellOp) anchor() int  { return indexlessAnchor }

func (o *UpdateTableCellOp) apply(ed *Editor, det *OpDetail) error {
	det.TableIndex = &o.TableIndex
	det.Row = &o.Row
	det.Col = &o.Col

	t, err := ed.checkTableAddress(o.TableIndex, o.Row, o.Col)
	if err != nil {
		return err
	}
	t.Cell(o.Row, o.Col).SetText(o.Text)
	return nil
}

// ReplaceTableCellOp substitutes within one cell's text and reports whether a
// change occurred. Pattern is a literal substring unless Regex is true.
type ReplaceTableCellOp struct {
	TableIndex  int
	Row         int
	Col         int
	Pattern     string
	Replacement string
	Regex       bool
}

func (o *ReplaceTableCellOp) Kind() string { return "replace_table_cell" }
func (o *ReplaceTableCellOp) anchor() int  { return indexlessAnchor }

func (o *ReplaceTableCellOp) apply(ed *Editor, det *OpDetail) error {
	det.TableIndex = &o.TableIndex
	det.Row = &o.Row
	det.Col = &o.Col

	t, err := ed.checkTableAddress(o.TableIndex, o.Row, o.Col)
	if err != nil {
		return err
	}

	cell := t.Cell(o.Row, o.Col)
	newText, changed, err := substitute(cell.GetText(), o.Pattern, o.Replacement, o.Regex)
	if err != nil {
		return err
	}
	if changed {
		cell.SetText(newText)
	}
	det.Changed = &changed
	return nil
}

// UpdateTableRowOp writes each text to the corresponding column of one row.
// Extra texts beyond the column count are ignored.
type UpdateTableRowOp struct {
	TableIndex int
	Row        int
	Texts      []string
}

func (o *UpdateTableRowOp) Kind() string { return "update_table_row" }
func (o *UpdateTableRowOp) anchor() int  { return indexlessAnchor }

func (o *UpdateTableRowOp) apply(ed *Editor, det *OpDetail) error {
	det.TableIndex = &o.TableIndex
	det.Row = &o.Row

	t, err := ed.checkTableAddress(o.TableIndex, o.Row, -1)
	if err != nil {
		return err
	}

	cells := t.Rows()[o.Row].Cells()
	for col, text := range o.Texts {
		if col >= len(cells) {
			break
		}
		cells[col].SetText(text)
	}
	return nil
}

// UpdateTableColOp writes each text to the corresponding row of one column.
// Extra texts beyond the row count are ignored.
type UpdateTableColOp struct {
	TableIndex int
	Col        int
	Texts      []string
}

func (o *UpdateTableColOp) Kind() string { return "update_table_col" }
func (o *UpdateTableColOp) anchor() int  { return indexlessAnchor }

func (o *UpdateTableColOp) apply(ed *Editor, det *OpDetail) error {
	det.TableIndex = &o.TableIndex
	det.Col = &o.Col

	if o.TableIndex < 0 || o.TableIndex >= len(ed.tables) {
		return NewRangeError("table", o.TableIndex, len(ed.tables))
	}
	t := ed.tables[o.TableIndex]
	if o.Col < 0 || o.Col >= t.ColumnCount() {
		return NewRangeError("col", o.Col, t.ColumnCount())
	}

	rows := t.Rows()
	for row, text := range o.Texts {
		if row >= len(rows) {
			break
		}
		if cells := rows[row].Cells(); o.Col < len(cells) {
			cells[o.Col].SetText(text)
		}
	}
	return nil
}
