package docxedit

import (
	docxml "github.com/docxtools/docxedit/pkg/docxedit/xml"
)

const (
	settingsRelationshipType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/settings"
	settingsContentType      = "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"
)

// UpdateFieldsOp sets the document flag that makes Word recalculate every
// computed field (TOC, page numbers, cross-references) on next open. The
// operation is idempotent and creates the settings part when absent.
type UpdateFieldsOp struct{}

func (o *UpdateFieldsOp) Kind() string { return "update_fields_on_open" }
func (o *UpdateFieldsOp) anchor() int  { return indexlessAnchor }

func (o *UpdateFieldsOp) apply(ed *Editor, det *OpDetail) error {
	creating := !ed.hasPart(settingsPartName)
	ed.setPart(settingsPartName, docxml.EnsureUpdateFields(ed.parts[settingsPartName]))

	if creating {
		ed.ensureOverrideContentType(settingsPartName, settingsContentType)
		ed.ensureSettingsRelationship()
	}
	return nil
}

func (ed *Editor) ensureSettingsRelationship() {
	for _, rel := range ed.rels.Relationship {
		if rel.Type == settingsRelationshipType {
			return
		}
	}
	ed.rels.Relationship = append(ed.rels.Relationship, Relationship{
		ID:     getNextRelationshipID(ed.rels),
		Type:   settingsRelationshipType,
		Target: "settings.xml",
	})
}
