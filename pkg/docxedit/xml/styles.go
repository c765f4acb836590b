package xml

import (
	"encoding/xml"
	"fmt"
	"io"
)

// StyleMap holds the styleId <-> display name mapping from word/styles.xml.
// Only paragraph styles matter for the editing operations.
type StyleMap struct {
	nameByID map[string]string
	idByName map[string]string
}

// ParseStyles parses a word/styles.xml stream into a StyleMap. Only w:style
// elements of type paragraph are indexed.
func ParseStyles(r io.Reader) (*StyleMap, error) {
	type styleName struct {
		Val string `xml:"val,attr"`
	}
	type style struct {
		Type    string    `xml:"type,attr"`
		StyleID string    `xml:"styleId,attr"`
		Name    styleName `xml:"name"`
	}
	type stylesRoot struct {
		Styles []style `xml:"style"`
	}

	var root stylesRoot
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("failed to parse styles: %w", err)
	}

	sm := &StyleMap{
		nameByID: make(map[string]string),
		idByName: make(map[string]string),
	}
	for _, s := range root.Styles {
		if s.Type != "paragraph" || s.StyleID == "" {
			continue
		}
		sm.nameByID[s.StyleID] = s.Name.Val
		if s.Name.Val != "" {
			if _, exists := sm.idByName[s.Name.Val]; !exists {
				sm.idByName[s.Name.Val] = s.StyleID
			}
		}
	}
	return sm, nil
}

// NameFor returns the display name for a style identifier, or the identifier
// itself when the style is not defined in styles.xml.
func (m *StyleMap) NameFor(styleID string) string {
	if m == nil {
		return styleID
	}
	if name, ok := m.nameByID[styleID]; ok && name != "" {
		return name
	}
	return styleID
}

// IDFor returns the style identifier for a display name. When no style with
// that name exists, the name is returned unchanged so callers can accept
// either form.
func (m *StyleMap) IDFor(name string) string {
	if m == nil {
		return name
	}
	if id, ok := m.idByName[name]; ok {
		return id
	}
	if _, ok := m.nameByID[name]; ok {
		return name
	}
	return name
}

// Has reports whether the identifier names a known paragraph style.
func (m *StyleMap) Has(styleID string) bool {
	if m == nil {
		return false
	}
	_, ok := m.nameByID[styleID]
	return ok
}
