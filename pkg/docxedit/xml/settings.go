package xml

import (
	"regexp"
	"strings"
)

var updateFieldsPattern = regexp.MustCompile(`<w:updateFields\b[^>]*?(/>|></w:updateFields>)`)

const settingsSkeleton = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:settings xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:updateFields w:val="true"/></w:settings>`

// EnsureUpdateFields returns settings.xml bytes with <w:updateFields
// w:val="true"/> present, so Word recalculates TOC and other fields on the
// next open. Passing nil creates a minimal settings part. The operation is
// idempotent: an existing updateFields element is rewritten in place.
func EnsureUpdateFields(settings []byte) []byte {
	if len(settings) == 0 {
		return []byte(settingsSkeleton)
	}

	s := string(settings)
	if updateFieldsPattern.MatchString(s) {
		return []byte(updateFieldsPattern.ReplaceAllString(s, `<w:updateFields w:val="true"/>`))
	}

	if idx := strings.Index(s, "</w:settings>"); idx >= 0 {
		return []byte(s[:idx] + `<w:updateFields w:val="true"/>` + s[idx:])
	}

	// Self-closing or otherwise unexpected settings root; rebuild minimal.
	return []byte(settingsSkeleton)
}
