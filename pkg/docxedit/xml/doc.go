// Package xml provides the typed OOXML object model for DOCX documents.
//
// DOCX files are ZIP archives; the document body lives in word/document.xml.
// This package parses that part into typed structures (Document, Body,
// Paragraph, Run, Table, Drawing), keeps every element it does not model as
// raw XML so a round trip never loses content, and serializes the tree back
// with the w: prefixed names Word expects.
//
// # Structure Organization
//
//   - types.go: core interfaces (BodyElement, ParagraphChild) and shared types
//   - rawxml.go: raw-XML capture and the marker mechanism used to reinject
//     unparsed fragments during marshaling
//   - document.go: Document and Body, ParseDocument and MarshalDocument
//   - paragraph.go: Paragraph and its properties (style, alignment, indent,
//     spacing)
//   - run.go: Run, Text, Break and run properties
//   - drawing.go: inline drawings (pictures, charts, smart art)
//   - table.go: Table, TableRow, TableCell
//   - styles.go: styleId/name resolution from word/styles.xml
//   - settings.go: word/settings.xml patching
//
// # Key Concepts
//
// BodyElement: a top-level element of the document body (paragraph or table).
//
// ParagraphChild: an element inside a paragraph. Runs are typed; everything
// else (hyperlinks, bookmarks, proofing marks) is preserved raw.
//
// Raw preservation: unknown elements are captured verbatim at parse time and
// written back through marker substitution after marshaling, so documents
// containing features this package does not model survive editing intact.
package xml
