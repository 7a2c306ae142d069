// Package export renders clinical notes and reports into downloadable
// documents.
package export

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"
)

var headingLine = regexp.MustCompile(`^[A-ZÀ-Ü\s]+:$`)

// RenderNoteHTML converts note text into a printable standalone HTML
// document. Section headings and the signature line are bolded, the
// box-drawing separator lines become empty paragraphs, and everything else
// keeps its original line breaks.
func RenderNoteHTML(title, content string) []byte {
	var buf bytes.Buffer

	buf.WriteString("<!DOCTYPE html>\n<html lang=\"pt-BR\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(title))
	buf.WriteString("<style>\nbody { font-family: \"Courier New\", monospace; font-size: 12px; margin: 2cm; }\np { margin: 0 0 2px 0; white-space: pre-wrap; }\n</style>\n</head>\n<body>\n")

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.Contains(trimmed, "────") || strings.Contains(trimmed, "───"):
			buf.WriteString("<p>&nbsp;</p>\n")
		case trimmed == "":
			buf.WriteString("<p>&nbsp;</p>\n")
		case isBoldLine(trimmed):
			fmt.Fprintf(&buf, "<p><strong>%s</strong></p>\n", html.EscapeString(line))
		default:
			fmt.Fprintf(&buf, "<p>%s</p>\n", html.EscapeString(line))
		}
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}

// isBoldLine reports whether a note line is a section heading, the note
// header, or the signature line.
func isBoldLine(line string) bool {
	if headingLine.MatchString(line) {
		return true
	}
	return strings.HasPrefix(line, "INTERCONSULTA") || strings.HasPrefix(line, "Avaliado por")
}
