// Package export assembles independently rendered HTML documents into
// one printable, paginated document.
package export

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNothingToExport is returned when no input document has content.
var ErrNothingToExport = errors.New("nothing to export")

const pageBreak = `<div style="page-break-after: always;"></div>`

var (
	headRe = regexp.MustCompile(`(?is)<head[^>]*>(.*?)</head>`)
	bodyRe = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)
	htmlRe = regexp.MustCompile(`(?is)</?(?:html|!doctype)[^>]*>`)
)

func headFragment(doc string) string {
	if m := headRe.FindStringSubmatch(doc); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func bodyFragment(doc string) string {
	if m := bodyRe.FindStringSubmatch(doc); m != nil {
		return strings.TrimSpace(m[1])
	}
	// A bare fragment without a body wrapper is used as-is.
	return strings.TrimSpace(htmlRe.ReplaceAllString(doc, ""))
}

// Combine merges the given HTML documents into one paginated document.
// The combined head is the union of head fragments with the first
// occurrence of a duplicate winning; bodies are concatenated in input
// order with a page break after every document except the last. Pure:
// identical input always yields identical output.
func Combine(docs ...string) (string, error) {
	var heads []string
	seen := make(map[string]bool)
	var bodies []string

	for _, doc := range docs {
		if strings.TrimSpace(doc) == "" {
			continue
		}
		if head := headFragment(doc); head != "" && !seen[head] {
			seen[head] = true
			heads = append(heads, head)
		}
		if body := bodyFragment(doc); body != "" {
			bodies = append(bodies, body)
		}
	}
	if len(bodies) == 0 {
		return "", ErrNothingToExport
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	for _, head := range heads {
		b.WriteString(head)
		b.WriteString("\n")
	}
	b.WriteString("</head>\n<body>\n")
	for i, body := range bodies {
		b.WriteString(body)
		b.WriteString("\n")
		if i < len(bodies)-1 {
			b.WriteString(pageBreak)
			b.WriteString("\n")
		}
	}
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
