package deck

import (
	"regexp"
	"strings"
)

// keywordToken matches an uppercase keyword token at the start of a line,
// allowing leading whitespace. Only tokens that are also members of the
// vocabulary open a section; everything else is section content.
var keywordToken = regexp.MustCompile(`^\s*([A-Z0-9_]+)\b`)

// Extract splits deck text into keyword sections.
//
// The scan keeps a single "current open keyword" and a line buffer. A line
// whose first token is a vocabulary keyword flushes the buffer into the
// previous section and opens a new one seeded with that line. Lines before
// the first recognized keyword are dropped. At end of input the still-open
// buffer is flushed.
//
// Extract is pure and deterministic: the same text and vocabulary always
// produce an identical mapping, and no input (including empty text or an
// empty vocabulary) causes an error. Text with no recognized keyword yields
// an empty mapping.
func Extract(text string, keywords []string) *Sections {
	if keywords == nil {
		keywords = DefaultKeywords
	}

	vocab := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		vocab[kw] = true
	}

	sections := NewSections()
	currentKW := ""
	var buffer []string

	for _, line := range strings.Split(text, "\n") {
		m := keywordToken.FindStringSubmatch(line)
		if m != nil && vocab[m[1]] {
			if currentKW != "" {
				sections.Set(currentKW, strings.Join(buffer, "\n"))
			}
			currentKW = m[1]
			buffer = []string{line}
			continue
		}
		if currentKW != "" {
			buffer = append(buffer, line)
		}
	}

	if currentKW != "" {
		sections.Set(currentKW, strings.Join(buffer, "\n"))
	}

	return sections
}

// Summary returns the number of lines in each extracted section.
// Useful for quick deck inspection in reports and logs.
//
// A deck that ends with a newline leaves one empty trailing line in the
// final section's block; that phantom line is not counted.
func Summary(sections *Sections) map[string]int {
	counts := make(map[string]int, sections.Len())
	for _, kw := range sections.Keywords() {
		lines := strings.Split(sections.Get(kw), "\n")
		if n := len(lines); n > 0 && lines[n-1] == "" {
			lines = lines[:n-1]
		}
		counts[kw] = len(lines)
	}
	return counts
}
