package deck

import (
	"regexp"
	"strings"
)

// PVTKeywords lists the PVT table keywords extracted from a PROPS section.
var PVTKeywords = []string{"PVTO", "PVTG", "PVTW"}

// pvtToken matches an uppercase token at the start of a line within a
// PROPS block. PVT sub-keywords never contain underscores, so the
// character class is narrower than the section-level matcher.
var pvtToken = regexp.MustCompile(`^\s*([A-Z0-9]+)\b`)

// ExtractPVTBlocks splits PROPS-section text into PVT table blocks.
//
// This is the same flat segmentation as Extract, applied one level down:
// each PVTO/PVTG/PVTW keyword opens a block that runs to the next PVT
// keyword or end of text. Unlike section blocks, a PVT block's text does
// NOT include the keyword line itself, only the table rows beneath it.
// No numeric parsing or interpolation is performed.
func ExtractPVTBlocks(propsText string) map[string]string {
	vocab := make(map[string]bool, len(PVTKeywords))
	for _, kw := range PVTKeywords {
		vocab[kw] = true
	}

	blocks := make(map[string]string)
	currentKW := ""
	var buffer []string

	for _, line := range strings.Split(propsText, "\n") {
		m := pvtToken.FindStringSubmatch(line)
		if m != nil && vocab[m[1]] {
			if currentKW != "" {
				blocks[currentKW] = strings.Join(buffer, "\n")
			}
			currentKW = m[1]
			buffer = nil
			continue
		}
		if currentKW != "" {
			buffer = append(buffer, line)
		}
	}

	if currentKW != "" {
		blocks[currentKW] = strings.Join(buffer, "\n")
	}

	return blocks
}
