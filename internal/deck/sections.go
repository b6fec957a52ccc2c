package deck

// DefaultKeywords is the standard section vocabulary for ECLIPSE-style decks.
// It covers the eight top-level deck sections, the well definition and
// control keywords, and the END marker.
//
// Design decision: The vocabulary is a plain slice rather than a map so the
// default ordering is stable and visible in one place. Callers that need a
// custom vocabulary pass their own slice to Extract; any token outside the
// vocabulary is ordinary section content, never a section boundary.
var DefaultKeywords = []string{
	"RUNSPEC", "GRID", "EDIT", "PROPS", "REGIONS",
	"SOLUTION", "SUMMARY", "SCHEDULE", "WELSPECS",
	"WCONPROD", "WCONINJE", "WCONHIST", "COMPDAT", "END",
}

// Sections is an ordered mapping from section keyword to the literal text
// block that follows it. The block always starts with the keyword's own
// line and runs up to (but not including) the next recognized keyword line.
//
// Duplicate keywords follow last-write-wins semantics: the later block
// replaces the earlier one while the keyword keeps its original position in
// the iteration order. This mirrors how the QC rules treat a deck and is an
// explicit contract, not an accident of implementation.
type Sections struct {
	// order holds keywords in the order they first opened a section.
	order []string

	// blocks maps a keyword to its (most recent) text block.
	blocks map[string]string
}

// NewSections returns an empty section mapping.
func NewSections() *Sections {
	return &Sections{
		order:  make([]string, 0),
		blocks: make(map[string]string),
	}
}

// Set stores the block text for a keyword. A repeated keyword overwrites
// the previous block but keeps its first position in the ordering.
func (s *Sections) Set(keyword, block string) {
	if _, ok := s.blocks[keyword]; !ok {
		s.order = append(s.order, keyword)
	}
	s.blocks[keyword] = block
}

// Get returns the block text for a keyword.
// A missing section is an empty string, never an error: every QC rule
// treats absence as emptiness.
func (s *Sections) Get(keyword string) string {
	if s == nil {
		return ""
	}
	return s.blocks[keyword]
}

// Has reports whether the keyword opened a section in the deck.
func (s *Sections) Has(keyword string) bool {
	if s == nil {
		return false
	}
	_, ok := s.blocks[keyword]
	return ok
}

// Keywords returns the section keywords in first-open order.
// The returned slice is a copy; mutating it does not affect the mapping.
func (s *Sections) Keywords() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of distinct sections.
func (s *Sections) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
