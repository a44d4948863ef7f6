// Package slide holds the record types produced by a slide extractor and
// consumed read-only by the query engine. Records are immutable by
// convention: they are built once per extraction and shared between
// concurrent queries, so nothing downstream may mutate them.
package slide

// TextElement is one text-bearing shape on a slide.
type TextElement struct {
	Text      string `json:"text"`
	Formatted string `json:"formatted,omitempty"`
}

// Table is a table on a slide. Extractors emit either the full row grid
// or, for very large tables, just the row/column counts. RowCount and
// ColumnCount are authoritative only when Rows is empty.
type Table struct {
	Rows        [][]string `json:"rows,omitempty"`
	RowCount    int        `json:"row_count,omitempty"`
	ColumnCount int        `json:"column_count,omitempty"`
}

// Record is the structured content of one slide.
type Record struct {
	SlideNumber  int            `json:"slide_number"`
	Title        string         `json:"title,omitempty"`
	Subtitle     string         `json:"subtitle,omitempty"`
	LayoutName   string         `json:"layout_name,omitempty"`
	LayoutType   string         `json:"layout_type,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	SectionName  string         `json:"section_name,omitempty"`
	Placeholders []string       `json:"placeholders,omitempty"`
	TextElements []TextElement  `json:"text_elements,omitempty"`
	Tables       []Table        `json:"tables,omitempty"`
	ObjectCounts map[string]int `json:"object_counts,omitempty"`
}

// TotalObjects sums every object-kind count on the slide.
func (r Record) TotalObjects() int {
	total := 0
	for _, n := range r.ObjectCounts {
		total += n
	}
	return total
}

// Section is a named, inclusive slide-number range within a presentation.
type Section struct {
	Name       string `json:"name"`
	ID         string `json:"id,omitempty"`
	FirstSlide int    `json:"first_slide"`
	LastSlide  int    `json:"last_slide"`
}

// Contains reports whether the slide number falls inside the section.
func (s Section) Contains(slideNumber int) bool {
	return slideNumber >= s.FirstSlide && slideNumber <= s.LastSlide
}
