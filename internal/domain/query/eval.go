package query

import (
	"strings"

	"github.com/kailas-cloud/slidedex/internal/domain/slide"
)

// Matches evaluates the title conditions against a slide title. A missing
// title is treated as the empty string. All string tests are
// case-insensitive; Regex is a search, not a full match. OneOf passes if
// any entry matches as a regex search or — when the entry does not
// compile — as a literal substring.
func (f *TitleFilter) Matches(title string) bool {
	lower := strings.ToLower(title)

	if f.Contains != "" && !strings.Contains(lower, strings.ToLower(f.Contains)) {
		return false
	}
	if f.StartsWith != "" && !strings.HasPrefix(lower, strings.ToLower(f.StartsWith)) {
		return false
	}
	if f.EndsWith != "" && !strings.HasSuffix(lower, strings.ToLower(f.EndsWith)) {
		return false
	}
	if f.Regex != "" {
		re, err := compileSearch(f.Regex)
		if err != nil || !re.MatchString(title) {
			return false
		}
	}
	if len(f.OneOf) > 0 && !matchOneOf(title, f.OneOf) {
		return false
	}
	return true
}

// matchOneOf is the explicit two-step OneOf evaluation: attempt to
// compile each entry as a regex; on failure evaluate it as a literal
// case-insensitive substring instead.
func matchOneOf(title string, patterns []string) bool {
	lower := strings.ToLower(title)
	for _, pattern := range patterns {
		re, err := compileSearch(pattern)
		if err == nil {
			if re.MatchString(title) {
				return true
			}
			continue
		}
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// Matches evaluates the content conditions against a slide record.
// Presence booleans compare exactly, so HasTables=false selects only
// slides without tables.
func (f *ContentFilter) Matches(rec slide.Record) bool {
	if f.HasTables != nil && *f.HasTables != (len(rec.Tables) > 0) {
		return false
	}
	if f.HasCharts != nil && *f.HasCharts != (rec.ObjectCounts["charts"] > 0) {
		return false
	}
	if f.HasImages != nil && *f.HasImages != (rec.ObjectCounts["images"] > 0) {
		return false
	}

	if f.ObjectCountMin != nil || f.ObjectCountMax != nil {
		total := rec.TotalObjects()
		if f.ObjectCountMin != nil && total < *f.ObjectCountMin {
			return false
		}
		if f.ObjectCountMax != nil && total > *f.ObjectCountMax {
			return false
		}
	}

	if f.ContainsText != "" && !containsText(rec, f.ContainsText) {
		return false
	}
	return true
}

// containsText searches the title and every text element,
// case-insensitively, short-circuiting on the first hit.
func containsText(rec slide.Record, needle string) bool {
	lower := strings.ToLower(needle)
	if strings.Contains(strings.ToLower(rec.Title), lower) {
		return true
	}
	for _, el := range rec.TextElements {
		if strings.Contains(strings.ToLower(el.Text), lower) {
			return true
		}
	}
	return false
}

// Matches evaluates the layout conditions; both are case-insensitive
// substring tests.
func (f *LayoutFilter) Matches(rec slide.Record) bool {
	if f.Type != "" && !strings.Contains(strings.ToLower(rec.LayoutType), strings.ToLower(f.Type)) {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(rec.LayoutName), strings.ToLower(f.Name)) {
		return false
	}
	return true
}

// Matches evaluates the notes conditions. IsEmpty compares
// whitespace-stripped emptiness exactly in both directions.
func (f *NotesFilter) Matches(notes string) bool {
	if f.IsEmpty != nil && *f.IsEmpty != (strings.TrimSpace(notes) == "") {
		return false
	}
	if f.Contains != "" && !strings.Contains(strings.ToLower(notes), strings.ToLower(f.Contains)) {
		return false
	}
	if f.Regex != "" {
		re, err := compileSearch(f.Regex)
		if err != nil || !re.MatchString(notes) {
			return false
		}
	}
	return true
}
