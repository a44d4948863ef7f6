// Package query holds the filter specification for slide queries: fixed,
// nested optional-field structs per category, a strict decoder that
// rejects unrecognized keys, and the per-slide predicate evaluation.
//
// Validation is exhaustive by contract — every violation is collected,
// never short-circuited — so a caller sees all mistakes at once and the
// engine can fail closed on any of them.
package query

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/slidedex/internal/domain"
	"github.com/kailas-cloud/slidedex/internal/domain/sliderange"
)

// TitleFilter matches against the slide title. Fields are ANDed;
// OneOf entries are ORed.
type TitleFilter struct {
	Contains   string   `json:"contains,omitempty"`
	StartsWith string   `json:"starts_with,omitempty"`
	EndsWith   string   `json:"ends_with,omitempty"`
	Regex      string   `json:"regex,omitempty"`
	OneOf      []string `json:"one_of,omitempty"`
}

// ContentFilter matches against slide content and object counts.
type ContentFilter struct {
	ContainsText   string `json:"contains_text,omitempty"`
	HasTables      *bool  `json:"has_tables,omitempty"`
	HasCharts      *bool  `json:"has_charts,omitempty"`
	HasImages      *bool  `json:"has_images,omitempty"`
	ObjectCountMin *int   `json:"object_count_min,omitempty"`
	ObjectCountMax *int   `json:"object_count_max,omitempty"`
}

// LayoutFilter matches against the slide layout.
type LayoutFilter struct {
	Type string `json:"type,omitempty"`
	Name string `json:"name,omitempty"`
}

// NotesFilter matches against speaker notes.
type NotesFilter struct {
	Contains string `json:"contains,omitempty"`
	Regex    string `json:"regex,omitempty"`
	IsEmpty  *bool  `json:"is_empty,omitempty"`
}

// Filters is the complete filter specification for one query.
// Sub-filters are ANDed across categories.
type Filters struct {
	Title        *TitleFilter
	Content      *ContentFilter
	Layout       *LayoutFilter
	Notes        *NotesFilter
	SlideNumbers sliderange.Spec
	Section      string
}

// Fixed key sets per category. Unknown-field validation is an exhaustive
// match over these, not an open map walk.
var (
	topLevelKeys = keySet("title", "content", "layout", "notes", "slide_numbers", "section")
	titleKeys    = keySet("contains", "starts_with", "ends_with", "regex", "one_of")
	contentKeys  = keySet("contains_text", "has_tables", "has_charts", "has_images",
		"object_count_min", "object_count_max")
	layoutKeys = keySet("type", "name")
	notesKeys  = keySet("contains", "regex", "is_empty")
)

func keySet(keys ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Decode parses a wire filter specification, rejecting every unknown
// top-level or nested key. All decode violations are collected and
// returned together; the Filters value is only meaningful when the
// error slice is empty.
func Decode(raw json.RawMessage) (Filters, []error) {
	var f Filters
	if len(raw) == 0 || strings.TrimSpace(string(raw)) == "null" {
		return f, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return f, []error{fmt.Errorf("%w: filter specification must be an object: %v",
			domain.ErrInvalidFilterField, err)}
	}

	var errs []error
	for key := range top {
		if _, ok := topLevelKeys[key]; !ok {
			errs = append(errs, fmt.Errorf("%w: unknown filter field %q", domain.ErrInvalidFilterField, key))
		}
	}

	if raw, ok := top["title"]; ok {
		f.Title = decodeCategory[TitleFilter](raw, "title", titleKeys, &errs)
	}
	if raw, ok := top["content"]; ok {
		f.Content = decodeCategory[ContentFilter](raw, "content", contentKeys, &errs)
	}
	if raw, ok := top["layout"]; ok {
		f.Layout = decodeCategory[LayoutFilter](raw, "layout", layoutKeys, &errs)
	}
	if raw, ok := top["notes"]; ok {
		f.Notes = decodeCategory[NotesFilter](raw, "notes", notesKeys, &errs)
	}
	if raw, ok := top["slide_numbers"]; ok {
		if err := json.Unmarshal(raw, &f.SlideNumbers); err != nil {
			errs = append(errs, fmt.Errorf("slide_numbers: %w", err))
		}
	}
	if raw, ok := top["section"]; ok {
		if err := json.Unmarshal(raw, &f.Section); err != nil {
			errs = append(errs, fmt.Errorf("%w: section must be a string: %v",
				domain.ErrInvalidFilterField, err))
		} else if strings.TrimSpace(f.Section) == "" {
			errs = append(errs, fmt.Errorf("%w: section must be non-empty", domain.ErrInvalidFilterField))
		}
	}

	return f, errs
}

// decodeCategory decodes one sub-filter object, collecting unknown-key
// and type violations into errs.
func decodeCategory[T any](raw json.RawMessage, category string, allowed map[string]struct{}, errs *[]error) *T {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		*errs = append(*errs, fmt.Errorf("%w: %s filter must be an object: %v",
			domain.ErrInvalidFilterField, category, err))
		return nil
	}
	for key := range keys {
		if _, ok := allowed[key]; !ok {
			*errs = append(*errs, fmt.Errorf("%w: unknown %s filter field %q",
				domain.ErrInvalidFilterField, category, key))
		}
	}

	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		*errs = append(*errs, fmt.Errorf("%w: invalid %s filter value: %v",
			domain.ErrInvalidFilterField, category, err))
		return nil
	}
	return out
}

// Validate checks every constraint of the specification and returns all
// violations. Strict regex fields must compile; OneOf entries are exempt
// because an uncompilable entry falls back to substring matching at
// evaluation time. Numeric bounds must be non-negative and ordered.
func (f Filters) Validate() []error {
	var errs []error

	if f.Title != nil && f.Title.Regex != "" {
		if _, err := compileSearch(f.Title.Regex); err != nil {
			errs = append(errs, fmt.Errorf("%w: title.regex %q: %v", domain.ErrInvalidRegex, f.Title.Regex, err))
		}
	}
	if f.Notes != nil && f.Notes.Regex != "" {
		if _, err := compileSearch(f.Notes.Regex); err != nil {
			errs = append(errs, fmt.Errorf("%w: notes.regex %q: %v", domain.ErrInvalidRegex, f.Notes.Regex, err))
		}
	}

	if f.Content != nil {
		min, max := f.Content.ObjectCountMin, f.Content.ObjectCountMax
		if min != nil && *min < 0 {
			errs = append(errs, fmt.Errorf("%w: object_count_min must be non-negative, got %d",
				domain.ErrInvalidFilterField, *min))
		}
		if max != nil && *max < 0 {
			errs = append(errs, fmt.Errorf("%w: object_count_max must be non-negative, got %d",
				domain.ErrInvalidFilterField, *max))
		}
		if min != nil && max != nil && *min >= 0 && *max >= 0 && *min > *max {
			errs = append(errs, fmt.Errorf("%w: object_count_min (%d) exceeds object_count_max (%d)",
				domain.ErrInvalidFilterField, *min, *max))
		}
	}

	if err := f.SlideNumbers.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("slide_numbers: %w", err))
	}

	if f.Section != "" && strings.TrimSpace(f.Section) == "" {
		errs = append(errs, fmt.Errorf("%w: section must be non-empty", domain.ErrInvalidFilterField))
	}

	return errs
}

// compileSearch compiles a pattern for case-insensitive, unanchored
// search (the Python re.search + IGNORECASE contract).
func compileSearch(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}
