package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/slidedex/internal/domain"
	"github.com/kailas-cloud/slidedex/internal/domain/slide"
)

// previewMaxElements is the number of text elements included in a preview.
const previewMaxElements = 3

// previewMaxChars is the length a preview text element is truncated to,
// ellipsis included.
const previewMaxChars = 100

// validReturnFields is the fixed set of requestable result fields.
// "layout" expands to layout_name + layout_type.
var validReturnFields = keySet(
	"slide_number", "title", "subtitle", "layout",
	"object_counts", "preview_text", "table_info", "full_content",
)

// ReturnFields returns the sorted set of valid return-field names.
func ReturnFields() []string {
	names := make([]string, 0, len(validReturnFields))
	for name := range validReturnFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateReturnFields collects a violation for every name outside the
// fixed return-field set.
func ValidateReturnFields(fields []string) []error {
	var errs []error
	for _, name := range fields {
		if _, ok := validReturnFields[name]; !ok {
			errs = append(errs, fmt.Errorf("%w: unknown return field %q", domain.ErrInvalidFilterField, name))
		}
	}
	return errs
}

// TableInfo summarizes one table on a slide.
type TableInfo struct {
	TableIndex int      `json:"table_index"`
	Rows       int      `json:"rows"`
	Columns    int      `json:"columns"`
	Headers    []string `json:"headers,omitempty"`
}

// FullContent bundles the complete extracted content of a slide.
type FullContent struct {
	Title        string              `json:"title,omitempty"`
	Subtitle     string              `json:"subtitle,omitempty"`
	LayoutName   string              `json:"layout_name,omitempty"`
	LayoutType   string              `json:"layout_type,omitempty"`
	TextElements []slide.TextElement `json:"text_elements"`
	Tables       []slide.Table       `json:"tables"`
	ObjectCounts map[string]int      `json:"object_counts"`
	Placeholders []string            `json:"placeholders"`
}

// Result is one query match trimmed to the requested return fields.
// SlideNumber is always present; unrequested fields are absent from the
// JSON encoding, not null.
type Result struct {
	SlideNumber  int            `json:"slide_number"`
	Title        string         `json:"title,omitempty"`
	Subtitle     string         `json:"subtitle,omitempty"`
	LayoutName   string         `json:"layout_name,omitempty"`
	LayoutType   string         `json:"layout_type,omitempty"`
	ObjectCounts map[string]int `json:"object_counts,omitempty"`
	PreviewText  string         `json:"preview_text,omitempty"`
	TableInfo    []TableInfo    `json:"table_info,omitempty"`
	FullContent  *FullContent   `json:"full_content,omitempty"`
}

// BuildResult assembles a Result from a record and the requested return
// fields. Callers must have validated the field names already.
func BuildResult(rec slide.Record, returnFields []string) Result {
	out := Result{SlideNumber: rec.SlideNumber}
	for _, field := range returnFields {
		switch field {
		case "slide_number":
			// always present
		case "title":
			out.Title = rec.Title
		case "subtitle":
			out.Subtitle = rec.Subtitle
		case "layout":
			out.LayoutName = rec.LayoutName
			out.LayoutType = rec.LayoutType
		case "object_counts":
			out.ObjectCounts = rec.ObjectCounts
		case "preview_text":
			out.PreviewText = PreviewText(rec)
		case "table_info":
			out.TableInfo = BuildTableInfo(rec.Tables)
		case "full_content":
			out.FullContent = &FullContent{
				Title:        rec.Title,
				Subtitle:     rec.Subtitle,
				LayoutName:   rec.LayoutName,
				LayoutType:   rec.LayoutType,
				TextElements: rec.TextElements,
				Tables:       rec.Tables,
				ObjectCounts: rec.ObjectCounts,
				Placeholders: rec.Placeholders,
			}
		}
	}
	return out
}

// PreviewText builds a compact preview: the title plus up to the first
// three text elements, each truncated to 100 characters with an
// ellipsis, joined by " | ".
func PreviewText(rec slide.Record) string {
	var parts []string
	if rec.Title != "" {
		parts = append(parts, "Title: "+rec.Title)
	}
	for i, el := range rec.TextElements {
		if i >= previewMaxElements {
			break
		}
		if el.Text == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("Text %d: %s", i+1, truncate(el.Text, previewMaxChars)))
	}
	return strings.Join(parts, " | ")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}

// BuildTableInfo summarizes tables, tolerating both row-grid tables and
// tables expressed as bare row/column counts.
func BuildTableInfo(tables []slide.Table) []TableInfo {
	info := make([]TableInfo, 0, len(tables))
	for i, t := range tables {
		ti := TableInfo{TableIndex: i}
		if len(t.Rows) > 0 {
			ti.Rows = len(t.Rows)
			ti.Columns = len(t.Rows[0])
			ti.Headers = t.Rows[0]
		} else {
			ti.Rows = t.RowCount
			ti.Columns = t.ColumnCount
		}
		info = append(info, ti)
	}
	return info
}
