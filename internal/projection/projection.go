// Package projection trims slide records down to caller-requested
// attributes against a fixed whitelist.
package projection

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/slidedex/internal/domain"
	"github.com/kailas-cloud/slidedex/internal/domain/slide"
)

// validAttributes is the projection whitelist. Composite names expand to
// several underlying fields: "layout" yields layout_name, layout_type,
// and placeholders; "text" yields every text-bearing field.
var validAttributes = map[string]struct{}{
	"title":         {},
	"subtitle":      {},
	"text":          {},
	"text_elements": {},
	"tables":        {},
	"layout":        {},
	"placeholders":  {},
	"notes":         {},
	"object_counts": {},
	"section":       {},
}

// Attributes returns the sorted whitelist of requestable attribute names.
func Attributes() []string {
	names := make([]string, 0, len(validAttributes))
	for name := range validAttributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Projected is a slide record trimmed to requested attributes. The slide
// number is always present; unrequested fields are absent from the JSON
// encoding, not null.
type Projected struct {
	SlideNumber  int                 `json:"slide_number"`
	Title        string              `json:"title,omitempty"`
	Subtitle     string              `json:"subtitle,omitempty"`
	LayoutName   string              `json:"layout_name,omitempty"`
	LayoutType   string              `json:"layout_type,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	SectionName  string              `json:"section_name,omitempty"`
	Placeholders []string            `json:"placeholders,omitempty"`
	TextElements []slide.TextElement `json:"text_elements,omitempty"`
	Tables       []slide.Table       `json:"tables,omitempty"`
	ObjectCounts map[string]int      `json:"object_counts,omitempty"`
}

// Project copies the requested attributes of a record. An empty request
// list means "no filtering" and returns the full record. Any name outside
// the whitelist fails with ErrUnknownAttribute, listing every invalid
// name at once.
func Project(rec slide.Record, requested []string) (Projected, error) {
	var invalid []string
	for _, name := range requested {
		if _, ok := validAttributes[name]; !ok {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		return Projected{}, fmt.Errorf("%w: [%s], valid options: [%s]",
			domain.ErrUnknownAttribute,
			strings.Join(invalid, ", "),
			strings.Join(Attributes(), ", "))
	}

	if len(requested) == 0 {
		return full(rec), nil
	}

	out := Projected{SlideNumber: rec.SlideNumber}
	for _, name := range requested {
		switch name {
		case "title":
			out.Title = rec.Title
		case "subtitle":
			out.Subtitle = rec.Subtitle
		case "text":
			out.Title = rec.Title
			out.Subtitle = rec.Subtitle
			out.TextElements = rec.TextElements
			out.Notes = rec.Notes
		case "text_elements":
			out.TextElements = rec.TextElements
		case "tables":
			out.Tables = rec.Tables
		case "layout":
			out.LayoutName = rec.LayoutName
			out.LayoutType = rec.LayoutType
			out.Placeholders = rec.Placeholders
		case "placeholders":
			out.Placeholders = rec.Placeholders
		case "notes":
			out.Notes = rec.Notes
		case "object_counts":
			out.ObjectCounts = rec.ObjectCounts
		case "section":
			out.SectionName = rec.SectionName
		}
	}
	return out, nil
}

func full(rec slide.Record) Projected {
	return Projected{
		SlideNumber:  rec.SlideNumber,
		Title:        rec.Title,
		Subtitle:     rec.Subtitle,
		LayoutName:   rec.LayoutName,
		LayoutType:   rec.LayoutType,
		Notes:        rec.Notes,
		SectionName:  rec.SectionName,
		Placeholders: rec.Placeholders,
		TextElements: rec.TextElements,
		Tables:       rec.Tables,
		ObjectCounts: rec.ObjectCounts,
	}
}
