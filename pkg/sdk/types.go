package slidedex

import "encoding/json"

// QueryRequest describes one deck query.
type QueryRequest struct {
	Path         string          `json:"path"`
	Filters      json.RawMessage `json:"filters,omitempty"`
	ReturnFields []string        `json:"return_fields,omitempty"`
	Limit        int             `json:"limit,omitempty"`
}

// TableInfo summarizes one table on a slide.
type TableInfo struct {
	TableIndex int      `json:"table_index"`
	Rows       int      `json:"rows"`
	Columns    int      `json:"columns"`
	Headers    []string `json:"headers,omitempty"`
}

// TextElement is one text-bearing shape on a slide.
type TextElement struct {
	Text      string `json:"text"`
	Formatted string `json:"formatted,omitempty"`
}

// Table is a table on a slide, either as a full row grid or bare counts.
type Table struct {
	Rows        [][]string `json:"rows,omitempty"`
	RowCount    int        `json:"row_count,omitempty"`
	ColumnCount int        `json:"column_count,omitempty"`
}

// FullContent bundles the complete extracted content of a slide.
type FullContent struct {
	Title        string         `json:"title,omitempty"`
	Subtitle     string         `json:"subtitle,omitempty"`
	LayoutName   string         `json:"layout_name,omitempty"`
	LayoutType   string         `json:"layout_type,omitempty"`
	TextElements []TextElement  `json:"text_elements"`
	Tables       []Table        `json:"tables"`
	ObjectCounts map[string]int `json:"object_counts"`
	Placeholders []string       `json:"placeholders"`
}

// QueryResult is one query match. Fields the query did not request are
// absent.
type QueryResult struct {
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

// QueryResponse is a query result list.
type QueryResponse struct {
	Items []QueryResult `json:"items"`
	Total int           `json:"total"`
	Limit int           `json:"limit"`
}

// SlideInfo is one slide trimmed to requested attributes.
type SlideInfo struct {
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

// CacheStats is a point-in-time snapshot of the server's deck cache.
type CacheStats struct {
	Total      int   `json:"total_entries"`
	Expired    int   `json:"expired_entries"`
	Active     int   `json:"active_entries"`
	Capacity   int   `json:"capacity"`
	DefaultTTL int64 `json:"default_ttl"`
}

// HealthReport is the server's aggregated health status.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
