package slidedex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/decks/query" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}

		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Path != "deck.pptx" {
			t.Errorf("path = %q", req.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [{"slide_number": 2, "title": "Q4 Results"}],
			"total": 1, "limit": 50
		}`))
	}))
	defer srv.Close()

	client := New(srv.URL, WithAPIKey("secret"))
	resp, err := client.Query(context.Background(), QueryRequest{
		Path:         "deck.pptx",
		Filters:      json.RawMessage(`{"title": {"contains": "Q4"}}`),
		ReturnFields: []string{"slide_number", "title"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 || resp.Items[0].SlideNumber != 2 || resp.Items[0].Title != "Q4 Results" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestResolveSlideNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["slide_numbers"] != "2:" {
			t.Errorf("slide_numbers = %v", body["slide_numbers"])
		}
		_, _ = w.Write([]byte(`{"slide_numbers": [2, 3], "total": 2}`))
	}))
	defer srv.Close()

	nums, err := New(srv.URL).ResolveSlideNumbers(context.Background(), "deck.pptx", "2:")
	if err != nil {
		t.Fatal(err)
	}
	if len(nums) != 2 || nums[0] != 2 || nums[1] != 3 {
		t.Errorf("nums = %v", nums)
	}
}

func TestGetSlideInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/decks/slide" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"slide_number": 2, "title": "Q4 Results", "layout_type": "content"}`))
	}))
	defer srv.Close()

	info, err := New(srv.URL).GetSlideInfo(context.Background(), "deck.pptx", 2, []string{"title", "layout"})
	if err != nil {
		t.Fatal(err)
	}
	if info.SlideNumber != 2 || info.Title != "Q4 Results" || info.LayoutType != "content" {
		t.Errorf("info = %+v", info)
	}
}

func TestCacheOperations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/cache/stats":
			_, _ = w.Write([]byte(`{"deck_cache": {"total_entries": 3, "active_entries": 2, "expired_entries": 1, "capacity": 100}}`))
		case r.Method == http.MethodPost && r.URL.Path == "/v1/cache/cleanup":
			_, _ = w.Write([]byte(`{"removed": 1}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/cache" && r.URL.Query().Get("path") == "deck.pptx":
			_, _ = w.Write([]byte(`{"invalidated": true}`))
		case r.Method == http.MethodDelete && r.URL.Path == "/v1/cache":
			_, _ = w.Write([]byte(`{"cleared": true}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	client := New(srv.URL)
	ctx := context.Background()

	stats, err := client.GetCacheStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 || stats.Active != 2 {
		t.Errorf("stats = %+v", stats)
	}

	removed, err := client.CleanupCache(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("removed = %d", removed)
	}

	invalidated, err := client.InvalidateDeck(ctx, "deck.pptx")
	if err != nil {
		t.Fatal(err)
	}
	if !invalidated {
		t.Error("invalidated = false")
	}

	if err := client.ClearCache(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code": "not_found", "message": "not found"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Query(context.Background(), QueryRequest{Path: "missing.pptx"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound = false for %v", err)
	}
	if IsValidationFailed(err) {
		t.Errorf("IsValidationFailed = true for %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ok", "checks": {}}`))
	}))
	defer srv.Close()

	report, err := New(srv.URL).Health(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.Status != "ok" {
		t.Errorf("status = %s", report.Status)
	}
}
