package query

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/slidedex/internal/domain"
	"github.com/kailas-cloud/slidedex/internal/domain/slide"
	"github.com/kailas-cloud/slidedex/internal/domain/sliderange"
)

type fakeExtractor struct {
	mu       sync.Mutex
	calls    int
	records  []slide.Record
	sections []slide.Section
	err      error
}

func (f *fakeExtractor) ListSlideRecords(_ context.Context, _ string) ([]slide.Record, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeExtractor) PresentationSections(_ context.Context, _ string) ([]slide.Section, error) {
	return f.sections, nil
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func threeSlideDeck() *fakeExtractor {
	return &fakeExtractor{
		records: []slide.Record{
			{SlideNumber: 1, Title: "Intro", LayoutType: "title", ObjectCounts: map[string]int{"text_boxes": 1}},
			{SlideNumber: 2, Title: "Q4 Results", LayoutType: "content",
				Tables:       []slide.Table{{Rows: [][]string{{"Region", "Revenue"}, {"EMEA", "12"}}}},
				ObjectCounts: map[string]int{"tables": 1, "text_boxes": 2}},
			{SlideNumber: 3, Title: "Appendix", LayoutType: "content", Notes: "backup material",
				ObjectCounts: map[string]int{"text_boxes": 1}},
		},
		sections: []slide.Section{
			{Name: "Opening", FirstSlide: 1, LastSlide: 1},
			{Name: "Results", FirstSlide: 2, LastSlide: 3},
		},
	}
}

func TestQuery_TitleContains(t *testing.T) {
	svc := New(threeSlideDeck(), nil)

	results, err := svc.Query(context.Background(), "deck.pptx",
		json.RawMessage(`{"title": {"contains": "Q4"}}`),
		[]string{"slide_number", "title"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1: %+v", len(results), results)
	}
	if results[0].SlideNumber != 2 || results[0].Title != "Q4 Results" {
		t.Errorf("got %+v", results[0])
	}
	if results[0].Subtitle != "" || results[0].ObjectCounts != nil {
		t.Errorf("unrequested fields populated: %+v", results[0])
	}
}

func TestQuery_DefaultReturnFields(t *testing.T) {
	svc := New(threeSlideDeck(), nil)

	results, err := svc.Query(context.Background(), "deck.pptx",
		json.RawMessage(`{"title": {"contains": "Q4"}}`), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.SlideNumber != 2 || r.Title != "Q4 Results" || r.ObjectCounts == nil {
		t.Errorf("default fields missing: %+v", r)
	}
}

func TestQuery_FailsClosedOnInvalidFilter(t *testing.T) {
	ext := threeSlideDeck()
	svc := New(ext, nil)

	results, err := svc.Query(context.Background(), "deck.pptx",
		json.RawMessage(`{"titel": {"contains": "Q4"}}`), nil, 0)
	if err != nil {
		t.Fatalf("fail-closed query must not error: %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("got %v, want empty non-nil result list", results)
	}
	if ext.callCount() != 0 {
		t.Error("validation must run before any extraction")
	}
}

func TestQuery_FailsClosedOnInvalidReturnField(t *testing.T) {
	svc := New(threeSlideDeck(), nil)

	results, err := svc.Query(context.Background(), "deck.pptx", nil,
		[]string{"slide_number", "everything"}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestQuery_FailsClosedOnUnresolvableSlideNumbers(t *testing.T) {
	svc := New(threeSlideDeck(), nil)

	results, err := svc.Query(context.Background(), "deck.pptx",
		json.RawMessage(`{"slide_numbers": "10:20"}`), nil, 0)
	if err != nil {
		t.Fatalf("fail-closed query must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestQuery_NoFiltersReturnsEverySlide(t *testing.T) {
	svc := New(threeSlideDeck(), nil)

	results, err := svc.Query(context.Background(), "deck.pptx", nil, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, want := range []int{1, 2, 3} {
		if results[i].SlideNumber != want {
			t.Errorf("results[%d].SlideNumber = %d, want %d (ascending order)", i, results[i].SlideNumber, want)
		}
	}
}

func TestQuery_SlideNumbersClampedRange(t *testing.T) {
	svc := New(threeSlideDeck(), nil)

	results, err := svc.Query(context.Background(), "deck.pptx",
		json.RawMessage(`{"slide_numbers": "2:100"}`), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].SlideNumber != 2 || results[1].SlideNumber != 3 {
		t.Errorf("got %+v, want slides 2 and 3", results)
	}
}

func TestQuery_Limit(t *testing.T) {
	svc := New(threeSlideDeck(), nil)

	results, err := svc.Query(context.Background(), "deck.pptx", nil, nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].SlideNumber != 1 || results[1].SlideNumber != 2 {
		t.Errorf("got %+v, want first two slides", results)
	}
}

func TestQuery_Section(t *testing.T) {
	svc := New(threeSlideDeck(), nil)

	results, err := svc.Query(context.Background(), "deck.pptx",
		json.RawMessage(`{"section": "results"}`), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].SlideNumber != 2 || results[1].SlideNumber != 3 {
		t.Errorf("got %+v, want slides 2 and 3 (case-insensitive section match)", results)
	}
}

func TestQuery_UnknownSectionMatchesNothing(t *testing.T) {
	svc := New(threeSlideDeck(), nil)

	results, err := svc.Query(context.Background(), "deck.pptx",
		json.RawMessage(`{"section": "Conclusions"}`), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestQuery_SectionOnDeckWithoutSections(t *testing.T) {
	ext := threeSlideDeck()
	ext.sections = nil
	svc := New(ext, nil)

	results, err := svc.Query(context.Background(), "deck.pptx",
		json.RawMessage(`{"section": "Results"}`), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestQuery_CombinedFilters(t *testing.T) {
	svc := New(threeSlideDeck(), nil)

	results, err := svc.Query(context.Background(), "deck.pptx",
		json.RawMessage(`{
			"section": "Results",
			"content": {"has_tables": true},
			"layout": {"type": "content"}
		}`), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].SlideNumber != 2 {
		t.Errorf("got %+v, want only slide 2", results)
	}
}

func TestQuery_CachesExtraction(t *testing.T) {
	ext := threeSlideDeck()
	svc := New(ext, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Query(ctx, "deck.pptx", nil, nil, 0); err != nil {
			t.Fatal(err)
		}
	}
	if got := ext.callCount(); got != 1 {
		t.Errorf("extractor called %d times, want 1", got)
	}

	if !svc.Invalidate("deck.pptx") {
		t.Error("Invalidate reported no cached entry")
	}
	if _, err := svc.Query(ctx, "deck.pptx", nil, nil, 0); err != nil {
		t.Fatal(err)
	}
	if got := ext.callCount(); got != 2 {
		t.Errorf("extractor called %d times after invalidate, want 2", got)
	}
}

func TestQuery_DistinctPathsCachedSeparately(t *testing.T) {
	ext := threeSlideDeck()
	svc := New(ext, nil)
	ctx := context.Background()

	if _, err := svc.Query(ctx, "a.pptx", nil, nil, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Query(ctx, "b.pptx", nil, nil, 0); err != nil {
		t.Fatal(err)
	}
	if got := ext.callCount(); got != 2 {
		t.Errorf("extractor called %d times, want 2", got)
	}

	svc.Reset()
	if _, err := svc.Query(ctx, "a.pptx", nil, nil, 0); err != nil {
		t.Fatal(err)
	}
	if got := ext.callCount(); got != 3 {
		t.Errorf("extractor called %d times after reset, want 3", got)
	}
}

func TestQuery_ConcurrentQueriesExtractOnce(t *testing.T) {
	ext := threeSlideDeck()
	svc := New(ext, nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Query(context.Background(), "deck.pptx", nil, nil, 0)
		}()
	}
	wg.Wait()

	if got := ext.callCount(); got != 1 {
		t.Errorf("extractor called %d times under concurrency, want 1", got)
	}
}

func TestQuery_ExtractionErrorIsNotCached(t *testing.T) {
	ext := threeSlideDeck()
	ext.err = domain.ErrNotFound
	svc := New(ext, nil)
	ctx := context.Background()

	_, err := svc.Query(ctx, "deck.pptx", nil, nil, 0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	ext.err = nil
	results, err := svc.Query(ctx, "deck.pptx", nil, nil, 0)
	if err != nil {
		t.Fatalf("retry after transient failure: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestSlideInfo(t *testing.T) {
	svc := New(threeSlideDeck(), nil)
	ctx := context.Background()

	info, err := svc.SlideInfo(ctx, "deck.pptx", 2, []string{"title", "tables"})
	if err != nil {
		t.Fatal(err)
	}
	if info.SlideNumber != 2 || info.Title != "Q4 Results" || len(info.Tables) != 1 {
		t.Errorf("got %+v", info)
	}
	if info.LayoutType != "" {
		t.Errorf("unrequested layout populated: %+v", info)
	}

	_, err = svc.SlideInfo(ctx, "deck.pptx", 9, nil)
	if !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("err = %v, want ErrOutOfRange", err)
	}

	_, err = svc.SlideInfo(ctx, "deck.pptx", 1, []string{"everything"})
	if !errors.Is(err, domain.ErrUnknownAttribute) {
		t.Errorf("err = %v, want ErrUnknownAttribute", err)
	}
}

func TestResolveSlideNumbers(t *testing.T) {
	svc := New(threeSlideDeck(), nil)
	ctx := context.Background()

	nums, err := svc.ResolveSlideNumbers(ctx, "deck.pptx", sliderange.Expr("2:"))
	if err != nil {
		t.Fatal(err)
	}
	if len(nums) != 2 || nums[0] != 2 || nums[1] != 3 {
		t.Errorf("got %v, want [2 3]", nums)
	}

	_, err = svc.ResolveSlideNumbers(ctx, "deck.pptx", sliderange.Single(9))
	if !errors.Is(err, domain.ErrOutOfRange) {
		t.Errorf("err = %v, want ErrOutOfRange", err)
	}
}
