// Package query implements the deck query engine: exhaustive up-front
// validation, per-file record caching, predicate evaluation, and result
// assembly.
//
// The engine fails closed: a query whose filter specification or
// return-field list is invalid in any way yields an empty result list —
// never the unfiltered slide set, never an error. Callers that need the
// violation detail get it from the log, not the response.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/slidedex/internal/domain"
	domquery "github.com/kailas-cloud/slidedex/internal/domain/query"
	"github.com/kailas-cloud/slidedex/internal/domain/slide"
	"github.com/kailas-cloud/slidedex/internal/domain/sliderange"
	"github.com/kailas-cloud/slidedex/internal/metrics"
	"github.com/kailas-cloud/slidedex/internal/projection"
)

// defaultReturnFields is used when a query names no return fields.
var defaultReturnFields = []string{"slide_number", "title", "object_counts"}

// deck is one cached extraction. The once guards the extractor call so
// concurrent queries on the same path extract at most once.
type deck struct {
	once     sync.Once
	records  []slide.Record
	sections []slide.Section
	err      error
}

// Service is the query engine. It caches extracted records per path for
// the lifetime of the process (or until Invalidate/Reset); file-change
// detection is the extractor's concern, keyed by fingerprint, one layer
// below.
type Service struct {
	extractor Extractor
	resolver  *sliderange.Resolver
	logger    *zap.Logger

	mu    sync.Mutex
	decks map[string]*deck
}

// New creates a query engine.
func New(extractor Extractor, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		extractor: extractor,
		resolver:  sliderange.NewResolver(logger),
		logger:    logger,
		decks:     make(map[string]*deck),
	}
}

// Query runs a filtered slide query against the deck at path.
//
// Validation is exhaustive: filter decode violations, filter constraint
// violations, and unknown return fields are all collected before the
// verdict. Any violation at all makes the query fail closed with an
// empty, non-nil result list and no error. Errors are reserved for the
// deck itself being unreadable.
//
// Results come back in ascending slide-number order; a positive limit
// truncates after filtering, before field assembly.
func (s *Service) Query(
	ctx context.Context, path string, rawFilters json.RawMessage,
	returnFields []string, limit int,
) ([]domquery.Result, error) {
	if len(returnFields) == 0 {
		returnFields = defaultReturnFields
	}

	filters, errs := domquery.Decode(rawFilters)
	errs = append(errs, filters.Validate()...)
	errs = append(errs, domquery.ValidateReturnFields(returnFields)...)
	if len(errs) > 0 {
		return s.rejected(path, errs), nil
	}

	d, err := s.loadDeck(ctx, path)
	if err != nil {
		metrics.DeckQueriesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load deck: %w", err)
	}

	numbers, err := s.candidateNumbers(filters, len(d.records))
	if err != nil {
		// A slide_numbers spec that does not resolve against this deck is
		// a validation failure like any other: closed, not open.
		return s.rejected(path, []error{err}), nil
	}

	section, sectionKnown := findSection(filters.Section, d.sections)

	matched := make([]slide.Record, 0, len(d.records))
	if sectionKnown {
		for _, rec := range d.records {
			if matches(filters, rec, numbers, section) {
				matched = append(matched, rec)
			}
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	results := make([]domquery.Result, 0, len(matched))
	for _, rec := range matched {
		results = append(results, domquery.BuildResult(rec, returnFields))
	}

	metrics.DeckQueriesTotal.WithLabelValues("ok").Inc()
	return results, nil
}

// SlideInfo returns one slide trimmed to the requested attributes.
// Unknown attribute names fail with ErrUnknownAttribute (all of them
// listed); an empty attribute list returns the full record. A slide
// number outside the deck fails with ErrOutOfRange.
func (s *Service) SlideInfo(
	ctx context.Context, path string, slideNumber int, attributes []string,
) (projection.Projected, error) {
	d, err := s.loadDeck(ctx, path)
	if err != nil {
		return projection.Projected{}, fmt.Errorf("load deck: %w", err)
	}
	for _, rec := range d.records {
		if rec.SlideNumber == slideNumber {
			return projection.Project(rec, attributes)
		}
	}
	return projection.Projected{}, fmt.Errorf("%w: slide number %d is out of range (1-%d)",
		domain.ErrOutOfRange, slideNumber, len(d.records))
}

// ResolveSlideNumbers resolves a range specification against the deck at
// path. Unlike Query this surfaces the resolution error taxonomy
// directly; it backs the standalone resolve operation.
func (s *Service) ResolveSlideNumbers(ctx context.Context, path string, spec sliderange.Spec) ([]int, error) {
	d, err := s.loadDeck(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	return s.resolver.Resolve(spec, len(d.records))
}

// Invalidate drops the cached records for one path, reporting whether an
// entry existed. The next query re-extracts.
func (s *Service) Invalidate(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.decks[path]
	delete(s.decks, path)
	return ok
}

// Reset drops every cached deck.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks = make(map[string]*deck)
}

// rejected logs the collected violations and returns the fail-closed
// verdict: empty results, no error.
func (s *Service) rejected(path string, errs []error) []domquery.Result {
	metrics.DeckQueriesTotal.WithLabelValues("rejected").Inc()
	s.logger.Warn("query rejected, returning no results",
		zap.String("path", path),
		zap.Errors("violations", errs),
	)
	return []domquery.Result{}
}

// loadDeck returns the cached extraction for path, extracting on first
// use. A failed extraction is not cached: the entry is dropped so a
// later query retries.
func (s *Service) loadDeck(ctx context.Context, path string) (*deck, error) {
	s.mu.Lock()
	d, hit := s.decks[path]
	if !hit {
		d = &deck{}
		s.decks[path] = d
	}
	s.mu.Unlock()

	if hit {
		metrics.RecordCacheTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.RecordCacheTotal.WithLabelValues("miss").Inc()
	}

	d.once.Do(func() {
		d.records, d.err = s.extractor.ListSlideRecords(ctx, path)
		if d.err != nil {
			return
		}
		d.sections, d.err = s.extractor.PresentationSections(ctx, path)
		if d.err != nil {
			return
		}
		sort.Slice(d.records, func(i, j int) bool {
			return d.records[i].SlideNumber < d.records[j].SlideNumber
		})
	})

	if d.err != nil {
		s.mu.Lock()
		if cur, ok := s.decks[path]; ok && cur == d {
			delete(s.decks, path)
		}
		s.mu.Unlock()
		return nil, d.err
	}
	return d, nil
}

// candidateNumbers resolves the slide_numbers spec into a membership set,
// or nil when the spec selects all slides.
func (s *Service) candidateNumbers(f domquery.Filters, totalSlides int) (map[int]struct{}, error) {
	if f.SlideNumbers.IsAll() {
		return nil, nil
	}
	nums, err := s.resolver.Resolve(f.SlideNumbers, totalSlides)
	if err != nil {
		return nil, fmt.Errorf("slide_numbers: %w", err)
	}
	set := make(map[int]struct{}, len(nums))
	for _, n := range nums {
		set[n] = struct{}{}
	}
	return set, nil
}

// findSection looks up a section filter by name, case-insensitively.
// known=false means a section was requested but the deck does not define
// it (or defines no sections at all) — the query then matches nothing.
func findSection(name string, sections []slide.Section) (sec *slide.Section, known bool) {
	if name == "" {
		return nil, true
	}
	for i := range sections {
		if strings.EqualFold(sections[i].Name, name) {
			return &sections[i], true
		}
	}
	return nil, false
}

// matches applies every requested condition to one record; conditions
// are ANDed across categories.
func matches(f domquery.Filters, rec slide.Record, numbers map[int]struct{}, section *slide.Section) bool {
	if numbers != nil {
		if _, ok := numbers[rec.SlideNumber]; !ok {
			return false
		}
	}
	if section != nil && !section.Contains(rec.SlideNumber) {
		return false
	}
	if f.Title != nil && !f.Title.Matches(rec.Title) {
		return false
	}
	if f.Content != nil && !f.Content.Matches(rec) {
		return false
	}
	if f.Layout != nil && !f.Layout.Matches(rec) {
		return false
	}
	if f.Notes != nil && !f.Notes.Matches(rec.Notes) {
		return false
	}
	return true
}
