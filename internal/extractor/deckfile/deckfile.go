// Package deckfile adapts pre-extracted deck files to the query engine's
// Extractor contract. A deck file is a JSON document holding the slide
// records and named sections of one presentation — the shape a content
// extraction pipeline writes out — so the engine can be composed without
// a slide-markup parser in process.
//
// Parsed decks are memoized in an expiring cache keyed by file
// fingerprint: editing, replacing, or touching the file changes the
// fingerprint and the stale entry simply stops being found.
package deckfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/slidedex/internal/cache"
	"github.com/kailas-cloud/slidedex/internal/domain/slide"
)

// document is the on-disk deck file shape.
type document struct {
	Slides   []slide.Record  `json:"slides"`
	Sections []slide.Section `json:"sections,omitempty"`
}

// Extractor reads deck files from the local filesystem.
type Extractor struct {
	cache  *cache.Cache[document]
	logger *zap.Logger
}

// New creates a deck-file extractor with its own fingerprint-keyed cache.
// Non-positive capacity or TTL fall back to the cache package defaults.
func New(capacity int, ttl time.Duration, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		cache:  cache.New[document](capacity, ttl),
		logger: logger,
	}
}

// ListSlideRecords returns every slide of the deck at path.
func (e *Extractor) ListSlideRecords(ctx context.Context, path string) ([]slide.Record, error) {
	doc, err := e.load(ctx, path)
	if err != nil {
		return nil, err
	}
	return doc.Slides, nil
}

// PresentationSections returns the named sections of the deck at path,
// empty when the deck defines none.
func (e *Extractor) PresentationSections(ctx context.Context, path string) ([]slide.Section, error) {
	doc, err := e.load(ctx, path)
	if err != nil {
		return nil, err
	}
	return doc.Sections, nil
}

// CacheStats reports occupancy of the deck cache.
func (e *Extractor) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// CleanupCache removes expired deck entries and returns the count.
func (e *Extractor) CleanupCache() int {
	return e.cache.CleanupExpired()
}

// ClearCache drops every cached deck.
func (e *Extractor) ClearCache() {
	e.cache.Clear()
}

func (e *Extractor) load(_ context.Context, path string) (document, error) {
	key, err := cache.Fingerprint(path)
	if err != nil {
		return document{}, err
	}
	if doc, ok := e.cache.Get(key); ok {
		return doc, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return document{}, fmt.Errorf("read deck file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return document{}, fmt.Errorf("parse deck file %s: %w", path, err)
	}
	for i := range doc.Slides {
		if doc.Slides[i].SlideNumber == 0 {
			doc.Slides[i].SlideNumber = i + 1
		}
	}

	e.cache.Put(key, doc)
	e.logger.Debug("deck file parsed",
		zap.String("path", path),
		zap.Int("slides", len(doc.Slides)),
		zap.Int("sections", len(doc.Sections)),
	)
	return doc, nil
}
