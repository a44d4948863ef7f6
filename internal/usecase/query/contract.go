package query

import (
	"context"

	"github.com/kailas-cloud/slidedex/internal/domain/slide"
)

// Extractor produces structured slide content for a deck file. The engine
// treats it as a black box: how the records are obtained (sidecar file,
// archive parser, remote service) is the adapter's concern.
type Extractor interface {
	// ListSlideRecords returns every slide of the deck in ascending
	// slide-number order.
	ListSlideRecords(ctx context.Context, path string) ([]slide.Record, error)

	// PresentationSections returns the named sections of the deck, empty
	// when the deck defines none.
	PresentationSections(ctx context.Context, path string) ([]slide.Section, error)
}
