package domain

import "errors"

var (
	// ErrNotFound signals a missing file or resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSyntax signals an unparsable slide range specification.
	ErrInvalidSyntax = errors.New("invalid slide range syntax")
	// ErrOutOfRange signals a slide index outside the presentation.
	ErrOutOfRange = errors.New("slide number out of range")
	// ErrInvalidRange signals a slice whose start exceeds its end.
	ErrInvalidRange = errors.New("invalid slide range")
	// ErrInvalidFilterField signals an unknown field name in a filter specification.
	ErrInvalidFilterField = errors.New("invalid filter field")
	// ErrInvalidRegex signals a regex filter pattern that does not compile.
	ErrInvalidRegex = errors.New("invalid regex pattern")
	// ErrUnknownAttribute signals a requested attribute outside the projection whitelist.
	ErrUnknownAttribute = errors.New("unknown attribute")
)
