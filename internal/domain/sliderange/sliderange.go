// Package sliderange parses "which slides" specifications. A Spec is
// accepted in four surface forms — absent, a single integer, a list of
// integers, or a compact slice/list string — and resolves to a sorted,
// deduplicated list of 1-based slide numbers.
package sliderange

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/slidedex/internal/domain"
)

type kind int

const (
	kindAll kind = iota
	kindSingle
	kindList
	kindExpr
)

// Spec is a slide-number specification decoded once at the boundary.
// The zero value selects all slides.
type Spec struct {
	kind kind
	one  int
	many []int
	expr string
}

// All selects every slide.
func All() Spec { return Spec{kind: kindAll} }

// Single selects one slide.
func Single(n int) Spec { return Spec{kind: kindSingle, one: n} }

// List selects an explicit set of slides.
func List(nums []int) Spec { return Spec{kind: kindList, many: nums} }

// Expr selects slides via the string mini-language: "a:b", ":b", "a:",
// "1,5,10", "3", each optionally wrapped in brackets.
func Expr(s string) Spec { return Spec{kind: kindExpr, expr: s} }

// IsAll reports whether the spec selects every slide.
func (s Spec) IsAll() bool { return s.kind == kindAll }

// UnmarshalJSON accepts null, a number, an array of numbers, or a string.
func (s *Spec) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = All()
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = Single(n)
		return nil
	}

	var nums []int
	if err := json.Unmarshal(data, &nums); err == nil {
		*s = List(nums)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if strings.TrimSpace(str) == "" {
			*s = All()
			return nil
		}
		*s = Expr(str)
		return nil
	}

	return fmt.Errorf("%w: expected number, array, or string, got %s",
		domain.ErrInvalidSyntax, trimmed)
}

// Validate checks the spec structurally, without knowing the slide count:
// literal entries must be positive and a string expression must parse.
func (s Spec) Validate() error {
	switch s.kind {
	case kindAll:
		return nil
	case kindSingle:
		if s.one < 1 {
			return fmt.Errorf("%w: slide number must be positive, got %d", domain.ErrOutOfRange, s.one)
		}
		return nil
	case kindList:
		for _, n := range s.many {
			if n < 1 {
				return fmt.Errorf("%w: slide number must be positive, got %d", domain.ErrOutOfRange, n)
			}
		}
		return nil
	default:
		_, err := parseExpr(s.expr)
		return err
	}
}

// Resolver resolves specs against a concrete slide count. It carries a
// logger because an over-generous slice end is clamped with a warning
// rather than rejected.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver creates a Resolver. A nil logger disables the clamp warning.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// Resolve turns a spec into a strictly increasing, deduplicated list of
// slide numbers, every value within [1, totalSlides].
//
// Literal indices (single, list, comma string) are strictly range-checked.
// Slice notation is asymmetric: a start beyond totalSlides fails, an end
// beyond totalSlides is clamped with a warning so "to the end" idioms
// never fail on a generous upper bound.
func (r *Resolver) Resolve(spec Spec, totalSlides int) ([]int, error) {
	if totalSlides < 1 {
		return nil, fmt.Errorf("%w: presentation has no slides", domain.ErrOutOfRange)
	}

	switch spec.kind {
	case kindAll:
		return sequence(1, totalSlides), nil

	case kindSingle:
		if err := checkBounds(spec.one, totalSlides); err != nil {
			return nil, err
		}
		return []int{spec.one}, nil

	case kindList:
		return dedupeSorted(spec.many, totalSlides)

	default:
		return r.resolveExpr(spec.expr, totalSlides)
	}
}

func (r *Resolver) resolveExpr(expr string, totalSlides int) ([]int, error) {
	parsed, err := parseExpr(expr)
	if err != nil {
		return nil, err
	}

	switch p := parsed.(type) {
	case parsedList:
		return dedupeSorted(p, totalSlides)

	case parsedSlice:
		start, end := 1, totalSlides
		if p.start != nil {
			start = *p.start
		}
		if p.end != nil {
			end = *p.end
		}
		if start > totalSlides {
			return nil, fmt.Errorf("%w: start slide %d is beyond total slides (%d)",
				domain.ErrOutOfRange, start, totalSlides)
		}
		if end > totalSlides {
			r.logger.Warn("slice end beyond total slides, clamping",
				zap.Int("end", end),
				zap.Int("total_slides", totalSlides),
			)
			end = totalSlides
		}
		if start > end {
			return nil, fmt.Errorf("%w: start slide (%d) cannot be greater than end slide (%d)",
				domain.ErrInvalidRange, start, end)
		}
		return sequence(start, end), nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSyntax, expr)
	}
}

// parsedSlice is "start:end" with either bound optional.
type parsedSlice struct {
	start *int
	end   *int
}

// parsedList is an explicit set of slide numbers.
type parsedList []int

// parseExpr parses the string mini-language without range-checking
// against a slide count. Bound positivity is checked here because a
// non-positive literal can never be valid for any presentation.
func parseExpr(expr string) (any, error) {
	spec := strings.TrimSpace(expr)
	if strings.HasPrefix(spec, "[") && strings.HasSuffix(spec, "]") {
		spec = strings.TrimSpace(spec[1 : len(spec)-1])
	}
	if spec == "" {
		return parsedSlice{}, nil
	}

	if strings.Contains(spec, ":") {
		return parseSlice(spec)
	}
	if strings.Contains(spec, ",") {
		return parseList(spec)
	}

	n, err := strconv.Atoi(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSyntax, expr)
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: slide number must be positive, got %d", domain.ErrOutOfRange, n)
	}
	return parsedList{n}, nil
}

func parseSlice(spec string) (parsedSlice, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 2 {
		return parsedSlice{}, fmt.Errorf("%w: %q, expected \"start:end\"", domain.ErrInvalidSyntax, spec)
	}

	var out parsedSlice
	for i, name := range []string{"start", "end"} {
		p := strings.TrimSpace(parts[i])
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return parsedSlice{}, fmt.Errorf("%w: invalid %s slide number %q", domain.ErrInvalidSyntax, name, p)
		}
		if n < 1 {
			return parsedSlice{}, fmt.Errorf("%w: %s slide number must be positive, got %d",
				domain.ErrOutOfRange, name, n)
		}
		if i == 0 {
			out.start = &n
		} else {
			out.end = &n
		}
	}
	return out, nil
}

func parseList(spec string) (parsedList, error) {
	var nums parsedList
	for _, part := range strings.Split(spec, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid slide number %q in list", domain.ErrInvalidSyntax, p)
		}
		if n < 1 {
			return nil, fmt.Errorf("%w: slide number must be positive, got %d", domain.ErrOutOfRange, n)
		}
		nums = append(nums, n)
	}
	return nums, nil
}

func checkBounds(n, totalSlides int) error {
	if n < 1 || n > totalSlides {
		return fmt.Errorf("%w: slide number %d is out of range (1-%d)", domain.ErrOutOfRange, n, totalSlides)
	}
	return nil
}

func dedupeSorted(nums []int, totalSlides int) ([]int, error) {
	seen := make(map[int]struct{}, len(nums))
	out := make([]int, 0, len(nums))
	for _, n := range nums {
		if err := checkBounds(n, totalSlides); err != nil {
			return nil, err
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Ints(out)
	return out, nil
}

func sequence(start, end int) []int {
	out := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		out = append(out, n)
	}
	return out
}
