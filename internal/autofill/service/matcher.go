package service

import (
	"math"
	"strings"

	"github.com/rs/zerolog"

	"autofill-service/internal/autofill/model"
)

// DefaultThreshold is the minimum similarity a fuzzy candidate needs.
const DefaultThreshold = 0.8

var fold = model.Fold

// Matcher resolves a logical field name to one control. It keeps no state
// between calls.
type Matcher struct {
	mapping   model.FieldMapping
	threshold float64
	logger    zerolog.Logger
}

// NewMatcher builds a Matcher. A threshold outside (0..1], or NaN, falls
// back to DefaultThreshold.
func NewMatcher(mapping model.FieldMapping, threshold float64, logger zerolog.Logger) *Matcher {
	if math.IsNaN(threshold) || threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{
		mapping:   mapping,
		threshold: threshold,
		logger:    logger.With().Str("component", "matcher").Logger(),
	}
}

func (m *Matcher) Mapping() model.FieldMapping { return m.mapping }
func (m *Matcher) Threshold() float64          { return m.threshold }

// FindMatch returns the best control for field, or false when the field has
// no mapping or no control qualifies.
//
// The first control (in slice order) with an exact hit wins outright. Only if
// no control hits exactly is the fuzzy pass run; its best score is replaced
// only on a strictly greater score, so ties go to the earlier control.
func (m *Matcher) FindMatch(field string, controls []model.Control) (model.MatchResult, bool) {
	labels, ok := m.mapping.Labels(field)
	if !ok {
		m.logger.Warn().Str("field", field).Msg("no mapping for field")
		return model.MatchResult{}, false
	}

	attrs := make([][]string, len(controls))
	for i, c := range controls {
		attrs[i] = c.View.Attributes()
		if exactMatch(attrs[i], labels) {
			return model.MatchResult{Control: c, Type: model.MatchExact}, true
		}
	}

	best := -1
	bestScore := 0.0
	for i := range controls {
		score := fuzzyScore(attrs[i], labels)
		if score >= m.threshold && score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return model.MatchResult{}, false
	}
	return model.MatchResult{Control: controls[best], Type: model.MatchFuzzy, Score: bestScore}, true
}

// exactMatch: some label equals or is contained in some attribute.
func exactMatch(attrs, labels []string) bool {
	for _, l := range labels {
		for _, a := range attrs {
			if a == l || strings.Contains(a, l) {
				return true
			}
		}
	}
	return false
}

// fuzzyScore is the best label/attribute similarity; empty attributes are
// skipped.
func fuzzyScore(attrs, labels []string) float64 {
	best := 0.0
	for _, l := range labels {
		for _, a := range attrs {
			if a == "" {
				continue
			}
			if s := Similarity(l, a); s > best {
				best = s
			}
		}
	}
	return best
}
