package wellness

import (
	"mindfuel/internal/types"
)

// Composition decides how the category and curated profiles combine when
// both have an opinion about the same observation.
type Composition string

const (
	// ComposeCategoryOnly runs only the category threshold rules.
	ComposeCategoryOnly Composition = "category_only"
	// ComposeCuratedOnly runs only the curated harmful-apps rules.
	ComposeCuratedOnly Composition = "curated_only"
	// ComposeUnion runs both profiles independently; an observation may
	// produce two alerts.
	ComposeUnion Composition = "union"
	// ComposeCuratedFirst uses the curated profile for listed identifiers
	// and the category profile for everything else.
	ComposeCuratedFirst Composition = "curated_first"
	// ComposeMostSevere runs both and keeps the more severe alert per
	// observation. Ties go to the curated alert.
	ComposeMostSevere Composition = "most_severe"
)

// DefaultComposition is used when no policy is configured.
const DefaultComposition = ComposeMostSevere

// AllCompositions lists the accepted policies.
var AllCompositions = []Composition{
	ComposeCategoryOnly,
	ComposeCuratedOnly,
	ComposeUnion,
	ComposeCuratedFirst,
	ComposeMostSevere,
}

// Valid reports whether c is a known policy.
func (c Composition) Valid() bool {
	for _, known := range AllCompositions {
		if c == known {
			return true
		}
	}
	return false
}

// ParseComposition validates a policy name. Empty selects the default.
func ParseComposition(s string) (Composition, error) {
	if s == "" {
		return DefaultComposition, nil
	}
	c := Composition(s)
	if !c.Valid() {
		return "", types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidPolicy,
			"unknown alert composition policy", nil,
			map[string]any{"value": s, "allowed": AllCompositions})
	}
	return c, nil
}

// compose merges the per-observation outputs of the two profiles.
func (c Composition) compose(category, curated *types.Alert, listed bool) []types.Alert {
	var out []types.Alert
	add := func(a *types.Alert) {
		if a != nil {
			out = append(out, *a)
		}
	}

	switch c {
	case ComposeCategoryOnly:
		add(category)
	case ComposeCuratedOnly:
		add(curated)
	case ComposeUnion:
		add(category)
		add(curated)
	case ComposeCuratedFirst:
		if listed {
			add(curated)
		} else {
			add(category)
		}
	default:
		switch {
		case curated == nil:
			add(category)
		case category == nil || curated.Severity.Rank() >= category.Severity.Rank():
			add(curated)
		default:
			add(category)
		}
	}
	return out
}
