package wellness

import (
	"strings"

	"mindfuel/internal/types"
)

// Weight bounds. 0 is maximally harmful, 10 maximally beneficial.
const (
	MinWeight     = 0.0
	MaxWeight     = 10.0
	NeutralWeight = 5.0
)

// KeywordRule maps display-name substrings to a classification.
type KeywordRule struct {
	Keywords []string
	Category types.Category
	Weight   float64
}

// DefaultKeywordRules returns the fallback rules in evaluation order.
// The first rule with a matching keyword wins.
func DefaultKeywordRules() []KeywordRule {
	return []KeywordRule{
		{Keywords: []string{"social", "chat", "message"}, Category: types.CategorySocial, Weight: 4.0},
		{Keywords: []string{"game", "play"}, Category: types.CategoryGames, Weight: 3.0},
		{Keywords: []string{"news"}, Category: types.CategoryNews, Weight: 5.0},
		{Keywords: []string{"productivity", "work", "office"}, Category: types.CategoryProductivity, Weight: 7.5},
		{Keywords: []string{"education", "learn"}, Category: types.CategoryEducation, Weight: 8.0},
		{Keywords: []string{"health", "fitness"}, Category: types.CategoryHealth, Weight: 8.0},
	}
}

// Classifier maps an app to a category and a baseline wellness weight.
type Classifier struct {
	catalog Catalog
	rules   []KeywordRule
}

// NewClassifier builds a classifier over catalog. A nil catalog uses
// DefaultCatalog.
func NewClassifier(catalog Catalog) *Classifier {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Classifier{catalog: catalog, rules: DefaultKeywordRules()}
}

// Classify returns the category and weight for an app. It looks up the exact
// identifier first, then matches the display name case-insensitively against
// the keyword rules, and finally falls back to Unknown with a neutral weight.
// It never fails.
func (c *Classifier) Classify(appIdentifier, displayName string) (types.Category, float64) {
	if e, ok := c.catalog.Lookup(appIdentifier); ok {
		return e.Category, e.Weight
	}

	name := strings.ToLower(displayName)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(name, kw) {
				return rule.Category, rule.Weight
			}
		}
	}
	return types.CategoryUnknown, NeutralWeight
}

// Size returns the number of identifiers in the catalog.
func (c *Classifier) Size() int {
	return len(c.catalog)
}
