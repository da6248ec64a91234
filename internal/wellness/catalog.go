// Package wellness implements the MindFuel scoring engine: app classification,
// the time-weighted daily wellness score, and the two alerting profiles
// (category thresholds and the curated harmful-apps table).
//
// Everything in this package is pure computation over its inputs. Tables are
// immutable after construction, so a Classifier or Evaluator may be shared by
// concurrent callers.
package wellness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"mindfuel/internal/types"
)

// CatalogEntry is the classification of a known app identifier.
type CatalogEntry struct {
	Category types.Category `json:"category" yaml:"category"`
	Weight   float64        `json:"weight" yaml:"weight"`
}

// Catalog maps exact app identifiers to their classification.
type Catalog map[string]CatalogEntry

// Lookup returns the entry for an exact identifier.
func (c Catalog) Lookup(identifier string) (CatalogEntry, bool) {
	e, ok := c[identifier]
	return e, ok
}

// Merge returns a new catalog with overlay entries replacing those in c.
func (c Catalog) Merge(overlay Catalog) Catalog {
	out := make(Catalog, len(c)+len(overlay))
	for id, e := range c {
		out[id] = e
	}
	for id, e := range overlay {
		out[id] = e
	}
	return out
}

// DefaultCatalog returns a fresh copy of the built-in identifier table.
func DefaultCatalog() Catalog {
	c := make(Catalog, len(defaultEntries))
	for _, e := range defaultEntries {
		c[e.id] = CatalogEntry{Category: e.category, Weight: e.weight}
	}
	return c
}

var defaultEntries = []struct {
	id       string
	category types.Category
	weight   float64
}{
	// Social Media
	{"com.snapchat.Snapchat", types.CategorySocial, 2.0},
	{"com.instagram.Instagram", types.CategorySocial, 2.5},
	{"com.facebook.Facebook", types.CategorySocial, 2.0},
	{"com.tiktok.TikTok", types.CategorySocial, 1.5},
	{"com.twitter.Twitter", types.CategorySocial, 3.0},
	{"com.linkedin.LinkedIn", types.CategorySocial, 6.0},
	{"com.reddit.Reddit", types.CategorySocial, 3.5},
	{"com.discord.Discord", types.CategorySocial, 4.0},

	// Entertainment
	{"com.netflix.Netflix", types.CategoryEntertainment, 4.0},
	{"com.youtube.YouTube", types.CategoryEntertainment, 3.5},
	{"com.spotify.Spotify", types.CategoryEntertainment, 6.0},
	{"com.amazon.PrimeVideo", types.CategoryEntertainment, 4.0},
	{"com.hulu.Hulu", types.CategoryEntertainment, 4.0},

	// Games
	{"com.supercell.ClashOfClans", types.CategoryGames, 2.0},
	{"com.king.CandyCrushSaga", types.CategoryGames, 2.5},
	{"com.roblox.Roblox", types.CategoryGames, 3.0},
	{"com.epicgames.Fortnite", types.CategoryGames, 2.0},

	// Productivity
	{"com.apple.Notes", types.CategoryProductivity, 8.0},
	{"com.microsoft.Office", types.CategoryProductivity, 8.5},
	{"com.google.Gmail", types.CategoryProductivity, 7.0},
	{"com.slack.Slack", types.CategoryProductivity, 7.5},
	{"com.notion.Notion", types.CategoryProductivity, 9.0},
	{"com.todoist.Todoist", types.CategoryProductivity, 8.5},
	{"com.evernote.Evernote", types.CategoryProductivity, 8.0},

	// Education
	{"com.duolingo.Duolingo", types.CategoryEducation, 9.0},
	{"com.khanacademy.KhanAcademy", types.CategoryEducation, 9.5},
	{"com.coursera.Coursera", types.CategoryEducation, 9.0},
	{"com.udemy.Udemy", types.CategoryEducation, 8.5},
	{"com.apple.Books", types.CategoryEducation, 8.0},
	{"com.kindle.Kindle", types.CategoryEducation, 8.5},

	// Health & Fitness
	{"com.apple.Health", types.CategoryHealth, 9.0},
	{"com.myfitnesspal.MyFitnessPal", types.CategoryHealth, 8.0},
	{"com.nike.NikeRun", types.CategoryHealth, 8.5},
	{"com.headspace.Headspace", types.CategoryHealth, 9.0},
	{"com.calm.Calm", types.CategoryHealth, 9.0},

	// Utilities
	{"com.apple.calculator", types.CategoryUtilities, 7.0},
	{"com.apple.weather", types.CategoryUtilities, 7.0},
	{"com.apple.Maps", types.CategoryUtilities, 7.5},
	{"com.uber.Uber", types.CategoryUtilities, 6.0},

	// News
	{"com.apple.news", types.CategoryNews, 5.0},
	{"com.cnn.CNN", types.CategoryNews, 4.5},
	{"com.nytimes.NYTimes", types.CategoryNews, 6.0},
}

// catalogFile is the on-disk YAML shape:
//
//	replace_defaults: false
//	apps:
//	  - identifier: com.example.Focus
//	    category: productivity
//	    weight: 8.5
type catalogFile struct {
	ReplaceDefaults bool `yaml:"replace_defaults"`
	Apps            []struct {
		Identifier string         `yaml:"identifier"`
		Category   types.Category `yaml:"category"`
		Weight     float64        `yaml:"weight"`
	} `yaml:"apps"`
}

// ParseCatalog decodes a YAML catalog. Unless the document sets
// replace_defaults, its entries are overlaid onto DefaultCatalog.
func ParseCatalog(data []byte) (Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("wellness: parse catalog: %w", err)
	}

	overlay := make(Catalog, len(f.Apps))
	for i, app := range f.Apps {
		if app.Identifier == "" {
			return nil, fmt.Errorf("wellness: catalog entry %d: identifier is required", i)
		}
		if !app.Category.Valid() {
			return nil, fmt.Errorf("wellness: catalog entry %q: unknown category %q", app.Identifier, app.Category)
		}
		if app.Weight < MinWeight || app.Weight > MaxWeight {
			return nil, fmt.Errorf("wellness: catalog entry %q: weight %.2f outside [%.0f, %.0f]",
				app.Identifier, app.Weight, MinWeight, MaxWeight)
		}
		overlay[app.Identifier] = CatalogEntry{Category: app.Category, Weight: app.Weight}
	}

	if f.ReplaceDefaults {
		return overlay, nil
	}
	return DefaultCatalog().Merge(overlay), nil
}

// LoadCatalogFile reads and parses a YAML catalog from path.
func LoadCatalogFile(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("wellness: read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}
