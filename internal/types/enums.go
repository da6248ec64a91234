package types

// Category is the functional bucket an application is filed under. The
// category drives both the daily score (indirectly, through the weight the
// classifier assigns) and which alert rule applies to an observation.
type Category string

const (
	CategorySocial        Category = "social"
	CategoryEntertainment Category = "entertainment"
	CategoryProductivity  Category = "productivity"
	CategoryEducation     Category = "education"
	CategoryHealth        Category = "health"
	CategoryNews          Category = "news"
	CategoryGames         Category = "games"
	CategoryShopping      Category = "shopping"
	CategoryUtilities     Category = "utilities"
	CategoryUnknown       Category = "unknown"
)

// AllCategories lists every valid Category in declaration order.
// Used by validators and by exhaustiveness tests over the alert rule table.
var AllCategories = []Category{
	CategorySocial,
	CategoryEntertainment,
	CategoryProductivity,
	CategoryEducation,
	CategoryHealth,
	CategoryNews,
	CategoryGames,
	CategoryShopping,
	CategoryUtilities,
	CategoryUnknown,
}

// Valid reports whether c is one of the declared categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable label shown in the app.
func (c Category) DisplayName() string {
	switch c {
	case CategorySocial:
		return "Social Media"
	case CategoryEntertainment:
		return "Entertainment"
	case CategoryProductivity:
		return "Productivity"
	case CategoryEducation:
		return "Education"
	case CategoryHealth:
		return "Health & Fitness"
	case CategoryNews:
		return "News"
	case CategoryGames:
		return "Games"
	case CategoryShopping:
		return "Shopping"
	case CategoryUtilities:
		return "Utilities"
	default:
		return "Unknown"
	}
}

// Impact returns the coarse wellness direction of the category.
func (c Category) Impact() WellnessImpact {
	switch c {
	case CategorySocial, CategoryEntertainment, CategoryGames:
		return ImpactNegative
	case CategoryEducation, CategoryHealth, CategoryProductivity:
		return ImpactPositive
	default:
		return ImpactNeutral
	}
}

// WellnessImpact is the coarse direction a category pushes wellbeing.
type WellnessImpact string

const (
	ImpactPositive WellnessImpact = "positive"
	ImpactNeutral  WellnessImpact = "neutral"
	ImpactNegative WellnessImpact = "negative"
)

// Severity is the urgency tier of an alert. Severities are totally ordered:
// Low < Medium < High < Critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// AllSeverities lists the severities in ascending order.
var AllSeverities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank returns the ordinal position of the severity (Low=1 .. Critical=4).
// Unknown values rank 0 so they sort below every real severity.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Valid reports whether s is a declared severity.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// AtLeast reports whether s is the same as or more urgent than other.
func (s Severity) AtLeast(other Severity) bool { return s.Rank() >= other.Rank() }

// Interrupts reports whether alerts of this severity are surfaced to the user
// immediately (pushed) rather than only listed.
func (s Severity) Interrupts() bool { return s.AtLeast(SeverityHigh) }

// HarmLevel is the per-app risk tier used by the curated harmful-apps profile.
type HarmLevel string

const (
	HarmLow      HarmLevel = "low"
	HarmMedium   HarmLevel = "medium"
	HarmHigh     HarmLevel = "high"
	HarmCritical HarmLevel = "critical"
)

// Description returns the label shown next to curated app info.
func (h HarmLevel) Description() string {
	switch h {
	case HarmLow:
		return "Mild Concern"
	case HarmMedium:
		return "Moderate Risk"
	case HarmHigh:
		return "High Risk"
	case HarmCritical:
		return "Critical Risk"
	default:
		return "Unknown Risk"
	}
}

// Severity maps a harm level one-to-one onto the alert severity ladder.
func (h HarmLevel) Severity() Severity {
	switch h {
	case HarmMedium:
		return SeverityMedium
	case HarmHigh:
		return SeverityHigh
	case HarmCritical:
		return SeverityCritical
	default:
		return SeverityLow
	}
}
