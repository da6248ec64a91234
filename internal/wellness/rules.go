package wellness

import (
	"fmt"

	"mindfuel/internal/types"
)

// categoryRule is the alert rule attached to a category. Usage strictly above
// thresholdMinutes triggers exactly one alert whose severity comes from the
// rule's ladder.
type categoryRule struct {
	thresholdMinutes float64
	ladder           []severityStep
	title            string
	description      func(name string, minutes float64) string
	recommendations  func(name string) types.Recommendations
}

// severityStep assigns severity when minutes exceed above. Steps are ordered
// from the highest bound down; the last step has above equal to the threshold.
type severityStep struct {
	above    float64
	severity types.Severity
}

func (r categoryRule) severityFor(minutes float64) types.Severity {
	for _, step := range r.ladder {
		if minutes > step.above {
			return step.severity
		}
	}
	return r.ladder[len(r.ladder)-1].severity
}

var (
	socialRule = categoryRule{
		thresholdMinutes: 120,
		ladder: []severityStep{
			{240, types.SeverityCritical},
			{180, types.SeverityHigh},
			{120, types.SeverityMedium},
		},
		title: "Excessive Social Media Usage",
		description: func(name string, minutes float64) string {
			return fmt.Sprintf("You've spent %.1f minutes on %s today. "+
				"Extended social media use can negatively impact your mental health, sleep quality, and productivity. "+
				"Studies show that excessive social media use is linked to increased anxiety, depression, and reduced life satisfaction.",
				minutes, name)
		},
		recommendations: func(name string) types.Recommendations {
			return types.Recommendations{
				"Consider setting a daily time limit for " + name,
				"Try replacing some social media time with physical activities",
				"Use 'Do Not Disturb' mode during work or study hours",
				"Engage with friends and family in person instead",
				"Practice mindfulness or meditation for 10 minutes instead",
			}
		},
	}

	gamingRule = categoryRule{
		thresholdMinutes: 90,
		ladder: []severityStep{
			{180, types.SeverityCritical},
			{90, types.SeverityHigh},
		},
		title: "Extended Gaming Session",
		description: func(name string, minutes float64) string {
			return fmt.Sprintf("You've been gaming on %s for %.1f minutes today. "+
				"While gaming can be enjoyable, excessive gaming can lead to reduced physical activity, poor sleep patterns, and decreased social interaction. "+
				"Consider balancing your screen time with other activities.",
				name, minutes)
		},
		recommendations: fixedRecommendations(
			"Set gaming time limits and stick to them",
			"Take regular breaks every 30 minutes",
			"Try physical activities or outdoor games instead",
			"Use gaming time as a reward after completing tasks",
			"Consider educational or puzzle games that challenge your mind",
		),
	}

	entertainmentRule = categoryRule{
		thresholdMinutes: 180,
		ladder: []severityStep{
			{300, types.SeverityHigh},
			{180, types.SeverityMedium},
		},
		title: "High Entertainment Consumption",
		description: func(name string, minutes float64) string {
			return fmt.Sprintf("You've spent %.1f minutes consuming entertainment content on %s today. "+
				"While entertainment is important for relaxation, excessive consumption can lead to decreased productivity and reduced engagement in real-world activities.",
				minutes, name)
		},
		recommendations: fixedRecommendations(
			"Use entertainment apps mindfully - choose content intentionally",
			"Set specific times for entertainment consumption",
			"Try educational documentaries or podcasts instead",
			"Balance screen time with creative activities",
			"Consider reading a book or engaging in hobbies",
		),
	}
)

// ruleFor returns the alert rule for a category. Every category is listed so
// that adding one forces a decision here; the quiet categories never alert.
func ruleFor(c types.Category) (categoryRule, bool) {
	switch c {
	case types.CategorySocial:
		return socialRule, true
	case types.CategoryGames:
		return gamingRule, true
	case types.CategoryEntertainment:
		return entertainmentRule, true
	case types.CategoryProductivity,
		types.CategoryEducation,
		types.CategoryHealth,
		types.CategoryNews,
		types.CategoryShopping,
		types.CategoryUtilities,
		types.CategoryUnknown:
		return categoryRule{}, false
	default:
		return categoryRule{}, false
	}
}

func fixedRecommendations(recs ...string) func(string) types.Recommendations {
	return func(string) types.Recommendations {
		return append(types.Recommendations(nil), recs...)
	}
}
