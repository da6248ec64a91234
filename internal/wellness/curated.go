package wellness

import (
	"fmt"

	"mindfuel/internal/types"
)

// CuratedApp is an entry of the curated harmful-apps table.
type CuratedApp struct {
	Identifier      string          `json:"identifier"`
	Name            string          `json:"name"`
	Category        types.Category  `json:"category"`
	HarmLevel       types.HarmLevel `json:"harm_level"`
	Issues          []string        `json:"issues"`
	Recommendations []string        `json:"recommendations"`
	WellnessWeight  float64         `json:"wellness_weight"`
}

// ThresholdMinutes is the daily usage above which the entry alerts.
func (a CuratedApp) ThresholdMinutes() float64 {
	return HarmThreshold(a.HarmLevel)
}

// CuratedApps is keyed by exact identifier.
type CuratedApps map[string]CuratedApp

// Lookup returns the curated entry for an exact identifier.
func (c CuratedApps) Lookup(identifier string) (CuratedApp, bool) {
	a, ok := c[identifier]
	return a, ok
}

// HarmThreshold returns the minutes of daily use tolerated for a harm level.
// Unknown levels are treated as low.
func HarmThreshold(level types.HarmLevel) float64 {
	switch level {
	case types.HarmCritical:
		return 30
	case types.HarmHigh:
		return 60
	case types.HarmMedium:
		return 90
	default:
		return 120
	}
}

func curatedDescription(name string, minutes float64) string {
	return fmt.Sprintf("You've spent %d minutes on %s today. This app may be impacting your digital wellness.",
		int(minutes), name)
}

// DefaultCuratedApps returns a fresh copy of the built-in curated table.
func DefaultCuratedApps() CuratedApps {
	apps := []CuratedApp{
		{
			Identifier: "com.snapchat.snapchat",
			Name:       "Snapchat",
			Category:   types.CategorySocial,
			HarmLevel:  types.HarmHigh,
			Issues: []string{
				"Addictive streak system keeps you coming back",
				"FOMO from friends' stories and snaps",
				"Promotes superficial interactions",
				"Can impact self-esteem through appearance filters",
			},
			Recommendations: []string{
				"Turn off streak notifications",
				"Limit to 30 minutes per day",
				"Use without filters to maintain realistic self-image",
				"Consider deleting if usage exceeds 2 hours daily",
			},
			WellnessWeight: 2.5,
		},
		{
			Identifier: "com.instagram.instagram",
			Name:       "Instagram",
			Category:   types.CategorySocial,
			HarmLevel:  types.HarmHigh,
			Issues: []string{
				"Comparison culture can harm mental health",
				"Infinite scroll design promotes excessive usage",
				"Curated content creates unrealistic expectations",
				"Can trigger anxiety and depression",
			},
			Recommendations: []string{
				"Unfollow accounts that make you feel bad",
				"Use time limits (max 45 minutes/day)",
				"Turn off read receipts and activity status",
				"Follow accounts focused on your interests, not lifestyle",
			},
			WellnessWeight: 3.0,
		},
		{
			Identifier: "com.tiktok.tiktok",
			Name:       "TikTok",
			Category:   types.CategorySocial,
			HarmLevel:  types.HarmCritical,
			Issues: []string{
				"Extremely addictive algorithm",
				"Can waste hours without realizing",
				"May expose to inappropriate content",
				"Disrupts sleep patterns and attention span",
			},
			Recommendations: []string{
				"Set strict daily time limits (max 30 minutes)",
				"Use app timers and stick to them",
				"Avoid using before bedtime",
				"Consider taking regular breaks from the app",
			},
			WellnessWeight: 1.5,
		},
		{
			Identifier: "com.twitter.twitter",
			Name:       "Twitter/X",
			Category:   types.CategorySocial,
			HarmLevel:  types.HarmMedium,
			Issues: []string{
				"Can increase anxiety with constant news updates",
				"Promotes mindless scrolling",
				"Echo chambers can polarize opinions",
				"Negative content can impact mood",
			},
			Recommendations: []string{
				"Curate your feed to include positive accounts",
				"Turn off push notifications",
				"Use lists instead of main timeline",
				"Take breaks during stressful news cycles",
			},
			WellnessWeight: 4.0,
		},
	}

	out := make(CuratedApps, len(apps))
	for _, a := range apps {
		out[a.Identifier] = a
	}
	return out
}
