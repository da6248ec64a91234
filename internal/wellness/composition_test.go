package wellness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindfuel/internal/types"
)

type composedAlert struct {
	profile  types.AlertProfile
	severity types.Severity
}

func composed(alerts []types.Alert) []composedAlert {
	out := make([]composedAlert, len(alerts))
	for i, a := range alerts {
		out[i] = composedAlert{a.Profile, a.Severity}
	}
	return out
}

func TestAlerts_CompositionPolicies(t *testing.T) {
	// 250 minutes of the curated Snapchat entry: category says Critical (>240),
	// curated says High (>60).
	heavy := obs("com.snapchat.snapchat", "Snapchat", types.CategorySocial, 2.5, minutes(250))
	// 100 minutes: below the social threshold, above the curated one.
	moderate := obs("com.snapchat.snapchat", "Snapchat", types.CategorySocial, 2.5, minutes(100))
	// 130 minutes of Twitter/X: category Medium, curated Medium.
	tie := obs("com.twitter.twitter", "Twitter", types.CategorySocial, 4, minutes(130))
	// An unlisted social app over threshold.
	unlisted := obs("com.facebook.Facebook", "Facebook", types.CategorySocial, 2, minutes(200))

	tests := []struct {
		policy Composition
		in     types.UsageObservation
		want   []composedAlert
	}{
		{ComposeMostSevere, heavy, []composedAlert{{types.ProfileCategory, types.SeverityCritical}}},
		{ComposeMostSevere, moderate, []composedAlert{{types.ProfileCurated, types.SeverityHigh}}},
		{ComposeMostSevere, tie, []composedAlert{{types.ProfileCurated, types.SeverityMedium}}},
		{ComposeMostSevere, unlisted, []composedAlert{{types.ProfileCategory, types.SeverityHigh}}},

		{ComposeUnion, heavy, []composedAlert{
			{types.ProfileCategory, types.SeverityCritical},
			{types.ProfileCurated, types.SeverityHigh},
		}},
		{ComposeUnion, moderate, []composedAlert{{types.ProfileCurated, types.SeverityHigh}}},

		{ComposeCuratedFirst, heavy, []composedAlert{{types.ProfileCurated, types.SeverityHigh}}},
		{ComposeCuratedFirst, unlisted, []composedAlert{{types.ProfileCategory, types.SeverityHigh}}},

		{ComposeCategoryOnly, heavy, []composedAlert{{types.ProfileCategory, types.SeverityCritical}}},
		{ComposeCategoryOnly, moderate, []composedAlert{}},

		{ComposeCuratedOnly, heavy, []composedAlert{{types.ProfileCurated, types.SeverityHigh}}},
		{ComposeCuratedOnly, unlisted, []composedAlert{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.policy)+"/"+tt.in.AppIdentifier, func(t *testing.T) {
			e := newTestEvaluator(WithComposition(tt.policy))
			got := composed(e.Alerts([]types.UsageObservation{tt.in}))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlerts_CuratedFirstWithQuietCurated(t *testing.T) {
	// Listed but under the curated threshold: curated_first stays silent even
	// though the category rule would fire.
	custom := CuratedApps{"com.example.Feed": {Identifier: "com.example.Feed", Name: "Feed", HarmLevel: types.HarmLow}}
	e := newTestEvaluator(WithCuratedApps(custom), WithComposition(ComposeCuratedFirst))

	alerts := e.Alerts([]types.UsageObservation{obs("com.example.Feed", "Feed", types.CategorySocial, 2, minutes(119))})
	assert.Empty(t, alerts)
}

func TestAlerts_PreservesInputOrder(t *testing.T) {
	e := newTestEvaluator()
	alerts := e.Alerts([]types.UsageObservation{
		obs("com.king.CandyCrushSaga", "Candy Crush", types.CategoryGames, 2.5, minutes(100)),
		obs("com.hulu.Hulu", "Hulu", types.CategoryEntertainment, 4, minutes(320)),
		obs("com.notion.Notion", "Notion", types.CategoryProductivity, 9, minutes(600)),
		obs("com.tiktok.tiktok", "TikTok", types.CategorySocial, 1.5, minutes(45)),
	})

	require.Len(t, alerts, 3)
	assert.Equal(t, "com.king.CandyCrushSaga", alerts[0].AppIdentifier)
	assert.Equal(t, "com.hulu.Hulu", alerts[1].AppIdentifier)
	assert.Equal(t, "com.tiktok.tiktok", alerts[2].AppIdentifier)
	assert.Equal(t, types.SeverityCritical, alerts[2].Severity)
}

func TestParseComposition(t *testing.T) {
	c, err := ParseComposition("")
	require.NoError(t, err)
	assert.Equal(t, ComposeMostSevere, c)

	for _, name := range []string{"category_only", "curated_only", "union", "curated_first", "most_severe"} {
		c, err := ParseComposition(name)
		require.NoError(t, err)
		assert.Equal(t, Composition(name), c)
	}

	_, err = ParseComposition("loudest")
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeValidationInvalidPolicy, appErr.Code)
}
