package wellness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mindfuel/internal/types"
)

func TestSummarize(t *testing.T) {
	e := newTestEvaluator()
	day := []types.UsageObservation{
		obs("com.apple.Maps", "Maps", types.CategoryUtilities, 7.5, 600),
		obs("com.calm.Calm", "Calm", types.CategoryHealth, 9, 1200),
		obs("com.roblox.Roblox", "Roblox", types.CategoryGames, 3, 5400),
		obs("com.cnn.CNN", "", types.CategoryNews, 4.5, 1200),
	}
	alerts := e.Alerts(day)

	s := e.Summarize(testDay.Add(5*time.Hour), day, alerts)

	assert.Equal(t, testDay, s.Date)
	// Ties on time break by identifier; missing names fall back to the identifier.
	assert.Equal(t, []string{"Roblox", "Calm", "com.cnn.CNN"}, s.MostUsedApps)
	assert.Equal(t, 1200.0, s.PositiveAppsSeconds)
	assert.Equal(t, 5400.0, s.NegativeAppsSeconds)
	assert.Equal(t, 8400.0, s.TotalScreenTimeSeconds)
	assert.Equal(t, "2h 20m", s.TotalScreenTime)
	assert.Equal(t, len(alerts), s.AlertsTriggered)
	assert.Equal(t, e.ComputeDailyScore(day).Score, s.Score)
}

func TestSummarize_Empty(t *testing.T) {
	e := newTestEvaluator()
	s := e.Summarize(testDay, nil, nil)

	assert.Equal(t, 5.0, s.Score)
	assert.Equal(t, []string{}, s.MostUsedApps)
	assert.Equal(t, "0m", s.TotalScreenTime)
	assert.Zero(t, s.AlertsTriggered)
}
