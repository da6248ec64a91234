package usage

import (
	"cmp"
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"mindfuel/internal/types"
	"mindfuel/internal/wellness"
)

type mockApp struct {
	identifier string
	name       string
	category   types.Category
	weight     float64
	minMinutes int
	maxMinutes int
}

// realisticApps is a typical phone day; minutes are drawn uniformly from
// [minMinutes, maxMinutes].
var realisticApps = []mockApp{
	{"com.snapchat.snapchat", "Snapchat", types.CategorySocial, 2.0, 45, 180},
	{"com.instagram.instagram", "Instagram", types.CategorySocial, 2.5, 30, 120},
	{"com.tiktok.tiktok", "TikTok", types.CategorySocial, 1.5, 60, 200},
	{"com.apple.safari", "Safari", types.CategoryProductivity, 6.0, 20, 90},
	{"com.apple.messages", "Messages", types.CategorySocial, 4.0, 15, 60},
	{"com.youtube.youtube", "YouTube", types.CategoryEntertainment, 3.5, 30, 150},
	{"com.whatsapp.whatsapp", "WhatsApp", types.CategorySocial, 4.0, 10, 45},
	{"com.apple.preferences", "Settings", types.CategoryUtilities, 7.0, 5, 20},
	{"com.apple.photos", "Photos", types.CategoryEntertainment, 5.0, 10, 40},
	{"com.twitter.twitter", "Twitter", types.CategorySocial, 3.0, 20, 90},
}

// RealisticCatalog classifies the device-style identifiers the realistic
// mock emits. They are lowercase and miss DefaultCatalog, so callers merge
// this beneath their own catalog.
func RealisticCatalog() wellness.Catalog {
	c := make(wellness.Catalog, len(realisticApps))
	for _, app := range realisticApps {
		c[app.identifier] = wellness.CatalogEntry{Category: app.category, Weight: app.weight}
	}
	return c
}

// MockSource serves synthetic usage. In fixed mode every day returns the same
// five-app dataset; in realistic mode each call draws a new ten-app day.
type MockSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFixedSource returns a MockSource that always yields FixedDay.
func NewFixedSource() *MockSource {
	return &MockSource{}
}

// NewRealisticSource returns a MockSource drawing from rng. A nil rng is
// seeded randomly.
func NewRealisticSource(rng *rand.Rand) *MockSource {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &MockSource{rng: rng}
}

// Realistic reports whether the source randomizes its data.
func (m *MockSource) Realistic() bool {
	return m.rng != nil
}

func (m *MockSource) DailyUsage(ctx context.Context, date time.Time) ([]types.RawUsage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.rng == nil {
		return FixedDay(date), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return realisticDay(m.rng, date), nil
}

// FixedDay returns the reference dataset: about 6h20m of screen time across
// five apps.
func FixedDay(date time.Time) []types.RawUsage {
	day := types.DayStart(date)
	return []types.RawUsage{
		{AppIdentifier: "com.snapchat.Snapchat", DisplayName: "Snapchat", TimeSpentSeconds: 7200, SessionCount: 12, Date: day},
		{AppIdentifier: "com.instagram.Instagram", DisplayName: "Instagram", TimeSpentSeconds: 5400, SessionCount: 8, Date: day},
		{AppIdentifier: "com.youtube.YouTube", DisplayName: "YouTube", TimeSpentSeconds: 4800, SessionCount: 6, Date: day},
		{AppIdentifier: "com.notion.Notion", DisplayName: "Notion", TimeSpentSeconds: 3600, SessionCount: 4, Date: day},
		{AppIdentifier: "com.duolingo.Duolingo", DisplayName: "Duolingo", TimeSpentSeconds: 1800, SessionCount: 2, Date: day},
	}
}

func realisticDay(rng *rand.Rand, date time.Time) []types.RawUsage {
	day := types.DayStart(date)
	out := make([]types.RawUsage, 0, len(realisticApps))
	for _, app := range realisticApps {
		mins := app.minMinutes + rng.IntN(app.maxMinutes-app.minMinutes+1)
		out = append(out, types.RawUsage{
			AppIdentifier:    app.identifier,
			DisplayName:      app.name,
			TimeSpentSeconds: float64(mins * 60),
			SessionCount:     1 + rng.IntN(mins/10+1),
			Date:             day,
		})
	}
	slices.SortStableFunc(out, func(a, b types.RawUsage) int {
		return cmp.Compare(b.TimeSpentSeconds, a.TimeSpentSeconds)
	})
	return out
}
