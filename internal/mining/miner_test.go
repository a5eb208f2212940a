package mining

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/orbitlab/rocketminer/internal/model"
	"github.com/orbitlab/rocketminer/internal/store"
)

// spyStore counts loads so tests can assert that rejected parameters never
// reach the store.
type spyStore struct {
	launches  []*model.Launch
	providers []*model.LaunchServiceProvider
	err       error

	launchLoads, providerLoads int
}

func (s *spyStore) LoadLaunches(_ context.Context) ([]*model.Launch, error) {
	s.launchLoads++
	return s.launches, s.err
}

func (s *spyStore) LoadProviders(_ context.Context) ([]*model.LaunchServiceProvider, error) {
	s.providerLoads++
	return s.providers, s.err
}

type fixture struct {
	providers []*model.LaunchServiceProvider
	rockets   []*model.Rocket
	launches  []*model.Launch
}

// newFixture builds 3 providers, 5 rockets and 10 launches in 2017:
// ULA conducts 7 launches across 4 rockets, SpaceX 2, ESA 1.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}

	for _, p := range []struct {
		name    string
		year    int
		country string
	}{{"ULA", 1990, "USA"}, {"SpaceX", 2002, "USA"}, {"ESA", 1975, "Europe"}} {
		lsp, err := model.NewLaunchServiceProvider(p.name, p.year, p.country)
		if err != nil {
			t.Fatalf("provider %s: %v", p.name, err)
		}
		f.providers = append(f.providers, lsp)
	}

	rocketMaker := []int{0, 0, 0, 1, 1}
	for i, maker := range rocketMaker {
		r, err := model.NewRocket(fmt.Sprintf("rocket_%d", i), "USA", f.providers[maker])
		if err != nil {
			t.Fatalf("rocket %d: %v", i, err)
		}
		f.rockets = append(f.rockets, r)
	}

	outcomes := []model.LaunchOutcome{model.OutcomeSuccessful, model.OutcomeFailed, model.OutcomeUnknown}
	launchProvider := []int{0, 0, 0, 1, 2, 1, 0, 0, 0, 0}
	months := []time.Month{1, 6, 4, 3, 4, 11, 6, 5, 12, 5}
	launchRocket := []int{0, 0, 0, 0, 1, 1, 1, 2, 2, 3}
	launchOutcome := []int{0, 1, 0, 1, 0, 1, 0, 1, 2, 1}
	prices := []int64{-1, -1, 300, 4000, 500, -1, -1, -1, -1, 1000}

	for i := 0; i < 10; i++ {
		l := &model.Launch{
			ID:         fmt.Sprintf("launch_%d", i),
			LaunchDate: model.Date(2017, months[i], 1),
			LaunchSite: "VAFB",
			Orbit:      model.OrbitLEO,
			Outcome:    outcomes[launchOutcome[i]],
			Vehicle:    f.rockets[launchRocket[i]],
			Provider:   f.providers[launchProvider[i]],
		}
		if prices[i] >= 0 {
			l.Price = model.Priced(decimal.NewFromInt(prices[i]))
		}
		f.launches = append(f.launches, l)
	}
	return f
}

func (f *fixture) store() *spyStore {
	return &spyStore{launches: f.launches, providers: f.providers}
}

func newTestMiner(st store.RecordStore) *Miner {
	return NewMiner(st, WithClock(func() time.Time { return time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC) }))
}

func rocketNames(rs []*model.Rocket) []string {
	var out []string
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

func providerNames(ps []*model.LaunchServiceProvider) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return out
}

func launchIDs(ls []*model.Launch) []string {
	var out []string
	for _, l := range ls {
		out = append(out, l.ID)
	}
	return out
}

func TestQueries_RejectNonPositiveK(t *testing.T) {
	queries := map[string]func(m *Miner, k int) error{
		"most launched":  func(m *Miner, k int) error { _, err := m.MostLaunchedRockets(context.Background(), k); return err },
		"most reliable":  func(m *Miner, k int) error { _, err := m.MostReliableProviders(context.Background(), k); return err },
		"most recent":    func(m *Miner, k int) error { _, err := m.MostRecentLaunches(context.Background(), k); return err },
		"most expensive": func(m *Miner, k int) error { _, err := m.MostExpensiveLaunches(context.Background(), k); return err },
		"revenue":        func(m *Miner, k int) error { _, err := m.HighestRevenueProviders(context.Background(), k, 2017); return err },
		"history":        func(m *Miner, k int) error { _, err := m.ProvidersWithLongestHistory(context.Background(), k); return err },
		"countries":      func(m *Miner, k int) error { _, err := m.CountriesWithMostProviders(context.Background(), k); return err },
	}

	for name, query := range queries {
		for _, k := range []int{-2, -1, 0} {
			t.Run(fmt.Sprintf("%s/k=%d", name, k), func(t *testing.T) {
				st := newFixture(t).store()
				err := query(newTestMiner(st), k)

				if !errors.Is(err, ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				if err.Error() != "k must be greater than 0." {
					t.Errorf("unexpected message %q", err.Error())
				}
				if st.launchLoads+st.providerLoads != 0 {
					t.Errorf("store touched %d times before validation", st.launchLoads+st.providerLoads)
				}
			})
		}
	}
}

func TestMostLaunchedRockets(t *testing.T) {
	tests := []struct {
		k    int
		want []string
	}{
		{1, []string{"rocket_0"}},
		{2, []string{"rocket_0", "rocket_1"}},
		{3, []string{"rocket_0", "rocket_1", "rocket_2"}},
		{10, []string{"rocket_0", "rocket_1", "rocket_2", "rocket_3"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("k=%d", tt.k), func(t *testing.T) {
			st := newFixture(t).store()
			got, err := newTestMiner(st).MostLaunchedRockets(context.Background(), tt.k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, rocketNames(got)); diff != "" {
				t.Errorf("rockets mismatch (-want +got):\n%s", diff)
			}
			if st.launchLoads != 1 {
				t.Errorf("expected 1 launch load, got %d", st.launchLoads)
			}
		})
	}
}

func TestMostLaunchedRockets_ValueEquality(t *testing.T) {
	f := newFixture(t)

	// An equal but distinct rocket value must be counted with the original.
	maker, _ := model.NewLaunchServiceProvider("SpaceX", 2002, "USA")
	twin, _ := model.NewRocket("rocket_3", "USA", maker)
	for i := 0; i < 3; i++ {
		f.launches = append(f.launches, &model.Launch{
			LaunchDate: model.Date(2018, 1, 1),
			Outcome:    model.OutcomeSuccessful,
			Vehicle:    twin,
			Provider:   maker,
		})
	}

	got, err := newTestMiner(f.store()).MostLaunchedRockets(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"rocket_0", "rocket_3", "rocket_1", "rocket_2"}, rocketNames(got)); diff != "" {
		t.Errorf("rockets mismatch (-want +got):\n%s", diff)
	}
	if got[1] != f.rockets[3] {
		t.Error("expected the first-seen rocket instance to represent its group")
	}
}

func TestMostLaunchedRockets_NoRecordedOutcome(t *testing.T) {
	f := newFixture(t)
	for _, l := range f.launches {
		l.Outcome = model.OutcomeUnknown
	}
	got, err := newTestMiner(f.store()).MostLaunchedRockets(context.Background(), 3)
	if err != nil || got != nil {
		t.Errorf("expected empty result, got %v, %v", got, err)
	}
}

func TestMostReliableProviders(t *testing.T) {
	// ULA 3/6 and SpaceX 0/2 both truncate to 0; ESA 1/1 truncates to 1.
	tests := []struct {
		k    int
		want []string
	}{
		{1, []string{"ULA"}},
		{2, []string{"ULA", "SpaceX"}},
		{3, []string{"ULA", "SpaceX", "ESA"}},
		{10, []string{"ULA", "SpaceX", "ESA"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("k=%d", tt.k), func(t *testing.T) {
			got, err := newTestMiner(newFixture(t).store()).MostReliableProviders(context.Background(), tt.k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, providerNames(got)); diff != "" {
				t.Errorf("providers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMostReliableProviders_SkipsUnsetOnlyProviders(t *testing.T) {
	f := newFixture(t)
	// ESA's only launch loses its outcome.
	f.launches[4].Outcome = model.OutcomeUnknown

	got, err := newTestMiner(f.store()).MostReliableProviders(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"ULA", "SpaceX"}, providerNames(got)); diff != "" {
		t.Errorf("providers mismatch (-want +got):\n%s", diff)
	}
}

func TestMostRecentLaunches(t *testing.T) {
	// Months 12, 11, 6, 6, 5, 5, 4, 4, 3, 1; equal dates keep store order.
	all := []string{
		"launch_8", "launch_5", "launch_1", "launch_6", "launch_7",
		"launch_9", "launch_2", "launch_4", "launch_3", "launch_0",
	}
	for _, k := range []int{1, 2, 3, 20} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			f := newFixture(t)
			got, err := newTestMiner(f.store()).MostRecentLaunches(context.Background(), k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := all
			if k < len(all) {
				want = all[:k]
			}
			if diff := cmp.Diff(want, launchIDs(got)); diff != "" {
				t.Errorf("launches mismatch (-want +got):\n%s", diff)
			}
			for i := 1; i < len(got); i++ {
				if got[i].LaunchDate.After(got[i-1].LaunchDate) {
					t.Errorf("position %d is newer than position %d", i, i-1)
				}
			}
			if launchIDs(f.launches)[0] != "launch_0" {
				t.Error("query must not reorder the store's slice")
			}
		})
	}
}

func TestDominantCountry(t *testing.T) {
	tests := []struct {
		orbit string
		want  string
	}{
		{"LEO", "USA"},
		{"GTO", NoCountry},
		{"Other", NoCountry},
	}
	for _, tt := range tests {
		t.Run(tt.orbit, func(t *testing.T) {
			st := newFixture(t).store()
			got, err := newTestMiner(st).DominantCountry(context.Background(), tt.orbit)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
			if st.launchLoads != 1 {
				t.Errorf("expected 1 launch load, got %d", st.launchLoads)
			}
		})
	}
}

func TestDominantCountry_CountsLaunchesNotRockets(t *testing.T) {
	esa, _ := model.NewLaunchServiceProvider("ESA", 1975, "France")
	ariane, _ := model.NewRocket("Ariane", "France", esa)
	ula, _ := model.NewLaunchServiceProvider("ULA", 1990, "USA")
	atlas, _ := model.NewRocket("Atlas", "USA", ula)
	delta, _ := model.NewRocket("Delta", "USA", ula)

	launch := func(r *model.Rocket, p *model.LaunchServiceProvider, outcome model.LaunchOutcome) *model.Launch {
		return &model.Launch{LaunchDate: model.Date(2017, 1, 1), Orbit: model.OrbitGTO, Outcome: outcome, Vehicle: r, Provider: p}
	}
	st := &spyStore{launches: []*model.Launch{
		launch(atlas, ula, model.OutcomeSuccessful),
		launch(ariane, esa, model.OutcomeSuccessful),
		launch(ariane, esa, model.OutcomeSuccessful),
		launch(delta, ula, model.OutcomeFailed),
		launch(delta, ula, model.OutcomeSuccessful),
	}}

	got, err := newTestMiner(st).DominantCountry(context.Background(), model.OrbitGTO)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// USA 2, France 2: USA was seen first.
	if got != "USA" {
		t.Errorf("expected USA, got %q", got)
	}
}

func TestDominantCountry_EmptyStore(t *testing.T) {
	got, err := newTestMiner(&spyStore{}).DominantCountry(context.Background(), "LEO")
	if err != nil || got != NoCountry {
		t.Errorf("expected %q, got %q, %v", NoCountry, got, err)
	}
}

func TestDominantCountry_InvalidOrbit(t *testing.T) {
	tests := []struct {
		orbit string
		want  string
	}{
		{"", "orbit cannot be null or empty."},
		{" ", "orbit cannot be null or empty."},
		{"  ", "orbit cannot be null or empty."},
		{"a ", "There should be no empty space at the beginning or the end of a orbit."},
		{" a", "There should be no empty space at the beginning or the end of a orbit."},
		{" a ", "There should be no empty space at the beginning or the end of a orbit."},
		{"a", "The length of the orbit must be equal or greater than 2 and equal or smaller than 10."},
		{"aaaaaaaaaaaaaaaaaaaaa", "The length of the orbit must be equal or greater than 2 and equal or smaller than 10."},
		{"abcd", "The orbit must be 'GTO', 'LEO' or 'Other'."},
		{"xixi", "The orbit must be 'GTO', 'LEO' or 'Other'."},
		{"leo", "The orbit must be 'GTO', 'LEO' or 'Other'."},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.orbit), func(t *testing.T) {
			st := newFixture(t).store()
			_, err := newTestMiner(st).DominantCountry(context.Background(), tt.orbit)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if err.Error() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, err.Error())
			}
			if st.launchLoads != 0 {
				t.Error("store touched before validation")
			}
		})
	}
}

func TestMostExpensiveLaunches(t *testing.T) {
	tests := []struct {
		k    int
		want []string
	}{
		{1, []string{"launch_3"}},
		{2, []string{"launch_3", "launch_9"}},
		{3, []string{"launch_3", "launch_9", "launch_4"}},
		{20, []string{"launch_3", "launch_9", "launch_4", "launch_2"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("k=%d", tt.k), func(t *testing.T) {
			got, err := newTestMiner(newFixture(t).store()).MostExpensiveLaunches(context.Background(), tt.k)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, launchIDs(got)); diff != "" {
				t.Errorf("launches mismatch (-want +got):\n%s", diff)
			}
			for _, l := range got {
				if !l.Price.Valid {
					t.Errorf("%s has no price", l.ID)
				}
			}
		})
	}
}

func TestMostExpensiveLaunches_EqualPricesKeepOrder(t *testing.T) {
	f := newFixture(t)
	f.launches[9].Price = model.Priced(decimal.RequireFromString("4000.00"))

	got, err := newTestMiner(f.store()).MostExpensiveLaunches(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"launch_3", "launch_9"}, launchIDs(got)); diff != "" {
		t.Errorf("launches mismatch (-want +got):\n%s", diff)
	}
}

func TestHighestRevenueProviders(t *testing.T) {
	// 2017 revenue: ULA 300+1000, SpaceX 4000, ESA 500; lowest first.
	tests := []struct {
		k, year int
		want    []string
	}{
		{1, 2017, []string{"ESA"}},
		{2, 2017, []string{"ESA", "ULA"}},
		{10, 2017, []string{"ESA", "ULA", "SpaceX"}},
		{1, 2019, nil},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("k=%d/year=%d", tt.k, tt.year), func(t *testing.T) {
			got, err := newTestMiner(newFixture(t).store()).HighestRevenueProviders(context.Background(), tt.k, tt.year)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, providerNames(got)); diff != "" {
				t.Errorf("providers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHighestRevenueProviders_YearBounds(t *testing.T) {
	for _, year := range []int{1498, 1499, 2020, 2021} {
		t.Run(fmt.Sprintf("invalid/%d", year), func(t *testing.T) {
			st := newFixture(t).store()
			_, err := newTestMiner(st).HighestRevenueProviders(context.Background(), 1, year)
			if !errors.Is(err, ErrInvalidArgument) || err.Error() != "year must be greater than 1500." {
				t.Fatalf("expected year error, got %v", err)
			}
			if st.launchLoads != 0 {
				t.Error("store touched before validation")
			}
		})
	}
	for _, year := range []int{1500, 1501, 2000, 2018, 2019} {
		t.Run(fmt.Sprintf("valid/%d", year), func(t *testing.T) {
			st := newFixture(t).store()
			if _, err := newTestMiner(st).HighestRevenueProviders(context.Background(), 1, year); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if st.launchLoads != 1 {
				t.Errorf("expected 1 launch load, got %d", st.launchLoads)
			}
		})
	}
}

func TestHighestRevenueProviders_KCheckedBeforeYear(t *testing.T) {
	_, err := newTestMiner(&spyStore{}).HighestRevenueProviders(context.Background(), 0, 1000)
	if err == nil || err.Error() != "k must be greater than 0." {
		t.Errorf("expected k error first, got %v", err)
	}
}

func TestProvidersWithLongestHistory(t *testing.T) {
	f := newFixture(t)
	unknown, _ := model.NewLaunchServiceProvider("Roscosmos", 0, "Russia")
	twin, _ := model.NewLaunchServiceProvider("ISRO", 1990, "India")
	f.providers = append(f.providers, unknown, twin)

	got, err := newTestMiner(f.store()).ProvidersWithLongestHistory(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"ESA", "ULA", "ISRO", "SpaceX"}, providerNames(got)); diff != "" {
		t.Errorf("providers mismatch (-want +got):\n%s", diff)
	}

	got, err = newTestMiner(f.store()).ProvidersWithLongestHistory(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"ESA"}, providerNames(got)); diff != "" {
		t.Errorf("providers mismatch (-want +got):\n%s", diff)
	}
}

func TestCountriesWithMostProviders(t *testing.T) {
	f := newFixture(t)
	st := f.store()

	got, err := newTestMiner(st).CountriesWithMostProviders(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"USA", "Europe"}, got); diff != "" {
		t.Errorf("countries mismatch (-want +got):\n%s", diff)
	}
	if st.providerLoads != 1 || st.launchLoads != 0 {
		t.Errorf("expected one provider load, got providers=%d launches=%d", st.providerLoads, st.launchLoads)
	}

	// Ties keep first-encountered order.
	jaxa, _ := model.NewLaunchServiceProvider("JAXA", 2003, "Japan")
	arianespace, _ := model.NewLaunchServiceProvider("Arianespace", 1980, "Europe")
	f.providers = append(f.providers, jaxa, arianespace)
	got, err = newTestMiner(f.store()).CountriesWithMostProviders(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"USA", "Europe", "Japan"}, got); diff != "" {
		t.Errorf("countries mismatch (-want +got):\n%s", diff)
	}
}

func TestQueries_EmptyStore(t *testing.T) {
	ctx := context.Background()
	m := newTestMiner(&spyStore{})

	if got, err := m.MostLaunchedRockets(ctx, 3); err != nil || got != nil {
		t.Errorf("MostLaunchedRockets: %v, %v", got, err)
	}
	if got, err := m.MostReliableProviders(ctx, 3); err != nil || got != nil {
		t.Errorf("MostReliableProviders: %v, %v", got, err)
	}
	if got, err := m.MostRecentLaunches(ctx, 3); err != nil || got != nil {
		t.Errorf("MostRecentLaunches: %v, %v", got, err)
	}
	if got, err := m.MostExpensiveLaunches(ctx, 3); err != nil || got != nil {
		t.Errorf("MostExpensiveLaunches: %v, %v", got, err)
	}
	if got, err := m.HighestRevenueProviders(ctx, 3, 2017); err != nil || got != nil {
		t.Errorf("HighestRevenueProviders: %v, %v", got, err)
	}
	if got, err := m.ProvidersWithLongestHistory(ctx, 3); err != nil || got != nil {
		t.Errorf("ProvidersWithLongestHistory: %v, %v", got, err)
	}
	if got, err := m.CountriesWithMostProviders(ctx, 3); err != nil || got != nil {
		t.Errorf("CountriesWithMostProviders: %v, %v", got, err)
	}
}

func TestQueries_PropagateStoreError(t *testing.T) {
	storeErr := errors.New("store: connection refused")
	m := newTestMiner(&spyStore{err: storeErr})
	ctx := context.Background()

	if _, err := m.MostLaunchedRockets(ctx, 1); err != storeErr {
		t.Errorf("MostLaunchedRockets: expected store error unchanged, got %v", err)
	}
	if _, err := m.DominantCountry(ctx, "LEO"); err != storeErr {
		t.Errorf("DominantCountry: expected store error unchanged, got %v", err)
	}
	if _, err := m.CountriesWithMostProviders(ctx, 1); err != storeErr {
		t.Errorf("CountriesWithMostProviders: expected store error unchanged, got %v", err)
	}
}

func TestQueries_Idempotent(t *testing.T) {
	f := newFixture(t)
	m := newTestMiner(f.store())
	ctx := context.Background()

	first, err := m.MostRecentLaunches(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.MostRecentLaunches(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(launchIDs(first), launchIDs(second)); diff != "" {
		t.Errorf("repeated query differs (-first +second):\n%s", diff)
	}

	r1, _ := m.MostReliableProviders(ctx, 10)
	r2, _ := m.MostReliableProviders(ctx, 10)
	if diff := cmp.Diff(providerNames(r1), providerNames(r2)); diff != "" {
		t.Errorf("repeated query differs (-first +second):\n%s", diff)
	}
}

func TestQueries_ReadFreshSnapshotEachCall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := store.NewMemoryStore(f.launches, f.providers)
	m := newTestMiner(st)

	before, err := m.CountriesWithMostProviders(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"JAXA", "ISAS"} {
		p, _ := model.NewLaunchServiceProvider(name, 2003, "Japan")
		st.AddProvider(p)
	}
	after, err := m.CountriesWithMostProviders(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff([]string{"USA", "Europe"}, before); diff != "" {
		t.Errorf("before mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"USA", "Japan", "Europe"}, after); diff != "" {
		t.Errorf("after mismatch (-want +got):\n%s", diff)
	}
}
