// Package mining implements the launch analytics engine: ranked queries
// over a snapshot of launch and provider records loaded fresh from a
// store.RecordStore on every call.
//
// Queries are synchronous and hold no state between calls. Parameter
// checks run before the store is touched; store errors are returned
// unchanged.
package mining

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/orbitlab/rocketminer/internal/metrics"
	"github.com/orbitlab/rocketminer/internal/model"
	"github.com/orbitlab/rocketminer/internal/store"
)

// Query names used in logs and metric labels.
const (
	QueryMostLaunchedRockets         = "most_launched_rockets"
	QueryMostReliableProviders       = "most_reliable_providers"
	QueryMostRecentLaunches          = "most_recent_launches"
	QueryDominantCountry             = "dominant_country"
	QueryMostExpensiveLaunches       = "most_expensive_launches"
	QueryHighestRevenueProviders     = "highest_revenue_providers"
	QueryProvidersWithLongestHistory = "providers_with_longest_history"
	QueryCountriesWithMostProviders  = "countries_with_most_providers"
)

// Orbit codes accepted by DominantCountry.
var orbits = map[string]bool{
	model.OrbitLEO:   true,
	model.OrbitGTO:   true,
	model.OrbitOther: true,
}

// Miner answers ranking questions over the records of a RecordStore.
type Miner struct {
	store    store.RecordStore
	logger   *slog.Logger
	now      func() time.Time
	recorder metrics.Recorder
}

// Option configures a Miner.
type Option func(*Miner)

// WithLogger sets the logger for per-query log lines.
func WithLogger(l *slog.Logger) Option {
	return func(m *Miner) { m.logger = l }
}

// WithClock sets the time source used to bound the revenue year.
func WithClock(now func() time.Time) Option {
	return func(m *Miner) { m.now = now }
}

// WithRecorder sets the query instrumentation sink.
func WithRecorder(r metrics.Recorder) Option {
	return func(m *Miner) { m.recorder = r }
}

// NewMiner creates an engine reading from st.
func NewMiner(st store.RecordStore, opts ...Option) *Miner {
	m := &Miner{
		store:    st,
		logger:   slog.Default(),
		now:      time.Now,
		recorder: metrics.NewNoopRecorder(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// done logs the result size and records the query outcome.
func (m *Miner) done(query string, start time.Time, results int, err error) {
	d := time.Since(start)
	m.recorder.QueryCompleted(query, d, results, err)
	if err != nil {
		m.logger.Debug("query failed", "query", query, "duration", d, "error", err)
		return
	}
	m.logger.Debug("query completed", "query", query, "duration", d, "results", results)
}

func checkK(k int) error {
	if k <= 0 {
		return invalidArgument(msgNonPositiveK)
	}
	return nil
}

// MostLaunchedRockets returns the k distinct rockets flown by the most
// launches with a recorded outcome. Ties keep first-appearance order.
func (m *Miner) MostLaunchedRockets(ctx context.Context, k int) (out []*model.Rocket, err error) {
	start := time.Now()
	defer func() { m.done(QueryMostLaunchedRockets, start, len(out), err) }()

	if err := checkK(k); err != nil {
		return nil, err
	}
	m.logger.Info("find most launched rockets", "query", QueryMostLaunchedRockets, "k", k)

	launches, err := m.store.LoadLaunches(ctx)
	if err != nil {
		return nil, err
	}

	counts := newGroups[model.RocketKey, *model.Rocket, int]()
	for _, l := range launches {
		if !l.Outcome.Recorded() || l.Vehicle == nil {
			continue
		}
		*counts.at(l.Vehicle.Key(), l.Vehicle)++
	}
	return top(counts.rank(descending), k), nil
}

// outcomes counts the recorded results of one provider's launches.
type outcomes struct {
	successes, failures int
}

// truncatedRatio is the success ratio rounded toward zero: 1 only for a
// provider that never failed, 0 otherwise.
func (o outcomes) truncatedRatio() int {
	return o.successes / (o.successes + o.failures)
}

// MostReliableProviders ranks providers by the truncated success ratio of
// their launches with a recorded outcome, in ascending ratio order. Ties
// keep first-appearance order. Providers whose launches all lack an
// outcome are not ranked.
func (m *Miner) MostReliableProviders(ctx context.Context, k int) (out []*model.LaunchServiceProvider, err error) {
	start := time.Now()
	defer func() { m.done(QueryMostReliableProviders, start, len(out), err) }()

	if err := checkK(k); err != nil {
		return nil, err
	}
	m.logger.Info("find most reliable providers", "query", QueryMostReliableProviders, "k", k)

	launches, err := m.store.LoadLaunches(ctx)
	if err != nil {
		return nil, err
	}

	byProvider := newGroups[model.ProviderKey, *model.LaunchServiceProvider, outcomes]()
	for _, l := range launches {
		if !l.Outcome.Recorded() || l.Provider == nil {
			continue
		}
		o := byProvider.at(l.Provider.Key(), l.Provider)
		if l.Outcome == model.OutcomeSuccessful {
			o.successes++
		} else {
			o.failures++
		}
	}
	ranked := byProvider.rank(func(a, b outcomes) bool {
		return a.truncatedRatio() < b.truncatedRatio()
	})
	return top(ranked, k), nil
}

// MostRecentLaunches returns the k latest launches, newest first. Launches
// on the same date keep store order.
func (m *Miner) MostRecentLaunches(ctx context.Context, k int) (out []*model.Launch, err error) {
	start := time.Now()
	defer func() { m.done(QueryMostRecentLaunches, start, len(out), err) }()

	if err := checkK(k); err != nil {
		return nil, err
	}
	m.logger.Info("find most recent launches", "query", QueryMostRecentLaunches, "k", k)

	launches, err := m.store.LoadLaunches(ctx)
	if err != nil {
		return nil, err
	}

	sorted := append([]*model.Launch(nil), launches...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LaunchDate.After(sorted[j].LaunchDate)
	})
	return top(sorted, k), nil
}

func checkOrbit(orbit string) error {
	switch {
	case strings.TrimSpace(orbit) == "":
		return invalidArgument(msgOrbitBlank)
	case orbit != strings.TrimSpace(orbit):
		return invalidArgument(msgOrbitPadded)
	case utf8.RuneCountInString(orbit) < 2 || utf8.RuneCountInString(orbit) > 10:
		return invalidArgument(msgOrbitLength)
	case !orbits[orbit]:
		return invalidArgument(msgOrbitUnknown)
	}
	return nil
}

// DominantCountry returns the country whose rockets flew the most
// successful launches to orbit, or NoCountry when none did. Each launch
// counts once; ties go to the country seen first.
func (m *Miner) DominantCountry(ctx context.Context, orbit string) (country string, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if err == nil && country != NoCountry {
			n = 1
		}
		m.done(QueryDominantCountry, start, n, err)
	}()

	if err := checkOrbit(orbit); err != nil {
		return "", err
	}
	m.logger.Info("find dominant country", "query", QueryDominantCountry, "orbit", orbit)

	launches, err := m.store.LoadLaunches(ctx)
	if err != nil {
		return "", err
	}

	counts := newGroups[string, string, int]()
	for _, l := range launches {
		if l.Outcome != model.OutcomeSuccessful || l.Orbit != orbit || l.Vehicle == nil {
			continue
		}
		*counts.at(l.Vehicle.Country, l.Vehicle.Country)++
	}
	ranked := counts.rank(descending)
	if len(ranked) == 0 {
		return NoCountry, nil
	}
	return ranked[0], nil
}

// MostExpensiveLaunches returns the k priciest launches, most expensive
// first. Launches without a price are skipped; equal prices keep store
// order.
func (m *Miner) MostExpensiveLaunches(ctx context.Context, k int) (out []*model.Launch, err error) {
	start := time.Now()
	defer func() { m.done(QueryMostExpensiveLaunches, start, len(out), err) }()

	if err := checkK(k); err != nil {
		return nil, err
	}
	m.logger.Info("find most expensive launches", "query", QueryMostExpensiveLaunches, "k", k)

	launches, err := m.store.LoadLaunches(ctx)
	if err != nil {
		return nil, err
	}

	var priced []*model.Launch
	for _, l := range launches {
		if l.Price.Valid {
			priced = append(priced, l)
		}
	}
	sort.SliceStable(priced, func(i, j int) bool {
		return priced[i].Price.Decimal.GreaterThan(priced[j].Price.Decimal)
	})
	return top(priced, k), nil
}

// HighestRevenueProviders sums the prices of each provider's launches in
// year and returns k providers ordered by that revenue, lowest first.
// Providers without priced launches that year are not ranked.
func (m *Miner) HighestRevenueProviders(ctx context.Context, k, year int) (out []*model.LaunchServiceProvider, err error) {
	start := time.Now()
	defer func() { m.done(QueryHighestRevenueProviders, start, len(out), err) }()

	if err := checkK(k); err != nil {
		return nil, err
	}
	if year < model.MinYearFounded || year > m.now().Year() {
		return nil, invalidArgument(msgYearRange)
	}
	m.logger.Info("find highest revenue providers", "query", QueryHighestRevenueProviders, "k", k, "year", year)

	launches, err := m.store.LoadLaunches(ctx)
	if err != nil {
		return nil, err
	}

	revenue := newGroups[model.ProviderKey, *model.LaunchServiceProvider, decimal.Decimal]()
	for _, l := range launches {
		if l.LaunchDate.Year() != year || !l.Price.Valid || l.Provider == nil {
			continue
		}
		sum := revenue.at(l.Provider.Key(), l.Provider)
		*sum = sum.Add(l.Price.Decimal)
	}
	ranked := revenue.rank(func(a, b decimal.Decimal) bool {
		return a.LessThan(b)
	})
	return top(ranked, k), nil
}

// ProvidersWithLongestHistory returns the k earliest-founded providers.
// Providers with an unknown founding year are skipped.
func (m *Miner) ProvidersWithLongestHistory(ctx context.Context, k int) (out []*model.LaunchServiceProvider, err error) {
	start := time.Now()
	defer func() { m.done(QueryProvidersWithLongestHistory, start, len(out), err) }()

	if err := checkK(k); err != nil {
		return nil, err
	}
	m.logger.Info("find providers with longest history", "query", QueryProvidersWithLongestHistory, "k", k)

	providers, err := m.store.LoadProviders(ctx)
	if err != nil {
		return nil, err
	}

	var founded []*model.LaunchServiceProvider
	for _, p := range providers {
		if p.YearFounded != 0 {
			founded = append(founded, p)
		}
	}
	sort.SliceStable(founded, func(i, j int) bool {
		return founded[i].YearFounded < founded[j].YearFounded
	})
	return top(founded, k), nil
}

// CountriesWithMostProviders returns the k countries home to the most
// providers. Ties keep first-appearance order.
func (m *Miner) CountriesWithMostProviders(ctx context.Context, k int) (out []string, err error) {
	start := time.Now()
	defer func() { m.done(QueryCountriesWithMostProviders, start, len(out), err) }()

	if err := checkK(k); err != nil {
		return nil, err
	}
	m.logger.Info("find countries with most providers", "query", QueryCountriesWithMostProviders, "k", k)

	providers, err := m.store.LoadProviders(ctx)
	if err != nil {
		return nil, err
	}

	counts := newGroups[string, string, int]()
	for _, p := range providers {
		*counts.at(p.Country, p.Country)++
	}
	return top(counts.rank(descending), k), nil
}
