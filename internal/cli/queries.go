package cli

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/orbitlab/rocketminer/internal/metrics"
	"github.com/orbitlab/rocketminer/internal/mining"
	"github.com/orbitlab/rocketminer/internal/render"
)

// DefaultK is the result count used when -k is not given.
const DefaultK = 10

// queryFunc runs one engine operation and shapes its answer for output.
type queryFunc func(ctx context.Context, m *mining.Miner) (*render.Result, error)

func (a *app) queryCommands() []*cobra.Command {
	var (
		orbit string
		year  int
	)

	cmds := []*cobra.Command{
		a.rankCommand("most-launched", "Rockets with the most launches", func(k int) queryFunc {
			return func(ctx context.Context, m *mining.Miner) (*render.Result, error) {
				rs, err := m.MostLaunchedRockets(ctx, k)
				return render.Rockets(rs), err
			}
		}),
		a.rankCommand("most-reliable", "Providers whose every launch succeeded", func(k int) queryFunc {
			return func(ctx context.Context, m *mining.Miner) (*render.Result, error) {
				ps, err := m.MostReliableProviders(ctx, k)
				return render.Providers(ps), err
			}
		}),
		a.rankCommand("most-recent", "Most recent launches", func(k int) queryFunc {
			return func(ctx context.Context, m *mining.Miner) (*render.Result, error) {
				ls, err := m.MostRecentLaunches(ctx, k)
				return render.Launches(ls), err
			}
		}),
		a.rankCommand("most-expensive", "Launches with the highest price", func(k int) queryFunc {
			return func(ctx context.Context, m *mining.Miner) (*render.Result, error) {
				ls, err := m.MostExpensiveLaunches(ctx, k)
				return render.Launches(ls), err
			}
		}),
		a.rankCommand("longest-history", "Providers founded earliest", func(k int) queryFunc {
			return func(ctx context.Context, m *mining.Miner) (*render.Result, error) {
				ps, err := m.ProvidersWithLongestHistory(ctx, k)
				return render.Providers(ps), err
			}
		}),
		a.rankCommand("countries", "Countries with the most launch service providers", func(k int) queryFunc {
			return func(ctx context.Context, m *mining.Miner) (*render.Result, error) {
				cs, err := m.CountriesWithMostProviders(ctx, k)
				return render.Countries(cs), err
			}
		}),
	}

	revenue := a.rankCommand("highest-revenue", "Providers with the highest launch revenue in a year", func(k int) queryFunc {
		return func(ctx context.Context, m *mining.Miner) (*render.Result, error) {
			ps, err := m.HighestRevenueProviders(ctx, k, year)
			return render.Providers(ps), err
		}
	})
	revenue.Flags().IntVar(&year, "year", 0, "launch year to total revenue for")
	_ = revenue.MarkFlagRequired("year")

	dominant := &cobra.Command{
		Use:   "dominant-country",
		Short: "Country whose rockets launched most often into an orbit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runQuery(cmd, func(ctx context.Context, m *mining.Miner) (*render.Result, error) {
				c, err := m.DominantCountry(ctx, orbit)
				return render.Country(c), err
			})
		},
	}
	dominant.Flags().StringVar(&orbit, "orbit", "", "orbit to inspect (LEO|GTO|Other)")
	_ = dominant.RegisterFlagCompletionFunc("orbit", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"LEO", "GTO", "Other"}, cobra.ShellCompDirectiveNoFileComp
	})

	return append(cmds, revenue, dominant)
}

// rankCommand builds a subcommand taking -k.
func (a *app) rankCommand(use, short string, query func(k int) queryFunc) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runQuery(cmd, query(k))
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", DefaultK, "number of results")
	return cmd
}

// runQuery opens the configured store, runs q on a fresh engine and writes
// the answer. Metrics are flushed even when q fails.
func (a *app) runQuery(cmd *cobra.Command, q queryFunc) (err error) {
	ctx := cmd.Context()

	st, closeStore, err := openStore(ctx, a.cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	m := mining.NewMiner(st,
		mining.WithLogger(a.logger),
		mining.WithRecorder(metrics.NewPrometheusRecorder(reg)),
	)

	if path := a.cfg.Metrics.Textfile; path != "" {
		defer func() {
			if werr := metrics.WriteTextfile(path, reg); werr != nil {
				err = errors.Join(err, werr)
			}
		}()
	}

	res, err := q(ctx, m)
	if err != nil {
		return err
	}
	return render.Write(cmd.OutOrStdout(), res, a.cfg.Output)
}
