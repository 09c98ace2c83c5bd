package healthcheck

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/angeloszaimis/pkghealth/internal/release"
)

// Aggregate holds one closure per (release, testing) report of a run.
type Aggregate map[release.Key]Closure

// Lookup returns the health record of pkg in the report for key.
func (a Aggregate) Lookup(key release.Key, pkg string) (Record, bool) {
	closure, ok := a[key]
	if !ok {
		return Record{}, false
	}
	rec, ok := closure[pkg]
	return rec, ok
}

type ReportFetcher interface {
	Fetch(ctx context.Context, target release.Target) (Closure, error)
}

type Aggregator struct {
	fetcher ReportFetcher
	set     release.Set
	logger  *slog.Logger
}

func NewAggregator(fetcher ReportFetcher, set release.Set, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		fetcher: fetcher,
		set:     set,
		logger:  logger,
	}
}

// Aggregate fetches every report of the release set concurrently. The
// result has exactly one entry per target. An error from any fetch cancels
// the others and is returned.
func (a *Aggregator) Aggregate(ctx context.Context) (Aggregate, error) {
	targets := a.set.Targets()
	results := make([]Closure, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	for i, target := range targets {
		g.Go(func() error {
			closure, err := a.fetcher.Fetch(gctx, target)
			if err != nil {
				return err
			}
			results[i] = closure
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg := make(Aggregate, len(targets))
	for i, target := range targets {
		agg[target.Key] = results[i]
	}

	a.logger.Debug("Health reports aggregated", slog.Int("reports", len(agg)))
	return agg, nil
}
