package report

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/angeloszaimis/pkghealth/internal/healthcheck"
	"github.com/angeloszaimis/pkghealth/internal/output"
	"github.com/angeloszaimis/pkghealth/internal/release"
)

type PackageResolver interface {
	PackagesOwnedBy(ctx context.Context, user string) ([]string, error)
}

type HealthAggregator interface {
	Aggregate(ctx context.Context) (healthcheck.Aggregate, error)
}

type Summary struct {
	Packages int
	Reports  int
	Records  int
}

type Driver struct {
	resolver   PackageResolver
	aggregator HealthAggregator
	set        release.Set
	printer    output.Printer
	logger     *slog.Logger
}

func NewDriver(resolver PackageResolver, aggregator HealthAggregator, set release.Set, printer output.Printer, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		resolver:   resolver,
		aggregator: aggregator,
		set:        set,
		printer:    printer,
		logger:     logger,
	}
}

// Run prints the health records of every package user owns. Nothing is
// printed when the owned packages cannot be resolved.
func (d *Driver) Run(ctx context.Context, user string) (Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	var agg healthcheck.Aggregate
	g.Go(func() error {
		a, err := d.aggregator.Aggregate(gctx)
		if err != nil {
			return err
		}
		agg = a
		return nil
	})

	var (
		pkgs     []string
		ownedErr error
		resolved = make(chan struct{})
	)
	g.Go(func() error {
		defer close(resolved)
		pkgs, ownedErr = d.resolver.PackagesOwnedBy(gctx, user)
		if ownedErr != nil {
			return fmt.Errorf("resolve packages of %s: %w", user, ownedErr)
		}
		return nil
	})

	<-resolved
	if ownedErr == nil && len(pkgs) == 0 {
		cancel()
		_ = g.Wait()
		d.logger.Info("User owns no packages", slog.String("user", user))
		return Summary{}, nil
	}

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Packages: len(pkgs), Reports: len(agg)}
	keys := d.set.Keys()
	for _, pkg := range pkgs {
		for _, key := range keys {
			rec, ok := agg.Lookup(key, pkg)
			if !ok {
				continue
			}
			if err := d.printer.Print(rec); err != nil {
				return summary, fmt.Errorf("print %s (%s): %w", pkg, key, err)
			}
			summary.Records++
		}
	}

	return summary, nil
}
