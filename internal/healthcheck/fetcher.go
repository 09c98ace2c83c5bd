package healthcheck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/angeloszaimis/pkghealth/internal/httpclient"
	"github.com/angeloszaimis/pkghealth/internal/release"
)

const (
	DefaultURLTemplate = "https://pagure.io/fedora-health-check/raw/master/f/data/report-{id}.json"
	idPlaceholder      = "{id}"
)

// NetworkPolicy decides what a failed fetch does when the server never
// answered with a status code.
type NetworkPolicy string

const (
	// PolicyFatal returns the error and aborts the run.
	PolicyFatal NetworkPolicy = "fatal"
	// PolicyDegrade logs a warning and treats the report as empty.
	PolicyDegrade NetworkPolicy = "degrade"
)

// Getter fetches a document body. *httpclient.Client satisfies it.
type Getter interface {
	GetRaw(ctx context.Context, url string) ([]byte, error)
}

type Fetcher struct {
	client      Getter
	urlTemplate string
	policy      NetworkPolicy
	logger      *slog.Logger
}

func NewFetcher(client Getter, urlTemplate string, policy NetworkPolicy, logger *slog.Logger) *Fetcher {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	if policy == "" {
		policy = PolicyFatal
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:      client,
		urlTemplate: urlTemplate,
		policy:      policy,
		logger:      logger,
	}
}

// URL returns the report location for a report identifier.
func (f *Fetcher) URL(reportID string) string {
	return strings.ReplaceAll(f.urlTemplate, idPlaceholder, reportID)
}

// Fetch downloads one health report. An HTTP error status or an open circuit
// breaker never fails the call: it is logged and yields an empty closure.
func (f *Fetcher) Fetch(ctx context.Context, target release.Target) (Closure, error) {
	url := f.URL(target.ReportID)

	body, err := f.client.GetRaw(ctx, url)
	if se, ok := httpclient.IsStatusError(err); ok {
		f.logger.Warn(fmt.Sprintf("Healthcheck %s returned error %d", target.ReportID, se.StatusCode),
			slog.String("url", url))
		return Closure{}, nil
	}
	if httpclient.IsBreakerRejection(err) {
		f.logger.Warn(fmt.Sprintf("Healthcheck %s failed: %v", target.ReportID, err))
		return Closure{}, nil
	}
	if err != nil {
		return f.failed(ctx, target, err)
	}

	closure, err := ParseClosure(body, f.logger)
	if err != nil {
		return f.failed(ctx, target, err)
	}

	f.logger.Debug("Loaded health report",
		slog.String("report", target.ReportID),
		slog.Int("packages", len(closure)))

	return closure, nil
}

func (f *Fetcher) failed(ctx context.Context, target release.Target, err error) (Closure, error) {
	if ctx.Err() != nil || f.policy != PolicyDegrade {
		return nil, fmt.Errorf("healthcheck %s: %w", target.ReportID, err)
	}

	f.logger.Warn(fmt.Sprintf("Healthcheck %s failed: %v", target.ReportID, err))
	return Closure{}, nil
}
