package owners

import (
	"context"
	"fmt"
	"log/slog"
)

const DefaultURL = "https://src.fedoraproject.org/extras/pagure_owner_alias.json"

// Getter fetches a document body. *httpclient.Client satisfies it.
type Getter interface {
	GetRaw(ctx context.Context, url string) ([]byte, error)
}

type Resolver struct {
	client    Getter
	url       string
	namespace string
	logger    *slog.Logger
}

func NewResolver(client Getter, url, namespace string, logger *slog.Logger) *Resolver {
	if url == "" {
		url = DefaultURL
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		client:    client,
		url:       url,
		namespace: namespace,
		logger:    logger,
	}
}

// FetchOwnerAlias downloads and decodes the owner-alias document. Every
// failure is returned: without it there is nothing to report on.
func (r *Resolver) FetchOwnerAlias(ctx context.Context) (Alias, error) {
	body, err := r.client.GetRaw(ctx, r.url)
	if err != nil {
		return Alias{}, fmt.Errorf("fetch owner alias: %w", err)
	}

	alias, err := ParseAlias(body, r.namespace)
	if err != nil {
		return Alias{}, err
	}

	r.logger.Debug("Loaded owner alias",
		slog.String("namespace", r.namespace),
		slog.Int("packages", alias.Len()))

	return alias, nil
}

func (r *Resolver) PackagesOwnedBy(ctx context.Context, user string) ([]string, error) {
	alias, err := r.FetchOwnerAlias(ctx)
	if err != nil {
		return nil, err
	}

	pkgs := alias.OwnedBy(user)
	r.logger.Info("Resolved owned packages",
		slog.String("user", user),
		slog.Int("count", len(pkgs)))

	return pkgs, nil
}
