// Package healthcheck fetches the per-release health-check reports and joins
// them into a single lookup structure.
//
// A Fetcher downloads one report and reduces its closure to a map from
// package name to health record. An HTTP error status is logged and
// degraded to an empty closure; transport failures follow the configured
// NetworkPolicy. An Aggregator runs one fetch per release target
// concurrently and keys the results by (release, testing).
package healthcheck
