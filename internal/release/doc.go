// Package release describes the distribution releases whose health reports
// are fetched. A Set holds the fixed, ordered list of releases for one run
// and expands it into fetch targets keyed by (release, testing).
package release
