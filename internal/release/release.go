package release

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

var (
	ErrNoFedora        = errors.New("at least one fedora release is required")
	ErrDuplicate       = errors.New("duplicate release number")
	ErrRawhideNotFound = errors.New("rawhide release is not in the fedora list")
)

type Kind int

const (
	KindEPEL Kind = iota
	KindFedora
	KindRawhide
)

func (k Kind) String() string {
	switch k {
	case KindEPEL:
		return "epel"
	case KindFedora:
		return "fedora"
	case KindRawhide:
		return "rawhide"
	default:
		return "unknown"
	}
}

const (
	rawhideID     = "rawhide"
	testingSuffix = "-testing"
)

// Release is one distribution version.
type Release struct {
	Number int
	Kind   Kind
}

// HasTesting reports whether the release publishes a separate testing report.
func (r Release) HasTesting() bool {
	return r.Kind == KindFedora
}

// ReportID returns the identifier used in the report URL.
func (r Release) ReportID(testing bool) string {
	if r.Kind == KindRawhide {
		return rawhideID
	}

	id := strconv.Itoa(r.Number)
	if testing {
		id += testingSuffix
	}
	return id
}

func (r Release) String() string {
	return fmt.Sprintf("%s-%d", r.Kind, r.Number)
}

// Key identifies one health report inside an aggregate.
type Key struct {
	Release int
	Testing bool
}

func (k Key) String() string {
	if k.Testing {
		return strconv.Itoa(k.Release) + testingSuffix
	}
	return strconv.Itoa(k.Release)
}

// Target is a single report fetch.
type Target struct {
	Key      Key
	ReportID string
}

// Set is the fixed, ordered list of releases for a run.
type Set struct {
	releases []Release
}

// NewSet builds a Set with the EPEL releases first, followed by the Fedora
// releases in ascending order. The Fedora release numbered rawhide is the
// rolling release; zero selects the newest Fedora release.
func NewSet(epel, fedora []int, rawhide int) (Set, error) {
	if len(fedora) == 0 {
		return Set{}, ErrNoFedora
	}

	seen := make(map[int]bool, len(epel)+len(fedora))
	for _, n := range slices.Concat(epel, fedora) {
		if seen[n] {
			return Set{}, fmt.Errorf("%w: %d", ErrDuplicate, n)
		}
		seen[n] = true
	}

	sortedEPEL := slices.Sorted(slices.Values(epel))
	sortedFedora := slices.Sorted(slices.Values(fedora))

	if rawhide == 0 {
		rawhide = sortedFedora[len(sortedFedora)-1]
	}
	if !slices.Contains(sortedFedora, rawhide) {
		return Set{}, fmt.Errorf("%w: %d", ErrRawhideNotFound, rawhide)
	}

	releases := make([]Release, 0, len(sortedEPEL)+len(sortedFedora))
	for _, n := range sortedEPEL {
		releases = append(releases, Release{Number: n, Kind: KindEPEL})
	}
	for _, n := range sortedFedora {
		kind := KindFedora
		if n == rawhide {
			kind = KindRawhide
		}
		releases = append(releases, Release{Number: n, Kind: kind})
	}

	return Set{releases: releases}, nil
}

// Releases returns a copy of the releases in set order.
func (s Set) Releases() []Release {
	return slices.Clone(s.releases)
}

// Targets returns one fetch target per report the set implies.
func (s Set) Targets() []Target {
	targets := make([]Target, 0, 2*len(s.releases))
	for _, r := range s.releases {
		targets = append(targets, Target{
			Key:      Key{Release: r.Number},
			ReportID: r.ReportID(false),
		})
		if r.HasTesting() {
			targets = append(targets, Target{
				Key:      Key{Release: r.Number, Testing: true},
				ReportID: r.ReportID(true),
			})
		}
	}
	return targets
}

// Keys returns the lookup order used when reporting: every release in set
// order, non-testing before testing. Keys without a report are included;
// lookups for them simply miss.
func (s Set) Keys() []Key {
	keys := make([]Key, 0, 2*len(s.releases))
	for _, r := range s.releases {
		keys = append(keys, Key{Release: r.Number}, Key{Release: r.Number, Testing: true})
	}
	return keys
}
