package owners

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/angeloszaimis/pkghealth/internal/ordered"
)

const DefaultNamespace = "rpms"

var ErrNamespaceMissing = errors.New("owner-alias document has no such namespace")

type Entry struct {
	Package string
	Owners  []string
}

// Alias maps package names to their owners, keeping document order.
type Alias struct {
	entries []Entry
	index   map[string]int
}

// ParseAlias decodes an owner-alias document and keeps the packages of one
// namespace.
func ParseAlias(data []byte, namespace string) (Alias, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Alias{}, fmt.Errorf("decode owner-alias document: %w", err)
	}

	raw, ok := doc[namespace]
	if !ok {
		return Alias{}, fmt.Errorf("%w: %q", ErrNamespaceMissing, namespace)
	}

	alias := Alias{index: make(map[string]int)}
	err := ordered.DecodeObject(raw, func(pkg string, value json.RawMessage) error {
		var owners []string
		if err := json.Unmarshal(value, &owners); err != nil {
			return fmt.Errorf("owners of %q: %w", pkg, err)
		}
		if i, seen := alias.index[pkg]; seen {
			alias.entries[i].Owners = owners
			return nil
		}
		alias.index[pkg] = len(alias.entries)
		alias.entries = append(alias.entries, Entry{Package: pkg, Owners: owners})
		return nil
	})
	if err != nil {
		return Alias{}, fmt.Errorf("decode %q namespace: %w", namespace, err)
	}

	return alias, nil
}

func (a Alias) Len() int {
	return len(a.entries)
}

// OwnedBy returns the packages listing user as an owner, in document order.
func (a Alias) OwnedBy(user string) []string {
	var pkgs []string
	for _, e := range a.entries {
		if slices.Contains(e.Owners, user) {
			pkgs = append(pkgs, e.Package)
		}
	}
	return pkgs
}
