package directory

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-ldap/ldap/v3"
)

// Content is the seed form of a directory: DN → attribute name → ordered
// value list. Stores deep-copy it at construction, so one Content value can
// seed any number of independent stores.
type Content map[string]map[string][]string

// Entry is one directory entry. DN keeps the casing of whoever wrote it
// first; lookups never depend on it.
type Entry struct {
	DN    string
	Attrs *Attributes

	comps []string
}

// Store is an in-memory DN → entry table. DN lookups are case-insensitive
// on parsed components. Entries keep insertion order, which is the order
// search results come back in.
type Store struct {
	mu      sync.RWMutex
	entries []*Entry
	index   map[string]int
}

// NewStore builds a store from seed content. Entries are inserted in
// canonical DN order so construction from a map is deterministic; a
// malformed seed DN fails with the invalid-DN-syntax error.
func NewStore(seed Content) (*Store, error) {
	type seeded struct {
		canon string
		dn    string
		comps []string
	}
	ordered := make([]seeded, 0, len(seed))
	for dn := range seed {
		comps, err := components(dn)
		if err != nil {
			return nil, err
		}
		ordered = append(ordered, seeded{canon: strings.Join(comps, ","), dn: dn, comps: comps})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].canon != ordered[j].canon {
			return ordered[i].canon < ordered[j].canon
		}
		return ordered[i].dn < ordered[j].dn
	})

	s := &Store{index: make(map[string]int, len(ordered))}
	for _, e := range ordered {
		entry := &Entry{DN: e.dn, Attrs: NewAttributes(seed[e.dn]), comps: e.comps}
		if i, ok := s.index[e.canon]; ok {
			s.entries[i] = entry
			continue
		}
		s.index[e.canon] = len(s.entries)
		s.entries = append(s.entries, entry)
	}
	return s, nil
}

// Get returns the live entry for dn, matched case-insensitively.
func (s *Store) Get(dn string) (*Entry, bool) {
	canon, err := canonical(dn)
	if err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.index[canon]; ok {
		return s.entries[i], true
	}
	return nil, false
}

// Has reports whether dn names an entry.
func (s *Store) Has(dn string) bool {
	_, ok := s.Get(dn)
	return ok
}

// Put inserts or replaces the entry at dn, taking ownership of attrs. A
// replaced entry keeps its first-written DN casing.
func (s *Store) Put(dn string, attrs *Attributes) error {
	comps, err := components(dn)
	if err != nil {
		return err
	}
	canon := strings.Join(comps, ",")

	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[canon]; ok {
		s.entries[i].Attrs = attrs
		return nil
	}
	s.index[canon] = len(s.entries)
	s.entries = append(s.entries, &Entry{DN: dn, Attrs: attrs, comps: comps})
	return nil
}

// Delete removes the entry at dn and reports whether it was present.
func (s *Store) Delete(dn string) bool {
	canon, err := canonical(dn)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[canon]
	if !ok {
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	delete(s.index, canon)
	for k, pos := range s.index {
		if pos > i {
			s.index[k] = pos - 1
		}
	}
	return true
}

// Entries returns the live entries in insertion order.
func (s *Store) Entries() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// DNs returns the presentation DNs in insertion order.
func (s *Store) DNs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.DN
	}
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Scoped returns the entries within scope of base, in insertion order.
// Scope takes the go-ldap constants: base-object matches exactly base,
// single-level matches DNs exactly one component below base, whole-subtree
// matches base and all descendants. Matching compares parsed component
// sequences, never substrings.
func (s *Store) Scoped(base string, scope int) ([]*Entry, error) {
	baseComps, err := components(base)
	if err != nil {
		return nil, err
	}

	var within func(comps []string) bool
	switch scope {
	case ldap.ScopeBaseObject:
		within = func(comps []string) bool {
			return slices.Equal(comps, baseComps)
		}
	case ldap.ScopeSingleLevel:
		within = func(comps []string) bool {
			return len(comps) == len(baseComps)+1 && slices.Equal(comps[1:], baseComps)
		}
	case ldap.ScopeWholeSubtree:
		within = func(comps []string) bool {
			return len(comps) >= len(baseComps) && slices.Equal(comps[len(comps)-len(baseComps):], baseComps)
		}
	default:
		return nil, fmt.Errorf("unrecognized search scope %d", scope)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Entry
	for _, e := range s.entries {
		if within(e.comps) {
			out = append(out, e)
		}
	}
	return out, nil
}
