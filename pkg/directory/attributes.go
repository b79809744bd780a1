package directory

import (
	"sort"
	"strings"
)

// Attribute is a single named attribute with its ordered values.
type Attribute struct {
	Name   string
	Values []string
}

// Attributes is an ordered attribute list with case-insensitive name
// lookups. The casing of the first writer of a name is preserved. The zero
// value is an empty list ready for use.
type Attributes struct {
	list []Attribute
}

// NewAttributes builds an attribute list from a plain map, copying every
// value slice. Names are inserted in sorted order so construction from a
// map is deterministic.
func NewAttributes(m map[string][]string) *Attributes {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	a := &Attributes{list: make([]Attribute, 0, len(names))}
	for _, name := range names {
		a.list = append(a.list, Attribute{Name: name, Values: copyValues(m[name])})
	}
	return a
}

func copyValues(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func (a *Attributes) find(name string) int {
	for i := range a.list {
		if strings.EqualFold(a.list[i].Name, name) {
			return i
		}
	}
	return -1
}

// Get returns the live value slice for name, matched case-insensitively.
func (a *Attributes) Get(name string) ([]string, bool) {
	if i := a.find(name); i >= 0 {
		return a.list[i].Values, true
	}
	return nil, false
}

// Has reports whether name is present, matched case-insensitively.
func (a *Attributes) Has(name string) bool {
	return a.find(name) >= 0
}

// Set replaces the values of name with a copy of values, creating the
// attribute if it does not exist. An existing attribute keeps its original
// name casing.
func (a *Attributes) Set(name string, values []string) {
	if i := a.find(name); i >= 0 {
		a.list[i].Values = copyValues(values)
		return
	}
	a.list = append(a.list, Attribute{Name: name, Values: copyValues(values)})
}

// Append adds values to the end of name's value list, creating the
// attribute if it does not exist.
func (a *Attributes) Append(name string, values ...string) {
	if i := a.find(name); i >= 0 {
		a.list[i].Values = append(a.list[i].Values, values...)
		return
	}
	a.list = append(a.list, Attribute{Name: name, Values: copyValues(values)})
}

// Remove deletes name and reports whether it was present.
func (a *Attributes) Remove(name string) bool {
	i := a.find(name)
	if i < 0 {
		return false
	}
	a.list = append(a.list[:i], a.list[i+1:]...)
	return true
}

// Names returns the attribute names in insertion order.
func (a *Attributes) Names() []string {
	names := make([]string, len(a.list))
	for i := range a.list {
		names[i] = a.list[i].Name
	}
	return names
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	return len(a.list)
}

// List returns a deep-copied snapshot of the attributes in insertion order.
func (a *Attributes) List() []Attribute {
	out := make([]Attribute, len(a.list))
	for i := range a.list {
		out[i] = Attribute{Name: a.list[i].Name, Values: copyValues(a.list[i].Values)}
	}
	return out
}

// Map returns a deep-copied plain map of the attributes.
func (a *Attributes) Map() map[string][]string {
	out := make(map[string][]string, len(a.list))
	for i := range a.list {
		out[a.list[i].Name] = copyValues(a.list[i].Values)
	}
	return out
}

// Clone returns a deep copy.
func (a *Attributes) Clone() *Attributes {
	return &Attributes{list: a.List()}
}
