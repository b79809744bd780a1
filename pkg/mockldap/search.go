package mockldap

import (
	"errors"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/getmockd/mockldap/internal/filter"
	"github.com/getmockd/mockldap/pkg/directory"
	"github.com/getmockd/mockldap/pkg/recording"
)

// defaultFilter is what an empty request filter means.
const defaultFilter = "(objectClass=*)"

// Search evaluates req against the directory and returns the matching
// entries in store order. The filter grammar covers equality and presence
// tests combined with &, | and !; a malformed filter fails with go-ldap's
// filter-compile code, while a valid-but-unsupported one (~=, <=, >=,
// substring wildcards) fails with *recording.SeedRequired so the caller
// can seed a literal result instead.
//
// The base DN must exist only for base-object scope; one-level and subtree
// searches under an absent base simply enumerate nothing. An empty result
// is a valid outcome, not an error.
func (c *Conn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	return recordAs(c, "Search", []any{req}, func() (*ldap.SearchResult, error) {
		return c.simulateSearch(req)
	})
}

// SearchAsync performs the same work as Search eagerly, stores the result,
// and returns an opaque handle for Result to redeem.
func (c *Conn) SearchAsync(req *ldap.SearchRequest) (int, error) {
	return recordAs(c, "SearchAsync", []any{req}, func() (int, error) {
		result, err := c.simulateSearch(req)
		if err != nil {
			return 0, err
		}
		c.mu.Lock()
		c.asyncResults = append(c.asyncResults, result)
		msgID := len(c.asyncResults) - 1
		c.mu.Unlock()
		return msgID, nil
	})
}

// Result redeems an async search handle. The stored result comes back
// exactly once: redeeming the same handle again, or a handle that never
// existed, yields a nil result with no error. The timeout parameter is
// accepted and ignored; nothing in the simulation ever blocks.
func (c *Conn) Result(msgID int, timeout time.Duration) (int, *ldap.SearchResult, error) {
	res, err := recordAs(c, "Result", []any{msgID, timeout}, func() (*ldap.SearchResult, error) {
		return c.popAsyncResult(msgID), nil
	})
	if err != nil {
		return 0, nil, err
	}
	return SearchDoneCode, res, nil
}

func (c *Conn) popAsyncResult(msgID int) *ldap.SearchResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msgID < 0 || msgID >= len(c.asyncResults) {
		return nil
	}
	value := c.asyncResults[msgID]
	c.asyncResults[msgID] = nil
	return value
}

func (c *Conn) simulateSearch(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	filterText := req.Filter
	if filterText == "" {
		filterText = defaultFilter
	}

	if err := directory.CheckDN(req.BaseDN); err != nil {
		return nil, err
	}
	if req.Scope == ldap.ScopeBaseObject && !c.store.Has(req.BaseDN) {
		return nil, noSuchObject(req.BaseDN)
	}

	candidates, err := c.store.Scoped(req.BaseDN, req.Scope)
	if err != nil {
		return nil, err
	}

	expr, err := filter.Parse(filterText)
	if err != nil {
		if errors.Is(err, filter.ErrUnsupported) {
			return nil, &recording.SeedRequired{Err: err}
		}
		return nil, ldap.NewError(ldap.ErrorFilterCompile, err)
	}

	result := &ldap.SearchResult{}
	for _, entry := range candidates {
		if !expr.Matches(entry.DN, entry.Attrs) {
			continue
		}
		result.Entries = append(result.Entries, projectEntry(entry, req.Attributes, req.TypesOnly))
	}
	c.log.Debug("search",
		"id", c.id,
		"base", req.BaseDN,
		"scope", req.Scope,
		"filter", filterText,
		"matched", len(result.Entries),
	)
	return result, nil
}

// projectEntry converts a store entry to the wire type, applying attribute
// selection and the types-only flag. The conversion copies every value, so
// results never alias the live store.
func projectEntry(entry *directory.Entry, attrList []string, typesOnly bool) *ldap.Entry {
	out := &ldap.Entry{DN: entry.DN}
	for _, attr := range entry.Attrs.List() {
		if len(attrList) > 0 && !containsFold(attrList, attr.Name) {
			continue
		}
		values := attr.Values
		if typesOnly {
			values = []string{}
		}
		out.Attributes = append(out.Attributes, ldap.NewEntryAttribute(attr.Name, values))
	}
	return out
}

func containsFold(names []string, name string) bool {
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
