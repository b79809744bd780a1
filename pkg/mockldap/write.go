package mockldap

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/getmockd/mockldap/pkg/directory"
)

// Add inserts a new entry at req.DN with the request's attributes in
// order; a repeated attribute type keeps only its last occurrence. The
// success result's MsgID is the number of calls recorded on this
// connection so far, the in-flight Add included.
func (c *Conn) Add(req *ldap.AddRequest) (*Result, error) {
	return recordAs(c, "Add", []any{req}, func() (*Result, error) {
		return c.simulateAdd(req)
	})
}

func (c *Conn) simulateAdd(req *ldap.AddRequest) (*Result, error) {
	if err := directory.CheckDN(req.DN); err != nil {
		return nil, err
	}
	if c.store.Has(req.DN) {
		return nil, ldap.NewError(ldap.LDAPResultEntryAlreadyExists, fmt.Errorf("entry %q already exists", req.DN))
	}

	attrs := &directory.Attributes{}
	for _, a := range req.Attributes {
		attrs.Set(a.Type, a.Vals)
	}
	if err := c.store.Put(req.DN, attrs); err != nil {
		return nil, err
	}
	c.log.Debug("entry added", "id", c.id, "dn", req.DN)
	return &Result{Code: AddResultCode, MsgID: c.recorder.CallCount()}, nil
}

// Modify applies req's changes to the entry at req.DN, in request order
// and without rollback: a failing change leaves the earlier ones applied.
// Every change, adds included, targets an attribute the entry already has.
func (c *Conn) Modify(req *ldap.ModifyRequest) (*Result, error) {
	return recordAs(c, "Modify", []any{req}, func() (*Result, error) {
		return c.simulateModify(req)
	})
}

func (c *Conn) simulateModify(req *ldap.ModifyRequest) (*Result, error) {
	if err := directory.CheckDN(req.DN); err != nil {
		return nil, err
	}

	for _, change := range req.Changes {
		entry, ok := c.store.Get(req.DN)
		if !ok {
			return nil, noSuchObject(req.DN)
		}
		attr := change.Modification.Type
		values := change.Modification.Vals
		if !entry.Attrs.Has(attr) {
			return nil, undefinedType(attr)
		}

		switch change.Operation {
		case ldap.AddAttribute:
			if len(values) == 0 {
				return nil, ldap.NewError(ldap.LDAPResultProtocolError,
					fmt.Errorf("add modification of %q needs at least one value", attr))
			}
			merged, _ := entry.Attrs.Get(attr)
			for _, v := range values {
				if !slices.Contains(merged, v) {
					merged = append(merged, v)
				}
			}
			entry.Attrs.Set(attr, merged)

		case ldap.DeleteAttribute:
			if len(values) == 0 {
				entry.Attrs.Remove(attr)
				break
			}
			existing, _ := entry.Attrs.Get(attr)
			remaining := slices.Clone(existing)
			for _, v := range values {
				if i := slices.Index(remaining, v); i >= 0 {
					remaining = slices.Delete(remaining, i, i+1)
				}
			}
			entry.Attrs.Set(attr, remaining)

		case ldap.ReplaceAttribute:
			if len(values) == 0 {
				entry.Attrs.Remove(attr)
			} else {
				entry.Attrs.Set(attr, values)
			}

		default:
			return nil, ldap.NewError(ldap.LDAPResultProtocolError,
				fmt.Errorf("unsupported modify operation %d", change.Operation))
		}
	}

	c.log.Debug("entry modified", "id", c.id, "dn", req.DN, "changes", len(req.Changes))
	return &Result{Code: ModifyResultCode}, nil
}

// ModifyDN renames the entry at req.DN to req.NewRDN, under req.NewSuperior
// when given and under the current parent otherwise. The new RDN's value
// joins the entry's attributes; with DeleteOldRDN set, the old RDN value is
// removed from its attribute, or the whole attribute when it was the last
// value under a different name.
func (c *Conn) ModifyDN(req *ldap.ModifyDNRequest) (*Result, error) {
	return recordAs(c, "ModifyDN", []any{req}, func() (*Result, error) {
		return c.simulateModifyDN(req)
	})
}

func (c *Conn) simulateModifyDN(req *ldap.ModifyDNRequest) (*Result, error) {
	if err := directory.CheckDN(req.DN); err != nil {
		return nil, err
	}
	if err := directory.CheckDN(req.NewRDN); err != nil {
		return nil, err
	}
	if req.NewSuperior != "" {
		if err := directory.CheckDN(req.NewSuperior); err != nil {
			return nil, err
		}
	}

	entry, ok := c.store.Get(req.DN)
	if !ok {
		return nil, noSuchObject(req.DN)
	}

	superior := req.NewSuperior
	if superior == "" {
		superior = directory.ParentDN(req.DN)
	}
	newDN := req.NewRDN
	if superior != "" {
		newDN = req.NewRDN + "," + superior
	}

	oldAttr, oldValue, err := directory.SplitRDN(req.DN)
	if err != nil {
		return nil, err
	}
	newAttr, newValue, err := directory.SplitRDN(req.NewRDN)
	if err != nil {
		return nil, err
	}

	if existing, ok := entry.Attrs.Get(newAttr); !ok || !slices.Contains(existing, newValue) {
		entry.Attrs.Append(newAttr, newValue)
	}

	if req.DeleteOldRDN {
		if oldValues, ok := entry.Attrs.Get(oldAttr); ok {
			if strings.EqualFold(oldAttr, newAttr) || len(oldValues) > 1 {
				remaining := slices.Clone(oldValues)
				if i := slices.Index(remaining, oldValue); i >= 0 {
					remaining = slices.Delete(remaining, i, i+1)
				}
				entry.Attrs.Set(oldAttr, remaining)
			} else {
				entry.Attrs.Remove(oldAttr)
			}
		}
	}

	if err := c.store.Put(newDN, entry.Attrs); err != nil {
		return nil, err
	}
	c.store.Delete(req.DN)
	c.log.Debug("entry renamed", "id", c.id, "dn", req.DN, "new_dn", newDN)
	return &Result{Code: ModifyDNResultCode}, nil
}

// Del removes the entry at req.DN. Children of the entry are untouched;
// the store has no tree integrity to enforce.
func (c *Conn) Del(req *ldap.DelRequest) (*Result, error) {
	return recordAs(c, "Del", []any{req}, func() (*Result, error) {
		return c.simulateDel(req)
	})
}

func (c *Conn) simulateDel(req *ldap.DelRequest) (*Result, error) {
	if err := directory.CheckDN(req.DN); err != nil {
		return nil, err
	}
	if !c.store.Delete(req.DN) {
		return nil, noSuchObject(req.DN)
	}
	c.log.Debug("entry deleted", "id", c.id, "dn", req.DN)
	return &Result{Code: DelResultCode}, nil
}
