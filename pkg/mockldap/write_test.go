package mockldap

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewAddRequest("cn=carol,ou=example,o=test", nil)
	req.Attribute("objectClass", []string{"top", "posixAccount"})
	req.Attribute("userPassword", []string{"carolpw"})

	res, err := conn.Add(req)
	require.NoError(t, err)
	assert.Equal(t, AddResultCode, res.Code)
	assert.Equal(t, 1, res.MsgID)

	bound, err := conn.Bind("cn=carol,ou=example,o=test", "carolpw")
	require.NoError(t, err)
	assert.Equal(t, BindResultCode, bound.Code)
}

func TestAddMsgIDCountsCalls(t *testing.T) {
	conn := newTestConn(t)

	_, err := conn.Bind("cn=alice,ou=example,o=test", "alicepw")
	require.NoError(t, err)

	req := ldap.NewAddRequest("cn=carol,ou=example,o=test", nil)
	req.Attribute("objectClass", []string{"top"})

	res, err := conn.Add(req)
	require.NoError(t, err)
	// The in-flight Add is call number two.
	assert.Equal(t, 2, res.MsgID)
}

func TestAddExistingEntry(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewAddRequest("cn=Alice,ou=Example,o=test", nil)
	req.Attribute("objectClass", []string{"top"})

	_, err := conn.Add(req)
	require.Error(t, err)
	assert.True(t, ldap.IsErrorWithCode(err, ldap.LDAPResultEntryAlreadyExists))
}

func TestAddRepeatedAttributeKeepsLast(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewAddRequest("cn=carol,ou=example,o=test", nil)
	req.Attribute("cn", []string{"first"})
	req.Attribute("cn", []string{"second"})

	_, err := conn.Add(req)
	require.NoError(t, err)

	entry, ok := conn.Directory().Get("cn=carol,ou=example,o=test")
	require.True(t, ok)
	values, _ := entry.Attrs.Get("cn")
	assert.Equal(t, []string{"second"}, values)
}

func TestDel(t *testing.T) {
	conn := newTestConn(t)

	res, err := conn.Del(ldap.NewDelRequest("cn=alice,ou=example,o=test", nil))
	require.NoError(t, err)
	assert.Equal(t, DelResultCode, res.Code)

	_, err = conn.Del(ldap.NewDelRequest("cn=alice,ou=example,o=test", nil))
	require.Error(t, err)
	assert.True(t, ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject))
}

func TestAddThenDelRestoresKeySet(t *testing.T) {
	conn := newTestConn(t)
	before := conn.Directory().DNs()

	req := ldap.NewAddRequest("cn=carol,ou=example,o=test", nil)
	req.Attribute("objectClass", []string{"top"})
	_, err := conn.Add(req)
	require.NoError(t, err)
	require.Len(t, conn.Directory().DNs(), len(before)+1)

	_, err = conn.Del(ldap.NewDelRequest("cn=carol,ou=example,o=test", nil))
	require.NoError(t, err)
	assert.Equal(t, before, conn.Directory().DNs())
}

func attrValues(t *testing.T, conn *Conn, dn, attr string) []string {
	t.Helper()
	entry, ok := conn.Directory().Get(dn)
	require.True(t, ok, "entry %s", dn)
	values, _ := entry.Attrs.Get(attr)
	return values
}

func TestModifyReplace(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyRequest("cn=alice,ou=example,o=test", nil)
	req.Replace("userPassword", []string{"alicepw2"})

	res, err := conn.Modify(req)
	require.NoError(t, err)
	assert.Equal(t, ModifyResultCode, res.Code)

	_, err = conn.Bind("cn=alice,ou=example,o=test", "alicepw")
	assert.True(t, ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials))
	bound, err := conn.Bind("cn=alice,ou=example,o=test", "alicepw2")
	require.NoError(t, err)
	assert.Equal(t, BindResultCode, bound.Code)
}

func TestModifyAddAppendsMissingValues(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyRequest("cn=alice,ou=example,o=test", nil)
	req.Add("objectClass", []string{"posixGroup", "top"}) // "top" already present

	_, err := conn.Modify(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"top", "posixAccount", "posixGroup"},
		attrValues(t, conn, "cn=alice,ou=example,o=test", "objectClass"))
}

func TestModifyAddEmptyIsProtocolError(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyRequest("cn=alice,ou=example,o=test", nil)
	req.Add("objectClass", nil)

	_, err := conn.Modify(req)
	require.Error(t, err)
	assert.True(t, ldap.IsErrorWithCode(err, ldap.LDAPResultProtocolError))
}

func TestModifyRequiresExistingAttribute(t *testing.T) {
	conn := newTestConn(t)

	// Every change kind targets an existing attribute, adds included.
	req := ldap.NewModifyRequest("cn=alice,ou=example,o=test", nil)
	req.Add("mail", []string{"alice@example.test"})

	_, err := conn.Modify(req)
	require.Error(t, err)
	assert.True(t, ldap.IsErrorWithCode(err, ldap.LDAPResultUndefinedAttributeType))
}

func TestModifyDeleteListedValues(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyRequest("cn=bob,ou=other,o=test", nil)
	req.Delete("userPassword", []string{"bobpw", "neverthere"})

	_, err := conn.Modify(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"bobpw2"},
		attrValues(t, conn, "cn=bob,ou=other,o=test", "userPassword"))
}

func TestModifyDeleteWithoutValuesRemovesAttribute(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyRequest("cn=alice,ou=example,o=test", nil)
	req.Delete("userPassword", nil)

	_, err := conn.Modify(req)
	require.NoError(t, err)

	entry, ok := conn.Directory().Get("cn=alice,ou=example,o=test")
	require.True(t, ok)
	assert.False(t, entry.Attrs.Has("userPassword"))
}

func TestModifyReplaceWithoutValuesRemovesAttribute(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyRequest("cn=alice,ou=example,o=test", nil)
	req.Replace("uid", nil)

	_, err := conn.Modify(req)
	require.NoError(t, err)

	entry, ok := conn.Directory().Get("cn=alice,ou=example,o=test")
	require.True(t, ok)
	assert.False(t, entry.Attrs.Has("uid"))
}

func TestModifyMissingEntry(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyRequest("cn=ghost,o=test", nil)
	req.Replace("cn", []string{"ghost"})

	_, err := conn.Modify(req)
	require.Error(t, err)
	assert.True(t, ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject))
}

func TestModifyIsNotAtomic(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyRequest("cn=alice,ou=example,o=test", nil)
	req.Replace("uid", []string{"alice2"})
	req.Add("mail", []string{"alice@example.test"}) // fails: attribute absent

	_, err := conn.Modify(req)
	require.Error(t, err)
	assert.True(t, ldap.IsErrorWithCode(err, ldap.LDAPResultUndefinedAttributeType))

	// The earlier change stuck; changes apply in order without rollback.
	assert.Equal(t, []string{"alice2"},
		attrValues(t, conn, "cn=alice,ou=example,o=test", "uid"))
}

func TestModifyDNRename(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyDNRequest("cn=alice,ou=example,o=test", "cn=alicia", true, "")
	res, err := conn.ModifyDN(req)
	require.NoError(t, err)
	assert.Equal(t, ModifyDNResultCode, res.Code)

	_, ok := conn.Directory().Get("cn=alice,ou=example,o=test")
	assert.False(t, ok)
	assert.Equal(t, []string{"alicia"},
		attrValues(t, conn, "cn=alicia,ou=example,o=test", "cn"))
	// Unrelated attributes ride along.
	assert.Equal(t, []string{"alice"},
		attrValues(t, conn, "cn=alicia,ou=example,o=test", "uid"))
}

func TestModifyDNKeepOldRDNValue(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyDNRequest("cn=alice,ou=example,o=test", "cn=alicia", false, "")
	_, err := conn.ModifyDN(req)
	require.NoError(t, err)

	assert.Equal(t, []string{"alice", "alicia"},
		attrValues(t, conn, "cn=alicia,ou=example,o=test", "cn"))
}

func TestModifyDNNewSuperior(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyDNRequest("cn=bob,ou=other,o=test", "cn=bob", true, "ou=example,o=test")
	_, err := conn.ModifyDN(req)
	require.NoError(t, err)

	_, ok := conn.Directory().Get("cn=bob,ou=other,o=test")
	assert.False(t, ok)
	_, ok = conn.Directory().Get("cn=bob,ou=example,o=test")
	assert.True(t, ok)
}

func TestModifyDNToDifferentAttribute(t *testing.T) {
	conn := newTestConn(t)

	// The old RDN attribute is single-valued under a different name, so it
	// goes away entirely; the new value lands on the existing uid list.
	req := ldap.NewModifyDNRequest("cn=alice,ou=example,o=test", "uid=alice2", true, "")
	_, err := conn.ModifyDN(req)
	require.NoError(t, err)

	entry, ok := conn.Directory().Get("uid=alice2,ou=example,o=test")
	require.True(t, ok)
	assert.False(t, entry.Attrs.Has("cn"))
	values, _ := entry.Attrs.Get("uid")
	assert.Equal(t, []string{"alice", "alice2"}, values)
}

func TestModifyDNWithoutOldRDNAttribute(t *testing.T) {
	conn := newTestConn(t)

	// john carries no cn attribute; the rename creates the new attribute
	// and has nothing to clean up.
	req := ldap.NewModifyDNRequest("cn=john,ou=example,o=test", "uid=john1", true, "")
	_, err := conn.ModifyDN(req)
	require.NoError(t, err)

	entry, ok := conn.Directory().Get("uid=john1,ou=example,o=test")
	require.True(t, ok)
	values, _ := entry.Attrs.Get("uid")
	assert.Equal(t, []string{"john1"}, values)
}

func TestModifyDNMissingEntry(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyDNRequest("cn=ghost,o=test", "cn=spirit", true, "")
	_, err := conn.ModifyDN(req)
	require.Error(t, err)
	assert.True(t, ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject))
}

func TestModifyDNOverwritesTarget(t *testing.T) {
	conn := newTestConn(t)

	req := ldap.NewModifyDNRequest("cn=theo,ou=example,o=test", "cn=john", true, "")
	_, err := conn.ModifyDN(req)
	require.NoError(t, err)

	// theo's attributes replaced john's at the target DN.
	values := attrValues(t, conn, "cn=john,ou=example,o=test", "userPassword")
	assert.Len(t, values, 2)
	_, ok := conn.Directory().Get("cn=theo,ou=example,o=test")
	assert.False(t, ok)
}
