package testing

import (
	"github.com/getmockd/mockldap/pkg/mockldap"
)

// DirectoryBuilder assembles seed content using a fluent API. It is a
// convenience over writing the Content map by hand; both forms produce
// the same seed.
type DirectoryBuilder struct {
	content mockldap.Content
}

// NewDirectory starts an empty directory.
func NewDirectory() *DirectoryBuilder {
	return &DirectoryBuilder{content: mockldap.Content{}}
}

// Entry opens a builder for the entry at dn. The entry joins the
// directory when Done is called.
func (b *DirectoryBuilder) Entry(dn string) *EntryBuilder {
	return &EntryBuilder{
		directory: b,
		dn:        dn,
		attrs:     make(map[string][]string),
	}
}

// Build returns the assembled content, ready for testing.New or
// Registry.SetDirectory.
func (b *DirectoryBuilder) Build() mockldap.Content {
	return b.content
}

// EntryBuilder configures one entry's attributes.
type EntryBuilder struct {
	directory *DirectoryBuilder
	dn        string
	attrs     map[string][]string
}

// WithAttr sets an attribute's values, replacing any previous values for
// the same name on this entry.
func (e *EntryBuilder) WithAttr(name string, values ...string) *EntryBuilder {
	e.attrs[name] = values
	return e
}

// WithPassword sets the userPassword values. Plaintext and {SCHEME}
// hashed forms both work; bind and compare verify either.
func (e *EntryBuilder) WithPassword(values ...string) *EntryBuilder {
	return e.WithAttr("userPassword", values...)
}

// WithObjectClass sets the objectClass values.
func (e *EntryBuilder) WithObjectClass(classes ...string) *EntryBuilder {
	return e.WithAttr("objectClass", classes...)
}

// Done commits the entry and returns the directory builder for chaining.
// Committing the same DN twice replaces the earlier entry.
func (e *EntryBuilder) Done() *DirectoryBuilder {
	e.directory.content[e.dn] = e.attrs
	return e.directory
}
