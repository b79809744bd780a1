// Package filter implements the boolean search-filter subset the simulated
// directory evaluates natively: AND, OR, NOT, equality tests, and presence
// tests, per the RFC 4515 parenthesized syntax.
//
// Filters outside the subset fall into two distinct classes. Text that does
// not match the grammar at all is malformed (ErrMalformed). Text that is
// valid RFC 4515 but beyond the simulation, such as approximate or ordering
// operators and substring wildcards, is unsupported (ErrUnsupported); callers
// are expected to convert that case into a seed request rather than a hard
// failure.
package filter
