// Package recording implements the call log and seed registry behind every
// simulated connection operation.
//
// A Recorder sits between an operation's public method and its simulated
// behavior. Every invocation is appended to the call log first, even when
// the operation later fails. Seeds registered with Seed(...).Return(...)
// override the simulated behavior for one exact argument signature: the
// newest matching seed wins, seeded errors are returned as errors with
// their identity intact, and seeded values come back as independent deep
// copies so no two retrievals alias each other.
//
// When the simulated behavior itself cannot answer (an unsupported filter,
// for instance) it fails with *SeedRequired; the Recorder augments that
// signal with a rendering of the exact call so the test author can paste it
// into a Seed call.
package recording
