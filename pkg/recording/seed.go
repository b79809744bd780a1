package recording

import (
	"fmt"

	"github.com/mohae/deepcopy"
)

// SeedRequired signals that the simulation cannot answer a request and an
// externally supplied return value must be seeded for it. It is a control
// signal rather than a failure: the Recorder fills in Op and Call with the
// exact invocation so the message tells the test author what to seed.
type SeedRequired struct {
	// Op is the operation name, filled in by the Recorder.
	Op string
	// Call is the rendered invocation, filled in by the Recorder.
	Call string
	// Err is the underlying cause, typically an unsupported-filter error.
	Err error
}

var _ error = (*SeedRequired)(nil)

func (e *SeedRequired) Error() string {
	if e.Call == "" {
		return fmt.Sprintf("seed required: %v", e.Err)
	}
	return fmt.Sprintf("seed required for %s: %v", e.Call, e.Err)
}

func (e *SeedRequired) Unwrap() error {
	return e.Err
}

// Stub is a seed under construction: the operation name and argument
// signature are fixed, the return value is supplied through Return.
type Stub struct {
	recorder *Recorder
	op       string
	args     []any
}

// Return registers value as the canned result for the stub's signature,
// in front of any earlier seeds for the same operation so the newest seed
// shadows older ones with an equal signature. An error value is returned
// as the error result when the signature matches, with its identity intact;
// any other value is stored as a deep copy.
func (s *Stub) Return(value any) {
	stored := value
	if _, isErr := value.(error); !isErr {
		stored = deepcopy.Copy(value)
	}

	r := s.recorder
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeds[s.op] = append([]seed{{args: s.args, value: stored}}, r.seeds[s.op]...)
}

type seed struct {
	args  []any
	value any
}
