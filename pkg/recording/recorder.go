package recording

import (
	"errors"
	"reflect"
	"sync"

	"github.com/mohae/deepcopy"
)

// Recorder keeps the call log and seed registry for one simulated
// connection. The zero value is not usable; create one with NewRecorder.
type Recorder struct {
	mu    sync.RWMutex
	calls []Call
	seeds map[string][]seed
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		seeds: make(map[string][]seed),
	}
}

// Invoke runs one recorded operation. The call is appended to the log
// unconditionally. If a seed matches op and args exactly, its value is
// returned (errors by identity, other values as fresh deep copies) and
// fallback never runs. Otherwise fallback supplies the simulated result;
// a *SeedRequired failure from fallback is augmented with the rendered
// call before it propagates.
func (r *Recorder) Invoke(op string, args []any, fallback func() (any, error)) (any, error) {
	call := Call{Op: op, Args: args}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	seeds := r.seeds[op]
	r.mu.Unlock()

	for _, s := range seeds {
		if !reflect.DeepEqual(s.args, args) {
			continue
		}
		if err, isErr := s.value.(error); isErr {
			return nil, err
		}
		return deepcopy.Copy(s.value), nil
	}

	value, err := fallback()
	if err != nil {
		var sr *SeedRequired
		if errors.As(err, &sr) {
			sr.Op = op
			sr.Call = call.String()
		}
		return nil, err
	}
	return value, nil
}

// Seed starts registering a canned return for op invoked with exactly args.
// The arguments are deep-copied immediately, so later mutation of what the
// caller passed does not change the signature.
func (r *Recorder) Seed(op string, args ...any) *Stub {
	copied := make([]any, len(args))
	for i, arg := range args {
		copied[i] = deepcopy.Copy(arg)
	}
	return &Stub{recorder: r, op: op, args: copied}
}

// Calls returns a deep copy of the call log in invocation order.
func (r *Recorder) Calls() []Call {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Call, len(r.calls))
	for i, c := range r.calls {
		out[i] = Call{Op: c.Op}
		if c.Args != nil {
			out[i].Args = deepcopy.Copy(c.Args).([]any)
		}
	}
	return out
}

// CallNames returns just the operation names in invocation order.
func (r *Recorder) CallNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Op
	}
	return out
}

// CallCount returns the number of recorded calls.
func (r *Recorder) CallCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.calls)
}

// Reset clears the call log and every seed list.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.seeds = make(map[string][]seed)
}
