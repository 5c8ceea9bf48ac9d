package domain

import "context"

// ErrorKind classifies what went wrong for a single target.
type ErrorKind string

const (
	KindResolution ErrorKind = "hook_resolution"   // install strategy could not be resolved
	KindExecution  ErrorKind = "install_execution" // resolved hook failed at runtime
	KindTask       ErrorKind = "task_execution"    // remote task reported a failure
)

// ResultError carries the classified error of a failed Result.
type ResultError struct {
	Kind ErrorKind
	Err  error
}

func (e *ResultError) Error() string {
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *ResultError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one operation against one target.
// It carries either a success payload or an error, never both.
type Result struct {
	// Target is the name of the target this result belongs to.
	Target string `json:"target"`

	// Value is the structured success payload. Nil on failure.
	Value map[string]any `json:"value,omitempty"`

	// Err describes the failure. Nil on success.
	Err *ResultError `json:"-"`
}

// OK constructs a success result.
func OK(target string, value map[string]any) Result {
	return Result{Target: target, Value: value}
}

// Fail constructs a failure result, discarding any payload.
func Fail(target string, kind ErrorKind, err error) Result {
	return Result{Target: target, Err: &ResultError{Kind: kind, Err: err}}
}

// Ok reports whether the result is a success.
func (r Result) Ok() bool {
	return r.Err == nil
}

// ResultSet is an ordered, immutable collection of per-target results.
// Order always mirrors the input target order of the operation that
// produced it, regardless of completion order.
type ResultSet struct {
	results []Result
}

// NewResultSet builds a set from results in input-target order.
// The slice is copied; the set never changes after construction.
func NewResultSet(results []Result) *ResultSet {
	s := &ResultSet{results: make([]Result, len(results))}
	copy(s.results, results)
	return s
}

// OK reports whether every member succeeded. An empty set is OK.
func (s *ResultSet) OK() bool {
	for _, r := range s.results {
		if !r.Ok() {
			return false
		}
	}
	return true
}

// Failed returns the failing subset, preserving order.
func (s *ResultSet) Failed() []Result {
	var failed []Result
	for _, r := range s.results {
		if !r.Ok() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Len returns the number of results.
func (s *ResultSet) Len() int {
	return len(s.results)
}

// Get returns the result at position i.
func (s *ResultSet) Get(i int) Result {
	return s.results[i]
}

// All returns the results in order.
func (s *ResultSet) All() []Result {
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// InstallHook is a per-target install callable produced by resolving a
// strategy with target-specific options. A hook executes at most once per
// run; its payload becomes the target's install Result value.
type InstallHook func(ctx context.Context) (map[string]any, error)
