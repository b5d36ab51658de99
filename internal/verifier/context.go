// Package verifier is a small scenario runner with go-test-like semantics.
// Scenarios receive a *T which satisfies testify's require.TestingT, so
// assertions abort the current scenario without stopping the run.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

type environment struct {
	ctx        context.Context
	results    Results
	testLogger TestLogger
	filter     Filter
}

// T is the state of one running scenario or group.
type T struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	defects     []string
}

// Run executes action as the root of a scenario tree and returns the
// collected results. A nil filter runs everything.
func Run(
	ctx context.Context,
	filter Filter,
	testLogger TestLogger,
	action func(*T),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		ctx:        ctx,
		filter:     filter,
		testLogger: testLogger,
	}
	t := &T{env: env}
	t.run(action)
	return env.results
}

func (t *T) run(action func(*T)) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			if !t.skipped {
				t.failed = true
				var addError error
				if _, ok := r.(*T); ok {
					if len(t.errors) == 0 {
						addError = errors.New("scenario failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in scenario: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					t.errors = append(t.errors, addError)
					t.env.testLogger.TestError(t.id, addError)
				}
			}
		}
		if len(t.id.Path) == 0 {
			return
		}
		result := TestResult{
			TestID:     t.id,
			Outcome:    t.outcome(),
			Errors:     t.errors,
			Defects:    t.defects,
			SkipReason: t.skipReason,
			Debug:      t.debugLogger.Output(),
			Elapsed:    time.Since(started),
		}
		t.env.results.Tests = append(t.env.results.Tests, result)
		switch result.Outcome {
		case OutcomeFail:
			t.env.results.Failures = append(t.env.results.Failures, result)
		case OutcomeDefect:
			t.env.results.Defects = append(t.env.results.Defects, result)
		}
	}()

	action(t)
}

func (t *T) outcome() Outcome {
	switch {
	case t.skipped:
		return OutcomeSkipped
	case t.failed:
		return OutcomeFail
	case len(t.defects) > 0:
		return OutcomeDefect
	default:
		return OutcomePass
	}
}

func (t *T) ID() TestID {
	return t.id
}

// Context returns the context the run was started with.
func (t *T) Context() context.Context {
	return t.env.ctx
}

// Run executes action as a named child of t. Children excluded by the filter
// are recorded as skipped.
func (t *T) Run(name string, action func(*T)) {
	id := TestID{Path: append(append([]string(nil), t.id.Path...), name)}

	t.env.testLogger.TestStarted(id)
	if t.env.filter != nil && !t.env.filter(id) {
		const reason = "excluded by filter parameters"
		t.env.results.Tests = append(t.env.results.Tests, TestResult{TestID: id, Outcome: OutcomeSkipped, SkipReason: reason})
		t.env.testLogger.TestSkipped(id, reason)
		return
	}
	child := &T{
		id:  id,
		env: t.env,
	}
	child.run(action)
	if child.skipped {
		t.env.testLogger.TestSkipped(id, child.skipReason)
	} else {
		t.env.testLogger.TestFinished(id, child.outcome(), child.debugLogger.Output())
	}
}

func (t *T) Errorf(format string, args ...any) {
	t.failed = true
	err := fmt.Errorf(format, args...)
	t.errors = append(t.errors, err)
	t.env.testLogger.TestError(t.id, reformatError(err))
}

func (t *T) FailNow() {
	panic(t)
}

// Helper exists so testify treats T like *testing.T.
func (t *T) Helper() {}

func (t *T) Failed() bool {
	return t.failed
}

func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Defect records a known service defect. The scenario keeps running and
// ends with OutcomeDefect unless it also fails.
func (t *T) Defect(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	t.defects = append(t.defects, msg)
	t.env.testLogger.TestDefect(t.id, msg)
}

func (t *T) Debug(message string, args ...any) {
	t.debugLogger.Printf(message, args...)
}

func (t *T) DebugLogger() Logger {
	return &t.debugLogger
}

// reformatError collapses testify's multi-line "Error Trace" block, which
// only points into this package, and keeps the message lines.
func reformatError(err error) error {
	lines := strings.Split(err.Error(), "\n")
	kept := make([]string, 0, len(lines))
	inTrace := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "Error Trace:"):
			inTrace = true
			continue
		case inTrace && strings.HasPrefix(trimmed, "Error:"):
			inTrace = false
		case inTrace:
			continue
		}
		if trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) == 0 {
		return err
	}
	return errors.New(strings.Join(kept, "\n"))
}
