package verifier

import (
	"fmt"
	"strings"
	"time"
)

// Outcome is the verdict recorded for a single scenario.
type Outcome string

const (
	OutcomePass    Outcome = "pass"
	OutcomeFail    Outcome = "fail"
	OutcomeDefect  Outcome = "defect"
	OutcomeSkipped Outcome = "skipped"
)

// TestID identifies a scenario by its path of group and scenario names.
type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Results accumulates every scenario result of a run.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Defects  []TestResult
}

type TestResult struct {
	TestID     TestID
	Outcome    Outcome
	Errors     []error
	Defects    []string
	SkipReason string
	Debug      CapturedOutput
	Elapsed    time.Duration
}

// Summary counts results by outcome.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Defects int `json:"defects"`
	Skipped int `json:"skipped"`
}

// OK reports whether the run succeeded. Defects only count as failures in
// strict mode.
func (r Results) OK(strict bool) bool {
	if len(r.Failures) > 0 {
		return false
	}
	return !strict || len(r.Defects) == 0
}

// Summary counts scenario results by outcome. Group entries are not counted.
func (r Results) Summary() Summary {
	var s Summary
	for _, t := range r.Leaves() {
		s.Total++
		switch t.Outcome {
		case OutcomePass:
			s.Passed++
		case OutcomeFail:
			s.Failed++
		case OutcomeDefect:
			s.Defects++
		case OutcomeSkipped:
			s.Skipped++
		}
	}
	return s
}

// Leaves returns the results that have no children, in execution order.
func (r Results) Leaves() []TestResult {
	parents := make(map[string]bool)
	for _, t := range r.Tests {
		if n := len(t.TestID.Path); n > 1 {
			parents[TestID{Path: t.TestID.Path[:n-1]}.String()] = true
		}
	}
	out := make([]TestResult, 0, len(r.Tests))
	for _, t := range r.Tests {
		if !parents[t.TestID.String()] {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the result recorded for the scenario path, if any.
func (r Results) Find(path string) (TestResult, bool) {
	for _, t := range r.Tests {
		if t.TestID.String() == path {
			return t, true
		}
	}
	return TestResult{}, false
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}
