package verifier

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestDefect(id TestID, message string)
	TestFinished(id TestID, outcome Outcome, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (nullTestLogger) TestStarted(TestID)                           {}
func (nullTestLogger) TestError(TestID, error)                      {}
func (nullTestLogger) TestDefect(TestID, string)                    {}
func (nullTestLogger) TestFinished(TestID, Outcome, CapturedOutput) {}
func (nullTestLogger) TestSkipped(TestID, string)                   {}

// NullTestLogger discards all progress output.
func NullTestLogger() TestLogger { return nullTestLogger{} }

// ConsoleTestLogger prints scenario progress in a human readable form.
type ConsoleTestLogger struct {
	Out                  io.Writer
	NoColor              bool
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *ConsoleTestLogger) paint(attr color.Attribute) *color.Color {
	p := color.New(attr)
	if c.NoColor {
		p.DisableColor()
	}
	return p
}

func (c *ConsoleTestLogger) TestStarted(id TestID) {
	fmt.Fprintf(c.out(), "[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id TestID, err error) {
	red := c.paint(color.FgRed)
	for _, line := range strings.Split(err.Error(), "\n") {
		red.Fprintf(c.out(), "  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestDefect(id TestID, message string) {
	c.paint(color.FgYellow).Fprintf(c.out(), "  defect: %s\n", message)
}

func (c *ConsoleTestLogger) TestFinished(id TestID, outcome Outcome, debugOutput CapturedOutput) {
	failed := outcome == OutcomeFail
	switch outcome {
	case OutcomeFail:
		c.paint(color.FgRed).Fprintf(c.out(), "  FAILED: %s\n", id)
	case OutcomeDefect:
		c.paint(color.FgYellow).Fprintf(c.out(), "  DEFECT: %s\n", id)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.out(), "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id TestID, reason string) {
	faint := c.paint(color.Faint)
	if reason == "" {
		faint.Fprintf(c.out(), "  SKIPPED: %s\n", id)
	} else {
		faint.Fprintf(c.out(), "  SKIPPED: %s (%s)\n", id, reason)
	}
}

// PrintResults writes the end-of-run summary.
func PrintResults(w io.Writer, results Results, strict bool) {
	s := results.Summary()
	fmt.Fprintf(w, "%d scenarios: %d passed, %d failed, %d defects, %d skipped\n",
		s.Total, s.Passed, s.Failed, s.Defects, s.Skipped)
	if len(results.Failures) > 0 {
		fmt.Fprintln(w, "FAILED scenarios:")
		for _, f := range results.Failures {
			fmt.Fprintf(w, "  %s\n", f.TestID)
		}
	}
	if len(results.Defects) > 0 {
		if strict {
			fmt.Fprintln(w, "Known service defects (failing, strict mode):")
		} else {
			fmt.Fprintln(w, "Known service defects:")
		}
		for _, d := range results.Defects {
			fmt.Fprintf(w, "  %s\n", d.TestID)
			for _, msg := range d.Defects {
				fmt.Fprintf(w, "    %s\n", msg)
			}
		}
	}
	if results.OK(strict) {
		fmt.Fprintln(w, "PASS")
	} else {
		fmt.Fprintln(w, "FAIL")
	}
}
