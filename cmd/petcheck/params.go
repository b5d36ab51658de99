package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/samvad-hq/petfriends-verifier/internal/verifier"
)

type commandParams struct {
	filters  verifier.RegexFilters
	runArgs  []string
	skipArgs []string
	strict   bool
	debug    bool
	debugAll bool
	noColor  bool
}

// Read parses args, where args[0] is the program name.
func (c *commandParams) Read(args []string, stderr io.Writer) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Var(recording{&c.filters.MustMatch, &c.runArgs}, "run", "regex pattern(s) to select scenarios to run; '/' separates group and scenario levels")
	fs.Var(recording{&c.filters.MustNotMatch, &c.skipArgs}, "skip", "regex pattern(s) to select scenarios not to run")
	fs.BoolVar(&c.strict, "strict", false, "treat known service defects as failures")
	fs.BoolVar(&c.debug, "debug", false, "print debug output for failed scenarios")
	fs.BoolVar(&c.debugAll, "debug-all", false, "print debug output for all scenarios")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}
	return true
}

// command renders the flags back into a shell-safe command line.
func (c *commandParams) command(program string) string {
	var b commandBuilder
	b.add(program)
	for _, r := range c.runArgs {
		b.add("-run", r)
	}
	for _, s := range c.skipArgs {
		b.add("-skip", s)
	}
	if c.strict {
		b.add("-strict")
	}
	if c.debugAll {
		b.add("-debug-all")
	} else if c.debug {
		b.add("-debug")
	}
	return b.String()
}

// recording keeps the raw flag values next to the compiled patterns.
type recording struct {
	list *verifier.RegexList
	raw  *[]string
}

func (r recording) String() string {
	if r.list == nil {
		return ""
	}
	return r.list.String()
}

func (r recording) Set(value string) error {
	if err := r.list.Set(value); err != nil {
		return err
	}
	*r.raw = append(*r.raw, value)
	return nil
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
