package verifier

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter determines whether to run a specific scenario.
type Filter func(TestID) bool

// RegexFilters selects scenarios the way go test does with -run and -skip.
// MustMatch patterns are split on '/' and matched one path level at a time,
// so "defects/empty name" enters the "defects" group and runs only that
// scenario. MustNotMatch patterns are matched against the whole ID.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyPathMatch(id.Path)) &&
		!r.MustNotMatch.AnyMatch(id.String())
}

// Describe writes a short explanation of the active filters, if any.
func (r RegexFilters) Describe(w io.Writer) {
	if !r.MustMatch.IsDefined() && !r.MustNotMatch.IsDefined() {
		return
	}
	fmt.Fprintln(w, "Some scenarios will be skipped based on the filter criteria for this run:")
	if r.MustMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any not matching %s\n", r.MustMatch)
	}
	if r.MustNotMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any matching %s\n", r.MustNotMatch)
	}
	fmt.Fprintln(w)
}

type RegexList struct {
	patterns []*regexp.Regexp
	paths    [][]*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	var paths [][]*regexp.Regexp
	for _, alt := range splitLevels(value) {
		levels := make([]*regexp.Regexp, 0, len(alt))
		for _, elem := range alt {
			lrx, err := regexp.Compile(elem)
			if err != nil {
				return fmt.Errorf("invalid regex: element %q of %q: %w", elem, value, err)
			}
			levels = append(levels, lrx)
		}
		paths = append(paths, levels)
	}
	r.patterns = append(r.patterns, rx)
	r.paths = append(r.paths, paths...)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// AnyPathMatch reports whether every level of path is matched by the
// corresponding level of some pattern. Levels beyond the pattern's depth
// match anything, and a path shorter than the pattern is accepted so that
// groups are entered when one of their scenarios may match.
func (r RegexList) AnyPathMatch(path []string) bool {
	for _, levels := range r.paths {
		if matchLevels(levels, path) {
			return true
		}
	}
	return false
}

func matchLevels(levels []*regexp.Regexp, path []string) bool {
	for i, name := range path {
		if i >= len(levels) {
			break
		}
		if !levels[i].MatchString(name) {
			return false
		}
	}
	return true
}

// splitLevels breaks a pattern into top-level alternatives, each split into
// per-level elements on '/'. Separators inside brackets, parentheses or after
// a backslash belong to the element.
func splitLevels(pattern string) [][]string {
	var (
		alts  [][]string
		elems []string
		cur   strings.Builder
		brack int
		paren int
	)
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '\\':
			cur.WriteByte(c)
			if i+1 < len(pattern) {
				i++
				cur.WriteByte(pattern[i])
			}
			continue
		case '[':
			brack++
		case ']':
			if brack > 0 {
				brack--
			}
		case '(':
			if brack == 0 {
				paren++
			}
		case ')':
			if brack == 0 && paren > 0 {
				paren--
			}
		case '/':
			if brack == 0 && paren == 0 {
				elems = append(elems, cur.String())
				cur.Reset()
				continue
			}
		case '|':
			if brack == 0 && paren == 0 {
				alts = append(alts, append(elems, cur.String()))
				elems = nil
				cur.Reset()
				continue
			}
		}
		cur.WriteByte(c)
	}
	return append(alts, append(elems, cur.String()))
}
