package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/llehouerou/songvault/internal/library"
)

// fieldFlag collects repeated --field Name=Value pairs.
type fieldFlag map[library.Column]string

func (f fieldFlag) String() string {
	parts := make([]string, 0, len(f))
	for c, v := range f {
		parts = append(parts, string(c)+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (f fieldFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected Name=Value, got %q", s)
	}
	col, err := library.ParseColumn(name)
	if err != nil {
		return err
	}
	f[col] = value
	return nil
}

// newFlagSet returns a flag set that reports errors instead of exiting.
func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// parseArgs parses flags placed anywhere among the positional arguments
// and returns the positionals in order. "--" ends flag parsing.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, usageError{fmt.Sprintf("%s: %v", fs.Name(), err)}
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if consumed := args[:len(args)-len(rest)]; len(consumed) > 0 && consumed[len(consumed)-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// wantArgs checks the positional argument count.
func wantArgs(cmd string, args []string, lo, hi int, names string) error {
	if len(args) < lo || (hi >= 0 && len(args) > hi) {
		return usageError{fmt.Sprintf("usage: songvault %s %s", cmd, names)}
	}
	return nil
}
