package utils

import (
	"fmt"
	"os"
	"runtime"
)

func ExitErr(err error) {
	_, fn, line, _ := runtime.Caller(1)
	fmt.Fprintf(os.Stderr, "exit on error: %v at %s:%d\n", err, fn, line)
	os.Exit(1)
}

// MergeErrors returns nil if all errs are nil, otherwise a single error
// listing every failure.
func MergeErrors(errs []error, hint string) error {
	var msg string
	var failed int
	var first error
	for _, e := range errs {
		if e != nil {
			if first == nil {
				first = e
			}
			failed++
			if len(msg) > 0 {
				msg += ", "
			}
			msg += e.Error()
		}
	}
	if failed == 0 {
		return nil
	}
	if failed == 1 {
		return fmt.Errorf("%s failed: %w", hint, first)
	}
	return fmt.Errorf("%s failed with %s: %s", hint, Pluralize(failed, "error", "errors"), msg)
}
