package main

import (
	"fmt"
	"os"
)

// exitWithError prints err and ends the process with a non-zero status.
// Split out so evaluate's --fail-on-noncompliant path (a non-error,
// deliberate exit code) and genuine command errors share one exit path.
func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
