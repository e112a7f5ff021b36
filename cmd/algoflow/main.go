// Command algoflow lists the practice problems and grades a local solution
// file against them.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		if !errors.Is(err, errNotAllPassed) {
			fmt.Fprintln(os.Stderr, "[ERROR]", err)
		}
		os.Exit(1)
	}
}
