// Command cppcheck is a single-pass static analyzer for C and C++
// source files. See cmd/cppcheck/cmd for flag definitions.
package main

import (
	"fmt"
	"os"

	"github.com/danmar/cppcheck-sub017/cmd/cppcheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
