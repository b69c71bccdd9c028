// Command edgerules is the reference front-end for the EdgeRules engine:
// parse, link and evaluate a model, printing its result.
package main

import (
	"os"

	"github.com/rimvydasb/edgerules-sub002/cmd/edgerules/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
