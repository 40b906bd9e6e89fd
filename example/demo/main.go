// Command demo exercises the hydration engine end to end against a local
// SQLite database and HCL hint declarations.
//
// Seed a database, then load events through it:
//
//	demo seed --config demo.yaml
//	demo load --config demo.yaml events.json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
