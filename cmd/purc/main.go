// Command purc runs an HVML document through the interpreter core.
// Mirrors the teacher's cmd/risor layout: a cobra root command plus
// subcommands, viper-backed configuration, isatty-gated color output.
package main

import (
	"fmt"
	"os"

	"github.com/purc-lang/purc/cmd/purc/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
