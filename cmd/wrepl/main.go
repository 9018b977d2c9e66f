// Wrepl is a REPL for remote evaluation environments that can only reach out,
// not listen. It serves code forms to a long-polling client and reads back the
// results, either interactively or through a JSON-RPC control server.
package main

import (
	"os"

	"src.wrepl.sh/pkg/buildinfo"
	"src.wrepl.sh/pkg/ctl"
	"src.wrepl.sh/pkg/prog"
	"src.wrepl.sh/pkg/repl"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			&buildinfo.Program{}, &ctl.Program{}, &repl.Program{})))
}
