// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X src.wrepl.sh/pkg/buildinfo.Var=value" to "go build".
package buildinfo

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"src.wrepl.sh/pkg/prog"
)

// Version identifies the version of wrepl. On development commits, it
// identifies the next release.
const Version = "v0.3.0"

// VersionSuffix is appended to Version in the output of "wrepl -version" and
// "wrepl -buildinfo" to build the full version string. It can be overridden
// when building wrepl.
var VersionSuffix = "-dev.unknown"

// Program is the buildinfo subprogram.
type Program struct {
	version, buildinfo bool
	json               *bool
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.version, "version", false, "Output the version and quit")
	fs.BoolVar(&p.buildinfo, "buildinfo", false, "Output information about the build and quit")
	p.json = fs.JSON()
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	switch {
	case p.buildinfo:
		if *p.json {
			fmt.Fprintf(fds[1],
				`{"version":%s,"goversion":%s}`+"\n",
				quoteJSON(Version+VersionSuffix), quoteJSON(runtime.Version()))
		} else {
			fmt.Fprintln(fds[1], "Version:", Version+VersionSuffix)
			fmt.Fprintln(fds[1], "Go version:", runtime.Version())
		}
	case p.version:
		if *p.json {
			fmt.Fprintln(fds[1], quoteJSON(Version+VersionSuffix))
		} else {
			fmt.Fprintln(fds[1], Version+VersionSuffix)
		}
	default:
		return prog.ErrNextProgram
	}
	return nil
}

// quoteJSON is good enough for version strings, which never contain characters
// needing more than the basic string escaping.
func quoteJSON(s string) string { return strconv.Quote(s) }
