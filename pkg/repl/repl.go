// Package repl is the entry point for the interactive front end of wrepl: a
// loop that reads expressions, sends them through the evaluation bridge, and
// prints the results.
package repl

import (
	"fmt"
	"os"
	"time"

	"src.wrepl.sh/pkg/bridge"
	"src.wrepl.sh/pkg/prog"
)

// Program is the REPL subprogram. It runs when no other subprogram does.
type Program struct {
	bridgeFlags *prog.BridgeFlags
	quit        string
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	p.bridgeFlags = fs.Bridge()
	fs.StringVar(&p.quit, "quit-sentinel", "",
		"Input that quits the REPL (default from the rc file, or (exit))")
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if len(args) > 0 {
		return prog.BadUsage("arguments are not accepted; wrepl reads expressions from stdin")
	}

	cfg := DefaultConfig()
	if p.bridgeFlags.RC != "" {
		var err error
		cfg, err = ReadConfig(p.bridgeFlags.RC)
		if err != nil {
			fmt.Fprintln(fds[2], "Warning:", err)
			fmt.Fprintln(fds[2], "Continuing with default configuration.")
		}
	}
	if p.bridgeFlags.Port >= 0 {
		cfg.Port = p.bridgeFlags.Port
	}
	if p.bridgeFlags.DB != "" {
		cfg.DB = p.bridgeFlags.DB
	}
	if p.quit != "" {
		cfg.QuitSentinel = p.quit
	}

	return Interact(fds, &InteractConfig{
		Env:          bridge.NewSession(cfg.Port, cfg.DB),
		QuitSentinel: cfg.QuitSentinel,
		EvalTimeout:  time.Duration(cfg.EvalTimeout),
	})
}
