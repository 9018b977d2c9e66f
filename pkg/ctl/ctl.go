// Package ctl implements a JSON-RPC 2.0 control server for the evaluation
// bridge, served over stdin and stdout. It lets editors and other tools drive
// the bridge without the terminal loop.
package ctl

import (
	"context"
	"fmt"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"src.wrepl.sh/pkg/bridge"
	"src.wrepl.sh/pkg/prog"
	"src.wrepl.sh/pkg/repl"
)

// Program is the control server subprogram.
type Program struct {
	run         bool
	bridgeFlags *prog.BridgeFlags
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "ctl", false,
		"Run the JSON-RPC control server instead of the REPL")
	p.bridgeFlags = fs.Bridge()
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	cfg := repl.DefaultConfig()
	if p.bridgeFlags.RC != "" {
		var err error
		cfg, err = repl.ReadConfig(p.bridgeFlags.RC)
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
	sess := bridge.NewSession(cfg.Port, cfg.DB)
	err := sess.Setup()
	if err != nil {
		return err
	}
	defer sess.Teardown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(transport{fds[0], fds[1]}, jsonrpc2.VSCodeObjectCodec{}),
		handler(&server{sess}))
	<-conn.DisconnectNotify()
	return nil
}

type transport struct{ in, out *os.File }

func (t transport) Read(p []byte) (int, error)  { return t.in.Read(p) }
func (t transport) Write(p []byte) (int, error) { return t.out.Write(p) }

func (t transport) Close() error {
	if err := t.in.Close(); err != nil {
		t.out.Close()
		return err
	}
	return t.out.Close()
}
