package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"src.wrepl.sh/pkg/bridge"
	"src.wrepl.sh/pkg/errutil"
	"src.wrepl.sh/pkg/strutil"
	"src.wrepl.sh/pkg/sys"
)

// InteractConfig keeps configuration for the interactive mode.
type InteractConfig struct {
	// The evaluation environment to drive.
	Env Env
	// Input that terminates the session. Empty means DefaultQuitSentinel.
	QuitSentinel string
	// How long one evaluation may take. Zero means no limit; a client that
	// never responds then stalls the loop indefinitely.
	EvalTimeout time.Duration
}

// Interact runs an interactive REPL session: it sets the environment up,
// reads one expression per line from fds[0], prints each result to fds[1],
// and tears the environment down when the quit sentinel or EOF is read.
//
// Evaluation errors are printed to fds[2] and the loop continues, except when
// the environment itself has gone away, which terminates the session.
func Interact(fds [3]*os.File, cfg *InteractConfig) error {
	err := cfg.Env.Setup()
	if err != nil {
		return err
	}
	if a, ok := cfg.Env.(interface{ Addr() net.Addr }); ok {
		if addr := a.Addr(); addr != nil {
			fmt.Fprintln(fds[2], "Listening on", addr)
		}
	}

	quit := cfg.QuitSentinel
	if quit == "" {
		quit = DefaultQuitSentinel
	}
	showPrompt := sys.IsATTY(fds[0].Fd())
	in := bufio.NewReader(fds[0])

	for {
		if showPrompt {
			fmt.Fprint(fds[2], "wrepl> ")
		}
		line, err := in.ReadString('\n')
		if err == io.EOF {
			break
		} else if err != nil {
			return errutil.Multi(err, cfg.Env.Teardown())
		}
		form := strutil.ChopLineEnding(line)
		if form == quit {
			break
		}
		if form == "" {
			continue
		}

		result, err := evalForm(cfg, form)
		if err != nil {
			if envGone(err) {
				return errutil.Multi(err, cfg.Env.Teardown())
			}
			fmt.Fprintln(fds[2], "error:", err)
			continue
		}
		fmt.Fprintln(fds[1], result)
	}
	return cfg.Env.Teardown()
}

func evalForm(cfg *InteractConfig, form string) (string, error) {
	ctx := context.Background()
	if cfg.EvalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.EvalTimeout)
		defer cancel()
	}
	return cfg.Env.Eval(ctx, form)
}

// envGone reports whether err means the environment can no longer evaluate
// anything, as opposed to one evaluation having failed.
func envGone(err error) bool {
	return errors.Is(err, bridge.ErrClosed) ||
		errors.Is(err, bridge.ErrTornDown) ||
		errors.Is(err, bridge.ErrNotSetup)
}
