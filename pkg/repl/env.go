package repl

import "context"

// Env is the capability set the REPL loop needs from an evaluation
// environment. The long-polling bridge provides the canonical implementation
// ([src.wrepl.sh/pkg/bridge.Session]); alternative transports can be
// substituted without changing the loop.
type Env interface {
	// Setup makes the environment ready for evaluation. It is called exactly
	// once, before any Eval.
	Setup() error
	// Eval evaluates one form and returns its printed result.
	Eval(ctx context.Context, form string) (string, error)
	// Teardown releases the environment's resources. The environment cannot
	// be used afterwards.
	Teardown() error
}
