// Package bridge implements a long-polling evaluation bridge: a TCP server
// that pushes source forms to a single remote execution client and matches
// the results the client posts back to the caller that sent each form.
//
// The client repeatedly connects and either announces itself idle with the
// single line "ready", or posts the result of the previous form as the body
// of a minimal HTTP POST request. Either way the new connection is kept as
// the channel for the next form; sending a form closes the connection it was
// written to, so the client reconnects once per exchange.
package bridge

import "src.wrepl.sh/pkg/logutil"

var logger = logutil.GetLogger("[bridge] ")
