package ctl_test

import (
	"fmt"
	"testing"

	"src.wrepl.sh/pkg/ctl"
	. "src.wrepl.sh/pkg/prog/progtest"
)

func TestProgram(t *testing.T) {
	status := `{"jsonrpc":"2.0","id":1,"method":"status"}`
	Test(t, &ctl.Program{},
		ThatWrepl("-ctl", "-port", "0").
			SendsStdin(framed(status)).
			ExitsWith(0).
			WritesStdoutContaining(`"state":"ready"`),

		ThatWrepl().
			ExitsWith(2).
			WritesStderrContaining("internal error: no suitable subprogram"),
	)
}

func framed(body string) string {
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}
