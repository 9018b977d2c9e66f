//go:build !windows

package repl_test

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/creack/pty"
	"src.wrepl.sh/pkg/must"
	"src.wrepl.sh/pkg/repl"
)

func TestInteract_ShowsPromptOnTTY(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("cannot open pty: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()
	go fmt.Fprint(ptmx, "(+ 1 1)\n(exit)\n")

	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()
	env := &testEnv{results: map[string]string{"(+ 1 1)": "2"}}
	err = repl.Interact([3]*os.File{tty, w1, w2}, &repl.InteractConfig{Env: env})

	w1.Close()
	w2.Close()
	stdout := string(must.ReadAllAndClose(r1))
	stderr := string(must.ReadAllAndClose(r2))

	if err != nil {
		t.Errorf("Interact() -> error %v, want nil", err)
	}
	if want := "2\n"; stdout != want {
		t.Errorf("got stdout %q, want %q", stdout, want)
	}
	if !strings.Contains(stderr, "wrepl> ") {
		t.Errorf("got stderr %q, want prompt", stderr)
	}
}
