// Package progtest provides utilities for testing subprograms.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.wrepl.sh/pkg/must"
	"src.wrepl.sh/pkg/prog"
)

// Case describes one invocation of a program to test.
type Case struct {
	args  []string
	stdin string

	wantExit   int
	stdoutTest func(t *testing.T, stdout string)
	stderrTest func(t *testing.T, stderr string)
}

// ThatWrepl returns a Case invoking wrepl with the given arguments.
func ThatWrepl(args ...string) Case {
	return Case{args: append([]string{"wrepl"}, args...)}
}

// SendsStdin sets the standard input of the invocation.
func (c Case) SendsStdin(s string) Case {
	c.stdin = s
	return c
}

// ExitsWith asserts the exit code of the invocation.
func (c Case) ExitsWith(code int) Case {
	c.wantExit = code
	return c
}

// WritesStdout asserts the exact content written to stdout.
func (c Case) WritesStdout(s string) Case {
	c.stdoutTest = func(t *testing.T, stdout string) {
		t.Helper()
		if stdout != s {
			t.Errorf("got stdout %q, want %q", stdout, s)
		}
	}
	return c
}

// WritesStdoutContaining asserts that stdout contains s as a substring.
func (c Case) WritesStdoutContaining(s string) Case {
	c.stdoutTest = func(t *testing.T, stdout string) {
		t.Helper()
		if !strings.Contains(stdout, s) {
			t.Errorf("got stdout %q, want string containing %q", stdout, s)
		}
	}
	return c
}

// WritesStderr asserts the exact content written to stderr.
func (c Case) WritesStderr(s string) Case {
	c.stderrTest = func(t *testing.T, stderr string) {
		t.Helper()
		if stderr != s {
			t.Errorf("got stderr %q, want %q", stderr, s)
		}
	}
	return c
}

// WritesStderrContaining asserts that stderr contains s as a substring.
func (c Case) WritesStderrContaining(s string) Case {
	c.stderrTest = func(t *testing.T, stderr string) {
		t.Helper()
		if !strings.Contains(stderr, s) {
			t.Errorf("got stderr %q, want string containing %q", stderr, s)
		}
	}
	return c
}

// Test runs the program against each case and checks the assertions.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args[1:], " "), func(t *testing.T) {
			t.Helper()
			exit, stdout, stderr := run(p, c.args, c.stdin)
			if exit != c.wantExit {
				t.Errorf("got exit code %v, want %v", exit, c.wantExit)
			}
			if c.stdoutTest != nil {
				c.stdoutTest(t, stdout)
			}
			if c.stderrTest != nil {
				c.stderrTest(t, stderr)
			}
		})
	}
}

// Run runs the program with the given arguments (not including the program
// name) and no stdin, and returns its exit code, stdout and stderr.
func Run(p prog.Program, args ...string) (exit int, stdout, stderr string) {
	return run(p, append([]string{"wrepl"}, args...), "")
}

func run(p prog.Program, args []string, stdin string) (int, string, string) {
	r0, w0 := must.Pipe()
	go func() {
		io.WriteString(w0, stdin)
		w0.Close()
	}()
	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()

	exit := prog.Run([3]*os.File{r0, w1, w2}, args, p)

	w1.Close()
	w2.Close()
	stdout := string(must.ReadAllAndClose(r1))
	stderr := string(must.ReadAllAndClose(r2))
	r0.Close()
	return exit, stdout, stderr
}
