package bridge_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.wrepl.sh/pkg/bridge"
	"src.wrepl.sh/pkg/store"
	"src.wrepl.sh/pkg/testutil"
)

func TestSession_EvalBeforeSetup(t *testing.T) {
	sess := bridge.NewSession(0, "")
	_, err := sess.Eval(context.Background(), "(+ 1 1)")
	if err != bridge.ErrNotSetup {
		t.Errorf("Eval() -> error %v, want ErrNotSetup", err)
	}
}

func TestSession_Lifecycle(t *testing.T) {
	sess := bridge.NewSession(0, "")
	if state := sess.State(); state != "uninitialized" {
		t.Errorf("State() -> %q, want uninitialized", state)
	}

	if err := sess.Setup(); err != nil {
		t.Fatalf("Setup() -> error %v, want nil", err)
	}
	if state := sess.State(); state != "ready" {
		t.Errorf("State() -> %q, want ready", state)
	}
	if err := sess.Setup(); err == nil {
		t.Errorf("second Setup() -> nil error, want non-nil")
	}

	if err := sess.Teardown(); err != nil {
		t.Errorf("Teardown() -> error %v, want nil", err)
	}
	if state := sess.State(); state != "torn down" {
		t.Errorf("State() -> %q, want torn down", state)
	}

	// The torn-down state is terminal.
	if _, err := sess.Eval(context.Background(), "(+ 1 1)"); err != bridge.ErrTornDown {
		t.Errorf("Eval() after Teardown -> error %v, want ErrTornDown", err)
	}
	if err := sess.Setup(); err != bridge.ErrTornDown {
		t.Errorf("Setup() after Teardown -> error %v, want ErrTornDown", err)
	}
	if err := sess.Teardown(); err != bridge.ErrTornDown {
		t.Errorf("second Teardown() -> error %v, want ErrTornDown", err)
	}
}

// The full exchange: client announces readiness, the session sends a form and
// returns the posted result, and the exchange is recorded in the history.
func TestSession_Scenario(t *testing.T) {
	dir := testutil.InTempDir(t)
	sess := bridge.NewSession(0, filepath.Join(dir, "db"))
	if err := sess.Setup(); err != nil {
		t.Fatal(err)
	}
	defer sess.Teardown()

	go fakeClient(t, sess.Addr(), map[string]string{"(+ 1 1)": "2"})

	ctx, cancel := context.WithTimeout(
		context.Background(), testutil.ScaledMs(5000))
	defer cancel()
	result, err := sess.Eval(ctx, "(+ 1 1)")
	if result != "2" || err != nil {
		t.Errorf(`Eval("(+ 1 1)") -> (%q, %v), want ("2", nil)`, result, err)
	}

	recs, err := sess.Evals(1, 2)
	if err != nil {
		t.Errorf("Evals(1, 2) -> error %v, want nil", err)
	}
	wantRecs := []store.EvalRecord{{Seq: 1, Form: "(+ 1 1)", Result: "2"}}
	if diff := cmp.Diff(wantRecs, recs); diff != "" {
		t.Errorf("history records (-want +got):\n%s", diff)
	}
}

func TestSession_EvalsWithoutDB(t *testing.T) {
	sess := bridge.NewSession(0, "")
	if err := sess.Setup(); err != nil {
		t.Fatal(err)
	}
	defer sess.Teardown()

	recs, err := sess.Evals(1, 10)
	if len(recs) != 0 || err != nil {
		t.Errorf("Evals() -> (%v, %v), want (no records, nil)", recs, err)
	}
}
