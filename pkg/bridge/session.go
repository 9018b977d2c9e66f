package bridge

import (
	"context"
	"errors"
	"net"
	"sync"

	"src.wrepl.sh/pkg/errutil"
	"src.wrepl.sh/pkg/store"
)

var (
	// ErrNotSetup is returned when using a Session before Setup.
	ErrNotSetup = errors.New("session has not been set up")
	// ErrTornDown is returned when using a Session after Teardown.
	ErrTornDown = errors.New("session has been torn down")
)

type sessionState int

const (
	uninitialized sessionState = iota
	ready
	tornDown
)

func (st sessionState) String() string {
	switch st {
	case ready:
		return "ready"
	case tornDown:
		return "torn down"
	default:
		return "uninitialized"
	}
}

// Session drives one evaluation environment backed by the long-polling
// bridge, from Setup through Teardown. It satisfies the environment interface
// of the REPL loop, which only assumes the Setup, Eval and Teardown
// capabilities.
type Session struct {
	port   int
	dbPath string

	mu    sync.Mutex
	state sessionState
	srv   *Server
	st    store.Store
}

// NewSession creates a Session that, once set up, serves the bridge on the
// given port. A non-empty dbPath enables recording evaluations to the history
// database at that path.
func NewSession(port int, dbPath string) *Session {
	return &Session{port: port, dbPath: dbPath}
}

// Setup starts the bridge server and opens the history database if one is
// configured. A Session can be set up only once; a torn-down Session stays
// torn down.
func (s *Session) Setup() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case ready:
		return errors.New("session is already set up")
	case tornDown:
		return ErrTornDown
	}
	srv := NewServer()
	err := srv.Start(s.port)
	if err != nil {
		return err
	}
	if s.dbPath != "" {
		st, err := store.NewStore(s.dbPath)
		if err != nil {
			srv.Close()
			return err
		}
		s.st = st
	}
	s.srv = srv
	s.state = ready
	return nil
}

// Eval sends form to the remote client and returns its result, recording the
// exchange in the history database when one is configured. It fails fast when
// the Session is not ready.
func (s *Session) Eval(ctx context.Context, form string) (string, error) {
	s.mu.Lock()
	state, srv, st := s.state, s.srv, s.st
	s.mu.Unlock()
	switch state {
	case uninitialized:
		return "", ErrNotSetup
	case tornDown:
		return "", ErrTornDown
	}
	result, err := srv.Eval(ctx, form)
	if err != nil {
		return "", err
	}
	if st != nil {
		_, err := st.AddEval(form, result)
		if err != nil {
			logger.Println("failed to record evaluation:", err)
		}
	}
	return result, nil
}

// Teardown stops the bridge server and closes the history database. The
// Session becomes terminal; it cannot be set up again.
func (s *Session) Teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case uninitialized:
		return ErrNotSetup
	case tornDown:
		return ErrTornDown
	}
	s.state = tornDown
	var srvErr, stErr error
	srvErr = s.srv.Close()
	s.srv = nil
	if s.st != nil {
		stErr = s.st.Close()
		s.st = nil
	}
	return errutil.Multi(srvErr, stErr)
}

// State describes the Session's lifecycle state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.String()
}

// Addr returns the address the bridge server is listening on, or nil when the
// Session is not ready.
func (s *Session) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	return s.srv.Addr()
}

// Evals returns history records with sequence numbers in [from, upto). It
// returns no records when no history database is configured.
func (s *Session) Evals(from, upto int) ([]store.EvalRecord, error) {
	s.mu.Lock()
	st := s.st
	s.mu.Unlock()
	if st == nil {
		return nil, nil
	}
	return st.EvalsWithSeq(from, upto)
}
