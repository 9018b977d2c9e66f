package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrPendingEval is returned when a form is sent while a previous form is
// still awaiting its result. The protocol supports only one outstanding form.
var ErrPendingEval = errors.New("another evaluation is pending")

// Send installs onResult as the callback for the next posted result, obtains
// a connection (waiting for the client to poll if none is stored), writes the
// form followed by CRLF and closes the connection. It does not wait for the
// result. Sending while a previous form still awaits its result fails with
// ErrPendingEval, leaving the pending form's callback in place.
func (s *Server) Send(ctx context.Context, form string, onResult func(string)) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.callback != nil {
		s.mu.Unlock()
		return ErrPendingEval
	}
	s.callback = onResult
	s.mu.Unlock()

	conn, err := s.reg.Acquire(ctx)
	if err != nil {
		s.clearCallback()
		return err
	}
	_, err = io.WriteString(conn, form+"\r\n")
	conn.Close()
	if err != nil {
		s.clearCallback()
		return fmt.Errorf("write form: %w", err)
	}
	return nil
}

// Eval sends form to the client and blocks until the result is posted back,
// the context is done, or the server is closed.
//
// Results are matched to forms by arrival order; the protocol carries no
// correlation id, so at most one evaluation may be outstanding at a time.
func (s *Server) Eval(ctx context.Context, form string) (string, error) {
	ch := make(chan string, 1)
	err := s.Send(ctx, form, func(result string) { ch <- result })
	if err != nil {
		return "", err
	}
	select {
	case result := <-ch:
		return result, nil
	case <-s.done:
		return "", ErrClosed
	case <-ctx.Done():
		s.clearCallback()
		return "", ctx.Err()
	}
}

func (s *Server) clearCallback() {
	s.mu.Lock()
	s.callback = nil
	s.mu.Unlock()
}
