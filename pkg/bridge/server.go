package bridge

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
)

// Server accepts long-polling connections from the execution client, stores
// them for sending forms, and delivers posted results to the registered
// callback.
type Server struct {
	reg  Registry
	done chan struct{}

	mu       sync.Mutex
	callback func(string)
	ln       net.Listener
	closed   bool
}

// NewServer creates a Server that is not yet listening.
func NewServer() *Server {
	return &Server{done: make(chan struct{})}
}

// Start listens on the given TCP port on localhost and starts accepting
// connections. Port 0 lets the OS pick an unused port; use Addr for the bound
// address.
func (s *Server) Start(port int) error {
	lc := net.ListenConfig{Control: controlSocket}
	ln, err := lc.Listen(context.Background(), "tcp",
		fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", port, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	logger.Println("listening on", ln.Addr())
	go s.serve(ln)
	return nil
}

// Addr returns the address the server is listening on, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// serve accepts connections until the listener is closed. Each connection is
// handled on its own goroutine so a slow or malicious client cannot stall
// the accept loop.
func (s *Server) serve(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			logger.Println("stopped accepting:", err)
			return
		}
		go s.serveConn(conn)
	}
}

// serveConn reads one exchange from the client. A payload other than the
// readiness token is the result of the pending evaluation. In either case the
// connection then becomes the channel for the next form. A protocol error
// abandons the connection without affecting the accept loop.
func (s *Server) serveConn(conn net.Conn) {
	payload, err := readPayload(bufio.NewReader(conn))
	if err != nil {
		logger.Println("dropping connection:", err)
		conn.Close()
		return
	}
	if payload != readyToken {
		s.deliver(payload)
	}
	s.reg.Publish(conn)
}

// deliver hands a posted result to the registered callback, consuming the
// callback. A result arriving when no callback is registered is dropped.
func (s *Server) deliver(result string) {
	s.mu.Lock()
	callback := s.callback
	s.callback = nil
	s.mu.Unlock()
	if callback == nil {
		logger.Println("no callback registered, dropping result")
		return
	}
	callback(result)
}

// Close stops the listener and closes any stored connection. Acquire and Eval
// calls in flight fail with ErrClosed. Close is idempotent.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ln := s.ln
	s.ln = nil
	s.callback = nil
	s.mu.Unlock()

	close(s.done)
	s.reg.Close()
	if ln == nil {
		return nil
	}
	return ln.Close()
}
