package bridge

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

var (
	// ErrClosed is returned by operations on a closed registry or server.
	ErrClosed = errors.New("bridge has been closed")
	// ErrPendingAcquire is returned when Acquire is called while another
	// Acquire is still waiting. The protocol supports only one outstanding
	// form, so two concurrent waiters indicate misuse.
	ErrPendingAcquire = errors.New("another connection acquisition is pending")
)

// Registry hands single-use client connections from the accept path to the
// dispatch path. It holds at most one available connection and at most one
// pending waiter; both fields are mutated only under the registry mutex, so
// a connection published while a waiter exists is handed over directly and
// never stored alongside it.
//
// The zero value is ready to use.
type Registry struct {
	mu      sync.Mutex
	conn    net.Conn
	pending chan net.Conn
	closed  bool
}

// Acquire returns a connection to send the next form on, consuming it. If a
// live connection is stored it is returned immediately; otherwise Acquire
// blocks until one is published, the context is done, or the registry is
// closed. A stored connection whose peer has gone away is discarded and
// Acquire falls back to waiting for a fresh one.
func (r *Registry) Acquire(ctx context.Context) (net.Conn, error) {
	for {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return nil, ErrClosed
		}
		if conn := r.conn; conn != nil {
			r.conn = nil
			r.mu.Unlock()
			if connAlive(conn) {
				return conn, nil
			}
			conn.Close()
			continue
		}
		if r.pending != nil {
			r.mu.Unlock()
			return nil, ErrPendingAcquire
		}
		ch := make(chan net.Conn, 1)
		r.pending = ch
		r.mu.Unlock()

		select {
		case conn := <-ch:
			if conn == nil {
				return nil, ErrClosed
			}
			return conn, nil
		case <-ctx.Done():
			r.mu.Lock()
			if r.pending == ch {
				r.pending = nil
			}
			r.mu.Unlock()
			// A publish may have won the race against the cancellation. Put
			// the connection back instead of losing it.
			select {
			case conn := <-ch:
				if conn != nil {
					r.Publish(conn)
				}
			default:
			}
			return nil, ctx.Err()
		}
	}
}

// Publish makes conn available for the next form. If an Acquire call is
// waiting, conn is handed to it directly; otherwise conn is stored, replacing
// (and closing) any previously stored connection.
func (r *Registry) Publish(conn net.Conn) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		conn.Close()
		return
	}
	if ch := r.pending; ch != nil {
		r.pending = nil
		if old := r.conn; old != nil {
			r.conn = nil
			old.Close()
		}
		// The channel is buffered with capacity 1 and r.pending is only
		// cleared under the lock, so this send never blocks. Sending before
		// unlocking guarantees that a cancelled Acquire observing
		// r.pending != ch finds the connection already in the channel.
		ch <- conn
		r.mu.Unlock()
		return
	}
	if old := r.conn; old != nil {
		old.Close()
	}
	r.conn = conn
	r.mu.Unlock()
}

// Close closes any stored connection and causes pending and future Acquire
// calls to return ErrClosed. Publishing to a closed registry closes the
// published connection.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	conn, ch := r.conn, r.pending
	r.conn, r.pending = nil, nil
	r.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	if ch != nil {
		close(ch)
	}
}

const aliveCheckTimeout = 10 * time.Millisecond

// connAlive reports whether the peer still holds its end of conn open. A
// stored connection never carries data from the client, so a short read
// timing out means the peer is still listening, while EOF or a reset means it
// has gone away. Data arriving here is a protocol violation and the
// connection is treated as unusable.
func connAlive(conn net.Conn) bool {
	err := conn.SetReadDeadline(time.Now().Add(aliveCheckTimeout))
	if err != nil {
		return false
	}
	var buf [1]byte
	_, err = conn.Read(buf[:])
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return conn.SetReadDeadline(time.Time{}) == nil
	}
	return false
}
