package bridge_test

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"src.wrepl.sh/pkg/bridge"
	"src.wrepl.sh/pkg/testutil"
)

func TestRegistry_PublishThenAcquire(t *testing.T) {
	var reg bridge.Registry
	server, client := net.Pipe()
	defer client.Close()

	reg.Publish(server)
	got, err := reg.Acquire(context.Background())
	if got != server || err != nil {
		t.Errorf("Acquire() -> (%v, %v), want the published conn and nil error",
			got, err)
	}
}

func TestRegistry_AcquireBeforePublish(t *testing.T) {
	var reg bridge.Registry
	server, client := net.Pipe()
	defer client.Close()

	type result struct {
		conn net.Conn
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		conn, err := reg.Acquire(context.Background())
		ch <- result{conn, err}
	}()

	reg.Publish(server)
	r := <-ch
	if r.conn != server || r.err != nil {
		t.Errorf("Acquire() -> (%v, %v), want the published conn and nil error",
			r.conn, r.err)
	}
}

func TestRegistry_StoresAtMostOneConnection(t *testing.T) {
	var reg bridge.Registry
	server1, client1 := net.Pipe()
	defer client1.Close()
	server2, client2 := net.Pipe()
	defer client2.Close()

	reg.Publish(server1)
	reg.Publish(server2)

	// The first connection has been replaced and closed.
	if _, err := client1.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("read on replaced conn -> error %v, want EOF", err)
	}

	got, err := reg.Acquire(context.Background())
	if got != server2 || err != nil {
		t.Errorf("Acquire() -> (%v, %v), want the latest conn and nil error",
			got, err)
	}
}

func TestRegistry_RejectsDeadConnection(t *testing.T) {
	var reg bridge.Registry
	server1, client1 := net.Pipe()
	server2, client2 := net.Pipe()
	defer client2.Close()

	reg.Publish(server1)
	// The client vanishes; the stored connection must not be handed out.
	client1.Close()

	go reg.Publish(server2)

	ctx, cancel := context.WithTimeout(
		context.Background(), testutil.ScaledMs(1000))
	defer cancel()
	got, err := reg.Acquire(ctx)
	if got != server2 || err != nil {
		t.Errorf("Acquire() -> (%v, %v), want the fresh conn and nil error",
			got, err)
	}
}

func TestRegistry_AcquireHonorsContext(t *testing.T) {
	var reg bridge.Registry
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := reg.Acquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire() -> error %v, want context.Canceled", err)
	}

	// A canceled acquisition leaves the registry usable.
	server, client := net.Pipe()
	defer client.Close()
	reg.Publish(server)
	got, err := reg.Acquire(context.Background())
	if got != server || err != nil {
		t.Errorf("Acquire() -> (%v, %v), want the published conn and nil error",
			got, err)
	}
}

func TestRegistry_PublishRacingCancelledAcquire(t *testing.T) {
	// Whichever way a cancelled Acquire races against a concurrent Publish,
	// the published connection must stay available for the next Acquire.
	for i := 0; i < 100; i++ {
		var reg bridge.Registry
		server, client := net.Pipe()

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			conn, err := reg.Acquire(ctx)
			if err == nil {
				// The acquisition won the race; put the connection back for
				// the check below.
				reg.Publish(conn)
			}
			close(done)
		}()
		go cancel()
		reg.Publish(server)
		<-done

		acquireCtx, acquireCancel := context.WithTimeout(
			context.Background(), testutil.ScaledMs(1000))
		got, err := reg.Acquire(acquireCtx)
		acquireCancel()
		if got != server || err != nil {
			t.Fatalf("iteration %v: Acquire() -> (%v, %v), want the published conn and nil error",
				i, got, err)
		}
		client.Close()
		server.Close()
	}
}

func TestRegistry_SecondAcquireWhileWaiting(t *testing.T) {
	var reg bridge.Registry
	t.Cleanup(reg.Close)
	done := make(chan struct{})
	go func() {
		reg.Acquire(context.Background())
		close(done)
	}()

	// Wait for the first Acquire to install its waiter slot.
	time.Sleep(testutil.ScaledMs(100))
	if _, err := reg.Acquire(context.Background()); err != bridge.ErrPendingAcquire {
		t.Errorf("Acquire() -> error %v, want ErrPendingAcquire", err)
	}

	reg.Close()
	<-done
}

func TestRegistry_Close(t *testing.T) {
	var reg bridge.Registry
	server, client := net.Pipe()
	defer client.Close()
	reg.Publish(server)

	reg.Close()
	if _, err := client.Read(make([]byte, 1)); err != io.EOF {
		t.Errorf("read on conn of closed registry -> error %v, want EOF", err)
	}
	if _, err := reg.Acquire(context.Background()); err != bridge.ErrClosed {
		t.Errorf("Acquire() -> error %v, want ErrClosed", err)
	}
}

func TestRegistry_CloseUnblocksWaiter(t *testing.T) {
	var reg bridge.Registry
	errCh := make(chan error, 1)
	go func() {
		_, err := reg.Acquire(context.Background())
		errCh <- err
	}()

	// Give the waiter a chance to block, then close.
	go func() {
		reg.Close()
	}()
	if err := <-errCh; err != bridge.ErrClosed {
		t.Errorf("Acquire() -> error %v, want ErrClosed", err)
	}
}
