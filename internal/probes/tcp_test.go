package probes

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/user/fingerpulse/internal/model"
)

// startListener opens a localhost TCP listener and returns its port.
func startListener(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return port
}

// closedPort returns a port that was just released and is very likely closed.
func closedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	ln.Close()

	port, _ := strconv.Atoi(portStr)
	return port
}

func TestCheckTCP(t *testing.T) {
	port := startListener(t)

	if !CheckTCP("127.0.0.1", port, time.Second) {
		t.Error("expected open port to be reachable")
	}
	if CheckTCP("127.0.0.1", closedPort(t), 500*time.Millisecond) {
		t.Error("expected closed port to be unreachable")
	}
}

func TestProberCheck(t *testing.T) {
	port := startListener(t)
	p := NewProber(0, time.Second)

	st := p.Check(model.TerminalEndpoint{Host: "127.0.0.1", Port: port})
	if !st.Reachable {
		t.Error("expected reachable status")
	}
	if st.Host != "127.0.0.1" || st.Port != port {
		t.Errorf("status endpoint = %s:%d", st.Host, st.Port)
	}
	if st.CheckedAt.IsZero() {
		t.Error("expected CheckedAt to be set")
	}

	st = p.Check(model.TerminalEndpoint{Host: "127.0.0.1", Port: closedPort(t)})
	if st.Reachable {
		t.Error("expected unreachable status")
	}
}

func TestProberCheckAll(t *testing.T) {
	open := startListener(t)
	closed := closedPort(t)

	p := NewProber(2, time.Second)
	endpoints := []model.TerminalEndpoint{
		{Host: "127.0.0.1", Port: open},
		{Host: "127.0.0.1", Port: closed},
		{Host: "127.0.0.1", Port: open},
	}

	results := p.CheckAll(context.Background(), endpoints)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	// Results keep input order.
	if !results[0].Reachable || results[1].Reachable || !results[2].Reachable {
		t.Errorf("reachability = %v %v %v, want true false true",
			results[0].Reachable, results[1].Reachable, results[2].Reachable)
	}
}
