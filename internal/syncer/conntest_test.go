package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/fingerpulse/internal/model"
)

func TestTestAllStatuses(t *testing.T) {
	probe := func(host string, port int, timeout time.Duration) bool {
		return host != "10.0.0.3"
	}
	opener := OpenerFunc(func(host string, port int) (Session, error) {
		if host == "10.0.0.2" {
			return nil, errors.New("bad comm key")
		}
		return &fakeSession{}, nil
	})

	orch := New(probe, opener, newMemStore(), Options{})
	endpoints := []model.TerminalEndpoint{
		{Host: "10.0.0.1", Port: 4370},
		{Host: "10.0.0.2", Port: 4370},
		{Host: "10.0.0.3", Port: 4370},
	}

	reports := orch.TestAll(context.Background(), endpoints)
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(reports))
	}

	if reports[0].Status != model.ConnOnline {
		t.Errorf("reports[0] = %s, want online", reports[0].Status)
	}
	if reports[1].Status != model.ConnProtocolError {
		t.Errorf("reports[1] = %s, want protocol_error", reports[1].Status)
	}
	if reports[1].Detail == "" {
		t.Error("protocol error should carry a detail")
	}
	if reports[2].Status != model.ConnUnreachable {
		t.Errorf("reports[2] = %s, want unreachable", reports[2].Status)
	}
}

func TestTestAllClosesSessions(t *testing.T) {
	sess := &fakeSession{}
	opener := OpenerFunc(func(host string, port int) (Session, error) {
		return sess, nil
	})

	orch := New(alwaysUp, opener, newMemStore(), Options{})
	orch.TestAll(context.Background(), []model.TerminalEndpoint{{Host: "10.0.0.1", Port: 4370}})

	if !sess.closed {
		t.Error("connectivity test left the session open")
	}
}

func TestTestAllSimulation(t *testing.T) {
	probed := false
	probe := func(host string, port int, timeout time.Duration) bool {
		probed = true
		return true
	}
	opened := false
	opener := OpenerFunc(func(host string, port int) (Session, error) {
		opened = true
		return &fakeSession{}, nil
	})

	orch := New(probe, opener, newMemStore(), Options{Simulation: true})
	endpoints := []model.TerminalEndpoint{
		{Host: "10.0.0.1", Port: 4370},
		{Host: "10.0.0.2", Port: 4370},
	}

	reports := orch.TestAll(context.Background(), endpoints)
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	for i, rep := range reports {
		if rep.Status != model.ConnSimulatedOnline {
			t.Errorf("reports[%d] = %s, want simulated_online", i, rep.Status)
		}
	}
	if probed || opened {
		t.Error("simulation mode must not touch the network")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("0123456789abcdef", 10); got != "0123456789..." {
		t.Errorf("got %q", got)
	}
}

func TestParseEndpoints(t *testing.T) {
	endpoints := ParseEndpoints([]string{" 10.0.0.1 ", "", "10.0.0.2"}, 0)
	if len(endpoints) != 2 {
		t.Fatalf("got %d endpoints, want 2", len(endpoints))
	}
	if endpoints[0].Host != "10.0.0.1" || endpoints[0].Port != 4370 {
		t.Errorf("endpoints[0] = %+v, want trimmed host with default port", endpoints[0])
	}
}
