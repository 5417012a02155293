// Package probes provides transport-level reachability checks.
package probes

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/user/fingerpulse/internal/model"
)

// CheckTCP performs a TCP connect pre-flight against host:port. It returns
// true only when the connection is accepted within the timeout; every failure
// path (refused, timeout, resolution error) returns false. The socket is
// transient and closed immediately.
func CheckTCP(host string, port int, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, port), timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Prober checks terminal reachability.
type Prober struct {
	concurrency int
	timeout     time.Duration
}

// NewProber creates a new prober.
func NewProber(concurrency int, timeout time.Duration) *Prober {
	if concurrency <= 0 {
		concurrency = 10
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Prober{
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// Check probes a single terminal endpoint and returns a status sample.
func (p *Prober) Check(endpoint model.TerminalEndpoint) model.TerminalStatus {
	status := model.TerminalStatus{
		Host:      endpoint.Host,
		Port:      endpoint.Port,
		CheckedAt: time.Now(),
	}

	start := time.Now()
	if CheckTCP(endpoint.Host, endpoint.Port, p.timeout) {
		status.Reachable = true
		status.LatencyMs = float64(time.Since(start).Microseconds()) / 1000.0
	}

	return status
}

// CheckAll probes a list of terminal endpoints. Used by the heartbeat job;
// the sync path probes strictly sequentially on its own.
func (p *Prober) CheckAll(ctx context.Context, endpoints []model.TerminalEndpoint) []model.TerminalStatus {
	results := make([]model.TerminalStatus, len(endpoints))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.concurrency)

	for i, ep := range endpoints {
		wg.Add(1)
		go func(idx int, endpoint model.TerminalEndpoint) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				results[idx] = model.TerminalStatus{
					Host:      endpoint.Host,
					Port:      endpoint.Port,
					CheckedAt: time.Now(),
				}
			default:
				results[idx] = p.Check(endpoint)
			}
		}(i, ep)
	}

	wg.Wait()
	return results
}
