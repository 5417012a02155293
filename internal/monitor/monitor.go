// Package monitor runs periodic terminal reachability checks.
package monitor

import (
	"context"
	"time"

	"github.com/user/fingerpulse/internal/model"
	"github.com/user/fingerpulse/internal/probes"
)

// TargetProvider returns the terminals to monitor.
type TargetProvider func() ([]model.TerminalEndpoint, error)

// Check probes every endpoint once and returns one sample per terminal.
func Check(ctx context.Context, endpoints []model.TerminalEndpoint, timeout time.Duration) []model.TerminalStatus {
	prober := probes.NewProber(0, timeout)
	return prober.CheckAll(ctx, endpoints)
}

// Run starts the monitoring loop. Each tick probes the provided terminals and
// hands every sample to the callback. The loop stops when ctx is cancelled.
func Run(ctx context.Context, interval time.Duration, timeout time.Duration, provider TargetProvider, callback func(model.TerminalStatus)) {
	if interval <= 0 {
		interval = time.Minute
	}

	check := func() {
		targets, err := provider()
		if err != nil || len(targets) == 0 {
			return
		}

		for _, st := range Check(ctx, targets, timeout) {
			callback(st)
		}
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		check() // Run immediately
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				check()
			}
		}
	}()
}
