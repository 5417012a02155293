package syncer

import (
	"context"

	"github.com/user/fingerpulse/internal/model"
	"github.com/user/fingerpulse/internal/util"
)

// TestAll runs the connectivity test flow: probe plus session open/close per
// terminal, without touching attendance data. In simulation mode every
// endpoint is reported simulated-online and no network I/O happens at all;
// simulated and real results are never mixed.
func (o *Orchestrator) TestAll(ctx context.Context, endpoints []model.TerminalEndpoint) []model.ConnectivityReport {
	reports := make([]model.ConnectivityReport, 0, len(endpoints))

	if o.opts.Simulation {
		util.Info("Connectivity test in simulation mode for %d terminals", len(endpoints))
		for _, ep := range endpoints {
			reports = append(reports, model.ConnectivityReport{
				Endpoint: ep,
				Status:   model.ConnSimulatedOnline,
			})
		}
		return reports
	}

	for _, ep := range endpoints {
		select {
		case <-ctx.Done():
			return reports
		default:
		}

		reports = append(reports, o.testEndpoint(ep))
	}

	return reports
}

func (o *Orchestrator) testEndpoint(ep model.TerminalEndpoint) model.ConnectivityReport {
	report := model.ConnectivityReport{Endpoint: ep}

	if !o.probe(ep.Host, ep.Port, o.opts.ProbeTimeout) {
		report.Status = model.ConnUnreachable
		return report
	}

	sess, err := o.opener.Open(ep.Host, ep.Port)
	if err != nil {
		report.Status = model.ConnProtocolError
		report.Detail = Truncate(err.Error(), 120)
		util.Warn("Connectivity test %s: %v", ep.Addr(), err)
		return report
	}
	sess.Close()

	report.Status = model.ConnOnline
	return report
}

// Truncate shortens diagnostic text for caller-facing logs.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
