package daemon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/fingerpulse/internal/monitor"
	"github.com/user/fingerpulse/internal/storage"
	"github.com/user/fingerpulse/internal/syncer"
	"github.com/user/fingerpulse/internal/util"
)

// registerJobs registers all background jobs with the scheduler.
func (d *Daemon) registerJobs() {
	// Attendance Sync Job
	d.scheduler.AddJob(&Job{
		Name:     "terminal_sync",
		Interval: d.config.SyncInterval,
		Run:      d.runTerminalSync,
	})

	// Heartbeat Job
	d.scheduler.AddJob(&Job{
		Name:     "heartbeat",
		Interval: d.config.HeartbeatInterval,
		Run:      d.runHeartbeat,
	})

	// Status File Job
	d.scheduler.AddJob(&Job{
		Name:     "status_file",
		Interval: 30 * time.Second,
		Run:      d.writeStatus,
	})
}

func (d *Daemon) writeStatus(ctx context.Context) error {
	return WriteStatusFile(d.config.DataDir, d.GetStatus(), d.LastSyncSummary())
}

func (d *Daemon) runTerminalSync(ctx context.Context) error {
	endpoints := syncer.ParseEndpoints(d.config.TerminalIPs, d.config.TerminalPort)
	if len(endpoints) == 0 {
		util.Debug("Terminal sync disabled (no terminals configured)")
		return nil
	}

	attStorage := storage.NewAttendanceStorage(d.db)
	orch := syncer.NewFromConfig(d.config, attStorage)

	records, stats := orch.SyncAll(ctx, endpoints, d.config.TargetYear)

	run := stats.ToRun()
	if err := storage.NewRunStorage(d.db).Save(run); err != nil {
		util.Warn("Failed to save sync run: %v", err)
	}

	util.Info("Terminal sync complete: %d punches, %d records, %d skipped",
		stats.Pulled, len(records), stats.Skipped)

	return nil
}

func (d *Daemon) runHeartbeat(ctx context.Context) error {
	endpoints := syncer.ParseEndpoints(d.config.TerminalIPs, d.config.TerminalPort)
	if len(endpoints) == 0 {
		util.Debug("Heartbeat disabled (no terminals configured)")
		return nil
	}

	statusStorage := storage.NewTermStatusStorage(d.db)

	reachable := 0
	for _, st := range monitor.Check(ctx, endpoints, d.config.ProbeTimeout) {
		st := st
		if err := statusStorage.Save(&st); err != nil {
			util.Warn("Failed to save status for %s: %v", st.Host, err)
			continue
		}
		if st.Reachable {
			reachable++
		}
	}

	util.Debug("Heartbeat complete: %d/%d terminals reachable", reachable, len(endpoints))

	return nil
}

// LastSyncSummary returns a one-line summary of the most recent sync run, or
// an empty string when none exist.
func (d *Daemon) LastSyncSummary() string {
	run, err := storage.NewRunStorage(d.db).Latest()
	if err != nil || run == nil {
		return ""
	}

	parts := []string{
		fmt.Sprintf("%d terminals", run.Terminals),
		fmt.Sprintf("%d upserted", run.Upserted),
	}
	if run.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", run.Skipped))
	}
	return fmt.Sprintf("%s (%s)", strings.Join(parts, ", "), run.FinishedAt.Format("2006-01-02 15:04:05"))
}
