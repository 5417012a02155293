package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/fingerpulse/internal/model"
	"github.com/user/fingerpulse/internal/util"
)

// Prober is the transport-level pre-flight check.
type Prober func(host string, port int, timeout time.Duration) bool

// Session is one open terminal session. Close must be safe to call on every
// path.
type Session interface {
	Attendances() (interface{}, error)
	Clock() (time.Time, error)
	Users() ([]model.TerminalUser, error)
	Close() error
}

// Opener opens a terminal session.
type Opener interface {
	Open(host string, port int) (Session, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(host string, port int) (Session, error)

// Open implements Opener.
func (f OpenerFunc) Open(host string, port int) (Session, error) {
	return f(host, port)
}

// Store is the attendance store as seen by the orchestrator: an idempotent
// keyed read/upsert service.
type Store interface {
	GetDaily(fingerprintID, date string) (*model.DailyAttendanceRecord, error)
	UpsertDaily(rec *model.DailyAttendanceRecord) error
}

// SkipReason explains why an endpoint contributed nothing to a sync.
type SkipReason string

const (
	SkipNone          SkipReason = ""
	SkipUnreachable   SkipReason = "unreachable"
	SkipSessionFailed SkipReason = "session_failed"
	SkipReadFailed    SkipReason = "read_failed"
	SkipPanic         SkipReason = "panic"
)

// EndpointResult is the explicit per-terminal outcome of one sync pass.
// Failures are values here, not control flow; the orchestrator folds them.
type EndpointResult struct {
	Endpoint model.TerminalEndpoint `json:"endpoint"`
	Skip     SkipReason             `json:"skip,omitempty"`
	Err      error                  `json:"-"`
	Pulled   int                    `json:"pulled"`
	Merged   int                    `json:"merged"`
	Upserted int                    `json:"upserted"`
	Skipped  int                    `json:"skipped"` // punches dropped by parse/year filter
	Dropped  int                    `json:"dropped"` // records lost to store write errors
}

// Stats summarizes one sync invocation, including the timestamp callers
// surface as "last sync".
type Stats struct {
	BatchID    string           `json:"batch_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Simulated  bool             `json:"simulated,omitempty"`
	Endpoints  []EndpointResult `json:"endpoints"`
	Pulled     int              `json:"pulled"`
	Merged     int              `json:"merged"`
	Upserted   int              `json:"upserted"`
	Skipped    int              `json:"skipped"`
}

// ToRun flattens the stats into a persistable run record. Detail lists the
// endpoints that contributed nothing and why.
func (s *Stats) ToRun() *model.SyncRun {
	run := &model.SyncRun{
		ID:         s.BatchID,
		StartedAt:  s.StartedAt,
		FinishedAt: s.FinishedAt,
		Terminals:  len(s.Endpoints),
		Pulled:     s.Pulled,
		Merged:     s.Merged,
		Upserted:   s.Upserted,
		Skipped:    s.Skipped,
	}

	var parts []string
	if s.Simulated {
		parts = append(parts, "simulation")
	}
	for _, ep := range s.Endpoints {
		if ep.Skip != SkipNone {
			parts = append(parts, fmt.Sprintf("%s: %s", ep.Endpoint.Addr(), ep.Skip))
		}
	}
	run.Detail = strings.Join(parts, "; ")

	return run
}

// Options carries the presentation defaults and timeouts threaded into every
// sync call. Zero values fall back to the original deployment's defaults.
type Options struct {
	ProbeTimeout  time.Duration
	ShiftIn       string
	ShiftOut      string
	LateThreshold string
	Remarks       string
	Simulation    bool
}

func (o *Options) fillDefaults() {
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = 2 * time.Second
	}
	if o.ShiftIn == "" {
		o.ShiftIn = "08:00"
	}
	if o.ShiftOut == "" {
		o.ShiftOut = "17:00"
	}
	if o.LateThreshold == "" {
		o.LateThreshold = "08:05"
	}
	if o.Remarks == "" {
		o.Remarks = "Baru Disinkronisasi"
	}
}

// Orchestrator drives the probe → session → normalize → merge → upsert
// pipeline across a set of terminals.
type Orchestrator struct {
	probe  Prober
	opener Opener
	store  Store
	opts   Options
}

// New creates an orchestrator.
func New(probe Prober, opener Opener, store Store, opts Options) *Orchestrator {
	opts.fillDefaults()
	return &Orchestrator{
		probe:  probe,
		opener: opener,
		store:  store,
		opts:   opts,
	}
}

// SyncAll visits the endpoints strictly sequentially; terminals share limited
// network capacity and sequential execution keeps failure isolation and log
// order simple. One failing terminal never aborts the run: its outcome is
// recorded and the loop continues. The returned slice is always well-formed;
// empty means "nothing new".
func (o *Orchestrator) SyncAll(ctx context.Context, endpoints []model.TerminalEndpoint, targetYear int) ([]model.SyncResultRecord, *Stats) {
	stats := &Stats{
		BatchID:   uuid.NewString(),
		StartedAt: time.Now(),
	}

	if o.opts.Simulation {
		util.Warn("Sync requested in simulation mode, no device I/O performed")
		stats.Simulated = true
		stats.FinishedAt = time.Now()
		return []model.SyncResultRecord{}, stats
	}

	records := []model.SyncResultRecord{}

	for _, ep := range endpoints {
		select {
		case <-ctx.Done():
			util.Warn("Sync cancelled after %d endpoints", len(stats.Endpoints))
			stats.FinishedAt = time.Now()
			return records, stats
		default:
		}

		result, batch := o.syncEndpoint(ep, targetYear, stats.BatchID, len(records))
		stats.Endpoints = append(stats.Endpoints, result)
		stats.Pulled += result.Pulled
		stats.Merged += result.Merged
		stats.Upserted += result.Upserted
		stats.Skipped += result.Skipped
		records = append(records, batch...)

		switch result.Skip {
		case SkipNone:
			util.Info("Sync %s: %d punches, %d records upserted", ep.Addr(), result.Pulled, result.Upserted)
		case SkipUnreachable:
			util.Info("Sync skip %s (unreachable)", ep.Addr())
		default:
			util.Warn("Sync skip %s (%s): %v", ep.Addr(), result.Skip, result.Err)
		}
	}

	stats.FinishedAt = time.Now()
	return records, stats
}

// syncEndpoint processes one terminal. Any panic is scoped to the endpoint
// and folded into its result so the remaining terminals still run.
func (o *Orchestrator) syncEndpoint(ep model.TerminalEndpoint, targetYear int, batchID string, offset int) (result EndpointResult, records []model.SyncResultRecord) {
	result = EndpointResult{Endpoint: ep}

	defer func() {
		if r := recover(); r != nil {
			result.Skip = SkipPanic
			result.Err = fmt.Errorf("endpoint %s: %v", ep.Addr(), r)
			records = nil
		}
	}()

	if !o.probe(ep.Host, ep.Port, o.opts.ProbeTimeout) {
		result.Skip = SkipUnreachable
		return result, nil
	}

	sess, err := o.opener.Open(ep.Host, ep.Port)
	if err != nil {
		result.Skip = SkipSessionFailed
		result.Err = err
		return result, nil
	}
	defer sess.Close()

	payload, err := sess.Attendances()
	if err != nil {
		result.Skip = SkipReadFailed
		result.Err = err
		return result, nil
	}

	raws := ExtractRecords(payload)
	result.Pulled = len(raws)

	batch := make([]model.NormalizedPunch, 0, len(raws))
	for _, raw := range raws {
		punch, err := Normalize(raw, targetYear)
		if err != nil {
			result.Skipped++
			continue
		}
		batch = append(batch, *punch)
	}

	merged := Merge(batch, o.store.GetDaily)
	result.Merged = len(merged)

	for _, rec := range merged {
		rec := rec
		if err := o.store.UpsertDaily(&rec); err != nil {
			// Dropped from the output but the batch keeps going.
			result.Dropped++
			util.Warn("Upsert failed for %s/%s: %v", rec.FingerprintID, rec.Date, err)
			continue
		}
		result.Upserted++
		records = append(records, o.project(batchID, offset+len(records), rec))
	}

	return result, records
}

// project builds the caller-facing record with its presentation defaults.
// Ownership stays unresolved here; the dashboard maps fingerprint ids to
// employees on its side.
func (o *Orchestrator) project(batchID string, idx int, rec model.DailyAttendanceRecord) model.SyncResultRecord {
	out := model.SyncResultRecord{
		ID:         fmt.Sprintf("sync-%s-%d", batchID, idx),
		EmployeeID: "unknown",
		Date:       rec.Date,
		Day:        WeekdayName(rec.Date),
		ShiftIn:    o.opts.ShiftIn,
		ShiftOut:   o.opts.ShiftOut,
		Remarks:    o.opts.Remarks,
	}

	if rec.CheckIn != "" {
		in := rec.CheckIn
		out.FingerprintIn = &in
		out.IsLate = in > o.opts.LateThreshold
	}
	if rec.CheckOut != "" {
		co := rec.CheckOut
		out.FingerprintOut = &co
	}

	return out
}

var weekdayNames = [7]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

// WeekdayName returns the localized day name for a YYYY-MM-DD date, matching
// what the dashboard displays.
func WeekdayName(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return ""
	}
	return weekdayNames[int(t.Weekday())]
}
