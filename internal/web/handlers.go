package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/user/fingerpulse/internal/daemon"
	"github.com/user/fingerpulse/internal/model"
	"github.com/user/fingerpulse/internal/report"
	"github.com/user/fingerpulse/internal/storage"
	"github.com/user/fingerpulse/internal/syncer"
	"github.com/user/fingerpulse/internal/util"
)

// Handlers contains HTTP handlers.
type Handlers struct {
	db     *storage.DB
	config *util.Config
}

// NewHandlers creates new handlers.
func NewHandlers(db *storage.DB, cfg *util.Config) *Handlers {
	return &Handlers{
		db:     db,
		config: cfg,
	}
}

// decodeRequest parses an optional JSON body. An empty body means "use
// configured defaults".
func decodeRequest(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// syncRequest is the caller-supplied sync parameters. Every field is
// optional; missing ones fall back to the server configuration.
type syncRequest struct {
	IPs        []string `json:"ips"`
	Port       int      `json:"port"`
	CommKey    *int     `json:"commKey"`
	TargetYear *int     `json:"targetYear"`
}

// resolve merges the request over the configured defaults. The returned
// config copy is request-scoped; the server config is never mutated.
func (req *syncRequest) resolve(cfg *util.Config) (*util.Config, []model.TerminalEndpoint, int) {
	scoped := *cfg

	ips := req.IPs
	if len(ips) == 0 {
		ips = cfg.TerminalIPs
	}
	port := req.Port
	if port <= 0 {
		port = cfg.TerminalPort
	}
	if req.CommKey != nil {
		scoped.CommKey = *req.CommKey
	}
	year := cfg.TargetYear
	if req.TargetYear != nil {
		year = *req.TargetYear
	}

	return &scoped, syncer.ParseEndpoints(ips, port), year
}

// APISyncLogs runs a full sync pass and returns the merged records. The
// response is a bare JSON array so the dashboard can consume it directly.
func (h *Handlers) APISyncLogs(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	cfg, endpoints, year := req.resolve(h.config)
	if len(endpoints) == 0 {
		writeError(w, fmt.Errorf("no terminals configured"), http.StatusBadRequest)
		return
	}

	attStorage := storage.NewAttendanceStorage(h.db)
	orch := syncer.NewFromConfig(cfg, attStorage)

	records, stats := orch.SyncAll(r.Context(), endpoints, year)

	if err := storage.NewRunStorage(h.db).Save(stats.ToRun()); err != nil {
		util.Warn("Failed to save sync run: %v", err)
	}

	writeJSON(w, records)
}

// connTestResponse mirrors what the dashboard frontend string-matches on:
// the overall status plus one log line per terminal.
type connTestResponse struct {
	Success bool          `json:"success"`
	Status  string        `json:"status"`
	Logs    []connTestLog `json:"logs"`
}

type connTestLog struct {
	IP     string `json:"ip"`
	Status string `json:"status"`
}

// APITestConnection probes every terminal and opens a short-lived session on
// each without reading attendance data.
func (h *Handlers) APITestConnection(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}

	cfg, endpoints, _ := req.resolve(h.config)
	if len(endpoints) == 0 {
		writeError(w, fmt.Errorf("no terminals configured"), http.StatusBadRequest)
		return
	}

	orch := syncer.NewFromConfig(cfg, storage.NewAttendanceStorage(h.db))
	reports := orch.TestAll(r.Context(), endpoints)

	resp := connTestResponse{Logs: make([]connTestLog, 0, len(reports))}

	online := 0
	simulated := false
	for _, rep := range reports {
		line := connTestLog{IP: rep.Endpoint.Host}
		switch rep.Status {
		case model.ConnSimulatedOnline:
			simulated = true
			online++
			line.Status = "Simulasi: OK"
		case model.ConnOnline:
			online++
			line.Status = "OK: Terhubung"
		case model.ConnProtocolError:
			line.Status = "Gagal: " + rep.Detail
		default:
			line.Status = "Gagal: Tidak dapat dijangkau"
		}
		resp.Logs = append(resp.Logs, line)
	}

	switch {
	case simulated:
		resp.Success = true
		resp.Status = "success_simulation"
	case online > 0:
		resp.Success = true
		resp.Status = "success"
	default:
		resp.Status = "failed"
	}

	writeJSON(w, resp)
}

// APIGetStatus returns service and store status.
func (h *Handlers) APIGetStatus(w http.ResponseWriter, r *http.Request) {
	running, pid := daemon.CheckRunning(h.config.DataDir)

	status := map[string]interface{}{
		"running":    running,
		"pid":        pid,
		"simulation": h.config.SimulationMode,
	}

	attStorage := storage.NewAttendanceStorage(h.db)
	if count, err := attStorage.Count(); err == nil {
		status["attendance_records"] = count
	}

	statusStorage := storage.NewTermStatusStorage(h.db)
	if count, err := statusStorage.CountReachable(); err == nil {
		status["reachable_terminals"] = count
	}
	status["configured_terminals"] = len(h.config.TerminalIPs)

	runStorage := storage.NewRunStorage(h.db)
	if run, err := runStorage.Latest(); err == nil && run != nil {
		status["last_sync"] = run
	}
	if count, err := runStorage.Count(); err == nil {
		status["sync_runs"] = count
	}

	writeJSON(w, status)
}

// APIGetAttendance returns stored attendance records, newest dates first.
func (h *Handlers) APIGetAttendance(w http.ResponseWriter, r *http.Request) {
	since := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	if s := r.URL.Query().Get("since"); s != "" {
		if _, err := time.Parse("2006-01-02", s); err != nil {
			writeError(w, fmt.Errorf("invalid since date, want YYYY-MM-DD"), http.StatusBadRequest)
			return
		}
		since = s
	}

	records, err := storage.NewAttendanceStorage(h.db).ListSince(since)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, records)
}

// APIGetTerminals returns the latest reachability sample per terminal.
func (h *Handlers) APIGetTerminals(w http.ResponseWriter, r *http.Request) {
	statuses, err := storage.NewTermStatusStorage(h.db).Latest()
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, statuses)
}

// APIGetTerminalHistory returns reachability samples for one terminal.
func (h *Handlers) APIGetTerminalHistory(w http.ResponseWriter, r *http.Request) {
	host := mux.Vars(r)["host"]

	port := h.config.TerminalPort
	if p := r.URL.Query().Get("port"); p != "" {
		if pn, err := strconv.Atoi(p); err == nil && pn > 0 {
			port = pn
		}
	}

	since := time.Now().Add(-24 * time.Hour)
	if s := r.URL.Query().Get("since"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			since = time.Now().Add(-d)
		}
	}

	statuses, err := storage.NewTermStatusStorage(h.db).History(host, port, since)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, statuses)
}

// APIGetRuns returns sync run history, newest first.
func (h *Handlers) APIGetRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if ln, err := strconv.Atoi(l); err == nil && ln > 0 && ln <= 100 {
			limit = ln
		}
	}

	runs, err := storage.NewRunStorage(h.db).List(limit)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, runs)
}

// DownloadReport generates and downloads a markdown report.
func (h *Handlers) DownloadReport(w http.ResponseWriter, r *http.Request) {
	since := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	if s := r.URL.Query().Get("since"); s != "" {
		if _, err := time.Parse("2006-01-02", s); err == nil {
			since = s
		}
	}

	gen := report.NewGenerator(h.db, h.config)
	data, err := gen.Generate(since, 20)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	content := report.FormatMarkdown(data)

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=fingerpulse_report.md")
	w.Write([]byte(content))
}

// Dashboard serves the status page.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := h.getDashboardData()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := GetTemplates().ExecuteTemplate(w, "dashboard.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handlers) getDashboardData() map[string]interface{} {
	data := make(map[string]interface{})

	data["simulation"] = h.config.SimulationMode
	data["terminal_count"] = len(h.config.TerminalIPs)

	running, _ := daemon.CheckRunning(h.config.DataDir)
	data["daemon_running"] = running

	if statuses, err := storage.NewTermStatusStorage(h.db).Latest(); err == nil {
		data["terminals"] = statuses
	}

	attStorage := storage.NewAttendanceStorage(h.db)
	if count, err := attStorage.Count(); err == nil {
		data["attendance_count"] = count
	}

	since := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	if records, err := attStorage.ListSince(since); err == nil {
		data["attendance"] = records
	}

	runStorage := storage.NewRunStorage(h.db)
	if run, err := runStorage.Latest(); err == nil && run != nil {
		data["last_run"] = run
		data["last_run_at"] = run.FinishedAt.Format("2006-01-02 15:04:05")
	}
	if runs, err := runStorage.List(10); err == nil {
		data["runs"] = runs
	}

	return data
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
