// Package web exposes the sync API and a lightweight status dashboard.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/user/fingerpulse/internal/model"
	"github.com/user/fingerpulse/internal/monitor"
	"github.com/user/fingerpulse/internal/storage"
	"github.com/user/fingerpulse/internal/syncer"
	"github.com/user/fingerpulse/internal/util"
)

// Server is the web server.
type Server struct {
	db     *storage.DB
	config *util.Config
	port   int
	srv    *http.Server
	cancel context.CancelFunc
}

// NewServer creates a new web server.
func NewServer(db *storage.DB, cfg *util.Config, port int) *Server {
	return &Server{
		db:     db,
		config: cfg,
		port:   port,
	}
}

// Start starts the web server. It blocks until shutdown.
func (s *Server) Start() error {
	r := mux.NewRouter()

	h := NewHandlers(s.db, s.config)

	r.HandleFunc("/", h.Dashboard).Methods(http.MethodGet)
	r.HandleFunc("/api/sync-logs", h.APISyncLogs).Methods(http.MethodPost)
	r.HandleFunc("/api/test-connection", h.APITestConnection).Methods(http.MethodPost)
	r.HandleFunc("/api/status", h.APIGetStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/attendance", h.APIGetAttendance).Methods(http.MethodGet)
	r.HandleFunc("/api/terminals", h.APIGetTerminals).Methods(http.MethodGet)
	r.HandleFunc("/api/terminals/{host}/history", h.APIGetTerminalHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/runs", h.APIGetRuns).Methods(http.MethodGet)
	r.HandleFunc("/report", h.DownloadReport).Methods(http.MethodGet)

	// Background heartbeat keeps the terminal status fresh while the server
	// runs, independent of the daemon.
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	statusStorage := storage.NewTermStatusStorage(s.db)
	monitor.Run(ctx, s.config.HeartbeatInterval, s.config.ProbeTimeout,
		func() ([]model.TerminalEndpoint, error) {
			return syncer.ParseEndpoints(s.config.TerminalIPs, s.config.TerminalPort), nil
		},
		func(st model.TerminalStatus) {
			if err := statusStorage.Save(&st); err != nil {
				util.Error("Heartbeat save: %v", err)
			}
		})

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // sync requests talk to slow devices
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.srv.Shutdown(ctx)
	}()

	util.Info("Web server starting on port %d", s.port)

	err := s.srv.ListenAndServe()
	cancel()
	if err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop stops the web server.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.srv.Shutdown(ctx)
}
