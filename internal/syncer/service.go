package syncer

import (
	"strings"

	"github.com/user/fingerpulse/internal/model"
	"github.com/user/fingerpulse/internal/probes"
	"github.com/user/fingerpulse/internal/terminal"
	"github.com/user/fingerpulse/internal/util"
)

// NewFromConfig builds an orchestrator wired to the real TCP prober and the
// terminal protocol client.
func NewFromConfig(cfg *util.Config, store Store) *Orchestrator {
	opener := OpenerFunc(func(host string, port int) (Session, error) {
		client, err := terminal.Dial(host, port, terminal.Options{
			ConnectTimeout: cfg.ConnectTimeout,
			ReadTimeout:    cfg.ReadTimeout,
			CommKey:        cfg.CommKey,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	})

	return New(probes.CheckTCP, opener, store, Options{
		ProbeTimeout:  cfg.ProbeTimeout,
		ShiftIn:       cfg.ShiftIn,
		ShiftOut:      cfg.ShiftOut,
		LateThreshold: cfg.LateThreshold,
		Simulation:    cfg.SimulationMode,
	})
}

// ParseEndpoints builds terminal endpoints from an IP list, one host per
// entry. Blank entries are dropped.
func ParseEndpoints(ips []string, port int) []model.TerminalEndpoint {
	if port <= 0 {
		port = 4370
	}

	endpoints := make([]model.TerminalEndpoint, 0, len(ips))
	for _, ip := range ips {
		ip = strings.TrimSpace(ip)
		if ip == "" {
			continue
		}
		endpoints = append(endpoints, model.TerminalEndpoint{Host: ip, Port: port})
	}
	return endpoints
}
