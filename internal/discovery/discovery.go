// Package discovery advertises the dashboard's web server over mDNS.
package discovery

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog/log"
)

const (
	ServiceType   = "_pcmonitor._tcp"
	ServiceDomain = "local."
)

// Service owns one zeroconf registration.
type Service struct {
	mu       sync.Mutex
	server   *zeroconf.Server
	instance string
	port     int
	ip       string
}

// New prepares an advertisement for port. ip is published in the TXT record
// and may be empty.
func New(port int, ip string) *Service {
	host, _ := os.Hostname()
	return &Service{instance: InstanceName(host), port: port, ip: ip}
}

// InstanceName derives the advertised instance from the host name.
func InstanceName(host string) string {
	host = strings.TrimSpace(host)
	if i := strings.IndexByte(host, '.'); i > 0 {
		host = host[:i]
	}
	if host == "" {
		host = "host"
	}
	return host + "-pcmonitor"
}

func (s *Service) txt() []string {
	rec := []string{"version=1", "path=/", "ws=/ws"}
	if s.ip != "" {
		rec = append(rec, "ip="+s.ip)
	}
	return rec
}

// Start registers the service. Calling it twice is a no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return nil
	}
	server, err := zeroconf.Register(s.instance, ServiceType, ServiceDomain, s.port, s.txt(), nil)
	if err != nil {
		return fmt.Errorf("register mdns service: %w", err)
	}
	s.server = server
	log.Info().Str("instance", s.instance).Int("port", s.port).Msg("mdns advertisement started")
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return
	}
	s.server.Shutdown()
	s.server = nil
	log.Info().Msg("mdns advertisement stopped")
}

func (s *Service) Instance() string { return s.instance }

func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server != nil
}
