// Package web mirrors the dashboard over HTTP: an HTML page, a JSON
// endpoint, a websocket stream and the setup portal.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Dicklesworthstone/pcmonitor/internal/configstore"
	"github.com/Dicklesworthstone/pcmonitor/internal/dashboard"
	"github.com/Dicklesworthstone/pcmonitor/internal/model"
)

type Options struct {
	Latest *dashboard.Latest
	// Weather is nil when the weather page is disabled.
	Weather func() model.Weather
	Store   configstore.Store
	// SetupActive gates the setup portal.
	SetupActive func() bool
	// OnSaved runs after credentials were stored.
	OnSaved func(configstore.Credentials)
	// LinkStatus is served as plain text on /ip.
	LinkStatus func() string
	Now        func() time.Time
}

type Server struct {
	opts Options
	hub  *Hub
	mux  *http.ServeMux
}

func New(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Latest == nil {
		opts.Latest = dashboard.NewLatest(opts.Now())
	}
	s := &Server{opts: opts, mux: http.NewServeMux()}
	s.hub = NewHub(func() []byte {
		b, _ := s.metricsJSON(s.opts.Latest.Load())
		return b
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/metrics", s.handleMetrics)
	s.mux.HandleFunc("/ip", s.handleIP)
	s.mux.HandleFunc("/ws", s.handleWS)
	s.mux.HandleFunc("/setup", s.handleSetup)
	s.mux.HandleFunc("/setup/save", s.handleSave)
}

// Handler is the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return Chain(Recovery, Logging, CORS)(s.mux)
}

func (s *Server) Hub() *Hub { return s.hub }

// Publish pushes snap to websocket subscribers. It is safe to call from the
// render loop: encoding is cheap and Broadcast never blocks.
func (s *Server) Publish(snap dashboard.Snapshot) {
	b, err := s.metricsJSON(snap)
	if err != nil {
		log.Error().Err(err).Msg("encode metrics")
		return
	}
	s.hub.Broadcast(b)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hub and the HTTP server on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go s.hub.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("web server listening")
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) metricsJSON(snap dashboard.Snapshot) ([]byte, error) {
	var w *model.Weather
	if s.opts.Weather != nil {
		cur := s.opts.Weather()
		w = &cur
	}
	return json.Marshal(BuildMetrics(snap, w, s.opts.Now()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(indexHTML))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	b, err := s.metricsJSON(s.opts.Latest.Load())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(b)
}

func (s *Server) handleIP(w http.ResponseWriter, r *http.Request) {
	text := "unknown"
	if s.opts.LinkStatus != nil {
		text = s.opts.LinkStatus()
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}

func (s *Server) setupActive() bool {
	return s.opts.Store != nil && s.opts.SetupActive != nil && s.opts.SetupActive()
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	if !s.setupActive() {
		http.NotFound(w, r)
		return
	}
	page := setupPage{Units: configstore.DefaultUnits}
	if c, _, err := configstore.Load(r.Context(), s.opts.Store); err == nil {
		page.SSID, page.City, page.Units = c.SSID, c.City, c.Units
	}
	s.renderSetup(w, http.StatusOK, page)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if !s.setupActive() {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form: "+err.Error(), http.StatusBadRequest)
		return
	}
	c := configstore.Credentials{
		SSID:     r.PostFormValue("ssid"),
		Password: r.PostFormValue("pass"),
		APIKey:   r.PostFormValue("apikey"),
		City:     r.PostFormValue("city"),
		Units:    r.PostFormValue("units"),
	}
	err := configstore.Save(r.Context(), s.opts.Store, c)
	switch {
	case errors.Is(err, configstore.ErrIncomplete):
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Missing required fields"))
		return
	case err != nil:
		log.Error().Err(err).Msg("save credentials")
		http.Error(w, "could not save settings", http.StatusInternalServerError)
		return
	}
	log.Info().Str("city", c.City).Msg("setup saved")
	if s.opts.OnSaved != nil {
		s.opts.OnSaved(c.Normalize())
	}
	s.renderSetup(w, http.StatusOK, setupPage{Saved: true})
}

func (s *Server) renderSetup(w http.ResponseWriter, code int, page setupPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := setupTmpl.Execute(w, page); err != nil {
		log.Error().Err(err).Msg("render setup page")
	}
}

// LocalIP returns the first non-loopback IPv4 address.
func LocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	return "", errors.New("no non-loopback IPv4 address")
}

// Port extracts the numeric port from a listen address such as ":8080".
func Port(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(p)
	return n
}
