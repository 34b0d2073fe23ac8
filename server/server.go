// Package server exposes the wallet shell helpers over a local HTTP API for
// the UI: effective settings, remote nodes, input validation, amount
// conversion, QR codes and the address book.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fedoragold/walletshell/addressbook"
	"github.com/fedoragold/walletshell/client"
	"github.com/fedoragold/walletshell/nodes"
	"github.com/fsnotify/fsnotify"
	"github.com/go-http-utils/etag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout  = 5 * time.Second
	debounceDuration = 200 * time.Millisecond
)

type Server struct {
	Client *client.Client
	Nodes  *nodes.List
	Book   *addressbook.Book // optional

	AuthKey             string
	NodeRefreshInterval time.Duration
	// WatchPath is a settings file refreshed as soon as it is written.
	WatchPath string

	registry  *prometheus.Registry
	refreshes *prometheus.CounterVec
	nodeCount prometheus.Gauge
}

// NewServer returns a Server for c and n. book may be nil, which disables
// the address book endpoints.
func NewServer(c *client.Client, n *nodes.List, book *addressbook.Book) *Server {
	s := &Server{
		Client:   c,
		Nodes:    n,
		Book:     book,
		registry: prometheus.NewRegistry(),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletshell",
			Name:      "refresh_total",
			Help:      "Refreshes of the settings and node list by result.",
		}, []string{"target", "result"}),
		nodeCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "walletshell",
			Name:      "remote_nodes",
			Help:      "Number of remote nodes currently known.",
		}),
	}
	s.registry.MustRegister(s.refreshes, s.nodeCount)
	s.nodeCount.Set(float64(len(n.Nodes())))
	return s
}

// Handler returns the complete API: routes wrapped in etag and, when
// AuthKey is set, the X-API-KEY check.
func (s *Server) Handler() http.Handler {
	handler := etag.Handler(s.CreateHandlers(), false)
	if s.AuthKey != "" {
		handler = Auth(handler, s.AuthKey)
	}
	return handler
}

// Run listens on addr and serves until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves the API on ln and runs the node refresh loop and the
// settings file watcher alongside it. It returns when ctx is canceled or
// one of them fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logrus.WithField("addr", ln.Addr().String()).Info("Starting server")

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := httpServer.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.refreshNodes(ctx)
		return nil
	})
	if s.WatchPath != "" {
		g.Go(func() error {
			return s.watch(ctx)
		})
	}
	return g.Wait()
}

// refreshNodes refreshes the node list now and then every
// NodeRefreshInterval until ctx is canceled.
func (s *Server) refreshNodes(ctx context.Context) {
	s.RefreshNodes(ctx)
	if s.NodeRefreshInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.NodeRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.RefreshNodes(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RefreshNodes refreshes the node list once and records the result.
func (s *Server) RefreshNodes(ctx context.Context) {
	if err := s.Nodes.Refresh(ctx); err != nil {
		logrus.WithError(err).Error("error refreshing node list")
		s.refreshes.WithLabelValues("nodes", "error").Inc()
	} else {
		s.refreshes.WithLabelValues("nodes", "ok").Inc()
	}
	s.nodeCount.Set(float64(len(s.Nodes.Nodes())))
}

// RefreshSettings refreshes the settings once and records the result.
func (s *Server) RefreshSettings(ctx context.Context) {
	if err := s.Client.Refresh(ctx); err != nil {
		logrus.WithError(err).Error("error refreshing settings")
		s.refreshes.WithLabelValues("settings", "error").Inc()
		return
	}
	s.refreshes.WithLabelValues("settings", "ok").Inc()
}

// watch refreshes the settings whenever WatchPath is written. The parent
// directory is watched so editors that replace the file are noticed.
func (s *Server) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logrus.WithError(err).Debug("error closing watcher")
		}
	}()

	path := filepath.Clean(s.WatchPath)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	logrus.WithField("path", path).Debug("watching settings file")

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDuration, func() {
				s.RefreshSettings(ctx)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logrus.WithError(err).Error("error watching settings file")
		case <-ctx.Done():
			return nil
		}
	}
}

// CreateHandlers returns the routes without etag or auth.
func (s *Server) CreateHandlers() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /ready", s.ready)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /settings", s.settings)
	mux.HandleFunc("GET /nodes", s.nodes)
	mux.HandleFunc("GET /qr", s.qr)
	mux.HandleFunc("GET /hash", s.hash)
	mux.HandleFunc("GET /validate/{kind}", s.validate)
	mux.HandleFunc("GET /amount/mortal", s.amountMortal)
	mux.HandleFunc("GET /amount/immortal", s.amountImmortal)
	mux.HandleFunc("GET /explorer", s.explorer)
	mux.HandleFunc("POST /wallet-path", s.walletPath)

	if s.Book != nil {
		mux.HandleFunc("GET /addressbook", s.listEntries)
		mux.HandleFunc("POST /addressbook", s.addEntry)
		mux.HandleFunc("DELETE /addressbook/{id}", s.removeEntry)
	}
	return mux
}

// Auth rejects requests without the X-API-KEY header set to authKey. The
// health, readiness and metrics endpoints are always open.
func Auth(next http.Handler, authKey string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health", "/ready", "/metrics":
			next.ServeHTTP(w, r)
			return
		}
		key := r.Header.Get("X-API-KEY")
		if key == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		if key != authKey {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
