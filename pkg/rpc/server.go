package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/glorpus-work/vguard/internal/logger"
	"github.com/glorpus-work/vguard/pkg/auth"
	"github.com/glorpus-work/vguard/pkg/backend"
	"github.com/glorpus-work/vguard/pkg/errors"
	"github.com/glorpus-work/vguard/pkg/metrics"
	"github.com/glorpus-work/vguard/pkg/model"
)

type handlerFunc func(ctx context.Context, raw json.RawMessage) (any, error)

// Server exposes a backend.Service over HTTP.
type Server struct {
	svc      backend.Service
	metrics  metrics.Metrics
	mux      *http.ServeMux
	handlers map[string]handlerFunc
	addr     string
	token    string

	mu    sync.Mutex
	srv   *http.Server
	ln    net.Listener
	start bool
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithMetrics records every call and every protect, switch and clean run, and mounts the Prometheus handler at /metrics.
func WithMetrics(p *metrics.Prom) ServerOption {
	return func(s *Server) {
		s.metrics = p
		s.mux.Handle("/metrics", p.Handler())
	}
}

// WithToken requires every call to carry token as a bearer credential. /health stays open.
func WithToken(token string) ServerOption {
	return func(s *Server) { s.token = token }
}

// NewServer creates a server for svc listening on addr once started.
func NewServer(svc backend.Service, addr string, opts ...ServerOption) *Server {
	s := &Server{
		svc:     svc,
		metrics: metrics.Noop{},
		mux:     http.NewServeMux(),
		addr:    addr,
	}
	s.handlers = s.routes()
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc(pathPrefix, s.handleCall)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the root handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return auth.RequireBearer(s.token, s.mux, "/health")
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Start listens and serves in the background until ctx is done or Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.start {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.addr)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := s.srv
	go func() {
		logger.Info("Backend server listening", logger.Fields{"addr": ln.Addr().String()})
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("Backend server error", logger.Fields{"error": err})
		}
	}()
	s.start = true
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()
	return nil
}

// Shutdown stops the server, waiting for in-flight calls until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil || !s.start {
		return nil
	}
	err := s.srv.Shutdown(ctx)
	s.start = false
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", contentTypeJSON)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeEnvelope(w, http.StatusMethodNotAllowed, envelope{Error: &wireError{Message: "method not allowed"}})
		return
	}
	method := strings.TrimPrefix(r.URL.Path, pathPrefix)
	h, ok := s.handlers[method]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, envelope{Error: &wireError{Message: "unknown method " + method}})
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, envelope{Error: &wireError{Message: "read body: " + err.Error()}})
		return
	}

	start := time.Now()
	result, err := h(r.Context(), raw)
	took := time.Since(start)
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.ObserveCall(method, status, took.Seconds())
	if kind, ok := runKinds[method]; ok {
		s.metrics.ObserveRun(kind, err == nil && succeeded(result), took.Seconds())
	}

	if err != nil {
		logger.Warn("Backend call failed", logger.Fields{"method": method, "error": err})
		writeEnvelope(w, http.StatusOK, envelope{Error: encodeError(err)})
		return
	}
	logger.Debug("Backend call", logger.Fields{"method": method, "took": took})

	data, err := json.Marshal(result)
	if err != nil {
		writeEnvelope(w, http.StatusInternalServerError, envelope{Error: &wireError{Message: err.Error()}})
		return
	}
	writeEnvelope(w, http.StatusOK, envelope{Result: data})
}

// runKinds maps the calls that change the installation to the run they count as.
var runKinds = map[string]model.RunKind{
	MethodApplyProtection: model.RunProtect,
	MethodSwitchVersion:   model.RunSwitch,
	MethodCleanCache:      model.RunClean,
}

func succeeded(result any) bool {
	switch r := result.(type) {
	case model.ProtectionResult:
		return r.Success
	case model.SwitchResult:
		return r.Success
	case model.CacheCleanResult:
		return r.Success
	}
	return false
}

func writeEnvelope(w http.ResponseWriter, code int, env envelope) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(env)
}

func decodeArgs(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrap(err, "invalid arguments")
	}
	return nil
}

func (s *Server) routes() map[string]handlerFunc {
	noArgs := func(fn func(ctx context.Context) (any, error)) handlerFunc {
		return func(ctx context.Context, _ json.RawMessage) (any, error) { return fn(ctx) }
	}
	return map[string]handlerFunc{
		MethodPrecheck: noArgs(func(ctx context.Context) (any, error) {
			return s.svc.PerformPrecheck(ctx)
		}),
		MethodScanVersions: noArgs(func(ctx context.Context) (any, error) {
			v, err := s.svc.ScanVersions(ctx)
			if v == nil {
				v = []model.InstalledVersion{}
			}
			return v, err
		}),
		MethodArchiveVersions: noArgs(func(ctx context.Context) (any, error) {
			v, err := s.svc.GetArchiveVersions(ctx)
			if v == nil {
				v = []model.ArchiveVersion{}
			}
			return v, err
		}),
		MethodCacheSize: noArgs(func(ctx context.Context) (any, error) {
			return s.svc.CalculateCacheSize(ctx)
		}),
		MethodCleanCache: noArgs(func(ctx context.Context) (any, error) {
			return s.svc.CleanCache(ctx)
		}),
		MethodSwitchVersion: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args pathArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			return s.svc.SwitchVersion(ctx, args.Path)
		},
		MethodApplyProtection: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var req model.ProtectionRequest
			if err := decodeArgs(raw, &req); err != nil {
				return nil, err
			}
			return s.svc.ApplyProtection(ctx, req)
		},
		MethodProtectionStatus: noArgs(func(ctx context.Context) (any, error) {
			return s.svc.ProtectionStatus(ctx)
		}),
		MethodRemoveProtection: noArgs(func(ctx context.Context) (any, error) {
			return s.svc.RemoveProtection(ctx)
		}),
		MethodListBackups: noArgs(func(ctx context.Context) (any, error) {
			v, err := s.svc.ListBackups(ctx)
			if v == nil {
				v = []model.BackupMetadata{}
			}
			return v, err
		}),
		MethodRestoreBackup: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args idArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			return s.svc.RestoreBackup(ctx, args.ID)
		},
		MethodDeleteBackup: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args idArgs
			if err := decodeArgs(raw, &args); err != nil {
				return nil, err
			}
			return struct{}{}, s.svc.DeleteBackup(ctx, args.ID)
		},
		MethodClearBackups: noArgs(func(ctx context.Context) (any, error) {
			return s.svc.ClearBackups(ctx)
		}),
		MethodBackupSize: noArgs(func(ctx context.Context) (any, error) {
			return s.svc.BackupSize(ctx)
		}),
		MethodLaunch: noArgs(func(ctx context.Context) (any, error) {
			return s.svc.Launch(ctx)
		}),
	}
}
