package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/portgraph/internal/dto"
	"github.com/aretw0/portgraph/internal/logging"
	presentation "github.com/aretw0/portgraph/internal/presentation/graph"
	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/ports"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/aretw0/portgraph/pkg/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Catalog lists the node types a server advertises.
type Catalog interface {
	Types() []*schema.NodeType
}

// Server exposes a workspace over HTTP.
type Server struct {
	Workspace *workspace.Manager
	Catalog   Catalog
	Streams   *StreamManager
	Watcher   ports.Watchable
	Version   string

	logger   *slog.Logger
	gatherer prometheus.Gatherer
	validate *validator.Validate
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithWatcher streams source changes on GET /events.
func WithWatcher(w ports.Watchable) Option {
	return func(s *Server) {
		s.Watcher = w
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.Version = v
	}
}

// NewHandler creates a new HTTP handler for the workspace.
func NewHandler(ws *workspace.Manager, catalog Catalog, opts ...Option) http.Handler {
	s := &Server{
		Workspace: ws,
		Catalog:   catalog,
		Streams:   NewStreamManager(),
		Version:   "dev",
		logger:    logging.NewNop(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/types", s.ListTypes)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.Watcher != nil {
		r.Get("/events", s.SubscribeSource)
	}

	r.Route("/graphs", func(r chi.Router) {
		r.Get("/", s.ListGraphs)
		r.Route("/{graphID}", func(r chi.Router) {
			r.Get("/", s.GetGraph)
			r.Put("/", s.PutGraph)
			r.Delete("/", s.DeleteGraph)
			r.Get("/mermaid", s.GetMermaid)
			r.Get("/events", s.SubscribeGraph)

			r.Post("/nodes", s.AddNode)
			r.Post("/nodes/{nodeID}/copy", s.CopyNode)
			r.Delete("/nodes/{nodeID}", s.RemoveNode)
			r.Post("/nodes/{nodeID}/ports", s.AddPort)
			r.Delete("/nodes/{nodeID}/ports/{port}", s.RemovePort)

			r.Post("/connections", s.Connect)
			r.Delete("/connections", s.Disconnect)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "portgraph-http",
		"version": strings.TrimSpace(s.Version),
	})
}

// ListTypes handles the GET /types request.
func (s *Server) ListTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.DescribeTypes(s.Catalog.Types()))
}

// ListGraphs handles the GET /graphs request.
func (s *Server) ListGraphs(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Workspace.List(r.Context())
	if err != nil {
		s.fail(w, "ListGraphs", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetGraph handles the GET /graphs/{graphID} request. ?format=yaml selects YAML.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Workspace.Document(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		s.fail(w, "GetGraph", err)
		return
	}
	if r.URL.Query().Get("format") == string(codec.FormatYAML) {
		data, err := codec.Marshal(doc, codec.FormatYAML)
		if err != nil {
			s.fail(w, "GetGraph", err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// PutGraph handles the PUT /graphs/{graphID} request. The body is a graph
// document in JSON, or YAML when the Content-Type says so.
func (s *Server) PutGraph(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	format := codec.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = codec.FormatYAML
	}
	doc, err := codec.Unmarshal(data, format)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid document: %v", err), http.StatusBadRequest)
		s.logger.Warn("PutGraph: Invalid document", "err", err)
		return
	}

	id := chi.URLParam(r, "graphID")
	// A missing previous version makes the diff the whole document.
	previous, _ := s.Workspace.Document(r.Context(), id)
	g, err := s.Workspace.Put(r.Context(), id, doc)
	if err != nil {
		s.fail(w, "PutGraph", err)
		return
	}
	stored, err := codec.Encode(g)
	if err != nil {
		s.fail(w, "PutGraph", err)
		return
	}
	stored.Description = doc.Description
	if diff := codec.Diff(previous, stored); diff != nil {
		s.changed(id, "put", diff)
	}
	writeJSON(w, http.StatusOK, stored)
}

// DeleteGraph handles the DELETE /graphs/{graphID} request.
func (s *Server) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "graphID")
	if err := s.Workspace.Delete(r.Context(), id); err != nil {
		s.fail(w, "DeleteGraph", err)
		return
	}
	s.changed(id, "delete", nil)
	w.WriteHeader(http.StatusNoContent)
}

// GetMermaid handles the GET /graphs/{graphID}/mermaid request.
func (s *Server) GetMermaid(w http.ResponseWriter, r *http.Request) {
	g, err := s.Workspace.Open(r.Context(), chi.URLParam(r, "graphID"))
	if err != nil {
		s.fail(w, "GetMermaid", err)
		return
	}
	var overlay *presentation.GraphOverlay
	if sel := r.URL.Query().Get("select"); sel != "" {
		overlay = &presentation.GraphOverlay{SelectedNode: sel}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, presentation.GenerateMermaid(g, overlay))
}

// AddNode handles the POST /graphs/{graphID}/nodes request.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var spec workspace.NodeSpec
	if !s.decode(w, r, &spec) {
		return
	}
	id := chi.URLParam(r, "graphID")
	nd, err := s.Workspace.AddNode(r.Context(), id, spec)
	if err != nil {
		s.fail(w, "AddNode", err)
		return
	}
	s.changed(id, "add_node", nd)
	writeJSON(w, http.StatusCreated, nd)
}

// CopyNode handles the POST /graphs/{graphID}/nodes/{nodeID}/copy request.
func (s *Server) CopyNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "graphID")
	nd, err := s.Workspace.CopyNode(r.Context(), id, chi.URLParam(r, "nodeID"))
	if err != nil {
		s.fail(w, "CopyNode", err)
		return
	}
	s.changed(id, "copy_node", nd)
	writeJSON(w, http.StatusCreated, nd)
}

// RemoveNode handles the DELETE /graphs/{graphID}/nodes/{nodeID} request.
func (s *Server) RemoveNode(w http.ResponseWriter, r *http.Request) {
	id, nodeID := chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID")
	if err := s.Workspace.RemoveNode(r.Context(), id, nodeID); err != nil {
		s.fail(w, "RemoveNode", err)
		return
	}
	s.changed(id, "remove_node", map[string]string{"node": nodeID})
	w.WriteHeader(http.StatusNoContent)
}

// AddPort handles the POST /graphs/{graphID}/nodes/{nodeID}/ports request.
func (s *Server) AddPort(w http.ResponseWriter, r *http.Request) {
	var spec workspace.PortSpec
	if !s.decode(w, r, &spec) {
		return
	}
	id := chi.URLParam(r, "graphID")
	nd, err := s.Workspace.AddPort(r.Context(), id, chi.URLParam(r, "nodeID"), spec)
	if err != nil {
		s.fail(w, "AddPort", err)
		return
	}
	s.changed(id, "add_port", nd)
	writeJSON(w, http.StatusCreated, nd)
}

// RemovePort handles the DELETE /graphs/{graphID}/nodes/{nodeID}/ports/{port} request.
func (s *Server) RemovePort(w http.ResponseWriter, r *http.Request) {
	id, nodeID, port := chi.URLParam(r, "graphID"), chi.URLParam(r, "nodeID"), chi.URLParam(r, "port")
	if err := s.Workspace.RemovePort(r.Context(), id, nodeID, port); err != nil {
		s.fail(w, "RemovePort", err)
		return
	}
	s.changed(id, "remove_port", map[string]string{"node": nodeID, "port": port})
	w.WriteHeader(http.StatusNoContent)
}

// Connect handles the POST /graphs/{graphID}/connections request.
func (s *Server) Connect(w http.ResponseWriter, r *http.Request) {
	var link workspace.Link
	if !s.decode(w, r, &link) {
		return
	}
	id := chi.URLParam(r, "graphID")
	if err := s.Workspace.Connect(r.Context(), id, link); err != nil {
		s.fail(w, "Connect", err)
		return
	}
	s.changed(id, "connect", link)
	writeJSON(w, http.StatusCreated, link)
}

// Disconnect handles the DELETE /graphs/{graphID}/connections request.
func (s *Server) Disconnect(w http.ResponseWriter, r *http.Request) {
	var link workspace.Link
	if !s.decode(w, r, &link) {
		return
	}
	id := chi.URLParam(r, "graphID")
	if err := s.Workspace.Disconnect(r.Context(), id, link); err != nil {
		s.fail(w, "Disconnect", err)
		return
	}
	s.changed(id, "disconnect", link)
	w.WriteHeader(http.StatusNoContent)
}

// -- Events --

// ChangeEvent is broadcast to graph subscribers after every successful edit.
type ChangeEvent struct {
	Graph string `json:"graph"`
	Op    string `json:"op"`
	Data  any    `json:"data,omitempty"`
}

func (s *Server) changed(graphID, op string, data any) {
	bytes, err := json.Marshal(ChangeEvent{Graph: graphID, Op: op, Data: data})
	if err != nil {
		s.logger.Error("Failed to encode change event", "graph_id", graphID, "err", err)
		return
	}
	s.Streams.Broadcast(graphID, string(bytes))
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // GraphID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(graphID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[graphID]; !ok {
		sm.subscribers[graphID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[graphID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[graphID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, graphID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(graphID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	sm.logger.Debug("StreamManager: Broadcasting", "graph_id", graphID, "payload_size", len(msg))

	for ch := range sm.subscribers[graphID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "graph_id", graphID)
		}
	}
}

// SubscribeGraph handles the GET /graphs/{graphID}/events request (SSE).
// ?op=a,b keeps only the listed operations.
func (s *Server) SubscribeGraph(w http.ResponseWriter, r *http.Request) {
	flusher, ok := startStream(w)
	if !ok {
		return
	}

	graphID := chi.URLParam(r, "graphID")
	s.logger.Info("SSE: Subscribing to Graph Updates", "graph_id", graphID)

	ch, cancel := s.Streams.Subscribe(graphID)
	defer cancel()

	var ops map[string]bool
	if filter := r.URL.Query().Get("op"); filter != "" {
		ops = make(map[string]bool)
		for _, op := range strings.Split(filter, ",") {
			ops[strings.TrimSpace(op)] = true
		}
	}

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "graph_id", graphID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if ops != nil {
				var e ChangeEvent
				if err := json.Unmarshal([]byte(msg), &e); err == nil && !ops[e.Op] {
					continue
				}
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// SubscribeSource handles the GET /events request (SSE): the IDs of graphs
// whose source documents changed.
func (s *Server) SubscribeSource(w http.ResponseWriter, r *http.Request) {
	events, err := s.Watcher.Watch(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Watch error: %v", err), http.StatusInternalServerError)
		return
	}
	flusher, ok := startStream(w)
	if !ok {
		return
	}
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", id)
			flusher.Flush()
		}
	}
}

func startStream(w http.ResponseWriter) (http.Flusher, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return nil, false
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return flusher, true
}

// -- Helpers --

const maxBody = 4 << 20

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return false
	}
	return true
}

// statusOf maps domain errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrGraphNotFound),
		errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrPortNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrGraphExists):
		return http.StatusConflict
	case errors.Is(err, codec.ErrInvalidDocument),
		errors.Is(err, domain.ErrConnectionRejected),
		errors.Is(err, domain.ErrInvalidPortOperation),
		errors.Is(err, domain.ErrUnknownNodeType),
		errors.Is(err, domain.ErrUnknownValueType),
		errors.Is(err, domain.ErrSchema),
		errors.Is(err, domain.ErrIndexOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "status", status, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
