package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/japaniel/semnet/pkg/logging"
	"github.com/japaniel/semnet/pkg/network"
)

// GraphSource builds the graph for an item with the given parameters. An
// empty item means the whole corpus.
type GraphSource func(ctx context.Context, item string, p network.Params) (*network.Graph, error)

// ItemInfo describes one selectable item.
type ItemInfo struct {
	Title    string `json:"title"`
	Comments int    `json:"comments"`
}

// ItemLister lists the items a GraphSource can build.
type ItemLister func(ctx context.Context) ([]ItemInfo, error)

// Server serves the interactive explorer: a page with a parameter form and
// a JSON graph API. Every request builds its own graph.
type Server struct {
	source   GraphSource
	defaults network.Params
	opts     Options

	// Items enables the item selector and /api/items. Optional.
	Items ItemLister
	// DefaultItem is used when a request names no item.
	DefaultItem string
	// ListenAddr defaults to "localhost:0", which lets the OS pick a port.
	ListenAddr string
	// Logger receives request errors. nil means no logging.
	Logger *slog.Logger

	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer creates an explorer server. defaults fill parameters a request
// leaves out.
func NewServer(source GraphSource, defaults network.Params, opts Options) *Server {
	return &Server{
		source:   source,
		defaults: defaults,
		opts:     opts.withDefaults(),
	}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler returns the HTTP routes of the explorer.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/graph", s.handleGraph)
	mux.HandleFunc("/api/items", s.handleItems)
	return mux
}

// ListenAndServe starts the HTTP server and blocks until the context is
// cancelled. A clean shutdown returns nil. ready, if non-nil, is called with
// the page URL once the listener is open.
func (s *Server) ListenAndServe(ctx context.Context, ready func(url string)) error {
	listenAddr := s.ListenAddr
	if listenAddr == "" {
		listenAddr = "localhost:0"
	}
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	srv := s.httpServer
	s.mu.Unlock()

	// Graceful shutdown when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if ready != nil {
		ready("http://" + s.Addr() + "/")
	}

	err = srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// request is a parsed explorer query.
type request struct {
	params network.Params
	opts   Options
	item   string
}

// parseRequest reads min_weight, top_n, multiplier, policy, edge_color,
// font_color and item from q, falling back to the server defaults.
func (s *Server) parseRequest(q url.Values) (request, error) {
	req := request{params: s.defaults, opts: s.opts, item: s.DefaultItem}

	if v := q.Get("min_weight"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("%w: min_weight %q is not a number", network.ErrInvalidParameter, v)
		}
		req.params.MinWeight = f
	}
	if v := q.Get("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: top_n %q is not an integer", network.ErrInvalidParameter, v)
		}
		req.params.TopN = n
	}
	if v := q.Get("multiplier"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("%w: multiplier %q is not a number", network.ErrInvalidParameter, v)
		}
		req.params.WeightMultiplier = f
	}
	if v := q.Get("policy"); v != "" {
		p, err := network.ParsePolicy(v)
		if err != nil {
			return req, err
		}
		req.params.Policy = p
	}
	if v := q.Get("edge_color"); v != "" {
		if !ValidColor(v) {
			return req, fmt.Errorf("%w: edge_color %q is not a hex color", network.ErrInvalidParameter, v)
		}
		req.opts.EdgeColor = v
	}
	if v := q.Get("font_color"); v != "" {
		if !ValidColor(v) {
			return req, fmt.Errorf("%w: font_color %q is not a hex color", network.ErrInvalidParameter, v)
		}
		req.opts.FontColor = v
	}
	if v := q.Get("item"); v != "" {
		req.item = v
	}
	return req, req.params.Validate()
}

func (s *Server) build(ctx context.Context, req request) (*network.Graph, int, error) {
	start := time.Now()
	g, err := s.source(ctx, req.item, req.params)
	if err == nil {
		if s.Logger != nil {
			s.Logger.Log(ctx, logging.LevelTrace, "graph built",
				"item", req.item, "min_weight", req.params.MinWeight, "top_n", req.params.TopN,
				"nodes", g.NodeCount(), "edges", g.EdgeCount(), "elapsed", time.Since(start))
		}
		return g, http.StatusOK, nil
	}
	if errors.Is(err, network.ErrInvalidParameter) {
		return nil, http.StatusBadRequest, err
	}
	if errors.Is(err, ErrUnknownItem) {
		return nil, http.StatusNotFound, err
	}
	return nil, http.StatusInternalServerError, err
}

// ErrUnknownItem may be wrapped by a GraphSource for items it does not know.
var ErrUnknownItem = errors.New("unknown item")

func (s *Server) logError(r *http.Request, status int, err error) {
	if s.Logger != nil {
		s.Logger.Warn("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
}

// handleIndex serves the explorer page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	req, err := s.parseRequest(r.URL.Query())
	if err != nil {
		s.logError(r, http.StatusBadRequest, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g, status, err := s.build(r.Context(), req)
	if err != nil {
		s.logError(r, status, err)
		http.Error(w, err.Error(), status)
		return
	}

	form := &formData{
		MinWeight:  formatWeight(req.params.MinWeight),
		TopN:       req.params.TopN,
		Multiplier: formatWeight(req.params.WeightMultiplier),
		Policy:     req.params.Policy.String(),
		EdgeColor:  req.opts.EdgeColor,
		FontColor:  req.opts.FontColor,
		Item:       req.item,
	}
	if s.Items != nil {
		items, err := s.Items(r.Context())
		if err != nil {
			s.logError(r, http.StatusOK, err)
			form.Error = "无法读取条目列表: " + err.Error()
		}
		for _, it := range items {
			form.Items = append(form.Items, it.Title)
		}
	}

	html, err := renderPage(g, req.opts, form)
	if err != nil {
		s.logError(r, http.StatusInternalServerError, err)
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// handleGraph returns the graph for the query parameters as JSON.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r.URL.Query())
	if err != nil {
		s.logError(r, http.StatusBadRequest, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g, status, err := s.build(r.Context(), req)
	if err != nil {
		s.logError(r, status, err)
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RenderJSON(g))
}

// handleItems lists the selectable items.
func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if s.Items == nil {
		http.Error(w, "item listing is not available for this corpus", http.StatusNotFound)
		return
	}
	items, err := s.Items(r.Context())
	if err != nil {
		s.logError(r, http.StatusInternalServerError, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []ItemInfo{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}
