// Package server provides the development preview server: it compiles a
// template file on demand, serves the resulting static HTML and islands
// JSON, and pushes live-reload events to connected browsers when the
// template or registry changes.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/isleforge/isleforge/internal/compiler"
	"github.com/isleforge/isleforge/internal/config"
	"github.com/isleforge/isleforge/internal/logging"
	"github.com/isleforge/isleforge/internal/types"
)

// reloadScript is injected into previewed pages to listen for reload pushes.
const reloadScript = `<script>
(function() {
  var ws = new WebSocket("ws://" + location.host + "/ws");
  ws.onmessage = function(ev) { if (ev.data === "reload") location.reload(); };
})();
</script>`

// PreviewServer serves compiled previews of one template file.
type PreviewServer struct {
	cfg          *config.Config
	compiler     *compiler.Compiler
	templatePath string
	logger       logging.Logger

	mutex   sync.Mutex
	clients map[*client]bool
}

type client struct {
	conn *websocket.Conn
	send chan string
}

// New creates a preview server for the template file at templatePath.
func New(cfg *config.Config, comp *compiler.Compiler, templatePath string, logger logging.Logger) *PreviewServer {
	return &PreviewServer{
		cfg:          cfg,
		compiler:     comp,
		templatePath: templatePath,
		logger:       logger.WithComponent("preview_server"),
		clients:      make(map[*client]bool),
	}
}

// Start serves until the context is canceled.
func (s *PreviewServer) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePreview)
	mux.HandleFunc("/islands", s.handleIslands)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/ws", s.handleWebSocket)

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "preview server listening", "addr", addr, "template", s.templatePath)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// compile reads and compiles the watched template in advanced mode.
func (s *PreviewServer) compile(ctx context.Context) (*types.CompilationResult, error) {
	content, err := os.ReadFile(s.templatePath)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", s.templatePath, err)
	}

	req := compiler.CompileRequest{
		Template: string(content),
		Title:    "Preview",
		Options:  types.CompilationOptions{Mode: types.ModeAdvanced},
	}
	return s.compiler.CompileCached(ctx, req)
}

func (s *PreviewServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	result, err := s.compile(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	page := result.Compiled.StaticHTML
	if !result.Success && result.Compiled.Fallback != nil {
		page = result.Compiled.Fallback.StaticHTML
	}
	page = injectReloadScript(page)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

func (s *PreviewServer) handleIslands(w http.ResponseWriter, r *http.Request) {
	result, err := s.compile(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":  result.Success,
		"islands":  result.Compiled.Islands,
		"errors":   result.Errors,
		"warnings": result.Warnings,
	})
}

func (s *PreviewServer) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.compiler.CacheStats())
}

func (s *PreviewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)},
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed")
		return
	}

	cl := &client{conn: conn, send: make(chan string, 16)}

	s.mutex.Lock()
	s.clients[cl] = true
	s.mutex.Unlock()

	go s.writePump(r.Context(), cl)
}

func (s *PreviewServer) writePump(ctx context.Context, cl *client) {
	defer func() {
		s.mutex.Lock()
		delete(s.clients, cl)
		s.mutex.Unlock()
		cl.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-cl.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := cl.conn.Write(writeCtx, websocket.MessageText, []byte(msg))
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// NotifyReload pushes a reload event to every connected client. Wired to
// the registry and template watchers.
func (s *PreviewServer) NotifyReload() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for cl := range s.clients {
		select {
		case cl.send <- "reload":
		default:
			// Client is backed up; it will reconnect after reload anyway.
		}
	}
}

func injectReloadScript(page string) string {
	if idx := strings.LastIndex(page, "</body>"); idx >= 0 {
		return page[:idx] + reloadScript + page[idx:]
	}
	return page + reloadScript
}
