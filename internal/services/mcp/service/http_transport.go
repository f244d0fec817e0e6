package service

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/diceroll/internal/platform/config"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var listenTCP = net.Listen

const (
	// defaultHTTPAddr binds to localhost unless configured otherwise.
	defaultHTTPAddr = "localhost:8081"

	// defaultShutdownTimeout is the maximum time to wait for graceful HTTP server shutdown.
	defaultShutdownTimeout = 35 * time.Second
)

// mcpHTTPEnv holds env-parsed configuration for MCP HTTP transport.
type mcpHTTPEnv struct {
	AllowedHosts []string `env:"DICEROLL_MCP_ALLOWED_HOSTS" envSeparator:","`
	AuthToken    string   `env:"DICEROLL_MCP_AUTH_TOKEN"`
}

// HTTPTransport serves MCP over the SDK's streamable HTTP handler on /mcp,
// with a health check on /mcp/health.
//
// Requests must name a loopback host or one of DICEROLL_MCP_ALLOWED_HOSTS in
// their Host and Origin headers. When DICEROLL_MCP_AUTH_TOKEN is set, /mcp
// also requires it as a bearer token.
type HTTPTransport struct {
	addr         string
	allowedHosts map[string]struct{}
	apiToken     string
	handler      http.Handler
}

// NewHTTPTransport creates an HTTP transport serving server.
func NewHTTPTransport(addr string, server *mcp.Server) *HTTPTransport {
	if addr == "" {
		addr = defaultHTTPAddr
	}
	var raw mcpHTTPEnv
	_ = config.ParseEnv(&raw)

	t := &HTTPTransport{
		addr:         addr,
		allowedHosts: parseAllowedHosts(raw.AllowedHosts),
		apiToken:     strings.TrimSpace(raw.AuthToken),
	}
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", t.guard(true, streamable))
	mux.Handle("/mcp/health", t.guard(false, http.HandlerFunc(handleHealth)))
	t.handler = mux
	return t
}

// Handler exposes the routes for embedding and tests.
func (t *HTTPTransport) Handler() http.Handler {
	return t.handler
}

// Start serves HTTP until ctx ends, then shuts down gracefully.
func (t *HTTPTransport) Start(ctx context.Context) error {
	listener, err := listenTCP("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}

	httpServer := &http.Server{Handler: t.handler}
	log.Printf("Starting MCP HTTP server on %s", listener.Addr())

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("HTTP server error: %w", err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
