package transport

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/dshills/ragmcp/internal/apperr"
	"github.com/dshills/ragmcp/internal/dispatcher"
	"github.com/dshills/ragmcp/internal/store"
)

// mcpProtocolVersion is the MCP wire revision this server speaks.
const mcpProtocolVersion = "2024-11-05"

// fixedClientID is the PKCE façade's single registered client. Nothing in
// this server distinguishes between OAuth clients, so one fixed id covers
// every caller.
const fixedClientID = "ragmcp"

const (
	authCodeTTL     = 2 * time.Minute
	heartbeatPeriod = 30 * time.Second
)

// HTTPConfig carries the [http_server] config table plus the shared
// secret that doubles as OAuth client secret and bearer token.
type HTTPConfig struct {
	Addr           string   // e.g. ":8081"
	Authless       bool     // bypass bearer checks entirely
	BearerToken    string   // RAGMCP_API_KEY; also the PKCE façade's issued access_token
	AllowedOrigins []string // CORS allow-list; "*" allows any origin
}

// authCode is a single in-flight authorization code, live for authCodeTTL
// and consumed exactly once by /token.
type authCode struct {
	redirectURI   string
	codeChallenge string
	expiresAt     time.Time
}

// HTTP serves the dispatcher over HTTP, SSE, and an authorization-code
// with PKCE façade. One shared secret (HTTPConfig.BearerToken) plays both
// the OAuth client secret role and the bearer token /mcp and /sse accept;
// the façade exists so MCP clients that only know how to speak OAuth can
// still reach that single secret.
type HTTP struct {
	dispatcher *dispatcher.Dispatcher
	store      store.Store
	cfg        HTTPConfig
	hub        *sseHub
	mux        *http.ServeMux

	mu    sync.Mutex
	codes map[string]*authCode
}

// NewHTTP builds the HTTP transport and wires its route table.
func NewHTTP(d *dispatcher.Dispatcher, st store.Store, cfg HTTPConfig) *HTTP {
	h := &HTTP{
		dispatcher: d,
		store:      st,
		cfg:        cfg,
		hub:        newSSEHub(),
		codes:      make(map[string]*authCode),
	}
	h.mux = http.NewServeMux()
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /.well-known/mcp-server", h.handleServerDescriptor)
	h.mux.HandleFunc("GET /.well-known/mcp.json", h.handleServerDescriptor)
	h.mux.HandleFunc("GET /.well-known/oauth-authorization-server", h.handleOAuthMetadata)
	h.mux.HandleFunc("GET /authorize", h.handleAuthorize)
	h.mux.HandleFunc("POST /token", h.handleToken)
	h.mux.HandleFunc("POST /mcp", h.requireBearer(h.handleMCP))
	h.mux.HandleFunc("GET /sse", h.requireBearer(h.handleSSE))
	return h
}

// Handler returns the wired mux wrapped in CORS handling, for tests and
// for embedding in a caller-managed *http.Server.
func (h *HTTP) Handler() http.Handler {
	return h.withCORS(h.mux)
}

// ListenAndServe blocks, serving HTTP until ctx is cancelled.
func (h *HTTP) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{Addr: h.cfg.Addr, Handler: h.Handler()}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// BroadcastToolsChanged notifies every open SSE connection that the
// published tool list has changed. The current tool set is fixed at
// startup, so nothing in this server calls it today; it exists because
// the wire protocol promises the event and a future dynamic tool set
// (e.g. per-namespace tool gating) would need exactly this hook.
func (h *HTTP) BroadcastToolsChanged() {
	h.hub.broadcast("event: tool_list_changed\ndata: {}\n\n")
}

func (h *HTTP) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && h.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTP) originAllowed(origin string) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return false
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// requireBearer enforces the shared-secret bearer check unless the
// server is configured authless.
func (h *HTTP) requireBearer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.cfg.Authless {
			next(w, r)
			return
		}
		tok, ok := bearerToken(r)
		if !ok || tok != h.cfg.BearerToken {
			w.Header().Set("WWW-Authenticate", `Bearer realm="ragmcp"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix)), true
}

func (h *HTTP) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, err := h.store.Status(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	state := "ok"
	if !status.Health.DatabaseAccessible || !status.Health.FTSIndexesBuilt {
		state = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           state,
		"documents_count":  status.DocumentsCount,
		"chunks_count":      status.ChunksCount,
		"embeddings_count": status.EmbeddingsCount,
	})
}

func (h *HTTP) handleServerDescriptor(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":             ServerName,
		"version":          ServerVersion,
		"protocolVersion":  mcpProtocolVersion,
		"transport":        []string{"stdio", "http"},
	})
}

func (h *HTTP) handleOAuthMetadata(w http.ResponseWriter, r *http.Request) {
	base := issuerBase(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"issuer":                                base,
		"authorization_endpoint":                base + "/authorize",
		"token_endpoint":                         base + "/token",
		"response_types_supported":               []string{"code"},
		"grant_types_supported":                  []string{"authorization_code"},
		"code_challenge_methods_supported":        []string{"S256"},
		"token_endpoint_auth_methods_supported":   []string{"none"},
	})
}

func issuerBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// handleAuthorize implements the authorization step of the PKCE façade.
// Since there is exactly one user and one client, consent is implicit:
// a valid request is immediately issued a code and redirected back.
func (h *HTTP) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("response_type") != "code" {
		http.Error(w, "unsupported_response_type", http.StatusBadRequest)
		return
	}
	if q.Get("client_id") != fixedClientID {
		http.Error(w, "unauthorized_client", http.StatusBadRequest)
		return
	}
	redirectURI := q.Get("redirect_uri")
	if redirectURI == "" {
		http.Error(w, "invalid_request: redirect_uri required", http.StatusBadRequest)
		return
	}
	if q.Get("code_challenge_method") != "S256" {
		http.Error(w, "invalid_request: code_challenge_method must be S256", http.StatusBadRequest)
		return
	}
	challenge := q.Get("code_challenge")
	if challenge == "" {
		http.Error(w, "invalid_request: code_challenge required", http.StatusBadRequest)
		return
	}

	code, err := randomToken(32)
	if err != nil {
		http.Error(w, "server_error", http.StatusInternalServerError)
		return
	}
	h.mu.Lock()
	h.codes[code] = &authCode{
		redirectURI:   redirectURI,
		codeChallenge: challenge,
		expiresAt:     time.Now().Add(authCodeTTL),
	}
	h.mu.Unlock()

	dest := redirectURI + sep(redirectURI) + "code=" + code
	if state := q.Get("state"); state != "" {
		dest += "&state=" + state
	}
	http.Redirect(w, r, dest, http.StatusFound)
}

func sep(redirectURI string) string {
	if strings.Contains(redirectURI, "?") {
		return "&"
	}
	return "?"
}

// handleToken implements the token exchange step. The issued access
// token is always the configured shared secret: it's the same value
// /mcp and /sse already accept, so there's nothing else to mint.
func (h *HTTP) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid_request", http.StatusBadRequest)
		return
	}
	if r.FormValue("grant_type") != "authorization_code" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unsupported_grant_type"})
		return
	}
	code := r.FormValue("code")
	verifier := r.FormValue("code_verifier")

	h.mu.Lock()
	entry, ok := h.codes[code]
	if ok {
		delete(h.codes, code)
	}
	h.mu.Unlock()

	if !ok || time.Now().After(entry.expiresAt) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
		return
	}
	if redirect := r.FormValue("redirect_uri"); redirect != "" && redirect != entry.redirectURI {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant"})
		return
	}
	if verifier == "" || oauth2.S256ChallengeFromVerifier(verifier) != entry.codeChallenge {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_grant", "error_description": "code_verifier mismatch"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": h.cfg.BearerToken,
		"token_type":   "Bearer",
		"expires_in":   86400,
	})
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// handleMCP is the line-framed transport's sibling: one JSON-RPC request
// per POST body, one JSON-RPC response per HTTP response body, except
// notifications (no "id"), which get a bare 202.
func (h *HTTP) handleMCP(w http.ResponseWriter, r *http.Request) {
	var req jsonrpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, newJSONRPCError(nil, -32700, "parse error"))
		return
	}

	isNotification := req.ID == nil
	resp := h.dispatch(r.Context(), req)
	if isNotification {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSSE opens a long-lived Server-Sent Events stream that pushes
// heartbeats every 30s and tool-list change notifications. It carries no
// tool-call traffic; those go through POST /mcp per the wire protocol.
func (h *HTTP) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := h.hub.register()
	defer h.hub.unregister(ch)

	ticker := time.NewTicker(heartbeatPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, "event: ping\ndata: {}\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case frame, ok := <-ch:
			if !ok {
				return
			}
			if _, err := fmt.Fprint(w, frame); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sseHub fans server-to-client events out to every open SSE connection.
type sseHub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

func newSSEHub() *sseHub {
	return &sseHub{clients: make(map[chan string]struct{})}
}

func (h *sseHub) register() chan string {
	ch := make(chan string, 8)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *sseHub) unregister(ch chan string) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *sseHub) broadcast(frame string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- frame:
		default: // slow client; drop rather than block the broadcaster
		}
	}
}

// --- JSON-RPC dispatch ---

type jsonrpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonrpcResponse struct {
	JSONRPC string         `json:"jsonrpc"`
	ID      any            `json:"id,omitempty"`
	Result  any            `json:"result,omitempty"`
	Error   *jsonrpcErrObj `json:"error,omitempty"`
}

type jsonrpcErrObj struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newJSONRPCError(id any, code int, message string) jsonrpcResponse {
	return jsonrpcResponse{JSONRPC: "2.0", ID: id, Error: &jsonrpcErrObj{Code: code, Message: message}}
}

func (h *HTTP) dispatch(ctx context.Context, req jsonrpcRequest) jsonrpcResponse {
	switch req.Method {
	case "initialize":
		return jsonrpcResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{
			"protocolVersion": mcpProtocolVersion,
			"serverInfo":      map[string]any{"name": ServerName, "version": ServerVersion},
			"capabilities":    map[string]any{"tools": map[string]any{}},
		}}
	case "notifications/initialized":
		return jsonrpcResponse{JSONRPC: "2.0", ID: req.ID}
	case "tools/list":
		tools := make([]map[string]any, 0, len(h.dispatcher.ListTools()))
		for _, t := range h.dispatcher.ListTools() {
			tools = append(tools, map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"inputSchema": t.InputSchema,
			})
		}
		return jsonrpcResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{"tools": tools}}
	case "tools/call":
		return h.dispatchToolCall(ctx, req)
	default:
		return newJSONRPCError(req.ID, -32601, "method not found: "+req.Method)
	}
}

func (h *HTTP) dispatchToolCall(ctx context.Context, req jsonrpcRequest) jsonrpcResponse {
	var params struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return newJSONRPCError(req.ID, -32602, "invalid params")
		}
	}

	res, err := h.dispatcher.Call(ctx, params.Name, params.Arguments)
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return newJSONRPCError(req.ID, appErr.JSONRPCCode(), appErr.Message)
		}
		return newJSONRPCError(req.ID, -32603, "internal error")
	}
	return jsonrpcResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{
		"content": []map[string]any{{"type": "text", "text": res.Text}},
		"isError": res.IsError,
	}}
}
