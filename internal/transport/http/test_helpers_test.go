package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/wirerelay/internal/auth"
	"github.com/vovakirdan/wirerelay/internal/config"
	"github.com/vovakirdan/wirerelay/internal/core"
	"github.com/vovakirdan/wirerelay/internal/store"
	"github.com/vovakirdan/wirerelay/internal/store/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	ts    *httptest.Server
	hub   *core.Hub
	auth  *auth.Service
	store store.Store
	cfg   config.Config
}

// newTestEnv starts a full server on an in-memory store seeded with the
// default channels. mutate may adjust the configuration first.
func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.JWTSecret = "test-secret"
	cfg.JWTIssuer = "test"
	cfg.JWTAudience = "test"
	cfg.UploadDir = t.TempDir()
	cfg.PingInterval = 0
	if mutate != nil {
		mutate(&cfg)
	}

	st, err := sqlite.NewWithSetup(":memory:", sqlite.ApplySchema)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	if err := st.EnsureChannels(context.Background(), cfg.SeedChannels); err != nil {
		t.Fatalf("seed channels: %v", err)
	}

	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.TokenTTL,
	}, auth.WithPasswordCost(bcrypt.MinCost))

	disabledLogger := zerolog.Nop()
	hub := core.NewHub(store.NewGateway(st), &disabledLogger)

	server := NewServer(hub, authService, st, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})

	return &testEnv{ts: ts, hub: hub, auth: authService, store: st, cfg: cfg}
}

// registerAndLogin creates a user and returns a session token for it.
func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()

	ctx := context.Background()
	if _, err := e.auth.Register(ctx, username, "password123"); err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	token, _, err := e.auth.Login(ctx, username, "password123")
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	return token
}

func (e *testEnv) channelID(t *testing.T, name string) int64 {
	t.Helper()

	channels, err := e.store.ListChannels(context.Background())
	if err != nil {
		t.Fatalf("list channels: %v", err)
	}
	for _, ch := range channels {
		if ch.Name == name {
			return ch.ID
		}
	}
	t.Fatalf("channel %q not seeded", name)
	return 0
}

func (e *testEnv) wsURL() string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + "/ws"
}

// dial opens an authenticated WebSocket using the Authorization header.
func (e *testEnv) dial(t *testing.T, ctx context.Context, token string) *websocket.Conn {
	t.Helper()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.Dial(ctx, e.wsURL(), &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

// doJSON performs a request against the test server with an optional bearer token.
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.ts.URL+path, &payload)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.ts.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, v any) {
	t.Helper()
	if err := wsjson.Write(ctx, conn, v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readUntil reads frames until one has the wanted type, skipping others.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, wantType string) map[string]any {
	t.Helper()

	for {
		var frame map[string]any
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("read waiting for %s: %v", wantType, err)
		}
		if frame["type"] == wantType {
			return frame
		}
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out: %s", msg)
}
