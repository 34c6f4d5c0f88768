package app

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirerelay/internal/config"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestOpenStoreSeedsChannels(t *testing.T) {
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "relay.db")

	st, err := OpenStore(context.Background(), &cfg)
	require.NoError(t, err)
	channels, err := st.ListChannels(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.Close())
	assert.Len(t, channels, len(cfg.SeedChannels))

	// Reopening is idempotent.
	st, err = OpenStore(context.Background(), &cfg)
	require.NoError(t, err)
	again, err := st.ListChannels(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.Close())
	assert.Len(t, again, len(cfg.SeedChannels))
}

func TestRunServesAndShutsDown(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = freeAddr(t)
	cfg.DatabasePath = filepath.Join(t.TempDir(), "relay.db")
	cfg.UploadDir = t.TempDir()
	cfg.ShutdownTimeout = time.Second

	logger := zerolog.Nop()
	application, err := New(context.Background(), &cfg, &logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.Addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
