package session

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/atinyakov/bizcard/internal/models"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// countingStore counts sweeps and reports a fixed number of removals.
type countingStore struct {
	sweeps  atomic.Int32
	removed int
}

func (c *countingStore) Issue(ctx context.Context, ttl time.Duration) (models.AdminSession, error) {
	return models.AdminSession{}, nil
}

func (c *countingStore) Validate(ctx context.Context, token string) error { return nil }

func (c *countingStore) Revoke(ctx context.Context, token string) {}

func (c *countingStore) SweepExpired(ctx context.Context) int {
	c.sweeps.Add(1)
	return c.removed
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStartSweeper_SweepsAndLogs(t *testing.T) {
	store := &countingStore{removed: 3}

	var buf syncBuffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	logger := zap.New(core)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartSweeper(ctx, store, 10*time.Millisecond, logger)
	time.Sleep(100 * time.Millisecond)
	cancel()

	if store.sweeps.Load() == 0 {
		t.Fatal("expected at least one sweep")
	}
	if out := buf.String(); !strings.Contains(out, "swept expired admin sessions") {
		t.Errorf("expected sweep log, got:\n%s", out)
	}
}

func TestStartSweeper_CancelBeforeTick(t *testing.T) {
	store := &countingStore{}
	ctx, cancel := context.WithCancel(context.Background())

	StartSweeper(ctx, store, 100*time.Millisecond, zap.NewNop())
	cancel()
	time.Sleep(50 * time.Millisecond)

	if n := store.sweeps.Load(); n != 0 {
		t.Errorf("expected no sweeps, got %d", n)
	}
}

func TestStartSweeper_DisabledInterval(t *testing.T) {
	store := &countingStore{}
	StartSweeper(context.Background(), store, 0, zap.NewNop())
	time.Sleep(20 * time.Millisecond)

	if n := store.sweeps.Load(); n != 0 {
		t.Errorf("expected no sweeps, got %d", n)
	}
}
