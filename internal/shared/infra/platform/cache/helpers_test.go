package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// recordingCache registra las operaciones y falla si le llega un contexto ya cancelado.
type recordingCache struct {
	sets    chan string
	deletes chan string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{
		sets:    make(chan string, 1),
		deletes: make(chan string, 1),
	}
}

func (c *recordingCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	return false, nil
}

func (c *recordingCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sets <- key
	return nil
}

func (c *recordingCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.deletes <- key
	return nil
}

var _ Cache = (*recordingCache)(nil)

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case key := <-ch:
		return key
	case <-time.After(time.Second):
		t.Fatal("la operación de caché no se completó")
		return ""
	}
}

// Las operaciones asíncronas deben completarse aunque la petición original ya
// esté cancelada; si no, una entrada borrada en el repo quedaría viva en caché.
func TestAsyncCacheHelpers_SurviveCancelledRequest(t *testing.T) {
	cache := newRecordingCache()

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // la petición ya terminó

	AsyncCacheSet(ctx, cache, "task:1", "payload", 60, zap.NewNop())
	assert.Equal(t, "task:1", waitFor(t, cache.sets))

	AsyncCacheDelete(ctx, cache, "task:1", zap.NewNop())
	assert.Equal(t, "task:1", waitFor(t, cache.deletes))
}

func TestAsyncCacheHelpers_NilCacheIsNoop(t *testing.T) {
	// No debe entrar en pánico ni lanzar goroutines con una caché sin configurar.
	AsyncCacheSet(context.Background(), nil, "k", "v", 60, zap.NewNop())
	AsyncCacheDelete(context.Background(), nil, "k", zap.NewNop())
}
