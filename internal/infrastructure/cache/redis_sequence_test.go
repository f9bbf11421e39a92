package cache_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/billmaster-api/internal/infrastructure/cache"
)

// Requiere un Redis real en TEST_REDIS_ADDR; sin él se omite.
func TestRedisSequence_Next(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR no definido")
	}
	ctx := context.Background()
	seq := cache.NewRedisSequence(addr, os.Getenv("TEST_REDIS_PASSWORD"), 0)
	t.Cleanup(func() { _ = seq.Close() })
	require.NoError(t, seq.Ping(ctx))

	// Día único por ejecución para no chocar con corridas previas.
	day := fmt.Sprintf("T%d", time.Now().UnixNano())
	first, err := seq.Next(ctx, day)
	require.NoError(t, err)
	second, err := seq.Next(ctx, day)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
}
