//go:build integration

package worker

// Queue plumbing tests against real Redis via testcontainers: job envelope
// round-trip through LPUSH/BRPOP and dead-letter bookkeeping.
// Run with: go test -tags integration ./internal/worker/... -v

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	return redis.NewClient(opts)
}

func TestDispatcher_EnqueueReceiptRoundTrip(t *testing.T) {
	rdb := setupRedis(t)
	d := NewDispatcher(rdb)
	ctx := context.Background()

	saleID := "7f6b8f4e-0000-0000-0000-000000000001"
	require.NoError(t, d.EnqueueReceipt(ctx, map[string]interface{}{"sale_id": saleID}))

	res, err := rdb.BRPop(ctx, 5*time.Second, QueueReceipt).Result()
	require.NoError(t, err)
	require.Len(t, res, 2)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(res[1]), &job))
	assert.Equal(t, "receipt", job.Type)

	var payload ReceiptJobPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, saleID, payload.SaleID)
}

func TestDispatcher_QueuesAreIsolated(t *testing.T) {
	rdb := setupRedis(t)
	d := NewDispatcher(rdb)
	ctx := context.Background()

	require.NoError(t, d.EnqueueCashReport(ctx, map[string]interface{}{"session_id": "s1"}))

	n, err := rdb.LLen(ctx, QueueReceipt).Result()
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = rdb.LLen(ctx, QueueCashReport).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDLQ_EntryCarriesFailureMetadata(t *testing.T) {
	rdb := setupRedis(t)
	ctx := context.Background()

	payload := json.RawMessage(`{"sale_id":"abc"}`)
	SendToDLQ(ctx, rdb, QueueReceipt, "receipt", payload, "smtp unreachable", MaxReceiptRetries)

	length, err := DLQLength(ctx, rdb, QueueReceipt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	raw, err := rdb.RPop(ctx, DLQPrefix+QueueReceipt).Result()
	require.NoError(t, err)

	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))
	assert.Equal(t, QueueReceipt, entry.OriginalQueue)
	assert.Equal(t, "smtp unreachable", entry.Reason)
	assert.Equal(t, MaxReceiptRetries, entry.Attempts)
	assert.False(t, entry.FailedAt.IsZero())
}
