package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/queue-service/internal/domain"
)

func sampleSnapshot() *domain.StatisticsSnapshot {
	return &domain.StatisticsSnapshot{
		WindowDays:           7,
		WindowStart:          time.Date(2026, 6, 8, 12, 0, 0, 0, time.UTC),
		WindowEnd:            time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
		TotalTicketsInPeriod: 4,
	}
}

func TestStatisticsCacheRoundTrip(t *testing.T) {
	client, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	cache := NewStatisticsCache(client, 3*time.Second, zap.NewNop())
	snapshot := sampleSnapshot()
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)

	mock.ExpectSet("stats:tickets:7", raw, 3*time.Second).SetVal("OK")
	cache.Set(context.Background(), 7, snapshot)

	mock.ExpectGet("stats:tickets:7").SetVal(string(raw))
	got, ok := cache.Get(context.Background(), 7)
	require.True(t, ok)
	assert.Equal(t, snapshot.TotalTicketsInPeriod, got.TotalTicketsInPeriod)
	assert.True(t, got.WindowStart.Equal(snapshot.WindowStart))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatisticsCacheMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	cache := NewStatisticsCache(client, 3*time.Second, zap.NewNop())

	mock.ExpectGet("stats:tickets:30").RedisNil()
	_, ok := cache.Get(context.Background(), 30)
	assert.False(t, ok)
}

func TestStatisticsCacheDegradesOnFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	cache := NewStatisticsCache(client, 3*time.Second, zap.NewNop())

	mock.ExpectGet("stats:tickets:7").SetErr(errors.New("connection refused"))
	_, ok := cache.Get(context.Background(), 7)
	assert.False(t, ok)

	snapshot := sampleSnapshot()
	raw, err := json.Marshal(snapshot)
	require.NoError(t, err)
	mock.ExpectSet("stats:tickets:7", raw, 3*time.Second).SetErr(errors.New("connection refused"))
	cache.Set(context.Background(), 7, snapshot)
}

func TestStatisticsCacheCorruptEntry(t *testing.T) {
	client, mock := redismock.NewClientMock()
	defer mock.ClearExpect()

	cache := NewStatisticsCache(client, 3*time.Second, zap.NewNop())

	mock.ExpectGet("stats:tickets:7").SetVal("{not json")
	_, ok := cache.Get(context.Background(), 7)
	assert.False(t, ok)
}

func TestStatisticsCacheDisabled(t *testing.T) {
	cache := NewStatisticsCache(nil, 3*time.Second, zap.NewNop())
	_, ok := cache.Get(context.Background(), 7)
	assert.False(t, ok)
	cache.Set(context.Background(), 7, sampleSnapshot())

	client, _ := redismock.NewClientMock()
	zeroTTL := NewStatisticsCache(client, 0, zap.NewNop())
	_, ok = zeroTTL.Get(context.Background(), 7)
	assert.False(t, ok)
}
