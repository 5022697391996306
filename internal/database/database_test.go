package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fin-advisor-go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	// One named in-memory database per test, shared by the pool's connections.
	store, err := NewDatabase(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOrderJournal(t *testing.T) {
	// Arrange
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 6, 14, 15, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		rec := models.OrderRecord{
			OrderID:      id,
			Ticker:       "AGG",
			Side:         "buy",
			PriceType:    "market",
			Quantity:     float64(i + 1),
			Status:       "accepted",
			SubmittedAt:  base.Add(time.Duration(i) * time.Minute),
			IsSimulation: true,
		}
		require.NoError(t, store.SaveOrder(ctx, &rec))
	}

	// Act
	orders, err := store.ListOrders(ctx, 2)

	// Assert
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "c", orders[0].OrderID)
	assert.Equal(t, "b", orders[1].OrderID)
	assert.True(t, orders[0].IsSimulation)
}

func TestDuplicateOrderID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveOrder(ctx, &models.OrderRecord{OrderID: "dup", Ticker: "AGG"}))
	assert.Error(t, store.SaveOrder(ctx, &models.OrderRecord{OrderID: "dup", Ticker: "TLT"}))
}

func TestSnapshots(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	day := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	_, err := store.GetSnapshot(ctx, "GOOGL")
	assert.ErrorIs(t, err, ErrNotFound)

	first := models.HistorySnapshot{Ticker: "GOOGL", Period: "6m", Interval: "1d", Points: []models.HistoricalPoint{}, CapturedAt: time.Now().UTC()}
	require.NoError(t, store.UpsertSnapshot(ctx, &first))
	assert.Equal(t, 0, first.PointCount)

	second := models.HistorySnapshot{Ticker: "GOOGL", Period: "1y", Interval: "1d", Points: []models.HistoricalPoint{{Date: day, Value: 1}, {Date: day.AddDate(0, 0, 1), Value: 2}}, CapturedAt: time.Now().UTC()}
	require.NoError(t, store.UpsertSnapshot(ctx, &second))

	got, err := store.GetSnapshot(ctx, "GOOGL")
	require.NoError(t, err)
	assert.Equal(t, "1y", got.Period)
	assert.Equal(t, 2, got.PointCount)
	require.Len(t, got.Points, 2)
	assert.True(t, day.Equal(got.Points[0].Date))
	assert.Equal(t, 2.0, got.Points[1].Value)
}
