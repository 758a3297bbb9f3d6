package services

import (
	"context"
	"errors"
	"sync"
	"tenpo_transactions/internal/cache"
	"tenpo_transactions/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu      sync.Mutex
	records []models.Transaction
	lists   int
	status  int
	err     error
	deleted []int
}

func (g *fakeGateway) ListAll(ctx context.Context) ([]models.Transaction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lists++
	out := make([]models.Transaction, len(g.records))
	copy(out, g.records)
	return out, nil
}

func (g *fakeGateway) write(mutate func()) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return Result{}, g.err
	}
	if g.status < 300 {
		mutate()
	}
	return Result{Status: g.status}, nil
}

func (g *fakeGateway) Create(ctx context.Context, tx models.Transaction) (Result, error) {
	return g.write(func() {
		tx.IdTransaccion = models.IntPtr(len(g.records) + 1)
		g.records = append(g.records, tx)
	})
}

func (g *fakeGateway) Update(ctx context.Context, tx models.Transaction) (Result, error) {
	return g.write(func() {
		for i := range g.records {
			if g.records[i].ID() == tx.ID() {
				g.records[i] = tx
			}
		}
	})
}

func (g *fakeGateway) Delete(ctx context.Context, id int) (Result, error) {
	return g.write(func() {
		g.deleted = append(g.deleted, id)
		kept := g.records[:0]
		for _, tx := range g.records {
			if tx.ID() != id {
				kept = append(kept, tx)
			}
		}
		g.records = kept
	})
}

func (g *fakeGateway) listCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lists
}

func TestListIsCached(t *testing.T) {
	gw := &fakeGateway{status: 200}
	svc := NewTransactionService(gw, cache.Options{})
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)
	_, err = svc.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, gw.listCalls())
	cached, ok := svc.Cached()
	assert.True(t, ok)
	assert.Empty(t, cached)
}

func TestCreateRefetchesList(t *testing.T) {
	gw := &fakeGateway{status: 201}
	svc := NewTransactionService(gw, cache.Options{})
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)

	result, err := svc.Create(ctx, draft())
	require.NoError(t, err)
	assert.Equal(t, 201, result.Status)
	assert.Equal(t, 2, gw.listCalls())

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].NombreTenpista)
	assert.Equal(t, 2, gw.listCalls())
}

func TestRejectedWriteStillRefetches(t *testing.T) {
	gw := &fakeGateway{status: 409}
	svc := NewTransactionService(gw, cache.Options{})
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)

	result, err := svc.Update(ctx, draft())
	require.NoError(t, err)
	assert.Equal(t, 409, result.Status)
	assert.Equal(t, 2, gw.listCalls())
}

func TestTransportErrorSkipsRefetch(t *testing.T) {
	gw := &fakeGateway{err: errors.New("connection refused")}
	svc := NewTransactionService(gw, cache.Options{})
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, 4)
	require.Error(t, err)
	assert.Equal(t, 1, gw.listCalls())
}

func TestDeleteRemovesFromList(t *testing.T) {
	first := draft()
	first.IdTransaccion = models.IntPtr(1)
	gw := &fakeGateway{status: 200, records: []models.Transaction{first}}
	svc := NewTransactionService(gw, cache.Options{})
	ctx := context.Background()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, gw.deleted)

	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRevalidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	gw := &fakeGateway{status: 200}
	svc := NewTransactionService(gw, cache.Options{Now: clock})
	ctx := context.Background()

	require.NoError(t, svc.Revalidate(ctx))
	assert.Equal(t, 0, gw.listCalls(), "nothing to revalidate before the first read")

	_, err := svc.List(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Revalidate(ctx))
	assert.Equal(t, 1, gw.listCalls(), "fresh list is left alone")

	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	require.NoError(t, svc.Revalidate(ctx))
	assert.Equal(t, 2, gw.listCalls())
	assert.False(t, svc.State().Stale)
}
