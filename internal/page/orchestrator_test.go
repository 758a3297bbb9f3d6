package page

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"tenpo_transactions/internal/cache"
	"tenpo_transactions/internal/models"
	"tenpo_transactions/internal/services"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type memoryStore struct {
	mu      sync.Mutex
	records []models.Transaction
	status  int
	listErr error

	created []models.Transaction
	updated []models.Transaction
	deleted []int
}

func (s *memoryStore) List(ctx context.Context) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.Transaction, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *memoryStore) Create(ctx context.Context, tx models.Transaction) (services.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, tx)
	return services.Result{Status: s.status}, nil
}

func (s *memoryStore) Update(ctx context.Context, tx models.Transaction) (services.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, tx)
	return services.Result{Status: s.status}, nil
}

func (s *memoryStore) Delete(ctx context.Context, id int) (services.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return services.Result{Status: s.status}, nil
}

func (s *memoryStore) State() cache.State {
	return cache.State{HasData: true}
}

func record(id int) models.Transaction {
	return models.Transaction{
		IdTransaccion:     models.IntPtr(id),
		NumeroTransaccion: models.IntPtr(10 + id),
		NombreTenpista:    "Ana",
		MontoPesos:        models.AmountPtr(1000),
		GiroComercio:      "Retail",
		FechaTransaccion:  "2024-01-01T10:00",
	}
}

func newTestOrchestrator(store *memoryStore) *Orchestrator {
	return NewOrchestrator(store, func() time.Time { return testNow }, time.UTC)
}

func TestEditThenSaveUpdatesSameRecord(t *testing.T) {
	store := &memoryStore{status: http.StatusOK, records: []models.Transaction{record(3), record(7)}}
	o := newTestOrchestrator(store)
	ctx := context.Background()

	require.NoError(t, o.EditByID(ctx, 7))
	sel, ok := o.Selected()
	require.True(t, ok)
	assert.Equal(t, 7, sel.ID())
	assert.True(t, o.Form.Snapshot().Editing)

	_, err := o.Submit(ctx)
	require.NoError(t, err)

	require.Len(t, store.updated, 1)
	assert.Empty(t, store.created)
	assert.Equal(t, record(7), store.updated[0])

	_, ok = o.Selected()
	assert.False(t, ok)
	assert.Equal(t, models.EmptyTransaction(), o.Form.Draft())
}

func TestSaveWithoutSelectionCreates(t *testing.T) {
	store := &memoryStore{status: http.StatusCreated}
	o := newTestOrchestrator(store)

	for name, value := range map[string]string{
		models.FieldNumeroTransaccion: "5",
		models.FieldNombreTenpista:    "Luis",
		models.FieldMontoPesos:        "2.500",
		models.FieldGiroComercio:      "Farmacia",
		models.FieldFechaTransaccion:  "2024-05-01T09:00",
	} {
		require.NoError(t, o.Form.SetField(name, value))
	}

	result, err := o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, result.Status)

	require.Len(t, store.created, 1)
	assert.Empty(t, store.updated)
	assert.Nil(t, store.created[0].IdTransaccion)
	assert.Equal(t, "2500", store.created[0].MontoPesos.String())
}

func TestFailedSaveStillClearsSelection(t *testing.T) {
	store := &memoryStore{status: http.StatusConflict, records: []models.Transaction{record(7)}}
	o := newTestOrchestrator(store)
	ctx := context.Background()

	require.NoError(t, o.EditByID(ctx, 7))
	_, err := o.Submit(ctx)
	require.NoError(t, err)

	_, ok := o.Selected()
	assert.False(t, ok)
	assert.Equal(t, 7, o.Form.Draft().ID(), "draft survives a rejected write")
}

func TestEditByIDUnknown(t *testing.T) {
	store := &memoryStore{records: []models.Transaction{record(1)}}
	o := newTestOrchestrator(store)

	assert.ErrorIs(t, o.EditByID(context.Background(), 9), ErrNotFound)

	store.listErr = errors.New("backend down")
	err := o.EditByID(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestCancelEdit(t *testing.T) {
	store := &memoryStore{records: []models.Transaction{record(1)}}
	o := newTestOrchestrator(store)

	require.NoError(t, o.EditByID(context.Background(), 1))
	o.CancelEdit()

	_, ok := o.Selected()
	assert.False(t, ok)
	assert.False(t, o.Form.Snapshot().Editing)
}

func TestConfirmDeleteClearsSelection(t *testing.T) {
	store := &memoryStore{status: http.StatusOK, records: []models.Transaction{record(1), record(2)}}
	o := newTestOrchestrator(store)
	ctx := context.Background()

	require.NoError(t, o.EditByID(ctx, 2))
	o.Table.RequestDelete(2)

	_, err := o.ConfirmDelete(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, store.deleted)

	_, ok := o.Selected()
	assert.False(t, ok)
}

func TestSnapshot(t *testing.T) {
	list := make([]models.Transaction, 0, 10)
	for i := 1; i <= 10; i++ {
		list = append(list, record(i))
	}
	store := &memoryStore{status: http.StatusOK, records: list}
	o := newTestOrchestrator(store)
	ctx := context.Background()

	require.NoError(t, o.EditByID(ctx, 4))
	o.NextPage(ctx)
	o.Table.RequestDelete(9)

	s := o.Snapshot(ctx)
	assert.Equal(t, 10, s.Count)
	assert.Equal(t, 2, s.Page)
	assert.Equal(t, 2, s.TotalPages)
	assert.Equal(t, "2 / 2", s.PageIndicator())
	assert.True(t, s.HasPrev)
	assert.False(t, s.HasNext)
	assert.True(t, s.ModalOpen)
	assert.Equal(t, 9, s.PendingID)
	assert.True(t, s.Editing)
	require.NotNil(t, s.Selected)
	assert.Equal(t, 4, *s.Selected)

	require.Len(t, s.Rows, 2)
	assert.Equal(t, Row{
		ID:     9,
		Numero: "19",
		Monto:  "$1.000",
		Giro:   "Retail",
		Nombre: "Ana",
		Fecha:  "01-01-2024, 10:00",
	}, s.Rows[0])
	assert.False(t, s.FormAlert.Visible)
}

func TestSnapshotWithFailingList(t *testing.T) {
	store := &memoryStore{listErr: errors.New("backend down")}
	o := newTestOrchestrator(store)

	s := o.Snapshot(context.Background())
	assert.Equal(t, 0, s.Count)
	assert.Empty(t, s.Rows)
	assert.Equal(t, "1 / 1", s.PageIndicator())
}

func TestAlertViewCountsDown(t *testing.T) {
	store := &memoryStore{status: http.StatusOK, records: []models.Transaction{record(1)}}
	o := newTestOrchestrator(store)
	ctx := context.Background()

	o.Table.RequestDelete(1)
	_, err := o.ConfirmDelete(ctx)
	require.NoError(t, err)

	s := o.Snapshot(ctx)
	assert.True(t, s.TableAlert.Visible)
	assert.Equal(t, "success", s.TableAlert.Kind)
	assert.EqualValues(t, 5000, s.TableAlert.RemainingMs)
}

func TestRowKeepsUnparseableDate(t *testing.T) {
	tx := record(1)
	tx.FechaTransaccion = "sin fecha"
	store := &memoryStore{records: []models.Transaction{tx}}
	o := newTestOrchestrator(store)

	s := o.Snapshot(context.Background())
	require.Len(t, s.Rows, 1)
	assert.Equal(t, "sin fecha", s.Rows[0].Fecha)
}
