package page

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"tenpo_transactions/internal/alert"
	"tenpo_transactions/internal/cache"
	"tenpo_transactions/internal/form"
	"tenpo_transactions/internal/models"
	"tenpo_transactions/internal/services"
	"tenpo_transactions/internal/table"
	"tenpo_transactions/pkg/utils"
	"time"
)

var ErrNotFound = errors.New("transaction not found")

// Store is the cached transaction collection plus its writes.
type Store interface {
	List(ctx context.Context) ([]models.Transaction, error)
	Create(ctx context.Context, tx models.Transaction) (services.Result, error)
	Update(ctx context.Context, tx models.Transaction) (services.Result, error)
	Delete(ctx context.Context, id int) (services.Result, error)
	State() cache.State
}

// Orchestrator ties the form and the table to the store. It is the only
// writer of the selected record: Edit sets it, Save, Delete and CancelEdit
// clear it.
type Orchestrator struct {
	mu       sync.Mutex
	selected *models.Transaction

	store Store
	Form  *form.Controller
	Table *table.Controller

	now func() time.Time
	loc *time.Location
}

func NewOrchestrator(store Store, now func() time.Time, loc *time.Location) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	o := &Orchestrator{
		store: store,
		now:   now,
		loc:   loc,
	}
	o.Form = form.NewController(now, loc)
	o.Table = table.NewController(now, o.Edit)
	return o
}

// Edit selects tx and loads it into the form.
func (o *Orchestrator) Edit(tx models.Transaction) {
	selected := tx.Clone()

	o.mu.Lock()
	o.selected = &selected
	o.mu.Unlock()

	o.Form.Load(selected)
}

// EditByID looks id up in the current list and edits that record.
func (o *Orchestrator) EditByID(ctx context.Context, id int) error {
	records, err := o.store.List(ctx)
	if err != nil {
		return err
	}
	for _, tx := range records {
		if tx.ID() == id && tx.IsPersisted() {
			o.Table.Edit(tx)
			return nil
		}
	}
	return ErrNotFound
}

func (o *Orchestrator) Selected() (models.Transaction, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.selected == nil {
		return models.Transaction{}, false
	}
	return o.selected.Clone(), true
}

func (o *Orchestrator) clearSelection() {
	o.mu.Lock()
	o.selected = nil
	o.mu.Unlock()
}

// CancelEdit drops the selection and starts over with an empty draft.
func (o *Orchestrator) CancelEdit() {
	o.clearSelection()
	o.Form.Reset()
}

// Save updates tx when it carries an id and creates it otherwise. The
// selection is cleared once the backend answered, whatever the status.
func (o *Orchestrator) Save(ctx context.Context, tx models.Transaction) (services.Result, error) {
	var (
		result services.Result
		err    error
	)
	if tx.IsPersisted() {
		result, err = o.store.Update(ctx, tx)
	} else {
		result, err = o.store.Create(ctx, tx)
	}
	if err != nil {
		return result, err
	}

	o.clearSelection()
	return result, nil
}

func (o *Orchestrator) Delete(ctx context.Context, id int) (services.Result, error) {
	result, err := o.store.Delete(ctx, id)
	if err != nil {
		return result, err
	}

	o.clearSelection()
	return result, nil
}

// Submit runs the form's submission through Save.
func (o *Orchestrator) Submit(ctx context.Context) (services.Result, error) {
	return o.Form.Submit(ctx, o.Save)
}

// ConfirmDelete runs the table's pending delete through Delete.
func (o *Orchestrator) ConfirmDelete(ctx context.Context) (services.Result, error) {
	return o.Table.Confirm(ctx, o.Delete)
}

// Records returns the current list. A failed fetch is logged and shows as an
// empty list.
func (o *Orchestrator) Records(ctx context.Context) []models.Transaction {
	records, err := o.store.List(ctx)
	if err != nil {
		utils.Logger.Errorf("failed to load transactions: %v", err)
		return []models.Transaction{}
	}
	return records
}

func (o *Orchestrator) NextPage(ctx context.Context) int {
	return o.Table.Next(len(o.Records(ctx)))
}

func (o *Orchestrator) PrevPage(ctx context.Context) int {
	return o.Table.Prev(len(o.Records(ctx)))
}

func (o *Orchestrator) GoToPage(ctx context.Context, page int) int {
	return o.Table.GoTo(page, len(o.Records(ctx)))
}

// Row is one table line, already formatted for display.
type Row struct {
	ID     int    `json:"idTransaccion"`
	Numero string `json:"numeroTransaccion"`
	Monto  string `json:"montoPesos"`
	Giro   string `json:"giroComercio"`
	Nombre string `json:"nombreTenpista"`
	Fecha  string `json:"fechaTransaccion"`
}

type AlertView struct {
	Visible     bool   `json:"visible"`
	Kind        string `json:"kind,omitempty"`
	Message     string `json:"message,omitempty"`
	RemainingMs int64  `json:"remainingMs,omitempty"`
}

// Snapshot is everything the page shows at one instant.
type Snapshot struct {
	Form       form.Snapshot `json:"-"`
	Fields     []form.Field  `json:"fields"`
	FormAlert  AlertView     `json:"formAlert"`
	Rows       []Row         `json:"rows"`
	Table      table.View    `json:"-"`
	TableAlert AlertView     `json:"tableAlert"`
	Selected   *int          `json:"selectedId"`
	Cache      cache.State   `json:"cache"`

	Count      int  `json:"count"`
	Page       int  `json:"page"`
	TotalPages int  `json:"totalPages"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
	ModalOpen  bool `json:"modalOpen"`
	PendingID  int  `json:"pendingId,omitempty"`
	Editing    bool `json:"editing"`
	CanSubmit  bool `json:"canSubmit"`
}

// PageIndicator is "page / total", never showing fewer than one page.
func (s Snapshot) PageIndicator() string {
	total := s.TotalPages
	if total < 1 {
		total = 1
	}
	return strconv.Itoa(s.Page) + " / " + strconv.Itoa(total)
}

func (o *Orchestrator) Snapshot(ctx context.Context) Snapshot {
	records := o.Records(ctx)
	now := o.now()

	fs := o.Form.Snapshot()
	view := o.Table.View(records)

	rows := make([]Row, 0, len(view.Rows))
	for _, tx := range view.Rows {
		rows = append(rows, o.row(tx))
	}

	s := Snapshot{
		Form:       fs,
		Fields:     fs.Fields,
		FormAlert:  alertView(fs.Alert, now),
		Rows:       rows,
		Table:      view,
		TableAlert: alertView(view.Alert, now),
		Cache:      o.store.State(),
		Count:      view.Count,
		Page:       view.Page,
		TotalPages: view.TotalPages,
		HasPrev:    view.HasPrev,
		HasNext:    view.HasNext,
		ModalOpen:  view.ModalOpen,
		PendingID:  view.PendingID,
		Editing:    fs.Editing,
		CanSubmit:  fs.CanSubmit,
	}
	if sel, ok := o.Selected(); ok {
		id := sel.ID()
		s.Selected = &id
	}
	return s
}

func alertView(a alert.Alert, now time.Time) AlertView {
	if !a.Visible(now) {
		return AlertView{}
	}
	return AlertView{
		Visible:     true,
		Kind:        string(a.Kind),
		Message:     a.Message,
		RemainingMs: a.Remaining(now).Milliseconds(),
	}
}

func (o *Orchestrator) row(tx models.Transaction) Row {
	r := Row{
		ID:     tx.ID(),
		Monto:  utils.FormatCLP(tx.MontoPesos),
		Giro:   tx.GiroComercio,
		Nombre: tx.NombreTenpista,
		Fecha:  tx.FechaTransaccion,
	}
	if fecha, err := models.ParseFecha(tx.FechaTransaccion, o.loc); err == nil {
		r.Fecha = utils.FormatFechaCL(fecha, o.loc)
	}
	if tx.NumeroTransaccion != nil {
		r.Numero = strconv.Itoa(*tx.NumeroTransaccion)
	}
	return r
}
