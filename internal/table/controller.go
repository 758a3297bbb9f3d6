package table

import (
	"context"
	"errors"
	"sync"
	"tenpo_transactions/internal/alert"
	"tenpo_transactions/internal/models"
	"tenpo_transactions/internal/services"
	"time"
)

const PageSize = 8

var ErrDeleteInFlight = errors.New("a delete is already in progress")

type DeleteFunc func(ctx context.Context, id int) (services.Result, error)

// Controller pages the transaction list and gates deletes behind a
// confirmation prompt.
type Controller struct {
	mu       sync.Mutex
	page     int
	pending  *int
	alert    alert.Alert
	inFlight bool

	now    func() time.Time
	onEdit func(models.Transaction)
}

// NewController builds a controller starting on page 1. onEdit receives the
// full record of a row whose edit action was used.
func NewController(now func() time.Time, onEdit func(models.Transaction)) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{page: 1, now: now, onEdit: onEdit}
}

// Edit hands a copy of tx to the edit callback.
func (c *Controller) Edit(tx models.Transaction) {
	if c.onEdit != nil {
		c.onEdit(tx.Clone())
	}
}

// TotalPages is ceil(count / PageSize); an empty list has no pages.
func TotalPages(count int) int {
	return (count + PageSize - 1) / PageSize
}

func clampPage(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Next moves forward unless count records already end on the current page.
func (c *Controller) Next(count int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = clampPage(c.page+1, TotalPages(count))
	return c.page
}

func (c *Controller) Prev(count int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = clampPage(c.page-1, TotalPages(count))
	return c.page
}

func (c *Controller) GoTo(page, count int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = clampPage(page, TotalPages(count))
	return c.page
}

// RequestDelete opens the confirmation prompt for id. It is ignored while a
// confirmed delete is still running.
func (c *Controller) RequestDelete(id int) {
	c.mu.Lock()
	if !c.inFlight {
		c.pending = &id
	}
	c.mu.Unlock()
}

// Cancel closes the prompt without deleting anything.
func (c *Controller) Cancel() {
	c.mu.Lock()
	if !c.inFlight {
		c.pending = nil
	}
	c.mu.Unlock()
}

// Pending returns the id awaiting confirmation.
func (c *Controller) Pending() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return 0, false
	}
	return *c.pending, true
}

// Confirm deletes the pending record through del, shows the outcome and
// closes the prompt. Without a pending id it does nothing.
func (c *Controller) Confirm(ctx context.Context, del DeleteFunc) (services.Result, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return services.Result{}, ErrDeleteInFlight
	}
	if c.pending == nil {
		c.mu.Unlock()
		return services.Result{}, nil
	}
	id := *c.pending
	c.inFlight = true
	c.mu.Unlock()

	result, err := del(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	c.pending = nil

	if err != nil {
		c.alert.ShowMessage(alert.Failure(alert.OpDelete), c.now())
		return result, err
	}
	c.alert.ShowMessage(alert.MessageFor(alert.OpDelete, result.Status, result.ErrorMessage()), c.now())
	return result, nil
}

func (c *Controller) Alert() alert.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alert
}

// View is one rendered page of the list.
type View struct {
	Rows       []models.Transaction
	Count      int
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	ModalOpen  bool
	PendingID  int
	Deleting   bool
	Alert      alert.Alert
}

// View slices records for the current page. A page left beyond the end by a
// shrinking list is pulled back to the last page.
func (c *Controller) View(records []models.Transaction) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := TotalPages(len(records))
	c.page = clampPage(c.page, total)

	start := (c.page - 1) * PageSize
	end := start + PageSize
	if start > len(records) {
		start = len(records)
	}
	if end > len(records) {
		end = len(records)
	}

	v := View{
		Rows:       records[start:end],
		Count:      len(records),
		Page:       c.page,
		TotalPages: total,
		HasPrev:    c.page > 1,
		HasNext:    c.page < total,
		Deleting:   c.inFlight,
		Alert:      c.alert,
	}
	if c.pending != nil {
		v.ModalOpen = true
		v.PendingID = *c.pending
	}
	return v
}
