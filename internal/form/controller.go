package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"tenpo_transactions/internal/alert"
	"tenpo_transactions/internal/models"
	"tenpo_transactions/internal/services"
	"tenpo_transactions/pkg/utils"
	"time"
)

var (
	ErrInvalidDraft   = errors.New("draft is not valid")
	ErrSubmitInFlight = errors.New("a submit is already in progress")
	ErrUnknownField   = errors.New("unknown field")
)

type SubmitFunc func(ctx context.Context, tx models.Transaction) (services.Result, error)

// Controller owns the single editable draft.
type Controller struct {
	mu       sync.Mutex
	draft    models.Transaction
	touched  map[string]bool
	alert    alert.Alert
	inFlight bool

	now func() time.Time
	loc *time.Location
}

func NewController(now func() time.Time, loc *time.Location) *Controller {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Controller{
		draft:   models.EmptyTransaction(),
		touched: make(map[string]bool),
		now:     now,
		loc:     loc,
	}
}

func isField(name string) bool {
	for _, f := range models.EditableFields {
		if f == name {
			return true
		}
	}
	return false
}

// SetField applies raw input text to the draft.
func (c *Controller) SetField(name, raw string) error {
	if !isField(name) {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case models.FieldNumeroTransaccion:
		c.draft.NumeroTransaccion = parseNumero(raw)
	case models.FieldMontoPesos:
		c.draft.MontoPesos = utils.ParseCLP(raw)
	case models.FieldNombreTenpista:
		c.draft.NombreTenpista = raw
	case models.FieldGiroComercio:
		c.draft.GiroComercio = raw
	case models.FieldFechaTransaccion:
		c.draft.FechaTransaccion = raw
	}
	return nil
}

// parseNumero returns nil for empty or non-integer input.
func parseNumero(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func (c *Controller) Blur(name string) error {
	if !isField(name) {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	c.mu.Lock()
	c.touched[name] = true
	c.mu.Unlock()
	return nil
}

// Load replaces the draft with a copy of a selected record.
func (c *Controller) Load(tx models.Transaction) {
	c.mu.Lock()
	c.draft = tx.Clone()
	c.mu.Unlock()
}

// Reset empties the draft and forgets which fields were touched.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
}

func (c *Controller) resetLocked() {
	c.draft = models.EmptyTransaction()
	c.touched = make(map[string]bool)
}

func (c *Controller) Draft() models.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

func (c *Controller) Touched(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched[name]
}

func (c *Controller) Validation() Validation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Validate(c.draft, c.now(), c.loc)
}

// CanSubmit is false while the draft is invalid or a submit is pending.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.inFlight && Validate(c.draft, c.now(), c.loc).Overall
}

// FieldState is Neutral until the field has been blurred at least once.
func (c *Controller) FieldState(name string) FieldState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fieldStateLocked(name, Validate(c.draft, c.now(), c.loc))
}

func (c *Controller) fieldStateLocked(name string, v Validation) FieldState {
	if !c.touched[name] {
		return Neutral
	}
	if v.Valid(name) {
		return Valid
	}
	return Invalid
}

func (c *Controller) Alert() alert.Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alert
}

// Submit sends the draft through submit when every field is valid. HTTP
// failures become a danger alert and leave the draft as it was; only a 200
// or 201 clears it.
func (c *Controller) Submit(ctx context.Context, submit SubmitFunc) (services.Result, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return services.Result{}, ErrSubmitInFlight
	}
	if !Validate(c.draft, c.now(), c.loc).Overall {
		c.mu.Unlock()
		return services.Result{}, ErrInvalidDraft
	}
	c.inFlight = true
	tx := c.draft.Clone()
	c.mu.Unlock()

	op := alert.OpCreate
	if tx.IsPersisted() {
		op = alert.OpUpdate
	}

	result, err := submit(ctx, tx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	if err != nil {
		c.alert.ShowMessage(alert.Failure(op), c.now())
		return result, err
	}

	c.alert.ShowMessage(alert.MessageFor(op, result.Status, result.ErrorMessage()), c.now())
	if result.Status == 200 || result.Status == 201 {
		c.resetLocked()
	}
	return result, nil
}

// Field is everything the page needs to render one input.
type Field struct {
	Name     string     `json:"name"`
	Label    string     `json:"label"`
	Value    string     `json:"value"`
	State    FieldState `json:"state"`
	Feedback string     `json:"feedback"`
}

// Snapshot is a consistent view of the form at one instant.
type Snapshot struct {
	Draft     models.Transaction
	Fields    []Field
	Valid     bool
	CanSubmit bool
	Editing   bool
	Alert     alert.Alert
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := Validate(c.draft, c.now(), c.loc)
	fields := make([]Field, 0, len(models.EditableFields))
	for _, name := range models.EditableFields {
		fields = append(fields, Field{
			Name:     name,
			Label:    Label(name),
			Value:    inputValue(c.draft, name),
			State:    c.fieldStateLocked(name, v),
			Feedback: InvalidFeedback(name),
		})
	}

	return Snapshot{
		Draft:     c.draft.Clone(),
		Fields:    fields,
		Valid:     v.Overall,
		CanSubmit: v.Overall && !c.inFlight,
		Editing:   c.draft.IsPersisted(),
		Alert:     c.alert,
	}
}

func inputValue(tx models.Transaction, name string) string {
	switch name {
	case models.FieldNumeroTransaccion:
		if tx.NumeroTransaccion == nil {
			return ""
		}
		return strconv.Itoa(*tx.NumeroTransaccion)
	case models.FieldMontoPesos:
		return utils.FormatCLP(tx.MontoPesos)
	case models.FieldNombreTenpista:
		return tx.NombreTenpista
	case models.FieldGiroComercio:
		return tx.GiroComercio
	case models.FieldFechaTransaccion:
		return tx.FechaTransaccion
	}
	return ""
}
