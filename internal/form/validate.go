package form

import (
	"strings"
	"tenpo_transactions/internal/models"
	"time"
)

// Validation holds the per-field verdicts for one draft.
type Validation struct {
	Fields  map[string]bool
	Overall bool
}

func (v Validation) Valid(field string) bool {
	return v.Fields[field]
}

// Validate checks every business field of tx independently. Dates without a
// zone are read in loc (time.Local when nil).
func Validate(tx models.Transaction, now time.Time, loc *time.Location) Validation {
	fields := map[string]bool{
		models.FieldNumeroTransaccion: tx.NumeroTransaccion != nil && *tx.NumeroTransaccion > 0,
		models.FieldNombreTenpista:    strings.TrimSpace(tx.NombreTenpista) != "",
		models.FieldMontoPesos:        tx.MontoPesos != nil && tx.MontoPesos.IsPositive(),
		models.FieldGiroComercio:      strings.TrimSpace(tx.GiroComercio) != "",
		models.FieldFechaTransaccion:  validFecha(tx.FechaTransaccion, now, loc),
	}

	overall := true
	for _, ok := range fields {
		overall = overall && ok
	}
	return Validation{Fields: fields, Overall: overall}
}

func validFecha(value string, now time.Time, loc *time.Location) bool {
	if value == "" {
		return false
	}
	t, err := models.ParseFecha(value, loc)
	if err != nil {
		return false
	}
	return !t.After(now)
}
