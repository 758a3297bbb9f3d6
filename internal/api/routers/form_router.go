package routers

import (
	"net/http"
	"tenpo_transactions/internal/api/handlers/transactions"
)

func formRouter(h *transactions.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /form/field", h.SetField)
	mux.HandleFunc("POST /form/blur", h.BlurField)
	mux.HandleFunc("POST /form/submit", h.SubmitForm)
	mux.HandleFunc("POST /form/cancel", h.CancelEdit)

	return mux
}
