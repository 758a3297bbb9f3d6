package routers

import (
	"net/http"
	"tenpo_transactions/internal/api/handlers/transactions"
)

func transactionsRouter(h *transactions.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /transactions/edit/{id}", h.EditTransaction)

	mux.HandleFunc("POST /transactions/delete/{id}", h.RequestDelete)

	mux.HandleFunc("POST /transactions/delete/confirm", h.ConfirmDelete)

	mux.HandleFunc("POST /transactions/delete/cancel", h.CancelDelete)

	mux.HandleFunc("POST /transactions/page/{page}", h.ChangePage)

	return mux
}
