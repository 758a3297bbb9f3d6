package routers

import (
	"net/http"
	"tenpo_transactions/internal/api/handlers/transactions"
)

func MainRouter(h *transactions.Handler) *http.ServeMux {

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.RenderPage)
	mux.HandleFunc("GET /state", h.GetState)
	mux.HandleFunc("GET /healthz", h.Healthz)

	fRouter := formRouter(h)
	mux.Handle("/form/", fRouter)

	tRouter := transactionsRouter(h)
	mux.Handle("/transactions/", tRouter)

	return mux
}
