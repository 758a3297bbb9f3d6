package transactions

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"tenpo_transactions/internal/api/handlers"
	"tenpo_transactions/internal/form"
	"tenpo_transactions/internal/models"
	"tenpo_transactions/internal/page"
	"tenpo_transactions/internal/table"
	"tenpo_transactions/pkg/utils"
	"time"

	"github.com/google/uuid"
)

// SessionCookie carries the id of the browser's page session.
const SessionCookie = "tenpo_session"

//go:embed templates/page.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.New("page.html").Funcs(template.FuncMap{
	"inputType": inputType,
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
}).ParseFS(templatesFS, "templates/page.html"))

func inputType(field string) string {
	switch field {
	case models.FieldNumeroTransaccion:
		return "number"
	case models.FieldFechaTransaccion:
		return "datetime-local"
	default:
		return "text"
	}
}

// Handler turns browser events into calls on the caller's page session.
type Handler struct {
	Sessions *page.Sessions
	// RequestTimeout bounds the page's own reads of the list; zero means none.
	RequestTimeout time.Duration
	// SecureCookie marks the session cookie Secure, for TLS deployments.
	SecureCookie bool
}

func NewHandler(sessions *page.Sessions) *Handler {
	return &Handler{Sessions: sessions}
}

// session returns the orchestrator of the caller's session, opening a new one
// under a fresh id when the cookie is missing or unknown.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *page.Orchestrator {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		if o, ok := h.Sessions.Lookup(c.Value); ok {
			return o
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	utils.Logger.Debugf("opened page session %s", id)
	return h.Sessions.Open(id)
}

func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	if h.RequestTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.RequestTimeout)
}

// respond answers a page event: JSON snapshot for scripted callers, a
// redirect back to the page for browsers.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, p *page.Orchestrator) {
	if handlers.WantsJSON(r) {
		ctx, cancel := h.ctx(r)
		defer cancel()
		utils.WriteJSON(w, p.Snapshot(ctx))
		return
	}
	handlers.RedirectHome(w, r)
}

// FUNC TO RENDER THE TRANSACTIONS PAGE
func (h *Handler) RenderPage(w http.ResponseWriter, r *http.Request) {
	p := h.session(w, r)
	ctx, cancel := h.ctx(r)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, p.Snapshot(ctx)); err != nil {
		utils.Logger.Errorf("failed to render page: %v", err)
	}
}

// FUNC TO GET THE PAGE STATE AS JSON
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	p := h.session(w, r)
	ctx, cancel := h.ctx(r)
	defer cancel()

	utils.WriteJSON(w, p.Snapshot(ctx))
}

// FUNC TO APPLY ONE FIELD CHANGE
func (h *Handler) SetField(w http.ResponseWriter, r *http.Request) {
	p := h.session(w, r)
	name := r.FormValue("name")
	if err := p.Form.SetField(name, r.FormValue("value")); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.FormValue("blur") == "1" {
		p.Form.Blur(name)
	}
	h.respond(w, r, p)
}

// FUNC TO MARK A FIELD AS TOUCHED
func (h *Handler) BlurField(w http.ResponseWriter, r *http.Request) {
	p := h.session(w, r)
	if err := p.Form.Blur(r.FormValue("name")); err != nil {
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respond(w, r, p)
}

// FUNC TO SUBMIT THE FORM
func (h *Handler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	p := h.session(w, r)
	if err := r.ParseForm(); err != nil {
		utils.WriteError(w, "invalid form body", http.StatusBadRequest)
		return
	}

	for _, name := range models.EditableFields {
		if _, ok := r.PostForm[name]; !ok {
			continue
		}
		if err := p.Form.SetField(name, r.PostForm.Get(name)); err != nil {
			utils.WriteError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	// a write is never aborted once sent, even if the browser goes away
	result, err := p.Submit(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, form.ErrInvalidDraft), errors.Is(err, form.ErrSubmitInFlight):
		utils.Logger.Debugf("submit ignored: %v", err)
	case err != nil:
		utils.Logger.Errorf("error saving transaction: %v", err)
	default:
		utils.Logger.Infof("transaction saved with status %d", result.Status)
	}

	h.respond(w, r, p)
}

// FUNC TO LEAVE EDIT MODE
func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	p := h.session(w, r)
	p.CancelEdit()
	h.respond(w, r, p)
}

// FUNC TO SELECT A TRANSACTION FOR EDITING
func (h *Handler) EditTransaction(w http.ResponseWriter, r *http.Request) {
	p := h.session(w, r)
	id, err := handlers.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()

	if err := p.EditByID(ctx, id); err != nil {
		if errors.Is(err, page.ErrNotFound) {
			utils.WriteError(w, "no transaction found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("error fetching transactions: %v", err)
		utils.WriteError(w, "error fetching transactions", http.StatusBadGateway)
		return
	}
	h.respond(w, r, p)
}

// FUNC TO ASK FOR DELETE CONFIRMATION
func (h *Handler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	p := h.session(w, r)
	id, err := handlers.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	p.Table.RequestDelete(id)
	h.respond(w, r, p)
}

// FUNC TO CONFIRM THE PENDING DELETE
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	p := h.session(w, r)
	result, err := p.ConfirmDelete(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, table.ErrDeleteInFlight):
		utils.Logger.Debugf("delete ignored: %v", err)
	case err != nil:
		utils.Logger.Errorf("error deleting transaction: %v", err)
	case result.Status != 0:
		utils.Logger.Infof("transaction delete finished with status %d", result.Status)
	}

	h.respond(w, r, p)
}

// FUNC TO DISMISS THE DELETE CONFIRMATION
func (h *Handler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	p := h.session(w, r)
	p.Table.Cancel()
	h.respond(w, r, p)
}

// FUNC TO MOVE BETWEEN PAGES
func (h *Handler) ChangePage(w http.ResponseWriter, r *http.Request) {
	p := h.session(w, r)
	ctx, cancel := h.ctx(r)
	defer cancel()

	switch target := r.PathValue("page"); target {
	case "next":
		p.NextPage(ctx)
	case "prev":
		p.PrevPage(ctx)
	default:
		n, err := strconv.Atoi(target)
		if err != nil {
			utils.WriteError(w, "invalid page", http.StatusBadRequest)
			return
		}
		p.GoToPage(ctx, n)
	}
	h.respond(w, r, p)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, map[string]string{"status": "ok"})
}
