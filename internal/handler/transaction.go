package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/ports"
	"minangpos-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type TransactionHandler struct {
	Sales    service.SalesService
	Settings ports.SettingsStore
	Currency Currency
}

func (h TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/transactions", h.listTransactions)
	r.Get("/transactions/{code}/receipt", h.receipt)
}

type orderPayload struct {
	draftPayload
	PaymentMethod string `json:"paymentMethod"`
}

func (h TransactionHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	var req orderPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	draft, err := h.Currency.toDraft(req.draftPayload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	tx, err := h.Sales.Checkout(r.Context(), user.ID, service.CheckoutInput{
		Draft:         draft,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(h.Currency, *tx))
}

func (h TransactionHandler) listTransactions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	txs, err := h.Sales.List(r.Context(), user.ID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(txs))
	for _, t := range txs {
		resp = append(resp, toTransactionResponse(h.Currency, t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h TransactionHandler) receipt(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	tx, err := h.Sales.Receipt(r.Context(), user.ID, user.Role, chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	settings, err := h.Settings.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saleReceipt(h.Currency, *settings, *tx))
}
