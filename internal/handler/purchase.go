package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type PurchaseHandler struct {
	Service  service.PurchaseService
	Currency Currency
}

func (h PurchaseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/purchases", h.list)
	r.Post("/purchases", h.create)
}

func (h PurchaseHandler) list(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, ok := dateRange(w, r)
	if !ok {
		return
	}
	items, err := h.Service.List(r.Context(), startDate, endDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, p := range items {
		resp = append(resp, h.toPurchaseResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h PurchaseHandler) create(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	var req struct {
		Supplier      string          `json:"supplier"`
		InvoiceNumber string          `json:"invoiceNumber"`
		Amount        decimal.Decimal `json:"amount"`
		PaymentMethod string          `json:"paymentMethod"`
		Date          string          `json:"date"`
		Note          string          `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := h.Currency.parse(req.Amount, "amount")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var date *time.Time
	if req.Date != "" {
		t, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date")
			return
		}
		date = &t
	}
	p, err := h.Service.Record(r.Context(), user.ID, service.PurchaseInput{
		Supplier:      req.Supplier,
		InvoiceNumber: req.InvoiceNumber,
		Amount:        amount,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Date:          date,
		Note:          req.Note,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toPurchaseResponse(*p))
}

func (h PurchaseHandler) toPurchaseResponse(p domain.Purchase) map[string]any {
	return map[string]any{
		"id":            p.ID,
		"supplier":      p.Supplier,
		"invoiceNumber": p.InvoiceNumber,
		"amount":        h.Currency.format(p.Amount),
		"paymentMethod": string(p.PaymentMethod),
		"date":          p.Date.Format(dateLayout),
		"note":          p.Note,
		"currency":      h.Currency.Code,
	}
}
