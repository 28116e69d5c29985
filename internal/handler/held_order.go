package handler

import (
	"encoding/json"
	"net/http"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

type HeldOrderHandler struct {
	Service  service.HeldOrderService
	Currency Currency
}

func (h HeldOrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/held-orders", h.hold)
	r.Get("/held-orders", h.list)
	r.Post("/held-orders/{id}/resume", h.resume)
	r.Delete("/held-orders/{id}", h.delete)
}

func (h HeldOrderHandler) hold(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	var req draftPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	draft, err := h.Currency.toDraft(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	held, err := h.Service.Hold(r.Context(), user.ID, draft)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toHeldOrderResponse(*held))
}

func (h HeldOrderHandler) list(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	items, err := h.Service.List(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, it := range items {
		resp = append(resp, h.toHeldOrderResponse(it))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h HeldOrderHandler) resume(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	id, err := int64Param(r, "id")
	if err != nil {
		writeError(w, http.StatusNotFound, "held order not found")
		return
	}
	active, err := h.Service.Resume(r.Context(), id, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toActiveOrderResponse(*active))
}

func (h HeldOrderHandler) delete(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	id, err := int64Param(r, "id")
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": false})
		return
	}
	deleted, err := h.Service.Delete(r.Context(), id, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (h HeldOrderHandler) toHeldOrderResponse(o domain.HeldOrder) map[string]any {
	return map[string]any{
		"id":            o.ID,
		"orderNumber":   o.OrderNumber,
		"orderType":     string(o.OrderType),
		"items":         h.Currency.lineItems(o.LineItems),
		"customerName":  o.CustomerName,
		"customerPhone": o.CustomerPhone,
		"tableNumber":   o.TableNumber,
		"subtotal":      h.Currency.format(o.Subtotal),
		"discount":      h.Currency.format(o.Discount),
		"deliveryFee":   h.Currency.format(o.DeliveryFee),
		"total":         h.Currency.format(o.Total),
		"currency":      h.Currency.Code,
		"heldAt":        o.HeldAt,
	}
}

func (h HeldOrderHandler) toActiveOrderResponse(o domain.ActiveOrder) map[string]any {
	return map[string]any{
		"orderNumber":   o.OrderNumber,
		"orderType":     string(o.OrderType),
		"items":         h.Currency.lineItems(o.LineItems),
		"customerName":  o.CustomerName,
		"customerPhone": o.CustomerPhone,
		"tableNumber":   o.TableNumber,
		"subtotal":      h.Currency.format(o.Subtotal),
		"discount":      h.Currency.format(o.Discount),
		"deliveryFee":   h.Currency.format(o.DeliveryFee),
		"total":         h.Currency.format(o.Total),
		"currency":      h.Currency.Code,
		"resumedFrom":   o.ResumedFrom,
	}
}
