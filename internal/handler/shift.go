package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/ports"
	"minangpos-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ShiftHandler struct {
	Ledger   service.ShiftLedger
	Settings ports.SettingsStore
	Currency Currency
}

func (h ShiftHandler) RegisterRoutes(r chi.Router) {
	r.Post("/shifts", h.open)
	r.Get("/shifts/current", h.current)
	r.Get("/shifts/current/expected-cash", h.expectedCash)
	r.Get("/shifts/denominations", h.denominations)
	r.Get("/shifts/{id}", h.get)
	r.Post("/shifts/{id}/close", h.close)
	r.Get("/shifts/{id}/receipt", h.receipt)
}

func (h ShiftHandler) open(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	var req struct {
		OpeningBalance decimal.Decimal `json:"openingBalance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	balance, err := h.Currency.parse(req.OpeningBalance, "openingBalance")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	shift, err := h.Ledger.OpenShift(r.Context(), user.ID, balance)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toShiftResponse(*shift))
}

func (h ShiftHandler) current(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	shift, err := h.Ledger.CurrentShift(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	expected, err := h.Ledger.ComputeExpectedCash(r.Context(), *shift)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := h.toShiftResponse(*shift)
	resp["live"] = h.toExpectedCashResponse(expected)
	writeJSON(w, http.StatusOK, resp)
}

func (h ShiftHandler) expectedCash(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	shift, err := h.Ledger.CurrentShift(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	expected, err := h.Ledger.ComputeExpectedCash(r.Context(), *shift)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toExpectedCashResponse(expected))
}

func (h ShiftHandler) denominations(w http.ResponseWriter, r *http.Request) {
	out := make([]string, 0, len(h.Ledger.Denominations))
	for _, d := range h.Ledger.Denominations {
		out = append(out, h.Currency.format(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"currency":      h.Currency.Code,
		"denominations": out,
	})
}

func (h ShiftHandler) get(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	shift, err := h.Ledger.GetShift(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toShiftResponse(*shift))
}

func (h ShiftHandler) close(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	var req struct {
		Counts map[string]int `json:"counts"`
		Notes  string         `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	counts, err := h.parseCounts(req.Counts)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	summary, err := h.Ledger.CloseShift(r.Context(), user.ID, chi.URLParam(r, "id"), counts, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.toSummaryResponse(*summary))
}

func (h ShiftHandler) receipt(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r)
	if user == nil {
		return
	}
	shift, err := h.Ledger.GetShift(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !shift.IsClosed {
		writeError(w, http.StatusConflict, "shift is still open")
		return
	}
	settings, err := h.Settings.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	summary := domain.ClosedShiftSummary{Shift: *shift, BusinessDate: shift.BusinessDate(h.Ledger.Location)}
	writeJSON(w, http.StatusOK, map[string]any{
		"header":  receiptHeader(*settings),
		"summary": h.toSummaryResponse(summary),
		"footer":  settings.ReceiptFooter,
	})
}

// parseCounts turns {"100.00": 3} into minor-unit keys.
func (h ShiftHandler) parseCounts(raw map[string]int) (map[domain.Money]int, error) {
	counts := make(map[domain.Money]int, len(raw))
	for key, n := range raw {
		d, err := decimal.NewFromString(key)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid denomination %q", domain.ErrValidation, key)
		}
		m, err := h.Currency.parse(d, "counts")
		if err != nil {
			return nil, err
		}
		if _, dup := counts[m]; dup {
			return nil, fmt.Errorf("%w: denomination %s given twice", domain.ErrValidation, key)
		}
		counts[m] = n
	}
	return counts, nil
}

func (h ShiftHandler) toShiftResponse(s domain.Shift) map[string]any {
	return map[string]any{
		"id":             s.ID,
		"ownerId":        s.OwnerID,
		"openedAt":       s.OpenedAt,
		"closedAt":       s.ClosedAt,
		"openingBalance": h.Currency.format(s.OpeningBalance),
		"isClosed":       s.IsClosed,
		"notes":          s.Notes,
		"currency":       h.Currency.Code,
	}
}

func (h ShiftHandler) toExpectedCashResponse(e service.ExpectedCash) map[string]any {
	return map[string]any{
		"shiftId":        e.ShiftID,
		"businessDate":   e.BusinessDate.Format(dateLayout),
		"openingBalance": h.Currency.format(e.OpeningBalance),
		"aggregates":     aggregatesResponse(h.Currency, e.Aggregates),
		"cashPurchases":  h.Currency.format(e.CashPurchases),
		"expectedCash":   h.Currency.format(e.Expected),
	}
}

func (h ShiftHandler) toSummaryResponse(s domain.ClosedShiftSummary) map[string]any {
	resp := h.toShiftResponse(s.Shift)
	breakdown := make([]map[string]any, 0, len(s.Breakdown))
	for _, line := range s.Breakdown {
		breakdown = append(breakdown, map[string]any{
			"denomination": h.Currency.format(line.Denomination),
			"count":        line.Count,
			"subtotal":     h.Currency.format(line.Subtotal),
		})
	}
	resp["businessDate"] = s.BusinessDate.Format(dateLayout)
	resp["aggregates"] = aggregatesResponse(h.Currency, s.Aggregates)
	resp["cashPurchases"] = h.Currency.format(s.CashPurchases)
	resp["expectedCash"] = h.Currency.format(s.ExpectedCash)
	resp["physicalCash"] = h.Currency.format(s.PhysicalCash)
	resp["variance"] = h.Currency.format(s.Variance)
	resp["denominationBreakdown"] = breakdown
	return resp
}

func aggregatesResponse(c Currency, a domain.SalesAggregate) map[string]any {
	method := func(t domain.MethodTotal) map[string]any {
		return map[string]any{"count": t.Count, "amount": c.format(t.Amount)}
	}
	return map[string]any{
		"cash":      method(a.Cash),
		"card":      method(a.Card),
		"credit":    method(a.Credit),
		"foc":       method(a.FOC),
		"discounts": c.format(a.Discounts),
		"total":     c.format(a.Total()),
		"count":     a.Count(),
	}
}
