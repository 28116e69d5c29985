package handler

import (
	"encoding/json"
	"net/http"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/ports"
	"github.com/go-chi/chi/v5"
)

type SettingsHandler struct {
	Store ports.SettingsStore
}

func (h SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.get)
}

func (h SettingsHandler) RegisterAdminRoutes(r chi.Router) {
	r.Put("/settings", h.save)
}

func (h SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.Store.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

func (h SettingsHandler) save(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BusinessName    string `json:"businessName"`
		BusinessAddress string `json:"businessAddress"`
		BusinessPhone   string `json:"businessPhone"`
		ReceiptFooter   string `json:"receiptFooter"`
		PrinterName     string `json:"printerName"`
		PaperSize       string `json:"paperSize"`
		AutoPrint       bool   `json:"autoPrint"`
		CurrencyCode    string `json:"currencyCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	current, err := h.Store.GetSettings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if req.CurrencyCode == "" {
		req.CurrencyCode = current.CurrencyCode
	}
	if req.PaperSize == "" {
		req.PaperSize = current.PaperSize
	}
	s, err := h.Store.SaveSettings(r.Context(), domain.Settings{
		BusinessName:    req.BusinessName,
		BusinessAddress: req.BusinessAddress,
		BusinessPhone:   req.BusinessPhone,
		ReceiptFooter:   req.ReceiptFooter,
		PrinterName:     req.PrinterName,
		PaperSize:       req.PaperSize,
		AutoPrint:       req.AutoPrint,
		CurrencyCode:    req.CurrencyCode,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsResponse(s))
}

func toSettingsResponse(s *domain.Settings) map[string]any {
	return map[string]any{
		"businessName":    s.BusinessName,
		"businessAddress": s.BusinessAddress,
		"businessPhone":   s.BusinessPhone,
		"receiptFooter":   s.ReceiptFooter,
		"printerName":     s.PrinterName,
		"paperSize":       s.PaperSize,
		"autoPrint":       s.AutoPrint,
		"currencyCode":    s.CurrencyCode,
		"updatedAt":       s.UpdatedAt,
	}
}
