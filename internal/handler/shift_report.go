package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

// ShiftReportHandler serves closed-shift history for managers.
type ShiftReportHandler struct {
	Ledger   service.ShiftLedger
	Currency Currency
}

func (h ShiftReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/shifts/report", h.list)
	r.Get("/shifts/report/export", h.export)
}

func (h ShiftReportHandler) list(w http.ResponseWriter, r *http.Request) {
	items, ok := h.load(w, r, 200)
	if !ok {
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, s := range items {
		resp = append(resp, h.toReportRow(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h ShiftReportHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	items, ok := h.load(w, r, 2000)
	if !ok {
		return
	}

	filenameSuffix := time.Now().Format("20060102_150405")
	switch format {
	case "csv":
		data, err := h.exportCSV(items)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"shifts_%s.csv\"", filenameSuffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := h.exportXLSX(items)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"shifts_%s.xlsx\"", filenameSuffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

// load resolves the owner filter and date range. Managers may pass ownerId to
// see another cashier's shifts; everyone else sees their own.
func (h ShiftReportHandler) load(w http.ResponseWriter, r *http.Request, limit int) ([]domain.ClosedShiftSummary, bool) {
	user := currentUser(w, r)
	if user == nil {
		return nil, false
	}
	ownerID := user.ID
	if raw := r.URL.Query().Get("ownerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid ownerId")
			return nil, false
		}
		if id != user.ID && !user.CanActForOthers() {
			writeError(w, http.StatusForbidden, "forbidden")
			return nil, false
		}
		ownerID = id
	}
	from, to, ok := dateRange(w, r)
	if !ok {
		return nil, false
	}
	items, err := h.Ledger.ClosedShifts(r.Context(), ownerID, h.localMidnight(from), h.localMidnight(to), limit)
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return items, true
}

// localMidnight moves a calendar date onto midnight of the business timezone.
func (h ShiftReportHandler) localMidnight(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	loc := h.Ledger.Location
	if loc == nil {
		loc = time.UTC
	}
	v := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return &v
}

var reportHeader = []string{
	"Shift ID", "Business Date", "Opened At", "Closed At", "Opening Balance",
	"Cash Sales", "Card Sales", "Credit Sales", "FOC Sales", "Discounts",
	"Cash Purchases", "Expected Cash", "Physical Cash", "Variance", "Notes",
}

func (h ShiftReportHandler) reportValues(s domain.ClosedShiftSummary) []string {
	closedAt := ""
	if s.ClosedAt != nil {
		closedAt = s.ClosedAt.Format(time.RFC3339)
	}
	c := h.Currency
	return []string{
		s.ID,
		s.BusinessDate.Format(dateLayout),
		s.OpenedAt.Format(time.RFC3339),
		closedAt,
		c.format(s.OpeningBalance),
		c.format(s.Aggregates.Cash.Amount),
		c.format(s.Aggregates.Card.Amount),
		c.format(s.Aggregates.Credit.Amount),
		c.format(s.Aggregates.FOC.Amount),
		c.format(s.Aggregates.Discounts),
		c.format(s.CashPurchases),
		c.format(s.ExpectedCash),
		c.format(s.PhysicalCash),
		c.format(s.Variance),
		s.Notes,
	}
}

func (h ShiftReportHandler) toReportRow(s domain.ClosedShiftSummary) map[string]any {
	return map[string]any{
		"id":             s.ID,
		"ownerId":        s.OwnerID,
		"businessDate":   s.BusinessDate.Format(dateLayout),
		"openedAt":       s.OpenedAt,
		"closedAt":       s.ClosedAt,
		"openingBalance": h.Currency.format(s.OpeningBalance),
		"aggregates":     aggregatesResponse(h.Currency, s.Aggregates),
		"cashPurchases":  h.Currency.format(s.CashPurchases),
		"expectedCash":   h.Currency.format(s.ExpectedCash),
		"physicalCash":   h.Currency.format(s.PhysicalCash),
		"variance":       h.Currency.format(s.Variance),
		"notes":          s.Notes,
	}
}

func (h ShiftReportHandler) exportCSV(items []domain.ClosedShiftSummary) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write(reportHeader)
	for _, s := range items {
		_ = w.Write(h.reportValues(s))
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (h ShiftReportHandler) exportXLSX(items []domain.ClosedShiftSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Shifts"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for c, v := range reportHeader {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r, s := range items {
		for c, v := range h.reportValues(s) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(reportHeader))
	_ = f.SetColWidth(sheet, "A", "A", 38)
	_ = f.SetColWidth(sheet, "B", lastCol, 16)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", lastCol+"1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
