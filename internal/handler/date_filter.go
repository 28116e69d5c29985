package handler

import (
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// dateRange reads startDate and endDate (both inclusive) and returns a
// half-open range. It writes 400 and returns ok=false on bad input.
func dateRange(w http.ResponseWriter, r *http.Request) (from, to *time.Time, ok bool) {
	startDate, err := parseDateQuery(r, "startDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate")
		return nil, nil, false
	}
	endDate, err := parseDateQuery(r, "endDate")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate")
		return nil, nil, false
	}
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		writeError(w, http.StatusBadRequest, "startDate must be before endDate")
		return nil, nil, false
	}
	if endDate != nil {
		next := endDate.AddDate(0, 0, 1)
		endDate = &next
	}
	return startDate, endDate, true
}
