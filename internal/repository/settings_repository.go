package repository

import (
	"context"
	"errors"

	"minangpos-backend/internal/db"
	"minangpos-backend/internal/domain"
	"github.com/jackc/pgx/v5"
)

// SettingsRepository stores the single receipt/printer settings row (id=1).
type SettingsRepository struct {
	DB *db.Postgres
}

const settingsColumns = `business_name, business_address, business_phone, receipt_footer,
	printer_name, paper_size, auto_print, currency_code, updated_at`

func (r SettingsRepository) GetSettings(ctx context.Context) (*domain.Settings, error) {
	s, err := scanSettings(r.DB.Pool.QueryRow(ctx, `SELECT `+settingsColumns+` FROM settings WHERE id = 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		// The migration seeds row 1; fall back to column defaults if it was removed.
		return &domain.Settings{PaperSize: "80mm", CurrencyCode: "QAR"}, nil
	}
	return s, err
}

func (r SettingsRepository) SaveSettings(ctx context.Context, s domain.Settings) (*domain.Settings, error) {
	return scanSettings(r.DB.Pool.QueryRow(ctx, `
		INSERT INTO settings (id, business_name, business_address, business_phone, receipt_footer,
		                      printer_name, paper_size, auto_print, currency_code, updated_at)
		VALUES (1,$1,$2,$3,$4,$5,$6,$7,$8, now())
		ON CONFLICT (id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			business_address = EXCLUDED.business_address,
			business_phone = EXCLUDED.business_phone,
			receipt_footer = EXCLUDED.receipt_footer,
			printer_name = EXCLUDED.printer_name,
			paper_size = EXCLUDED.paper_size,
			auto_print = EXCLUDED.auto_print,
			currency_code = EXCLUDED.currency_code,
			updated_at = now()
		RETURNING `+settingsColumns,
		s.BusinessName, s.BusinessAddress, s.BusinessPhone, s.ReceiptFooter,
		s.PrinterName, s.PaperSize, s.AutoPrint, s.CurrencyCode))
}

func scanSettings(row pgx.Row) (*domain.Settings, error) {
	var s domain.Settings
	if err := row.Scan(
		&s.BusinessName, &s.BusinessAddress, &s.BusinessPhone, &s.ReceiptFooter,
		&s.PrinterName, &s.PaperSize, &s.AutoPrint, &s.CurrencyCode, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}
