package handler

import (
	"minangpos-backend/internal/domain"
)

func receiptHeader(s domain.Settings) map[string]any {
	return map[string]any{
		"businessName":    s.BusinessName,
		"businessAddress": s.BusinessAddress,
		"businessPhone":   s.BusinessPhone,
		"printerName":     s.PrinterName,
		"paperSize":       s.PaperSize,
		"autoPrint":       s.AutoPrint,
	}
}

func saleReceipt(c Currency, s domain.Settings, tx domain.Transaction) map[string]any {
	return map[string]any{
		"header": receiptHeader(s),
		"sale":   toTransactionResponse(c, tx),
		"footer": s.ReceiptFooter,
	}
}

func toTransactionResponse(c Currency, tx domain.Transaction) map[string]any {
	return map[string]any{
		"id":            tx.ID,
		"code":          tx.Code,
		"shiftId":       tx.ShiftID,
		"orderType":     string(tx.OrderType),
		"paymentMethod": string(tx.PaymentMethod),
		"items":         c.lineItems(tx.Items),
		"customerName":  tx.CustomerName,
		"customerPhone": tx.CustomerPhone,
		"tableNumber":   tx.TableNumber,
		"subtotal":      c.format(tx.Subtotal),
		"discount":      c.format(tx.Discount),
		"deliveryFee":   c.format(tx.DeliveryFee),
		"amount":        c.format(tx.Amount),
		"currency":      c.Code,
		"status":        string(tx.Status),
		"createdAt":     tx.CreatedAt,
	}
}
