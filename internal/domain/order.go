package domain

import (
	"fmt"
	"strings"
)

// MaxQuantity caps a single line so totals stay far inside int64.
const MaxQuantity = 100000

// Validate checks a draft before it is held or checked out.
func (d OrderDraft) Validate() error {
	if !d.OrderType.Valid() {
		return fmt.Errorf("%w: unknown order type %q", ErrValidation, d.OrderType)
	}
	if len(d.LineItems) == 0 {
		return fmt.Errorf("%w: order must have at least one item", ErrValidation)
	}
	for i, it := range d.LineItems {
		if strings.TrimSpace(it.Name) == "" {
			return fmt.Errorf("%w: item %d has no name", ErrValidation, i+1)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item %q quantity must be greater than 0", ErrValidation, it.Name)
		}
		if it.Quantity > MaxQuantity {
			return fmt.Errorf("%w: item %q quantity must not exceed %d", ErrValidation, it.Name, MaxQuantity)
		}
		if it.UnitPrice < 0 {
			return fmt.Errorf("%w: item %q price must not be negative", ErrValidation, it.Name)
		}
	}
	if d.Discount < 0 {
		return fmt.Errorf("%w: discount must not be negative", ErrValidation)
	}
	if d.DeliveryFee < 0 {
		return fmt.Errorf("%w: delivery fee must not be negative", ErrValidation)
	}
	subtotal, _, _, err := CheckedTotals(d.OrderType, d.LineItems, d.Discount, d.DeliveryFee)
	if err != nil {
		return err
	}
	if d.Discount > subtotal {
		return fmt.Errorf("%w: discount exceeds subtotal", ErrValidation)
	}
	return nil
}

// CloneItems returns a copy so callers cannot mutate stored snapshots.
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, it := range items {
		if it.ProductID != nil {
			id := *it.ProductID
			it.ProductID = &id
		}
		out[i] = it
	}
	return out
}

// ToActive reconstructs the active sale from a held snapshot.
func (h HeldOrder) ToActive() ActiveOrder {
	id := h.ID
	return ActiveOrder{
		OwnerID:       h.OwnerID,
		OrderNumber:   h.OrderNumber,
		OrderType:     h.OrderType,
		LineItems:     CloneItems(h.LineItems),
		CustomerName:  h.CustomerName,
		CustomerPhone: h.CustomerPhone,
		TableNumber:   h.TableNumber,
		Subtotal:      h.Subtotal,
		Discount:      h.Discount,
		DeliveryFee:   h.DeliveryFee,
		Total:         h.Total,
		ResumedFrom:   &id,
	}
}
