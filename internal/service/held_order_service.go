package service

import (
	"context"
	"log/slog"
	"time"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/ports"
)

// HeldOrderService parks and restores in-progress sales.
type HeldOrderService struct {
	Store       ports.HeldOrderStore
	DeliveryFee domain.Money
	Logger      *slog.Logger
	Now         func() time.Time
}

// Hold snapshots the draft for ownerID and returns it with its order number.
func (s HeldOrderService) Hold(ctx context.Context, ownerID int64, draft domain.OrderDraft) (*domain.HeldOrder, error) {
	draft = withDefaultFee(draft, s.DeliveryFee)
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	subtotal, fee, total := domain.Totals(draft.OrderType, draft.LineItems, draft.Discount, draft.DeliveryFee)

	held, err := s.Store.CreateHeldOrder(ctx, domain.HeldOrder{
		OwnerID:       ownerID,
		OrderType:     draft.OrderType,
		LineItems:     domain.CloneItems(draft.LineItems),
		CustomerName:  draft.CustomerName,
		CustomerPhone: draft.CustomerPhone,
		TableNumber:   draft.TableNumber,
		Subtotal:      subtotal,
		Discount:      draft.Discount,
		DeliveryFee:   fee,
		Total:         total,
		HeldAt:        s.now(),
	})
	if err != nil {
		return nil, err
	}
	heldOrderOps.WithLabelValues("hold").Inc()
	s.logger().Info("order held", "owner_id", ownerID, "held_order_id", held.ID, "order_number", held.OrderNumber, "total", int64(held.Total))
	return held, nil
}

// List returns every held order of the owner, most recent first.
func (s HeldOrderService) List(ctx context.Context, ownerID int64) ([]domain.HeldOrder, error) {
	return s.Store.ListHeldOrders(ctx, ownerID)
}

// Resume consumes the held order and hands it back as the active sale. A
// second resume of the same id fails with domain.ErrNotFound.
func (s HeldOrderService) Resume(ctx context.Context, id, ownerID int64) (*domain.ActiveOrder, error) {
	held, err := s.Store.PopHeldOrder(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	heldOrderOps.WithLabelValues("resume").Inc()
	s.logger().Info("held order resumed", "owner_id", ownerID, "held_order_id", id, "order_number", held.OrderNumber)
	active := held.ToActive()
	return &active, nil
}

// Delete drops the held order and reports whether anything was removed.
func (s HeldOrderService) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	deleted, err := s.Store.DeleteHeldOrder(ctx, id, ownerID)
	if err != nil {
		return false, err
	}
	if deleted {
		heldOrderOps.WithLabelValues("delete").Inc()
		s.logger().Info("held order deleted", "owner_id", ownerID, "held_order_id", id)
	}
	return deleted, nil
}

func (s HeldOrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s HeldOrderService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// withDefaultFee fills in the configured fee for delivery drafts that carry none.
func withDefaultFee(d domain.OrderDraft, fee domain.Money) domain.OrderDraft {
	if d.OrderType == domain.OrderDelivery && d.DeliveryFee == 0 {
		d.DeliveryFee = fee
	}
	return d
}
