package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"minangpos-backend/internal/domain"
)

func twoItemDraft() domain.OrderDraft {
	rendang := int64(11)
	return domain.OrderDraft{
		OrderType: domain.OrderDineIn,
		LineItems: []domain.LineItem{
			{ProductID: &rendang, Name: "Rendang", NameLocalized: "رندانغ", Quantity: 2, UnitPrice: qar(10)},
			{Name: "Teh Talua", Quantity: 1, UnitPrice: qar(5)},
		},
		CustomerName: "Aisha",
		TableNumber:  "T4",
	}
}

func TestHoldAndResume(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := twoItemDraft()

	held, err := f.held.Hold(ctx, owner, draft)
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if held.Subtotal != qar(25) || held.Total != qar(25) || held.Discount != 0 {
		t.Fatalf("totals = subtotal %d total %d", held.Subtotal, held.Total)
	}
	if !strings.HasPrefix(held.OrderNumber, "HLD-20260310-") {
		t.Fatalf("order number = %q", held.OrderNumber)
	}

	active, err := f.held.Resume(ctx, held.ID, owner)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !reflect.DeepEqual(active.LineItems, draft.LineItems) {
		t.Fatalf("line items = %+v, want %+v", active.LineItems, draft.LineItems)
	}
	if active.Total != qar(25) || active.Subtotal != qar(25) {
		t.Fatalf("active totals = %d / %d", active.Subtotal, active.Total)
	}
	if active.CustomerName != "Aisha" || active.TableNumber != "T4" || active.OrderType != domain.OrderDineIn {
		t.Fatalf("metadata lost: %+v", active)
	}
	if active.ResumedFrom == nil || *active.ResumedFrom != held.ID {
		t.Fatalf("resumed from = %v", active.ResumedFrom)
	}

	if _, err := f.held.Resume(ctx, held.ID, owner); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second resume err = %v, want ErrNotFound", err)
	}
	items, err := f.held.List(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("resumed order still listed: %+v", items)
	}
}

func TestHoldSnapshotIsIndependent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	draft := twoItemDraft()

	held, err := f.held.Hold(ctx, owner, draft)
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	draft.LineItems[0].Quantity = 99
	*draft.LineItems[0].ProductID = 42

	active, err := f.held.Resume(ctx, held.ID, owner)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if active.LineItems[0].Quantity != 2 || *active.LineItems[0].ProductID != 11 {
		t.Fatalf("snapshot mutated through draft: %+v", active.LineItems[0])
	}
}

func TestHoldValidation(t *testing.T) {
	tests := []struct {
		name  string
		draft domain.OrderDraft
	}{
		{name: "empty cart", draft: domain.OrderDraft{OrderType: domain.OrderDineIn}},
		{name: "zero quantity", draft: domain.OrderDraft{OrderType: domain.OrderDineIn, LineItems: []domain.LineItem{{Name: "Rendang", Quantity: 0, UnitPrice: qar(10)}}}},
		{name: "unknown order type", draft: domain.OrderDraft{OrderType: "drive-thru", LineItems: []domain.LineItem{{Name: "Rendang", Quantity: 1, UnitPrice: qar(10)}}}},
		{name: "discount above subtotal", draft: domain.OrderDraft{OrderType: domain.OrderDineIn, Discount: qar(11), LineItems: []domain.LineItem{{Name: "Rendang", Quantity: 1, UnitPrice: qar(10)}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			if _, err := f.held.Hold(context.Background(), owner, tc.draft); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
			items, _ := f.held.List(context.Background(), owner)
			if len(items) != 0 {
				t.Fatal("invalid draft was stored")
			}
		})
	}
}

func TestHoldDeliveryFee(t *testing.T) {
	f := newFixture()
	f.held.DeliveryFee = qar(10)
	ctx := context.Background()

	delivery := singleItemDraft(qar(30))
	delivery.OrderType = domain.OrderDelivery
	delivery.Discount = qar(5)
	held, err := f.held.Hold(ctx, owner, delivery)
	if err != nil {
		t.Fatalf("hold delivery: %v", err)
	}
	if held.DeliveryFee != qar(10) || held.Total != qar(35) {
		t.Fatalf("delivery fee %d total %d", held.DeliveryFee, held.Total)
	}

	takeAway := singleItemDraft(qar(30))
	takeAway.DeliveryFee = qar(10)
	held, err = f.held.Hold(ctx, owner, takeAway)
	if err != nil {
		t.Fatalf("hold take-away: %v", err)
	}
	if held.DeliveryFee != 0 || held.Total != qar(30) {
		t.Fatalf("take-away fee %d total %d", held.DeliveryFee, held.Total)
	}
}

func TestListMostRecentFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		h, err := f.held.Hold(ctx, owner, singleItemDraft(qar(int64(10+i))))
		if err != nil {
			t.Fatalf("hold %d: %v", i, err)
		}
		ids = append(ids, h.ID)
	}
	if _, err := f.held.Hold(ctx, owner+1, singleItemDraft(qar(1))); err != nil {
		t.Fatalf("hold for other owner: %v", err)
	}

	items, err := f.held.List(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d held orders, want 3", len(items))
	}
	for i, h := range items {
		if want := ids[len(ids)-1-i]; h.ID != want {
			t.Fatalf("position %d has id %d, want %d", i, h.ID, want)
		}
		if h.OwnerID != owner {
			t.Fatalf("foreign order listed: %+v", h)
		}
	}
}

func TestListReturnsEveryHeldOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	const held = 250
	for i := 0; i < held; i++ {
		if _, err := f.held.Hold(ctx, owner, singleItemDraft(qar(5))); err != nil {
			t.Fatalf("hold %d: %v", i, err)
		}
	}
	items, err := f.held.List(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != held {
		t.Fatalf("got %d held orders, want %d", len(items), held)
	}
}

func TestResumeForeignOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	held, err := f.held.Hold(ctx, owner, twoItemDraft())
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if _, err := f.held.Resume(ctx, held.ID, owner+1); !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("err = %v, want ErrAuthorization", err)
	}
	if _, err := f.held.Resume(ctx, held.ID, owner); err != nil {
		t.Fatalf("owner resume after foreign attempt: %v", err)
	}
	if _, err := f.held.Resume(ctx, 9999, owner); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing id err = %v", err)
	}
}

func TestResumeConcurrentSingleWinner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	held, err := f.held.Hold(ctx, owner, twoItemDraft())
	if err != nil {
		t.Fatalf("hold: %v", err)
	}

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		notFound int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.held.Resume(ctx, held.ID, owner)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrNotFound):
				notFound++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 || notFound != workers-1 {
		t.Fatalf("wins=%d notFound=%d", wins, notFound)
	}
}

func TestDeleteHeldOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	held, err := f.held.Hold(ctx, owner, twoItemDraft())
	if err != nil {
		t.Fatalf("hold: %v", err)
	}

	if ok, err := f.held.Delete(ctx, 12345, owner); err != nil || ok {
		t.Fatalf("delete missing = %v, %v", ok, err)
	}
	if ok, err := f.held.Delete(ctx, held.ID, owner+1); err != nil || ok {
		t.Fatalf("delete foreign = %v, %v", ok, err)
	}
	if ok, err := f.held.Delete(ctx, held.ID, owner); err != nil || !ok {
		t.Fatalf("delete own = %v, %v", ok, err)
	}
	if ok, err := f.held.Delete(ctx, held.ID, owner); err != nil || ok {
		t.Fatalf("delete twice = %v, %v", ok, err)
	}
	if _, err := f.held.Resume(ctx, held.ID, owner); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("resume deleted err = %v", err)
	}
}
