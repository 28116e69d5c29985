package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"minangpos-backend/internal/domain"
	"minangpos-backend/internal/server/authctx"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Currency renders and parses amounts for the configured currency. Amounts
// travel as decimal strings ("12.50") so clients never see minor units.
type Currency struct {
	Code   string
	Digits int32
}

func (c Currency) format(m domain.Money) string {
	return m.Format(c.Digits)
}

func (c Currency) parse(d decimal.Decimal, field string) (domain.Money, error) {
	m, err := domain.FromDecimal(d, c.Digits)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return m, nil
}

type lineItemPayload struct {
	ProductID     *int64          `json:"productId"`
	Name          string          `json:"name"`
	NameLocalized string          `json:"nameLocalized"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
}

type draftPayload struct {
	OrderType     string            `json:"orderType"`
	Items         []lineItemPayload `json:"items"`
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	TableNumber   string            `json:"tableNumber"`
	Discount      decimal.Decimal   `json:"discount"`
	DeliveryFee   decimal.Decimal   `json:"deliveryFee"`
}

func (c Currency) toDraft(p draftPayload) (domain.OrderDraft, error) {
	discount, err := c.parse(p.Discount, "discount")
	if err != nil {
		return domain.OrderDraft{}, err
	}
	fee, err := c.parse(p.DeliveryFee, "deliveryFee")
	if err != nil {
		return domain.OrderDraft{}, err
	}
	items := make([]domain.LineItem, 0, len(p.Items))
	for i, it := range p.Items {
		price, err := c.parse(it.UnitPrice, fmt.Sprintf("items[%d].unitPrice", i))
		if err != nil {
			return domain.OrderDraft{}, err
		}
		items = append(items, domain.LineItem{
			ProductID:     it.ProductID,
			Name:          it.Name,
			NameLocalized: it.NameLocalized,
			Quantity:      it.Quantity,
			UnitPrice:     price,
		})
	}
	return domain.OrderDraft{
		OrderType:     domain.OrderType(p.OrderType),
		LineItems:     items,
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		TableNumber:   p.TableNumber,
		Discount:      discount,
		DeliveryFee:   fee,
	}, nil
}

func (c Currency) lineItems(items []domain.LineItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any{
			"productId":     it.ProductID,
			"name":          it.Name,
			"nameLocalized": it.NameLocalized,
			"quantity":      it.Quantity,
			"unitPrice":     c.format(it.UnitPrice),
			"subtotal":      c.format(it.Subtotal()),
		})
	}
	return out
}

// currentUser writes 401 and returns nil when the request is unauthenticated.
func currentUser(w http.ResponseWriter, r *http.Request) *authctx.CurrentUser {
	user := authctx.FromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return user
}

func int64Param(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}
