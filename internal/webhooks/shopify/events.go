package shopifywebhook

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/limited-access-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/limited-access-backend/pkg/errors"
)

// Customer is the subset of a Shopify customer payload the service reads.
type Customer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	State     string `json:"state"`
	CreatedAt string `json:"created_at"`
}

// LineItem is one product row of an order.
type LineItem struct {
	ID        int64           `json:"id"`
	ProductID *int64          `json:"product_id"`
	VariantID *int64          `json:"variant_id"`
	SKU       string          `json:"sku"`
	Title     string          `json:"title"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// Order is the subset of a Shopify order payload the service reads.
type Order struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	ContactEmail string          `json:"contact_email"`
	Currency     string          `json:"currency"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	Customer     *Customer       `json:"customer"`
	LineItems    []LineItem      `json:"line_items"`
	CreatedAt    string          `json:"created_at"`
}

// ProductRefs returns every identifier a waitlist productId may be matched
// against: product ids, variant ids and SKUs of the line items.
func (o *Order) ProductRefs() map[string]struct{} {
	refs := map[string]struct{}{}
	if o == nil {
		return refs
	}
	for _, item := range o.LineItems {
		if item.ProductID != nil {
			refs[strconv.FormatInt(*item.ProductID, 10)] = struct{}{}
		}
		if item.VariantID != nil {
			refs[strconv.FormatInt(*item.VariantID, 10)] = struct{}{}
		}
		if sku := strings.TrimSpace(item.SKU); sku != "" {
			refs[sku] = struct{}{}
		}
	}
	return refs
}

// Event is a verified, decoded webhook.
type Event struct {
	Kind     enums.WebhookKind
	Order    *Order
	Customer *Customer
}

// Email returns the raw customer email carried by the event, or "".
// Orders prefer the nested customer email and fall back to the order fields.
func (e *Event) Email() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case enums.WebhookKindOrderCreated:
		if e.Order == nil {
			return ""
		}
		if e.Order.Customer != nil && strings.TrimSpace(e.Order.Customer.Email) != "" {
			return e.Order.Customer.Email
		}
		if strings.TrimSpace(e.Order.Email) != "" {
			return e.Order.Email
		}
		return e.Order.ContactEmail
	case enums.WebhookKindCustomerCreated:
		if e.Customer == nil {
			return ""
		}
		return e.Customer.Email
	}
	return ""
}

// Decode parses raw as the payload type of kind.
func Decode(kind enums.WebhookKind, raw []byte) (*Event, error) {
	event := &Event{Kind: kind}
	var err error
	switch kind {
	case enums.WebhookKindOrderCreated:
		event.Order = &Order{}
		err = json.Unmarshal(raw, event.Order)
	case enums.WebhookKindCustomerCreated:
		event.Customer = &Customer{}
		err = json.Unmarshal(raw, event.Customer)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "unsupported webhook kind").WithDetails(map[string]any{"kind": string(kind)})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeMalformedPayload, err, "webhook payload is not valid JSON")
	}
	return event, nil
}
