package enums

import "fmt"

// WebhookKind identifies a supported inbound Shopify topic.
type WebhookKind string

const (
	WebhookKindOrderCreated    WebhookKind = "order-created"
	WebhookKindCustomerCreated WebhookKind = "customer-created"
)

var validWebhookKinds = []WebhookKind{
	WebhookKindOrderCreated,
	WebhookKindCustomerCreated,
}

// String implements fmt.Stringer.
func (k WebhookKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a supported kind.
func (k WebhookKind) IsValid() bool {
	for _, candidate := range validWebhookKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseWebhookKind converts raw input into a WebhookKind.
func ParseWebhookKind(value string) (WebhookKind, error) {
	for _, candidate := range validWebhookKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid webhook kind %q", value)
}
