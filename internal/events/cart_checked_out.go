package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

const (
	CartCheckedOutEventName    = "CartCheckedOut"
	CartCheckedOutEventVersion = 1
	CartCheckedOutSchemaPath   = "contracts/events/cart/CartCheckedOut.v1.enveloped.schema.json"
	StorefrontProducer         = "storefront"
)

type EventEnvelope struct {
	EventName     string                `json:"eventName"`
	EventVersion  int                   `json:"eventVersion"`
	EventID       string                `json:"eventId"`
	CorrelationID string                `json:"correlationId,omitempty"`
	Producer      string                `json:"producer"`
	PartitionKey  string                `json:"partitionKey"`
	OccurredAt    time.Time             `json:"occurredAt"`
	Schema        string                `json:"schema"`
	Payload       CartCheckedOutPayload `json:"payload"`
}

type CartCheckedOutPayload struct {
	SessionID   string               `json:"sessionId"`
	Items       []CartCheckedOutItem `json:"items"`
	ItemCount   int                  `json:"itemCount"`
	TotalAmount float64              `json:"totalAmount"`
	Timestamp   time.Time            `json:"timestamp"`
}

type CartCheckedOutItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type EnvelopeOptions struct {
	Producer      string
	CorrelationID string
	EventID       string
	OccurredAt    time.Time
}

// BuildCartCheckedOutEvent wraps the purchased lines of a session's cart. Lines that
// would not render on the cart page are left out, as is their share of the total.
func BuildCartCheckedOutEvent(sessionID string, c cart.Cart, opts EnvelopeOptions) EventEnvelope {
	eventID := opts.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	occurredAt := opts.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	producer := opts.Producer
	if producer == "" {
		producer = StorefrontProducer
	}

	sum := cart.Summarize(c, nil)
	payload := CartCheckedOutPayload{
		SessionID:   sessionID,
		Items:       make([]CartCheckedOutItem, 0, len(sum.Lines)),
		ItemCount:   sum.ItemCount,
		TotalAmount: sum.Subtotal,
		Timestamp:   occurredAt,
	}
	for _, ln := range sum.Lines {
		payload.Items = append(payload.Items, CartCheckedOutItem{
			ProductID: ln.Item.ID,
			Name:      ln.Item.Name,
			Quantity:  ln.Item.Quantity,
			Price:     ln.Item.Price,
		})
	}

	return EventEnvelope{
		EventName:     CartCheckedOutEventName,
		EventVersion:  CartCheckedOutEventVersion,
		EventID:       eventID,
		CorrelationID: opts.CorrelationID,
		Producer:      producer,
		PartitionKey:  sessionID,
		OccurredAt:    occurredAt,
		Schema:        CartCheckedOutSchemaPath,
		Payload:       payload,
	}
}
