package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
)

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher sends a CartCheckedOut event for every completed checkout.
type RabbitPublisher struct {
	ch       channel
	producer string
	logger   *zap.Logger
}

func NewRabbitPublisher(conn *amqp.Connection, logger *zap.Logger) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return newRabbitPublisher(ch, logger), nil
}

func newRabbitPublisher(ch channel, logger *zap.Logger) *RabbitPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RabbitPublisher{ch: ch, producer: StorefrontProducer, logger: logger}
}

func (p *RabbitPublisher) CartCheckedOut(ctx context.Context, sessionID string, c cart.Cart) error {
	env := BuildCartCheckedOutEvent(sessionID, c, EnvelopeOptions{
		Producer:      p.producer,
		CorrelationID: middleware.GetReqID(ctx),
	})

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal CartCheckedOut envelope: %w", err)
	}

	if err := p.publishJSON(ctx, CartCheckedOutRoutingKey, body); err != nil {
		return fmt.Errorf("publish CartCheckedOut: %w", err)
	}
	p.logger.Debug("published CartCheckedOut",
		zap.String("event_id", env.EventID),
		zap.String("session", sessionID))
	return nil
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

// LogNotifier stands in for the broker when none is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) CartCheckedOut(ctx context.Context, sessionID string, c cart.Cart) error {
	n.logger.Info("cart checked out",
		zap.String("session", sessionID),
		zap.Int("items", c.Count()),
		zap.String("request_id", middleware.GetReqID(ctx)))
	return nil
}
