package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"appointment-scheduler/internal/service"
	amqp "github.com/rabbitmq/amqp091-go"
)

// PaymentEvent is the payload the payment service publishes once a charge for
// a booking settles or fails.
type PaymentEvent struct {
	BookingID uint   `json:"booking_id"`
	Reference string `json:"reference"`
}

// PaymentConsumer applies payment outcomes to bookings: payment.succeeded
// confirms the pending booking, payment.failed cancels it so the capacity
// unit is released.
type PaymentConsumer struct {
	svc service.BookingService
}

func NewPaymentConsumer(svc service.BookingService) *PaymentConsumer {
	return &PaymentConsumer{svc: svc}
}

func (pc *PaymentConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			pc.handleMessage(msg)
		}
		log.Println("[PaymentConsumer] channel closed, stopping consumer")
	}()
}

func (pc *PaymentConsumer) handleMessage(msg amqp.Delivery) {
	var event PaymentEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("[PaymentConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	ctx := context.Background()

	var err error
	switch msg.RoutingKey {
	case "payment.succeeded":
		_, err = pc.svc.Confirm(ctx, event.BookingID)
	case "payment.failed":
		_, err = pc.svc.Cancel(ctx, event.BookingID)
	default:
		log.Printf("[PaymentConsumer] ignoring routing key %q", msg.RoutingKey)
		msg.Ack(false)
		return
	}

	if err != nil {
		// Unknown or already-cancelled bookings cannot be retried to success.
		if errors.Is(err, service.ErrBookingNotFound) || errors.Is(err, service.ErrAlreadyCancelled) {
			log.Printf("[PaymentConsumer] dropping %s for booking %d: %v", msg.RoutingKey, event.BookingID, err)
			msg.Nack(false, false)
			return
		}
		log.Printf("[PaymentConsumer] failed to apply %s for booking %d: %v", msg.RoutingKey, event.BookingID, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[PaymentConsumer] applied %s to booking %d", msg.RoutingKey, event.BookingID)
	msg.Ack(false)
}
