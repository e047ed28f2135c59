package consumer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/Walid-hh/PFA/trip-service/internal/models"
	"github.com/Walid-hh/PFA/trip-service/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

// userEvent is the snapshot the user service publishes on every user.*
// routing key. The payload always carries the full current state, so a
// single upsert handles registered, updated, became_driver and deactivated
// alike.
type userEvent struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	IsDriver  bool   `json:"is_driver"`
	Status    string `json:"status"`
}

// UserConsumer applies user snapshot events to the local profile read model.
type UserConsumer struct {
	profiles repository.UserProfileRepository
}

func NewUserConsumer(profiles repository.UserProfileRepository) *UserConsumer {
	return &UserConsumer{profiles: profiles}
}

// Start drains the delivery channel until it closes. Malformed payloads are
// dropped with an ack; storage failures nack with requeue so the snapshot is
// retried.
func (c *UserConsumer) Start(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		if err := c.handle(d); err != nil {
			log.Printf("[UserConsumer] Failed to apply %s: %v, requeueing", d.RoutingKey, err)
			_ = d.Nack(false, true)
			continue
		}
		_ = d.Ack(false)
	}
	log.Println("[UserConsumer] Delivery channel closed, consumer stopped")
}

func (c *UserConsumer) handle(d amqp.Delivery) error {
	var event userEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Printf("[UserConsumer] Dropping malformed %s payload: %v", d.RoutingKey, err)
		return nil
	}

	profile := &models.UserProfile{
		ID:        event.ID,
		Email:     event.Email,
		FirstName: event.FirstName,
		LastName:  event.LastName,
		Phone:     event.Phone,
		IsDriver:  event.IsDriver,
		Status:    event.Status,
	}
	if err := c.profiles.Upsert(context.Background(), profile); err != nil {
		return err
	}

	log.Printf("[UserConsumer] Applied %s for user %d (%s)", d.RoutingKey, event.ID, event.Email)
	return nil
}
