package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"unsend_service/internal/deletion/domain"

	"github.com/streadway/amqp"
)

// RabbitChannel subset of *amqp.Channel
type RabbitChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	Close() error
}

type rabbitPublisher struct {
	mu       sync.Mutex
	channel  RabbitChannel
	exchange string
	confirms chan amqp.Confirmation
}

// NewRabbitPublisher create a Publisher on a confirm mode channel
func NewRabbitPublisher(ch RabbitChannel, exchange string) Publisher {
	return &rabbitPublisher{
		channel:  ch,
		exchange: exchange,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}
}

// RoutingKey unsend.direct or unsend.sync
func RoutingKey(env domain.Envelope) string {
	if env.Sync {
		return "unsend.sync"
	}
	return "unsend.direct"
}

func (r *rabbitPublisher) Publish(ctx context.Context, env domain.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	// confirm 依序回來, 一次只送一筆
	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.channel.Publish(r.exchange, RoutingKey(env), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Timestamp:    time.UnixMilli(env.CreatedAt),
		Body:         data,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	select {
	case c, ok := <-r.confirms:
		if !ok {
			return fmt.Errorf("rabbitmq channel closed before confirm")
		}
		if !c.Ack {
			return fmt.Errorf("rabbitmq nack for %s", env.ID)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *rabbitPublisher) Close() error {
	return r.channel.Close()
}
