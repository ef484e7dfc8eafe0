package repository

import (
	"context"
	"fmt"
	"time"

	"unsend_service/internal/deletion/domain"

	"github.com/google/uuid"
)

// Publisher 把 envelope 交給外送佇列 (kafka 或 rabbitmq)
type Publisher interface {
	Publish(ctx context.Context, env domain.Envelope) error
	Close() error
}

// Outbox 外送訊息: 1o1 / sync 走佇列, v2 群組直接寫進群組 swarm
type Outbox struct {
	pub   Publisher
	swarm SwarmRepository
	self  string
	now   func() int64
}

// NewOutbox create Outbox, self is our own account id used for sync copies
func NewOutbox(pub Publisher, swarm SwarmRepository, self string) *Outbox {
	return &Outbox{
		pub:   pub,
		swarm: swarm,
		self:  self,
		now:   func() int64 { return time.Now().UnixMilli() },
	}
}

func (o *Outbox) envelope(dest string, ns domain.Namespace, sync bool, payload []byte) domain.Envelope {
	return domain.Envelope{
		ID:          uuid.NewString(),
		Kind:        domain.EnvelopeUnsend,
		Destination: dest,
		Namespace:   ns,
		Sync:        sync,
		Payload:     payload,
		CreatedAt:   o.now(),
	}
}

// SendToPubKey 送給對方
func (o *Outbox) SendToPubKey(ctx context.Context, dest string, payload []byte, ns domain.Namespace) error {
	return o.pub.Publish(ctx, o.envelope(dest, ns, false, payload))
}

// SendSyncMessage 送給自己其他裝置
func (o *Outbox) SendSyncMessage(ctx context.Context, payload []byte, ns domain.Namespace) error {
	return o.pub.Publish(ctx, o.envelope(o.self, ns, true, payload))
}

// SendToGroupV2Durably 寫入群組 swarm 成功才回傳
func (o *Outbox) SendToGroupV2Durably(ctx context.Context, groupPk string, payload []byte) (string, error) {
	hash, err := o.swarm.Store(ctx, groupPk, domain.NamespaceClosedGroupMessages, payload)
	if err != nil {
		return "", fmt.Errorf("group %s durable send: %w", domain.Shorten(groupPk), err)
	}
	return hash, nil
}
