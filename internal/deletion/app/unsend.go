package app

import (
	"context"
	"fmt"
	"strconv"

	"unsend_service/internal/deletion/domain"
	"unsend_service/pkg/encrypt"
	errprocess "unsend_service/pkg/err"
	"unsend_service/pkg/logger"
	"unsend_service/pkg/metrics"

	"go.uber.org/zap"
)

// MessageQueue 外送 control message, repository.Outbox 實作
type MessageQueue interface {
	SendToPubKey(ctx context.Context, destination string, payload []byte, ns domain.Namespace) error
	SendSyncMessage(ctx context.Context, payload []byte, ns domain.Namespace) error
	SendToGroupV2Durably(ctx context.Context, groupPk string, payload []byte) (string, error)
}

// Unsender builds and dispatches unsend requests
type Unsender struct {
	queue MessageQueue
	clock Clock
	limit int
}

// NewUnsender create Unsender, limit bounds concurrent sends of one broadcast
func NewUnsender(queue MessageQueue, clock Clock, limit int) *Unsender {
	return &Unsender{queue: queue, clock: clock, limit: limit}
}

// BuildUnsendMessages one object per message, addressed by the original author and timestamp.
// CreateAtNetworkTimestamp is now+index so every object has its own wire identity.
func (u *Unsender) BuildUnsendMessages(msgs []domain.Message) []domain.UnsendMessage {
	now := u.clock.Now()
	out := make([]domain.UnsendMessage, 0, len(msgs))
	for i := range msgs {
		referenced := msgs[i].Timestamp()
		if referenced == 0 {
			logger.Log.Error("cannot find timestamp, skipping unsend request", zap.String("message_id", msgs[i].ID))
			continue
		}
		out = append(out, domain.UnsendMessage{
			CreateAtNetworkTimestamp:   now + int64(i),
			ReferencedMessageTimestamp: referenced,
			Author:                     msgs[i].Source,
		})
	}
	return out
}

// UnsendMessagesForEveryone1o1 send every object to the peer, then a sync copy to our devices.
// Both fan-outs are best effort.
func (u *Unsender) UnsendMessagesForEveryone1o1(ctx context.Context, convo *domain.Conversation, destination string, objs []domain.UnsendMessage) (peer, sync BroadcastResult, err error) {
	if convo.Kind != domain.KindPrivate {
		return nil, nil, errprocess.Invariant("unsend for everyone 1o1 only works with private conversations, got %s", convo.Kind)
	}

	peer = u.broadcast(ctx, "unsend_peer", "peer", objs, func(ctx context.Context, payload []byte) error {
		return u.queue.SendToPubKey(ctx, destination, payload, domain.NamespaceDefault)
	})
	sync = u.UnsendMessageJustForThisUserAllDevices(ctx, objs)
	return peer, sync, nil
}

// UnsendMessageJustForThisUserAllDevices sync copies only
func (u *Unsender) UnsendMessageJustForThisUserAllDevices(ctx context.Context, objs []domain.UnsendMessage) BroadcastResult {
	return u.broadcast(ctx, "unsend_sync", "sync", objs, func(ctx context.Context, payload []byte) error {
		return u.queue.SendSyncMessage(ctx, payload, domain.NamespaceDefault)
	})
}

func (u *Unsender) broadcast(ctx context.Context, label, target string, objs []domain.UnsendMessage, send func(context.Context, []byte) error) BroadcastResult {
	targets := make([]string, len(objs))
	for i, o := range objs {
		targets[i] = target + ":" + strconv.FormatInt(o.ReferencedMessageTimestamp, 10)
	}
	return BestEffortBroadcast(ctx, label, targets, u.limit, func(ctx context.Context, i int, _ string) error {
		err := send(ctx, objs[i].Encode())
		metrics.ControlSends.WithLabelValues(target, metrics.Status(err == nil)).Inc()
		return err
	})
}

// UnsendMessagesForEveryoneGroupV2 one aggregate delete-member-content message for the whole
// selection, stored in the group swarm. Returns false without error when there is nothing to send.
func (u *Unsender) UnsendMessagesForEveryoneGroupV2(ctx context.Context, convo *domain.Conversation, msgs []domain.Message, allMessagesFrom []string) (bool, error) {
	if !domain.Is03Pubkey(convo.ID) {
		return false, errprocess.Invariant("group v2 unsend needs a 03 pubkey, got %s", domain.Shorten(convo.ID))
	}

	hashes := domain.MessageHashes(msgs)
	if len(hashes) == 0 && len(allMessagesFrom) == 0 {
		logger.Log.Info("unsendMessagesForEveryoneGroupV2: no hashes nor author to remove",
			zap.String("group", domain.Shorten(convo.ID)),
		)
		return false, nil
	}

	msg := domain.GroupUpdateDeleteMemberContentMessage{
		CreateAtNetworkTimestamp: u.clock.Now(),
		GroupPk:                  convo.ID,
		MemberSessionIDs:         allMessagesFrom,
		MessageHashes:            hashes,
	}
	if len(convo.AdminSecretKey) > 0 {
		sig, err := encrypt.SignDeleteContent(convo.AdminSecretKey, msg.CreateAtNetworkTimestamp, msg.MemberSessionIDs, msg.MessageHashes)
		if err != nil {
			return false, fmt.Errorf("sign delete member content for %s: %w", domain.Shorten(convo.ID), err)
		}
		msg.AdminSignature = sig
	}

	hash, err := u.queue.SendToGroupV2Durably(ctx, convo.ID, msg.Encode())
	metrics.ControlSends.WithLabelValues("group", metrics.Status(err == nil)).Inc()
	if err != nil {
		logger.Log.Error("send delete member content failed",
			zap.String("group", domain.Shorten(convo.ID)),
			zap.Strings("hashes", hashes),
			zap.Error(err),
		)
		return false, err
	}

	logger.Log.Info("delete member content stored",
		zap.String("group", domain.Shorten(convo.ID)),
		zap.String("hash", hash),
		zap.Int("hashes", len(hashes)),
		zap.Bool("signed", len(msg.AdminSignature) > 0),
	)
	return true, nil
}
