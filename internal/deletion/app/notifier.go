package app

import (
	"context"

	"unsend_service/internal/deletion/domain"
	"unsend_service/internal/deletion/repository"
	"unsend_service/pkg/logger"

	"go.uber.org/zap"
)

// Notifier 通知前端: toast 與重設選取
type Notifier interface {
	PushDeleted(ctx context.Context, accountID string, count int)
	PushSomeFailed(ctx context.Context, accountID string, count int)
	PushGenericError(ctx context.Context, accountID string)
	ResetSelection(ctx context.Context, accountID, conversationID string)
}

// PubSubNotifier publish notifications on the account channel, the websocket forwards them
type PubSubNotifier struct {
	pubsub repository.PubSub
}

// NewPubSubNotifier create PubSubNotifier
func NewPubSubNotifier(pubsub repository.PubSub) *PubSubNotifier {
	return &PubSubNotifier{pubsub: pubsub}
}

func (n *PubSubNotifier) publish(ctx context.Context, accountID string, resp domain.WSResponse) {
	if err := n.pubsub.Publish(ctx, repository.NotifyChannel(accountID), resp); err != nil {
		logger.Log.Error("publish notification",
			zap.String("account", domain.Shorten(accountID)),
			zap.String("action", resp.Action),
			zap.Error(err),
		)
	}
}

// PushDeleted success toast
func (n *PubSubNotifier) PushDeleted(ctx context.Context, accountID string, count int) {
	n.publish(ctx, accountID, domain.WSResponse{
		Action:  string(domain.NotifyDeleted),
		Success: true,
		Payload: map[string]interface{}{
			"toast": ToastDeleted,
			"count": count,
			"text":  deleteMessageDeleted(count),
		},
	})
}

// PushSomeFailed warning toast when only part of the selection went through
func (n *PubSubNotifier) PushSomeFailed(ctx context.Context, accountID string, count int) {
	n.publish(ctx, accountID, domain.WSResponse{
		Action:  string(domain.NotifyError),
		Success: false,
		Payload: map[string]interface{}{
			"toast": ToastDeletionError,
			"count": count,
			"text":  deleteMessageFailed(count),
		},
	})
}

// PushGenericError error toast
func (n *PubSubNotifier) PushGenericError(ctx context.Context, accountID string) {
	n.publish(ctx, accountID, domain.WSResponse{
		Action:  string(domain.NotifyError),
		Success: false,
		Payload: map[string]interface{}{
			"toast": ToastErrorGeneric,
			"text":  errorGenericText,
		},
		Error: ToastErrorGeneric,
	})
}

// ResetSelection 關閉對話框並清除選取
func (n *PubSubNotifier) ResetSelection(ctx context.Context, accountID, conversationID string) {
	n.publish(ctx, accountID, domain.WSResponse{
		Action:  string(domain.NotifyResetSelection),
		Success: true,
		Payload: map[string]interface{}{
			"conversation_id": conversationID,
		},
	})
}
