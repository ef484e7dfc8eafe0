package app

import (
	"context"
	"fmt"

	"unsend_service/internal/deletion/domain"
	"unsend_service/internal/deletion/repository"
	errprocess "unsend_service/pkg/err"
	"unsend_service/pkg/logger"
	"unsend_service/pkg/metrics"

	"go.uber.org/zap"
)

// LocalDeleter 只動本機資料, 不碰網路
type LocalDeleter struct {
	msgRepo     repository.MessageRepository
	convoRepo   repository.ConversationRepository
	attachments repository.AttachmentRepository
}

// NewLocalDeleter create LocalDeleter, attachments may be nil
func NewLocalDeleter(
	msgRepo repository.MessageRepository,
	convoRepo repository.ConversationRepository,
	attachments repository.AttachmentRepository,
) *LocalDeleter {
	return &LocalDeleter{
		msgRepo:     msgRepo,
		convoRepo:   convoRepo,
		attachments: attachments,
	}
}

// DeleteMessagesLocallyOnly remove (complete) or tombstone (markDeleted) every message,
// then refresh the conversation preview once for the whole batch.
// Control messages and already deleted messages are always removed completely.
func (l *LocalDeleter) DeleteMessagesLocallyOnly(ctx context.Context, convo *domain.Conversation, msgs []domain.Message, mode domain.DeletionMode) error {
	if len(msgs) == 0 {
		return nil
	}

	var remove, mark []string
	switch mode {
	case domain.ModeComplete:
		remove = domain.MessageIDs(msgs)
	case domain.ModeMarkDeleted:
		for i := range msgs {
			if msgs[i].IsControlMessage() || msgs[i].IsDeleted {
				remove = append(remove, msgs[i].ID)
			} else {
				mark = append(mark, msgs[i].ID)
			}
		}
	default:
		return errprocess.Invariant("unknown deletion mode %q", mode)
	}

	if len(remove) > 0 {
		n, err := l.msgRepo.RemoveByIDs(ctx, remove)
		if err != nil {
			return fmt.Errorf("remove messages of %s: %w", convo.ID, err)
		}
		metrics.LocalMutations.WithLabelValues(string(domain.ModeComplete)).Add(float64(n))
	}
	if len(mark) > 0 {
		n, err := l.msgRepo.MarkDeleted(ctx, mark)
		if err != nil {
			return fmt.Errorf("mark messages of %s as deleted: %w", convo.ID, err)
		}
		metrics.LocalMutations.WithLabelValues(string(domain.ModeMarkDeleted)).Add(float64(n))
	}

	logger.Log.Info("deleted messages locally",
		zap.String("conversation", domain.Shorten(convo.ID)),
		zap.String("mode", string(mode)),
		zap.Int("removed", len(remove)),
		zap.Int("marked", len(mark)),
	)

	l.removeAttachments(ctx, msgs)

	return l.refreshLastMessage(ctx, convo)
}

// ClearAllMessages 清空整個對話 (僅本機)
func (l *LocalDeleter) ClearAllMessages(ctx context.Context, convo *domain.Conversation) (int64, error) {
	msgs, err := l.msgRepo.FindByConversation(ctx, convo.ID)
	if err != nil {
		return 0, fmt.Errorf("list messages of %s: %w", convo.ID, err)
	}
	n, err := l.msgRepo.RemoveByConversation(ctx, convo.ID)
	if err != nil {
		return 0, fmt.Errorf("clear messages of %s: %w", convo.ID, err)
	}
	metrics.LocalMutations.WithLabelValues(string(domain.ModeComplete)).Add(float64(n))
	l.removeAttachments(ctx, msgs)

	return n, l.refreshLastMessage(ctx, convo)
}

// attachment 刪除失敗只記錄
func (l *LocalDeleter) removeAttachments(ctx context.Context, msgs []domain.Message) {
	if l.attachments == nil {
		return
	}
	var paths []string
	for i := range msgs {
		paths = append(paths, msgs[i].AttachmentPaths()...)
	}
	if len(paths) == 0 {
		return
	}
	if err := l.attachments.RemoveFiles(ctx, paths); err != nil {
		logger.Log.Warn("remove attachments", zap.Strings("paths", paths), zap.Error(err))
	}
}

func (l *LocalDeleter) refreshLastMessage(ctx context.Context, convo *domain.Conversation) error {
	latest, err := l.msgRepo.FindLatest(ctx, convo.ID)
	if err != nil {
		return fmt.Errorf("find latest message of %s: %w", convo.ID, err)
	}

	var (
		id      string
		preview string
		at      int64
	)
	if latest != nil {
		id = latest.ID
		preview = latest.PreviewText()
		at = latest.Timestamp()
	}
	if err := l.convoRepo.UpdateLastMessage(ctx, convo.ID, id, preview, at); err != nil {
		return fmt.Errorf("update last message of %s: %w", convo.ID, err)
	}
	convo.LastMessageID, convo.LastMessagePreview, convo.LastMessageAt = id, preview, at
	return nil
}
