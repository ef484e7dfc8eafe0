package app

import (
	"context"

	"unsend_service/internal/deletion/domain"
	"unsend_service/internal/deletion/repository"
	errprocess "unsend_service/pkg/err"
	"unsend_service/pkg/logger"
	"unsend_service/pkg/metrics"

	"go.uber.org/zap"
)

// SwarmDeleter 刪除 swarm 上的訊息
type SwarmDeleter struct {
	swarm repository.SwarmRepository
	local *LocalDeleter
}

// NewSwarmDeleter create SwarmDeleter
func NewSwarmDeleter(swarm repository.SwarmRepository, local *LocalDeleter) *SwarmDeleter {
	return &SwarmDeleter{swarm: swarm, local: local}
}

// DeleteMessagesFromSwarmOnly delete the hashes of msgs from the swarm of pubkey.
// Messages without a hash are skipped, no hash at all returns false without a call.
func (s *SwarmDeleter) DeleteMessagesFromSwarmOnly(ctx context.Context, msgs []domain.Message, pubkey string) bool {
	hashes := domain.MessageHashes(msgs)
	if len(hashes) == 0 {
		logger.Log.Warn("deleteMessagesFromSwarmOnly: no hashes to delete",
			zap.String("pubkey", domain.Shorten(pubkey)),
		)
		return false
	}

	logger.Log.Debug("deleting from swarm",
		zap.String("pubkey", domain.Shorten(pubkey)),
		zap.Strings("hashes", hashes),
	)

	deleted, err := s.swarm.DeleteHashes(ctx, pubkey, hashes)
	if err != nil {
		metrics.SwarmDeletes.WithLabelValues(metrics.Status(false)).Inc()
		logger.Log.Error("deleteMessagesFromSwarmOnly failed",
			zap.String("pubkey", domain.Shorten(pubkey)),
			zap.Strings("hashes", hashes),
			zap.Error(err),
		)
		return false
	}

	metrics.SwarmDeletes.WithLabelValues(metrics.Status(true)).Inc()
	if len(deleted) != len(hashes) {
		// 已經不在 swarm 的 hash 視為刪除成功
		logger.Log.Info("some hashes were already gone from swarm",
			zap.String("pubkey", domain.Shorten(pubkey)),
			zap.Int("requested", len(hashes)),
			zap.Int("deleted", len(deleted)),
		)
	}
	return true
}

// DeleteMessagesFromSwarmAndLocally swarm delete on the 03 group key or our own key,
// the local step only runs when the swarm accepted the delete
func (s *SwarmDeleter) DeleteMessagesFromSwarmAndLocally(
	ctx context.Context,
	identity domain.Identity,
	convo *domain.Conversation,
	msgs []domain.Message,
	mode domain.DeletionMode,
) (bool, error) {
	if convo.Kind == domain.KindLegacyGroup {
		return false, errprocess.Invariant("legacy groups are deprecated, not deleting anything from %s", domain.Shorten(convo.ID))
	}
	if convo.Kind == domain.KindCommunity {
		return false, errprocess.Invariant("communities have no swarm to delete from")
	}
	if convo.Kind == domain.KindPrivate && domain.IsBlinded(convo.ID) {
		return false, errprocess.Invariant("%s swarm delete does not support blinded conversations", mode)
	}

	target := identity.AccountID
	if domain.Is03Pubkey(convo.ID) {
		target = convo.ID
	}
	if !domain.Is03Pubkey(target) && !domain.Is05Pubkey(target) {
		return false, errprocess.Invariant("%s swarm delete needs a 03 or 05 pubkey, got %s", mode, domain.Shorten(target))
	}

	if len(domain.MessageHashes(msgs)) == 0 {
		// 從未送上 swarm, 只需本機處理
		logger.Log.Info("no message hash in selection, skipping swarm delete",
			zap.String("conversation", domain.Shorten(convo.ID)),
		)
		return true, s.local.DeleteMessagesLocallyOnly(ctx, convo, msgs, mode)
	}

	if !s.DeleteMessagesFromSwarmOnly(ctx, msgs, target) {
		logger.Log.Warn("swarm delete failed, leaving local messages untouched",
			zap.String("pubkey", domain.Shorten(target)),
			zap.String("mode", string(mode)),
		)
		return false, nil
	}
	return true, s.local.DeleteMessagesLocallyOnly(ctx, convo, msgs, mode)
}
