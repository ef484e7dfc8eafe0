package app

import (
	"context"
	"fmt"

	"unsend_service/internal/deletion/domain"
	"unsend_service/internal/deletion/repository"
	errprocess "unsend_service/pkg/err"
	"unsend_service/pkg/logger"
	"unsend_service/pkg/metrics"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultCommunityConcurrency = 4

// DeletionUseCase 決定可用的刪除方式並執行
type DeletionUseCase struct {
	convoRepo repository.ConversationRepository
	msgRepo   repository.MessageRepository
	local     *LocalDeleter
	swarm     *SwarmDeleter
	unsend    *Unsender
	community repository.CommunityClient
	notifier  Notifier

	communityConcurrency int
}

// NewDeletionUseCase init deletion use case
func NewDeletionUseCase(
	convoRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	local *LocalDeleter,
	swarm *SwarmDeleter,
	unsend *Unsender,
	community repository.CommunityClient,
	notifier Notifier,
	communityConcurrency int,
) *DeletionUseCase {
	if communityConcurrency <= 0 {
		communityConcurrency = defaultCommunityConcurrency
	}
	return &DeletionUseCase{
		convoRepo:            convoRepo,
		msgRepo:              msgRepo,
		local:                local,
		swarm:                swarm,
		unsend:               unsend,
		community:            community,
		notifier:             notifier,
		communityConcurrency: communityConcurrency,
	}
}

// LoadConversation 讀取對話並決定種類, 不存在時回傳 errprocess.ErrNotFound
func (uc *DeletionUseCase) LoadConversation(ctx context.Context, identity domain.Identity, conversationID string) (*domain.Conversation, error) {
	rec, err := uc.convoRepo.FindByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.Wrapf(errprocess.ErrNotFound, "conversation %s", conversationID)
	}
	return domain.NewConversation(*rec, identity), nil
}

// Eligibility load the selection and compute which deletion types are allowed
func (uc *DeletionUseCase) Eligibility(ctx context.Context, identity domain.Identity, conversationID string, messageIDs []string) (*domain.Eligibility, *domain.Conversation, []domain.Message, error) {
	convo, err := uc.LoadConversation(ctx, identity, conversationID)
	if err != nil {
		return nil, nil, nil, err
	}
	msgs, err := uc.msgRepo.FindByIDs(ctx, conversationID, messageIDs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load selected messages: %w", err)
	}
	return ComputeEligibility(identity, convo, msgs), convo, msgs, nil
}

// ComputeEligibility pure part of Eligibility
func ComputeEligibility(identity domain.Identity, convo *domain.Conversation, msgs []domain.Message) *domain.Eligibility {
	e := &domain.Eligibility{CanDeleteDeviceOnly: true}

	e.CanDeleteForEveryoneAsSelf = true
	for i := range msgs {
		if msgs[i].IsDeleted {
			e.AnyAreDeleted = true
		}
		if msgs[i].IsControlMessage() {
			e.AnyAreControlMessages = true
		}
		// 沒有寄件人的訊息不列入判斷
		if msgs[i].Source != "" && !convo.IsUs(msgs[i].Source, identity) {
			e.CanDeleteForEveryoneAsSelf = false
		}
	}

	e.CanDeleteForEveryoneAsAdmin = convo.WeAreCommunityModerator() || convo.WeAreGroupV2Admin()
	syncable := !e.AnyAreControlMessages && !e.AnyAreDeleted
	e.CanDeleteForEveryone = (e.CanDeleteForEveryoneAsSelf || e.CanDeleteForEveryoneAsAdmin) && syncable
	e.CanDeleteFromAllDevices = convo.Kind == domain.KindSelf && syncable

	if e.CanDeleteForEveryone && convo.Kind != domain.KindSelf {
		t := domain.DeleteEveryone
		e.Default = &t
	}

	e.Options = []domain.DeletionOption{{
		Type:  domain.DeleteDeviceOnly,
		Label: deletionLabels[domain.DeleteDeviceOnly],
	}}
	if convo.Kind == domain.KindSelf {
		e.Options = append(e.Options, domain.DeletionOption{
			Type:     domain.DeleteAllMyDevices,
			Label:    deletionLabels[domain.DeleteAllMyDevices],
			Disabled: !e.CanDeleteFromAllDevices,
		})
	} else {
		e.Options = append(e.Options, domain.DeletionOption{
			Type:     domain.DeleteEveryone,
			Label:    deletionLabels[domain.DeleteEveryone],
			Disabled: !e.CanDeleteForEveryone,
		})
	}
	return e
}

// DoDeleteSelectedMessages execute a deletion already confirmed by the user.
// Remote failures come back as a failed DeletionResult and a generic toast,
// the returned error is reserved for invariant violations.
// Permissions are not checked here, callers pick the type from Eligibility.
func (uc *DeletionUseCase) DoDeleteSelectedMessages(
	ctx context.Context,
	identity domain.Identity,
	convo *domain.Conversation,
	msgs []domain.Message,
	deletionType domain.DeletionType,
) (domain.DeletionResult, error) {
	if len(msgs) == 0 {
		return domain.Noop("no message left to delete"), nil
	}

	var (
		res domain.DeletionResult
		err error
	)
	switch {
	case convo.Kind == domain.KindLegacyGroup:
		logger.Log.Info("legacy groups are read only, deleting locally", zap.String("conversation", domain.Shorten(convo.ID)))
		res, err = uc.deleteLocally(ctx, convo, msgs, domain.ModeComplete)

	case deletionType == domain.DeleteDeviceOnly:
		res, err = uc.deleteDeviceOnly(ctx, convo, msgs)

	case deletionType == domain.DeleteAllMyDevices,
		deletionType == domain.DeleteEveryone && convo.Kind == domain.KindSelf:
		res, err = uc.unsendJustForThisUserAllDevices(ctx, identity, convo, msgs)

	case deletionType == domain.DeleteEveryone:
		switch convo.Kind {
		case domain.KindCommunity:
			res, err = uc.deleteInCommunity(ctx, identity, convo, msgs)
		case domain.KindPrivate:
			res, err = uc.unsendForEveryone1o1(ctx, identity, convo, msgs)
		case domain.KindGroupV2:
			res, err = uc.unsendForEveryoneGroupV2(ctx, identity, convo, msgs)
		default:
			err = errprocess.Invariant("doDeleteSelectedMessages: invalid conversation kind %s", convo.Kind)
		}

	default:
		err = errprocess.Invariant("doDeleteSelectedMessages: invalid deletion type %q", deletionType)
	}

	if err != nil {
		if errprocess.IsInvariant(err) {
			metrics.DeletionRequests.WithLabelValues(string(deletionType), convo.Kind.String(), "invariant").Inc()
			return domain.DeletionResult{}, err
		}
		// 本機儲存錯誤也只顯示一般錯誤
		logger.Log.Error("deletion failed",
			zap.String("conversation", domain.Shorten(convo.ID)),
			zap.String("type", string(deletionType)),
			zap.Error(err),
		)
		res = domain.Failed(err.Error())
	}

	uc.report(ctx, identity, res)
	metrics.DeletionRequests.WithLabelValues(string(deletionType), convo.Kind.String(), string(res.Status)).Inc()
	return res, nil
}

func (uc *DeletionUseCase) report(ctx context.Context, identity domain.Identity, res domain.DeletionResult) {
	switch res.Status {
	case domain.StatusSuccess:
		uc.notifier.PushDeleted(ctx, identity.AccountID, res.Deleted)
	case domain.StatusFailed:
		uc.notifier.PushGenericError(ctx, identity.AccountID)
	}
}

func (uc *DeletionUseCase) deleteLocally(ctx context.Context, convo *domain.Conversation, msgs []domain.Message, mode domain.DeletionMode) (domain.DeletionResult, error) {
	if err := uc.local.DeleteMessagesLocallyOnly(ctx, convo, msgs, mode); err != nil {
		return domain.DeletionResult{}, err
	}
	return domain.Succeeded(len(msgs)), nil
}

// 控制訊息與已刪除的訊息無法同步, LocalDeleter 會整筆移除; 其他留下 tombstone
func (uc *DeletionUseCase) deleteDeviceOnly(ctx context.Context, convo *domain.Conversation, msgs []domain.Message) (domain.DeletionResult, error) {
	return uc.deleteLocally(ctx, convo, msgs, domain.ModeMarkDeleted)
}

func (uc *DeletionUseCase) unsendJustForThisUserAllDevices(ctx context.Context, identity domain.Identity, convo *domain.Conversation, msgs []domain.Message) (domain.DeletionResult, error) {
	if convo.Kind != domain.KindSelf {
		return domain.DeletionResult{}, errprocess.Invariant("delete on all my devices requires the note to self conversation, got %s", convo.Kind)
	}
	logger.Log.Warn("deleting messages just for this user", zap.Int("count", len(msgs)))

	objs := uc.unsend.BuildUnsendMessages(msgs)

	if len(domain.MessageHashes(msgs)) > 0 {
		if !uc.swarm.DeleteMessagesFromSwarmOnly(ctx, msgs, identity.AccountID) {
			return domain.Failed("own swarm delete failed"), nil
		}
	}
	uc.unsend.UnsendMessageJustForThisUserAllDevices(ctx, objs)

	return uc.deleteLocally(ctx, convo, msgs, domain.ModeComplete)
}

// 社群沒有批次刪除, 每個 server id 一個請求; 只移除伺服器確認刪除的訊息
func (uc *DeletionUseCase) deleteInCommunity(ctx context.Context, identity domain.Identity, convo *domain.Conversation, msgs []domain.Message) (domain.DeletionResult, error) {
	var withServerID []domain.Message
	for i := range msgs {
		if msgs[i].ServerID != 0 {
			withServerID = append(withServerID, msgs[i])
		}
	}
	if len(withServerID) == 0 {
		logger.Log.Info("no server id in selection, nothing to delete on the community", zap.String("room", convo.CommunityRoom))
		return domain.Failed("no server id to delete"), nil
	}

	requester := identity.AccountID
	if convo.OurBlindedID != "" {
		requester = convo.OurBlindedID
	}

	deleted := make([]bool, len(withServerID))
	var g errgroup.Group
	g.SetLimit(uc.communityConcurrency)
	for i := range withServerID {
		serverID := withServerID[i].ServerID
		g.Go(func() error {
			ok, err := uc.community.DeleteMessageByServerID(ctx, convo.CommunityServer, convo.CommunityRoom, serverID, requester)
			if err != nil {
				logger.Log.Error("community delete failed",
					zap.String("room", convo.CommunityRoom),
					zap.Int64("server_id", serverID),
					zap.Error(err),
				)
				ok = false
			}
			metrics.CommunityDeletes.WithLabelValues(metrics.Status(ok)).Inc()
			deleted[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	var gone []domain.Message
	for i, ok := range deleted {
		if ok {
			gone = append(gone, withServerID[i])
		}
	}
	if len(gone) == 0 {
		logger.Log.Info("failed to remove those server ids, not removing them locally neither",
			zap.String("room", convo.CommunityRoom),
		)
		return domain.Failed("community refused every delete"), nil
	}
	if failed := len(withServerID) - len(gone); failed > 0 {
		uc.notifier.PushSomeFailed(ctx, identity.AccountID, failed)
	}

	return uc.deleteLocally(ctx, convo, gone, domain.ModeComplete)
}

func (uc *DeletionUseCase) unsendForEveryone1o1(ctx context.Context, identity domain.Identity, convo *domain.Conversation, msgs []domain.Message) (domain.DeletionResult, error) {
	if !domain.Is05Pubkey(convo.ID) {
		return domain.DeletionResult{}, errprocess.Invariant("unsend for everyone 1o1 requires a 05 key, got %s", domain.Shorten(convo.ID))
	}

	// 先用刪除前的內容建立 unsend
	objs := uc.unsend.BuildUnsendMessages(msgs)

	if len(domain.MessageHashes(msgs)) > 0 && !uc.swarm.DeleteMessagesFromSwarmOnly(ctx, msgs, identity.AccountID) {
		return domain.Failed("own swarm delete failed"), nil
	}

	// swarm 已刪除, 本機失敗也要通知對方與自己其他裝置
	localErr := uc.local.DeleteMessagesLocallyOnly(ctx, convo, msgs, domain.ModeMarkDeleted)

	if _, _, err := uc.unsend.UnsendMessagesForEveryone1o1(ctx, convo, convo.ID, objs); err != nil {
		return domain.DeletionResult{}, err
	}
	if localErr != nil {
		return domain.DeletionResult{}, localErr
	}
	return domain.Succeeded(len(msgs)), nil
}

func (uc *DeletionUseCase) unsendForEveryoneGroupV2(ctx context.Context, identity domain.Identity, convo *domain.Conversation, msgs []domain.Message) (domain.DeletionResult, error) {
	if !domain.Is03Pubkey(convo.ID) {
		return domain.DeletionResult{}, errprocess.Invariant("doDeleteSelectedMessages: group v2 requires a 03 key, got %s", domain.Shorten(convo.ID))
	}

	// 目前不支援刪除某成員的全部訊息, allMessagesFrom 為空
	if _, err := uc.unsend.UnsendMessagesForEveryoneGroupV2(ctx, convo, msgs, nil); err != nil {
		if errprocess.IsInvariant(err) {
			return domain.DeletionResult{}, err
		}
		return domain.Failed("delete member content send failed"), nil
	}

	ok, err := uc.swarm.DeleteMessagesFromSwarmAndLocally(ctx, identity, convo, msgs, domain.ModeMarkDeleted)
	if err != nil {
		return domain.DeletionResult{}, err
	}
	if !ok {
		return domain.Failed("group swarm delete failed"), nil
	}
	return domain.Succeeded(len(msgs)), nil
}

// ClearAllMessages 清空對話 (僅本機)
func (uc *DeletionUseCase) ClearAllMessages(ctx context.Context, identity domain.Identity, conversationID string) (domain.DeletionResult, error) {
	convo, err := uc.LoadConversation(ctx, identity, conversationID)
	if err != nil {
		return domain.DeletionResult{}, err
	}
	n, err := uc.local.ClearAllMessages(ctx, convo)
	if err != nil {
		logger.Log.Error("clear all messages", zap.String("conversation", domain.Shorten(convo.ID)), zap.Error(err))
		uc.notifier.PushGenericError(ctx, identity.AccountID)
		return domain.Failed(err.Error()), nil
	}
	if n == 0 {
		return domain.Noop("conversation already empty"), nil
	}
	uc.notifier.PushDeleted(ctx, identity.AccountID, int(n))
	return domain.Succeeded(int(n)), nil
}
