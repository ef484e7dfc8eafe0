package app

import (
	"strings"
	"testing"

	"unsend_service/internal/deletion/domain"
	"unsend_service/pkg/logger"

	"github.com/stretchr/testify/mock"
)

func init() {
	logger.SetNewNop()
}

const now int64 = 1_700_000_000_000

var (
	us      = "05" + strings.Repeat("a", 64)
	peer    = "05" + strings.Repeat("b", 64)
	groupPk = "03" + strings.Repeat("c", 64)
	blinded = "15" + strings.Repeat("d", 64)

	identity = domain.Identity{AccountID: us, DeviceID: "desktop"}
)

type fixture struct {
	msgRepo   *MockMessageRepository
	convoRepo *MockConversationRepository
	swarm     *MockSwarmRepository
	queue     *MockMessageQueue
	community *MockCommunityClient
	notifier  *MockNotifier
	uc        *DeletionUseCase
}

func newFixture() *fixture {
	f := &fixture{
		msgRepo:   new(MockMessageRepository),
		convoRepo: new(MockConversationRepository),
		swarm:     new(MockSwarmRepository),
		queue:     new(MockMessageQueue),
		community: new(MockCommunityClient),
		notifier:  new(MockNotifier),
	}
	local := NewLocalDeleter(f.msgRepo, f.convoRepo, nil)
	f.uc = NewDeletionUseCase(
		f.convoRepo,
		f.msgRepo,
		local,
		NewSwarmDeleter(f.swarm, local),
		NewUnsender(f.queue, FixedClock(now), 4),
		f.community,
		f.notifier,
		4,
	)
	return f
}

// expectRefresh 每批只重算一次最後訊息
func (f *fixture) expectRefresh(conversationID string) {
	f.msgRepo.On("FindLatest", mock.Anything, conversationID).Return(nil, nil).Once()
	f.convoRepo.On("UpdateLastMessage", mock.Anything, conversationID, "", "", int64(0)).Return(nil).Once()
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.msgRepo.AssertExpectations(t)
	f.convoRepo.AssertExpectations(t)
	f.swarm.AssertExpectations(t)
	f.queue.AssertExpectations(t)
	f.community.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func (f *fixture) assertNoLocalMutation(t *testing.T) {
	f.msgRepo.AssertNotCalled(t, "RemoveByIDs", mock.Anything, mock.Anything)
	f.msgRepo.AssertNotCalled(t, "MarkDeleted", mock.Anything, mock.Anything)
	f.convoRepo.AssertNotCalled(t, "UpdateLastMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func conversation(rec domain.ConversationRecord) *domain.Conversation {
	return domain.NewConversation(rec, identity)
}

func message(id, source, hash string, sentAt int64) domain.Message {
	return domain.Message{
		ID:             id,
		ConversationID: "c",
		Source:         source,
		SentAt:         sentAt,
		MessageHash:    hash,
		Body:           "body of " + id,
	}
}
