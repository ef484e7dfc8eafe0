package app

import (
	"context"
	"errors"
	"testing"

	"unsend_service/internal/deletion/domain"
	errprocess "unsend_service/pkg/err"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLocalDeleter_CompleteRefreshesPreview(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	convoRepo := new(MockConversationRepository)
	attachments := new(MockAttachmentRepository)
	local := NewLocalDeleter(msgRepo, convoRepo, attachments)

	convo := conversation(domain.ConversationRecord{ID: peer, LastMessageID: "m2"})
	withFile := message("m2", us, "h2", 20)
	withFile.Attachments = []domain.Attachment{{ID: "a1", Path: "att/a1"}}
	latest := message("m1", peer, "h1", 10)

	msgRepo.On("RemoveByIDs", mock.Anything, []string{"m2"}).Return(int64(1), nil).Once()
	attachments.On("RemoveFiles", mock.Anything, []string{"att/a1"}).Return(nil).Once()
	msgRepo.On("FindLatest", mock.Anything, peer).Return(&latest, nil).Once()
	convoRepo.On("UpdateLastMessage", mock.Anything, peer, "m1", "body of m1", int64(10)).Return(nil).Once()

	err := local.DeleteMessagesLocallyOnly(context.Background(), convo, []domain.Message{withFile}, domain.ModeComplete)
	require.NoError(t, err)
	assert.Equal(t, "m1", convo.LastMessageID)
	assert.Equal(t, "body of m1", convo.LastMessagePreview)
	assert.Equal(t, int64(10), convo.LastMessageAt)

	msgRepo.AssertExpectations(t)
	convoRepo.AssertExpectations(t)
	attachments.AssertExpectations(t)
}

func TestLocalDeleter_MarkDeletedPreviewIsPlaceholder(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	convoRepo := new(MockConversationRepository)
	local := NewLocalDeleter(msgRepo, convoRepo, nil)

	convo := conversation(domain.ConversationRecord{ID: peer})
	tombstone := message("m1", us, "h1", 10)
	tombstone.MarkAsDeleted()

	msgRepo.On("MarkDeleted", mock.Anything, []string{"m1"}).Return(int64(1), nil).Once()
	msgRepo.On("FindLatest", mock.Anything, peer).Return(&tombstone, nil).Once()
	convoRepo.On("UpdateLastMessage", mock.Anything, peer, "m1", domain.DeletedPlaceholder, int64(10)).Return(nil).Once()

	err := local.DeleteMessagesLocallyOnly(context.Background(), convo, []domain.Message{message("m1", us, "h1", 10)}, domain.ModeMarkDeleted)
	require.NoError(t, err)
	msgRepo.AssertExpectations(t)
	convoRepo.AssertExpectations(t)
	msgRepo.AssertNotCalled(t, "RemoveByIDs", mock.Anything, mock.Anything)
}

func TestLocalDeleter_AttachmentFailureIsIgnored(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	convoRepo := new(MockConversationRepository)
	attachments := new(MockAttachmentRepository)
	local := NewLocalDeleter(msgRepo, convoRepo, attachments)

	m := message("m1", us, "", 10)
	m.Attachments = []domain.Attachment{{ID: "a1", Path: "att/a1"}}

	msgRepo.On("RemoveByIDs", mock.Anything, []string{"m1"}).Return(int64(1), nil).Once()
	attachments.On("RemoveFiles", mock.Anything, []string{"att/a1"}).Return(errors.New("bucket gone")).Once()
	msgRepo.On("FindLatest", mock.Anything, peer).Return(nil, nil).Once()
	convoRepo.On("UpdateLastMessage", mock.Anything, peer, "", "", int64(0)).Return(nil).Once()

	err := local.DeleteMessagesLocallyOnly(context.Background(), conversation(domain.ConversationRecord{ID: peer}), []domain.Message{m}, domain.ModeComplete)
	assert.NoError(t, err)
	attachments.AssertExpectations(t)
}

func TestLocalDeleter_StoreFailureStopsBeforeRefresh(t *testing.T) {
	msgRepo := new(MockMessageRepository)
	convoRepo := new(MockConversationRepository)
	local := NewLocalDeleter(msgRepo, convoRepo, nil)

	msgRepo.On("RemoveByIDs", mock.Anything, []string{"m1"}).Return(int64(0), errors.New("closed")).Once()

	err := local.DeleteMessagesLocallyOnly(context.Background(), conversation(domain.ConversationRecord{ID: peer}), []domain.Message{message("m1", us, "", 1)}, domain.ModeComplete)
	require.Error(t, err)
	assert.False(t, errprocess.IsInvariant(err))
	msgRepo.AssertNotCalled(t, "FindLatest", mock.Anything, mock.Anything)
}

func TestLocalDeleter_EmptyAndUnknownMode(t *testing.T) {
	local := NewLocalDeleter(new(MockMessageRepository), new(MockConversationRepository), nil)
	convo := conversation(domain.ConversationRecord{ID: peer})

	assert.NoError(t, local.DeleteMessagesLocallyOnly(context.Background(), convo, nil, domain.ModeComplete))

	err := local.DeleteMessagesLocallyOnly(context.Background(), convo, []domain.Message{message("m1", us, "", 1)}, "shred")
	assert.True(t, errprocess.IsInvariant(err))
}
