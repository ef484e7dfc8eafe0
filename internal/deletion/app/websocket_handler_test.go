package app

import (
	"context"
	"encoding/json"
	"testing"

	"unsend_service/internal/deletion/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func wsRequest(t *testing.T, req domain.WSRequest) []byte {
	b, err := json.Marshal(req)
	require.NoError(t, err)
	return b
}

func TestTextMessageAction_InvalidInput(t *testing.T) {
	f := newFixture()
	h := NewDeletionWebsocketHandler(f.uc, new(MockPubSub))

	resp := h.textMessageAction(context.Background(), identity, []byte("{"))
	assert.Equal(t, "invalid json", resp.Error)

	resp = h.textMessageAction(context.Background(), identity, wsRequest(t, domain.WSRequest{Action: "shred"}))
	assert.Equal(t, "unknown action", resp.Error)

	resp = h.textMessageAction(context.Background(), identity, wsRequest(t, domain.WSRequest{
		Action:       string(domain.DeleteMessages),
		DeletionType: "deleteEverything",
	}))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "unknown deletion type")
}

func TestTextMessageAction_GetEligibility(t *testing.T) {
	f := newFixture()
	h := NewDeletionWebsocketHandler(f.uc, new(MockPubSub))

	f.convoRepo.On("FindByID", mock.Anything, peer).Return(&domain.ConversationRecord{ID: peer}, nil).Once()
	f.msgRepo.On("FindByIDs", mock.Anything, peer, []string{"m1"}).Return([]domain.Message{message("m1", us, "h1", 1)}, nil).Once()
	f.convoRepo.On("FindByID", mock.Anything, "gone").Return(nil, nil).Once()

	resp := h.textMessageAction(context.Background(), identity, wsRequest(t, domain.WSRequest{
		Action:         string(domain.GetEligibility),
		ConversationID: peer,
		MessageIDs:     []string{"m1"},
	}))
	require.True(t, resp.Success)
	dialog, ok := resp.Payload["dialog"].(DeletionDialog)
	require.True(t, ok)
	assert.True(t, dialog.Eligibility.CanDeleteForEveryone)

	resp = h.textMessageAction(context.Background(), identity, wsRequest(t, domain.WSRequest{
		Action:         string(domain.GetEligibility),
		ConversationID: "gone",
		MessageIDs:     []string{"m1"},
	}))
	assert.False(t, resp.Success)
	assert.Equal(t, "conversation not found", resp.Error)
	f.assertExpectations(t)
}

func TestTextMessageAction_DeleteMessages(t *testing.T) {
	f := newFixture()
	h := NewDeletionWebsocketHandler(f.uc, new(MockPubSub))

	f.convoRepo.On("FindByID", mock.Anything, peer).Return(&domain.ConversationRecord{ID: peer}, nil).Once()
	f.msgRepo.On("FindByIDs", mock.Anything, peer, []string{"m1"}).Return([]domain.Message{message("m1", peer, "h1", 1)}, nil).Once()
	f.msgRepo.On("MarkDeleted", mock.Anything, []string{"m1"}).Return(int64(1), nil).Once()
	f.expectRefresh(peer)
	f.notifier.On("PushDeleted", mock.Anything, us, 1).Once()
	f.notifier.On("ResetSelection", mock.Anything, us, peer).Once()

	resp := h.textMessageAction(context.Background(), identity, wsRequest(t, domain.WSRequest{
		Action:         string(domain.DeleteMessages),
		ConversationID: peer,
		MessageIDs:     []string{"m1"},
		DeletionType:   string(domain.DeleteDeviceOnly),
	}))
	require.True(t, resp.Success)
	assert.Equal(t, domain.Succeeded(1), resp.Payload["result"])
	f.assertExpectations(t)
}

func TestTextMessageAction_DeleteNotAllowed(t *testing.T) {
	f := newFixture()
	h := NewDeletionWebsocketHandler(f.uc, new(MockPubSub))

	f.convoRepo.On("FindByID", mock.Anything, peer).Return(&domain.ConversationRecord{ID: peer}, nil).Once()
	f.msgRepo.On("FindByIDs", mock.Anything, peer, []string{"m1"}).Return([]domain.Message{message("m1", peer, "h1", 1)}, nil).Once()

	resp := h.textMessageAction(context.Background(), identity, wsRequest(t, domain.WSRequest{
		Action:         string(domain.DeleteMessages),
		ConversationID: peer,
		MessageIDs:     []string{"m1"},
		DeletionType:   string(domain.DeleteEveryone),
	}))
	assert.False(t, resp.Success)
	assert.Equal(t, "deletion not allowed for this selection", resp.Error)
	f.assertNoLocalMutation(t)
}
