package app

import (
	"context"

	"unsend_service/internal/deletion/domain"

	"github.com/stretchr/testify/mock"
)

// MockMessageRepository Mock MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// FindByIDs mock find messages by ids
func (m *MockMessageRepository) FindByIDs(ctx context.Context, conversationID string, ids []string) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID, ids)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindByConversation mock list messages of a conversation
func (m *MockMessageRepository) FindByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// FindLatest mock latest message
func (m *MockMessageRepository) FindLatest(ctx context.Context, conversationID string) (*domain.Message, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

// RemoveByIDs mock remove rows
func (m *MockMessageRepository) RemoveByIDs(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// RemoveByConversation mock clear conversation
func (m *MockMessageRepository) RemoveByConversation(ctx context.Context, conversationID string) (int64, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).(int64), args.Error(1)
}

// MarkDeleted mock tombstone
func (m *MockMessageRepository) MarkDeleted(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

// Insert mock insert
func (m *MockMessageRepository) Insert(ctx context.Context, msgs ...domain.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

// MockConversationRepository Mock ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

// FindByID mock find conversation
func (m *MockConversationRepository) FindByID(ctx context.Context, id string) (*domain.ConversationRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) != nil {
		return args.Get(0).(*domain.ConversationRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateLastMessage mock preview update
func (m *MockConversationRepository) UpdateLastMessage(ctx context.Context, id, messageID, preview string, at int64) error {
	args := m.Called(ctx, id, messageID, preview, at)
	return args.Error(0)
}

// Upsert mock upsert
func (m *MockConversationRepository) Upsert(ctx context.Context, rec *domain.ConversationRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

// MockSwarmRepository Mock SwarmRepository
type MockSwarmRepository struct {
	mock.Mock
}

// Store mock store payload
func (m *MockSwarmRepository) Store(ctx context.Context, pubkey string, ns domain.Namespace, payload []byte) (string, error) {
	args := m.Called(ctx, pubkey, ns, payload)
	return args.String(0), args.Error(1)
}

// DeleteHashes mock delete by hash
func (m *MockSwarmRepository) DeleteHashes(ctx context.Context, pubkey string, hashes []string) ([]string, error) {
	args := m.Called(ctx, pubkey, hashes)
	if args.Get(0) != nil {
		return args.Get(0).([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

// Retrieve mock retrieve namespace
func (m *MockSwarmRepository) Retrieve(ctx context.Context, pubkey string, ns domain.Namespace) (map[string][]byte, error) {
	args := m.Called(ctx, pubkey, ns)
	if args.Get(0) != nil {
		return args.Get(0).(map[string][]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockMessageQueue Mock MessageQueue
type MockMessageQueue struct {
	mock.Mock
}

// SendToPubKey mock direct send
func (m *MockMessageQueue) SendToPubKey(ctx context.Context, destination string, payload []byte, ns domain.Namespace) error {
	args := m.Called(ctx, destination, payload, ns)
	return args.Error(0)
}

// SendSyncMessage mock sync send
func (m *MockMessageQueue) SendSyncMessage(ctx context.Context, payload []byte, ns domain.Namespace) error {
	args := m.Called(ctx, payload, ns)
	return args.Error(0)
}

// SendToGroupV2Durably mock group send
func (m *MockMessageQueue) SendToGroupV2Durably(ctx context.Context, groupPk string, payload []byte) (string, error) {
	args := m.Called(ctx, groupPk, payload)
	return args.String(0), args.Error(1)
}

// MockCommunityClient Mock CommunityClient
type MockCommunityClient struct {
	mock.Mock
}

// DeleteMessageByServerID mock moderation delete
func (m *MockCommunityClient) DeleteMessageByServerID(ctx context.Context, server, room string, serverID int64, requester string) (bool, error) {
	args := m.Called(ctx, server, room, serverID, requester)
	return args.Bool(0), args.Error(1)
}

// MockAttachmentRepository Mock AttachmentRepository
type MockAttachmentRepository struct {
	mock.Mock
}

// RemoveFiles mock remove attachments
func (m *MockAttachmentRepository) RemoveFiles(ctx context.Context, paths []string) error {
	args := m.Called(ctx, paths)
	return args.Error(0)
}

// MockNotifier Mock Notifier
type MockNotifier struct {
	mock.Mock
}

// PushDeleted mock success toast
func (m *MockNotifier) PushDeleted(ctx context.Context, accountID string, count int) {
	m.Called(ctx, accountID, count)
}

// PushSomeFailed mock partial failure toast
func (m *MockNotifier) PushSomeFailed(ctx context.Context, accountID string, count int) {
	m.Called(ctx, accountID, count)
}

// PushGenericError mock error toast
func (m *MockNotifier) PushGenericError(ctx context.Context, accountID string) {
	m.Called(ctx, accountID)
}

// ResetSelection mock reset selection
func (m *MockNotifier) ResetSelection(ctx context.Context, accountID, conversationID string) {
	m.Called(ctx, accountID, conversationID)
}

// MockPubSub Mock PubSub
type MockPubSub struct {
	mock.Mock
}

// Publish mock publish
func (m *MockPubSub) Publish(ctx context.Context, channel string, resp domain.WSResponse) error {
	args := m.Called(ctx, channel, resp)
	return args.Error(0)
}

// Subscribe mock subscribe
func (m *MockPubSub) Subscribe(ctx context.Context, channel string, handler func(resp domain.WSResponse)) error {
	args := m.Called(ctx, channel, handler)
	return args.Error(0)
}

// FixedClock Clock that always returns the same ms
type FixedClock int64

// Now fixed ms
func (c FixedClock) Now() int64 {
	return int64(c)
}
