package repository

import (
	"context"
	"fmt"

	"unsend_service/internal/deletion/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository 本機訊息存取
type MessageRepository interface {
	// FindByIDs 依 ids 順序回傳同一對話中存在的訊息
	FindByIDs(ctx context.Context, conversationID string, ids []string) ([]domain.Message, error)
	FindByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
	// FindLatest 最新一則訊息, 沒有訊息時回傳 nil, nil
	FindLatest(ctx context.Context, conversationID string) (*domain.Message, error)
	RemoveByIDs(ctx context.Context, ids []string) (int64, error)
	RemoveByConversation(ctx context.Context, conversationID string) (int64, error)
	// MarkDeleted 清除內容並留下 tombstone
	MarkDeleted(ctx context.Context, ids []string) (int64, error)
	Insert(ctx context.Context, msgs ...domain.Message) error
}

type mongoMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create a MessageRepository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &mongoMessageRepository{
		coll: db.Collection("messages"),
	}
}

// EnsureMessageIndexes conversation + time index for latest lookups
func EnsureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("messages").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "sent_at", Value: -1}, {Key: "received_at", Value: -1}}},
		{Keys: bson.D{{Key: "message_hash", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	return err
}

func (r *mongoMessageRepository) FindByIDs(ctx context.Context, conversationID string, ids []string) ([]domain.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	filter := bson.M{"conversation_id": conversationID, "_id": bson.M{"$in": ids}}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	var found []domain.Message
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	// 保持呼叫端選取的順序, 後面產生 unsend 的時間戳依賴這個順序
	byID := make(map[string]domain.Message, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	out := make([]domain.Message, 0, len(found))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
			delete(byID, id)
		}
	}
	return out, nil
}

func (r *mongoMessageRepository) FindByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	cur, err := r.coll.Find(ctx, bson.M{"conversation_id": conversationID})
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	var msgs []domain.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return msgs, nil
}

func (r *mongoMessageRepository) FindLatest(ctx context.Context, conversationID string) (*domain.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "sent_at", Value: -1}, {Key: "received_at", Value: -1}})
	var m domain.Message
	err := r.coll.FindOne(ctx, bson.M{"conversation_id": conversationID}, opts).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest message: %w", err)
	}
	return &m, nil
}

func (r *mongoMessageRepository) RemoveByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("remove messages: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoMessageRepository) RemoveByConversation(ctx context.Context, conversationID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"conversation_id": conversationID})
	if err != nil {
		return 0, fmt.Errorf("remove conversation messages: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *mongoMessageRepository) MarkDeleted(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	update := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"body":       domain.DeletedPlaceholder,
			"unread":     false,
		},
		"$unset": bson.M{
			"quote":       "",
			"attachments": "",
			"preview":     "",
			"reacts":      "",
		},
	}
	res, err := r.coll.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, update)
	if err != nil {
		return 0, fmt.Errorf("mark messages deleted: %w", err)
	}
	return res.MatchedCount, nil
}

func (r *mongoMessageRepository) Insert(ctx context.Context, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		docs = append(docs, m)
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}
