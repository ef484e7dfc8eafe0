package repository

import (
	"context"
	"errors"
	"fmt"

	"unsend_service/internal/deletion/domain"
	errprocess "unsend_service/pkg/err"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ConversationRepository 對話資料 (種類旗標, 最後一則訊息)
type ConversationRepository interface {
	FindByID(ctx context.Context, id string) (*domain.ConversationRecord, error)
	UpdateLastMessage(ctx context.Context, id, messageID, preview string, at int64) error
	Upsert(ctx context.Context, rec *domain.ConversationRecord) error
}

type conversationRepository struct {
	db *pgxpool.Pool
}

// NewConversationRepository create a ConversationRepository
func NewConversationRepository(db *pgxpool.Pool) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) FindByID(ctx context.Context, id string) (*domain.ConversationRecord, error) {
	row := r.db.QueryRow(ctx, `SELECT id, is_community, is_closed_group, we_are_admin, we_are_moderator,
		our_blinded_id, community_server, community_room, admin_secret_key,
		last_message_id, last_message_preview, last_message_at
		FROM conversations WHERE id = $1`, id)

	var rec domain.ConversationRecord
	err := row.Scan(
		&rec.ID, &rec.IsCommunity, &rec.IsClosedGroup, &rec.WeAreAdmin, &rec.WeAreModerator,
		&rec.OurBlindedID, &rec.CommunityServer, &rec.CommunityRoom, &rec.AdminSecretKey,
		&rec.LastMessageID, &rec.LastMessagePreview, &rec.LastMessageAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("conversation %s: %w", id, errprocess.ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

func (r *conversationRepository) UpdateLastMessage(ctx context.Context, id, messageID, preview string, at int64) error {
	_, err := r.db.Exec(ctx, `UPDATE conversations
		SET last_message_id = $2, last_message_preview = $3, last_message_at = $4, updated_at = now()
		WHERE id = $1`, id, messageID, preview, at)
	return err
}

func (r *conversationRepository) Upsert(ctx context.Context, rec *domain.ConversationRecord) error {
	_, err := r.db.Exec(ctx, `INSERT INTO conversations (id, is_community, is_closed_group, we_are_admin,
		we_are_moderator, our_blinded_id, community_server, community_room, admin_secret_key,
		last_message_id, last_message_preview, last_message_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			is_community = EXCLUDED.is_community,
			is_closed_group = EXCLUDED.is_closed_group,
			we_are_admin = EXCLUDED.we_are_admin,
			we_are_moderator = EXCLUDED.we_are_moderator,
			our_blinded_id = EXCLUDED.our_blinded_id,
			community_server = EXCLUDED.community_server,
			community_room = EXCLUDED.community_room,
			admin_secret_key = EXCLUDED.admin_secret_key,
			updated_at = now()`,
		rec.ID, rec.IsCommunity, rec.IsClosedGroup, rec.WeAreAdmin, rec.WeAreModerator,
		rec.OurBlindedID, rec.CommunityServer, rec.CommunityRoom, rec.AdminSecretKey,
		rec.LastMessageID, rec.LastMessagePreview, rec.LastMessageAt,
	)
	return err
}
